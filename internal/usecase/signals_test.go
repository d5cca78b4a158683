package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	icache "SignalPulse/internal/service/cache"
)

type fakeStore struct {
	mu      sync.Mutex
	candles map[string][]models.Candle
	loads   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{candles: make(map[string][]models.Candle)}
}

func (f *fakeStore) key(symbol string, tf domrepo.Timeframe) string {
	return symbol + "|" + string(tf)
}

func (f *fakeStore) Append(_ context.Context, symbol string, tf domrepo.Timeframe, c models.Candle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(symbol, tf)
	f.candles[k] = append(f.candles[k], c)
	return nil
}

func (f *fakeStore) GetCandles(_ context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Candle
	for _, c := range f.candles[f.key(symbol, tf)] {
		if !c.Timestamp.Before(from) && !c.Timestamp.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLatestNCandles(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	cs := f.candles[f.key(symbol, tf)]
	if n > len(cs) {
		n = len(cs)
	}
	return append([]models.Candle(nil), cs[len(cs)-n:]...), nil
}

type fakeEngine struct {
	mu      sync.Mutex
	evals   int
	learned []models.AccuracyReport
	seeded  map[string]models.WeightVector
	weights models.WeightVector
	lastSym string
	lastTF  domrepo.Timeframe
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		seeded:  make(map[string]models.WeightVector),
		weights: models.WeightVector{"rsi": 1.0},
	}
}

func (f *fakeEngine) Evaluate(symbol string, tf domrepo.Timeframe, candles []models.Candle, currentPrice float64) models.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals++
	f.lastSym, f.lastTF = symbol, tf
	return models.Signal{
		Symbol:     symbol,
		Timeframe:  string(tf),
		Direction:  models.DirectionLong,
		Confidence: 61.5,
		EntryPrice: currentPrice,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeEngine) Learn(symbol string, tf domrepo.Timeframe, report models.AccuracyReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.learned = append(f.learned, report)
}

func (f *fakeEngine) Weights(string, domrepo.Timeframe) models.WeightVector {
	return f.weights.Clone()
}

func (f *fakeEngine) SeedWeights(symbol string, tf domrepo.Timeframe, w models.WeightVector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeded[symbol+"|"+string(tf)] = w
}

func seedCandles(t *testing.T, store *fakeStore, symbol string, tf domrepo.Timeframe, n int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      100, High: 101, Low: 99, Close: 100 + float64(i)*0.1,
			Volume: 50,
		}
		if err := store.Append(context.Background(), symbol, tf, c); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetSignalEvaluates(t *testing.T) {
	store := newFakeStore()
	eng := newFakeEngine()
	seedCandles(t, store, "BTCUSDT", domrepo.TF1h, 50)

	svc := NewSignalService(store, eng, 250)
	view, err := svc.GetSignal(context.Background(), "BTCUSDT", domrepo.TF1h)
	if err != nil {
		t.Fatalf("get signal: %v", err)
	}
	if view.Symbol != "BTCUSDT" || view.Timeframe != "1h" {
		t.Errorf("view identity = %s/%s", view.Symbol, view.Timeframe)
	}
	if view.Direction != string(models.DirectionLong) {
		t.Errorf("direction = %q", view.Direction)
	}
	if view.Confidence != 61.5 {
		t.Errorf("confidence = %v", view.Confidence)
	}
	// Entry price is the latest close.
	wantEntry := 100 + 49*0.1
	if view.EntryPrice != wantEntry {
		t.Errorf("entry = %v, want %v", view.EntryPrice, wantEntry)
	}
}

func TestGetSignalUsesResponseCache(t *testing.T) {
	store := newFakeStore()
	eng := newFakeEngine()
	seedCandles(t, store, "BTCUSDT", domrepo.TF1h, 50)

	svc := NewSignalService(store, eng, 250)
	svc.SetCache(icache.NewTTLCache(), time.Minute)

	ctx := context.Background()
	if _, err := svc.GetSignal(ctx, "BTCUSDT", domrepo.TF1h); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetSignal(ctx, "BTCUSDT", domrepo.TF1h); err != nil {
		t.Fatal(err)
	}
	if eng.evals != 1 {
		t.Fatalf("engine evaluated %d times, want 1 (second hit cached)", eng.evals)
	}
}

func TestApplyReportFeedsEngine(t *testing.T) {
	store := newFakeStore()
	eng := newFakeEngine()
	svc := NewSignalService(store, eng, 250)

	req := &models.LearnRequest{
		Symbol:            "BTCUSDT",
		TF:                "4h",
		IndicatorAccuracy: map[string]float64{"rsi": 70},
		OverallWinRate:    58,
		SampleCount:       40,
	}
	if err := svc.ApplyReport(context.Background(), req); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(eng.learned) != 1 {
		t.Fatalf("learned %d reports, want 1", len(eng.learned))
	}
	got := eng.learned[0]
	if got.Timeframe != "4h" || got.SampleCount != 40 {
		t.Errorf("report = %+v", got)
	}
}

func TestApplyReportRejectsEmpty(t *testing.T) {
	svc := NewSignalService(newFakeStore(), newFakeEngine(), 250)
	if err := svc.ApplyReport(context.Background(), &models.LearnRequest{}); err == nil {
		t.Fatal("expected error for empty symbol")
	}
	if err := svc.ApplyReport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestGetWeights(t *testing.T) {
	eng := newFakeEngine()
	svc := NewSignalService(newFakeStore(), eng, 250)
	w := svc.GetWeights("BTCUSDT", domrepo.TF1h)
	if w["rsi"] != 1.0 {
		t.Fatalf("weights = %v", w)
	}
}
