package repository

import (
	"context"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
)

func candleAt(ts time.Time, close float64) models.Candle {
	return models.Candle{
		Timestamp: ts,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    10,
	}
}

func TestMemoryCandleStoreAppendOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCandleStore(100)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		c := candleAt(base.Add(time.Duration(i)*time.Minute), 100+float64(i))
		if err := s.Append(ctx, "BTCUSDT", drepo.TF1m, c); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if got := s.Len("BTCUSDT", drepo.TF1m); got != 5 {
		t.Fatalf("len = %d, want 5", got)
	}

	// Out-of-order append is rejected.
	old := candleAt(base.Add(time.Minute), 99)
	if err := s.Append(ctx, "BTCUSDT", drepo.TF1m, old); err == nil {
		t.Fatal("expected error for out-of-order candle")
	}

	// Same timestamp replaces the most recent bar.
	repl := candleAt(base.Add(4*time.Minute), 555)
	if err := s.Append(ctx, "BTCUSDT", drepo.TF1m, repl); err != nil {
		t.Fatalf("replace append: %v", err)
	}
	if got := s.Len("BTCUSDT", drepo.TF1m); got != 5 {
		t.Fatalf("len after replace = %d, want 5", got)
	}
	latest, err := s.GetLatestNCandles(ctx, "BTCUSDT", 1, drepo.TF1m)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest[0].Close != 555 {
		t.Fatalf("latest close = %v, want 555", latest[0].Close)
	}
}

func TestMemoryCandleStoreInvalidCandle(t *testing.T) {
	s := NewMemoryCandleStore(10)
	err := s.Append(context.Background(), "BTCUSDT", drepo.TF1m, models.Candle{})
	if err == nil {
		t.Fatal("expected error for invalid candle")
	}
}

func TestMemoryCandleStoreLimitEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCandleStore(3)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		c := candleAt(base.Add(time.Duration(i)*time.Hour), float64(i))
		if err := s.Append(ctx, "ETHUSDT", drepo.TF1h, c); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if got := s.Len("ETHUSDT", drepo.TF1h); got != 3 {
		t.Fatalf("len = %d, want 3", got)
	}

	cs, err := s.GetLatestNCandles(ctx, "ETHUSDT", 10, drepo.TF1h)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if cs[0].Close != 3 || cs[len(cs)-1].Close != 5 {
		t.Fatalf("kept window [%v..%v], want [3..5]", cs[0].Close, cs[len(cs)-1].Close)
	}
}

func TestMemoryCandleStoreGetCandlesRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCandleStore(100)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		c := candleAt(base.Add(time.Duration(i)*time.Hour), float64(i))
		if err := s.Append(ctx, "BTCUSDT", drepo.TF1h, c); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	from := base.Add(2 * time.Hour)
	to := base.Add(5 * time.Hour)
	cs, err := s.GetCandles(ctx, "BTCUSDT", from, to, drepo.TF1h)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cs) != 4 {
		t.Fatalf("got %d candles, want 4 (inclusive bounds)", len(cs))
	}
	if cs[0].Close != 2 || cs[3].Close != 5 {
		t.Fatalf("range [%v..%v], want [2..5]", cs[0].Close, cs[3].Close)
	}
}

func TestMemoryCandleStoreSeriesIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCandleStore(100)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Append(ctx, "BTCUSDT", drepo.TF1m, candleAt(base, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, "BTCUSDT", drepo.TF1h, candleAt(base, 2)); err != nil {
		t.Fatal(err)
	}

	if got := s.Len("BTCUSDT", drepo.TF1m); got != 1 {
		t.Fatalf("1m len = %d, want 1", got)
	}
	if got := s.Len("BTCUSDT", drepo.TF1h); got != 1 {
		t.Fatalf("1h len = %d, want 1", got)
	}
}

func TestMemoryCandleStoreLatestCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCandleStore(100)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Append(ctx, "BTCUSDT", drepo.TF1m, candleAt(base, 7)); err != nil {
		t.Fatal(err)
	}

	cs, _ := s.GetLatestNCandles(ctx, "BTCUSDT", 1, drepo.TF1m)
	cs[0].Close = -1

	again, _ := s.GetLatestNCandles(ctx, "BTCUSDT", 1, drepo.TF1m)
	if again[0].Close != 7 {
		t.Fatalf("mutation leaked into store: close = %v", again[0].Close)
	}
}
