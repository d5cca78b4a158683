package usecase

import (
	"context"
	"testing"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	pcache "SignalPulse/pkg/cache"
)

func TestWeightArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	archive := NewWeightArchive(pcache.NewMemoryCache(), nil)

	w := models.WeightVector{"rsi": 1.4, "macd": 0.8}
	archive.Save(ctx, "BTCUSDT", domrepo.TF1h, w)

	eng := newFakeEngine()
	archive.Restore(ctx, []string{"BTCUSDT", "ETHUSDT"}, []domrepo.Timeframe{domrepo.TF1m, domrepo.TF1h}, eng)

	if len(eng.seeded) != 1 {
		t.Fatalf("seeded %d vectors, want 1", len(eng.seeded))
	}
	got := eng.seeded["BTCUSDT|1h"]
	if got["rsi"] != 1.4 || got["macd"] != 0.8 {
		t.Fatalf("restored vector = %v", got)
	}
}

func TestWeightArchiveSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	cache := pcache.NewMemoryCache()
	archive := NewWeightArchive(cache, nil)

	archive.Save(ctx, "BTCUSDT", domrepo.TF1h, models.WeightVector{})
	if ok, _ := cache.Exists(ctx, "weights:BTCUSDT:1h"); ok {
		t.Fatal("empty vector should not be persisted")
	}
}

func TestApplyReportPersistsWeights(t *testing.T) {
	cache := pcache.NewMemoryCache()
	eng := newFakeEngine()
	svc := NewSignalService(newFakeStore(), eng, 250)
	svc.SetArchive(NewWeightArchive(cache, nil))

	req := &models.LearnRequest{
		Symbol:            "BTCUSDT",
		TF:                "1h",
		IndicatorAccuracy: map[string]float64{"rsi": 80},
		OverallWinRate:    60,
		SampleCount:       30,
	}
	if err := svc.ApplyReport(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	var w models.WeightVector
	if err := cache.Get(context.Background(), "weights:BTCUSDT:1h", &w); err != nil {
		t.Fatalf("weights not archived: %v", err)
	}
	if w["rsi"] != 1.0 {
		t.Fatalf("archived vector = %v", w)
	}
}
