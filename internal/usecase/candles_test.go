package usecase

import (
	"context"
	"testing"
	"time"

	domrepo "SignalPulse/internal/domain/repository"
)

func TestGetCandlesValidation(t *testing.T) {
	uc := NewCandlesUseCase(newFakeStore())
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := uc.GetCandles(ctx, GetCandlesParams{From: now, To: now, Timeframe: domrepo.TF1h}); err == nil {
		t.Error("expected error for missing symbol")
	}
	if _, err := uc.GetCandles(ctx, GetCandlesParams{
		Symbol: "BTCUSDT", From: now.Add(time.Hour), To: now, Timeframe: domrepo.TF1h,
	}); err == nil {
		t.Error("expected error for from > to")
	}
}

func TestGetCandlesLimitTruncatesOldest(t *testing.T) {
	store := newFakeStore()
	seedCandles(t, store, "BTCUSDT", domrepo.TF1h, 20)
	uc := NewCandlesUseCase(store)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	res, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "BTCUSDT",
		From:      base,
		To:        base.Add(24 * time.Hour),
		Timeframe: domrepo.TF1h,
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.Count != 5 {
		t.Fatalf("count = %d, want 5", res.Count)
	}
	// Newest bars survive the limit cut.
	if res.Candles[4].Close != 100+19*0.1 {
		t.Fatalf("last close = %v", res.Candles[4].Close)
	}
	if res.Symbol != "BTCUSDT" || res.Timeframe != "1h" {
		t.Fatalf("result identity = %s/%s", res.Symbol, res.Timeframe)
	}
}
