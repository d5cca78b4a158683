package engine

import (
	"testing"

	"SignalPulse/internal/domain/models"
)

func TestWeightStoreSeed(t *testing.T) {
	s := NewWeightStore()
	s.Seed("BTCUSDT|1h", models.WeightVector{
		WeightRSI:  1.6,
		WeightMACD: 0.4,
		"bogus":    3.0,
	})

	w := s.Get("BTCUSDT|1h")
	if w[WeightRSI] != 1.6 {
		t.Errorf("rsi = %v, want 1.6", w[WeightRSI])
	}
	if w[WeightMACD] != 0.4 {
		t.Errorf("macd = %v, want 0.4", w[WeightMACD])
	}
	if _, ok := w["bogus"]; ok {
		t.Error("unknown indicator name should be dropped")
	}
	// Unspecified keys fall back to the default.
	if w[WeightEMA] != 1.0 {
		t.Errorf("ema = %v, want default 1.0", w[WeightEMA])
	}
}

func TestWeightStoreSeedClampsAndKeepsExisting(t *testing.T) {
	s := NewWeightStore()
	s.Seed("k", models.WeightVector{WeightRSI: 99})
	if w := s.Get("k"); w[WeightRSI] != 2.0 {
		t.Errorf("rsi = %v, want clamp to 2.0", w[WeightRSI])
	}

	// A second seed must not overwrite the live vector.
	s.Seed("k", models.WeightVector{WeightRSI: 0.5})
	if w := s.Get("k"); w[WeightRSI] != 2.0 {
		t.Errorf("rsi = %v after reseed, want 2.0", w[WeightRSI])
	}

	// Empty seeds are ignored entirely.
	s.Seed("fresh", models.WeightVector{})
	if w := s.Get("fresh"); w[WeightRSI] != 1.0 {
		t.Errorf("fresh rsi = %v, want default", w[WeightRSI])
	}
}
