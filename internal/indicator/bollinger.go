package indicator

import (
	"math"

	"SignalPulse/internal/domain/models"
)

// Default Bollinger Band parameters.
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
)

// Bollinger computes Bollinger Bands over closes: middle = SMA(period),
// upper/lower = middle +/- multiplier * stddev. Width is the band spread
// relative to the middle band; %B is the close's position within the bands,
// clamped to [0, 100] with 50 substituted when the bands collapse.
func Bollinger(cs []models.Candle, period int, multiplier float64) models.Bollinger {
	closes := Closes(cs)
	if period <= 0 || len(closes) < period {
		last := 0.0
		if len(closes) > 0 {
			last = closes[len(closes)-1]
		}
		return models.Bollinger{Upper: last, Middle: last, Lower: last, PercentB: 50}
	}

	middle := SMA(closes, period)
	variance := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	upper := middle + multiplier*std
	lower := middle - multiplier*std

	width := 0.0
	if middle != 0 {
		width = (upper - lower) / middle
	}

	percentB := 50.0
	if upper != lower {
		percentB = clamp((closes[len(closes)-1]-lower)/(upper-lower)*100, 0, 100)
	}

	return models.Bollinger{
		Upper:    upper,
		Middle:   middle,
		Lower:    lower,
		Width:    width,
		PercentB: percentB,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
