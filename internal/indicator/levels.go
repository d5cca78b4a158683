package indicator

import (
	"math"
	"sort"

	"SignalPulse/internal/domain/models"
)

const (
	// DefaultPivotLookback is the half-window for pivot detection.
	DefaultPivotLookback = 14
	// levelSignificance is the minimum distance (as a fraction of price)
	// for a recent extreme to count as a level.
	levelSignificance = 0.005
	// extremeWindow bounds the recent-extreme and volume-cluster scans.
	extremeWindow = 100
	// volumeBuckets is the price-bucket count for volume clustering.
	volumeBuckets = 24
	// maxLevels caps how many supports/resistances are reported.
	maxLevels = 3
)

// Levels derives support and resistance levels around currentPrice.
// Pivot highs/lows, the most extreme recent high/low past a significance
// threshold, and volume-weighted price clusters are pooled, deduplicated,
// and split into at most three supports (descending, nearest first) and
// three resistances (ascending, nearest first). A short series falls back
// to fixed percentage offsets from the current price.
func Levels(cs []models.Candle, currentPrice float64, lookback int) (supports, resistances []float64) {
	if len(cs) < 20 || currentPrice <= 0 {
		return fallbackLevels(currentPrice)
	}
	if lookback <= 0 {
		lookback = DefaultPivotLookback
	}

	candidates := pivotLevels(cs, lookback)
	candidates = append(candidates, recentExtremes(cs, currentPrice)...)
	candidates = append(candidates, volumeClusters(cs)...)
	candidates = dedupeLevels(candidates)

	for _, lvl := range candidates {
		switch {
		case lvl < currentPrice:
			supports = append(supports, lvl)
		case lvl > currentPrice:
			resistances = append(resistances, lvl)
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)
	if len(supports) > maxLevels {
		supports = supports[:maxLevels]
	}
	if len(resistances) > maxLevels {
		resistances = resistances[:maxLevels]
	}
	return supports, resistances
}

func fallbackLevels(price float64) (supports, resistances []float64) {
	for _, pct := range [maxLevels]float64{0.015, 0.03, 0.045} {
		supports = append(supports, price*(1-pct))
		resistances = append(resistances, price*(1+pct))
	}
	return supports, resistances
}

// pivotLevels finds bars whose high (low) exceeds every other high (low)
// within +/- lookback bars.
func pivotLevels(cs []models.Candle, lookback int) []float64 {
	var out []float64
	for i := lookback; i < len(cs)-lookback; i++ {
		isHigh, isLow := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if cs[j].High >= cs[i].High {
				isHigh = false
			}
			if cs[j].Low <= cs[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			out = append(out, cs[i].High)
		}
		if isLow {
			out = append(out, cs[i].Low)
		}
	}
	return out
}

func recentExtremes(cs []models.Candle, currentPrice float64) []float64 {
	start := len(cs) - extremeWindow
	if start < 0 {
		start = 0
	}
	maxHigh := cs[start].High
	minLow := cs[start].Low
	for _, c := range cs[start:] {
		if c.High > maxHigh {
			maxHigh = c.High
		}
		if c.Low < minLow {
			minLow = c.Low
		}
	}

	var out []float64
	if math.Abs(maxHigh-currentPrice)/currentPrice > levelSignificance {
		out = append(out, maxHigh)
	}
	if math.Abs(minLow-currentPrice)/currentPrice > levelSignificance {
		out = append(out, minLow)
	}
	return out
}

// volumeClusters buckets recent closes by price and returns the centers of
// the highest-volume buckets.
func volumeClusters(cs []models.Candle) []float64 {
	start := len(cs) - extremeWindow
	if start < 0 {
		start = 0
	}
	window := cs[start:]

	lo, hi := window[0].Close, window[0].Close
	for _, c := range window {
		if c.Close < lo {
			lo = c.Close
		}
		if c.Close > hi {
			hi = c.Close
		}
	}
	if hi == lo {
		return nil
	}

	step := (hi - lo) / volumeBuckets
	vols := make([]float64, volumeBuckets)
	for _, c := range window {
		idx := int((c.Close - lo) / step)
		if idx >= volumeBuckets {
			idx = volumeBuckets - 1
		}
		vols[idx] += c.Volume
	}

	type bucket struct {
		center float64
		volume float64
	}
	buckets := make([]bucket, 0, volumeBuckets)
	for i, v := range vols {
		if v > 0 {
			buckets = append(buckets, bucket{center: lo + (float64(i)+0.5)*step, volume: v})
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].volume > buckets[j].volume })

	var out []float64
	for i := 0; i < len(buckets) && i < maxLevels; i++ {
		out = append(out, buckets[i].center)
	}
	return out
}

// dedupeLevels merges levels within 0.2% of each other, keeping the first.
func dedupeLevels(levels []float64) []float64 {
	var out []float64
	for _, lvl := range levels {
		dup := false
		for _, kept := range out {
			if kept != 0 && math.Abs(lvl-kept)/kept < 0.002 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, lvl)
		}
	}
	return out
}
