package indicator

import (
	"math"

	"SignalPulse/internal/domain/models"
)

// DefaultVolatilityWindow is the rolling window for realized volatility.
const DefaultVolatilityWindow = 20

// LogReturns computes log returns r_t = ln(C_t / C_{t-1}). Non-positive
// closes yield a 0 return rather than NaN.
func LogReturns(cs []models.Candle) []float64 {
	if len(cs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		prev := cs[i-1].Close
		cur := cs[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Volatility computes the annualized standard deviation of log returns over
// the trailing window, scaled by sqrt(252) trading days.
func Volatility(cs []models.Candle, window int) float64 {
	rets := LogReturns(cs)
	if window <= 1 || len(rets) < window {
		return 0
	}

	sum, sum2 := 0.0, 0.0
	for i := len(rets) - window; i < len(rets); i++ {
		r := rets[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance) * math.Sqrt(252)
}
