package indicator

import "SignalPulse/internal/domain/models"

// Closes extracts the close-price series from candles.
func Closes(cs []models.Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// SMA computes the simple average of the last period values.
func SMA(vals []float64, period int) float64 {
	if period <= 0 || len(vals) == 0 {
		return 0
	}
	if len(vals) < period {
		period = len(vals)
	}
	sum := 0.0
	for i := len(vals) - period; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(period)
}

// EMA computes an exponential moving average over vals. The seed is the
// simple average of the first period values, or the first value when the
// series is shorter than the period.
func EMA(vals []float64, period int) float64 {
	if len(vals) == 0 || period <= 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	var ema float64
	start := 0
	if len(vals) < period {
		ema = vals[0]
		start = 1
	} else {
		sum := 0.0
		for i := 0; i < period; i++ {
			sum += vals[i]
		}
		ema = sum / float64(period)
		start = period
	}
	for i := start; i < len(vals); i++ {
		ema = vals[i]*k + ema*(1-k)
	}
	return ema
}
