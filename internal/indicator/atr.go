package indicator

import "SignalPulse/internal/domain/models"

// DefaultATRPeriod is the standard Wilder ATR lookback.
const DefaultATRPeriod = 14

// ATR computes the Average True Range: a simple average of true range over
// the first period bars, then Wilder's recurrence
// atr = (atr*(period-1) + tr) / period for the remainder.
func ATR(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) < period+1 {
		return 0
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += cs[i].TrueRange(cs[i-1].Close)
	}
	atr := sum / float64(period)

	for i := period + 1; i < len(cs); i++ {
		tr := cs[i].TrueRange(cs[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr
}
