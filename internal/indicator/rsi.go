package indicator

import "SignalPulse/internal/domain/models"

// DefaultRSIPeriod is the standard Wilder RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the Relative Strength Index with Wilder's smoothing.
// The first period deltas seed the average gain/loss as simple averages;
// later bars update via avg = (avg*(period-1) + value) / period.
// Returns 50 on insufficient data or a perfectly flat series, and 100 when
// gains exist with zero average loss. Output is always in [0, 100].
func RSI(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		d := cs[i].Close - cs[i-1].Close
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(cs); i++ {
		d := cs[i].Close - cs[i-1].Close
		var gain, loss float64
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
