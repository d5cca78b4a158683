package engine

import "SignalPulse/internal/domain/models"

// Volatility and trend thresholds for regime classification.
const (
	highVolThreshold = 0.04
	lowVolThreshold  = 0.015
	trendADX         = 25.0
)

// ClassifyRegime maps (volatility, adx, rsi) to a market regime. Rules are
// evaluated in order; the first match wins.
func ClassifyRegime(volatility, adx, rsi float64) models.Regime {
	switch {
	case volatility > highVolThreshold:
		return models.RegimeHighVolatility
	case volatility < lowVolThreshold:
		return models.RegimeLowVolatility
	case adx > trendADX && rsi > 60:
		return models.RegimeTrendingUp
	case adx > trendADX && rsi < 40:
		return models.RegimeTrendingDown
	default:
		return models.RegimeRanging
	}
}
