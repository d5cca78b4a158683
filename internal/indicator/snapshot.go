package indicator

import "SignalPulse/internal/domain/models"

// EMA periods for the short/medium/long trend stack.
const (
	DefaultEMAShort  = 9
	DefaultEMAMedium = 21
	DefaultEMALong   = 50
)

// ComputeSnapshot evaluates the full indicator bundle over a candle series.
// The Regime field is left empty; classification happens downstream from the
// snapshot's volatility, ADX, and RSI values. Deterministic: identical input
// series always produce identical snapshots.
func ComputeSnapshot(cs []models.Candle, currentPrice float64) models.IndicatorSnapshot {
	closes := Closes(cs)
	supports, resistances := Levels(cs, currentPrice, DefaultPivotLookback)
	return models.IndicatorSnapshot{
		RSI:  RSI(cs, DefaultRSIPeriod),
		MACD: ComputeMACD(cs, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		EMA: models.EMASet{
			Short:  EMA(closes, DefaultEMAShort),
			Medium: EMA(closes, DefaultEMAMedium),
			Long:   EMA(closes, DefaultEMALong),
		},
		Stochastic:  Stoch(cs, DefaultStochKPeriod, DefaultStochDPeriod),
		Bollinger:   Bollinger(cs, DefaultBollingerPeriod, DefaultBollingerStdDev),
		Trend:       ADX(cs, DefaultADXPeriod),
		ATR:         ATR(cs, DefaultATRPeriod),
		Supports:    supports,
		Resistances: resistances,
		Volatility:  Volatility(cs, DefaultVolatilityWindow),
	}
}
