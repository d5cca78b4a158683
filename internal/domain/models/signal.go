package models

import "time"

// Direction is the directional call of a trading signal.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// Regime is a coarse classification of current market behavior.
type Regime string

const (
	RegimeTrendingUp     Regime = "TRENDING_UP"
	RegimeTrendingDown   Regime = "TRENDING_DOWN"
	RegimeRanging        Regime = "RANGING"
	RegimeHighVolatility Regime = "HIGH_VOLATILITY"
	RegimeLowVolatility  Regime = "LOW_VOLATILITY"
)

// MACD holds the MACD line, its signal line, and histogram.
type MACD struct {
	Value     float64
	Signal    float64
	Histogram float64
}

// EMASet holds the short/medium/long exponential moving averages.
type EMASet struct {
	Short  float64
	Medium float64
	Long   float64
}

// Stochastic holds the %K and %D oscillator values.
type Stochastic struct {
	K float64
	D float64
}

// Bollinger holds Bollinger Band levels plus derived width and %B.
type Bollinger struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Width    float64
	PercentB float64
}

// DirectionalIndex holds ADX with its +DI/-DI components.
type DirectionalIndex struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// IndicatorSnapshot is the computed, read-only indicator bundle for one
// series evaluation. Never mutated after creation; safe to cache and share.
type IndicatorSnapshot struct {
	RSI         float64
	MACD        MACD
	EMA         EMASet
	Stochastic  Stochastic
	Bollinger   Bollinger
	Trend       DirectionalIndex
	ATR         float64
	Supports    []float64
	Resistances []float64
	Volatility  float64
	Regime      Regime
}

// Signal is the full output of one engine evaluation.
type Signal struct {
	Symbol             string
	Timeframe          string
	Direction          Direction
	Confidence         float64 // [0,100]
	EntryPrice         float64
	StopLoss           float64
	TakeProfit         float64
	RiskReward         float64
	Leverage           float64
	SuccessProbability float64
	Timestamp          time.Time
	Indicators         IndicatorSnapshot
}
