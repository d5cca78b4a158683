package models

import (
	"math"
	"time"
)

// Candle represents one OHLCV observation for a (symbol, timeframe) bucket.
// Candles are immutable once appended to a series.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Valid reports whether all OHLCV fields are finite and non-negative.
// Ingestion rejects invalid candles; the engine assumes a validated series.
func (c Candle) Valid() bool {
	for _, v := range [5]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return !c.Timestamp.IsZero()
}

// TrueRange computes the true range of c given the previous candle's close.
func (c Candle) TrueRange(prevClose float64) float64 {
	hl := c.High - c.Low
	hc := math.Abs(c.High - prevClose)
	lc := math.Abs(c.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}
