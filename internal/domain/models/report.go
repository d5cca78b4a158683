package models

// AccuracyReport carries realized trade outcomes for one (symbol, timeframe)
// back into the engine's adaptive weight store. Produced by an external
// accuracy tracker once trades resolve.
type AccuracyReport struct {
	Symbol            string
	Timeframe         string
	IndicatorAccuracy map[string]float64 // indicator name -> hit rate in [0,100]
	OverallWinRate    float64            // [0,100]
	SampleCount       int
}

// WeightVector maps indicator names to score multipliers in [0.1, 2.0].
type WeightVector map[string]float64

// Clone returns an independent copy of the vector.
func (w WeightVector) Clone() WeightVector {
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
