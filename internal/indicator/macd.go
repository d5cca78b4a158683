package indicator

import "SignalPulse/internal/domain/models"

// Default MACD parameters.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// ComputeMACD computes the MACD line, signal line, and histogram.
// The MACD line is EMA(fast) - EMA(slow) of closes. The signal line is a
// true EMA of the realized MACD sequence built progressively across the
// tail of the series, never an approximation of the current MACD value.
// The histogram is exactly macdLine - signalLine.
func ComputeMACD(cs []models.Candle, fast, slow, signal int) models.MACD {
	closes := Closes(cs)
	if len(closes) < slow+signal {
		return models.MACD{}
	}

	// MACD value at each bar from the first one where the slow EMA exists.
	seq := make([]float64, 0, len(closes)-slow+1)
	for i := slow; i <= len(closes); i++ {
		window := closes[:i]
		seq = append(seq, EMA(window, fast)-EMA(window, slow))
	}

	macdLine := seq[len(seq)-1]
	signalLine := EMA(seq, signal)
	return models.MACD{
		Value:     macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}
}
