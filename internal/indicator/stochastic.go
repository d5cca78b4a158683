package indicator

import "SignalPulse/internal/domain/models"

// Default Stochastic oscillator parameters.
const (
	DefaultStochKPeriod = 14
	DefaultStochDPeriod = 3
)

// Stoch computes the Stochastic oscillator. %K is the position of the last
// close within the high/low range of the last kPeriod bars; %D is the simple
// average of the last dPeriod %K values. A zero range yields a neutral 50.
func Stoch(cs []models.Candle, kPeriod, dPeriod int) models.Stochastic {
	if kPeriod <= 0 || len(cs) < kPeriod {
		return models.Stochastic{K: 50, D: 50}
	}
	if dPeriod <= 0 {
		dPeriod = 1
	}

	kValues := make([]float64, 0, dPeriod)
	for j := dPeriod - 1; j >= 0; j-- {
		end := len(cs) - j
		if end < kPeriod {
			continue
		}
		kValues = append(kValues, stochK(cs[:end], kPeriod))
	}

	k := kValues[len(kValues)-1]
	sum := 0.0
	for _, v := range kValues {
		sum += v
	}
	return models.Stochastic{K: k, D: sum / float64(len(kValues))}
}

func stochK(cs []models.Candle, kPeriod int) float64 {
	start := len(cs) - kPeriod
	highest := cs[start].High
	lowest := cs[start].Low
	for i := start; i < len(cs); i++ {
		if cs[i].High > highest {
			highest = cs[i].High
		}
		if cs[i].Low < lowest {
			lowest = cs[i].Low
		}
	}
	if highest == lowest {
		return 50
	}
	return (cs[len(cs)-1].Close - lowest) / (highest - lowest) * 100
}
