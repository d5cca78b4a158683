package engine

import (
	"sync"

	"SignalPulse/internal/domain/models"
)

// Indicator names used as weight-vector keys.
const (
	WeightRSI        = "rsi"
	WeightMACD       = "macd"
	WeightEMA        = "ema"
	WeightBollinger  = "bollinger"
	WeightADX        = "adx"
	WeightStochastic = "stochastic"
	WeightLevels     = "levels"
)

// Weight adaptation bounds and rates.
const (
	minWeight        = 0.1
	maxWeight        = 2.0
	learningRate     = 0.1
	minSampleCount   = 10
	poorWinRate      = 30.0
	strongWinRate    = 70.0
	bestBoostFactor  = 1.1
	defaultWeightVal = 1.0
)

var weightKeys = []string{
	WeightRSI, WeightMACD, WeightEMA, WeightBollinger,
	WeightADX, WeightStochastic, WeightLevels,
}

// WeightStore holds per-(symbol, timeframe) indicator weight vectors and
// nudges them from realized win-rate feedback. Updates are online,
// per-key exponential adjustments, not a batch optimizer.
type WeightStore struct {
	mu      sync.RWMutex
	vectors map[string]models.WeightVector
}

func NewWeightStore() *WeightStore {
	return &WeightStore{vectors: make(map[string]models.WeightVector)}
}

func defaultWeights() models.WeightVector {
	w := make(models.WeightVector, len(weightKeys))
	for _, k := range weightKeys {
		w[k] = defaultWeightVal
	}
	return w
}

// Get returns a copy of the weight vector for key, creating a default
// vector on first access.
func (s *WeightStore) Get(key string) models.WeightVector {
	s.mu.RLock()
	w, ok := s.vectors[key]
	s.mu.RUnlock()
	if ok {
		return w.Clone()
	}
	return defaultWeights()
}

// Seed installs a previously learned vector for key unless one already
// exists. Unknown indicator names are dropped and missing ones filled
// with the default so the vector shape stays fixed.
func (s *WeightStore) Seed(key string, w models.WeightVector) {
	if len(w) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vectors[key]; ok {
		return
	}

	v := defaultWeights()
	for _, k := range weightKeys {
		if val, ok := w[k]; ok {
			v[k] = clamp(val, minWeight, maxWeight)
		}
	}
	s.vectors[key] = v
}

// Apply nudges the weight vector for key from an accuracy report.
// Reports with fewer than minSampleCount samples are ignored, as are
// reports whose overall win rate suggests a broken regime. A very strong
// win rate additionally boosts the single best-scoring indicator.
func (s *WeightStore) Apply(key string, report models.AccuracyReport) bool {
	if report.SampleCount < minSampleCount {
		return false
	}
	if report.OverallWinRate < poorWinRate {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.vectors[key]
	if !ok {
		w = defaultWeights()
		s.vectors[key] = w
	}

	normWin := clamp(report.OverallWinRate/100, 0, 1)
	bestKey := ""
	bestScore := -1.0
	for _, k := range weightKeys {
		acc, ok := report.IndicatorAccuracy[k]
		if !ok {
			continue
		}
		score := 0.7*clamp(acc/100, 0, 1) + 0.3*normWin
		w[k] = clamp(w[k]+learningRate*(score-0.5), minWeight, maxWeight)
		if score > bestScore {
			bestScore = score
			bestKey = k
		}
	}

	if report.OverallWinRate > strongWinRate && bestKey != "" {
		w[bestKey] = clamp(w[bestKey]*bestBoostFactor, minWeight, maxWeight)
	}
	return true
}
