package engine

import (
	"sync"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
)

// Confidence blending and flip discount for the hysteresis layer.
const (
	blendNewWeight   = 0.7
	blendPriorWeight = 0.3
	flipDiscount     = 5.0
	flipFloor        = 50.0
)

// StabilizationState tracks the last surfaced signal per (symbol, timeframe)
// and how many evaluations it has survived.
type StabilizationState struct {
	LastSignal  models.Signal
	StableCount int
}

// Stabilizer applies cross-evaluation hysteresis so weak or ambiguous
// re-evaluations do not flip an established direction. State is owned
// exclusively here and mutated only by Apply.
type Stabilizer struct {
	mu     sync.Mutex
	states map[string]*StabilizationState
}

func NewStabilizer() *Stabilizer {
	return &Stabilizer{states: make(map[string]*StabilizationState)}
}

// Apply runs the hysteresis transition for a freshly synthesized signal and
// returns the signal actually surfaced, which may be the prior one.
//
// A contrary signal below the flip-confidence threshold is rejected but
// still increments the stable count, so a persistently contrary stream
// ages the prior signal toward the fallback window instead of freezing it.
func (s *Stabilizer) Apply(key string, tf domrepo.Timeframe, next models.Signal) models.Signal {
	p := ProfileFor(tf)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[key]
	if !ok || st.LastSignal.Direction == "" {
		s.states[key] = &StabilizationState{LastSignal: next, StableCount: 1}
		return next
	}

	// Overwhelming confidence always wins.
	if next.Confidence >= p.OverrideThreshold {
		st.LastSignal = next
		st.StableCount = 1
		return next
	}

	prior := st.LastSignal
	if next.Direction == prior.Direction {
		next.Confidence = clamp(blendNewWeight*next.Confidence+blendPriorWeight*prior.Confidence, 0, 100)
		st.LastSignal = next
		st.StableCount++
		return next
	}

	if next.Confidence < p.FlipConfidence {
		st.StableCount++
		return prior
	}

	if st.StableCount < p.MinStable {
		st.StableCount++
		return prior
	}

	next.Confidence = clamp(next.Confidence-flipDiscount, flipFloor, 100)
	st.LastSignal = next
	st.StableCount = 1
	return next
}

// State returns a copy of the stabilization state for key, if present.
func (s *Stabilizer) State(key string) (StabilizationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key]
	if !ok {
		return StabilizationState{}, false
	}
	return *st, true
}
