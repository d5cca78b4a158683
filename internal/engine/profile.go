package engine

import domrepo "SignalPulse/internal/domain/repository"

// Profile bundles the per-timeframe tuning of the synthesis and
// stabilization layers. Thresholds increase monotonically with timeframe
// duration: short timeframes flip easily, long timeframes represent slower,
// more capital-significant judgments and resist reversal.
type Profile struct {
	// ConfidenceMult discounts short-timeframe confidence and boosts
	// long-timeframe confidence.
	ConfidenceMult float64
	// DirectionMargin is the minimum bull/bear score spread for a
	// directional call.
	DirectionMargin float64
	// RiskMult scales ATR into the stop distance.
	RiskMult float64
	// OverrideThreshold is the confidence at which a new signal replaces
	// the prior one unconditionally.
	OverrideThreshold float64
	// FlipConfidence is the minimum confidence for a direction change.
	FlipConfidence float64
	// MinStable is the number of evaluations the prior direction must have
	// survived before a flip is allowed.
	MinStable int
	// ProbabilityAdj is added to the success-probability estimate.
	ProbabilityAdj float64
	// LeverageScale discounts leverage on short timeframes.
	LeverageScale float64
}

var profiles = map[domrepo.Timeframe]Profile{
	domrepo.TF1m:  {ConfidenceMult: 0.85, DirectionMargin: 15, RiskMult: 1.0, OverrideThreshold: 95, FlipConfidence: 60, MinStable: 1, ProbabilityAdj: -5, LeverageScale: 0.6},
	domrepo.TF5m:  {ConfidenceMult: 0.90, DirectionMargin: 15, RiskMult: 1.2, OverrideThreshold: 95, FlipConfidence: 62, MinStable: 1, ProbabilityAdj: -2, LeverageScale: 0.7},
	domrepo.TF15m: {ConfidenceMult: 0.95, DirectionMargin: 18, RiskMult: 1.4, OverrideThreshold: 95, FlipConfidence: 65, MinStable: 2, ProbabilityAdj: 0, LeverageScale: 0.8},
	domrepo.TF30m: {ConfidenceMult: 1.00, DirectionMargin: 18, RiskMult: 1.5, OverrideThreshold: 96, FlipConfidence: 68, MinStable: 2, ProbabilityAdj: 2, LeverageScale: 0.9},
	domrepo.TF1h:  {ConfidenceMult: 1.05, DirectionMargin: 20, RiskMult: 1.8, OverrideThreshold: 96, FlipConfidence: 72, MinStable: 3, ProbabilityAdj: 5, LeverageScale: 1.0},
	domrepo.TF4h:  {ConfidenceMult: 1.10, DirectionMargin: 20, RiskMult: 2.0, OverrideThreshold: 97, FlipConfidence: 78, MinStable: 4, ProbabilityAdj: 8, LeverageScale: 1.0},
	domrepo.TF1d:  {ConfidenceMult: 1.15, DirectionMargin: 22, RiskMult: 2.5, OverrideThreshold: 97, FlipConfidence: 82, MinStable: 5, ProbabilityAdj: 12, LeverageScale: 1.0},
	domrepo.TF1w:  {ConfidenceMult: 1.20, DirectionMargin: 24, RiskMult: 3.0, OverrideThreshold: 98, FlipConfidence: 86, MinStable: 6, ProbabilityAdj: 15, LeverageScale: 1.0},
	domrepo.TF1M:  {ConfidenceMult: 1.25, DirectionMargin: 25, RiskMult: 3.5, OverrideThreshold: 98, FlipConfidence: 90, MinStable: 8, ProbabilityAdj: 18, LeverageScale: 1.0},
}

// ProfileFor returns the tuning profile for tf, defaulting to the 1h profile
// for anything unrecognized.
func ProfileFor(tf domrepo.Timeframe) Profile {
	if p, ok := profiles[tf]; ok {
		return p
	}
	return profiles[domrepo.TF1h]
}

// longHorizon reports whether tf is a daily-or-longer bucket.
func longHorizon(tf domrepo.Timeframe) bool {
	switch tf {
	case domrepo.TF1d, domrepo.TF1w, domrepo.TF1M:
		return true
	default:
		return false
	}
}
