package engine

import (
	"math"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
)

// MinBars is the minimum series length for a full evaluation; anything
// shorter yields the canonical NEUTRAL signal.
const MinBars = 50

// Scoring point values per indicator rule. Each contribution is multiplied
// by the indicator's adaptive weight before summation.
const (
	ptsRSIExtreme   = 25.0 // RSI beyond 30/70
	ptsRSILean      = 12.0 // RSI beyond 40/60
	ptsMACDBase     = 10.0
	ptsMACDStrong   = 20.0 // histogram magnitude > 0.1% of price
	ptsEMAStack     = 20.0 // full short>medium>long ordering (or inverse)
	ptsEMAPartial   = 8.0  // short/medium agreement only
	ptsBollExtreme  = 15.0 // %B beyond 10/90
	ptsBollLean     = 8.0  // %B beyond 25/75
	ptsADXTrend     = 15.0 // DI dominance with ADX > 25
	ptsStochExtreme = 12.0
	ptsLevelTouch   = 10.0 // price within 1% of a support/resistance

	directionFloor   = 45.0 // minimum absolute score for a directional call
	confidenceSlope  = 0.6  // confidence points per score-spread point
	consensusBonus   = 2.0  // per agreeing indicator
	minConfidence    = 30.0
	maxConfidence    = 98.0
	neutralStopPct   = 0.02
	levelTouchBand   = 0.01
	minSuccessProb   = 25.0
	maxSuccessProb   = 98.0
	neutralProbCap   = 60.0
	probBaseline     = 0.75 // confidence-to-probability baseline factor
	longHorizonBonus = 3.0  // LONG bias on daily-and-up timeframes
)

// Synthesizer turns an indicator snapshot into a raw (pre-stabilization)
// trading signal using weighted multi-factor scoring.
type Synthesizer struct{}

func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

type factorScores struct {
	bullish   float64
	bearish   float64
	consensus int // indicators agreeing with the leading side
}

// Synthesize scores the snapshot and produces a full signal with risk
// levels, leverage, and a success-probability estimate.
func (s *Synthesizer) Synthesize(symbol string, tf domrepo.Timeframe, snap models.IndicatorSnapshot, price float64, w models.WeightVector, now time.Time) models.Signal {
	p := ProfileFor(tf)
	scores := scoreFactors(snap, price, w)

	direction := models.DirectionNeutral
	spread := scores.bullish - scores.bearish
	switch {
	case spread >= p.DirectionMargin && scores.bullish >= directionFloor:
		direction = models.DirectionLong
	case -spread >= p.DirectionMargin && scores.bearish >= directionFloor:
		direction = models.DirectionShort
	}

	confidence := 50.0
	if direction != models.DirectionNeutral {
		confidence = 50 + math.Abs(spread)*confidenceSlope + float64(scores.consensus)*consensusBonus
		confidence = clamp(confidence*p.ConfidenceMult, minConfidence, maxConfidence)
	}

	stop, take := riskLevels(direction, price, snap, p)
	rr := riskReward(direction, price, stop, take)

	return models.Signal{
		Symbol:             symbol,
		Timeframe:          string(tf),
		Direction:          direction,
		Confidence:         confidence,
		EntryPrice:         price,
		StopLoss:           stop,
		TakeProfit:         take,
		RiskReward:         rr,
		Leverage:           leverage(confidence, rr, p),
		SuccessProbability: successProbability(direction, confidence, tf, p),
		Timestamp:          now,
		Indicators:         snap,
	}
}

// NeutralSignal is the canonical fallback for series below MinBars:
// NEUTRAL at confidence 50 with +/-2% risk levels, never an error.
func NeutralSignal(symbol string, tf domrepo.Timeframe, price float64, snap models.IndicatorSnapshot, now time.Time) models.Signal {
	return models.Signal{
		Symbol:             symbol,
		Timeframe:          string(tf),
		Direction:          models.DirectionNeutral,
		Confidence:         50,
		EntryPrice:         price,
		StopLoss:           price * (1 - neutralStopPct),
		TakeProfit:         price * (1 + neutralStopPct),
		RiskReward:         1,
		Leverage:           1,
		SuccessProbability: 50,
		Timestamp:          now,
		Indicators:         snap,
	}
}

func scoreFactors(snap models.IndicatorSnapshot, price float64, w models.WeightVector) factorScores {
	var f factorScores
	var bullFactors, bearFactors int

	add := func(bull bool, pts, weight float64) {
		if bull {
			f.bullish += pts * weight
			bullFactors++
		} else {
			f.bearish += pts * weight
			bearFactors++
		}
	}

	trending := snap.Trend.ADX > trendADX

	// RSI: oversold/overbought bands in a ranging market; with a confirmed
	// trend the same extremes read as momentum continuation instead.
	if trending {
		switch {
		case snap.RSI > 60:
			add(true, ptsRSILean, w[WeightRSI])
		case snap.RSI < 40:
			add(false, ptsRSILean, w[WeightRSI])
		}
	} else {
		switch {
		case snap.RSI < 30:
			add(true, ptsRSIExtreme, w[WeightRSI])
		case snap.RSI < 40:
			add(true, ptsRSILean, w[WeightRSI])
		case snap.RSI > 70:
			add(false, ptsRSIExtreme, w[WeightRSI])
		case snap.RSI > 60:
			add(false, ptsRSILean, w[WeightRSI])
		}
	}

	// MACD histogram sign and magnitude.
	if h := snap.MACD.Histogram; h != 0 {
		pts := ptsMACDBase
		if price > 0 && math.Abs(h)/price > 0.001 {
			pts = ptsMACDStrong
		}
		add(h > 0, pts, w[WeightMACD])
	}

	// EMA stack ordering.
	e := snap.EMA
	switch {
	case e.Short > e.Medium && e.Medium > e.Long:
		add(true, ptsEMAStack, w[WeightEMA])
	case e.Short < e.Medium && e.Medium < e.Long:
		add(false, ptsEMAStack, w[WeightEMA])
	case e.Short > e.Medium:
		add(true, ptsEMAPartial, w[WeightEMA])
	case e.Short < e.Medium:
		add(false, ptsEMAPartial, w[WeightEMA])
	}

	// Bollinger %B extremes are mean-reversion evidence; riding the band
	// during a confirmed trend is not faded.
	if !trending {
		switch {
		case snap.Bollinger.PercentB < 10:
			add(true, ptsBollExtreme, w[WeightBollinger])
		case snap.Bollinger.PercentB < 25:
			add(true, ptsBollLean, w[WeightBollinger])
		case snap.Bollinger.PercentB > 90:
			add(false, ptsBollExtreme, w[WeightBollinger])
		case snap.Bollinger.PercentB > 75:
			add(false, ptsBollLean, w[WeightBollinger])
		}
	}

	// DI dominance only matters in a trending market.
	if trending {
		add(snap.Trend.PlusDI > snap.Trend.MinusDI, ptsADXTrend, w[WeightADX])
	}

	// Stochastic extremes, faded only outside confirmed trends.
	if st := snap.Stochastic; !trending {
		if st.K < 20 && st.D < 25 {
			add(true, ptsStochExtreme, w[WeightStochastic])
		} else if st.K > 80 && st.D > 75 {
			add(false, ptsStochExtreme, w[WeightStochastic])
		}
	}

	// Proximity to structure: near support is bullish, near resistance bearish.
	if price > 0 {
		if len(snap.Supports) > 0 && (price-snap.Supports[0])/price < levelTouchBand {
			add(true, ptsLevelTouch, w[WeightLevels])
		}
		if len(snap.Resistances) > 0 && (snap.Resistances[0]-price)/price < levelTouchBand {
			add(false, ptsLevelTouch, w[WeightLevels])
		}
	}

	if f.bullish >= f.bearish {
		f.consensus = bullFactors
	} else {
		f.consensus = bearFactors
	}
	return f
}

// riskLevels places the stop at entry -/+ ATR*riskMult and the take-profit
// at twice that distance, then snaps to nearby structure so stops do not sit
// inside an obvious support/resistance zone.
func riskLevels(dir models.Direction, price float64, snap models.IndicatorSnapshot, p Profile) (stop, take float64) {
	risk := snap.ATR * p.RiskMult
	if risk <= 0 {
		risk = price * 0.01
	}

	switch dir {
	case models.DirectionLong:
		stop = price - risk
		take = price + 2*risk
		if len(snap.Supports) > 0 {
			if s := snap.Supports[0]; s > stop && s < price {
				stop = s * 0.999
			}
		}
		if len(snap.Resistances) > 0 {
			if r := snap.Resistances[0]; r < take && r > price {
				take = r
			}
		}
	case models.DirectionShort:
		stop = price + risk
		take = price - 2*risk
		if len(snap.Resistances) > 0 {
			if r := snap.Resistances[0]; r < stop && r > price {
				stop = r * 1.001
			}
		}
		if len(snap.Supports) > 0 {
			if s := snap.Supports[0]; s > take && s < price {
				take = s
			}
		}
	default:
		stop = price * (1 - neutralStopPct)
		take = price * (1 + neutralStopPct)
	}
	return stop, take
}

func riskReward(dir models.Direction, entry, stop, take float64) float64 {
	riskDist := math.Abs(entry - stop)
	if riskDist == 0 {
		return 1
	}
	rr := math.Abs(take-entry) / riskDist
	if dir == models.DirectionNeutral {
		return 1
	}
	return rr
}

// leverage derives a recommendation from confidence tiers, scaled by
// risk-reward quality and discounted on short timeframes, clamped to [1,5].
func leverage(confidence, rr float64, p Profile) float64 {
	var base float64
	switch {
	case confidence > 80:
		base = 3
	case confidence > 70:
		base = 2
	case confidence > 60:
		base = 1.5
	default:
		base = 1
	}
	if rr > 2 {
		base *= 1.25
	} else if rr < 1 {
		base *= 0.75
	}
	return clamp(base*p.LeverageScale, 1, 5)
}

func successProbability(dir models.Direction, confidence float64, tf domrepo.Timeframe, p Profile) float64 {
	prob := confidence*probBaseline + p.ProbabilityAdj
	if dir == models.DirectionLong && longHorizon(tf) {
		prob += longHorizonBonus
	}
	prob = clamp(prob, minSuccessProb, maxSuccessProb)
	if dir == models.DirectionNeutral && prob > neutralProbCap {
		prob = neutralProbCap
	}
	return prob
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
