package service

import (
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
)

// SignalEngine is the computational core: multi-timeframe indicator
// synthesis with stabilization and feedback-driven weight adaptation.
// Evaluate never returns an error for data-quality conditions; a series
// that is too short yields a canonical NEUTRAL signal.
type SignalEngine interface {
	Evaluate(symbol string, tf repository.Timeframe, candles []models.Candle, currentPrice float64) models.Signal
	Learn(symbol string, tf repository.Timeframe, report models.AccuracyReport)
	Weights(symbol string, tf repository.Timeframe) models.WeightVector
	SeedWeights(symbol string, tf repository.Timeframe, w models.WeightVector)
}
