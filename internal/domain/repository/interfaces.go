package repository

import (
	"context"
	"time"

	"SignalPulse/internal/domain/models"
)

// CandleStore provides access to per-(symbol, timeframe) candle series.
// Implementations must preserve chronological order with strictly
// increasing timestamps.
type CandleStore interface {
	Append(ctx context.Context, symbol string, tf Timeframe, c models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// CandleStream yields closed candles from an external market feed.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *StreamCandle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// StreamCandle pairs a candle with its routing key.
type StreamCandle struct {
	Symbol    string
	Timeframe Timeframe
	Candle    models.Candle
}

// Publisher forwards closed candles to a durable transport.
type Publisher interface {
	Publish(ctx context.Context, c *StreamCandle) error
	PublishBatch(ctx context.Context, cs []*StreamCandle) error
	Close() error
}

// Storage persists candle history durably.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, c *StreamCandle) error
	StoreBatch(ctx context.Context, cs []*StreamCandle) error
	Query(ctx context.Context, symbol string, from, to time.Time, tf Timeframe, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordEvaluation(symbol, tf string, direction string)
	RecordError(kind string)
	RecordConfidence(symbol, tf string, confidence float64)
	RecordLatency(op string, seconds float64)
}
