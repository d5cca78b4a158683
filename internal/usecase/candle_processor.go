package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "SignalPulse/internal/domain/repository"
)

// CandleProcessor fans a closed candle out to the in-memory series that
// the signal engine reads from, and to the configured durable sink.
type CandleProcessor struct {
	store   drepo.CandleStore
	pub     drepo.Publisher
	storage drepo.Storage
	metrics drepo.Metrics
	sink    string
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(
	store drepo.CandleStore,
	pub drepo.Publisher,
	storage drepo.Storage,
	metrics drepo.Metrics,
	sink string,
) *CandleProcessor {
	return &CandleProcessor{
		store:   store,
		pub:     pub,
		storage: storage,
		metrics: metrics,
		sink:    sink,
	}
}

// Process routes a single candle to the in-memory store and the sink.
func (p *CandleProcessor) Process(ctx context.Context, c *drepo.StreamCandle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}

	start := time.Now()
	if err := p.store.Append(ctx, c.Symbol, c.Timeframe, c.Candle); err != nil {
		p.metrics.RecordError("store_append")
		return fmt.Errorf("append candle: %w", err)
	}

	var err error
	switch p.sink {
	case "kafka":
		err = p.pub.Publish(ctx, c)
	case "clickhouse":
		err = p.storage.Store(ctx, c)
	case "none", "":
		// memory only
	default:
		err = fmt.Errorf("unknown sink: %s", p.sink)
	}

	if err != nil {
		p.metrics.RecordError("sink")
		return fmt.Errorf("sink candle: %w", err)
	}

	p.metrics.RecordLatency("ingest", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple candles.
func (p *CandleProcessor) ProcessBatch(ctx context.Context, cs []*drepo.StreamCandle) error {
	if len(cs) == 0 {
		return nil
	}

	for _, c := range cs {
		if err := p.store.Append(ctx, c.Symbol, c.Timeframe, c.Candle); err != nil {
			p.metrics.RecordError("store_append")
			return fmt.Errorf("append candle: %w", err)
		}
	}

	var err error
	switch p.sink {
	case "kafka":
		err = p.pub.PublishBatch(ctx, cs)
	case "clickhouse":
		err = p.storage.StoreBatch(ctx, cs)
	case "none", "":
	default:
		err = fmt.Errorf("unknown sink: %s", p.sink)
	}

	if err != nil {
		p.metrics.RecordError("sink_batch")
		return fmt.Errorf("sink batch: %w", err)
	}
	return nil
}

// Close closes underlying sink resources if available.
func (p *CandleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.storage != nil {
		_ = p.storage.Close()
	}
}
