package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "SignalPulse/internal/domain/repository"
	"SignalPulse/internal/service/ratelimit"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, c *domrepo.StreamCandle) error
}

// IngestPipeline sits between the market stream and the processing
// fan-out. It validates incoming candles, throttles per (symbol,
// timeframe) key, and buffers when downstream is unavailable.
type IngestPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter
	maxRPS  int
	bufSize int
	bufCh   chan *domrepo.StreamCandle
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max candles per second per stream key.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:    proc,
		metrics: metrics,
		limiter: ratelimit.New(),
		maxRPS:  20,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *domrepo.StreamCandle, p.bufSize)
	return p
}

// Start launches background flushing of buffered candles.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case c := <-p.bufCh:
				if c == nil {
					continue
				}
				if err := p.proc.Process(ctx, c); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- c:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards a candle downstream,
// buffering on processing errors.
func (p *IngestPipeline) Process(ctx context.Context, c *domrepo.StreamCandle) error {
	start := time.Now()
	if err := validateCandle(c); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	key := c.Symbol + "|" + string(c.Timeframe)
	if !p.limiter.Allow(key, float64(p.maxRPS), float64(p.maxRPS)) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, c); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- c:
		default:
			p.metrics.RecordError("pipeline_buffer_drop")
		}
		return err
	}

	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateCandle(c *domrepo.StreamCandle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	if c.Symbol == "" {
		return fmt.Errorf("candle symbol empty")
	}
	if !domrepo.IsValidTimeframe(c.Timeframe) {
		return fmt.Errorf("unknown timeframe %q", c.Timeframe)
	}
	if !c.Candle.Valid() {
		return fmt.Errorf("candle OHLCV invalid for %s", c.Symbol)
	}
	return nil
}
