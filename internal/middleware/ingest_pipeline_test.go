package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
)

type fakeProc struct {
	mu    sync.Mutex
	seen  []*domrepo.StreamCandle
	err   error
	calls int
}

func (f *fakeProc) Process(_ context.Context, c *domrepo.StreamCandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.seen = append(f.seen, c)
	return nil
}

type nopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNopMetrics() *nopMetrics { return &nopMetrics{errors: make(map[string]int)} }

func (m *nopMetrics) RecordEvaluation(string, string, string) {}
func (m *nopMetrics) RecordConfidence(string, string, float64) {}
func (m *nopMetrics) RecordLatency(string, float64)            {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func streamCandle(symbol string, tf domrepo.Timeframe) *domrepo.StreamCandle {
	return &domrepo.StreamCandle{
		Symbol:    symbol,
		Timeframe: tf,
		Candle: models.Candle{
			Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Open:      10, High: 11, Low: 9, Close: 10.5, Volume: 100,
		},
	}
}

func TestPipelineProcessForwards(t *testing.T) {
	proc := &fakeProc{}
	p := NewIngestPipeline(proc, newNopMetrics())

	if err := p.Process(context.Background(), streamCandle("BTCUSDT", domrepo.TF1m)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(proc.seen) != 1 {
		t.Fatalf("forwarded %d candles, want 1", len(proc.seen))
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &fakeProc{}
	m := newNopMetrics()
	p := NewIngestPipeline(proc, m)
	ctx := context.Background()

	cases := []*domrepo.StreamCandle{
		nil,
		{Symbol: "", Timeframe: domrepo.TF1m},
		{Symbol: "BTCUSDT", Timeframe: "7m"},
		{Symbol: "BTCUSDT", Timeframe: domrepo.TF1m}, // zero candle
	}
	for i, c := range cases {
		if err := p.Process(ctx, c); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("downstream called %d times for invalid input", proc.calls)
	}
	if m.errors["pipeline_validate"] != len(cases) {
		t.Fatalf("validate errors = %d, want %d", m.errors["pipeline_validate"], len(cases))
	}
}

func TestPipelineThrottles(t *testing.T) {
	proc := &fakeProc{}
	m := newNopMetrics()
	p := NewIngestPipeline(proc, m, WithMaxRPS(2))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := p.Process(ctx, streamCandle("BTCUSDT", domrepo.TF1m)); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	// Bucket capacity is 2, so most of the burst is dropped silently.
	if len(proc.seen) > 3 {
		t.Fatalf("forwarded %d candles through a capacity-2 bucket", len(proc.seen))
	}
	if m.errors["pipeline_throttle"] == 0 {
		t.Fatal("expected throttle drops to be recorded")
	}
}

func TestPipelineBuffersOnError(t *testing.T) {
	proc := &fakeProc{err: errors.New("downstream down")}
	m := newNopMetrics()
	p := NewIngestPipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), streamCandle("BTCUSDT", domrepo.TF1m)); err == nil {
		t.Fatal("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("buffered %d candles, want 1", len(p.bufCh))
	}
	if m.errors["pipeline_process"] != 1 {
		t.Fatalf("process errors = %d, want 1", m.errors["pipeline_process"])
	}
}
