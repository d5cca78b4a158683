package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
)

// MemoryCandleStore keeps a bounded in-memory candle series per
// (symbol, timeframe) key. The newest candles win: when the per-key
// limit is reached the oldest candles are discarded.
type MemoryCandleStore struct {
	mu     sync.RWMutex
	series map[string][]models.Candle
	limit  int
}

// NewMemoryCandleStore creates a store keeping up to limit candles per key.
func NewMemoryCandleStore(limit int) *MemoryCandleStore {
	if limit <= 0 {
		limit = 500
	}
	return &MemoryCandleStore{
		series: make(map[string][]models.Candle),
		limit:  limit,
	}
}

func seriesKey(symbol string, tf drepo.Timeframe) string {
	return symbol + "|" + string(tf)
}

// Append adds a candle to the series. Candles must arrive in
// chronological order; a candle with the same timestamp as the last
// one replaces it (kline updates re-close the same bar).
func (s *MemoryCandleStore) Append(ctx context.Context, symbol string, tf drepo.Timeframe, c models.Candle) error {
	if !c.Valid() {
		return fmt.Errorf("invalid candle for %s %s", symbol, tf)
	}

	key := seriesKey(symbol, tf)
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.series[key]
	if n := len(cs); n > 0 {
		last := cs[n-1].Timestamp
		switch {
		case c.Timestamp.Equal(last):
			cs[n-1] = c
			return nil
		case c.Timestamp.Before(last):
			return fmt.Errorf("out of order candle for %s %s: %s < %s", symbol, tf, c.Timestamp, last)
		}
	}

	cs = append(cs, c)
	if len(cs) > s.limit {
		cs = cs[len(cs)-s.limit:]
	}
	s.series[key] = cs
	return nil
}

// GetCandles returns candles within [from, to], oldest first.
func (s *MemoryCandleStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf drepo.Timeframe) ([]models.Candle, error) {
	s.mu.RLock()
	cs := s.series[seriesKey(symbol, tf)]
	s.mu.RUnlock()

	out := make([]models.Candle, 0, len(cs))
	for _, c := range cs {
		if !c.Timestamp.Before(from) && !c.Timestamp.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetLatestNCandles returns the most recent n candles, oldest first.
func (s *MemoryCandleStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf drepo.Timeframe) ([]models.Candle, error) {
	s.mu.RLock()
	cs := s.series[seriesKey(symbol, tf)]
	s.mu.RUnlock()

	if n <= 0 || len(cs) == 0 {
		return nil, nil
	}
	if n > len(cs) {
		n = len(cs)
	}
	out := make([]models.Candle, n)
	copy(out, cs[len(cs)-n:])
	return out, nil
}

// Len returns the number of candles held for a key.
func (s *MemoryCandleStore) Len(symbol string, tf drepo.Timeframe) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[seriesKey(symbol, tf)])
}

var _ drepo.CandleStore = (*MemoryCandleStore)(nil)
