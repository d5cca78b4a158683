package engine

import (
	"sync"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	"SignalPulse/internal/indicator"
	applogger "SignalPulse/pkg/logger"
)

// Engine is the multi-timeframe signal core: indicator synthesis with
// cross-evaluation hysteresis and feedback-driven weight adaptation.
// Evaluations for different (symbol, timeframe) keys run in parallel;
// evaluations for the same key are serialized because the stabilizer's
// read-modify-write is not idempotent under interleaving.
type Engine struct {
	synth   *Synthesizer
	stab    *Stabilizer
	weights *WeightStore
	cache   *SnapshotCache

	l       *applogger.Logger
	metrics domrepo.Metrics
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option { return func(e *Engine) { e.l = l } }

// WithMetrics injects an operational metrics recorder.
func WithMetrics(m domrepo.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithCacheCapacity overrides the computation-cache capacity.
func WithCacheCapacity(n int) Option { return func(e *Engine) { e.cache = NewSnapshotCache(n) } }

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func New(opts ...Option) *Engine {
	e := &Engine{
		synth:   NewSynthesizer(),
		stab:    NewStabilizer(),
		weights: NewWeightStore(),
		cache:   NewSnapshotCache(DefaultCacheCapacity),
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func stateKey(symbol string, tf domrepo.Timeframe) string {
	return symbol + "|" + string(tf)
}

func (e *Engine) keyLock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// Evaluate runs the full pipeline over a candle series: cached indicator
// computation, regime classification, weighted synthesis, and hysteresis.
// A series shorter than MinBars resolves to the canonical NEUTRAL signal;
// no error ever crosses this boundary.
func (e *Engine) Evaluate(symbol string, tf domrepo.Timeframe, candles []models.Candle, currentPrice float64) models.Signal {
	start := e.now()
	key := stateKey(symbol, tf)
	lock := e.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if len(candles) < MinBars {
		sig := NeutralSignal(symbol, tf, currentPrice, models.IndicatorSnapshot{}, e.now())
		if e.l != nil {
			e.l.Debug("engine.evaluate insufficient_data",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("bars", len(candles)))
		}
		e.record(symbol, tf, sig, start)
		return sig
	}

	fp := Fingerprint(candles)
	snap, ok := e.cache.Get(fp)
	if !ok {
		snap = indicator.ComputeSnapshot(candles, currentPrice)
		snap.Regime = ClassifyRegime(snap.Volatility, snap.Trend.ADX, snap.RSI)
		e.cache.Put(fp, snap)
	}

	raw := e.synth.Synthesize(symbol, tf, snap, currentPrice, e.weights.Get(key), e.now())
	out := e.stab.Apply(key, tf, raw)

	if e.l != nil && out.Direction != raw.Direction {
		e.l.Info("engine.evaluate flip_suppressed",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.String("raw", string(raw.Direction)),
			applogger.String("kept", string(out.Direction)),
			applogger.Float64("raw_confidence", raw.Confidence))
	}
	e.record(symbol, tf, out, start)
	return out
}

// Learn feeds a realized-outcome report into the adaptive weight store.
// Reports below the minimum sample size or from a statistically poor
// regime are skipped silently.
func (e *Engine) Learn(symbol string, tf domrepo.Timeframe, report models.AccuracyReport) {
	key := stateKey(symbol, tf)
	applied := e.weights.Apply(key, report)
	if e.l != nil {
		e.l.Debug("engine.learn",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("samples", report.SampleCount),
			applogger.Float64("win_rate", report.OverallWinRate),
			applogger.Bool("applied", applied))
	}
}

// Weights returns a copy of the current weight vector for a key.
func (e *Engine) Weights(symbol string, tf domrepo.Timeframe) models.WeightVector {
	return e.weights.Get(stateKey(symbol, tf))
}

// SeedWeights restores a previously learned weight vector, typically
// loaded from durable storage on startup. A vector already present for
// the key wins over the seed.
func (e *Engine) SeedWeights(symbol string, tf domrepo.Timeframe, w models.WeightVector) {
	e.weights.Seed(stateKey(symbol, tf), w)
}

// CacheStats exposes computation-cache hit/miss counters.
func (e *Engine) CacheStats() (hits, misses uint64) {
	return e.cache.Stats()
}

func (e *Engine) record(symbol string, tf domrepo.Timeframe, sig models.Signal, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordEvaluation(symbol, string(tf), string(sig.Direction))
	e.metrics.RecordConfidence(symbol, string(tf), sig.Confidence)
	e.metrics.RecordLatency("evaluate", e.now().Sub(start).Seconds())
}

var _ domsvc.SignalEngine = (*Engine)(nil)
