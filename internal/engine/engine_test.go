package engine

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
)

func flatSeries(n int, price float64) []models.Candle {
	cs := make([]models.Candle, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range cs {
		cs[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 100,
		}
	}
	return cs
}

func uptrendSeries(n int, start float64) []models.Candle {
	cs := make([]models.Candle, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := start
	for i := range cs {
		next := price * 1.002
		cs[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      price, High: next * 1.001, Low: price * 0.999, Close: next,
			Volume: 100,
		}
		price = next
	}
	return cs
}

func TestEvaluateShortSeriesIsCanonicalNeutral(t *testing.T) {
	e := New()
	cs := uptrendSeries(49, 100)
	price := cs[len(cs)-1].Close

	first := e.Evaluate("BTCUSDT", domrepo.TF1h, cs, price)
	second := e.Evaluate("BTCUSDT", domrepo.TF1h, cs, price)

	for _, sig := range []models.Signal{first, second} {
		if sig.Direction != models.DirectionNeutral {
			t.Fatalf("direction = %s, want NEUTRAL", sig.Direction)
		}
		if sig.Confidence != 50 {
			t.Fatalf("confidence = %v, want 50", sig.Confidence)
		}
		if sig.EntryPrice != price {
			t.Fatalf("entry = %v, want %v", sig.EntryPrice, price)
		}
	}
	if math.Abs(first.StopLoss-price*0.98) > 1e-9 || math.Abs(first.TakeProfit-price*1.02) > 1e-9 {
		t.Fatalf("risk levels %v/%v not at +/-2%%", first.StopLoss, first.TakeProfit)
	}
}

func TestEvaluateUptrendGoesLong(t *testing.T) {
	e := New()
	cs := uptrendSeries(200, 100)
	price := cs[len(cs)-1].Close

	sig := e.Evaluate("BTCUSDT", domrepo.TF1h, cs, price)
	if sig.Direction != models.DirectionLong {
		t.Fatalf("direction = %s, want LONG", sig.Direction)
	}
	if sig.Confidence <= 60 {
		t.Fatalf("confidence = %v, want > 60", sig.Confidence)
	}
	if sig.StopLoss >= price || sig.TakeProfit <= price {
		t.Fatalf("LONG risk levels inverted: stop=%v take=%v entry=%v", sig.StopLoss, sig.TakeProfit, price)
	}
	if sig.Leverage < 1 || sig.Leverage > 5 {
		t.Fatalf("leverage %v out of [1,5]", sig.Leverage)
	}
	if sig.SuccessProbability < 25 || sig.SuccessProbability > 98 {
		t.Fatalf("success probability %v out of [25,98]", sig.SuccessProbability)
	}
}

func TestEvaluateFlatSeriesIsNeutral(t *testing.T) {
	e := New()
	cs := flatSeries(200, 100)

	sig := e.Evaluate("BTCUSDT", domrepo.TF1h, cs, 100)
	if sig.Direction != models.DirectionNeutral {
		t.Fatalf("direction = %s, want NEUTRAL", sig.Direction)
	}
	if sig.Indicators.RSI != 50 {
		t.Fatalf("flat RSI = %v, want 50", sig.Indicators.RSI)
	}
	if sig.Indicators.Trend.ADX != 0 {
		t.Fatalf("flat ADX = %v, want 0", sig.Indicators.Trend.ADX)
	}
	if sig.Indicators.Bollinger.Width != 0 {
		t.Fatalf("flat bollinger width = %v, want 0", sig.Indicators.Bollinger.Width)
	}
	if sig.SuccessProbability > 60 {
		t.Fatalf("NEUTRAL success probability %v exceeds 60 cap", sig.SuccessProbability)
	}
}

func TestEvaluateDeterministicAcrossCache(t *testing.T) {
	cs := uptrendSeries(200, 100)
	price := cs[len(cs)-1].Close

	// Fresh engines: one evaluation is a cache miss, the second a hit.
	miss := New().Evaluate("ETHUSDT", domrepo.TF4h, cs, price)

	e := New()
	e.Evaluate("ETHUSDT", domrepo.TF4h, cs, price)
	hit := e.Evaluate("ETHUSDT", domrepo.TF4h, cs, price)

	a, b := miss.Indicators, hit.Indicators
	if a.RSI != b.RSI || a.MACD != b.MACD || a.EMA != b.EMA || a.ATR != b.ATR ||
		a.Bollinger != b.Bollinger || a.Trend != b.Trend || a.Volatility != b.Volatility ||
		a.Regime != b.Regime {
		t.Fatal("cache hit changed the numeric snapshot")
	}

	hits, misses := e.CacheStats()
	if hits != 1 || misses != 1 {
		t.Fatalf("cache stats hits=%d misses=%d, want 1/1", hits, misses)
	}
}

func TestStabilizerSameDirectionBlendsMonotonically(t *testing.T) {
	s := NewStabilizer()
	mk := func(conf float64) models.Signal {
		return models.Signal{Direction: models.DirectionLong, Confidence: conf}
	}

	s.Apply("k", domrepo.TF1h, mk(90))
	prev := 90.0
	for i := 0; i < 6; i++ {
		out := s.Apply("k", domrepo.TF1h, mk(60))
		if out.Direction != models.DirectionLong {
			t.Fatalf("direction changed unexpectedly: %s", out.Direction)
		}
		if out.Confidence >= prev {
			t.Fatalf("confidence %v did not decrease toward 60 (prev %v)", out.Confidence, prev)
		}
		if out.Confidence < 60 {
			t.Fatalf("confidence %v overshot the target", out.Confidence)
		}
		prev = out.Confidence
	}
	if math.Abs(prev-60) > 2 {
		t.Fatalf("blended confidence %v did not converge near 60", prev)
	}
}

func TestStabilizerRejectsLowConfidenceFlip(t *testing.T) {
	s := NewStabilizer()
	long := models.Signal{Direction: models.DirectionLong, Confidence: 80}
	weakShort := models.Signal{Direction: models.DirectionShort, Confidence: 65} // below 1h flip threshold 72

	s.Apply("k", domrepo.TF1h, long)
	out := s.Apply("k", domrepo.TF1h, weakShort)
	if out.Direction != models.DirectionLong {
		t.Fatalf("weak contrary signal flipped direction to %s", out.Direction)
	}

	st, ok := s.State("k")
	if !ok {
		t.Fatal("missing state")
	}
	if st.StableCount != 2 {
		t.Fatalf("stableCount = %d, want 2 (rejection still ages the prior)", st.StableCount)
	}
}

func TestStabilizerFallbackPeriodThenFlip(t *testing.T) {
	s := NewStabilizer()
	long := models.Signal{Direction: models.DirectionLong, Confidence: 80}
	strongShort := models.Signal{Direction: models.DirectionShort, Confidence: 85}

	// 1h profile: flip needs confidence >= 72 and stableCount >= 3.
	s.Apply("k", domrepo.TF1h, long)
	if out := s.Apply("k", domrepo.TF1h, strongShort); out.Direction != models.DirectionLong {
		t.Fatalf("flip allowed before fallback period: %s", out.Direction)
	}
	if out := s.Apply("k", domrepo.TF1h, strongShort); out.Direction != models.DirectionLong {
		t.Fatalf("flip allowed before fallback period: %s", out.Direction)
	}
	out := s.Apply("k", domrepo.TF1h, strongShort)
	if out.Direction != models.DirectionShort {
		t.Fatalf("flip denied after fallback period: %s", out.Direction)
	}
	if out.Confidence != 80 {
		t.Fatalf("flip confidence = %v, want 85 - 5 discount", out.Confidence)
	}
}

func TestStabilizerOverrideAlwaysFlips(t *testing.T) {
	s := NewStabilizer()
	long := models.Signal{Direction: models.DirectionLong, Confidence: 80}
	override := models.Signal{Direction: models.DirectionShort, Confidence: 97}

	s.Apply("k", domrepo.TF1M, long) // monthly: stickiest profile
	out := s.Apply("k", domrepo.TF1M, models.Signal{Direction: models.DirectionShort, Confidence: 98})
	if out.Direction != models.DirectionShort {
		t.Fatalf("override did not flip on monthly: %s", out.Direction)
	}

	s2 := NewStabilizer()
	s2.Apply("j", domrepo.TF1h, long)
	out = s2.Apply("j", domrepo.TF1h, override)
	if out.Direction != models.DirectionShort {
		t.Fatalf("override did not flip: %s", out.Direction)
	}
	if out.Confidence != 97 {
		t.Fatalf("override confidence altered: %v", out.Confidence)
	}
}

func TestLearnBelowSampleMinimumIsNoOp(t *testing.T) {
	e := New()
	before := e.Weights("BTCUSDT", domrepo.TF1h)

	e.Learn("BTCUSDT", domrepo.TF1h, models.AccuracyReport{
		Symbol: "BTCUSDT", Timeframe: "1h",
		IndicatorAccuracy: map[string]float64{WeightRSI: 90, WeightMACD: 10},
		OverallWinRate:    65,
		SampleCount:       9,
	})

	after := e.Weights("BTCUSDT", domrepo.TF1h)
	for k, v := range before {
		if after[k] != v {
			t.Fatalf("weight %q changed from %v to %v on undersized sample", k, v, after[k])
		}
	}
}

func TestLearnPoorWinRateSkipsAdaptation(t *testing.T) {
	e := New()
	e.Learn("BTCUSDT", domrepo.TF1h, models.AccuracyReport{
		IndicatorAccuracy: map[string]float64{WeightRSI: 90},
		OverallWinRate:    25,
		SampleCount:       50,
	})
	if w := e.Weights("BTCUSDT", domrepo.TF1h); w[WeightRSI] != 1.0 {
		t.Fatalf("weight adapted from a poor regime: %v", w[WeightRSI])
	}
}

func TestLearnAdjustsWeightsWithinBounds(t *testing.T) {
	e := New()
	report := models.AccuracyReport{
		IndicatorAccuracy: map[string]float64{
			WeightRSI:  95,
			WeightMACD: 10,
		},
		OverallWinRate: 60,
		SampleCount:    40,
	}
	e.Learn("BTCUSDT", domrepo.TF1h, report)

	w := e.Weights("BTCUSDT", domrepo.TF1h)
	// rsi score = 0.7*0.95 + 0.3*0.6 = 0.845 -> +0.1*0.345
	if math.Abs(w[WeightRSI]-1.0345) > 1e-9 {
		t.Fatalf("rsi weight = %v, want 1.0345", w[WeightRSI])
	}
	// macd score = 0.7*0.10 + 0.3*0.6 = 0.25 -> -0.1*0.25
	if math.Abs(w[WeightMACD]-0.975) > 1e-9 {
		t.Fatalf("macd weight = %v, want 0.975", w[WeightMACD])
	}
	// unmentioned indicators untouched
	if w[WeightEMA] != 1.0 {
		t.Fatalf("ema weight = %v, want 1.0", w[WeightEMA])
	}

	// Bounds hold under sustained pressure in both directions.
	for i := 0; i < 200; i++ {
		e.Learn("BTCUSDT", domrepo.TF1h, report)
	}
	w = e.Weights("BTCUSDT", domrepo.TF1h)
	if w[WeightRSI] > 2.0 || w[WeightMACD] < 0.1 {
		t.Fatalf("weights escaped bounds: rsi=%v macd=%v", w[WeightRSI], w[WeightMACD])
	}
}

func TestLearnStrongWinRateBoostsBestIndicator(t *testing.T) {
	e := New()
	e.Learn("BTCUSDT", domrepo.TF1d, models.AccuracyReport{
		IndicatorAccuracy: map[string]float64{
			WeightRSI: 95,
			WeightEMA: 50,
		},
		OverallWinRate: 80,
		SampleCount:    30,
	})
	w := e.Weights("BTCUSDT", domrepo.TF1d)
	// rsi: 1 + 0.1*(0.905-0.5) = 1.0405, then *1.1 boost
	if math.Abs(w[WeightRSI]-1.0405*1.1) > 1e-9 {
		t.Fatalf("best indicator not boosted: %v", w[WeightRSI])
	}
}

func TestSnapshotCacheEvictsOldestQuarter(t *testing.T) {
	c := NewSnapshotCache(8)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	c.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}

	for n := 0; n < 9; n++ {
		c.Put(fmt.Sprintf("fp-%d", n), models.IndicatorSnapshot{})
	}
	if c.Len() != 7 { // 9 entries, drop 9/4 = 2 oldest
		t.Fatalf("len = %d after eviction, want 7", c.Len())
	}
	if _, ok := c.Get("fp-0"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if _, ok := c.Get("fp-8"); !ok {
		t.Fatal("newest entry evicted")
	}
}

func TestFingerprintChangesWithNewCandle(t *testing.T) {
	cs := uptrendSeries(60, 100)
	fp1 := Fingerprint(cs)
	extended := append(append([]models.Candle{}, cs...), models.Candle{
		Timestamp: cs[len(cs)-1].Timestamp.Add(time.Hour),
		Open:      100, High: 101, Low: 99, Close: 100.5, Volume: 10,
	})
	if fp1 == Fingerprint(extended) {
		t.Fatal("fingerprint unchanged after append")
	}
}

func TestRegimeClassification(t *testing.T) {
	cases := []struct {
		vol, adx, rsi float64
		want          models.Regime
	}{
		{0.05, 10, 50, models.RegimeHighVolatility},
		{0.01, 40, 70, models.RegimeLowVolatility},
		{0.02, 30, 65, models.RegimeTrendingUp},
		{0.02, 30, 35, models.RegimeTrendingDown},
		{0.02, 30, 50, models.RegimeRanging},
		{0.02, 10, 80, models.RegimeRanging},
	}
	for _, tc := range cases {
		if got := ClassifyRegime(tc.vol, tc.adx, tc.rsi); got != tc.want {
			t.Fatalf("ClassifyRegime(%v,%v,%v) = %s, want %s", tc.vol, tc.adx, tc.rsi, got, tc.want)
		}
	}
}

func TestConcurrentEvaluationsAcrossKeys(t *testing.T) {
	e := New()
	cs := uptrendSeries(120, 100)
	price := cs[len(cs)-1].Close

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			symbol := fmt.Sprintf("SYM%d", n%4)
			for j := 0; j < 20; j++ {
				e.Evaluate(symbol, domrepo.TF15m, cs, price)
			}
		}(i)
	}
	wg.Wait()

	sig := e.Evaluate("SYM0", domrepo.TF15m, cs, price)
	if sig.Direction != models.DirectionLong {
		t.Fatalf("post-race direction = %s, want LONG", sig.Direction)
	}
}
