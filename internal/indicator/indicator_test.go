package indicator

import (
	"math"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
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

func trendSeries(n int, start, step float64) []models.Candle {
	cs := make([]models.Candle, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := start
	for i := range cs {
		next := price * (1 + step)
		high := math.Max(price, next) * 1.001
		low := math.Min(price, next) * 0.999
		cs[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      price, High: high, Low: low, Close: next,
			Volume: 100,
		}
		price = next
	}
	return cs
}

func TestRSIBounds(t *testing.T) {
	for _, cs := range [][]models.Candle{
		trendSeries(100, 100, 0.002),
		trendSeries(100, 100, -0.002),
		flatSeries(100, 100),
	} {
		rsi := RSI(cs, DefaultRSIPeriod)
		if rsi < 0 || rsi > 100 {
			t.Fatalf("RSI out of bounds: %v", rsi)
		}
	}
}

func TestRSIFlatSeries(t *testing.T) {
	if got := RSI(flatSeries(60, 100), DefaultRSIPeriod); got != 50 {
		t.Fatalf("flat series RSI = %v, want 50", got)
	}
}

func TestRSIMonotonicUp(t *testing.T) {
	if got := RSI(trendSeries(60, 100, 0.002), DefaultRSIPeriod); got != 100 {
		t.Fatalf("strictly rising RSI = %v, want 100", got)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if got := RSI(trendSeries(10, 100, 0.002), DefaultRSIPeriod); got != 50 {
		t.Fatalf("short series RSI = %v, want 50", got)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 123.45
	}
	for _, period := range []int{5, 14, 50, 200} {
		got := EMA(vals, period)
		if math.Abs(got-123.45) > 1e-9 {
			t.Fatalf("EMA(const, %d) = %v, want 123.45", period, got)
		}
	}
}

func TestEMAShorterThanPeriodSeedsFirstValue(t *testing.T) {
	vals := []float64{10, 20}
	got := EMA(vals, 10)
	// seed 10, then one update with k = 2/11
	k := 2.0 / 11.0
	want := 20*k + 10*(1-k)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("EMA = %v, want %v", got, want)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	for _, cs := range [][]models.Candle{
		trendSeries(120, 100, 0.002),
		trendSeries(120, 100, -0.001),
	} {
		m := ComputeMACD(cs, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		if m.Histogram != m.Value-m.Signal {
			t.Fatalf("histogram %v != macd %v - signal %v", m.Histogram, m.Value, m.Signal)
		}
	}
}

func TestMACDSignalIsEMAOfSequence(t *testing.T) {
	cs := trendSeries(120, 100, 0.002)
	m := ComputeMACD(cs, 12, 26, 9)
	// In a sustained uptrend the MACD line is positive and the signal line
	// lags strictly below it, which the *0.9 shortcut would not produce.
	if m.Value <= 0 {
		t.Fatalf("expected positive MACD in uptrend, got %v", m.Value)
	}
	if m.Signal >= m.Value {
		t.Fatalf("signal %v should lag below macd %v in a steady uptrend", m.Signal, m.Value)
	}
}

func TestMACDInsufficientData(t *testing.T) {
	m := ComputeMACD(trendSeries(20, 100, 0.002), 12, 26, 9)
	if m.Value != 0 || m.Signal != 0 || m.Histogram != 0 {
		t.Fatalf("expected zero MACD on short series, got %+v", m)
	}
}

func TestStochasticFlatRange(t *testing.T) {
	s := Stoch(flatSeries(40, 100), DefaultStochKPeriod, DefaultStochDPeriod)
	if s.K != 50 || s.D != 50 {
		t.Fatalf("flat stochastic = %+v, want 50/50", s)
	}
}

func TestStochasticBounds(t *testing.T) {
	s := Stoch(trendSeries(60, 100, 0.002), DefaultStochKPeriod, DefaultStochDPeriod)
	if s.K < 0 || s.K > 100 || s.D < 0 || s.D > 100 {
		t.Fatalf("stochastic out of bounds: %+v", s)
	}
	if s.K < 80 {
		t.Fatalf("uptrend %%K = %v, expected near the top of the range", s.K)
	}
}

func TestBollingerFlatSeries(t *testing.T) {
	b := Bollinger(flatSeries(60, 100), DefaultBollingerPeriod, DefaultBollingerStdDev)
	if b.Width != 0 {
		t.Fatalf("flat series width = %v, want 0", b.Width)
	}
	if b.Upper != 100 || b.Lower != 100 || b.Middle != 100 {
		t.Fatalf("flat series bands = %+v, want all 100", b)
	}
	if b.PercentB != 50 {
		t.Fatalf("collapsed bands %%B = %v, want 50", b.PercentB)
	}
}

func TestBollingerPercentBClamped(t *testing.T) {
	for _, step := range []float64{0.01, -0.01} {
		b := Bollinger(trendSeries(60, 100, step), DefaultBollingerPeriod, DefaultBollingerStdDev)
		if b.PercentB < 0 || b.PercentB > 100 {
			t.Fatalf("%%B out of bounds: %v", b.PercentB)
		}
		if b.Width < 0 {
			t.Fatalf("negative width: %v", b.Width)
		}
	}
}

func TestADXBounds(t *testing.T) {
	for _, cs := range [][]models.Candle{
		trendSeries(100, 100, 0.003),
		trendSeries(100, 100, -0.003),
		flatSeries(100, 100),
	} {
		d := ADX(cs, DefaultADXPeriod)
		for name, v := range map[string]float64{"adx": d.ADX, "pdi": d.PlusDI, "ndi": d.MinusDI} {
			if v < 0 || v > 100 {
				t.Fatalf("%s out of bounds: %v", name, v)
			}
		}
	}
}

func TestADXFlatSeriesDefault(t *testing.T) {
	d := ADX(flatSeries(100, 100), DefaultADXPeriod)
	if d.ADX != 0 || d.PlusDI != 0 || d.MinusDI != 0 {
		t.Fatalf("flat series ADX = %+v, want zeros", d)
	}
}

func TestADXDirectionalDominance(t *testing.T) {
	up := ADX(trendSeries(100, 100, 0.003), DefaultADXPeriod)
	if up.PlusDI <= up.MinusDI {
		t.Fatalf("uptrend +DI %v should exceed -DI %v", up.PlusDI, up.MinusDI)
	}
	down := ADX(trendSeries(100, 100, -0.003), DefaultADXPeriod)
	if down.MinusDI <= down.PlusDI {
		t.Fatalf("downtrend -DI %v should exceed +DI %v", down.MinusDI, down.PlusDI)
	}
}

func TestATRFlatSeries(t *testing.T) {
	if got := ATR(flatSeries(60, 100), DefaultATRPeriod); got != 0 {
		t.Fatalf("flat ATR = %v, want 0", got)
	}
}

func TestATRPositiveOnMovement(t *testing.T) {
	if got := ATR(trendSeries(60, 100, 0.002), DefaultATRPeriod); got <= 0 {
		t.Fatalf("ATR = %v, want > 0", got)
	}
}

func TestVolatilityFlatSeries(t *testing.T) {
	if got := Volatility(flatSeries(60, 100), DefaultVolatilityWindow); got != 0 {
		t.Fatalf("flat volatility = %v, want 0", got)
	}
}

func TestLevelsFallbackShortSeries(t *testing.T) {
	sup, res := Levels(trendSeries(10, 100, 0.001), 100, DefaultPivotLookback)
	if len(sup) != 3 || len(res) != 3 {
		t.Fatalf("fallback levels: %d supports, %d resistances, want 3 each", len(sup), len(res))
	}
	if math.Abs(sup[0]-98.5) > 1e-9 || math.Abs(res[0]-101.5) > 1e-9 {
		t.Fatalf("fallback offsets wrong: sup[0]=%v res[0]=%v", sup[0], res[0])
	}
}

func TestLevelsOrderingAndSides(t *testing.T) {
	cs := trendSeries(150, 100, 0.002)
	price := cs[len(cs)-1].Close
	sup, res := Levels(cs, price, DefaultPivotLookback)
	for i, s := range sup {
		if s >= price {
			t.Fatalf("support %v not below price %v", s, price)
		}
		if i > 0 && sup[i] > sup[i-1] {
			t.Fatalf("supports not descending: %v", sup)
		}
	}
	for i, r := range res {
		if r <= price {
			t.Fatalf("resistance %v not above price %v", r, price)
		}
		if i > 0 && res[i] < res[i-1] {
			t.Fatalf("resistances not ascending: %v", res)
		}
	}
	if len(sup) > 3 || len(res) > 3 {
		t.Fatalf("too many levels: %d/%d", len(sup), len(res))
	}
}

func TestComputeSnapshotDeterministic(t *testing.T) {
	cs := trendSeries(200, 100, 0.002)
	price := cs[len(cs)-1].Close
	a := ComputeSnapshot(cs, price)
	b := ComputeSnapshot(cs, price)
	if a.RSI != b.RSI || a.MACD != b.MACD || a.EMA != b.EMA ||
		a.Stochastic != b.Stochastic || a.Bollinger != b.Bollinger ||
		a.Trend != b.Trend || a.ATR != b.ATR || a.Volatility != b.Volatility {
		t.Fatal("snapshots differ for identical input")
	}
	if len(a.Supports) != len(b.Supports) || len(a.Resistances) != len(b.Resistances) {
		t.Fatal("level counts differ for identical input")
	}
}
