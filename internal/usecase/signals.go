package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	icache "SignalPulse/internal/service/cache"
	xhttp "SignalPulse/pkg/http"
	applogger "SignalPulse/pkg/logger"
)

// SignalService is the application-facing surface of the signal engine:
// it loads candle history, runs an evaluation, and caches the rendered
// response for a short TTL so bursts of identical requests do not
// re-serialize the same signal.
type SignalService struct {
	store    domrepo.CandleStore
	engine   domsvc.SignalEngine
	cache    icache.BytesCache
	archive  *WeightArchive
	ttl      time.Duration
	historyN int
	l        *applogger.Logger
}

func NewSignalService(store domrepo.CandleStore, engine domsvc.SignalEngine, historyN int) *SignalService {
	if historyN <= 0 {
		historyN = 250
	}
	return &SignalService{store: store, engine: engine, historyN: historyN}
}

// SetCache attaches a response cache with the given TTL.
func (s *SignalService) SetCache(c icache.BytesCache, ttl time.Duration) {
	s.cache = c
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	s.ttl = ttl
}

// SetLogger injects a structured logger.
func (s *SignalService) SetLogger(l *applogger.Logger) { s.l = l }

// SetArchive attaches durable weight storage; learned vectors are
// written back after every applied report.
func (s *SignalService) SetArchive(a *WeightArchive) { s.archive = a }

// IndicatorView is the wire representation of an indicator snapshot.
type IndicatorView struct {
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_histogram"`
	EMAShort   float64 `json:"ema_short"`
	EMAMedium  float64 `json:"ema_medium"`
	EMALong    float64 `json:"ema_long"`
	StochK     float64 `json:"stoch_k"`
	StochD     float64 `json:"stoch_d"`
	BollUpper  float64 `json:"boll_upper"`
	BollMiddle float64 `json:"boll_middle"`
	BollLower  float64 `json:"boll_lower"`
	BollWidth  float64 `json:"boll_width"`
	PercentB   float64 `json:"percent_b"`
	ADX        float64 `json:"adx"`
	PlusDI     float64 `json:"plus_di"`
	MinusDI    float64 `json:"minus_di"`
	ATR        float64 `json:"atr"`
	Volatility float64 `json:"volatility"`

	Supports    []float64 `json:"supports"`
	Resistances []float64 `json:"resistances"`
	Regime      string    `json:"regime"`
}

// SignalView is the wire representation of an evaluated signal.
type SignalView struct {
	Symbol             string        `json:"symbol"`
	Timeframe          string        `json:"timeframe"`
	Direction          string        `json:"direction"`
	Confidence         float64       `json:"confidence"`
	EntryPrice         float64       `json:"entry_price"`
	StopLoss           float64       `json:"stop_loss"`
	TakeProfit         float64       `json:"take_profit"`
	RiskReward         float64       `json:"risk_reward"`
	Leverage           float64       `json:"leverage"`
	SuccessProbability float64       `json:"success_probability"`
	Timestamp          time.Time     `json:"timestamp"`
	Indicators         IndicatorView `json:"indicators"`
}

func toSignalView(sig models.Signal) *SignalView {
	ind := sig.Indicators
	return &SignalView{
		Symbol:             sig.Symbol,
		Timeframe:          sig.Timeframe,
		Direction:          string(sig.Direction),
		Confidence:         sig.Confidence,
		EntryPrice:         sig.EntryPrice,
		StopLoss:           sig.StopLoss,
		TakeProfit:         sig.TakeProfit,
		RiskReward:         sig.RiskReward,
		Leverage:           sig.Leverage,
		SuccessProbability: sig.SuccessProbability,
		Timestamp:          sig.Timestamp,
		Indicators: IndicatorView{
			RSI:         ind.RSI,
			MACD:        ind.MACD.Value,
			MACDSignal:  ind.MACD.Signal,
			MACDHist:    ind.MACD.Histogram,
			EMAShort:    ind.EMA.Short,
			EMAMedium:   ind.EMA.Medium,
			EMALong:     ind.EMA.Long,
			StochK:      ind.Stochastic.K,
			StochD:      ind.Stochastic.D,
			BollUpper:   ind.Bollinger.Upper,
			BollMiddle:  ind.Bollinger.Middle,
			BollLower:   ind.Bollinger.Lower,
			BollWidth:   ind.Bollinger.Width,
			PercentB:    ind.Bollinger.PercentB,
			ADX:         ind.Trend.ADX,
			PlusDI:      ind.Trend.PlusDI,
			MinusDI:     ind.Trend.MinusDI,
			ATR:         ind.ATR,
			Volatility:  ind.Volatility,
			Supports:    ind.Supports,
			Resistances: ind.Resistances,
			Regime:      string(ind.Regime),
		},
	}
}

// GetSignal evaluates the latest signal for a symbol and timeframe.
func (s *SignalService) GetSignal(ctx context.Context, symbol string, tf domrepo.Timeframe) (*SignalView, error) {
	cacheKey := "signal:" + symbol + ":" + string(tf)
	if s.cache != nil {
		if b, ok, _ := s.cache.GetBytes(cacheKey); ok {
			var view SignalView
			if err := json.Unmarshal(b, &view); err == nil {
				return &view, nil
			}
		}
	}

	candles, err := s.store.GetLatestNCandles(ctx, symbol, s.historyN, tf)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}

	var currentPrice float64
	if len(candles) > 0 {
		currentPrice = candles[len(candles)-1].Close
	}

	sig := s.engine.Evaluate(symbol, tf, candles, currentPrice)
	view := toSignalView(sig)

	if s.cache != nil {
		if b, err := json.Marshal(view); err == nil {
			_ = s.cache.SetBytes(cacheKey, b, s.ttl)
		}
	}

	return view, nil
}

// ApplyReport feeds an accuracy report into the engine's weight
// adaptation for the given symbol and timeframe.
func (s *SignalService) ApplyReport(ctx context.Context, req *models.LearnRequest) error {
	if req == nil || req.Symbol == "" {
		return xhttp.BadRequestError("learn request invalid")
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	report := models.AccuracyReport{
		Symbol:            req.Symbol,
		Timeframe:         string(tf),
		IndicatorAccuracy: req.IndicatorAccuracy,
		OverallWinRate:    req.OverallWinRate,
		SampleCount:       req.SampleCount,
	}
	s.engine.Learn(req.Symbol, tf, report)

	if s.archive != nil {
		s.archive.Save(ctx, req.Symbol, tf, s.engine.Weights(req.Symbol, tf))
	}

	if s.l != nil {
		s.l.Info("accuracy report applied",
			applogger.String("symbol", req.Symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("samples", req.SampleCount),
			applogger.Float64("win_rate", req.OverallWinRate))
	}
	return nil
}

// GetWeights returns the current per-indicator weights.
func (s *SignalService) GetWeights(symbol string, tf domrepo.Timeframe) models.WeightVector {
	return s.engine.Weights(symbol, tf)
}
