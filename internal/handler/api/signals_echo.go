package api

import (
	"context"
	"net/http"
	"time"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	"SignalPulse/internal/service/metrics"
	"SignalPulse/internal/service/ratelimit"
	"SignalPulse/internal/usecase"
	xhttp "SignalPulse/pkg/http"
	applogger "SignalPulse/pkg/logger"
	"SignalPulse/pkg/queue"
	xutil "SignalPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// Health captures the liveness checks exposed on /health.
type Health interface {
	Health(ctx context.Context) error
}

// SignalsEchoHandler exposes the signal engine over HTTP.
type SignalsEchoHandler struct {
	logger  *applogger.Logger
	signals *usecase.SignalService
	candles *usecase.CandlesUseCase
	learnQ  queue.QueueService
	rl      *ratelimit.Limiter
	deps    []Health
}

func NewSignalsEchoHandler(logger *applogger.Logger, signals *usecase.SignalService, candles *usecase.CandlesUseCase) *SignalsEchoHandler {
	metrics.Register()
	return &SignalsEchoHandler{
		logger:  logger,
		signals: signals,
		candles: candles,
		rl:      ratelimit.New(),
	}
}

// SetLearnQueue routes learn requests through a queue instead of
// applying them inline.
func (h *SignalsEchoHandler) SetLearnQueue(q queue.QueueService) { h.learnQ = q }

// AddHealthCheck registers an infrastructure dependency for /health.
func (h *SignalsEchoHandler) AddHealthCheck(dep Health) {
	if dep != nil {
		h.deps = append(h.deps, dep)
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	g := e.Group("/api/v1")
	g.GET("/signal", h.Signal)
	g.POST("/signal/learn", h.Learn)
	g.GET("/weights", h.Weights)
	g.GET("/candles", h.Candles)
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.SignalLatency.WithLabelValues("signal").Observe(time.Since(start).Seconds())
	}()

	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":signal", 10, 5) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	view, err := h.signals.GetSignal(c.Request().Context(), req.Symbol, tf)
	if err != nil {
		h.logger.Error("signal usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *SignalsEchoHandler) Learn(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.SignalLatency.WithLabelValues("learn").Observe(time.Since(start).Seconds())
	}()

	req := &models.LearnRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.learnQ != nil {
		if err := h.learnQ.PublishMessage(c.Request().Context(), usecase.LearnMessageType, req); err != nil {
			h.logger.Error("learn enqueue error", applogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"status": "queued"})
	}

	if err := h.signals.ApplyReport(c.Request().Context(), req); err != nil {
		h.logger.Error("learn usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "applied"})
}

func (h *SignalsEchoHandler) Weights(c echo.Context) error {
	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	w := h.signals.GetWeights(req.Symbol, tf)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":    req.Symbol,
		"timeframe": string(tf),
		"weights":   w,
	})
}

func (h *SignalsEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.SignalLatency.WithLabelValues("candles").Observe(time.Since(start).Seconds())
	}()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	now := time.Now()
	from := xutil.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := xutil.ParseTimeDefault(req.To, now)
	from, to = xutil.AlignFromTo(from, to, string(tf))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	for _, dep := range h.deps {
		if err := dep.Health(ctx); err != nil {
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
