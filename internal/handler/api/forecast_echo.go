package api

import (
	"time"

	models "DrawPulse/internal/domain/models"
	drepo "DrawPulse/internal/domain/repository"
	"DrawPulse/internal/service/metrics"
	"DrawPulse/internal/service/ratelimit"
	"DrawPulse/internal/usecase"
	xhttp "DrawPulse/pkg/http"
	xlogger "DrawPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the forecasting engine over HTTP.
type ForecastHandler struct {
	logger    *xlogger.Logger
	svc       *usecase.PredictionService
	hist      *usecase.HistoryUseCase
	collector *usecase.DrawCollector
	storage   drepo.Storage
	rl        *ratelimit.Limiter
}

func NewForecastHandler(
	logger *xlogger.Logger,
	svc *usecase.PredictionService,
	hist *usecase.HistoryUseCase,
	collector *usecase.DrawCollector,
	storage drepo.Storage,
) *ForecastHandler {
	metrics.Register()
	return &ForecastHandler{
		logger:    logger,
		svc:       svc,
		hist:      hist,
		collector: collector,
		storage:   storage,
		rl:        ratelimit.New(),
	}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict", h.Predict)
	g.GET("/market", h.Market)
	g.GET("/weights", h.Weights)
	g.GET("/history", h.History)
	g.GET("/health", h.Health)
}

func (h *ForecastHandler) Predict(c echo.Context) error {
	start := time.Now()
	endpoint := "predict"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":predict", 5, 2) {
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	d, err := h.svc.Predict(c.Request().Context(), req.Refresh)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("predict: %v", err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, d)
}

func (h *ForecastHandler) Market(c echo.Context) error {
	start := time.Now()
	endpoint := "market"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	state := h.svc.MarketState()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"market":      state,
		"buffer_len":  h.svc.BufferLen(),
		"next_period": h.svc.NextPeriod(),
	})
}

type weightRow struct {
	Model          string  `json:"model"`
	Weight         float64 `json:"weight"`
	Wins           int     `json:"wins,omitempty"`
	Total          int     `json:"total,omitempty"`
	RecentAccuracy float64 `json:"recent_accuracy,omitempty"`
}

func (h *ForecastHandler) Weights(c echo.Context) error {
	start := time.Now()
	endpoint := "weights"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	weights, perf := h.svc.Weights()
	rows := make([]weightRow, 0, len(weights))
	for model, w := range weights {
		row := weightRow{Model: model, Weight: w}
		if req.Detailed {
			p := perf[model]
			row.Wins = p.Wins
			row.Total = p.Total
			row.RecentAccuracy = p.RecentAccuracy
		}
		rows = append(rows, row)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"weights": rows,
		"streak":  h.svc.Streak(),
	})
}

func (h *ForecastHandler) History(c echo.Context) error {
	start := time.Now()
	endpoint := "history"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.hist.GetHistory(c.Request().Context(), usecase.GetHistoryParams{Limit: req.Limit})
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res.Decisions, int64(res.Count))
}

func (h *ForecastHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"feed_connected": h.collector.IsConnected(),
		"buffer_len":     h.svc.BufferLen(),
		"time":           time.Now().UTC(),
	}
	if h.storage != nil {
		if err := h.storage.Health(c.Request().Context()); err != nil {
			status["storage"] = "down"
			return xhttp.DataResponse(c, 503, status)
		}
		status["storage"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}
