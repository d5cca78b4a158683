package models

// Requests for the signals HTTP endpoints. Defined in domain for consistency and reuse.

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
}

type LearnRequest struct {
	Symbol            string             `json:"symbol" validate:"required"`
	TF                string             `json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
	IndicatorAccuracy map[string]float64 `json:"indicator_accuracy" validate:"required,dive,gte=0,lte=100"`
	OverallWinRate    float64            `json:"overall_win_rate" validate:"gte=0,lte=100"`
	SampleCount       int                `json:"sample_count" validate:"gte=0"`
}

type WeightsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}
