package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Refresh bool `query:"refresh" json:"refresh"`
}

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type WeightsRequest struct {
	Detailed bool `query:"detailed" json:"detailed"`
}
