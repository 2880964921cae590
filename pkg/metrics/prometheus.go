package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	modelWeight   *prometheus.GaugeVec
	modelAccuracy *prometheus.GaugeVec
	streakWins    prometheus.Gauge
	streakLosses  prometheus.Gauge
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawpulse_predictions_total",
				Help: "Total number of ensemble predictions issued",
			},
			[]string{"tier", "label"},
		),
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawpulse_resolutions_total",
				Help: "Total number of resolved predictions",
			},
			[]string{"result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		modelWeight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drawpulse_model_weight",
				Help: "Current ensemble weight per model",
			},
			[]string{"model"},
		),
		modelAccuracy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drawpulse_model_recent_accuracy",
				Help: "Exponentially weighted recent accuracy per model",
			},
			[]string{"model"},
		),
		streakWins: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "drawpulse_streak_wins",
				Help: "Current consecutive win streak",
			},
		),
		streakLosses: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "drawpulse_streak_losses",
				Help: "Current consecutive loss streak",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drawpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction records an issued prediction by tier and label.
func (r *Recorder) RecordPrediction(tier, label string) {
	r.predictions.WithLabelValues(tier, label).Inc()
}

// RecordResolution records a resolved prediction outcome.
func (r *Recorder) RecordResolution(correct bool) {
	result := "loss"
	if correct {
		result = "win"
	}
	r.resolutions.WithLabelValues(result).Inc()
}

// RecordModelWeight records a model's current weight and recent accuracy.
func (r *Recorder) RecordModelWeight(model string, weight, recentAccuracy float64) {
	r.modelWeight.WithLabelValues(model).Set(weight)
	r.modelAccuracy.WithLabelValues(model).Set(recentAccuracy)
}

// RecordStreak records the current win/loss streak.
func (r *Recorder) RecordStreak(wins, losses int) {
	r.streakWins.Set(float64(wins))
	r.streakLosses.Set(float64(losses))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
