package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder with Prometheus collectors on a private registry
type PrometheusRecorder struct {
	registry      *prometheus.Registry
	stagesTotal   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// LLM calls take seconds to minutes
var durationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600}

// NewPrometheusRecorder creates a recorder with its own registry
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		registry: registry,
		stagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpilot_stage_requests_total",
				Help: "Total number of agent calls by stage, model, and status",
			},
			[]string{"stage", "model", "status"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildpilot_stage_duration_seconds",
				Help:    "Duration of agent calls in seconds",
				Buckets: durationBuckets,
			},
			[]string{"stage", "model"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpilot_generations_total",
				Help: "Total number of plan generations by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "buildpilot_generation_duration_seconds",
				Help:    "End-to-end plan generation time in seconds",
				Buckets: durationBuckets,
			},
		),
	}
}

func (p *PrometheusRecorder) ObserveStage(stage, model string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	p.stagesTotal.WithLabelValues(stage, model, status).Inc()
	p.stageDuration.WithLabelValues(stage, model).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveRun(outcome string, duration time.Duration) {
	p.runsTotal.WithLabelValues(outcome).Inc()
	p.runDuration.Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}
