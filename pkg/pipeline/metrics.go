package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline's prometheus collectors.
type Metrics struct {
	Generations   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Fallbacks     *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slidegen",
				Name:      "generations_total",
				Help:      "Total number of generation requests by outcome",
			},
			[]string{"status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "slidegen",
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slidegen",
				Name:      "fallbacks_total",
				Help:      "Warnings raised by stages that fell back to a deterministic result",
			},
			[]string{"stage"},
		),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) fallbacks(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Fallbacks.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) generation(status string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(status).Inc()
}
