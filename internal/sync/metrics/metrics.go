package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for sync runs.
type Metrics struct {
	RunDuration    prometheus.Histogram
	RecordOutcomes *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldsync_sync_run_duration_seconds",
			Help:    "Duration of a full sync run across all modules",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		RecordOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldsync_sync_record_outcomes_total",
			Help: "Per-record sync outcomes by module and result",
		}, []string{"module", "result"}), // result: "synced", "failed"
	}
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementOutcome(module, result string) {
	if m != nil {
		m.RecordOutcomes.WithLabelValues(module, result).Inc()
	}
}
