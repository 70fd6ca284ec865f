package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for language downloads.
type Metrics struct {
	KeyOutcomes      *prometheus.CounterVec
	DownloadDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		KeyOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldsync_translation_key_outcomes_total",
			Help: "Translated keys by language and result",
		}, []string{"language", "result"}), // result: "ok", "fallback"

		DownloadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldsync_translation_download_duration_seconds",
			Help:    "Duration of a full language download",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"language"}),
	}
}

func (m *Metrics) IncrementKey(language, result string) {
	if m != nil {
		m.KeyOutcomes.WithLabelValues(language, result).Inc()
	}
}

func (m *Metrics) ObserveDownload(language string, d time.Duration) {
	if m != nil {
		m.DownloadDuration.WithLabelValues(language).Observe(d.Seconds())
	}
}
