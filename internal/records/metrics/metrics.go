package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record store.
type Metrics struct {
	// Records appended per module
	Appended *prometheus.CounterVec

	// Records flipped to SYNCED per module
	MarkedSynced *prometheus.CounterVec

	// Persistence failures by module and operation
	PersistenceFailures *prometheus.CounterVec
}

// New registers the record metrics on the default registry. Call it once per process.
func New() *Metrics {
	return &Metrics{
		Appended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldsync_records_appended_total",
			Help: "Total records appended by module",
		}, []string{"module"}),

		MarkedSynced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldsync_records_marked_synced_total",
			Help: "Total records marked synced by module",
		}, []string{"module"}),

		PersistenceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldsync_records_persistence_failures_total",
			Help: "Total record persistence failures by module and operation",
		}, []string{"module", "op"}), // op: "load", "save"
	}
}

func (m *Metrics) IncrementAppended(module string) {
	if m != nil {
		m.Appended.WithLabelValues(module).Inc()
	}
}

func (m *Metrics) IncrementMarkedSynced(module string) {
	if m != nil {
		m.MarkedSynced.WithLabelValues(module).Inc()
	}
}

func (m *Metrics) IncrementPersistenceFailure(module, op string) {
	if m != nil {
		m.PersistenceFailures.WithLabelValues(module, op).Inc()
	}
}
