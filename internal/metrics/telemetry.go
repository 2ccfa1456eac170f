package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// VectorStoreMetrics is the telemetry a vector store reports about itself.
// A nil *VectorStoreMetrics is valid and records nothing.
type VectorStoreMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	entries    *prometheus.CounterVec
}

func NewVectorStoreMetrics() *VectorStoreMetrics {
	m := &VectorStoreMetrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chat",
				Subsystem: "vectorstore",
				Name:      "operations_total",
				Help:      "Vector store operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chat",
				Subsystem: "vectorstore",
				Name:      "entries_added_total",
				Help:      "Entries written to vector store collections",
			},
			[]string{"backend", "collection"},
		),
	}
	m.registry.MustRegister(m.operations, m.entries)
	return m
}

func (m *VectorStoreMetrics) RecordOperation(backend, operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(backend, operation, statusLabel(err)).Inc()
}

func (m *VectorStoreMetrics) RecordEntries(backend, collection string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entries.WithLabelValues(backend, collection).Add(float64(n))
}

// WriteTextfile writes the current telemetry in the Prometheus text format.
func (m *VectorStoreMetrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write telemetry to %s: %w", path, err)
	}
	return nil
}
