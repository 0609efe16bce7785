package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// WriteTextfile writes the registry's metrics in the text exposition format
// to path, for pickup by a node exporter textfile collector.
func WriteTextfile(reg prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write metrics textfile", err)
	}
	return nil
}
