// Package metrics flushes the process's Prometheus counters for tools that
// exit before anything could scrape them.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric in the default registry to path in the
// text exposition format, for the node_exporter textfile collector. An
// empty path is a no-op.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, prometheus.DefaultGatherer)
}

// WriteTextfileFrom is WriteTextfile for an explicit gatherer.
func WriteTextfileFrom(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
