// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_snapshot_load_failures_total",
		Help: "Snapshot loads that fell back to an empty dataset",
	}, []string{"backend"})

	SnapshotSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_snapshot_saves_total",
		Help: "Snapshot saves by result",
	}, []string{"result"})

	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_operations_total",
		Help: "Service operations by name and result kind",
	}, []string{"op", "result"})
)
