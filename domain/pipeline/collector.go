package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibgraph_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibgraph_pipeline_rows_total",
			Help: "Total number of rows produced by each stage and batch",
		},
		[]string{"stage", "name"},
	)

	droppedEdgesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bibgraph_pipeline_dropped_edges_total",
			Help: "Total number of derived edges dropped for unresolvable endpoints",
		},
		[]string{"type"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bibgraph_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, rowsTotal, droppedEdgesTotal, stageDuration)
}
