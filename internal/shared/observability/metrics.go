package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbgraph_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbgraph_files_parsed_total",
		Help: "Total number of source files parsed successfully.",
	})

	FilesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbgraph_files_failed_total",
		Help: "Total number of source files skipped because they could not be read or parsed.",
	})

	GraphNamespaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rbgraph_namespaces",
		Help: "Number of classes and modules found by the last analysis.",
	})

	GraphReferences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rbgraph_references",
		Help: "Number of references found by the last analysis, by kind.",
	}, []string{"kind"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbgraph_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbgraph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbgraph_watcher_rescans_throttled_total",
		Help: "Total number of rescans delayed by the rescan rate limit.",
	})

	ExportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbgraph_export_errors_total",
		Help: "Total number of failed writes to outputs, history or the graph database.",
	}, []string{"target"})
)
