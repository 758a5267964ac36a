package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	GraphModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modgraph_graph_modules_total",
		Help: "Total number of modules registered in the module graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modgraph_graph_edges_total",
		Help: "Total number of dependency edges in the module graph.",
	})

	CyclesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_cycles_detected_total",
		Help: "Total number of circular dependencies reported.",
	})

	ResolverCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_resolver_cache_hits_total",
		Help: "Total number of import resolutions answered from the resolver cache.",
	})

	ResolverCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_resolver_cache_misses_total",
		Help: "Total number of import resolutions that probed the filesystem.",
	})

	ResolverProbesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modgraph_resolver_probes_total",
		Help: "Total number of filesystem existence probes issued by the resolver.",
	})

	ResolutionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modgraph_resolution_failures_total",
		Help: "Total number of failed import resolutions by error code.",
	}, []string{"code"})

	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modgraph_resolution_seconds",
		Help:    "Time spent resolving an import path to a file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"root"})

	VisibilityViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modgraph_visibility_violations_total",
		Help: "Total number of denied cross-module accesses by declared visibility.",
	}, []string{"visibility"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modgraph_phase_seconds",
		Help:    "Time spent in a compilation session phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modgraph_parse_seconds",
		Help:    "Time spent reading and parsing one source file.",
		Buckets: prometheus.DefBuckets,
	})
)
