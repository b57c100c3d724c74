package ordering

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "dispute_ordering"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of indexed relay chain blocks.
	IndexedBlocks metrics.Gauge
	// Number of indexed candidates.
	IndexedCandidates metrics.Gauge
	// Number of tracked leaves.
	TrackedLeaves metrics.Gauge
	// The latest finalized block number.
	FinalizedHeight metrics.Gauge `metrics_name:"finalized_height"`

	// Total number of evicted blocks.
	EvictedBlocks metrics.Counter
	// Total number of leaves that could not be indexed.
	LeafUpdateFailures metrics.Counter
	// Number of blocks walked per activated leaf.
	WalkDepth metrics.Histogram

	// Comparator queries answered from the index.
	ComparatorHits metrics.Counter
	// Comparator queries for unknown candidates.
	ComparatorMisses metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		IndexedBlocks: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "indexed_blocks",
			Help:      "Number of indexed relay chain blocks.",
		}, labels).With(labelsAndValues...),
		IndexedCandidates: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "indexed_candidates",
			Help:      "Number of indexed candidates.",
		}, labels).With(labelsAndValues...),
		TrackedLeaves: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "tracked_leaves",
			Help:      "Number of tracked leaves.",
		}, labels).With(labelsAndValues...),
		FinalizedHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "finalized_height",
			Help:      "The latest finalized block number.",
		}, labels).With(labelsAndValues...),
		EvictedBlocks: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "evicted_blocks_total",
			Help:      "Total number of evicted blocks.",
		}, labels).With(labelsAndValues...),
		LeafUpdateFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "leaf_update_failures_total",
			Help:      "Total number of leaves that could not be indexed.",
		}, labels).With(labelsAndValues...),
		WalkDepth: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "walk_depth",
			Help:      "Number of blocks walked per activated leaf.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 2, 10),
		}, labels).With(labelsAndValues...),
		ComparatorHits: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "comparator_hits_total",
			Help:      "Comparator queries answered from the index.",
		}, labels).With(labelsAndValues...),
		ComparatorMisses: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "comparator_misses_total",
			Help:      "Comparator queries for unknown candidates.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		IndexedBlocks:      discard.NewGauge(),
		IndexedCandidates:  discard.NewGauge(),
		TrackedLeaves:      discard.NewGauge(),
		FinalizedHeight:    discard.NewGauge(),
		EvictedBlocks:      discard.NewCounter(),
		LeafUpdateFailures: discard.NewCounter(),
		WalkDepth:          discard.NewHistogram(),
		ComparatorHits:     discard.NewCounter(),
		ComparatorMisses:   discard.NewCounter(),
	}
}
