package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aligned Block Metrics
var (
	// AlignedAllocationsTotal counts aligned block allocations
	AlignedAllocationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alignedvec_aligned_allocations_total",
			Help: "Total number of aligned block allocations",
		},
	)

	// AlignedFreesTotal counts aligned block releases
	AlignedFreesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alignedvec_aligned_frees_total",
			Help: "Total number of aligned block releases",
		},
	)

	// ReservedBytes tracks currently reserved block bytes, including unused
	// capacity
	ReservedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alignedvec_reserved_bytes",
			Help: "Currently reserved aligned block bytes including unused capacity",
		},
	)
)

// Bulk Operation Metrics
var (
	// BulkOpsTotal counts bulk operations by kind and execution path
	BulkOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alignedvec_bulk_ops_total",
			Help: "Total number of bulk operations by kind and execution path",
		},
		[]string{"op", "path"},
	)

	// ParallelChunksTotal counts subranges dispatched to worker goroutines
	ParallelChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alignedvec_parallel_chunks_total",
			Help: "Total number of subranges dispatched to worker goroutines",
		},
	)
)

// Serialization Metrics
var (
	// LoadRejectsTotal counts load requests rejected by the count guard
	LoadRejectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alignedvec_load_rejects_total",
			Help: "Total number of load requests rejected by the element count guard",
		},
	)
)
