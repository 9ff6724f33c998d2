// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Per-file metrics.
	MetricFilesProcessed = "regionpress_files_processed_total"
	MetricFilesFailed    = "regionpress_files_failed_total"
	MetricFilesDropped   = "regionpress_files_dropped_total" // fully-empty outputs

	// Per-chunk metrics.
	MetricChunksKept      = "regionpress_chunks_kept_total"
	MetricChunksDiscarded = "regionpress_chunks_discarded_total"
	MetricChunksCorrupt   = "regionpress_chunks_corrupt_total"
	MetricChunksStripped  = "regionpress_chunks_stripped_total"

	// Volume metrics.
	MetricBytesIn  = "regionpress_bytes_in_total"
	MetricBytesOut = "regionpress_bytes_out_total"

	// MetricCompactSeconds observes per-file compaction latency.
	MetricCompactSeconds = "regionpress_compact_seconds"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
