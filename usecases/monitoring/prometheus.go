//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	Registerer prometheus.Registerer

	FileIOOps    *prometheus.CounterVec
	FileIOReads  *prometheus.CounterVec
	FileIOWrites *prometheus.CounterVec

	RecordsRead       prometheus.Counter
	RecordsWritten    prometheus.Counter
	DuplicatesDropped *prometheus.CounterVec
	RunsWritten       prometheus.Counter
	ShardsWritten     prometheus.Counter
	ShardSize         prometheus.Histogram
	PhaseDurations    *prometheus.HistogramVec
	ValidatedShards   *prometheus.CounterVec
}

var (
	metrics     *PrometheusMetrics
	metricsLock sync.Mutex
)

// InitMetrics registers the compaction metrics with reg and makes them the
// ones returned by GetMetrics. Calling it twice with the same registerer
// panics on duplicate registration.
func InitMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	metricsLock.Lock()
	defer metricsLock.Unlock()

	metrics = newPrometheusMetrics(reg)
	return metrics
}

// GetMetrics returns the process-wide metrics. Before InitMetrics is called
// they are registered with a no-op registry.
func GetMetrics() *PrometheusMetrics {
	metricsLock.Lock()
	defer metricsLock.Unlock()

	if metrics == nil {
		metrics = newPrometheusMetrics(NewNoopRegistry())
	}
	return metrics
}

func newPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		Registerer: reg,

		FileIOOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blobopt_file_io_ops_total",
			Help: "File system operations by operation and source",
		}, []string{"operation", "source"}),
		FileIOReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blobopt_file_io_read_bytes_total",
			Help: "Bytes read from disk by pipeline stage",
		}, []string{"operation"}),
		FileIOWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blobopt_file_io_write_bytes_total",
			Help: "Bytes written to disk by pipeline stage",
		}, []string{"operation"}),

		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobopt_records_read_total",
			Help: "Well-formed records read from input BLOBs",
		}),
		RecordsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobopt_records_written_total",
			Help: "Records written to output shards",
		}),
		DuplicatesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blobopt_duplicates_dropped_total",
			Help: "Records dropped because their digest was already seen",
		}, []string{"stage"}),
		RunsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobopt_runs_written_total",
			Help: "Sorted run files written during chunking",
		}),
		ShardsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobopt_shards_written_total",
			Help: "Output shards closed",
		}),
		ShardSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blobopt_shard_size_bytes",
			Help:    "Size of closed output shards",
			Buckets: prometheus.ExponentialBuckets(1<<20, 4, 8),
		}),
		PhaseDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blobopt_phase_duration_seconds",
			Help:    "Duration of each pipeline phase",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"phase"}),
		ValidatedShards: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blobopt_validated_shards_total",
			Help: "Shards scanned by the validator by outcome",
		}, []string{"outcome"}),
	}
}

func (pm *PrometheusMetrics) ObservePhase(phase string, seconds float64) {
	if pm == nil {
		return
	}

	pm.PhaseDurations.With(prometheus.Labels{"phase": phase}).Observe(seconds)
}

func (pm *PrometheusMetrics) DropDuplicates(stage string, n int64) {
	if pm == nil || n <= 0 {
		return
	}

	pm.DuplicatesDropped.With(prometheus.Labels{"stage": stage}).Add(float64(n))
}

func (pm *PrometheusMetrics) ShardClosed(size int64, records int64) {
	if pm == nil {
		return
	}

	pm.ShardsWritten.Inc()
	pm.ShardSize.Observe(float64(size))
	pm.RecordsWritten.Add(float64(records))
}

func (pm *PrometheusMetrics) ShardValidated(ok bool) {
	if pm == nil {
		return
	}

	outcome := "valid"
	if !ok {
		outcome = "invalid"
	}
	pm.ValidatedShards.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// ReadCallback returns a callback for diskio.MeteredReader that counts bytes
// under the given operation.
func (pm *PrometheusMetrics) ReadCallback(operation string) func(read int64, nanoseconds int64) {
	counter := pm.FileIOReads.With(prometheus.Labels{"operation": operation})
	return func(read int64, _ int64) {
		counter.Add(float64(read))
	}
}

// WriteCallback returns a callback for diskio.MeteredWriter that counts bytes
// under the given operation.
func (pm *PrometheusMetrics) WriteCallback(operation string) func(written int64) {
	counter := pm.FileIOWrites.With(prometheus.Labels{"operation": operation})
	return func(written int64) {
		counter.Add(float64(written))
	}
}
