package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records object store activity. It implements
// objectstore.Observer.
type StoreMetrics struct {
	location string

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	swept      *prometheus.CounterVec
	sweeps     *prometheus.CounterVec
	lastSweep  *prometheus.GaugeVec
	records    *prometheus.GaugeVec
}

// NewStoreMetrics registers the store metrics for one location
func NewStoreMetrics(collector *Collector, location string) *StoreMetrics {
	return &StoreMetrics{
		location: location,
		operations: collector.RegisterCounter(
			MetricOperationsTotal,
			"Total number of object store operations",
			[]string{LabelLocation, LabelOperation, LabelStatus},
		),
		duration: collector.RegisterHistogram(
			MetricOperationDuration,
			"Duration of object store operations in seconds",
			[]string{LabelLocation, LabelOperation},
			opBuckets,
		),
		swept: collector.RegisterCounter(
			MetricSweptRecordsTotal,
			"Total number of stale records removed by sweeps",
			[]string{LabelLocation},
		),
		sweeps: collector.RegisterCounter(
			MetricSweepsTotal,
			"Total number of completed sweeps",
			[]string{LabelLocation},
		),
		lastSweep: collector.RegisterGauge(
			MetricLastSweepTimestamp,
			"Unix time of the last completed sweep",
			[]string{LabelLocation},
		),
		records: collector.RegisterGauge(
			MetricRecords,
			"Number of records in the store, stale ones included",
			[]string{LabelLocation},
		),
	}
}

// ObserveOp counts an operation and records its duration
func (m *StoreMetrics) ObserveOp(op string, seconds float64, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.operations.WithLabelValues(m.location, op, status).Inc()
	m.duration.WithLabelValues(m.location, op).Observe(seconds)
}

// ObserveSweep records a completed sweep
func (m *StoreMetrics) ObserveSweep(removed int64) {
	m.swept.WithLabelValues(m.location).Add(float64(removed))
	m.sweeps.WithLabelValues(m.location).Inc()
	m.lastSweep.WithLabelValues(m.location).Set(float64(time.Now().Unix()))
}

// SetRecords updates the record count gauge
func (m *StoreMetrics) SetRecords(n int) {
	m.records.WithLabelValues(m.location).Set(float64(n))
}
