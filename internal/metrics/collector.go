package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector owns the Prometheus registry the process exposes
type Collector struct {
	registry *prometheus.Registry
}

// NewCollector creates a collector with an empty registry
func NewCollector() *Collector {
	return &Collector{
		registry: prometheus.NewRegistry(),
	}
}

// NewProcessCollector creates a collector that also exposes Go runtime and
// process metrics
func NewProcessCollector() *Collector {
	c := NewCollector()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RegisterCounter registers a counter vector
func (c *Collector) RegisterCounter(name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{Name: name, Help: help},
		labels,
	)
}

// RegisterGauge registers a gauge vector
func (c *Collector) RegisterGauge(name, help string, labels []string) *prometheus.GaugeVec {
	return promauto.With(c.registry).NewGaugeVec(
		prometheus.GaugeOpts{Name: name, Help: help},
		labels,
	)
}

// RegisterHistogram registers a histogram vector; nil buckets means
// prometheus.DefBuckets
func (c *Collector) RegisterHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return promauto.With(c.registry).NewHistogramVec(
		prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets},
		labels,
	)
}

// GetRegistry returns the Prometheus registry for the HTTP handler
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
