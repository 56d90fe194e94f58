package tracing

// TracingConfig holds configuration for OpenTelemetry tracing
type TracingConfig struct {
	// Enabled enables/disables tracing
	Enabled bool

	// ServiceName is the service name for traces
	ServiceName string

	// ServiceVersion is the service version
	ServiceVersion string

	// Endpoint is the OTLP endpoint (host:port)
	Endpoint string

	// Insecure disables TLS towards the collector
	Insecure bool

	// ExporterType specifies the exporter type: "grpc" or "http"
	ExporterType string

	// SampleRatio is the fraction of traces recorded, 0 < ratio <= 1
	SampleRatio float64
}

// DefaultTracingConfig returns a default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:        false,
		ServiceName:    "objstore",
		ServiceVersion: "dev",
		ExporterType:   "grpc",
		SampleRatio:    1.0,
	}
}

// sampleRatio clamps the configured ratio into (0, 1]
func (c TracingConfig) sampleRatio() float64 {
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		return 1.0
	}
	return c.SampleRatio
}
