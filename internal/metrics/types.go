package metrics

// Metric names. Format: objstore_{metric}_{unit}
const (
	MetricOperationsTotal    = "objstore_operations_total"
	MetricOperationDuration  = "objstore_operation_duration_seconds"
	MetricSweptRecordsTotal  = "objstore_swept_records_total"
	MetricSweepsTotal        = "objstore_sweeps_total"
	MetricLastSweepTimestamp = "objstore_last_sweep_timestamp_seconds"
	MetricRecords            = "objstore_records"
)

// Label names
const (
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelLocation  = "location"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// opBuckets covers sub-millisecond SQLite calls up to slow disk syncs
var opBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
