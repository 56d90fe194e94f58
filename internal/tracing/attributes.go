package tracing

// Span attribute keys for object store operations
const (
	// Store attributes
	AttrLocation = "objectstore.location"
	AttrKey      = "objectstore.key"
	AttrRemoved  = "objectstore.removed"

	// Operation attributes
	AttrOperation = "objectstore.operation"
	AttrStatus    = "objectstore.status"

	// Database attributes (OpenTelemetry semantic conventions)
	AttrDBSystem = "db.system"
)
