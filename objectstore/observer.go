package objectstore

// Observer receives per-operation measurements. The metrics package provides
// a Prometheus implementation.
type Observer interface {
	// ObserveOp is called once per operation with its duration in seconds
	ObserveOp(op string, seconds float64, err error)
	// ObserveSweep is called after DeleteOld with the number of removed records
	ObserveSweep(removed int64)
}

type nopObserver struct{}

func (nopObserver) ObserveOp(string, float64, error) {}
func (nopObserver) ObserveSweep(int64)               {}
