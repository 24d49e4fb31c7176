package productmap

import "time"

// Metrics observes engine activity. internal/metrics provides a Prometheus
// implementation.
type Metrics interface {
	// ObserveLoad records a finished load
	ObserveLoad(outcome string, duration time.Duration)

	// ObserveToggle records a finished favorite toggle
	ObserveToggle(outcome string)

	// SetVisibleProducts records the size of the filtered view
	SetVisibleProducts(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLoad(string, time.Duration) {}
func (nopMetrics) ObserveToggle(string)              {}
func (nopMetrics) SetVisibleProducts(int)            {}
