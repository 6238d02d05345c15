package monitoring

import "time"

// Timer measures a lifecycle callback.
type Timer struct {
	start      time.Time
	metrics    *Metrics
	transition string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, transition string) *Timer {
	return &Timer{
		start:      time.Now(),
		metrics:    metrics,
		transition: transition,
	}
}

// Stop records the duration under the given outcome.
func (t *Timer) Stop(outcome string) {
	t.metrics.RecordCallback(t.transition, outcome, time.Since(t.start))
}
