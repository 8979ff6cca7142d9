package monitoring

import "time"

// Timer measures one handler invocation
type Timer struct {
	metrics *Metrics
	start   time.Time
}

// NewTimer starts timing. A nil Metrics yields a Timer whose Stop is a no-op.
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{metrics: metrics, start: time.Now()}
}

// Stop records the outcome and returns the elapsed time
func (t *Timer) Stop(outcome, filter string, payloadBytes int) time.Duration {
	elapsed := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordRequest(outcome, filter, payloadBytes, elapsed)
	}
	return elapsed
}
