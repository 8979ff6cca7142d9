package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomePipeOpen  = "pipe_open"
	OutcomeRead      = "read"
	OutcomeMalformed = "malformed"
	OutcomeWrite     = "write"
	OutcomeCancelled = "cancelled"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Handler metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestBytes    prometheus.Histogram
	FilterRequests  *prometheus.CounterVec
	HandlersActive  prometheus.Gauge

	// Spawn loop metrics
	HandlersSpawned prometheus.Counter
	SpawnsSkipped   prometheus.Counter

	// Breaker metrics
	BreakerTrips prometheus.Counter

	startTime time.Time

	// Snapshot for the JSON stats endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON stats endpoint
type Snapshot struct {
	Requests      int64            `json:"requests"`
	Failures      int64            `json:"failures"`
	ByOutcome     map[string]int64 `json:"by_outcome"`
	Spawned       int64            `json:"spawned"`
	Skipped       int64            `json:"skipped"`
	Active        int64            `json:"active"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),
		snapshot:  Snapshot{ByOutcome: make(map[string]int64)},

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipefilter_requests_total",
				Help: "Total number of handled requests by outcome",
			},
			[]string{"outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipefilter_request_duration_seconds",
				Help:    "Time from lock acquisition to response written",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"filter"},
		),
		RequestBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipefilter_request_bytes",
				Help:    "Payload size of served requests in bytes",
				Buckets: []float64{8, 32, 128, 512, 1024},
			},
		),
		FilterRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipefilter_filter_requests_total",
				Help: "Served requests by resolved filter",
			},
			[]string{"filter"},
		),
		HandlersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipefilter_handlers_active",
				Help: "Handlers spawned and not yet finished",
			},
		),
		HandlersSpawned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipefilter_handlers_spawned_total",
				Help: "Total number of handlers spawned by the server loop",
			},
		),
		SpawnsSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipefilter_spawns_skipped_total",
				Help: "Spawn ticks skipped because the handler registry was full",
			},
		),
		BreakerTrips: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipefilter_breaker_trips_total",
				Help: "Times the pipe-open circuit breaker opened",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pipefilter_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records the outcome of one handler invocation
func (m *Metrics) RecordRequest(outcome, filter string, payloadBytes int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.RequestDuration.WithLabelValues(filter).Observe(duration.Seconds())
		m.RequestBytes.Observe(float64(payloadBytes))
		m.FilterRequests.WithLabelValues(filter).Inc()
	}

	m.mu.Lock()
	m.snapshot.Requests++
	m.snapshot.ByOutcome[outcome]++
	if outcome != OutcomeOK {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// HandlerStarted records a spawned handler
func (m *Metrics) HandlerStarted() {
	m.HandlersSpawned.Inc()
	m.HandlersActive.Inc()

	m.mu.Lock()
	m.snapshot.Spawned++
	m.snapshot.Active++
	m.mu.Unlock()
}

// HandlerFinished records a handler that returned
func (m *Metrics) HandlerFinished() {
	m.HandlersActive.Dec()

	m.mu.Lock()
	m.snapshot.Active--
	m.mu.Unlock()
}

// SpawnSkipped records a tick that did not spawn
func (m *Metrics) SpawnSkipped() {
	m.SpawnsSkipped.Inc()

	m.mu.Lock()
	m.snapshot.Skipped++
	m.mu.Unlock()
}

// BreakerTripped records the breaker opening
func (m *Metrics) BreakerTripped() {
	m.BreakerTrips.Inc()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.ByOutcome = make(map[string]int64, len(m.snapshot.ByOutcome))
	for k, v := range m.snapshot.ByOutcome {
		s.ByOutcome[k] = v
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
