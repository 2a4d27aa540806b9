package goLogin

import "sync/atomic"

// MetricID defines a public type used by goLogin APIs.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the login orchestrator.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the login orchestrator.
	MetricLoginFailure
	// MetricLoginLockedOut is an exported constant or variable used by the login orchestrator.
	MetricLoginLockedOut
	// MetricLoginThrottled is an exported constant or variable used by the login orchestrator.
	MetricLoginThrottled
	// MetricStepUpRequired is an exported constant or variable used by the login orchestrator.
	MetricStepUpRequired
	// MetricSessionReused is an exported constant or variable used by the login orchestrator.
	MetricSessionReused
	// MetricSessionEvicted is an exported constant or variable used by the login orchestrator.
	MetricSessionEvicted
	// MetricSessionTokenRejected is an exported constant or variable used by the login orchestrator.
	MetricSessionTokenRejected
	// MetricIDPLoginSuccess is an exported constant or variable used by the login orchestrator.
	MetricIDPLoginSuccess
	// MetricRegisterSuccess is an exported constant or variable used by the login orchestrator.
	MetricRegisterSuccess
	// MetricLogout is an exported constant or variable used by the login orchestrator.
	MetricLogout

	metricIDCount
)

type paddedCounter struct {
	value uint64
	_     [7]uint64
}

// Metrics is a fixed set of lock-free counters. Disabled metrics cost one
// branch per increment.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by goLogin APIs.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled describes the enabled operation and its observable behavior.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc describes the inc operation and its observable behavior.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value describes the value operation and its observable behavior.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
