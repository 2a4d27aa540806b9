package goLogin

import (
	"context"

	"github.com/MrEthical07/goLogin/cookie"
	"github.com/MrEthical07/goLogin/internal/limiters"
)

// Engine defines a public type used by goLogin APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	api     IdentityAPI
	codec   *cookie.Codec
	limiter *limiters.PasswordLimiter
	audit   *auditDispatcher
	metrics *Metrics
}

// Close describes the close operation and its observable behavior.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// Sessions returns the cookie store bound to jar for the duration of one
// request. Evictions forced by the byte budget are surfaced through audit
// and metrics; the affected caller is not notified, which silently ends the
// user's oldest concurrent session.
func (e *Engine) Sessions(jar cookie.Jar) *cookie.Store {
	return cookie.NewStore(e.codec, jar, cookie.Options{
		Name:     e.config.Cookie.Name,
		MaxBytes: e.config.Cookie.MaxBytes,
		Secure:   e.config.Cookie.Secure,
		SameSite: e.config.Cookie.SameSite,
		OnEvict: func(r cookie.Record) {
			e.metricInc(MetricSessionEvicted)
			e.emitAudit(context.Background(), auditEventSessionEvicted, true,
				"", r.LoginName, r.Organization, r.ID, nil, nil)
		},
	})
}
