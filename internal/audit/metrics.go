package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	securityEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_security_events_total",
		Help: "Total number of recorded security events",
	}, []string{"type", "suspicious"})

	appendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authcore_audit_append_failures_total",
		Help: "Total number of failed security event appends",
	})
)
