package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_auth_attempts_total",
		Help: "Total number of counted authentication attempts",
	}, []string{"operation", "outcome"})

	rateLimitDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_rate_limit_denials_total",
		Help: "Total number of attempts denied by the rate limiter",
	}, []string{"endpoint"})
)
