// Package limiter defines interfaces and implementations for fixed-window
// rate limiting of authentication endpoints.
package limiter

import (
	"context"
	"time"
)

// Endpoint labels tracked by the limiter.
const (
	EndpointLogin  = "login"
	EndpointSignup = "signup"
)

// Default window and per-endpoint attempt ceilings.
const (
	DefaultWindow      = 15 * time.Minute
	DefaultLoginLimit  = 5
	DefaultSignupLimit = 3
)

// Limiter tracks attempt counts per (identifier, endpoint) in fixed windows.
type Limiter interface {
	// Check reports whether another attempt is currently allowed and, when
	// denied, how long until the window resets. Check never counts an
	// attempt; Record does.
	Check(ctx context.Context, identifier, endpoint string) (allowed bool, retryAfter time.Duration, err error)

	// Record counts one attempt against the current window, opening a new
	// window if the previous one has ended. Successful and failed attempts
	// both count. Reports whether the count has reached the window limit.
	Record(ctx context.Context, identifier, endpoint string) (exceeded bool, err error)
}

// DefaultLimits returns the per-endpoint ceilings used when none are configured.
func DefaultLimits() map[string]int {
	return map[string]int{
		EndpointLogin:  DefaultLoginLimit,
		EndpointSignup: DefaultSignupLimit,
	}
}
