package models

import (
	"fmt"
	"time"
)

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set only when not allowed
	Degraded   bool
}

// Policy is a request budget per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// PerMinute builds a Policy of n requests per minute.
func PerMinute(n int) Policy {
	return Policy{Limit: n, Window: time.Minute}
}

// ClientKey namespaces a client IP under a route class, e.g. "ai:203.0.113.7".
func ClientKey(class, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:%s", class, ip)
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, minimum 1.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
