package middleware

import "sync"

// CircuitBreaker decides when the shared limiter is trusted again. It opens
// after failureThreshold consecutive errors and closes after successThreshold
// consecutive successful calls.
type CircuitBreaker struct {
	mu               sync.Mutex
	open             bool
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

func newCircuitBreaker(failureThreshold, successThreshold int) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
	}
}

func (c *CircuitBreaker) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// RecordFailure returns true when the breaker is open after the failure.
func (c *CircuitBreaker) RecordFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount++
	c.successCount = 0
	if !c.open && c.failureCount >= c.failureThreshold {
		c.open = true
	}
	return c.open
}

// RecordSuccess returns true when the breaker is closed after the success.
func (c *CircuitBreaker) RecordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		c.failureCount = 0
		return true
	}
	c.successCount++
	if c.successCount >= c.successThreshold {
		c.open = false
		c.failureCount = 0
		c.successCount = 0
		return true
	}
	return false
}
