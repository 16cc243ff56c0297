package collector

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of the upstream circuit breaker.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

// ErrUpstreamSuspended is returned while the breaker is open and Yahoo
// requests are being skipped.
var ErrUpstreamSuspended = errors.New("upstream requests suspended")

// Breaker trips after repeated Yahoo failures so collection cycles stop
// hammering a broken upstream. After the cooldown a probe request is let
// through; enough consecutive probe successes close the breaker again.
type Breaker struct {
	failureThreshold int
	successThreshold int
	cooldown         time.Duration

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		state:            BreakerClosed,
	}
}

// Allow reports whether a request may proceed. While open it returns
// ErrUpstreamSuspended until the cooldown has passed, then admits a probe.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if time.Since(b.lastFailure) < b.cooldown {
			return ErrUpstreamSuspended
		}
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return nil
}

// RecordSuccess counts a successful request.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = BreakerClosed
			b.failures = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

// RecordFailure counts a failed request, tripping the breaker at the
// threshold. A failed probe reopens immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()

	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
	case BreakerClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = BreakerOpen
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
