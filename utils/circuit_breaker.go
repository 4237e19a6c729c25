package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitBreaker guards an outbound dependency (the mail relay) so a
// run of failures stops costing a full timeout per call. Closed passes
// everything through; open rejects immediately until the cool-down
// elapses; half-open lets a limited number of probes decide.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	failureRatio float64

	mutex      sync.Mutex
	state      BreakerState
	counts     breakerCounts
	generation uint64
	expiry     time.Time
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

type breakerCounts struct {
	requests            uint32
	totalFailures       uint32
	consecutiveFailures uint32
}

var ErrBreakerOpen = errors.New("circuit breaker is open")

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxRequests:  5,
		interval:     60 * time.Second,
		timeout:      30 * time.Second,
		failureRatio: 0.6,
		state:        BreakerClosed,
	}
}

func (cb *CircuitBreaker) Execute(ctx context.Context, req func() (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	generation, err := cb.beforeRequest()
	if err != nil {
		return nil, err
	}

	result, err := req()
	cb.afterRequest(generation, err == nil)
	return result, err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	state, _ := cb.currentState(time.Now())
	return state
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == BreakerOpen {
		return generation, ErrBreakerOpen
	}
	if state == BreakerHalfOpen && cb.counts.requests >= cb.maxRequests {
		return generation, ErrBreakerOpen
	}

	cb.counts.requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.consecutiveFailures = 0
		if state == BreakerHalfOpen {
			cb.state = BreakerClosed
			cb.newGeneration(now)
		}
		return
	}

	cb.counts.totalFailures++
	cb.counts.consecutiveFailures++
	if cb.readyToTrip() {
		cb.state = BreakerOpen
		cb.newGeneration(now)
	}
}

func (cb *CircuitBreaker) readyToTrip() bool {
	if cb.counts.consecutiveFailures >= cb.maxRequests {
		return true
	}
	return cb.counts.requests >= cb.maxRequests &&
		float64(cb.counts.totalFailures)/float64(cb.counts.requests) >= cb.failureRatio
}

func (cb *CircuitBreaker) currentState(now time.Time) (BreakerState, uint64) {
	switch cb.state {
	case BreakerClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.newGeneration(now)
		}
	case BreakerOpen:
		if cb.expiry.Before(now) {
			cb.state = BreakerHalfOpen
			cb.newGeneration(now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) newGeneration(now time.Time) {
	cb.generation++
	cb.counts = breakerCounts{}

	switch cb.state {
	case BreakerClosed:
		cb.expiry = now.Add(cb.interval)
	case BreakerOpen:
		cb.expiry = now.Add(cb.timeout)
	default:
		cb.expiry = time.Time{}
	}
}
