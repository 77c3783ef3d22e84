// Package circuit guards external provider calls: per-provider circuit
// breakers plus bounded retries with backoff. Breaker state is the only
// process-wide mutable state besides the dedup store.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// failureWindow bounds how far apart "consecutive" failures may be spread.
const failureWindow = 60 * time.Second

// Breaker is a three-state circuit breaker. It opens after openAfter
// consecutive failures within failureWindow, and allows a single half-open
// probe after the reset timeout.
type Breaker struct {
	name      string
	openAfter int
	reset     time.Duration

	mu           sync.Mutex
	state        State
	failures     int
	firstFailure time.Time
	openedAt     time.Time
	probing      bool

	now func() time.Time
}

func NewBreaker(name string, openAfter int, reset time.Duration) *Breaker {
	return &Breaker{
		name:      name,
		openAfter: openAfter,
		reset:     reset,
		state:     StateClosed,
		now:       time.Now,
	}
}

func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may proceed. In the open state it admits a
// single probe once the reset timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.reset {
			b.state = StateHalfOpen
			b.probing = true
			return true
		}
		return false
	case StateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// Success records a successful call and closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probing = false
}

// Failure records a failed call, opening the breaker once the consecutive
// threshold is reached (or immediately if a half-open probe fails).
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == StateHalfOpen {
		b.state = StateOpen
		b.openedAt = now
		b.probing = false
		return
	}
	if b.failures == 0 || now.Sub(b.firstFailure) > failureWindow {
		b.failures = 0
		b.firstFailure = now
	}
	b.failures++
	if b.failures >= b.openAfter {
		b.state = StateOpen
		b.openedAt = now
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.reset {
		return StateHalfOpen
	}
	return b.state
}

// Registry hands out one breaker per provider name.
type Registry struct {
	openAfter int
	reset     time.Duration

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry(openAfter int, reset time.Duration) *Registry {
	return &Registry{
		openAfter: openAfter,
		reset:     reset,
		breakers:  make(map[string]*Breaker),
	}
}

func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, r.openAfter, r.reset)
	r.breakers[name] = b
	return b
}

// States snapshots every registered breaker for health reporting.
func (r *Registry) States() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.State().String()
	}
	return out
}
