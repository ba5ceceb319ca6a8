// Package debounce turns a rapidly changing input stream into settled values.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is how long input must stay unchanged before it settles.
const DefaultQuiet = 800 * time.Millisecond

// Gate delivers the latest pushed value once no newer value has arrived for
// the quiet period. It holds at most one pending timer: every Push cancels
// the previous one. Values superseded inside the window are dropped.
type Gate[T any] struct {
	mu      sync.Mutex
	emitMu  sync.Mutex
	quiet   time.Duration
	clock   Clock
	sink    func(T)
	pending Timer
	latest  T
	armed   bool
	gen     uint64
	stopped bool
}

type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// New returns a gate that calls sink with each settled value. sink runs on
// the timer goroutine; calls are serialized.
func New[T any](quiet time.Duration, sink func(T), opts ...Option) *Gate[T] {
	o := options{clock: RealClock}
	for _, opt := range opts {
		opt(&o)
	}
	return &Gate[T]{quiet: quiet, clock: o.clock, sink: sink}
}

// Push replaces the pending value and restarts the quiet period.
func (g *Gate[T]) Push(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	if g.pending != nil {
		g.pending.Stop()
	}
	g.gen++
	gen := g.gen
	g.latest = v
	g.armed = true
	g.pending = g.clock.AfterFunc(g.quiet, func() { g.fire(gen) })
}

func (g *Gate[T]) fire(gen uint64) {
	g.mu.Lock()
	if g.stopped || !g.armed || gen != g.gen {
		g.mu.Unlock()
		return
	}
	v := g.latest
	g.armed = false
	g.pending = nil
	g.mu.Unlock()

	g.emit(v)
}

func (g *Gate[T]) emit(v T) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()
	g.sink(v)
}

// Flush settles the pending value immediately, if there is one. It reports
// whether a value was emitted.
func (g *Gate[T]) Flush() bool {
	g.mu.Lock()
	if g.stopped || !g.armed {
		g.mu.Unlock()
		return false
	}
	if g.pending != nil {
		g.pending.Stop()
	}
	g.gen++
	v := g.latest
	g.armed = false
	g.pending = nil
	g.mu.Unlock()

	g.emit(v)
	return true
}

// Cancel drops the pending value without emitting it. The gate stays usable.
func (g *Gate[T]) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
}

// Stop cancels any pending emission for good. Later pushes are ignored.
func (g *Gate[T]) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.stopped = true
}

func (g *Gate[T]) cancelLocked() {
	if g.pending != nil {
		g.pending.Stop()
	}
	g.gen++
	g.armed = false
	g.pending = nil
}

// Pending reports whether a value is waiting for the quiet period to end.
func (g *Gate[T]) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Quiet returns the configured quiet period.
func (g *Gate[T]) Quiet() time.Duration {
	return g.quiet
}

// Latest returns a sink that keeps only the newest undelivered value in ch,
// which must have a buffer of at least one. Pair it with a Gate when the
// consumer reads from a channel at its own pace.
func Latest[T any](ch chan T) func(T) {
	return func(v T) {
		for {
			select {
			case ch <- v:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}
