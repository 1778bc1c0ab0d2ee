// Package cache provides a debounced, lazily recomputed single-value cache.
//
// Lazy holds one expensively computed value. Invalidations are coalesced over
// a quiet window so bursts of change notifications trigger at most one
// recompute, and the factory never runs concurrently with itself.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// DefaultDebounce is the quiet window applied when no option overrides it.
const DefaultDebounce = 50 * time.Millisecond

// ErrClosed is returned by Get after Close has been called.
var ErrClosed = errors.New("cache: closed")

// Factory computes a fresh value. It must return either a fully constructed
// value or an error; partially built values must never be returned.
type Factory[T any] func(ctx context.Context) (T, error)

// flight represents one factory execution. Waiters block on done and read err
// after it closes.
type flight struct {
	done chan struct{}
	err  error
}

// Lazy is a debounced lazy-recompute cache around a single value of type T.
//
// The zero value is not usable; construct with New.
type Lazy[T any] struct {
	factory Factory[T]
	delay   time.Duration
	log     *slog.Logger
	rec     metrics.Recorder

	mu       sync.Mutex
	val      T
	has      bool
	fl       *flight // non-nil while the factory is running
	timer    *time.Timer
	timerGen uint64 // invalidates stale AfterFunc callbacks
	burst    int    // invalidations since the last recompute started
	followUp bool   // a settled burst arrived while the factory was running
	closed   bool
}

// Option configures a Lazy.
type Option[T any] func(*Lazy[T])

// WithDebounce overrides the quiet window. Non-positive values keep the default.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(l *Lazy[T]) {
		if d > 0 {
			l.delay = d
		}
	}
}

// WithLogger sets the logger used for background recompute failures.
func WithLogger[T any](log *slog.Logger) Option[T] {
	return func(l *Lazy[T]) {
		if log != nil {
			l.log = log
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder[T any](rec metrics.Recorder) Option[T] {
	return func(l *Lazy[T]) {
		if rec != nil {
			l.rec = rec
		}
	}
}

// New creates a Lazy around factory. Nothing is computed until the first Get.
func New[T any](factory Factory[T], opts ...Option[T]) *Lazy[T] {
	l := &Lazy[T]{
		factory: factory,
		delay:   DefaultDebounce,
		log:     slog.Default(),
		rec:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the current value, computing it synchronously when none exists
// yet. Concurrent first-time callers share a single factory invocation. If a
// recompute is in flight, Get waits for it so callers never observe a value
// staler than the most recently settled invalidation. A pending, not-yet-fired
// debounce timer does not block Get; the previous value remains current until
// the burst settles.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	var zero T
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return zero, ErrClosed
		}
		if fl := l.fl; fl != nil {
			l.mu.Unlock()
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-fl.done:
			}
			l.mu.Lock()
			if l.has {
				v := l.val
				l.mu.Unlock()
				return v, nil
			}
			err := fl.err
			l.mu.Unlock()
			if err != nil {
				return zero, err
			}
			continue
		}
		if l.has {
			v := l.val
			l.mu.Unlock()
			return v, nil
		}

		// First computation runs on the calling goroutine.
		fl := &flight{done: make(chan struct{})}
		l.fl = fl
		l.mu.Unlock()

		l.run(ctx, fl, 0)

		l.mu.Lock()
		if l.has {
			v := l.val
			l.mu.Unlock()
			return v, nil
		}
		err := fl.err
		l.mu.Unlock()
		if err != nil {
			return zero, err
		}
	}
}

// Invalidate schedules a recompute once the quiet window elapses after the
// last Invalidate call. It never blocks: repeated calls within the window
// cancel and re-arm the timer so one recompute runs per settled burst. Calls
// after Close are ignored.
func (l *Lazy[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.rec.IncInvalidations()
	l.burst++
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timerGen++
	gen := l.timerGen
	l.timer = time.AfterFunc(l.delay, func() { l.onQuiet(gen) })
}

// Close cancels any pending debounce timer and prevents further recomputes.
// A factory invocation already executing runs to completion.
func (l *Lazy[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.timerGen++
	l.followUp = false
}

// onQuiet fires when a burst of invalidations has settled.
func (l *Lazy[T]) onQuiet(gen uint64) {
	l.mu.Lock()
	if l.closed || gen != l.timerGen {
		// Superseded by a later Invalidate or by Close.
		l.mu.Unlock()
		return
	}
	l.timer = nil
	if l.fl != nil {
		// A recompute is executing; queue exactly one follow-up. The burst
		// counter carries over so the follow-up reports the full burst.
		l.followUp = true
		l.mu.Unlock()
		return
	}
	burst := l.burst
	l.burst = 0
	fl := &flight{done: make(chan struct{})}
	l.fl = fl
	l.mu.Unlock()

	go l.run(context.Background(), fl, burst)
}

// runFollowUp starts one more recompute when invalidations settled while the
// previous factory call was executing.
func (l *Lazy[T]) runFollowUp() {
	l.mu.Lock()
	if l.closed || !l.followUp || l.fl != nil {
		l.mu.Unlock()
		return
	}
	l.followUp = false
	burst := l.burst
	l.burst = 0
	fl := &flight{done: make(chan struct{})}
	l.fl = fl
	l.mu.Unlock()

	l.run(context.Background(), fl, burst)
}

// run executes the factory exactly once for the given flight. The value
// reference is swapped under the lock; readers see either the old or the new
// complete value. A failure retains the previous value (if any) and is logged
// so background errors are observed even without a Get caller.
func (l *Lazy[T]) run(ctx context.Context, fl *flight, burst int) {
	start := time.Now()
	v, err := l.factory(ctx)
	elapsed := time.Since(start)

	l.mu.Lock()
	if err == nil {
		l.val = v
		l.has = true
	}
	fl.err = err
	l.fl = nil
	l.mu.Unlock()
	close(fl.done)

	l.rec.ObserveRecomputeDuration(elapsed)
	if burst > 0 {
		l.rec.ObserveBurstSize(burst)
	}
	if err != nil {
		l.rec.IncRecomputeOutcome(metrics.OutcomeFailed)
		l.log.Error("recompute failed", logfields.Error(err), logfields.DurationMS(elapsed))
	} else {
		l.rec.IncRecomputeOutcome(metrics.OutcomeSuccess)
		l.log.Debug("recompute finished", logfields.DurationMS(elapsed), slog.Int("burst", burst))
	}

	// A burst that settled while this factory call was running schedules
	// exactly one fresh recompute rather than being lost.
	l.mu.Lock()
	chain := l.followUp && !l.closed && l.fl == nil
	l.mu.Unlock()
	if chain {
		go l.runFollowUp()
	}
}
