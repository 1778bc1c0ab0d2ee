package metrics

import "time"

// OutcomeLabel enumerates recompute result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the content cache and parse pass.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using NoopRecorder (allowing optional
// injection).
type Recorder interface {
	ObserveRecomputeDuration(d time.Duration)
	IncRecomputeOutcome(outcome OutcomeLabel)
	IncInvalidations()
	ObserveBurstSize(n int) // invalidations coalesced into one recompute
	SetIndexPages(n int)
	IncParseFailures()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRecomputeDuration(time.Duration) {}
func (NoopRecorder) IncRecomputeOutcome(OutcomeLabel)       {}
func (NoopRecorder) IncInvalidations()                      {}
func (NoopRecorder) ObserveBurstSize(int)                   {}
func (NoopRecorder) SetIndexPages(int)                      {}
func (NoopRecorder) IncParseFailures()                      {}
