// Package telemetry is the planner's structured event stream. It
// follows golang.org/x/tools/internal/event's shape -- a label-carrying
// event handed to a swappable exporter -- collapsed into a single
// Logger interface, since this engine needs one in-process consumer
// (the planner's own stats) rather than a multi-exporter pipeline.
package telemetry

// Kind names a budget event's record type.
type Kind string

const (
	CandidatesGenerated Kind = "candidates_generated"
	CandidatePruned     Kind = "candidate_pruned"
	VerificationStart   Kind = "verification_start"
	VerificationEnd     Kind = "verification_end"
	FixCommitted        Kind = "fix_committed"
	BudgetExhausted     Kind = "budget_exhausted"
)

// Event is one record in the budget event log. Seq stands in for
// internal/event's wall-clock timestamp: the core avoids wall-clock
// dependence, so ordering is captured by a monotonic sequence number
// assigned by the Logger instead.
type Event struct {
	Seq    int
	Kind   Kind
	Labels map[string]any
}

// Logger receives budget events. It must be a single-producer,
// append-only sink.
type Logger interface {
	Log(kind Kind, labels map[string]any)
	Events() []Event
}

// Discard is the no-op Logger used in production when telemetry is not
// requested.
type discard struct{}

func (discard) Log(Kind, map[string]any) {}
func (discard) Events() []Event          { return nil }

// Discard is the shared no-op Logger instance.
var Discard Logger = discard{}

// Recorder is the in-memory Logger implementation used by tests and by
// callers who want to inspect the event stream after a plan call.
type Recorder struct {
	events []Event
	seq    int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Log(kind Kind, labels map[string]any) {
	r.seq++
	r.events = append(r.events, Event{Seq: r.seq, Kind: kind, Labels: labels})
}

func (r *Recorder) Events() []Event { return r.events }
