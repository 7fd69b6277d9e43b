package workflow

import (
	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/reformulation"
)

// Phase is the position of the analysis flow.
type Phase string

// Analysis phases.
const (
	PhaseIdle        Phase = "idle"
	PhaseSubmitting  Phase = "submitting"
	PhaseResultReady Phase = "result_ready"
)

// Session is the controller's observable state. Values returned by the
// controller are copies and may be retained freely.
type Session struct {
	InputText        string              `json:"input_text"`
	SelectedFileName string              `json:"selected_file_name"`
	Analysis         *analysis.Result    `json:"analysis"`
	Reformulation    reformulation.State `json:"reformulation"`
	Phase            Phase               `json:"phase"`
	Progress         float64             `json:"progress"`
}

// Submitting reports whether an analysis is in flight.
func (s Session) Submitting() bool {
	return s.Phase == PhaseSubmitting
}

// Reformulating reports whether a rewrite request is in flight.
func (s Session) Reformulating() bool {
	return s.Reformulation.Pending
}

// EventKind classifies controller notifications.
type EventKind string

const (
	// EventChanged follows any state transition other than a progress tick.
	EventChanged EventKind = "changed"
	// EventProgress carries a new progress value.
	EventProgress EventKind = "progress"
	// EventFailed reports a remote call that ended in error.
	EventFailed EventKind = "failed"
)

// Operation names the remote call an event refers to.
type Operation string

const (
	OpCheckText   Operation = "check_text"
	OpCheckFile   Operation = "check_file"
	OpReformulate Operation = "reformulate"
)

// Event is a state notification delivered to subscribers.
type Event struct {
	Kind    EventKind
	Op      Operation
	Err     error
	Session Session
}
