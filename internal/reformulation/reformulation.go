// Package reformulation implements the rewrite sub-flow state machine:
// idle → pending → ready, with a visibility flag that only applies once a
// rewrite is ready. The Manager performs no I/O; callers drive it from the
// settle points of their own remote calls.
package reformulation

import (
	"strings"

	"github.com/JaimeStill/plagiat/internal/analysis"
)

// Status is the lifecycle position of the reformulation sub-flow.
type Status string

// Reformulation statuses.
const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
)

// State is the observable reformulation state.
type State struct {
	Status   Status          `json:"status"`
	Text     string          `json:"text"`
	Original string          `json:"original"`
	Method   analysis.Method `json:"method"`
	Visible  bool            `json:"visible"`
	Pending  bool            `json:"pending"`
}

// Manager owns a State and enforces its transitions.
type Manager struct {
	state State
}

// NewManager returns a Manager in the idle state.
func NewManager() *Manager {
	return &Manager{
		state: State{Status: StatusIdle},
	}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	return m.state
}

// Pending reports whether a request is outstanding.
func (m *Manager) Pending() bool {
	return m.state.Status == StatusPending
}

// Begin moves to pending for source. It returns false when source is blank
// or a request is already pending. Any ready text is kept but hidden until
// the new request settles.
func (m *Manager) Begin(source string) bool {
	if strings.TrimSpace(source) == "" || m.Pending() {
		return false
	}

	m.state.Status = StatusPending
	m.state.Pending = true
	m.state.Visible = false
	m.state.Original = source
	return true
}

// Complete stores a successful rewrite and makes it visible. A rewrite
// without a method takes the one implied by useAI.
func (m *Manager) Complete(rw analysis.Rewrite, useAI bool) bool {
	if !m.Pending() {
		return false
	}

	method := rw.Method
	if method == analysis.MethodUnset {
		method = analysis.MethodFor(useAI)
	}

	m.state.Status = StatusReady
	m.state.Pending = false
	m.state.Text = rw.Text
	m.state.Method = method
	m.state.Visible = true
	return true
}

// Fail returns a pending request to idle. Previously stored text is left
// untouched but stays hidden, since it no longer belongs to a ready rewrite.
func (m *Manager) Fail() bool {
	if !m.Pending() {
		return false
	}

	m.state.Status = StatusIdle
	m.state.Pending = false
	m.state.Visible = false
	return true
}

// Hide clears the visibility flag. Calling it repeatedly has no further effect.
func (m *Manager) Hide() {
	m.state.Visible = false
}

// Show reopens a ready rewrite.
func (m *Manager) Show() bool {
	if m.state.Status != StatusReady || m.state.Text == "" {
		return false
	}
	m.state.Visible = true
	return true
}

// Adopt consumes a visible ready rewrite and returns its text.
func (m *Manager) Adopt() (string, bool) {
	if !m.state.Visible || m.state.Text == "" {
		return "", false
	}

	text := m.state.Text
	m.state = State{Status: StatusIdle}
	return text, true
}
