// Package draft is the two-phase save shared by every inspection form:
// edit, freeze a preview snapshot, then commit it to the foundry API.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
)

// State of one form instance.
type State string

const (
	StateEditing    State = "editing"
	StatePreviewing State = "previewing"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

var (
	ErrInvalidTransition = errors.New("invalid draft transition")
	ErrSubmitInFlight    = errors.New("submission already in progress")
	ErrEmptySnapshot     = errors.New("preview snapshot is empty")
)

// ValidTransitions lists the allowed edges. Submitted is terminal.
var ValidTransitions = map[State][]State{
	StateEditing:    {StatePreviewing},
	StatePreviewing: {StateEditing, StateSubmitting},
	StateSubmitting: {StatePreviewing, StateSubmitted},
}

// Machine is serialised with its form session.
type Machine struct {
	State     State           `json:"state"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
	LastError string          `json:"last_error,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// New returns a machine in Editing.
func New() *Machine {
	return &Machine{State: StateEditing}
}

func (m *Machine) move(to State) error {
	for _, s := range ValidTransitions[m.State] {
		if s == to {
			m.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.State, to)
}

// Editable reports whether field edits are accepted in the current state.
func (m *Machine) Editable() bool {
	return m.State == StateEditing
}

// SaveAndContinue freezes snapshot as the preview payload. Callers validate
// before calling.
func (m *Machine) SaveAndContinue(snapshot json.RawMessage) error {
	if len(snapshot) == 0 {
		return ErrEmptySnapshot
	}
	if err := m.move(StatePreviewing); err != nil {
		return err
	}
	m.Snapshot = append(json.RawMessage(nil), snapshot...)
	m.LastError = ""
	return nil
}

// BackToEdit discards the snapshot; the next SaveAndContinue replaces it.
func (m *Machine) BackToEdit() error {
	if err := m.move(StateEditing); err != nil {
		return err
	}
	m.Snapshot = nil
	return nil
}

// BeginSubmit claims the submission. A second call while one is in flight
// fails with ErrSubmitInFlight.
func (m *Machine) BeginSubmit() error {
	if m.State == StateSubmitting {
		return ErrSubmitInFlight
	}
	if err := m.move(StateSubmitting); err != nil {
		return err
	}
	m.LastError = ""
	m.Warnings = nil
	return nil
}

// FailSubmit returns to Previewing after a primary call failed.
func (m *Machine) FailSubmit(cause error) error {
	if err := m.move(StatePreviewing); err != nil {
		return err
	}
	if cause != nil {
		m.LastError = cause.Error()
	}
	return nil
}

// CompleteSubmit finishes the flow. Warnings are the secondary failures.
func (m *Machine) CompleteSubmit(warnings ...string) error {
	if err := m.move(StateSubmitted); err != nil {
		return err
	}
	m.Warnings = append([]string(nil), warnings...)
	return nil
}

// Payload returns a copy of the frozen snapshot.
func (m *Machine) Payload() json.RawMessage {
	return append(json.RawMessage(nil), m.Snapshot...)
}
