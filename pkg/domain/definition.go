package domain

import "time"

// State is a single node in a workflow graph.
// State identifiers are caller-chosen and scoped to one definition.
type State struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	IsInitial   bool   `json:"is_initial" yaml:"is_initial"`
	IsFinal     bool   `json:"is_final" yaml:"is_final"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Action is a named transition rule: it may fire from any of FromStates and
// always lands on ToState.
type Action struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	FromStates  []string `json:"from_states" yaml:"from_states"`
	ToState     string   `json:"to_state" yaml:"to_state"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Definition is the static, reusable description of a workflow.
// It is frozen once accepted by the validator; there is no update or delete.
type Definition struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	States      []State   `json:"states" yaml:"states"`
	Actions     []Action  `json:"actions" yaml:"actions"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// FindState returns the state with the given id, or false when absent.
func (d *Definition) FindState(id string) (State, bool) {
	for _, s := range d.States {
		if s.ID == id {
			return s, true
		}
	}
	return State{}, false
}

// FindAction returns the action with the given id, or false when absent.
func (d *Definition) FindAction(id string) (Action, bool) {
	for _, a := range d.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// InitialState returns the state marked IsInitial.
// The validator guarantees exactly one exists on accepted definitions.
func (d *Definition) InitialState() (State, bool) {
	for _, s := range d.States {
		if s.IsInitial {
			return s, true
		}
	}
	return State{}, false
}

// HasFromState reports whether the action may fire from the given state id.
func (a Action) HasFromState(stateID string) bool {
	for _, from := range a.FromStates {
		if from == stateID {
			return true
		}
	}
	return false
}
