package domain

import "time"

// HistoryEntry records one executed transition. Entries are immutable once
// appended.
type HistoryEntry struct {
	ActionID  string    `json:"action_id"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	At        time.Time `json:"at"`
}

// Instance is one running execution of a Definition. It is mutated only by
// the transition engine, exclusively through action execution.
type Instance struct {
	ID           string         `json:"id"`
	DefinitionID string         `json:"definition_id"`
	CurrentState string         `json:"current_state"`
	History      []HistoryEntry `json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewInstance creates an instance positioned at the given initial state with
// empty history and matching creation/update timestamps.
func NewInstance(id, definitionID, initialState string, now time.Time) *Instance {
	return &Instance{
		ID:           id,
		DefinitionID: definitionID,
		CurrentState: initialState,
		History:      []HistoryEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy. The engine works on clones so that a rejected
// execution leaves the stored instance untouched.
func (i *Instance) Clone() *Instance {
	copied := *i
	copied.History = make([]HistoryEntry, len(i.History))
	copy(copied.History, i.History)
	return &copied
}
