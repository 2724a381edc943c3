// Package runtime drives state transitions over accepted workflow
// definitions. The engine is a pure computation over already-fetched data: it
// never touches a store and never mutates its inputs.
package runtime

import (
	"time"

	"github.com/stateline-dev/stateline/pkg/domain"
)

// Engine decides whether a requested action is legal for an instance and
// produces the next instance state plus a history record.
type Engine struct{}

// NewEngine creates a new transition engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Execute applies actionID to the instance under the given definition.
//
// The checks run in a fixed order so error reporting is deterministic:
// definition/current-state resolution (consistency faults), final state,
// action existence, action enabled, source-state applicability, target
// resolution (consistency fault), target enabled. On success it returns a
// clone with the appended history entry; the input instance is untouched.
func (e *Engine) Execute(inst *domain.Instance, def *domain.Definition, actionID string, now time.Time) (*domain.Instance, error) {
	if def == nil {
		return nil, domain.Faultf("instance %q references a missing definition %q", inst.ID, inst.DefinitionID)
	}

	current, ok := def.FindState(inst.CurrentState)
	if !ok {
		return nil, domain.Faultf("instance %q is positioned at state %q which does not exist in definition %q", inst.ID, inst.CurrentState, def.ID)
	}

	if current.IsFinal {
		return nil, domain.Validationf("instance %q is in final state %q, no actions may execute", inst.ID, current.ID)
	}

	action, ok := def.FindAction(actionID)
	if !ok {
		return nil, domain.Validationf("unknown action %q in definition %q", actionID, def.ID)
	}

	if !action.Enabled {
		return nil, domain.Validationf("action %q is disabled", action.ID)
	}

	if !action.HasFromState(current.ID) {
		return nil, domain.Validationf("action %q is not applicable from state %q", action.ID, current.ID)
	}

	// Unreachable after validator acceptance, checked defensively.
	target, ok := def.FindState(action.ToState)
	if !ok {
		return nil, domain.Faultf("action %q targets state %q which does not exist in definition %q", action.ID, action.ToState, def.ID)
	}

	if !target.Enabled {
		return nil, domain.Validationf("target state %q is disabled", target.ID)
	}

	next := inst.Clone()
	next.History = append(next.History, domain.HistoryEntry{
		ActionID:  action.ID,
		FromState: current.ID,
		ToState:   target.ID,
		At:        now,
	})
	next.CurrentState = target.ID
	next.UpdatedAt = now
	return next, nil
}
