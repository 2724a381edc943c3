// Package validator checks user-supplied workflow definitions for structural
// soundness before they are accepted and frozen.
package validator

import (
	"strings"

	"github.com/stateline-dev/stateline/pkg/domain"
)

// Validate runs the structural checks over a candidate definition, first
// failure wins. The check order is fixed so rejections are reproducible.
//
// On success it returns the sanitized definition: trimmed name, defaulted
// enabled flags, and a non-nil actions slice. ID and CreatedAt are left for
// the caller to stamp.
func Validate(input domain.DefinitionInput) (*domain.Definition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Validationf("definition name must not be empty")
	}

	if len(input.States) == 0 {
		return nil, domain.Validationf("definition %q must declare at least one state", name)
	}

	// A missing actions list is not an error; it defaults to empty. A
	// workflow may legitimately be a single final state with no transitions.
	actions := input.Actions
	if actions == nil {
		actions = []domain.ActionInput{}
	}

	seenStates := make(map[string]bool, len(input.States))
	for _, s := range input.States {
		if seenStates[s.ID] {
			return nil, domain.Validationf("duplicate state id %q", s.ID)
		}
		seenStates[s.ID] = true
	}

	seenActions := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seenActions[a.ID] {
			return nil, domain.Validationf("duplicate action id %q", a.ID)
		}
		seenActions[a.ID] = true
	}

	initialCount := 0
	for _, s := range input.States {
		if s.IsInitial {
			initialCount++
		}
	}
	if initialCount != 1 {
		return nil, domain.Validationf("definition %q must have exactly one initial state, found %d", name, initialCount)
	}

	for _, s := range input.States {
		if s.ID == "" {
			return nil, domain.Validationf("state %q has an empty id", s.Name)
		}
	}

	for _, a := range actions {
		if a.ID == "" {
			return nil, domain.Validationf("action %q has an empty id", a.Name)
		}
	}

	for _, a := range actions {
		if !seenStates[a.ToState] {
			return nil, domain.Validationf("action %q targets unknown state %q", a.ID, a.ToState)
		}
		for _, from := range a.FromStates {
			if !seenStates[from] {
				return nil, domain.Validationf("action %q references unknown source state %q", a.ID, from)
			}
		}
		if len(a.FromStates) == 0 {
			return nil, domain.Validationf("action %q must declare at least one source state", a.ID)
		}
	}

	def := &domain.Definition{
		Name:        name,
		States:      make([]domain.State, len(input.States)),
		Actions:     make([]domain.Action, len(actions)),
		Description: input.Description,
	}
	for i, s := range input.States {
		def.States[i] = domain.State{
			ID:          s.ID,
			Name:        s.Name,
			IsInitial:   s.IsInitial,
			IsFinal:     s.IsFinal,
			Enabled:     enabled(s.Enabled),
			Description: s.Description,
		}
	}
	for i, a := range actions {
		def.Actions[i] = domain.Action{
			ID:          a.ID,
			Name:        a.Name,
			Enabled:     enabled(a.Enabled),
			FromStates:  append([]string{}, a.FromStates...),
			ToState:     a.ToState,
			Description: a.Description,
		}
	}
	return def, nil
}

// enabled applies the default-true semantics for omitted flags.
func enabled(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}
