package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateline-dev/stateline/internal/validator"
	"github.com/stateline-dev/stateline/pkg/domain"
)

func boolPtr(v bool) *bool { return &v }

// ticketInput returns a minimal valid definition to mutate per test case.
func ticketInput() domain.DefinitionInput {
	return domain.DefinitionInput{
		Name: "ticket",
		States: []domain.StateInput{
			{ID: "open", Name: "Open", IsInitial: true},
			{ID: "closed", Name: "Closed", IsFinal: true},
		},
		Actions: []domain.ActionInput{
			{ID: "close", Name: "Close", FromStates: []string{"open"}, ToState: "closed"},
		},
	}
}

func TestValidate_AcceptsWellFormedDefinition(t *testing.T) {
	def, err := validator.Validate(ticketInput())
	require.NoError(t, err)

	assert.Equal(t, "ticket", def.Name)
	require.Len(t, def.States, 2)
	require.Len(t, def.Actions, 1)

	// Enabled defaults to true when omitted.
	assert.True(t, def.States[0].Enabled)
	assert.True(t, def.Actions[0].Enabled)

	initial, ok := def.InitialState()
	require.True(t, ok)
	assert.Equal(t, "open", initial.ID)
}

func TestValidate_RespectsExplicitDisabled(t *testing.T) {
	input := ticketInput()
	input.States[1].Enabled = boolPtr(false)
	input.Actions[0].Enabled = boolPtr(false)

	def, err := validator.Validate(input)
	require.NoError(t, err)
	assert.False(t, def.States[1].Enabled)
	assert.False(t, def.Actions[0].Enabled)
}

func TestValidate_NilActionsDefaultsToEmpty(t *testing.T) {
	input := ticketInput()
	input.Actions = nil
	// A workflow with no transitions is intentional, not a bug.
	input.States = []domain.StateInput{{ID: "done", IsInitial: true, IsFinal: true}}

	def, err := validator.Validate(input)
	require.NoError(t, err)
	assert.NotNil(t, def.Actions)
	assert.Empty(t, def.Actions)
}

func TestValidate_TrimsName(t *testing.T) {
	input := ticketInput()
	input.Name = "  ticket  "

	def, err := validator.Validate(input)
	require.NoError(t, err)
	assert.Equal(t, "ticket", def.Name)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.DefinitionInput)
		wantMsg string
	}{
		{
			name:    "blank name",
			mutate:  func(in *domain.DefinitionInput) { in.Name = "   " },
			wantMsg: "name must not be empty",
		},
		{
			name:    "zero states",
			mutate:  func(in *domain.DefinitionInput) { in.States = nil },
			wantMsg: "at least one state",
		},
		{
			name: "duplicate state id",
			mutate: func(in *domain.DefinitionInput) {
				in.States = append(in.States, domain.StateInput{ID: "open"})
			},
			wantMsg: `duplicate state id "open"`,
		},
		{
			name: "duplicate action id",
			mutate: func(in *domain.DefinitionInput) {
				in.Actions = append(in.Actions, domain.ActionInput{ID: "close", FromStates: []string{"open"}, ToState: "closed"})
			},
			wantMsg: `duplicate action id "close"`,
		},
		{
			name: "no initial state",
			mutate: func(in *domain.DefinitionInput) {
				in.States[0].IsInitial = false
			},
			wantMsg: "exactly one initial state, found 0",
		},
		{
			name: "two initial states",
			mutate: func(in *domain.DefinitionInput) {
				in.States[1].IsInitial = true
			},
			wantMsg: "exactly one initial state, found 2",
		},
		{
			name: "empty state id",
			mutate: func(in *domain.DefinitionInput) {
				in.States = append(in.States, domain.StateInput{ID: "", Name: "Ghost"})
			},
			wantMsg: `state "Ghost" has an empty id`,
		},
		{
			name: "empty action id",
			mutate: func(in *domain.DefinitionInput) {
				in.Actions = append(in.Actions, domain.ActionInput{ID: "", Name: "Ghost", FromStates: []string{"open"}, ToState: "closed"})
			},
			wantMsg: `action "Ghost" has an empty id`,
		},
		{
			name: "unknown target state",
			mutate: func(in *domain.DefinitionInput) {
				in.Actions[0].ToState = "Z"
			},
			wantMsg: `action "close" targets unknown state "Z"`,
		},
		{
			name: "unknown source state",
			mutate: func(in *domain.DefinitionInput) {
				in.Actions[0].FromStates = []string{"open", "limbo"}
			},
			wantMsg: `action "close" references unknown source state "limbo"`,
		},
		{
			name: "empty from states",
			mutate: func(in *domain.DefinitionInput) {
				in.Actions[0].FromStates = nil
			},
			wantMsg: `action "close" must declare at least one source state`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := ticketInput()
			tt.mutate(&input)

			_, err := validator.Validate(input)
			require.Error(t, err)

			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

// Check order matters for deterministic error reporting: a definition that
// violates several rules reports the earliest one in the fixed order.
func TestValidate_FirstFailureWins(t *testing.T) {
	input := ticketInput()
	input.States[0].IsInitial = false    // rule: exactly one initial
	input.Actions[0].ToState = "nowhere" // rule: target must exist

	_, err := validator.Validate(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one initial state")
}
