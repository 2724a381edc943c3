package runtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateline-dev/stateline/internal/runtime"
	"github.com/stateline-dev/stateline/pkg/domain"
)

// threeStateDef builds the reference graph: A(initial) -> B -> C(final).
func threeStateDef() *domain.Definition {
	return &domain.Definition{
		ID:   "def-1",
		Name: "pipeline",
		States: []domain.State{
			{ID: "A", Name: "Start", IsInitial: true, Enabled: true},
			{ID: "B", Name: "Middle", Enabled: true},
			{ID: "C", Name: "End", IsFinal: true, Enabled: true},
		},
		Actions: []domain.Action{
			{ID: "go_ab", Enabled: true, FromStates: []string{"A"}, ToState: "B"},
			{ID: "finish", Enabled: true, FromStates: []string{"B"}, ToState: "C"},
		},
	}
}

func newInstanceAt(state string) *domain.Instance {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return domain.NewInstance("inst-1", "def-1", state, now)
}

func TestEngine_Execute_FullScenario(t *testing.T) {
	engine := runtime.NewEngine()
	def := threeStateDef()
	now := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)

	inst := newInstanceAt("A")

	// A --go_ab--> B
	inst, err := engine.Execute(inst, def, "go_ab", now)
	require.NoError(t, err)
	assert.Equal(t, "B", inst.CurrentState)
	require.Len(t, inst.History, 1)
	assert.Equal(t, domain.HistoryEntry{ActionID: "go_ab", FromState: "A", ToState: "B", At: now}, inst.History[0])
	assert.Equal(t, now, inst.UpdatedAt)

	// B --finish--> C
	later := now.Add(time.Minute)
	inst, err = engine.Execute(inst, def, "finish", later)
	require.NoError(t, err)
	assert.Equal(t, "C", inst.CurrentState)
	require.Len(t, inst.History, 2)
	assert.Equal(t, "finish", inst.History[1].ActionID)

	// C is final: everything rejects, including previously legal actions.
	for _, actionID := range []string{"go_ab", "finish", "anything"} {
		_, err := engine.Execute(inst, def, actionID, later)
		require.Error(t, err, "action %s must reject from final state", actionID)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), "final state")
	}
}

func TestEngine_Execute_DoesNotMutateInput(t *testing.T) {
	engine := runtime.NewEngine()
	def := threeStateDef()
	inst := newInstanceAt("A")

	updated, err := engine.Execute(inst, def, "go_ab", time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, "A", inst.CurrentState, "input instance must stay untouched")
	assert.Empty(t, inst.History)
	assert.Equal(t, "B", updated.CurrentState)
}

func TestEngine_Execute_Deterministic(t *testing.T) {
	engine := runtime.NewEngine()
	def := threeStateDef()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Two identically positioned instances transition identically.
	a := newInstanceAt("A")
	b := newInstanceAt("A")
	b.ID = "inst-2"

	ra, err := engine.Execute(a, def, "go_ab", now)
	require.NoError(t, err)
	rb, err := engine.Execute(b, def, "go_ab", now)
	require.NoError(t, err)

	assert.Equal(t, ra.CurrentState, rb.CurrentState)
	assert.Equal(t, ra.History, rb.History)
}

func TestEngine_Execute_Rejections(t *testing.T) {
	engine := runtime.NewEngine()
	now := time.Now().UTC()

	t.Run("unknown action", func(t *testing.T) {
		_, err := engine.Execute(newInstanceAt("A"), threeStateDef(), "teleport", now)
		require.Error(t, err)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), `unknown action "teleport"`)
	})

	t.Run("disabled action", func(t *testing.T) {
		def := threeStateDef()
		def.Actions[0].Enabled = false
		_, err := engine.Execute(newInstanceAt("A"), def, "go_ab", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disabled")
	})

	t.Run("action not applicable from current state", func(t *testing.T) {
		// finish fires from B, the instance sits at A.
		_, err := engine.Execute(newInstanceAt("A"), threeStateDef(), "finish", now)
		require.Error(t, err)
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), `not applicable from state "A"`)
	})

	t.Run("disabled target state", func(t *testing.T) {
		def := threeStateDef()
		def.States[1].Enabled = false
		_, err := engine.Execute(newInstanceAt("A"), def, "go_ab", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `target state "B" is disabled`)
	})
}

func TestEngine_Execute_ConsistencyFaults(t *testing.T) {
	engine := runtime.NewEngine()
	now := time.Now().UTC()

	t.Run("missing definition", func(t *testing.T) {
		_, err := engine.Execute(newInstanceAt("A"), nil, "go_ab", now)
		require.Error(t, err)
		var cf *domain.ConsistencyFault
		assert.ErrorAs(t, err, &cf)
	})

	t.Run("current state not in definition", func(t *testing.T) {
		_, err := engine.Execute(newInstanceAt("ghost"), threeStateDef(), "go_ab", now)
		require.Error(t, err)
		var cf *domain.ConsistencyFault
		assert.ErrorAs(t, err, &cf)
		assert.Contains(t, err.Error(), `"ghost"`)
	})

	t.Run("dangling action target", func(t *testing.T) {
		// Unreachable after validator acceptance; the engine still guards it.
		def := threeStateDef()
		def.Actions[0].ToState = "Z"
		_, err := engine.Execute(newInstanceAt("A"), def, "go_ab", now)
		require.Error(t, err)
		var cf *domain.ConsistencyFault
		assert.ErrorAs(t, err, &cf)
	})
}

// Check ordering: a final-state instance with an unknown action reports the
// final-state rejection, not the unknown action.
func TestEngine_Execute_CheckOrder(t *testing.T) {
	engine := runtime.NewEngine()
	_, err := engine.Execute(newInstanceAt("C"), threeStateDef(), "teleport", time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final state")
}
