package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stateline-dev/stateline/pkg/domain"
	"github.com/stateline-dev/stateline/pkg/ports"
)

// DefinitionStoreContract is a reusable test suite that verifies an adapter
// complies with ports.DefinitionStore.
func DefinitionStoreContract(t *testing.T, store ports.DefinitionStore) {
	t.Helper()
	ctx := context.Background()

	def := &domain.Definition{
		ID:   "def-contract",
		Name: "Contract",
		States: []domain.State{
			{ID: "open", Name: "Open", IsInitial: true, Enabled: true},
			{ID: "done", Name: "Done", IsFinal: true, Enabled: true},
		},
		Actions: []domain.Action{
			{ID: "close", Name: "Close", Enabled: true, FromStates: []string{"open"}, ToState: "done"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("GetDefinition_NotFound", func(t *testing.T) {
		if _, err := store.GetDefinition(ctx, "missing"); err != domain.ErrDefinitionNotFound {
			t.Errorf("expected ErrDefinitionNotFound, got %v", err)
		}
	})

	t.Run("SaveAndGet_RoundTrip", func(t *testing.T) {
		if err := store.SaveDefinition(ctx, def); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.GetDefinition(ctx, def.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != def.ID || got.Name != def.Name {
			t.Errorf("round-trip mismatch: got %+v", got)
		}
		if len(got.States) != 2 || len(got.Actions) != 1 {
			t.Errorf("round-trip lost entries: %d states, %d actions", len(got.States), len(got.Actions))
		}
	})

	t.Run("Save_IsUpsert", func(t *testing.T) {
		updated := *def
		updated.Name = "Contract v2"
		if err := store.SaveDefinition(ctx, &updated); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		got, err := store.GetDefinition(ctx, def.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Name != "Contract v2" {
			t.Errorf("expected upserted name, got %q", got.Name)
		}
	})

	t.Run("List_ContainsSaved", func(t *testing.T) {
		defs, err := store.ListDefinitions(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, d := range defs {
			if d.ID == def.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("definition %s missing from list", def.ID)
		}
	})
}

// InstanceStoreContract is a reusable test suite that verifies an adapter
// complies with ports.InstanceStore.
func InstanceStoreContract(t *testing.T, store ports.InstanceStore) {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	inst := domain.NewInstance("inst-contract", "def-contract", "open", now)

	t.Run("GetInstance_NotFound", func(t *testing.T) {
		if _, err := store.GetInstance(ctx, "missing"); err != domain.ErrInstanceNotFound {
			t.Errorf("expected ErrInstanceNotFound, got %v", err)
		}
	})

	t.Run("SaveAndGet_RoundTrip", func(t *testing.T) {
		if err := store.SaveInstance(ctx, inst); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.GetInstance(ctx, inst.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.CurrentState != "open" || got.DefinitionID != "def-contract" {
			t.Errorf("round-trip mismatch: %+v", got)
		}
		if got.History == nil || len(got.History) != 0 {
			t.Errorf("expected empty history, got %v", got.History)
		}
	})

	t.Run("Save_IsolatesCaller", func(t *testing.T) {
		// Mutating the caller's copy after save must not leak into the store.
		mutated := inst.Clone()
		if err := store.SaveInstance(ctx, mutated); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		mutated.History = append(mutated.History, domain.HistoryEntry{ActionID: "rogue"})
		mutated.CurrentState = "corrupted"

		got, err := store.GetInstance(ctx, inst.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.CurrentState != "open" || len(got.History) != 0 {
			t.Errorf("store leaked caller mutation: %+v", got)
		}
	})

	t.Run("Save_IsUpsert", func(t *testing.T) {
		advanced := inst.Clone()
		advanced.CurrentState = "done"
		advanced.History = append(advanced.History, domain.HistoryEntry{
			ActionID: "close", FromState: "open", ToState: "done", At: now,
		})
		if err := store.SaveInstance(ctx, advanced); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		got, err := store.GetInstance(ctx, inst.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.CurrentState != "done" || len(got.History) != 1 {
			t.Errorf("expected advanced instance, got %+v", got)
		}
	})

	t.Run("List_ContainsSaved", func(t *testing.T) {
		all, err := store.ListInstances(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, i := range all {
			if i.ID == inst.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("instance %s missing from list", inst.ID)
		}
	})
}
