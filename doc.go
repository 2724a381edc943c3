/*
Package stateline is a finite-state workflow service: clients define workflows
(states plus guarded transitions), run instances of them, and get a full,
append-only transition history.

The Service orchestrates the definition validator, the transition
engine, and a pluggable store per request. The validator and engine are pure
computations over already-fetched data; the store is the single shared
mutable resource and every save is atomic per entity ID.

	store := memory.NewStore()
	svc := stateline.New(store)

	def, _ := svc.CreateDefinition(ctx, domain.DefinitionInput{
		Name: "ticket",
		States: []domain.StateInput{
			{ID: "open", IsInitial: true},
			{ID: "closed", IsFinal: true},
		},
		Actions: []domain.ActionInput{
			{ID: "close", FromStates: []string{"open"}, ToState: "closed"},
		},
	})
	inst, _ := svc.CreateInstance(ctx, def.ID)
	inst, _ = svc.ExecuteAction(ctx, inst.ID, "close")
*/
package stateline
