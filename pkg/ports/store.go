package ports

import (
	"context"

	"github.com/stateline-dev/stateline/pkg/domain"
)

// DefinitionStore persists workflow definitions.
// Saves are upserts keyed by definition ID and must be atomic per key:
// a concurrent reader never observes a partially written definition.
type DefinitionStore interface {
	// SaveDefinition persists the definition, replacing any previous value
	// under the same ID.
	SaveDefinition(ctx context.Context, def *domain.Definition) error

	// GetDefinition retrieves a definition by ID.
	// Returns domain.ErrDefinitionNotFound if absent.
	GetDefinition(ctx context.Context, id string) (*domain.Definition, error)

	// ListDefinitions returns all stored definitions. Order is unspecified;
	// insertion order is acceptable.
	ListDefinitions(ctx context.Context) ([]*domain.Definition, error)
}

// InstanceStore persists workflow instances with the same per-key atomicity
// guarantee as DefinitionStore.
type InstanceStore interface {
	// SaveInstance persists the instance, replacing any previous value under
	// the same ID.
	SaveInstance(ctx context.Context, inst *domain.Instance) error

	// GetInstance retrieves an instance by ID.
	// Returns domain.ErrInstanceNotFound if absent.
	GetInstance(ctx context.Context, id string) (*domain.Instance, error)

	// ListInstances returns all stored instances.
	ListInstances(ctx context.Context) ([]*domain.Instance, error)
}

// Store combines both entity stores. Adapters usually implement both over a
// single backend.
type Store interface {
	DefinitionStore
	InstanceStore
}
