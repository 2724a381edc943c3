package memory

import (
	"context"
	"sync"

	"github.com/stateline-dev/stateline/pkg/domain"
)

// Store implements ports.Store in memory.
// Safe for concurrent use; each save is atomic with respect to readers.
type Store struct {
	mu          sync.RWMutex
	definitions map[string]*domain.Definition
	defOrder    []string // insertion order for listing
	instances   map[string]*domain.Instance
	instOrder   []string
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		definitions: make(map[string]*domain.Definition),
		instances:   make(map[string]*domain.Instance),
	}
}

// SaveDefinition persists a deep copy of the definition.
func (s *Store) SaveDefinition(ctx context.Context, def *domain.Definition) error {
	copied := cloneDefinition(def)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.definitions[def.ID]; !exists {
		s.defOrder = append(s.defOrder, def.ID)
	}
	s.definitions[def.ID] = copied
	return nil
}

// GetDefinition retrieves a definition by ID.
func (s *Store) GetDefinition(ctx context.Context, id string) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.definitions[id]
	if !ok {
		return nil, domain.ErrDefinitionNotFound
	}
	return cloneDefinition(def), nil
}

// ListDefinitions returns all definitions in insertion order.
func (s *Store) ListDefinitions(ctx context.Context) ([]*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Definition, 0, len(s.defOrder))
	for _, id := range s.defOrder {
		out = append(out, cloneDefinition(s.definitions[id]))
	}
	return out, nil
}

// SaveInstance persists a deep copy of the instance.
func (s *Store) SaveInstance(ctx context.Context, inst *domain.Instance) error {
	copied := inst.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.instances[inst.ID]; !exists {
		s.instOrder = append(s.instOrder, inst.ID)
	}
	s.instances[inst.ID] = copied
	return nil
}

// GetInstance retrieves an instance by ID.
func (s *Store) GetInstance(ctx context.Context, id string) (*domain.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[id]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return inst.Clone(), nil
}

// ListInstances returns all instances in insertion order.
func (s *Store) ListInstances(ctx context.Context) ([]*domain.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Instance, 0, len(s.instOrder))
	for _, id := range s.instOrder {
		out = append(out, s.instances[id].Clone())
	}
	return out, nil
}

// cloneDefinition deep-copies a definition so callers can't alias stored
// state.
func cloneDefinition(def *domain.Definition) *domain.Definition {
	copied := *def
	copied.States = make([]domain.State, len(def.States))
	copy(copied.States, def.States)
	copied.Actions = make([]domain.Action, len(def.Actions))
	for i, a := range def.Actions {
		a.FromStates = append([]string{}, a.FromStates...)
		copied.Actions[i] = a
	}
	return &copied
}
