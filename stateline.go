package stateline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stateline-dev/stateline/internal/logging"
	"github.com/stateline-dev/stateline/internal/runtime"
	"github.com/stateline-dev/stateline/internal/validator"
	"github.com/stateline-dev/stateline/pkg/domain"
	"github.com/stateline-dev/stateline/pkg/instances"
	"github.com/stateline-dev/stateline/pkg/ports"
)

// Version of the stateline module.
const Version = "0.3.0"

// Service is the high-level entry point for the Stateline library.
// It orchestrates the definition validator, the transition engine, and the
// store per request.
type Service struct {
	store   ports.Store
	engine  *runtime.Engine
	manager *instances.Manager
	locker  ports.DistributedLocker
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides ID generation. Intended for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithLocker enables distributed locking so multiple replicas can serialize
// execution on the same instance.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// New creates a Service backed by the given store.
func New(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		engine: runtime.NewEngine(),
		logger: logging.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	managerOpts := []instances.Option{instances.WithLogger(s.logger)}
	if s.locker != nil {
		managerOpts = append(managerOpts, instances.WithLocker(s.locker))
	}
	s.manager = instances.NewManager(managerOpts...)
	return s
}

// CreateDefinition validates the candidate, stamps a fresh ID and creation
// timestamp, and persists it. Rejections are ValidationErrors naming the
// offending entity.
func (s *Service) CreateDefinition(ctx context.Context, input domain.DefinitionInput) (*domain.Definition, error) {
	def, err := validator.Validate(input)
	if err != nil {
		s.logger.Debug("definition rejected", "name", input.Name, "err", err)
		return nil, err
	}

	def.ID = s.newID()
	def.CreatedAt = s.now()

	if err := s.store.SaveDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to persist definition: %w", err)
	}

	s.logger.Info("definition created", "definition_id", def.ID, "name", def.Name)
	if s.hooks.OnDefinitionCreated != nil {
		s.hooks.OnDefinitionCreated(ctx, &domain.DefinitionEvent{
			Type:         domain.EventDefinitionCreated,
			DefinitionID: def.ID,
			Timestamp:    def.CreatedAt,
		})
	}
	return def, nil
}

// GetDefinition retrieves a definition by ID.
func (s *Service) GetDefinition(ctx context.Context, id string) (*domain.Definition, error) {
	return s.store.GetDefinition(ctx, id)
}

// ListDefinitions returns all stored definitions.
func (s *Service) ListDefinitions(ctx context.Context) ([]*domain.Definition, error) {
	return s.store.ListDefinitions(ctx)
}

// CreateInstance creates a new instance of the given definition, positioned
// at its initial state with empty history.
func (s *Service) CreateInstance(ctx context.Context, definitionID string) (*domain.Instance, error) {
	def, err := s.store.GetDefinition(ctx, definitionID)
	if err != nil {
		if err == domain.ErrDefinitionNotFound {
			return nil, domain.Validationf("definition %q not found", definitionID)
		}
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}

	// Defensive: the validator guarantees exactly one initial state on every
	// accepted definition.
	initial, ok := def.InitialState()
	if !ok {
		return nil, domain.Validationf("definition %q has no initial state", definitionID)
	}

	inst := domain.NewInstance(s.newID(), def.ID, initial.ID, s.now())
	if err := s.store.SaveInstance(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to persist instance: %w", err)
	}

	s.logger.Info("instance created",
		"instance_id", inst.ID,
		"definition_id", def.ID,
		"state", inst.CurrentState,
	)
	if s.hooks.OnInstanceCreated != nil {
		s.hooks.OnInstanceCreated(ctx, &domain.InstanceEvent{
			Type:         domain.EventInstanceCreated,
			InstanceID:   inst.ID,
			DefinitionID: def.ID,
			Timestamp:    inst.CreatedAt,
		})
	}
	return inst, nil
}

// GetInstance retrieves an instance by ID.
func (s *Service) GetInstance(ctx context.Context, id string) (*domain.Instance, error) {
	return s.store.GetInstance(ctx, id)
}

// ListInstances returns all stored instances.
func (s *Service) ListInstances(ctx context.Context) ([]*domain.Instance, error) {
	return s.store.ListInstances(ctx)
}

// ExecuteAction runs the requested action against the instance. Execution is
// serialized per instance ID so concurrent calls never drop history entries.
// Every rejection leaves the stored instance unchanged.
func (s *Service) ExecuteAction(ctx context.Context, instanceID, actionID string) (*domain.Instance, error) {
	var updated *domain.Instance

	err := s.manager.WithLock(ctx, instanceID, func(ctx context.Context) error {
		inst, err := s.store.GetInstance(ctx, instanceID)
		if err != nil {
			if err == domain.ErrInstanceNotFound {
				return domain.Validationf("instance %q not found", instanceID)
			}
			return fmt.Errorf("failed to load instance: %w", err)
		}

		def, err := s.store.GetDefinition(ctx, inst.DefinitionID)
		if err != nil {
			if err == domain.ErrDefinitionNotFound {
				// The definition vanished underneath a live instance: a
				// store/invariant violation, not a user error.
				return domain.Faultf("instance %q references missing definition %q", inst.ID, inst.DefinitionID)
			}
			return fmt.Errorf("failed to load definition: %w", err)
		}

		next, err := s.engine.Execute(inst, def, actionID, s.now())
		if err != nil {
			return err
		}

		if err := s.store.SaveInstance(ctx, next); err != nil {
			return fmt.Errorf("failed to persist instance: %w", err)
		}
		updated = next
		return nil
	})

	if err != nil {
		s.logger.Debug("action rejected",
			"instance_id", instanceID,
			"action_id", actionID,
			"err", err,
		)
		if s.hooks.OnRejection != nil {
			s.hooks.OnRejection(ctx, &domain.TransitionEvent{
				Type:       domain.EventRejection,
				InstanceID: instanceID,
				ActionID:   actionID,
				Reason:     err.Error(),
				Timestamp:  s.now(),
			})
		}
		return nil, err
	}

	last := updated.History[len(updated.History)-1]
	s.logger.Info("action executed",
		"instance_id", updated.ID,
		"action_id", actionID,
		"from", last.FromState,
		"to", last.ToState,
	)
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Type:       domain.EventTransition,
			InstanceID: updated.ID,
			ActionID:   actionID,
			FromState:  last.FromState,
			ToState:    last.ToState,
			Timestamp:  last.At,
		})
	}
	return updated, nil
}
