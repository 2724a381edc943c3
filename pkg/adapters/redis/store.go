package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/stateline-dev/stateline/pkg/domain"
)

// Store implements ports.Store using Redis. Each entity is stored as a JSON
// blob under a prefixed key, plus a ZSET index per entity kind for listing.
// A single SET per entity keeps saves atomic with respect to readers.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored entities.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for all entities.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "stateline:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) defKey(id string) string {
	return s.prefix + "definition:" + id
}

func (s *Store) instKey(id string) string {
	return s.prefix + "instance:" + id
}

func (s *Store) defIndexKey() string {
	return s.prefix + "definitions:index"
}

func (s *Store) instIndexKey() string {
	return s.prefix + "instances:index"
}

// SaveDefinition persists the definition to Redis.
func (s *Store) SaveDefinition(ctx context.Context, def *domain.Definition) error {
	return s.save(ctx, s.defKey(def.ID), s.defIndexKey(), def.ID, def)
}

// GetDefinition retrieves the definition from Redis.
func (s *Store) GetDefinition(ctx context.Context, id string) (*domain.Definition, error) {
	var def domain.Definition
	if err := s.load(ctx, s.defKey(id), &def, domain.ErrDefinitionNotFound); err != nil {
		return nil, err
	}
	return &def, nil
}

// ListDefinitions returns all definitions referenced by the index.
func (s *Store) ListDefinitions(ctx context.Context) ([]*domain.Definition, error) {
	ids, err := s.listIndex(ctx, s.defIndexKey())
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Definition, 0, len(ids))
	for _, id := range ids {
		def, err := s.GetDefinition(ctx, id)
		if err == domain.ErrDefinitionNotFound {
			continue // Expired between index read and fetch
		}
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// SaveInstance persists the instance to Redis.
func (s *Store) SaveInstance(ctx context.Context, inst *domain.Instance) error {
	return s.save(ctx, s.instKey(inst.ID), s.instIndexKey(), inst.ID, inst)
}

// GetInstance retrieves the instance from Redis.
func (s *Store) GetInstance(ctx context.Context, id string) (*domain.Instance, error) {
	var inst domain.Instance
	if err := s.load(ctx, s.instKey(id), &inst, domain.ErrInstanceNotFound); err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListInstances returns all instances referenced by the index.
func (s *Store) ListInstances(ctx context.Context) ([]*domain.Instance, error) {
	ids, err := s.listIndex(ctx, s.instIndexKey())
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Instance, 0, len(ids))
	for _, id := range ids {
		inst, err := s.GetInstance(ctx, id)
		if err == domain.ErrInstanceNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, key, indexKey, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	pipe := s.client.Pipeline()

	// 1. Save JSON with TTL (0 = no expiration)
	pipe.Set(ctx, key, data, s.ttl)

	// 2. Add to Index (ZSET). Score = Now + TTL; no TTL gets a far-future score.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, indexKey, backend.Z{
		Score:  score,
		Member: id,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string, dst any, notFound error) error {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == backend.Nil {
			return notFound
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// listIndex prunes expired members lazily and returns the remaining IDs.
func (s *Store) listIndex(ctx context.Context, indexKey string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, indexKey, "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list index: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
