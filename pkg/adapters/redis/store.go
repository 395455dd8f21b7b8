// Package redis provides Redis-backed adapters: a project store, a distributed
// locker and a pub/sub bus that relays update messages between replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/unitgrid/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the adapters write.
const DefaultPrefix = "unitgrid:"

// Store implements ports.ProjectStore using Redis.
// Documents are JSON strings; a ZSET indexes all IDs and a SET per company indexes ownership.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for projects. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
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
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "project:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "project:index"
}

func (s *Store) companyKey(companyID string) string {
	return s.prefix + "company:" + companyID + ":projects"
}

// Save persists the project document and updates both indexes.
func (s *Store) Save(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidProject
	}
	doc := project.Clone()
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	previous, err := s.Load(ctx, project.ID)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(project.ID), data, s.ttl)

	// Score = Now + TTL. If TTL = 0, Score = far future.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: project.ID})

	if previous != nil && previous.Company != project.Company {
		pipe.SRem(ctx, s.companyKey(previous.Company), project.ID)
	}
	pipe.SAdd(ctx, s.companyKey(project.Company), project.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the project from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Project, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

func decode(val string) (*domain.Project, error) {
	var project domain.Project
	if err := json.Unmarshal([]byte(val), &project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	project.Normalize()
	return &project, nil
}

// Delete removes the project and its index entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	previous, err := s.Load(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if previous != nil {
		pipe.SRem(ctx, s.companyKey(previous.Company), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// List returns live project IDs, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired projects: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return ids, nil
}

// ListByCompany fetches the company's documents in one MGET.
// IDs whose document has expired are skipped.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	ids, err := s.client.SMembers(ctx, s.companyKey(companyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list company projects: %w", err)
	}
	out := []*domain.Project{}
	if len(ids) == 0 {
		return out, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get company projects: %w", err)
	}

	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client exposes the underlying client so the locker and bus can share a connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}
