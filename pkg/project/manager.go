package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if its owner dies.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes read-modify-write cycles on one project.
// Writes from different requests still follow last-write-wins: the lock only
// keeps a single cycle from interleaving with another.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.ProjectStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given store.
func NewManager(store ports.ProjectStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a project from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Project, error) {
	return m.store.Load(ctx, id)
}

// Create persists a new project. It fails if the ID is already taken.
func (m *Manager) Create(ctx context.Context, p *domain.Project) error {
	return m.WithLock(ctx, p.ID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, p.ID)
		if err == nil {
			return fmt.Errorf("project %s already exists: %w", p.ID, domain.ErrInvalidProject)
		}
		if !errors.Is(err, domain.ErrProjectNotFound) {
			return fmt.Errorf("%w: check project %s: %w", domain.ErrPersistence, p.ID, err)
		}
		return m.save(ctx, p)
	})
}

// Update loads the project, applies fn and saves the result, all under the project lock.
// Nothing is saved when fn returns an error.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.Project) error) (*domain.Project, error) {
	var out *domain.Project
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		p, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := m.save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Mutate runs fn under the project lock with the loaded project and a save function.
// It lets callers perform work after the save while still holding the lock.
func (m *Manager) Mutate(ctx context.Context, id string, fn func(ctx context.Context, p *domain.Project, save func() error) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		p, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		return fn(ctx, p, func() error { return m.save(ctx, p) })
	})
}

func (m *Manager) load(ctx context.Context, id string) (*domain.Project, error) {
	p, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load project %s: %w", domain.ErrPersistence, id, err)
	}
	return p, nil
}

func (m *Manager) save(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, p); err != nil {
		return fmt.Errorf("%w: save project %s: %w", domain.ErrPersistence, p.ID, err)
	}
	return nil
}

// Delete removes the project from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// ListByCompany delegates to the store.
func (m *Manager) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	return m.store.ListByCompany(ctx, companyID)
}

// Store returns the underlying project store.
func (m *Manager) Store() ports.ProjectStore {
	return m.store
}

// WithLock executes a function while holding the lock for the project.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"project_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
