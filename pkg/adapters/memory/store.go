package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/unitgrid/pkg/domain"
)

// Store implements ports.ProjectStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Project
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Project),
	}
}

// Save persists a deep copy of the project.
func (s *Store) Save(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidProject
	}
	copied := project.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[project.ID] = copied
	return nil
}

// Load returns a copy so callers can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.data[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return project.Clone(), nil
}

// Delete removes the project.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored project IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListByCompany returns copies of the company's projects ordered by ID.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Project{}
	for _, p := range s.data {
		if p.Company == companyID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
