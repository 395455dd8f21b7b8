package ports_test

import (
	"context"
	"sync"

	"github.com/aretw0/unitgrid/pkg/domain"
)

// MockStore is a minimal map-backed ProjectStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]*domain.Project
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.Project)}
}

func (m *MockStore) Save(_ context.Context, p *domain.Project) error {
	if p.ID == "" {
		return domain.ErrInvalidProject
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[p.ID] = p.Clone()
	return nil
}

func (m *MockStore) Load(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return p.Clone(), nil
}

func (m *MockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockStore) ListByCompany(_ context.Context, companyID string) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Project
	for _, p := range m.data {
		if p.Company == companyID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}
