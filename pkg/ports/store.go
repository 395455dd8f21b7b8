package ports

import (
	"context"

	"github.com/aretw0/unitgrid/pkg/domain"
)

// ProjectStore persists project documents.
// Every write replaces the whole document: the last write wins.
type ProjectStore interface {
	// Save persists the project under project.ID.
	// Returns domain.ErrInvalidProject if the ID is empty.
	Save(ctx context.Context, project *domain.Project) error

	// Load retrieves a project by ID.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Load(ctx context.Context, id string) (*domain.Project, error)

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored projects.
	List(ctx context.Context) ([]string, error)

	// ListByCompany returns every project owned by companyID, whatever its status.
	ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error)
}
