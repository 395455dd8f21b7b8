package unitgrid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/aretw0/unitgrid/pkg/ports"
	"github.com/aretw0/unitgrid/pkg/project"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/google/uuid"
)

// Service is the server-side entry point: it creates, reads and mutates project
// documents and broadcasts every committed grid change.
type Service struct {
	projects  *project.Manager
	publisher ports.Publisher
	locker    ports.DistributedLocker
	schema    func() schema.Schema
	newID     func() string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithPublisher sets where update messages go (a broadcast.Hub or a Redis bus).
func WithPublisher(p ports.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLocker enables distributed locking of project writes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDefaultSchema sets the schema new projects start with.
func WithDefaultSchema(fn func() schema.Schema) Option {
	return func(s *Service) {
		s.schema = fn
	}
}

// WithIDGenerator overrides project ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService wires a Service over store.
func NewService(store ports.ProjectStore, opts ...Option) *Service {
	s := &Service{
		schema: schema.DefaultConveyorSchema,
		newID:  uuid.NewString,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mgrOpts := []project.Option{project.WithLogger(s.logger)}
	if s.locker != nil {
		mgrOpts = append(mgrOpts, project.WithLocker(s.locker))
	}
	s.projects = project.NewManager(store, mgrOpts...)
	return s
}

// Create starts an active project for companyID with the default schema and one empty row.
func (s *Service) Create(ctx context.Context, name, companyID string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || companyID == "" {
		return nil, fmt.Errorf("name and company are required: %w", domain.ErrInvalidProject)
	}

	p := domain.NewProject(s.newID(), name, companyID, s.schema())
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project created", "project_id", p.ID, "company", companyID)
	s.fireUpdate(ctx, domain.EventCreated, p, nil, nil)
	return p, nil
}

// Get returns the project with id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.Load(ctx, id)
}

// ListByCompany returns the company's projects, leaving out archived ones.
func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	all, err := s.projects.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %w", domain.ErrPersistence, err)
	}
	out := make([]*domain.Project, 0, len(all))
	for _, p := range all {
		if p.Status != domain.StatusArchived {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateInput carries the optional parts of an input-data write.
// A nil field leaves the stored value untouched. InputData always encodes so an
// empty grid reaches the server as [] and is rejected.
type UpdateInput struct {
	InputData       domain.Grid   `json:"inputData"`
	InputDataConfig schema.Schema `json:"inputDataConfig,omitempty"`
}

// UpdateInputData replaces the provided parts of the project, recomputes the grid so
// disabled cells are stored empty, saves the whole document and broadcasts it.
// Concurrent writers race and the last save wins.
func (s *Service) UpdateInputData(ctx context.Context, id string, in UpdateInput) (*domain.Project, error) {
	if in.InputData != nil && len(in.InputData) == 0 {
		return nil, fmt.Errorf("input data must keep a row: %w", domain.ErrLastRow)
	}
	return s.mutate(ctx, id, domain.EventDataReplaced, func(p *domain.Project) error {
		if in.InputData != nil {
			p.InputData = in.InputData.Clone()
		}
		if in.InputDataConfig != nil {
			p.InputDataConfig = in.InputDataConfig.Clone()
		}
		return nil
	})
}

// CreateRestorePoint appends a snapshot of the current grid.
func (s *Service) CreateRestorePoint(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.Update(ctx, id, func(p *domain.Project) error {
		p.RestorePoints = append(p.RestorePoints, domain.RestorePoint{
			Data:      p.InputData.Clone(),
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Restore point created", "project_id", id, "count", len(p.RestorePoints))
	return p, nil
}

// Restore replaces the grid with restore point index and broadcasts it.
func (s *Service) Restore(ctx context.Context, id string, index int) (*domain.Project, error) {
	return s.mutate(ctx, id, domain.EventRestored, func(p *domain.Project) error {
		if index < 0 || index >= len(p.RestorePoints) {
			return fmt.Errorf("restore point %d of %d: %w", index, len(p.RestorePoints), domain.ErrRestorePointNotFound)
		}
		p.InputData = p.RestorePoints[index].Data.Clone()
		return nil
	})
}

// SetStatus changes the project's lifecycle status.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.Project, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, domain.ErrInvalidStatus)
	}
	return s.projects.Update(ctx, id, func(p *domain.Project) error {
		p.Status = status
		return nil
	})
}

// mutate runs one read-modify-write cycle: apply, recompute, save, publish.
// The publish happens under the project lock so broadcasts follow save order.
func (s *Service) mutate(ctx context.Context, id string, kind domain.EventType, apply func(*domain.Project) error) (*domain.Project, error) {
	var out *domain.Project
	err := s.projects.Mutate(ctx, id, func(ctx context.Context, p *domain.Project, save func() error) error {
		before := p.InputData.Clone()
		if err := apply(p); err != nil {
			return err
		}

		var states []grid.CellState
		p.InputData, states = grid.Recompute(p.InputDataConfig, p.InputData)
		if cleared := grid.Cleared(states); len(cleared) > 0 {
			s.logger.Debug("Disabled cells cleared", "project_id", id, "count", len(cleared))
		}

		if err := save(); err != nil {
			s.logger.Error("Project save failed", "project_id", id, "err", err)
			s.fireUpdate(ctx, kind, p, nil, err)
			return err
		}
		s.fireUpdate(ctx, kind, p, domain.Diff(before, p.InputData), nil)
		s.publish(ctx, p)
		out = p
		return nil
	})
	return out, err
}

// publish is best-effort: a failed broadcast never fails the write.
func (s *Service) publish(ctx context.Context, p *domain.Project) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.NewUpdateMessage(p)); err != nil {
		s.logger.Warn("Broadcast failed", "project_id", p.ID, "err", err)
	}
}

func (s *Service) fireUpdate(ctx context.Context, kind domain.EventType, p *domain.Project, diff *domain.GridDiff, err error) {
	if s.hooks.OnUpdate == nil {
		return
	}
	s.hooks.OnUpdate(ctx, &domain.UpdateEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      kind,
			ProjectID: p.ID,
		},
		Rows:    len(p.InputData),
		Columns: len(p.InputDataConfig),
		Diff:    diff,
		Err:     err,
	})
}
