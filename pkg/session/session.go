package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/aretw0/unitgrid/pkg/schema"
)

// ErrNoProject is returned by editing operations before Open.
var ErrNoProject = errors.New("no project open")

// Backend loads and saves project documents.
type Backend interface {
	Get(ctx context.Context, id string) (*domain.Project, error)
	UpdateInputData(ctx context.Context, id string, in unitgrid.UpdateInput) (*domain.Project, error)
}

// RowAction is a row context-menu action.
type RowAction string

const (
	ActionInsert RowAction = "insert"
	ActionDelete RowAction = "delete"
)

// Session is safe for concurrent use; all operations are serialized.
type Session struct {
	mu        sync.Mutex
	backend   Backend
	projectID string
	engine    *grid.Engine
	pending   *grid.Change
	render    func(grid.Change)
	logger    *slog.Logger
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRenderer registers a callback for every state change, remote updates included.
// It runs with the session lock held and must not call back into the Session.
func WithRenderer(fn func(grid.Change)) Option {
	return func(s *Session) {
		s.render = fn
	}
}

// New creates a Session with no active project.
func New(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = grid.New(schema.Schema{}, nil)
	s.engine.OnChange(s.onChange)
	return s
}

func (s *Session) onChange(c grid.Change) {
	if c.Kind != domain.EventRemoteUpdate {
		s.pending = &c
	}
	if s.render != nil {
		s.render(c)
	}
}

// Open makes id the active project. Undo and redo history is cleared.
func (s *Session) Open(ctx context.Context, id string) error {
	p, err := s.backend.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("open project %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = p.ID
	s.engine.Reset(schemaOrDefault(p.InputDataConfig), p.InputData)
	s.pending = nil
	s.logger.Info("Project opened", "project_id", p.ID, "rows", s.engine.Len())
	return nil
}

// ProjectID returns the active project, or "".
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Schema returns the active schema.
func (s *Session) Schema() schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Schema()
}

// Rows returns a copy of the local grid.
func (s *Session) Rows() domain.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Rows()
}

// VisibleCells returns the per-cell view for rendering.
func (s *Session) VisibleCells() [][]grid.CellView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// CanUndo reports whether Undo has a snapshot to restore.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CanUndo()
}

// CanRedo reports whether Redo has a snapshot to restore.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CanRedo()
}

// OnCellEdited writes value into a cell as one undoable edit and saves the grid.
// A save failure leaves the local edit in place and is returned.
func (s *Session) OnCellEdited(ctx context.Context, row, col int, value string) error {
	return s.run(ctx, func(e *grid.Engine) error {
		return e.EditCell(row, col, value)
	})
}

// OnRowContextAction inserts a row above row or deletes it, then saves.
func (s *Session) OnRowContextAction(ctx context.Context, row int, action RowAction) error {
	return s.run(ctx, func(e *grid.Engine) error {
		switch action {
		case ActionInsert:
			return e.InsertRow(row)
		case ActionDelete:
			return e.DeleteRow(row)
		}
		return fmt.Errorf("unknown row action %q", action)
	})
}

// AppendRow adds an empty row at the end and saves.
func (s *Session) AppendRow(ctx context.Context) error {
	return s.run(ctx, func(e *grid.Engine) error { return e.AppendRow() })
}

// SortByFlow reorders rows along their next pointers and saves.
// Rows the sort cannot place are returned.
func (s *Session) SortByFlow(ctx context.Context) ([]domain.Row, error) {
	var dropped []domain.Row
	err := s.run(ctx, func(e *grid.Engine) error {
		var err error
		dropped, err = e.SortByFlow()
		return err
	})
	return dropped, err
}

// ApplySchema switches the column schema and saves both schema and grid.
func (s *Session) ApplySchema(ctx context.Context, sc schema.Schema) error {
	return s.run(ctx, func(e *grid.Engine) error {
		e.ApplySchema(sc)
		return nil
	})
}

// Undo restores the previous snapshot and saves. It reports false when there is none.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	var ok bool
	err := s.run(ctx, func(e *grid.Engine) error {
		ok = e.Undo()
		return nil
	})
	return ok, err
}

// Redo re-applies the last undone snapshot and saves.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	var ok bool
	err := s.run(ctx, func(e *grid.Engine) error {
		ok = e.Redo()
		return nil
	})
	return ok, err
}

// Reconcile folds an incoming update into the session. It returns true when the
// local grid was replaced. Updates for other projects, or carrying the grid the
// session already has, are ignored. Remote updates are never saved back.
func (s *Session) Reconcile(msg domain.UpdateMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" || msg.ProjectID != s.projectID {
		return false
	}
	if s.engine.Rows().Equal(msg.InputData) {
		return false
	}
	s.engine.Replace(schemaOrDefault(msg.InputDataConfig), msg.InputData)
	s.logger.Debug("Remote update applied", "project_id", msg.ProjectID, "rows", len(msg.InputData))
	return true
}

// run applies op and saves whatever it committed.
func (s *Session) run(ctx context.Context, op func(*grid.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoProject
	}
	s.pending = nil
	if err := op(s.engine); err != nil {
		return err
	}
	if s.pending == nil {
		return nil
	}
	change := s.pending
	s.pending = nil
	return s.save(ctx, change)
}

func (s *Session) save(ctx context.Context, c *grid.Change) error {
	in := unitgrid.UpdateInput{InputData: c.Rows}
	if c.Kind == domain.EventSchemaApplied {
		in.InputDataConfig = c.Schema
	}
	if _, err := s.backend.UpdateInputData(ctx, s.projectID, in); err != nil {
		s.logger.Error("Save failed", "project_id", s.projectID, "change", c.Kind, "err", err)
		return fmt.Errorf("save %s: %w", c.Kind, err)
	}
	return nil
}

func schemaOrDefault(s schema.Schema) schema.Schema {
	if len(s) == 0 {
		return schema.DefaultConveyorSchema()
	}
	return s
}
