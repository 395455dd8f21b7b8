// Package gormstore persists project documents in a SQL database through gorm.
//
// The whole document is kept as a JSON column; company, name and status are copied
// into indexed columns for listing.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/unitgrid/pkg/domain"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type projectRecord struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Company   string         `gorm:"index;size:128"`
	Name      string         `gorm:"size:256"`
	Status    string         `gorm:"index;size:32"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (projectRecord) TableName() string { return "projects" }

// Open connects to driver ("sqlite" or "postgres") at dsn and routes gorm's own
// warnings through logger.
func Open(driver, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	cfg := &gorm.Config{Logger: gormLogger.Discard}
	if logger != nil {
		cfg.Logger = gormLogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// Store implements ports.ProjectStore on a gorm database.
type Store struct {
	db *gorm.DB
}

// New wraps db and migrates the projects table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&projectRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate projects table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the document. Concurrent saves race; the last one wins.
func (s *Store) Save(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidProject
	}
	doc := project.Clone()
	doc.Normalize()
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	rec := projectRecord{
		ID:        doc.ID,
		Company:   doc.Company,
		Name:      doc.Name,
		Status:    string(doc.Status),
		Document:  datatypes.JSON(raw),
		UpdatedAt: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Load fetches a project by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Project, error) {
	var rec projectRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return rec.project()
}

func (r projectRecord) project() (*domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(r.Document, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project %s: %w", r.ID, err)
	}
	p.Normalize()
	return &p, nil
}

// Delete removes the row for id.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&projectRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List returns all project IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&projectRecord{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return ids, nil
}

// ListByCompany returns the company's projects ordered by ID.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	var recs []projectRecord
	err := s.db.WithContext(ctx).Where("company = ?", companyID).Order("id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list company projects: %w", err)
	}

	out := make([]*domain.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.project()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
