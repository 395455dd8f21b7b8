package domain

import (
	"time"

	"github.com/aretw0/unitgrid/pkg/schema"
)

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	StatusActive    ProjectStatus = "Active"
	StatusCompleted ProjectStatus = "Completed"
	StatusArchived  ProjectStatus = "Archived" // hidden from company listings
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// RestorePoint is a retained full-grid snapshot.
type RestorePoint struct {
	Data      Grid      `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project is the persisted document the grid engine reads and writes.
// JSON field names are the wire contract shared with clients.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Company     string        `json:"company"`
	Description string        `json:"description,omitempty"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	Status      ProjectStatus `json:"status"`

	// InputDataConfig is the ordered column schema.
	InputDataConfig schema.Schema `json:"inputDataConfig"`

	// InputData is the grid.
	InputData Grid `json:"inputData"`

	// RestorePoints is append-only from the core's perspective.
	RestorePoints []RestorePoint `json:"restorePoints"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProject creates an active project with the given schema and a single empty row.
func NewProject(id, name, company string, s schema.Schema) *Project {
	return &Project{
		ID:              id,
		Name:            name,
		Company:         company,
		Status:          StatusActive,
		InputDataConfig: s,
		InputData:       NewGrid(1, s.Width()),
		RestorePoints:   []RestorePoint{},
		UpdatedAt:       time.Now().UTC(),
	}
}

// Clone deep-copies the mutable parts of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.InputDataConfig = p.InputDataConfig.Clone()
	out.InputData = p.InputData.Clone()
	out.RestorePoints = make([]RestorePoint, len(p.RestorePoints))
	for i, rp := range p.RestorePoints {
		out.RestorePoints[i] = RestorePoint{Data: rp.Data.Clone(), CreatedAt: rp.CreatedAt}
	}
	if p.StartDate != nil {
		sd := *p.StartDate
		out.StartDate = &sd
	}
	return &out
}

// Normalize fills nil collections so the document always encodes with arrays.
func (p *Project) Normalize() {
	p.InputData = p.InputData.Normalize()
	if p.InputDataConfig == nil {
		p.InputDataConfig = schema.Schema{}
	}
	if p.RestorePoints == nil {
		p.RestorePoints = []RestorePoint{}
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
}

// UpdateMessage is the push-channel payload broadcast after every committed mutation.
type UpdateMessage struct {
	ProjectID       string        `json:"projectId"`
	InputData       Grid          `json:"inputData"`
	InputDataConfig schema.Schema `json:"inputDataConfig"`
}

// NewUpdateMessage builds the broadcast payload for p.
func NewUpdateMessage(p *Project) UpdateMessage {
	return UpdateMessage{
		ProjectID:       p.ID,
		InputData:       p.InputData.Clone().Normalize(),
		InputDataConfig: p.InputDataConfig.Clone(),
	}
}
