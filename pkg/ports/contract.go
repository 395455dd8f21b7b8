package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunProjectStoreContract runs a suite of tests to verify that a ProjectStore implementation
// adheres to the defined interface contract.
func RunProjectStoreContract(t *testing.T, store ProjectStore) {
	ctx := context.Background()
	projectID := "contract-test-project-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		project := domain.NewProject(projectID, "Line 1", "acme", schema.DefaultConveyorSchema())
		project.InputData = domain.Grid{
			{"A", "B", "", "Conveyor", "Belt", "VFD"},
			{"B"},
		}
		project.RestorePoints = []domain.RestorePoint{
			{Data: domain.Grid{{"A"}}, CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		}

		err := store.Save(ctx, project)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, project.Name, loaded.Name)
		assert.Equal(t, project.Company, loaded.Company)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, project.InputData, loaded.InputData)
		assert.Equal(t, project.InputDataConfig.Names(), loaded.InputDataConfig.Names())
		assert.Equal(t, project.InputDataConfig[7], loaded.InputDataConfig[7], "number rule and condition survive")
		require.Len(t, loaded.RestorePoints, 1)
		assert.True(t, project.RestorePoints[0].CreatedAt.Equal(loaded.RestorePoints[0].CreatedAt))
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		loaded.InputData[0][0] = "mutated"

		again, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, "A", again.InputData[0][0])
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		first := domain.NewProject(projectID, "Line 1", "acme", schema.DefaultConveyorSchema())
		first.InputData = domain.Grid{{"first"}}
		second := first.Clone()
		second.InputData = domain.Grid{{"second"}}

		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, domain.Grid{{"second"}}, loaded.InputData)
	})

	t.Run("Save Without ID", func(t *testing.T) {
		err := store.Save(ctx, &domain.Project{Name: "nameless"})
		assert.ErrorIs(t, err, domain.ErrInvalidProject)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+projectID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("List And ListByCompany", func(t *testing.T) {
		id1 := projectID + "-1"
		id2 := projectID + "-2"
		id3 := projectID + "-3"
		archived := domain.NewProject(id2, "Old", "acme", schema.Schema{})
		archived.Status = domain.StatusArchived
		require.NoError(t, store.Save(ctx, domain.NewProject(id1, "New", "acme", schema.Schema{})))
		require.NoError(t, store.Save(ctx, archived))
		require.NoError(t, store.Save(ctx, domain.NewProject(id3, "Other", "globex", schema.Schema{})))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
			_ = store.Delete(ctx, id3)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.Contains(t, ids, id3)

		projects, err := store.ListByCompany(ctx, "acme")
		require.NoError(t, err)
		var got []string
		for _, p := range projects {
			got = append(got, p.ID)
		}
		assert.Contains(t, got, id1)
		assert.Contains(t, got, id2)
		assert.NotContains(t, got, id3)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, projectID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, projectID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound, "Load after Delete should return ErrProjectNotFound")

		assert.NoError(t, store.Delete(ctx, projectID), "Delete is idempotent")
	})
}
