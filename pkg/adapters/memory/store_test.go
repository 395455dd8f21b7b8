package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/unitgrid/pkg/adapters/memory"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/ports"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunProjectStoreContract(t, store)
}

func TestMemoryStore_SaveCopies(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p := domain.NewProject("p1", "Line", "acme", schema.DefaultConveyorSchema())

	require.NoError(t, store.Save(ctx, p))
	p.InputData[0][0] = "changed after save"

	loaded, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "", loaded.InputData[0][0])
}

func TestMemoryStore_ListByCompanyEmpty(t *testing.T) {
	projects, err := memory.NewStore().ListByCompany(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}
