package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testProject() *domain.Project {
	s := schema.Schema{
		{Name: "Name", Rule: schema.String(schema.StartsWithLetter), Condition: schema.Always{}},
		{Name: "Unit_Type", Rule: schema.Enum("Conveyor", "System"), Condition: schema.Always{}},
		{Name: "Power", Rule: schema.Enum("Starter", "VFD"), Condition: schema.FieldEquals{Field: "Unit_Type", Value: "Conveyor"}},
	}
	p := domain.NewProject("p1", "Line", "acme", s)
	p.InputData = domain.Grid{
		{"C1", "Conveyor", "VFD"},
		{"9bad", "System", ""},
	}
	p.RestorePoints = []domain.RestorePoint{
		{Data: p.InputData.Clone(), CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	return p
}

func TestWorkbook_Styles(t *testing.T) {
	f, styles, err := Workbook(testProject())
	require.NoError(t, err)
	defer f.Close()

	assert.NotEqual(t, styles.Disabled, styles.Invalid)

	header, err := f.GetCellStyle(GridSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, styles.Header, header)

	disabled, err := f.GetCellStyle(GridSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, styles.Disabled, disabled)

	invalid, err := f.GetCellStyle(GridSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, styles.Invalid, invalid)

	plain, err := f.GetCellStyle(GridSheet, "A2")
	require.NoError(t, err)
	assert.NotContains(t, []int{styles.Disabled, styles.Invalid}, plain)
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testProject()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{GridSheet, RestorePointsSheet}, f.GetSheetList())

	rows, err := f.GetRows(GridSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Unit_Type", "Power"}, rows[0])
	assert.Equal(t, []string{"C1", "Conveyor", "VFD"}, rows[1])
	assert.Equal(t, "9bad", rows[2][0])

	points, err := f.GetRows(RestorePointsSheet)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, []string{"0", "2024-05-01 12:00:00", "2"}, points[1])
}

func TestWrite_NoRestorePoints(t *testing.T) {
	p := testProject()
	p.RestorePoints = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{GridSheet}, f.GetSheetList())
}
