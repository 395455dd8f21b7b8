// Package export writes project grids to Excel workbooks.
//
// The grid sheet carries the schema as a frozen header row. Disabled cells are
// shaded and invalid cells are filled red, matching what the editor displays.
package export

import (
	"fmt"
	"io"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/xuri/excelize/v2"
)

const (
	GridSheet          = "Grid"
	RestorePointsSheet = "Restore Points"
)

// Styles holds the style ids applied to grid cells.
type Styles struct {
	Header   int
	Disabled int
	Invalid  int
}

func newStyles(f *excelize.File) (Styles, error) {
	var st Styles
	var err error
	if st.Header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#BDD7EE"}, Pattern: 1},
	}); err != nil {
		return st, err
	}
	if st.Disabled, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#808080"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	}); err != nil {
		return st, err
	}
	if st.Invalid, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	}); err != nil {
		return st, err
	}
	return st, nil
}

// Workbook builds the workbook for p. The caller closes the returned file.
func Workbook(p *domain.Project) (*excelize.File, Styles, error) {
	f := excelize.NewFile()
	styles, err := build(f, p)
	if err != nil {
		f.Close()
		return nil, Styles{}, err
	}
	return f, styles, nil
}

// Write encodes p as an xlsx workbook to w.
func Write(w io.Writer, p *domain.Project) error {
	f, _, err := Workbook(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(f *excelize.File, p *domain.Project) (Styles, error) {
	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		return Styles{}, err
	}
	styles, err := newStyles(f)
	if err != nil {
		return Styles{}, fmt.Errorf("create styles: %w", err)
	}

	s := p.InputDataConfig
	header := s.Names()
	if err := f.SetSheetRow(GridSheet, "A1", &header); err != nil {
		return styles, err
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(GridSheet, "A1", last, styles.Header); err != nil {
			return styles, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(header))
		if err := f.SetColWidth(GridSheet, "A", lastCol, 16); err != nil {
			return styles, err
		}
	}
	if err := f.SetPanes(GridSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return styles, err
	}

	for i, row := range grid.VisibleCells(s, p.InputData) {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return styles, err
			}
			if err := f.SetCellStr(GridSheet, name, cell.Value); err != nil {
				return styles, err
			}
			switch {
			case !cell.Enabled:
				err = f.SetCellStyle(GridSheet, name, name, styles.Disabled)
			case !cell.Valid:
				err = f.SetCellStyle(GridSheet, name, name, styles.Invalid)
			}
			if err != nil {
				return styles, err
			}
		}
	}

	if len(p.RestorePoints) > 0 {
		if err := restorePoints(f, p); err != nil {
			return styles, err
		}
	}
	return styles, nil
}

// restorePoints lists each snapshot's index, time and row count.
func restorePoints(f *excelize.File, p *domain.Project) error {
	if _, err := f.NewSheet(RestorePointsSheet); err != nil {
		return err
	}
	header := []string{"Index", "Created", "Rows"}
	if err := f.SetSheetRow(RestorePointsSheet, "A1", &header); err != nil {
		return err
	}
	for i, rp := range p.RestorePoints {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{i, rp.CreatedAt.UTC().Format("2006-01-02 15:04:05"), len(rp.Data)}
		if err := f.SetSheetRow(RestorePointsSheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
