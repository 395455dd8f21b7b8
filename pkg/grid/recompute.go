package grid

import (
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/schema"
)

// CellState is the derived state of one stored cell after a recompute pass.
type CellState struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`
	// Cleared is set when the pass overwrote a non-empty value because the cell is disabled.
	Cleared bool `json:"cleared,omitempty"`
}

// CellView is what a renderer needs for one cell.
type CellView struct {
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Valid   bool   `json:"valid"`
}

// Recompute runs the enable/validate pass over every stored cell and returns the
// resulting grid together with the state of each cell.
//
// Disabled cells are forced to "". Validity never alters a stored value.
// Cells are evaluated left to right and a cleared cell is visible to the conditions
// of later columns. The pass repeats until no cell is cleared, so the output is a
// fixed point: running Recompute on its own output changes nothing.
//
// Rows are neither padded nor truncated. Cells beyond the schema width are left alone.
// The input grid is not modified.
func Recompute(s schema.Schema, rows domain.Grid) (domain.Grid, []CellState) {
	out := rows.Clone()
	index := s.Index

	cleared := make(map[[2]int]bool)
	for {
		changed := false
		for i, row := range out {
			width := min(len(row), len(s))
			for j := 0; j < width; j++ {
				if row[j] == "" {
					continue
				}
				if !schema.IsEnabled(row, s[j].Condition, index) {
					row[j] = ""
					cleared[[2]int{i, j}] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	var states []CellState
	for i, row := range out {
		width := min(len(row), len(s))
		for j := 0; j < width; j++ {
			st := CellState{Row: i, Col: j, Valid: true, Cleared: cleared[[2]int{i, j}]}
			st.Enabled = schema.IsEnabled(row, s[j].Condition, index)
			if st.Enabled {
				st.Valid = schema.ValidateCell(row[j], s[j].Rule)
			}
			states = append(states, st)
		}
	}
	return out, states
}

// VisibleCells returns the rendering view of a grid: every row padded to the schema
// width, each cell tagged enabled and valid. Disabled cells are always valid.
func VisibleCells(s schema.Schema, rows domain.Grid) [][]CellView {
	computed, _ := Recompute(s, rows)

	views := make([][]CellView, len(computed))
	for i, row := range computed {
		views[i] = make([]CellView, len(s))
		for j := range s {
			v := CellView{Value: row.Cell(j), Valid: true}
			v.Enabled = schema.IsEnabled(row, s[j].Condition, s.Index)
			if v.Enabled {
				v.Valid = schema.ValidateCell(v.Value, s[j].Rule)
			}
			views[i][j] = v
		}
	}
	return views
}

// Invalid returns the states of enabled cells that fail their rule.
func Invalid(states []CellState) []CellState {
	var out []CellState
	for _, st := range states {
		if st.Enabled && !st.Valid {
			out = append(out, st)
		}
	}
	return out
}

// Cleared returns the states of cells the pass emptied.
func Cleared(states []CellState) []CellState {
	var out []CellState
	for _, st := range states {
		if st.Cleared {
			out = append(out, st)
		}
	}
	return out
}
