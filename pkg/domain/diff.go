package domain

// CellChange describes one cell whose value differs between two grids.
type CellChange struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Old string `json:"old"`
	New string `json:"new"`
}

// GridDiff represents the changes between two grids.
// It is used for audit logging; sessions always replace grids wholesale.
type GridDiff struct {
	// RowsBefore and RowsAfter are only set when the row count changed.
	RowsBefore int          `json:"rows_before,omitempty"`
	RowsAfter  int          `json:"rows_after,omitempty"`
	Cells      []CellChange `json:"cells,omitempty"`
}

// Diff compares oldGrid with newGrid cell by cell, reading short rows as padded.
// Returns nil when the grids are equal.
func Diff(oldGrid, newGrid Grid) *GridDiff {
	diff := &GridDiff{}
	if len(oldGrid) != len(newGrid) {
		diff.RowsBefore = len(oldGrid)
		diff.RowsAfter = len(newGrid)
	}

	rows := max(len(oldGrid), len(newGrid))
	for i := 0; i < rows; i++ {
		var before, after Row
		if i < len(oldGrid) {
			before = oldGrid[i]
		}
		if i < len(newGrid) {
			after = newGrid[i]
		}
		cols := max(len(before), len(after))
		for j := 0; j < cols; j++ {
			if before.Cell(j) != after.Cell(j) {
				diff.Cells = append(diff.Cells, CellChange{
					Row: i,
					Col: j,
					Old: before.Cell(j),
					New: after.Cell(j),
				})
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GridDiff) IsEmpty() bool {
	return d == nil || (d.RowsBefore == d.RowsAfter && len(d.Cells) == 0)
}
