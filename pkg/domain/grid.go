package domain

// Row is one line of the grid. Column index is the identity of a cell.
type Row []string

// Cell returns the value at col, or "" when the row is shorter than col.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// NewRow returns a row of width empty cells.
func NewRow(width int) Row {
	if width < 0 {
		width = 0
	}
	return make(Row, width)
}

// Grid is the ordered row matrix of a project.
type Grid []Row

// NewGrid creates rows x width empty cells.
func NewGrid(rows, width int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = NewRow(width)
	}
	return g
}

// Clone deep-copies the grid so snapshots never alias live rows.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, r := range g {
		out[i] = r.Clone()
	}
	return out
}

// Equal reports whether two grids hold the same rows and cells.
// A missing trailing cell is not equal to an explicit "".
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Normalize replaces nil rows with empty ones so the grid always encodes as [][]string.
func (g Grid) Normalize() Grid {
	if g == nil {
		return Grid{}
	}
	for i := range g {
		if g[i] == nil {
			g[i] = Row{}
		}
	}
	return g
}
