// Package grid implements the rule-driven grid engine.
//
// The engine owns a schema and its rows, recomputes enablement and validity of every
// cell after each mutation, and keeps undo and redo stacks of full grid snapshots.
// It has no knowledge of rendering, storage or transport: callers observe committed
// state through OnChange.
package grid

import (
	"fmt"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/flow"
	"github.com/aretw0/unitgrid/pkg/schema"
)

// Change is emitted after every committed mutation.
type Change struct {
	Kind   domain.EventType
	Rows   domain.Grid
	Schema schema.Schema
	// Cells holds the derived state produced by the recompute pass.
	Cells []CellState
}

// Engine is not safe for concurrent use. An editing session owns one engine.
type Engine struct {
	schema    schema.Schema
	rows      domain.Grid
	cells     []CellState
	undo      []domain.Grid
	redo      []domain.Grid
	listeners []func(Change)
}

// New creates an engine over a copy of rows and runs the first recompute pass.
// An empty grid gets a single empty row so the engine always holds at least one row.
func New(s schema.Schema, rows domain.Grid) *Engine {
	e := &Engine{}
	e.load(s, rows)
	return e
}

func (e *Engine) load(s schema.Schema, rows domain.Grid) {
	e.schema = s.Clone()
	if len(rows) == 0 {
		rows = domain.Grid{domain.NewRow(len(s))}
	}
	e.rows, e.cells = Recompute(e.schema, rows.Normalize())
}

// Schema returns a copy of the active schema.
func (e *Engine) Schema() schema.Schema { return e.schema.Clone() }

// Rows returns a copy of the current grid.
func (e *Engine) Rows() domain.Grid { return e.rows.Clone() }

// Len returns the number of rows.
func (e *Engine) Len() int { return len(e.rows) }

// Cells returns the derived state from the last recompute pass.
func (e *Engine) Cells() []CellState {
	out := make([]CellState, len(e.cells))
	copy(out, e.cells)
	return out
}

// View returns the rendering view of the current grid.
func (e *Engine) View() [][]CellView { return VisibleCells(e.schema, e.rows) }

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change anything.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// OnChange registers a listener for committed mutations. The returned function removes it.
func (e *Engine) OnChange(fn func(Change)) (remove func()) {
	e.listeners = append(e.listeners, fn)
	idx := len(e.listeners) - 1
	return func() {
		if idx < len(e.listeners) {
			e.listeners[idx] = nil
		}
	}
}

// BeginEdit records the current grid on the undo stack. Call it when a cell gains
// focus, before the edit is applied.
func (e *Engine) BeginEdit() {
	e.undo = append(e.undo, e.rows.Clone())
}

// SetCell writes value then recomputes the whole grid. Writing past the end of a
// short row pads it with empty cells.
func (e *Engine) SetCell(row, col int, value string) error {
	if row < 0 || row >= len(e.rows) {
		return fmt.Errorf("set cell row %d of %d: %w", row, len(e.rows), domain.ErrIndexOutOfRange)
	}
	if col < 0 || col >= len(e.schema) {
		return fmt.Errorf("set cell column %d of %d: %w", col, len(e.schema), domain.ErrIndexOutOfRange)
	}

	r := e.rows[row]
	if col >= len(r) {
		padded := domain.NewRow(col + 1)
		copy(padded, r)
		r = padded
	}
	r[col] = value
	e.rows[row] = r

	e.commit(domain.EventCellEdited)
	return nil
}

// EditCell is BeginEdit followed by SetCell. Nothing is recorded when the write fails.
func (e *Engine) EditCell(row, col int, value string) error {
	snapshot := e.rows.Clone()
	if err := e.SetCell(row, col, value); err != nil {
		return err
	}
	e.undo = append(e.undo, snapshot)
	return nil
}

// InsertRow inserts an empty row of schema width at index. index == Len() appends.
func (e *Engine) InsertRow(index int) error {
	if index < 0 || index > len(e.rows) {
		return fmt.Errorf("insert row at %d of %d: %w", index, len(e.rows), domain.ErrIndexOutOfRange)
	}
	e.BeginEdit()

	rows := make(domain.Grid, 0, len(e.rows)+1)
	rows = append(rows, e.rows[:index]...)
	rows = append(rows, domain.NewRow(len(e.schema)))
	rows = append(rows, e.rows[index:]...)
	e.rows = rows

	e.commit(domain.EventRowInserted)
	return nil
}

// AppendRow adds an empty row at the end.
func (e *Engine) AppendRow() error {
	return e.InsertRow(len(e.rows))
}

// DeleteRow removes the row at index. The last remaining row cannot be deleted.
func (e *Engine) DeleteRow(index int) error {
	if len(e.rows) <= 1 {
		return domain.ErrLastRow
	}
	if index < 0 || index >= len(e.rows) {
		return fmt.Errorf("delete row %d of %d: %w", index, len(e.rows), domain.ErrIndexOutOfRange)
	}
	e.BeginEdit()

	rows := make(domain.Grid, 0, len(e.rows)-1)
	rows = append(rows, e.rows[:index]...)
	rows = append(rows, e.rows[index+1:]...)
	e.rows = rows

	e.commit(domain.EventRowDeleted)
	return nil
}

// ApplySchema replaces the schema and recomputes. Rows keep their length; cells past
// the end of a short row read as empty.
func (e *Engine) ApplySchema(s schema.Schema) {
	e.schema = s.Clone()
	e.commit(domain.EventSchemaApplied)
}

// SortByFlow reorders rows along their next pointers (see flow.Sort).
// Rows the sort cannot place are dropped. When nothing could be placed the grid is
// left unchanged and ErrLastRow is returned, since the grid must keep a row.
func (e *Engine) SortByFlow() (dropped []domain.Row, err error) {
	res := flow.Sort(e.rows)
	if len(res.Rows) == 0 {
		return res.Dropped, domain.ErrLastRow
	}
	e.BeginEdit()

	rows := make(domain.Grid, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = r.Clone()
	}
	e.rows = rows

	e.commit(domain.EventFlowSorted)
	return res.Dropped, nil
}

// Undo restores the grid recorded by the last BeginEdit. It reports false when the
// undo stack is empty.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	e.redo = append(e.redo, e.rows.Clone())
	e.rows = e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]

	e.commit(domain.EventUndo)
	return true
}

// Redo is the mirror of Undo.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	e.undo = append(e.undo, e.rows.Clone())
	e.rows = e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]

	e.commit(domain.EventRedo)
	return true
}

// Replace swaps schema and rows wholesale, as done when a remote update arrives.
// The undo and redo stacks are kept.
func (e *Engine) Replace(s schema.Schema, rows domain.Grid) {
	e.load(s, rows)
	e.emit(domain.EventRemoteUpdate)
}

// Reset loads a different project: schema and rows are replaced and both stacks are
// cleared. No change is emitted.
func (e *Engine) Reset(s schema.Schema, rows domain.Grid) {
	e.load(s, rows)
	e.undo = nil
	e.redo = nil
}

func (e *Engine) commit(kind domain.EventType) {
	e.rows, e.cells = Recompute(e.schema, e.rows)
	e.emit(kind)
}

func (e *Engine) emit(kind domain.EventType) {
	if len(e.listeners) == 0 {
		return
	}
	ch := Change{
		Kind:   kind,
		Rows:   e.rows.Clone(),
		Schema: e.schema.Clone(),
		Cells:  e.Cells(),
	}
	for _, fn := range e.listeners {
		if fn != nil {
			fn(ch)
		}
	}
}
