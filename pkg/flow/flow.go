// Package flow orders grid rows along their "next" pointers.
//
// Column 0 of a row is its key and column 1 names the key of the row that follows it.
// Sort walks those pointers depth-first and emits a linear flow order.
package flow

import (
	"github.com/aretw0/unitgrid/pkg/domain"
)

const (
	// KeyColumn holds the row identity.
	KeyColumn = 0
	// NextColumn holds the key of the following row.
	NextColumn = 1
)

// Result is the outcome of a flow sort.
type Result struct {
	// Rows is the flow order.
	Rows []domain.Row
	// Dropped lists rows that were not emitted: rows with an empty key and
	// later rows sharing a key with an earlier one.
	Dropped []domain.Row
}

// Sort reorders rows so that every row precedes the row its next pointer names.
//
// Traversal starts once from every distinct key in order of first appearance and
// follows next pointers, visiting each key at most once, so cycles terminate.
// Rows are prepended to the output in post-order: A→B→C yields A, B, C.
//
// When a key appears more than once, the last row's next pointer is followed but
// the first row with that key is emitted. Pointers to keys that no row carries are
// followed and then ignored.
func Sort(rows []domain.Row) Result {
	next := make(map[string]string, len(rows))
	first := make(map[string]int, len(rows))
	var keys []string

	for i, row := range rows {
		key := row.Cell(KeyColumn)
		if _, seen := first[key]; !seen {
			first[key] = i
			keys = append(keys, key)
		}
		next[key] = row.Cell(NextColumn)
	}

	visited := make(map[string]bool, len(keys))
	finished := make([]int, 0, len(rows))

	var visit func(key string)
	visit = func(key string) {
		if key == "" || visited[key] {
			return
		}
		visited[key] = true
		visit(next[key])
		if i, ok := first[key]; ok {
			finished = append(finished, i)
		}
	}

	for _, key := range keys {
		visit(key)
	}

	res := Result{Rows: make([]domain.Row, 0, len(finished))}
	emitted := make(map[int]bool, len(finished))
	for i := len(finished) - 1; i >= 0; i-- {
		res.Rows = append(res.Rows, rows[finished[i]])
		emitted[finished[i]] = true
	}
	for i, row := range rows {
		if !emitted[i] {
			res.Dropped = append(res.Dropped, row)
		}
	}
	return res
}

// Keys returns the key column of rows, for logging and assertions.
func Keys(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cell(KeyColumn)
	}
	return out
}
