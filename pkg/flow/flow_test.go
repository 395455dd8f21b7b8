package flow_test

import (
	"strconv"
	"testing"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/flow"
	"github.com/stretchr/testify/assert"
)

func TestSort_Chain(t *testing.T) {
	rows := []domain.Row{{"C", ""}, {"A", "B"}, {"B", "C"}}

	res := flow.Sort(rows)

	assert.Equal(t, []string{"A", "B", "C"}, flow.Keys(res.Rows))
	assert.Empty(t, res.Dropped)
}

func TestSort_CycleTerminates(t *testing.T) {
	rows := []domain.Row{{"A", "B"}, {"B", "C"}, {"C", "A"}}

	res := flow.Sort(rows)

	assert.Equal(t, []string{"A", "B", "C"}, flow.Keys(res.Rows))
}

func TestSort_IndependentChainsLaterFirst(t *testing.T) {
	rows := []domain.Row{{"X", "Y"}, {"Y", ""}, {"P", "Q"}, {"Q", ""}}

	res := flow.Sort(rows)

	assert.Equal(t, []string{"P", "Q", "X", "Y"}, flow.Keys(res.Rows))
}

func TestSort_KeepsWholeRows(t *testing.T) {
	rows := []domain.Row{{"B", "", "Conveyor"}, {"A", "B", "System"}}

	res := flow.Sort(rows)

	assert.Equal(t, []domain.Row{{"A", "B", "System"}, {"B", "", "Conveyor"}}, res.Rows)
}

func TestSort_EmptyKeysDropped(t *testing.T) {
	rows := []domain.Row{{"", ""}, {"A", ""}, {}}

	res := flow.Sort(rows)

	assert.Equal(t, []string{"A"}, flow.Keys(res.Rows))
	assert.Len(t, res.Dropped, 2)
}

func TestSort_DuplicateKeysCollapse(t *testing.T) {
	rows := []domain.Row{
		{"A", "", "first"},
		{"B", ""},
		{"A", "B", "second"},
	}

	res := flow.Sort(rows)

	// Last pointer for A (→B) is followed, first A row is emitted.
	assert.Equal(t, []domain.Row{{"A", "", "first"}, {"B", ""}}, res.Rows)
	assert.Equal(t, []domain.Row{{"A", "B", "second"}}, res.Dropped)
}

func TestSort_DanglingPointer(t *testing.T) {
	rows := []domain.Row{{"A", "Ghost"}, {"B", "A"}}

	res := flow.Sort(rows)

	assert.Equal(t, []string{"B", "A"}, flow.Keys(res.Rows))
	assert.Empty(t, res.Dropped)
}

func TestSort_SelfLoop(t *testing.T) {
	res := flow.Sort([]domain.Row{{"A", "A"}})
	assert.Equal(t, []string{"A"}, flow.Keys(res.Rows))
}

func TestSort_LongChain(t *testing.T) {
	const n = 5000
	rows := make([]domain.Row, n)
	for i := 0; i < n; i++ {
		key := keyOf(i)
		nextKey := ""
		if i+1 < n {
			nextKey = keyOf(i + 1)
		}
		// Store reversed so the sort has work to do.
		rows[n-1-i] = domain.Row{key, nextKey}
	}

	res := flow.Sort(rows)

	assert.Len(t, res.Rows, n)
	assert.Equal(t, keyOf(0), res.Rows[0][0])
	assert.Equal(t, keyOf(n-1), res.Rows[n-1][0])
}

func keyOf(i int) string {
	return "U" + strconv.Itoa(i)
}
