package schema

import (
	"slices"
	"strings"
)

// Condition is a visibility predicate evaluated against one row.
// The set of implementations is closed; unusable conditions decode to Malformed.
type Condition interface {
	// Kind returns a short label for logs and editors.
	Kind() string

	isCondition()
}

// Always enables the cell unconditionally.
type Always struct{}

// FieldEquals enables the cell when the referenced field equals Value.
type FieldEquals struct {
	Field string
	Value string
}

// FieldIn enables the cell when the referenced field is one of Values.
type FieldIn struct {
	Field  string
	Values []string
}

// FieldNotEquals enables the cell when the referenced field differs from Value.
// It takes a single excluded value, unlike FieldIn.
type FieldNotEquals struct {
	Field string
	Value string
}

// FieldContains enables the cell when the referenced field contains Substring.
type FieldContains struct {
	Field     string
	Substring string
}

// FieldExists enables the cell when the referenced field is non-empty.
type FieldExists struct {
	Field string
}

// Malformed is a condition that could not be interpreted. It always disables the cell.
type Malformed struct {
	Raw map[string]any
}

func (Always) Kind() string         { return "always" }
func (FieldEquals) Kind() string    { return "fieldValue" }
func (FieldIn) Kind() string        { return "fieldValues" }
func (FieldNotEquals) Kind() string { return "fieldNot" }
func (FieldContains) Kind() string  { return "fieldContains" }
func (FieldExists) Kind() string    { return "fieldExists" }
func (Malformed) Kind() string      { return "malformed" }

func (Always) isCondition()         {}
func (FieldEquals) isCondition()    {}
func (FieldIn) isCondition()        {}
func (FieldNotEquals) isCondition() {}
func (FieldContains) isCondition()  {}
func (FieldExists) isCondition()    {}
func (Malformed) isCondition()      {}

// ColumnIndex resolves a column name to its index.
// Schema.Index satisfies it.
type ColumnIndex func(name string) (int, bool)

// IsEnabled evaluates condition against row.
// A field that cannot be resolved reads as the empty value; it never panics.
func IsEnabled(row []string, condition Condition, index ColumnIndex) bool {
	lookup := func(field string) string {
		if field == "" || index == nil {
			return ""
		}
		i, ok := index(field)
		if !ok || i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	switch c := condition.(type) {
	case Always:
		return true
	case FieldEquals:
		if c.Field == "" {
			return false
		}
		return lookup(c.Field) == c.Value
	case FieldIn:
		if c.Field == "" {
			return false
		}
		return slices.Contains(c.Values, lookup(c.Field))
	case FieldNotEquals:
		if c.Field == "" {
			return false
		}
		return lookup(c.Field) != c.Value
	case FieldContains:
		if c.Field == "" {
			return false
		}
		return strings.Contains(lookup(c.Field), c.Substring)
	case FieldExists:
		if c.Field == "" {
			return false
		}
		return lookup(c.Field) != ""
	default:
		return false
	}
}

// ReferencedField returns the field a condition depends on, or "".
func ReferencedField(condition Condition) string {
	switch c := condition.(type) {
	case FieldEquals:
		return c.Field
	case FieldIn:
		return c.Field
	case FieldNotEquals:
		return c.Field
	case FieldContains:
		return c.Field
	case FieldExists:
		return c.Field
	}
	return ""
}
