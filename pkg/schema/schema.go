package schema

import "fmt"

// Column is one declared grid column.
type Column struct {
	Name      string
	Rule      Rule
	Condition Condition
}

// Schema is the ordered column list of a project.
// Column index, not name, is the identity of a cell.
type Schema []Column

// Index resolves a column name to its position. The first match wins.
func (s Schema) Index(name string) (int, bool) {
	for i, c := range s {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Width returns the number of columns.
func (s Schema) Width() int { return len(s) }

// Clone returns a copy of the column list. Rules and conditions are values and
// are shared only through their slices, which callers must not mutate.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Check reports structural problems: empty or duplicate names and enums without values.
// Returns an *AggregateError, or nil.
func (s Schema) Check() error {
	var errs []error
	seen := make(map[string]int, len(s))

	for i, c := range s {
		if c.Name == "" {
			errs = append(errs, &SchemaError{Column: i, Reason: "name is required"})
		} else if prev, dup := seen[c.Name]; dup {
			errs = append(errs, &SchemaError{
				Column: i,
				Name:   c.Name,
				Reason: fmt.Sprintf("duplicate name (first declared at column %d)", prev),
			})
		} else {
			seen[c.Name] = i
		}

		if e, ok := c.Rule.(EnumRule); ok && len(e.Values) == 0 {
			errs = append(errs, &SchemaError{Column: i, Name: c.Name, Reason: "enum rule has no values"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Unresolved returns the indices of columns whose condition references a field
// that is not declared. Such conditions read the field as empty.
func (s Schema) Unresolved() []int {
	var out []int
	for i, c := range s {
		field := ReferencedField(c.Condition)
		if field == "" {
			continue
		}
		if _, ok := s.Index(field); !ok {
			out = append(out, i)
		}
	}
	return out
}
