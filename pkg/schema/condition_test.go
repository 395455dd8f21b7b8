package schema

import (
	"testing"
)

func TestIsEnabled(t *testing.T) {
	s := Schema{
		{Name: "Unit_Type"},
		{Name: "Type"},
		{Name: "Power"},
		{Name: "MDR"},
	}
	row := []string{"Conveyor", "Roller Curve", "VFD", ""}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"always", Always{}, true},
		{"equals match", FieldEquals{Field: "Unit_Type", Value: "Conveyor"}, true},
		{"equals mismatch", FieldEquals{Field: "Unit_Type", Value: "System"}, false},
		{"in match", FieldIn{Field: "Power", Values: []string{"Starter", "VFD"}}, true},
		{"in mismatch", FieldIn{Field: "Power", Values: []string{"MDR"}}, false},
		{"in empty set", FieldIn{Field: "Power", Values: nil}, false},
		{"not equals", FieldNotEquals{Field: "Power", Value: "Gravity"}, true},
		{"not equals same", FieldNotEquals{Field: "Power", Value: "VFD"}, false},
		{"contains", FieldContains{Field: "Type", Substring: "Curve"}, true},
		{"contains miss", FieldContains{Field: "Type", Substring: "Spiral"}, false},
		{"exists empty", FieldExists{Field: "MDR"}, false},
		{"exists set", FieldExists{Field: "Power"}, true},
		{"malformed", Malformed{}, false},
		{"nil condition", nil, false},
		{"missing field attr", FieldEquals{Value: "Conveyor"}, false},
	}

	for _, tt := range tests {
		if got := IsEnabled(row, tt.cond, s.Index); got != tt.want {
			t.Errorf("%s: IsEnabled = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsEnabled_UnknownFieldReadsEmpty(t *testing.T) {
	s := Schema{{Name: "A"}}
	row := []string{"x"}

	tests := []struct {
		cond Condition
		want bool
	}{
		{FieldEquals{Field: "Ghost", Value: "x"}, false},
		{FieldNotEquals{Field: "Ghost", Value: "x"}, true},
		{FieldContains{Field: "Ghost", Substring: "x"}, false},
		{FieldContains{Field: "Ghost", Substring: ""}, true},
		{FieldExists{Field: "Ghost"}, false},
		{FieldIn{Field: "Ghost", Values: []string{""}}, true},
	}

	for _, tt := range tests {
		if got := IsEnabled(row, tt.cond, s.Index); got != tt.want {
			t.Errorf("%T: IsEnabled = %v, want %v", tt.cond, got, tt.want)
		}
	}
}

func TestIsEnabled_ShortRow(t *testing.T) {
	s := Schema{{Name: "A"}, {Name: "B"}}
	if IsEnabled([]string{"a"}, FieldExists{Field: "B"}, s.Index) {
		t.Error("missing trailing cell should read as empty")
	}
	if !IsEnabled(nil, FieldNotEquals{Field: "B", Value: "z"}, s.Index) {
		t.Error("nil row should read as empty")
	}
	if IsEnabled([]string{"a"}, FieldEquals{Field: "A", Value: "a"}, nil) {
		t.Error("nil index should resolve nothing")
	}
}

func TestSchema_IndexFirstMatch(t *testing.T) {
	s := Schema{{Name: "A"}, {Name: "B"}, {Name: "A"}}
	i, ok := s.Index("A")
	if !ok || i != 0 {
		t.Errorf("Index(A) = %d, %v; want 0, true", i, ok)
	}
	if _, ok := s.Index("C"); ok {
		t.Error("Index(C) should not resolve")
	}
}

func TestSchema_Check(t *testing.T) {
	s := Schema{
		{Name: "A", Rule: String(""), Condition: Always{}},
		{Name: "", Rule: String(""), Condition: Always{}},
		{Name: "A", Rule: EnumRule{}, Condition: Always{}},
	}
	errs := Errors(s.Check())
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	if DefaultConveyorSchema().Check() != nil {
		t.Error("default schema should be structurally valid")
	}
}

func TestSchema_Unresolved(t *testing.T) {
	s := Schema{
		{Name: "A", Condition: Always{}},
		{Name: "B", Condition: FieldEquals{Field: "A", Value: "x"}},
		{Name: "C", Condition: FieldExists{Field: "Missing"}},
	}
	got := s.Unresolved()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Unresolved() = %v, want [2]", got)
	}
	if len(DefaultConveyorSchema().Unresolved()) != 0 {
		t.Error("default schema should resolve every field")
	}
}
