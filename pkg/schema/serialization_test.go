package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDecodeRule(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Rule
	}{
		{"string letter", map[string]any{"type": "string", "startsWith": "letter"}, StringRule{StartsWith: "letter"}},
		{"optional string", map[string]any{"type": "string", "optional": true}, StringRule{Optional: true}},
		{"enum", map[string]any{"type": "enum", "values": []any{"A", "B"}}, EnumRule{Values: []string{"A", "B"}}},
		{"number zero min", map[string]any{"type": "number", "min": 0.0}, NumberRule{Min: ptr(0)}},
		{"number weak", map[string]any{"type": "number", "min": "1", "max": 10}, NumberRule{Min: ptr(1), Max: ptr(10)}},
		{"boolean", map[string]any{"type": "boolean"}, BooleanRule{}},
		{"unknown", map[string]any{"type": "date"}, UnknownRule{Kind: "date", Raw: map[string]any{"type": "date"}}},
	}

	for _, tt := range tests {
		got := DecodeRule(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: DecodeRule = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestDecodeRule_UndecodableIsPermissive(t *testing.T) {
	got := DecodeRule(map[string]any{"type": "enum", "values": map[string]any{"a": 1}})
	if _, ok := got.(UnknownRule); !ok {
		t.Fatalf("expected UnknownRule, got %T", got)
	}
	if !ValidateCell("whatever", got) {
		t.Error("undecodable rule should accept everything")
	}
}

func TestDecodeCondition(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Condition
	}{
		{"always", map[string]any{"always": true}, Always{}},
		{"always wins", map[string]any{"always": true, "field": "A", "value": "x"}, Always{}},
		{"equals", map[string]any{"field": "Unit_Type", "value": "Conveyor"}, FieldEquals{Field: "Unit_Type", Value: "Conveyor"}},
		{"in", map[string]any{"field": "Power", "values": []any{"Starter", "VFD"}}, FieldIn{Field: "Power", Values: []string{"Starter", "VFD"}}},
		{"not", map[string]any{"field": "Power", "not": "Gravity"}, FieldNotEquals{Field: "Power", Value: "Gravity"}},
		{"contains", map[string]any{"field": "Type", "contains": "Curve"}, FieldContains{Field: "Type", Substring: "Curve"}},
		{"exists", map[string]any{"field": "MDR", "exists": true}, FieldExists{Field: "MDR"}},
		{"value before values", map[string]any{"field": "A", "value": "x", "values": []any{"y"}}, FieldEquals{Field: "A", Value: "x"}},
		{"empty value falls through", map[string]any{"field": "A", "value": "", "exists": true}, FieldExists{Field: "A"}},
	}

	for _, tt := range tests {
		got := DecodeCondition(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: DecodeCondition = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestDecodeCondition_Malformed(t *testing.T) {
	raws := []map[string]any{
		nil,
		{},
		{"value": "Conveyor"},
		{"field": "A"},
		{"field": "A", "exists": false},
		{"always": false, "field": ""},
	}
	for _, raw := range raws {
		got := DecodeCondition(raw)
		if _, ok := got.(Malformed); !ok {
			t.Errorf("DecodeCondition(%v) = %T, want Malformed", raw, got)
		}
		if IsEnabled([]string{"x"}, got, Schema{{Name: "A"}}.Index) {
			t.Errorf("malformed %v evaluated to enabled", raw)
		}
	}
}

func TestColumnJSON_RoundTrip(t *testing.T) {
	original := DefaultConveyorSchema()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Schema
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", decoded, original)
	}
}

func TestColumnJSON_WireShape(t *testing.T) {
	col := Column{
		Name:      "HP",
		Rule:      NumberRule{Min: ptr(0), Format: "X|X.X|X.XX"},
		Condition: FieldIn{Field: "Power", Values: []string{"Starter", "VFD"}},
	}
	data, err := json.Marshal(col)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"HP","rules":{"format":"X|X.X|X.XX","min":0,"type":"number"},"enabledIf":{"field":"Power","values":["Starter","VFD"]}}`
	if string(data) != want {
		t.Errorf("wire shape\n got: %s\nwant: %s", data, want)
	}
}

func TestColumnJSON_IgnoresStorageKeys(t *testing.T) {
	data := []byte(`{"_id":"65f","name":"Panel","rules":{"type":"string","startsWith":"letter"},"enabledIf":{"field":"Unit_Type","value":"Conveyor"}}`)
	var col Column
	if err := json.Unmarshal(data, &col); err != nil {
		t.Fatal(err)
	}
	if col.Name != "Panel" || !col.Rule.(StringRule).RequiresLetter() {
		t.Errorf("unexpected column %#v", col)
	}
}

func TestColumnJSON_MissingEnabledIf(t *testing.T) {
	var col Column
	if err := json.Unmarshal([]byte(`{"name":"X","rules":{"type":"boolean"}}`), &col); err != nil {
		t.Fatal(err)
	}
	if _, ok := col.Condition.(Malformed); !ok {
		t.Errorf("missing enabledIf should decode as Malformed, got %T", col.Condition)
	}
}

func TestParse_YAML(t *testing.T) {
	doc := `
columns:
  - name: Name
    rules: {type: string, startsWith: letter}
    enabledIf: {always: true}
  - name: Length
    rules: {type: number, min: 1, max: 9999999}
    enabledIf: {field: Type, values: [Belt, Roller]}
`
	s, err := Parse([]byte(doc), false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(s))
	}
	n, ok := s[1].Rule.(NumberRule)
	if !ok || n.Min == nil || *n.Min != 1 || *n.Max != 9999999 {
		t.Errorf("unexpected rule %#v", s[1].Rule)
	}
	if _, ok := s[1].Condition.(FieldIn); !ok {
		t.Errorf("unexpected condition %#v", s[1].Condition)
	}
}

func TestParse_BareList(t *testing.T) {
	yamlList := "- name: A\n  rules: {type: boolean}\n  enabledIf: {always: true}\n"
	s, err := Parse([]byte(yamlList), false)
	if err != nil || len(s) != 1 {
		t.Fatalf("yaml list: %v, %v", s, err)
	}

	jsonList := `[{"name":"A","rules":{"type":"boolean"},"enabledIf":{"always":true}}]`
	s, err = Parse([]byte(jsonList), true)
	if err != nil || len(s) != 1 {
		t.Fatalf("json list: %v, %v", s, err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "columns.json")

	data, err := json.Marshal(File{Columns: DefaultConveyorSchema()})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(s, DefaultConveyorSchema()) {
		t.Error("loaded schema differs from written schema")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func ptr(f float64) *float64 { return &f }
