package schema

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// wireColumn is the persisted column shape shared with storage and clients.
type wireColumn struct {
	Name      string         `json:"name" yaml:"name"`
	Rules     map[string]any `json:"rules" yaml:"rules"`
	EnabledIf map[string]any `json:"enabledIf" yaml:"enabledIf"`
}

type wireRules struct {
	Type       string   `mapstructure:"type"`
	StartsWith string   `mapstructure:"startsWith"`
	Optional   bool     `mapstructure:"optional"`
	Values     []string `mapstructure:"values"`
	Min        *float64 `mapstructure:"min"`
	Max        *float64 `mapstructure:"max"`
	Format     string   `mapstructure:"format"`
}

type wireCondition struct {
	Always   bool     `mapstructure:"always"`
	Field    string   `mapstructure:"field"`
	Value    string   `mapstructure:"value"`
	Values   []string `mapstructure:"values"`
	Not      string   `mapstructure:"not"`
	Contains string   `mapstructure:"contains"`
	Exists   bool     `mapstructure:"exists"`
}

func weakDecode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeRule interprets a persisted "rules" object.
// Unrecognized or undecodable rules become UnknownRule, which accepts every value.
func DecodeRule(raw map[string]any) Rule {
	var w wireRules
	if err := weakDecode(raw, &w); err != nil {
		kind, _ := raw["type"].(string)
		return UnknownRule{Kind: kind, Raw: maps.Clone(raw)}
	}

	switch w.Type {
	case TypeString:
		return StringRule{StartsWith: w.StartsWith, Optional: w.Optional}
	case TypeEnum:
		return EnumRule{Values: w.Values, Optional: w.Optional}
	case TypeNumber:
		return NumberRule{Min: w.Min, Max: w.Max, Format: w.Format, Optional: w.Optional}
	case TypeBoolean:
		return BooleanRule{Optional: w.Optional}
	default:
		return UnknownRule{Kind: w.Type, Optional: w.Optional, Raw: maps.Clone(raw)}
	}
}

// DecodeCondition interprets a persisted "enabledIf" object.
// Keys are tested in the order always, value, values, not, contains, exists;
// the first one set wins. Anything unusable becomes Malformed.
func DecodeCondition(raw map[string]any) Condition {
	if raw == nil {
		return Malformed{}
	}
	var w wireCondition
	if err := weakDecode(raw, &w); err != nil {
		return Malformed{Raw: maps.Clone(raw)}
	}

	switch {
	case w.Always:
		return Always{}
	case w.Field == "":
		return Malformed{Raw: maps.Clone(raw)}
	case w.Value != "":
		return FieldEquals{Field: w.Field, Value: w.Value}
	case w.Values != nil:
		return FieldIn{Field: w.Field, Values: w.Values}
	case w.Not != "":
		return FieldNotEquals{Field: w.Field, Value: w.Not}
	case w.Contains != "":
		return FieldContains{Field: w.Field, Substring: w.Contains}
	case w.Exists:
		return FieldExists{Field: w.Field}
	default:
		return Malformed{Raw: maps.Clone(raw)}
	}
}

// EncodeRule converts a rule back to its persisted object.
func EncodeRule(rule Rule) map[string]any {
	out := map[string]any{}
	switch r := rule.(type) {
	case StringRule:
		out["type"] = TypeString
		if r.StartsWith != "" {
			out["startsWith"] = r.StartsWith
		}
	case EnumRule:
		out["type"] = TypeEnum
		values := r.Values
		if values == nil {
			values = []string{}
		}
		out["values"] = values
	case NumberRule:
		out["type"] = TypeNumber
		if r.Min != nil {
			out["min"] = *r.Min
		}
		if r.Max != nil {
			out["max"] = *r.Max
		}
		if r.Format != "" {
			out["format"] = r.Format
		}
	case BooleanRule:
		out["type"] = TypeBoolean
	case UnknownRule:
		maps.Copy(out, r.Raw)
		if r.Kind != "" {
			out["type"] = r.Kind
		}
	case nil:
		return out
	default:
		out["type"] = rule.Type()
	}
	if rule.IsOptional() {
		out["optional"] = true
	}
	return out
}

// EncodeCondition converts a condition back to its persisted object.
func EncodeCondition(condition Condition) map[string]any {
	switch c := condition.(type) {
	case Always:
		return map[string]any{"always": true}
	case FieldEquals:
		return map[string]any{"field": c.Field, "value": c.Value}
	case FieldIn:
		values := c.Values
		if values == nil {
			values = []string{}
		}
		return map[string]any{"field": c.Field, "values": values}
	case FieldNotEquals:
		return map[string]any{"field": c.Field, "not": c.Value}
	case FieldContains:
		return map[string]any{"field": c.Field, "contains": c.Substring}
	case FieldExists:
		return map[string]any{"field": c.Field, "exists": true}
	case Malformed:
		return maps.Clone(c.Raw)
	}
	return map[string]any{}
}

func (c Column) toWire() wireColumn {
	return wireColumn{
		Name:      c.Name,
		Rules:     EncodeRule(c.Rule),
		EnabledIf: EncodeCondition(c.Condition),
	}
}

func (w wireColumn) toColumn() Column {
	return Column{
		Name:      w.Name,
		Rule:      DecodeRule(w.Rules),
		Condition: DecodeCondition(w.EnabledIf),
	}
}

// MarshalJSON serializes the column in its persisted shape.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toWire())
}

// UnmarshalJSON decodes the persisted shape. Unknown variants degrade, they never fail.
func (c *Column) UnmarshalJSON(data []byte) error {
	if c == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	var w wireColumn
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = w.toColumn()
	return nil
}

// MarshalYAML serializes the column in its persisted shape.
func (c Column) MarshalYAML() (any, error) {
	return c.toWire(), nil
}

// UnmarshalYAML decodes the persisted shape from YAML.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	var w wireColumn
	if err := node.Decode(&w); err != nil {
		return err
	}
	*c = w.toColumn()
	return nil
}

// MarshalJSON keeps a nil schema encoding as an empty list.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Column(s))
}
