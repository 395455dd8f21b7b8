// Package schema defines the declarative column model of a project grid.
//
// A Schema is an ordered list of columns. Each column carries a validation Rule
// (string, enum, number or boolean) and a visibility Condition that decides, per row,
// whether the cell is enabled. Column order is the identity used for cell lookups.
//
// Rules and conditions are tagged variants. They are decoded from the persisted,
// loosely typed wire shape at the load boundary:
//
//	{
//	    "name": "Power",
//	    "rules": {"type": "enum", "values": ["Starter", "Gravity", "MDR", "VFD"]},
//	    "enabledIf": {"field": "Unit_Type", "value": "Conveyor"}
//	}
//
// Decoding never fails on an unknown variant. An unrecognized rule type validates
// everything, and an unusable condition disables the cell:
//
//	s, err := schema.LoadFile("columns.yaml")
//	if err != nil {
//	    // I/O or syntax error only
//	}
//	ok := schema.ValidateCell("12.5", s[7].Rule)
//	on := schema.IsEnabled(row, s[7].Condition, s.Index)
//
// The package depends only on mapstructure and yaml for decoding; evaluation is pure.
package schema
