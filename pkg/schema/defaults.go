package schema

// DefaultConveyorSchema returns the column set new projects start with:
// a conveyor/unit parameter sheet keyed by Name with a Next pointer for flow order.
func DefaultConveyorSchema() Schema {
	conveyor := FieldEquals{Field: "Unit_Type", Value: "Conveyor"}
	powered := FieldIn{Field: "Power", Values: []string{"Starter", "VFD"}}
	hasMDR := FieldExists{Field: "MDR"}

	hp := AtLeast(0)
	hp.Format = "X|X.X|X.XX"

	return Schema{
		{Name: "Name", Rule: String(StartsWithLetter), Condition: Always{}},
		{Name: "Next", Rule: StringRule{Optional: true}, Condition: Always{}},
		{Name: "Panel", Rule: String(StartsWithLetter), Condition: conveyor},
		{Name: "Unit_Type", Rule: Enum("Conveyor", "System", "Area", "Estop_Zone", "Robot"), Condition: Always{}},
		{Name: "Type", Rule: Enum("Belt", "Roller Gate", "Roller Curve", "Roller", "Spiral", "Accumulation"), Condition: Always{}},
		{Name: "Power", Rule: Enum("Starter", "Gravity", "MDR", "VFD"), Condition: conveyor},
		{Name: "Run_Type", Rule: Enum("Transport", "Gravity", "Singulate Slug", "Singulate"), Condition: conveyor},
		{Name: "HP", Rule: hp, Condition: powered},
		{Name: "Length", Rule: Number(1, 9999999), Condition: FieldIn{Field: "Type", Values: []string{"Belt", "Roller Gate", "Roller", "Accumulation"}}},
		{Name: "FPM", Rule: Number(1, 99999), Condition: FieldNotEquals{Field: "Power", Value: "Gravity"}},
		{Name: "Disconnect", Rule: Boolean(), Condition: powered},
		{Name: "Exit_PE", Rule: Boolean(), Condition: conveyor},
		{Name: "MDR", Rule: Enum("IBE", "HB510"), Condition: FieldEquals{Field: "Power", Value: "MDR"}},
		{Name: "MDR_Zones", Rule: Number(1, 99999), Condition: hasMDR},
		{Name: "MDR_Zone_Length", Rule: Number(1, 9999), Condition: hasMDR},
		{Name: "Curve_Angle", Rule: Number(-360, 360), Condition: FieldContains{Field: "Type", Substring: "Curve"}},
		{Name: "Elevation_In", Rule: Number(0, 99999), Condition: conveyor},
		{Name: "Elevation_Out", Rule: Number(0, 99999), Condition: conveyor},
		{Name: "Spiral_Angle", Rule: Number(-360, 360), Condition: FieldEquals{Field: "Type", Value: "Spiral"}},
	}
}
