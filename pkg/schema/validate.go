package schema

// ValidateCell reports whether value satisfies rule.
// An optional rule accepts the empty value before any other check runs.
// A nil rule accepts everything.
func ValidateCell(value string, rule Rule) bool {
	return CheckCell(value, rule) == nil
}

// CheckCell is ValidateCell with the failure reason.
func CheckCell(value string, rule Rule) error {
	if rule == nil {
		return nil
	}
	if rule.IsOptional() && value == "" {
		return nil
	}
	return rule.Check(value)
}
