package schema

import (
	"errors"
	"fmt"
)

// SchemaError represents a structural problem in a column definition.
type SchemaError struct {
	Column int    // Column index
	Name   string // Column name, may be empty
	Reason string // Human-readable reason for failure
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("column %d: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("column %d (%q): %s", e.Column, e.Name, e.Reason)
}

// CellError represents a cell that fails its column rule.
// It is informational; a failing cell never blocks a save.
type CellError struct {
	Row    int
	Col    int
	Column string
	Value  string
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s (got %q)", e.Row+1, e.Column, e.Reason, e.Value)
}

// AggregateError represents multiple failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Errors returns all failures if err is an AggregateError.
// Otherwise returns nil.
func Errors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
