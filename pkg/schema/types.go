package schema

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Rule type names as they appear in the persisted "rules.type" field.
const (
	TypeString  = "string"
	TypeEnum    = "enum"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// StartsWithLetter is the only "startsWith" value a StringRule enforces.
const StartsWithLetter = "letter"

// Rule defines the contract for cell validation.
// The set of implementations is closed; see StringRule, EnumRule, NumberRule,
// BooleanRule and UnknownRule.
type Rule interface {
	// Type returns the persisted type name (e.g., "string", "enum").
	Type() string
	// IsOptional reports whether an empty value is always accepted.
	IsOptional() bool
	// Check validates a non-short-circuited value against the rule.
	Check(value string) error

	isRule()
}

// --- Built-in Rule Implementations ---

// StringRule accepts any string, optionally requiring a leading ASCII letter.
type StringRule struct {
	// StartsWith holds the raw setting. Only StartsWithLetter is enforced;
	// other values are kept so the column round-trips unchanged.
	StartsWith string
	Optional   bool
}

var leadingLetter = regexp.MustCompile(`^[a-zA-Z]`)

func (r StringRule) Type() string     { return TypeString }
func (r StringRule) IsOptional() bool { return r.Optional }
func (StringRule) isRule()            {}

// RequiresLetter reports whether the first character must be a letter.
func (r StringRule) RequiresLetter() bool { return r.StartsWith == StartsWithLetter }

func (r StringRule) Check(value string) error {
	if r.RequiresLetter() && !leadingLetter.MatchString(value) {
		return fmt.Errorf("must start with a letter")
	}
	return nil
}

// EnumRule accepts exactly one of an ordered set of values (case-sensitive).
type EnumRule struct {
	Values   []string
	Optional bool
}

func (r EnumRule) Type() string     { return TypeEnum }
func (r EnumRule) IsOptional() bool { return r.Optional }
func (EnumRule) isRule()            {}

func (r EnumRule) Check(value string) error {
	if !slices.Contains(r.Values, value) {
		return fmt.Errorf("must be one of [%s]", strings.Join(r.Values, ", "))
	}
	return nil
}

// NumberRule accepts decimal numbers within optional inclusive bounds.
type NumberRule struct {
	Min      *float64
	Max      *float64
	Format   string // informational only, e.g. "X|X.X|X.XX"
	Optional bool
}

func (r NumberRule) Type() string     { return TypeNumber }
func (r NumberRule) IsOptional() bool { return r.Optional }
func (NumberRule) isRule()            {}

func (r NumberRule) Check(value string) error {
	num, ok := ParseNumber(value)
	if !ok {
		return fmt.Errorf("must be a number")
	}
	if r.Min != nil && num < *r.Min {
		return fmt.Errorf("must be >= %s", formatFloat(*r.Min))
	}
	if r.Max != nil && num > *r.Max {
		return fmt.Errorf("must be <= %s", formatFloat(*r.Max))
	}
	return nil
}

// Bounds returns the effective range, defaulting missing ends to infinity.
func (r NumberRule) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	return lo, hi
}

// BooleanRule accepts "true" or "false" in any letter case.
type BooleanRule struct {
	Optional bool
}

func (r BooleanRule) Type() string     { return TypeBoolean }
func (r BooleanRule) IsOptional() bool { return r.Optional }
func (BooleanRule) isRule()            {}

func (r BooleanRule) Check(value string) error {
	switch strings.ToLower(value) {
	case "true", "false":
		return nil
	}
	return fmt.Errorf("must be true or false")
}

// UnknownRule preserves a rule whose type is not recognized.
// It accepts every value.
type UnknownRule struct {
	Kind     string
	Optional bool
	Raw      map[string]any
}

func (r UnknownRule) Type() string     { return r.Kind }
func (r UnknownRule) IsOptional() bool { return r.Optional }
func (UnknownRule) isRule()            {}
func (r UnknownRule) Check(string) error {
	return nil
}

// --- Number parsing ---

var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseNumber reads the longest leading decimal literal of value, after leading
// whitespace, the way browsers parse form numbers ("12abc" reads as 12).
// It reports false when no number can be read.
func ParseNumber(value string) (float64, bool) {
	s := strings.TrimLeft(value, " \t\n\r\f\v")
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Exponent overflow still yields a signed infinity from ParseFloat.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Factory Functions ---

// String creates a string rule. Pass StartsWithLetter to require a leading letter.
func String(startsWith string) StringRule { return StringRule{StartsWith: startsWith} }

// Enum creates an enum rule over the given values.
func Enum(values ...string) EnumRule { return EnumRule{Values: values} }

// Number creates a bounded number rule.
func Number(min, max float64) NumberRule { return NumberRule{Min: &min, Max: &max} }

// AtLeast creates a number rule with only a lower bound.
func AtLeast(min float64) NumberRule { return NumberRule{Min: &min} }

// Boolean creates a boolean rule.
func Boolean() BooleanRule { return BooleanRule{} }

// Optional returns a copy of rule that accepts the empty value.
func Optional(rule Rule) Rule {
	switch r := rule.(type) {
	case StringRule:
		r.Optional = true
		return r
	case EnumRule:
		r.Optional = true
		return r
	case NumberRule:
		r.Optional = true
		return r
	case BooleanRule:
		r.Optional = true
		return r
	case UnknownRule:
		r.Optional = true
		return r
	}
	return rule
}
