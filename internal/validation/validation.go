// Package validation implements declarative per-field validation of
// untrusted input. Endpoints declare a fixed list of rules; the engine
// evaluates them against a raw input map and collects every violation.
// It is a pure function of its inputs and performs no I/O, so it can be
// unit tested without any HTTP machinery.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldType names the built-in shape checks a rule can request.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeEmail  FieldType = "email"
	TypeUUID   FieldType = "uuid"
	TypeNumber FieldType = "number"
)

// emailPattern is a pragmatic RFC-5322-style check. It rejects the obvious
// garbage without attempting to validate every corner of the RFC.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`,
)

// Rule describes the checks applied to a single input field. Checks run in
// the order declared below; the first failing check records an error and
// stops further checks for that field, while other fields are still
// evaluated (collect-all semantics across fields).
type Rule struct {
	// Field is the key looked up in the input map.
	Field string

	// Required rejects absent, nil, or empty-string values.
	Required bool

	// Type, when set, applies the corresponding built-in shape check.
	Type FieldType

	// MinLength and MaxLength bound the length of string values in runes,
	// not bytes. Zero means unbounded.
	MinLength int
	MaxLength int

	// Pattern, when set, must match string values.
	Pattern *regexp.Regexp

	// Custom is an arbitrary predicate evaluated last. Returning false
	// records an error.
	Custom func(value any) bool

	// Message overrides the templated error message for any check that
	// fails on this rule.
	Message string
}

// Result is the outcome of evaluating a rule set against an input map.
// When Ok, Value is the original input untouched (the engine never
// coerces). Otherwise Errors holds one message per failing field, in rule
// declaration order.
type Result struct {
	Value  map[string]any
	Errors []string
}

// Ok reports whether validation passed.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Message returns the first collected error, or "" when validation passed.
// It is the primary client-facing message; Errors carries the full list.
func (r Result) Message() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate evaluates rules against input in declaration order and returns
// the collected result.
func Validate(input map[string]any, rules []Rule) Result {
	var errs []string

	for _, rule := range rules {
		if msg := evaluate(input, rule); msg != "" {
			errs = append(errs, msg)
		}
	}

	return Result{Value: input, Errors: errs}
}

// fail returns the rule's message override when set, otherwise the
// templated default.
func (rule Rule) fail(msg string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return msg
}

// evaluate runs a single rule and returns the first violation message, or
// "" if the field passes.
func evaluate(input map[string]any, rule Rule) string {
	value, present := input[rule.Field]
	if !present || value == nil || value == "" {
		if rule.Required {
			return rule.fail(fmt.Sprintf("%s is required", rule.Field))
		}
		// Optional and absent: nothing further to check.
		return ""
	}

	if rule.Type != "" {
		if msg := checkType(rule.Field, rule.Type, value); msg != "" {
			return rule.fail(msg)
		}
	}

	if s, ok := value.(string); ok {
		length := utf8.RuneCountInString(s)
		if rule.MinLength > 0 && length < rule.MinLength {
			return rule.fail(fmt.Sprintf("%s must be at least %d characters", rule.Field, rule.MinLength))
		}
		if rule.MaxLength > 0 && length > rule.MaxLength {
			return rule.fail(fmt.Sprintf("%s must be at most %d characters", rule.Field, rule.MaxLength))
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			return rule.fail(fmt.Sprintf("%s has an invalid format", rule.Field))
		}
	}

	if rule.Custom != nil && !rule.Custom(value) {
		return rule.fail(fmt.Sprintf("%s is invalid", rule.Field))
	}

	return ""
}

func checkType(field string, typ FieldType, value any) string {
	switch typ {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("%s must be a string", field)
		}
	case TypeEmail:
		s, ok := value.(string)
		if !ok || !emailPattern.MatchString(s) {
			return fmt.Sprintf("%s must be a valid email address", field)
		}
	case TypeUUID:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be a valid UUID", field)
		}
		id, err := uuid.Parse(s)
		if err != nil || id.Version() != 4 {
			return fmt.Sprintf("%s must be a valid UUID", field)
		}
	case TypeNumber:
		if _, ok := toNumber(value); !ok {
			return fmt.Sprintf("%s must be a number", field)
		}
	}
	return ""
}

// toNumber interprets the JSON and query-string encodings of a number and
// rejects NaN and infinities.
func toNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IntInRange returns a custom validator accepting integer values between
// min and max inclusive. Useful for pagination parameters, which arrive as
// strings from the query or as float64 from JSON bodies.
func IntInRange(min, max int) func(value any) bool {
	return func(value any) bool {
		f, ok := toNumber(value)
		if !ok || f != math.Trunc(f) {
			return false
		}
		n := int(f)
		return n >= min && n <= max
	}
}

// OneOf returns a custom validator accepting only the given string values.
func OneOf(allowed ...string) func(value any) bool {
	return func(value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}
