package api

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// The helpers below read values out of a validated input map. Validation runs
// before any handler, so parse failures on validated fields cannot happen;
// the helpers still degrade to zero values rather than panicking.

func stringFromInput(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func uuidFromInput(input map[string]any, key string) (uuid.UUID, bool) {
	s, ok := input[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// intFromInput handles both decoded JSON numbers (float64) and query-string
// values (string).
func intFromInput(input map[string]any, key string, fallback int) int {
	switch v := input[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}
		return n
	default:
		return fallback
	}
}

func timeFromInput(input map[string]any, key string) *time.Time {
	s, ok := input[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// isRFC3339 is a custom validator for timestamp fields.
func isRFC3339(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
