package common

import (
	"fmt"
	"math"
	"strings"
)

// StringArg returns the named string argument, trimmed. A missing or
// non-string value yields "".
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// IntArg returns the named numeric argument. JSON numbers arrive as
// float64; fractional values are rejected. A missing argument yields 0.
func IntArg(args map[string]any, name string) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}
