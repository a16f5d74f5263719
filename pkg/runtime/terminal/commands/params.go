package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParams turns repeated key=value flags into an override map. Values
// made of digits only are coerced to int so they bind to int parameters.
func ParseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			params[key] = n
		} else {
			params[key] = value
		}
	}
	return params, nil
}
