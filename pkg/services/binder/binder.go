// Package binder resolves a procedure's declared parameter schema plus
// caller-supplied overrides into the positional argument list passed to the
// executor.
package binder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
)

// MissingParameterError reports an int parameter with neither an override
// nor a schema default.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("parameter %q has no override and no default", e.Name)
}

// ParameterTypeError reports an override value that cannot be coerced to the
// parameter's declared kind.
type ParameterTypeError struct {
	Name  string
	Value any
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("parameter %q: value %v is not an integer", e.Name, e.Value)
}

// UnresolvedParameterError reports slots still unset after both resolution
// passes. This is the binder's sole terminal check.
type UnresolvedParameterError struct {
	Names []string
}

func (e *UnresolvedParameterError) Error() string {
	return fmt.Sprintf("unresolved parameters: %s", strings.Join(e.Names, ", "))
}

var (
	startHints = []string{"inicial", "inicio", "start"}
	endHints   = []string{"final", "fim", "end"}
)

// Bind resolves the schema's parameters against one monthly period and the
// caller's overrides, returning the fully populated positional argument
// list.
//
// Datetime parameters resolve by explicit role tag first, then by name
// hints, then positionally: the first still-unresolved datetime slot
// receives the period start if no start was assigned yet, otherwise the
// period end. Int parameters take the override or the default, both coerced.
// Other parameters take the override, then the default, else stay unset.
func Bind(schema domain.ProcedureSchema, period domain.MonthlyPeriod, overrides map[string]any) ([]any, error) {
	args := make([]any, len(schema.Params))
	filled := make([]bool, len(schema.Params))

	slot := func(p domain.ParameterSpec) (int, error) {
		idx := p.Position - 1
		if idx < 0 || idx >= len(args) {
			return 0, fmt.Errorf("parameter %q: position %d out of range 1..%d", p.Name, p.Position, len(args))
		}
		return idx, nil
	}

	startAssigned := false

	// Pass 1: role tags, name hints, overrides and defaults.
	for _, p := range schema.Params {
		idx, err := slot(p)
		if err != nil {
			return nil, err
		}

		switch p.Kind {
		case domain.ParamKindDateTime:
			switch {
			case p.Role == domain.RoleStart || (p.Role == domain.RoleNone && hasHint(p.Name, startHints)):
				args[idx], filled[idx] = period.Start, true
				startAssigned = true
			case p.Role == domain.RoleEnd || (p.Role == domain.RoleNone && hasHint(p.Name, endHints)):
				args[idx], filled[idx] = period.End, true
			}
		case domain.ParamKindInt:
			if v, ok := overrides[p.Name]; ok {
				n, ok := toInt(v)
				if !ok {
					return nil, &ParameterTypeError{Name: p.Name, Value: v}
				}
				args[idx], filled[idx] = n, true
			} else if p.Default != nil {
				// defaults come from YAML and may arrive as strings
				n, ok := toInt(p.Default)
				if !ok {
					return nil, &ParameterTypeError{Name: p.Name, Value: p.Default}
				}
				args[idx], filled[idx] = n, true
			} else {
				return nil, &MissingParameterError{Name: p.Name}
			}
		default:
			if v, ok := overrides[p.Name]; ok {
				args[idx], filled[idx] = v, true
			} else if p.Default != nil {
				args[idx], filled[idx] = p.Default, true
			}
		}
	}

	// Pass 2: positional fallback for datetime slots no hint resolved.
	for _, p := range schema.Params {
		if p.Kind != domain.ParamKindDateTime {
			continue
		}
		idx, err := slot(p)
		if err != nil {
			return nil, err
		}
		if filled[idx] {
			continue
		}
		if !startAssigned {
			args[idx], filled[idx] = period.Start, true
			startAssigned = true
		} else {
			args[idx], filled[idx] = period.End, true
		}
	}

	var unresolved []string
	for i, ok := range filled {
		if !ok {
			unresolved = append(unresolved, paramAt(schema, i+1))
		}
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedParameterError{Names: unresolved}
	}

	return args, nil
}

func hasHint(name string, hints []string) bool {
	lower := strings.ToLower(name)
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func paramAt(schema domain.ProcedureSchema, position int) string {
	for _, p := range schema.Params {
		if p.Position == position {
			return p.Name
		}
	}
	return fmt.Sprintf("position %d", position)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
