// Package config loads the declarative procedure schemas the batch runs
// against. The file is read once at startup and the registry is read-only
// afterwards.
package config

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var qualifiedNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

type procedureFile struct {
	Procedures []procedureEntry `mapstructure:"procedures" validate:"required,min=1,dive"`
}

type procedureEntry struct {
	Name         string       `mapstructure:"name" validate:"required"`
	Params       []paramEntry `mapstructure:"params" validate:"dive"`
	OutputFolder string       `mapstructure:"output_folder"`
	Table        string       `mapstructure:"table"`
	DateColumn   string       `mapstructure:"date_column"`
}

type paramEntry struct {
	Name     string `mapstructure:"name" validate:"required"`
	Type     string `mapstructure:"type" validate:"required,oneof=datetime int other"`
	Position int    `mapstructure:"position" validate:"required,min=1"`
	Role     string `mapstructure:"role" validate:"omitempty,oneof=start end"`
	Default  any    `mapstructure:"default"`
}

// Registry holds the loaded procedure schemas keyed by name.
type Registry struct {
	schemas map[string]domain.ProcedureSchema
	order   []string
}

func NewRegistry(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file procedureFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse procedure config: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid procedure config: %w", err)
	}

	r := &Registry{schemas: make(map[string]domain.ProcedureSchema, len(file.Procedures))}
	for _, entry := range file.Procedures {
		schema, err := toSchema(entry)
		if err != nil {
			return nil, fmt.Errorf("procedure %q: %w", entry.Name, err)
		}
		if _, dup := r.schemas[schema.Name]; dup {
			return nil, fmt.Errorf("procedure %q declared twice", schema.Name)
		}
		r.schemas[schema.Name] = schema
		r.order = append(r.order, schema.Name)
	}
	return r, nil
}

// Procedures lists configured procedure names in declaration order.
func (r *Registry) Procedures() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the schema for one procedure.
func (r *Registry) Get(name string) (domain.ProcedureSchema, error) {
	schema, ok := r.schemas[name]
	if !ok {
		return domain.ProcedureSchema{}, fmt.Errorf("procedure %q not found in configuration", name)
	}
	return schema, nil
}

func toSchema(entry procedureEntry) (domain.ProcedureSchema, error) {
	if !qualifiedNamePattern.MatchString(entry.Name) {
		return domain.ProcedureSchema{}, fmt.Errorf("name is not a valid qualified identifier")
	}
	if entry.Table != "" {
		if !qualifiedNamePattern.MatchString(entry.Table) {
			return domain.ProcedureSchema{}, fmt.Errorf("table %q is not a valid identifier", entry.Table)
		}
		if entry.DateColumn == "" || !qualifiedNamePattern.MatchString(entry.DateColumn) {
			return domain.ProcedureSchema{}, fmt.Errorf("table override requires a valid date_column")
		}
	}
	if err := checkPositions(entry.Params); err != nil {
		return domain.ProcedureSchema{}, err
	}

	schema := domain.ProcedureSchema{
		Name:         entry.Name,
		OutputFolder: entry.OutputFolder,
		Table:        entry.Table,
		DateColumn:   entry.DateColumn,
	}
	if schema.OutputFolder == "" {
		schema.OutputFolder = entry.Name
	}
	for _, p := range entry.Params {
		schema.Params = append(schema.Params, domain.ParameterSpec{
			Name:     p.Name,
			Kind:     domain.ParamKind(p.Type),
			Position: p.Position,
			Role:     domain.ParamRole(p.Role),
			Default:  p.Default,
		})
	}
	return schema, nil
}

// checkPositions verifies positions densely cover 1..len(params) with no
// duplicates.
func checkPositions(params []paramEntry) error {
	positions := make([]int, 0, len(params))
	for _, p := range params {
		positions = append(positions, p.Position)
	}
	sort.Ints(positions)
	for i, pos := range positions {
		if pos != i+1 {
			return fmt.Errorf("param positions must densely cover 1..%d, got %v", len(params), positions)
		}
	}
	return nil
}
