package domain

// ParamKind classifies how a procedure parameter is resolved before a call.
type ParamKind string

const (
	ParamKindDateTime ParamKind = "datetime"
	ParamKindInt      ParamKind = "int"
	ParamKindOther    ParamKind = "other"
)

// ParamRole optionally pins a datetime parameter to one bound of the period
// being executed. When empty, the binder falls back to name matching and
// then to positional assignment.
type ParamRole string

const (
	RoleNone  ParamRole = ""
	RoleStart ParamRole = "start"
	RoleEnd   ParamRole = "end"
)

// ParameterSpec declares one positional parameter of a procedure.
// Positions are 1-based and densely cover 1..len(params).
type ParameterSpec struct {
	Name     string
	Kind     ParamKind
	Position int
	Role     ParamRole
	Default  any
}

// ProcedureSchema is the static declaration of one extractable procedure.
// Loaded once at startup and read-only afterwards. A schema carrying a
// Table override runs as a ranged scan on DateColumn instead of a routine
// call.
type ProcedureSchema struct {
	Name         string
	Params       []ParameterSpec
	OutputFolder string
	Table        string
	DateColumn   string
}

// RangedScan reports whether the schema routes to the table-scan execution
// mode rather than a routine call.
func (s ProcedureSchema) RangedScan() bool {
	return s.Table != ""
}
