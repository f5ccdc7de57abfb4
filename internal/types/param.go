package types

// Parameter is a bind slot in the rendered SQL.
// Parameters are compared by identity: the same *Parameter used twice
// produces two slots that receive the same value.
type Parameter struct {
	Name string
	Type SQLType
}

func (*Parameter) expressionNode() {}

// Param is shorthand for a typed Parameter.
func Param(name string, t SQLType) *Parameter {
	return &Parameter{Name: name, Type: t}
}

// ParameterRenderingMode controls how parameters are written into SQL.
type ParameterRenderingMode int

const (
	// RenderDefault writes a placeholder for every parameter.
	RenderDefault ParameterRenderingMode = iota
	// RenderNoPlainParameter wraps every placeholder in a cast.
	RenderNoPlainParameter
	// RenderInline writes parameter values as literals.
	RenderInline
)

func (m ParameterRenderingMode) String() string {
	switch m {
	case RenderNoPlainParameter:
		return "no_plain_parameter"
	case RenderInline:
		return "inline"
	default:
		return "default"
	}
}
