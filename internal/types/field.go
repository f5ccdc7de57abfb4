package types

// SQLType is the resolved JDBC-like type of an expression.
type SQLType int

const (
	TypeUnknown SQLType = iota
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeDouble
	TypeVarchar
	TypeChar
	TypeBoolean
	TypeDate
	TypeTime
	TypeTimestamp
	TypeXML
	TypeBinary
	TypeUUID
)

var sqlTypeNames = map[SQLType]string{
	TypeUnknown:   "unknown",
	TypeInteger:   "integer",
	TypeBigInt:    "bigint",
	TypeDecimal:   "decimal",
	TypeDouble:    "double",
	TypeVarchar:   "varchar",
	TypeChar:      "char",
	TypeBoolean:   "boolean",
	TypeDate:      "date",
	TypeTime:      "time",
	TypeTimestamp: "timestamp",
	TypeXML:       "xml",
	TypeBinary:    "binary",
	TypeUUID:      "uuid",
}

func (t SQLType) String() string {
	if name, ok := sqlTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseSQLType maps a type name to a SQLType. Unknown names yield TypeUnknown.
func ParseSQLType(name string) SQLType {
	for t, n := range sqlTypeNames {
		if n == name {
			return t
		}
	}
	return TypeUnknown
}

// Expression is any node that produces a value.
// This is exported from the internal package so dialects can use it,
// but external users cannot import this package.
type Expression interface {
	expressionNode()
}

// ColumnReference is a column bound to a table alias.
type ColumnReference struct {
	Qualifier string
	Column    string
	Type      SQLType
}

// Literal is a constant value rendered inline.
type Literal struct {
	Value any
	Type  SQLType
}

// Star is the "*" selection, optionally qualified.
type Star struct {
	Qualifier string
}

// Positional references a select item by its 1-based position.
type Positional struct {
	Index int
}

func (*ColumnReference) expressionNode() {}
func (*Literal) expressionNode()         {}
func (*Star) expressionNode()            {}
func (*Positional) expressionNode()      {}

// Col is shorthand for a ColumnReference with unknown type.
func Col(qualifier, column string) *ColumnReference {
	return &ColumnReference{Qualifier: qualifier, Column: column}
}

// Lit is shorthand for a Literal whose type is inferred from the Go value.
func Lit(v any) *Literal {
	return &Literal{Value: v, Type: inferType(v)}
}

func inferType(v any) SQLType {
	switch v.(type) {
	case int, int8, int16, int32, uint8, uint16:
		return TypeInteger
	case int64, uint32, uint64, uint:
		return TypeBigInt
	case float32, float64:
		return TypeDouble
	case string:
		return TypeVarchar
	case bool:
		return TypeBoolean
	case []byte:
		return TypeBinary
	default:
		return TypeUnknown
	}
}
