package types

// Tuple is a row-value constructor: an ordered list of expressions compared as a unit.
type Tuple struct {
	Expressions []Expression
}

// CaseWhen is one arm of a searched CASE.
type CaseWhen struct {
	Predicate Predicate
	Result    Expression
}

// CaseSearched is CASE WHEN <predicate> THEN <result> ... ELSE <result> END.
type CaseSearched struct {
	Else Expression
	Type SQLType
	When []CaseWhen
}

// CaseSimpleWhen is one arm of a simple CASE.
type CaseSimpleWhen struct {
	Value  Expression
	Result Expression
}

// CaseSimple is CASE <operand> WHEN <value> THEN <result> ... ELSE <result> END.
type CaseSimple struct {
	Operand Expression
	Else    Expression
	Type    SQLType
	When    []CaseSimpleWhen
}

// Summarization is a grouping extension such as ROLLUP(a, b).
type Summarization struct {
	Kind      SummarizationKind
	Groupings []Expression
}

// Function is a plain function call.
type Function struct {
	Name string
	Args []Expression
	Type SQLType
}

// Over applies a window to a function.
type Over struct {
	Function  *Function
	Partition []Expression
	OrderBy   []SortSpec
}

// Cast converts an expression to a type.
type Cast struct {
	Expression Expression
	Type       SQLType
}

// Arithmetic is a binary arithmetic expression.
type Arithmetic struct {
	Lhs      Expression
	Rhs      Expression
	Operator ArithmeticOperator
}

// Subquery is a query part used as a scalar or row value.
type Subquery struct {
	Query QueryPart
}

func (*Tuple) expressionNode()         {}
func (*CaseSearched) expressionNode()  {}
func (*CaseSimple) expressionNode()    {}
func (*Summarization) expressionNode() {}
func (*Function) expressionNode()      {}
func (*Over) expressionNode()          {}
func (*Cast) expressionNode()          {}
func (*Arithmetic) expressionNode()    {}
func (*Subquery) expressionNode()      {}

// Results returns every result arm of a searched CASE, the else arm last.
func (c *CaseSearched) Results() []Expression {
	out := make([]Expression, 0, len(c.When)+1)
	for _, w := range c.When {
		out = append(out, w.Result)
	}
	if c.Else != nil {
		out = append(out, c.Else)
	}
	return out
}

// Results returns every result arm of a simple CASE, the else arm last.
func (c *CaseSimple) Results() []Expression {
	out := make([]Expression, 0, len(c.When)+1)
	for _, w := range c.When {
		out = append(out, w.Result)
	}
	if c.Else != nil {
		out = append(out, c.Else)
	}
	return out
}

// AllParameters reports whether every expression is a bare parameter.
// An empty list reports false.
func AllParameters(exprs []Expression) bool {
	if len(exprs) == 0 {
		return false
	}
	for _, e := range exprs {
		if _, ok := e.(*Parameter); !ok {
			return false
		}
	}
	return true
}

// Flatten expands nested tuples into their leaf expressions.
// A non-tuple expression yields a single element.
func Flatten(e Expression) []Expression {
	t, ok := e.(*Tuple)
	if !ok {
		return []Expression{e}
	}
	var out []Expression
	for _, inner := range t.Expressions {
		out = append(out, Flatten(inner)...)
	}
	return out
}

// TypeOf resolves the SQL type an expression produces.
func TypeOf(e Expression) SQLType {
	switch n := e.(type) {
	case *ColumnReference:
		return n.Type
	case *Literal:
		return n.Type
	case *Parameter:
		return n.Type
	case *Star, *Positional, *Tuple, *Summarization:
		return TypeUnknown
	case *CaseSearched:
		if n.Type != TypeUnknown {
			return n.Type
		}
		return firstKnownType(n.Results())
	case *CaseSimple:
		if n.Type != TypeUnknown {
			return n.Type
		}
		return firstKnownType(n.Results())
	case *Function:
		return n.Type
	case *Over:
		return n.Function.Type
	case *Cast:
		return n.Type
	case *Arithmetic:
		if t := TypeOf(n.Lhs); t != TypeUnknown {
			return t
		}
		return TypeOf(n.Rhs)
	case *Subquery:
		if spec, ok := n.Query.(*QuerySpec); ok && len(spec.Select) == 1 {
			return TypeOf(spec.Select[0].Expression)
		}
		return TypeUnknown
	case Predicate:
		return TypeBoolean
	default:
		return TypeUnknown
	}
}

func firstKnownType(exprs []Expression) SQLType {
	for _, e := range exprs {
		if t := TypeOf(e); t != TypeUnknown {
			return t
		}
	}
	return TypeUnknown
}
