package types

// ComparisonOperator represents a binary comparison between two expressions.
type ComparisonOperator int

const (
	Equal ComparisonOperator = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	DistinctFrom
	NotDistinctFrom
)

// SQLText returns the operator as it appears between two operands.
func (op ComparisonOperator) SQLText() string {
	switch op {
	case Equal:
		return "="
	case NotEqual:
		return "<>"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case DistinctFrom:
		return " is distinct from "
	case NotDistinctFrom:
		return " is not distinct from "
	default:
		return "="
	}
}

// String returns a readable operator name.
func (op ComparisonOperator) String() string {
	switch op {
	case DistinctFrom:
		return "is distinct from"
	case NotDistinctFrom:
		return "is not distinct from"
	default:
		return op.SQLText()
	}
}

// Negate returns the operator producing the logical complement for non-null operands.
func (op ComparisonOperator) Negate() ComparisonOperator {
	switch op {
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case LessThan:
		return GreaterThanOrEqual
	case LessThanOrEqual:
		return GreaterThan
	case GreaterThan:
		return LessThanOrEqual
	case GreaterThanOrEqual:
		return LessThan
	case DistinctFrom:
		return NotDistinctFrom
	default:
		return DistinctFrom
	}
}

// Strict drops the "or equal" part of an ordering operator.
// Non-ordering operators are returned unchanged.
func (op ComparisonOperator) Strict() ComparisonOperator {
	switch op {
	case LessThanOrEqual:
		return LessThan
	case GreaterThanOrEqual:
		return GreaterThan
	default:
		return op
	}
}

// IsOrdering reports whether the operator is one of <, <=, >, >=.
func (op ComparisonOperator) IsOrdering() bool {
	switch op {
	case LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual:
		return true
	default:
		return false
	}
}

// JoinType represents the kind of a SQL join.
type JoinType int

const (
	InnerJoin JoinType = iota
	CrossJoin
	LeftJoin
	RightJoin
	FullJoin
)

// Text returns the join keyword prefix, e.g. "left " for a left join.
func (j JoinType) Text() string {
	switch j {
	case CrossJoin:
		return "cross "
	case LeftJoin:
		return "left "
	case RightJoin:
		return "right "
	case FullJoin:
		return "full "
	default:
		return "inner "
	}
}

// SetOperator combines the members of a query group.
type SetOperator int

const (
	Union SetOperator = iota
	UnionAll
	Intersect
	IntersectAll
	Except
	ExceptAll
)

// SQLText returns the set operator keyword.
func (s SetOperator) SQLText() string {
	switch s {
	case UnionAll:
		return "union all"
	case Intersect:
		return "intersect"
	case IntersectAll:
		return "intersect all"
	case Except:
		return "except"
	case ExceptAll:
		return "except all"
	default:
		return "union"
	}
}

// ArithmeticOperator is a binary arithmetic operator.
type ArithmeticOperator string

const (
	Add      ArithmeticOperator = "+"
	Subtract ArithmeticOperator = "-"
	Multiply ArithmeticOperator = "*"
	Divide   ArithmeticOperator = "/"
)

// JunctionKind combines predicates.
type JunctionKind int

const (
	And JunctionKind = iota
	Or
)

// SQLText returns the junction keyword.
func (k JunctionKind) SQLText() string {
	if k == Or {
		return " or "
	}
	return " and "
}

// SummarizationKind is the grouping extension of a summarization.
type SummarizationKind int

const (
	Rollup SummarizationKind = iota
	Cube
)

// SQLText returns the grouping function name.
func (k SummarizationKind) SQLText() string {
	if k == Cube {
		return "cube"
	}
	return "rollup"
}

// FetchClauseType describes the kind of row limiting requested.
type FetchClauseType int

const (
	RowsOnly FetchClauseType = iota
	Percent
	WithTies
	PercentWithTies
)

// String returns the fetch clause suffix without the leading keyword.
func (f FetchClauseType) String() string {
	switch f {
	case Percent:
		return "percent rows only"
	case WithTies:
		return "rows with ties"
	case PercentWithTies:
		return "percent rows with ties"
	default:
		return "rows only"
	}
}

// IsPercent reports whether the fetch value is a percentage.
func (f FetchClauseType) IsPercent() bool {
	return f == Percent || f == PercentWithTies
}

// HasTies reports whether rows tied with the last fetched row are included.
func (f FetchClauseType) HasTies() bool {
	return f == WithTies || f == PercentWithTies
}
