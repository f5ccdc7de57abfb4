package types

// Predicate is a boolean-valued expression usable in WHERE, ON and HAVING.
type Predicate interface {
	Expression
	predicateNode()
}

// Comparison is <lhs> <operator> <rhs>. Either side may be a Tuple.
type Comparison struct {
	Lhs      Expression
	Rhs      Expression
	Operator ComparisonOperator
}

// Junction combines predicates with AND or OR.
type Junction struct {
	Predicates []Predicate
	Kind       JunctionKind
}

// Negated is NOT(<predicate>).
type Negated struct {
	Predicate Predicate
}

// Nullness is <expression> IS [NOT] NULL.
type Nullness struct {
	Expression Expression
	Negated    bool
}

// BooleanExpressionPredicate uses a boolean-typed expression as a predicate.
type BooleanExpressionPredicate struct {
	Expression Expression
	Negated    bool
}

// InList is <test> [NOT] IN (<list>).
type InList struct {
	Test    Expression
	List    []Expression
	Negated bool
}

// InSubquery is <test> [NOT] IN (<subquery>).
type InSubquery struct {
	Test     Expression
	Subquery QueryPart
	Negated  bool
}

// Exists is [NOT] EXISTS (<subquery>).
type Exists struct {
	Subquery QueryPart
	Negated  bool
}

// Between is <expression> [NOT] BETWEEN <lower> AND <upper>.
type Between struct {
	Expression Expression
	Lower      Expression
	Upper      Expression
	Negated    bool
}

// Like is <match> [NOT] LIKE <pattern> [ESCAPE <escape>].
type Like struct {
	Match   Expression
	Pattern Expression
	Escape  Expression
	Negated bool
}

func (*Comparison) expressionNode()                 {}
func (*Junction) expressionNode()                   {}
func (*Negated) expressionNode()                    {}
func (*Nullness) expressionNode()                   {}
func (*BooleanExpressionPredicate) expressionNode() {}
func (*InList) expressionNode()                     {}
func (*InSubquery) expressionNode()                 {}
func (*Exists) expressionNode()                     {}
func (*Between) expressionNode()                    {}
func (*Like) expressionNode()                       {}

func (*Comparison) predicateNode()                 {}
func (*Junction) predicateNode()                   {}
func (*Negated) predicateNode()                    {}
func (*Nullness) predicateNode()                   {}
func (*BooleanExpressionPredicate) predicateNode() {}
func (*InList) predicateNode()                     {}
func (*InSubquery) predicateNode()                 {}
func (*Exists) predicateNode()                     {}
func (*Between) predicateNode()                    {}
func (*Like) predicateNode()                       {}

// Compare builds a Comparison.
func Compare(lhs Expression, op ComparisonOperator, rhs Expression) *Comparison {
	return &Comparison{Lhs: lhs, Operator: op, Rhs: rhs}
}

// AndOf combines predicates with AND, dropping nils.
// It returns nil when nothing remains and the predicate itself when one remains.
func AndOf(predicates ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range predicates {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &Junction{Kind: And, Predicates: kept}
	}
}

// IsEmpty reports whether a predicate renders to nothing.
func IsEmpty(p Predicate) bool {
	if p == nil {
		return true
	}
	if j, ok := p.(*Junction); ok {
		for _, inner := range j.Predicates {
			if !IsEmpty(inner) {
				return false
			}
		}
		return true
	}
	return false
}
