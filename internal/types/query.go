package types

// QueryPart is either a single query specification or a set operation over query parts.
type QueryPart interface {
	queryPartNode()
	// SortSpecs returns the ORDER BY items of the part.
	SortSpecs() []SortSpec
	// Paging returns the OFFSET/FETCH of the part.
	Paging() OffsetFetch
}

// SortSpec is one ORDER BY item.
type SortSpec struct {
	Expression Expression
	Descending bool
}

// OffsetFetch holds the row limiting of a query part.
// A nil Offset or Fetch means the bound is absent.
type OffsetFetch struct {
	Offset    Expression
	Fetch     Expression
	FetchType FetchClauseType
}

// HasOffset reports whether an offset is present.
func (o OffsetFetch) HasOffset() bool {
	return o.Offset != nil
}

// HasFetch reports whether a fetch bound is present.
func (o OffsetFetch) HasFetch() bool {
	return o.Fetch != nil
}

// SelectItem is one projected expression with an optional alias.
type SelectItem struct {
	Expression Expression
	Alias      string
}

// QuerySpec is a single SELECT.
type QuerySpec struct {
	Where   Predicate
	Having  Predicate
	Select  []SelectItem
	From    []*TableGroup
	GroupBy []Expression
	OrderBy []SortSpec
	OffsetFetch
	Distinct bool
}

// QueryGroup combines query parts with a set operator.
type QueryGroup struct {
	Parts   []QueryPart
	OrderBy []SortSpec
	OffsetFetch
	SetOperator SetOperator
}

func (*QuerySpec) queryPartNode()  {}
func (*QueryGroup) queryPartNode() {}

// SortSpecs returns the ORDER BY items.
func (q *QuerySpec) SortSpecs() []SortSpec { return q.OrderBy }

// Paging returns the OFFSET/FETCH of the spec.
func (q *QuerySpec) Paging() OffsetFetch { return q.OffsetFetch }

// SortSpecs returns the ORDER BY items.
func (q *QueryGroup) SortSpecs() []SortSpec { return q.OrderBy }

// Paging returns the OFFSET/FETCH of the group.
func (q *QueryGroup) Paging() OffsetFetch { return q.OffsetFetch }

// FirstSpec returns the left-most query specification of a query part.
func FirstSpec(part QueryPart) *QuerySpec {
	switch p := part.(type) {
	case *QuerySpec:
		return p
	case *QueryGroup:
		if len(p.Parts) == 0 {
			return nil
		}
		return FirstSpec(p.Parts[0])
	default:
		return nil
	}
}

// Arity returns the number of columns a query part projects.
func Arity(part QueryPart) int {
	spec := FirstSpec(part)
	if spec == nil {
		return 0
	}
	return len(spec.Select)
}

// Items wraps expressions into unaliased select items.
func Items(exprs ...Expression) []SelectItem {
	items := make([]SelectItem, len(exprs))
	for i, e := range exprs {
		items[i] = SelectItem{Expression: e}
	}
	return items
}

// Asc is shorthand for an ascending sort spec.
func Asc(e Expression) SortSpec {
	return SortSpec{Expression: e}
}

// Desc is shorthand for a descending sort spec.
func Desc(e Expression) SortSpec {
	return SortSpec{Expression: e, Descending: true}
}
