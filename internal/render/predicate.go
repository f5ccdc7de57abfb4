package render

import (
	"fmt"

	"github.com/zoobzio/sqlast/internal/types"
)

// VisitPredicate renders a predicate.
func (t *Translator) VisitPredicate(p types.Predicate) error {
	switch n := p.(type) {
	case nil:
		return fmt.Errorf("%w: nil predicate", types.ErrInvalidAST)
	case *types.Comparison:
		return t.hooks.RenderComparison(n.Lhs, n.Operator, n.Rhs)
	case *types.Junction:
		return t.renderJunction(n)
	case *types.Negated:
		t.AppendSQL("not(")
		if err := t.VisitPredicate(n.Predicate); err != nil {
			return err
		}
		t.AppendSQL(")")
		return nil
	case *types.Nullness:
		return t.renderNullness(n)
	case *types.BooleanExpressionPredicate:
		return t.hooks.VisitBooleanExpressionPredicate(n)
	case *types.InList:
		return t.renderInList(n)
	case *types.InSubquery:
		return t.renderInSubquery(n)
	case *types.Exists:
		if n.Negated {
			t.AppendSQL("not ")
		}
		t.AppendSQL("exists ")
		return t.renderSubquery(n.Subquery)
	case *types.Between:
		if err := t.Visit(n.Expression); err != nil {
			return err
		}
		if n.Negated {
			t.AppendSQL(" not")
		}
		t.AppendSQL(" between ")
		if err := t.Visit(n.Lower); err != nil {
			return err
		}
		t.AppendSQL(" and ")
		return t.Visit(n.Upper)
	case *types.Like:
		if err := t.Visit(n.Match); err != nil {
			return err
		}
		if n.Negated {
			t.AppendSQL(" not")
		}
		t.AppendSQL(" like ")
		if err := t.Visit(n.Pattern); err != nil {
			return err
		}
		if n.Escape != nil {
			t.AppendSQL(" escape ")
			return t.Visit(n.Escape)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown predicate %T", types.ErrInvalidAST, p)
	}
}

func (t *Translator) renderJunction(j *types.Junction) error {
	first := true
	for _, p := range j.Predicates {
		if types.IsEmpty(p) {
			continue
		}
		if !first {
			t.AppendSQL(j.Kind.SQLText())
		}
		first = false
		_, nested := p.(*types.Junction)
		if nested {
			t.AppendSQL("(")
		}
		if err := t.VisitPredicate(p); err != nil {
			return err
		}
		if nested {
			t.AppendSQL(")")
		}
	}
	if first {
		// Every member was empty: a neutral element keeps the clause valid.
		if j.Kind == types.Or {
			t.AppendSQL("1=0")
		} else {
			t.AppendSQL("1=1")
		}
	}
	return nil
}

func (t *Translator) renderNullness(n *types.Nullness) error {
	suffix := " is null"
	if n.Negated {
		suffix = " is not null"
	}
	tuple, ok := n.Expression.(*types.Tuple)
	if !ok || t.profile.Capabilities.RowValueConstructor {
		if err := t.Visit(n.Expression); err != nil {
			return err
		}
		t.AppendSQL(suffix)
		return nil
	}
	t.AppendSQL("(")
	for i, e := range types.Flatten(tuple) {
		if i > 0 {
			t.AppendSQL(" and ")
		}
		if err := t.Visit(e); err != nil {
			return err
		}
		t.AppendSQL(suffix)
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) renderInList(in *types.InList) error {
	if len(in.List) == 0 {
		if in.Negated {
			t.AppendSQL("1=1")
		} else {
			t.AppendSQL("1=0")
		}
		return nil
	}

	if tuple, ok := in.Test.(*types.Tuple); ok && !t.profile.Capabilities.RowValueInList {
		if in.Negated {
			t.AppendSQL("not")
		}
		t.AppendSQL("(")
		for i, item := range in.List {
			if i > 0 {
				t.AppendSQL(" or ")
			}
			if err := t.emulateTupleComparison(tuple, types.Equal, item); err != nil {
				return err
			}
		}
		t.AppendSQL(")")
		return nil
	}

	if err := t.Visit(in.Test); err != nil {
		return err
	}
	if in.Negated {
		t.AppendSQL(" not")
	}
	t.AppendSQL(" in (")
	if err := t.RenderCommaSeparated(in.List); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) renderInSubquery(in *types.InSubquery) error {
	if tuple, ok := in.Test.(*types.Tuple); ok && !t.profile.Capabilities.RowValueInQuantified {
		return t.emulateSubqueryRelation(tuple, in.Subquery, in.Negated)
	}
	if err := t.Visit(in.Test); err != nil {
		return err
	}
	if in.Negated {
		t.AppendSQL(" not")
	}
	t.AppendSQL(" in ")
	return t.renderSubquery(in.Subquery)
}

// RenderComparison renders <lhs> <op> <rhs>.
func (t *Translator) RenderComparison(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error {
	return t.hooks.RenderComparisonStandard(lhs, op, rhs)
}

// RenderComparisonStandard renders a comparison, emulating row values and
// IS [NOT] DISTINCT FROM where the dialect lacks them.
func (t *Translator) RenderComparisonStandard(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error {
	if tuple, ok := lhs.(*types.Tuple); ok {
		if sub, ok := rhs.(*types.Subquery); ok {
			if t.profile.Capabilities.RowValueInQuantified {
				return t.renderNativeComparison(lhs, op, rhs)
			}
			if op != types.Equal {
				return t.Unsupported("row value " + op.String() + " comparison with a subquery")
			}
			return t.emulateSubqueryRelation(tuple, sub.Query, false)
		}
		if t.profile.Capabilities.RowValueConstructor && (!isDistinctOp(op) || t.profile.Capabilities.DistinctFrom == DistinctFromNative) {
			return t.renderNativeComparison(lhs, op, rhs)
		}
		return t.emulateTupleComparison(tuple, op, rhs)
	}
	if isDistinctOp(op) {
		return t.RenderDistinctFrom(lhs, op, rhs)
	}
	return t.renderNativeComparison(lhs, op, rhs)
}

func (t *Translator) renderNativeComparison(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error {
	if err := t.Visit(lhs); err != nil {
		return err
	}
	t.AppendSQL(op.SQLText())
	return t.Visit(rhs)
}

func isDistinctOp(op types.ComparisonOperator) bool {
	return op == types.DistinctFrom || op == types.NotDistinctFrom
}

// RenderDistinctFrom renders IS [NOT] DISTINCT FROM with the dialect's strategy.
func (t *Translator) RenderDistinctFrom(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error {
	distinct := op == types.DistinctFrom
	operands := func(sep string) error {
		if err := t.Visit(lhs); err != nil {
			return err
		}
		t.AppendSQL(sep)
		return t.Visit(rhs)
	}

	switch t.profile.Capabilities.DistinctFrom {
	case DistinctFromNative:
		return operands(op.SQLText())
	case DistinctFromNullSafeEquals:
		if distinct {
			t.AppendSQL("not(")
		}
		if err := operands("<=>"); err != nil {
			return err
		}
		if distinct {
			t.AppendSQL(")")
		}
		return nil
	case DistinctFromIs:
		if distinct {
			return operands(" is not ")
		}
		return operands(" is ")
	case DistinctFromDecode:
		t.AppendSQL("decode(")
		if err := operands(","); err != nil {
			return err
		}
		if distinct {
			t.AppendSQL(",0,1)=1")
		} else {
			t.AppendSQL(",0,1)=0")
		}
		return nil
	default:
		t.AppendSQL("case when ")
		if err := operands("="); err != nil {
			return err
		}
		t.AppendSQL(" or ")
		if err := t.Visit(lhs); err != nil {
			return err
		}
		t.AppendSQL(" is null and ")
		if err := t.Visit(rhs); err != nil {
			return err
		}
		if distinct {
			t.AppendSQL(" is null then 0 else 1 end=1")
		} else {
			t.AppendSQL(" is null then 0 else 1 end=0")
		}
		return nil
	}
}

// emulateTupleComparison expands a row value comparison into scalar
// comparisons with the same three-valued result.
func (t *Translator) emulateTupleComparison(lhs *types.Tuple, op types.ComparisonOperator, rhs types.Expression) error {
	left := types.Flatten(lhs)
	right := types.Flatten(rhs)
	if len(left) != len(right) {
		return fmt.Errorf("%w: row value of %d columns compared with %d columns", types.ErrInvalidAST, len(left), len(right))
	}
	if len(left) == 1 {
		return t.hooks.RenderComparison(left[0], op, right[0])
	}

	switch op {
	case types.Equal, types.NotEqual:
		if op == types.NotEqual {
			t.AppendSQL("not")
		}
		return t.renderComponentJunction(left, right, types.Equal, " and ")
	case types.DistinctFrom:
		return t.renderComponentJunction(left, right, types.DistinctFrom, " or ")
	case types.NotDistinctFrom:
		return t.renderComponentJunction(left, right, types.NotDistinctFrom, " and ")
	default:
		return t.renderLexicographic(left, right, op, 0)
	}
}

func (t *Translator) renderComponentJunction(left, right []types.Expression, op types.ComparisonOperator, sep string) error {
	t.AppendSQL("(")
	for i := range left {
		if i > 0 {
			t.AppendSQL(sep)
		}
		if err := t.hooks.RenderComparison(left[i], op, right[i]); err != nil {
			return err
		}
	}
	t.AppendSQL(")")
	return nil
}

// renderLexicographic renders (a1<b1 or (a1=b1 and <rest>)), ending with the
// original operator on the last component.
func (t *Translator) renderLexicographic(left, right []types.Expression, op types.ComparisonOperator, i int) error {
	if i == len(left)-1 {
		return t.hooks.RenderComparison(left[i], op, right[i])
	}
	t.AppendSQL("(")
	if err := t.hooks.RenderComparison(left[i], op.Strict(), right[i]); err != nil {
		return err
	}
	t.AppendSQL(" or (")
	if err := t.hooks.RenderComparison(left[i], types.Equal, right[i]); err != nil {
		return err
	}
	t.AppendSQL(" and ")
	if err := t.renderLexicographic(left, right, op, i+1); err != nil {
		return err
	}
	t.AppendSQL("))")
	return nil
}

// emulateSubqueryRelation renders a row value IN or = against a subquery as
// [not ]exists (select 1 ... where <subquery predicate> and s1=a1 and ...).
func (t *Translator) emulateSubqueryRelation(lhs *types.Tuple, part types.QueryPart, negated bool) error {
	spec, ok := part.(*types.QuerySpec)
	if !ok || spec.HasOffset() || spec.HasFetch() {
		return t.Unsupported("row value comparison with a set operation or paged subquery")
	}
	left := types.Flatten(lhs)
	if len(left) != len(spec.Select) {
		return fmt.Errorf("%w: row value of %d columns compared with a subquery selecting %d", types.ErrInvalidAST, len(left), len(spec.Select))
	}

	correlation := make([]types.Predicate, len(left))
	for i, item := range spec.Select {
		correlation[i] = types.Compare(item.Expression, types.Equal, left[i])
	}

	exists := &types.QuerySpec{
		Select:  types.Items(types.Lit(1)),
		From:    spec.From,
		Where:   spec.Where,
		GroupBy: spec.GroupBy,
		Having:  spec.Having,
	}
	if len(spec.GroupBy) > 0 {
		exists.Having = types.AndOf(append([]types.Predicate{spec.Having}, correlation...)...)
	} else {
		exists.Where = types.AndOf(append([]types.Predicate{spec.Where}, correlation...)...)
	}

	if negated {
		t.AppendSQL("not ")
	}
	t.AppendSQL("exists ")
	return t.renderSubquery(exists)
}
