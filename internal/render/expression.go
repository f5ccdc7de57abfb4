package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zoobzio/sqlast/internal/types"
)

// Visit renders any expression node.
func (t *Translator) Visit(e types.Expression) error {
	switch n := e.(type) {
	case nil:
		return fmt.Errorf("%w: nil expression", types.ErrInvalidAST)
	case *types.ColumnReference:
		if n.Qualifier != "" {
			t.AppendSQL(t.Identifier(n.Qualifier))
			t.AppendSQL(".")
		}
		t.AppendSQL(t.Identifier(n.Column))
		return nil
	case *types.Literal:
		return t.RenderLiteral(n)
	case *types.Parameter:
		return t.RenderParameter(n)
	case *types.Star:
		if n.Qualifier != "" {
			t.AppendSQL(t.Identifier(n.Qualifier))
			t.AppendSQL(".")
		}
		t.AppendSQL("*")
		return nil
	case *types.Positional:
		t.AppendSQL(strconv.Itoa(n.Index))
		return nil
	case *types.Tuple:
		t.AppendSQL("(")
		if err := t.RenderCommaSeparated(n.Expressions); err != nil {
			return err
		}
		t.AppendSQL(")")
		return nil
	case *types.CaseSearched:
		return t.hooks.VisitCaseSearched(n, t.Visit)
	case *types.CaseSimple:
		return t.hooks.VisitCaseSimple(n, t.Visit)
	case *types.Summarization:
		return t.renderSummarization(n)
	case *types.Function:
		return t.renderFunction(n)
	case *types.Over:
		return t.renderOver(n)
	case *types.Cast:
		t.AppendSQL("cast(")
		if err := t.Visit(n.Expression); err != nil {
			return err
		}
		t.AppendSQL(" as ")
		t.AppendSQL(t.profile.Syntax.CastType(n.Type))
		t.AppendSQL(")")
		return nil
	case *types.Arithmetic:
		return t.renderArithmetic(n)
	case *types.Subquery:
		return t.renderSubquery(n.Query)
	case types.Predicate:
		return t.VisitPredicate(n)
	default:
		return fmt.Errorf("%w: unknown expression %T", types.ErrInvalidAST, e)
	}
}

func (t *Translator) renderFunction(f *types.Function) error {
	t.AppendSQL(f.Name)
	t.AppendSQL("(")
	if err := t.RenderCommaSeparated(f.Args); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) renderOver(o *types.Over) error {
	if !t.profile.Capabilities.WindowFunctions {
		return t.Unsupported("window functions")
	}
	if err := t.renderFunction(o.Function); err != nil {
		return err
	}
	t.AppendSQL(" over(")
	if len(o.Partition) > 0 {
		t.AppendSQL("partition by ")
		if err := t.RenderCommaSeparated(o.Partition); err != nil {
			return err
		}
	}
	if len(o.OrderBy) > 0 {
		if len(o.Partition) > 0 {
			t.AppendSQL(" ")
		}
		t.AppendSQL("order by ")
		if err := t.renderSortItems(o.OrderBy); err != nil {
			return err
		}
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) renderArithmetic(a *types.Arithmetic) error {
	for i, side := range []types.Expression{a.Lhs, a.Rhs} {
		if i == 1 {
			t.AppendSQL(string(a.Operator))
		}
		_, nested := side.(*types.Arithmetic)
		if nested {
			t.AppendSQL("(")
		}
		if err := t.Visit(side); err != nil {
			return err
		}
		if nested {
			t.AppendSQL(")")
		}
	}
	return nil
}

func (t *Translator) renderSummarization(s *types.Summarization) error {
	if !t.profile.Capabilities.Summarization {
		return t.Unsupported("summarization (" + s.Kind.SQLText() + ")")
	}
	t.AppendSQL(s.Kind.SQLText())
	t.AppendSQL("(")
	if err := t.RenderCommaSeparated(s.Groupings); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

// renderSubquery renders a parenthesized query part. A subquery is never
// part of the recursive member it appears in.
func (t *Translator) renderSubquery(part types.QueryPart) error {
	saved := t.inRecursivePart
	t.inRecursivePart = false
	defer func() { t.inRecursivePart = saved }()

	t.AppendSQL("(")
	if err := t.renderQueryPart(part); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) renderSortItems(specs []types.SortSpec) error {
	for i, s := range specs {
		if i > 0 {
			t.AppendSQL(",")
		}
		if err := t.Visit(s.Expression); err != nil {
			return err
		}
		if s.Descending {
			t.AppendSQL(" desc")
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Default hook implementations
// ---------------------------------------------------------------------------

// RenderSelectExpression renders one select item.
func (t *Translator) RenderSelectExpression(e types.Expression) error {
	return t.hooks.RenderExpressionAsClauseItem(e)
}

// RenderExpressionAsClauseItem renders an expression where a value is
// expected. Predicates become CASE expressions unless the dialect accepts
// them as values.
func (t *Translator) RenderExpressionAsClauseItem(e types.Expression) error {
	p, ok := e.(types.Predicate)
	if !ok || t.profile.Capabilities.PredicateAsExpression {
		return t.Visit(e)
	}
	t.AppendSQL("case when ")
	if err := t.VisitPredicate(p); err != nil {
		return err
	}
	t.AppendSQL(" then ")
	t.AppendSQL(t.profile.Syntax.TrueLiteral)
	t.AppendSQL(" else ")
	t.AppendSQL(t.profile.Syntax.FalseLiteral)
	t.AppendSQL(" end")
	return nil
}

// VisitBooleanExpressionPredicate renders <expr>=true, or <expr>=false when negated.
func (t *Translator) VisitBooleanExpressionPredicate(p *types.BooleanExpressionPredicate) error {
	if err := t.Visit(p.Expression); err != nil {
		return err
	}
	t.AppendSQL("=")
	if p.Negated {
		t.AppendSQL(t.profile.Syntax.FalseLiteral)
	} else {
		t.AppendSQL(t.profile.Syntax.TrueLiteral)
	}
	return nil
}

// VisitCaseSearched renders a searched CASE, passing every result arm
// through resultRenderer.
func (t *Translator) VisitCaseSearched(c *types.CaseSearched, resultRenderer func(types.Expression) error) error {
	t.AppendSQL("case")
	for _, w := range c.When {
		t.AppendSQL(" when ")
		if err := t.VisitPredicate(w.Predicate); err != nil {
			return err
		}
		t.AppendSQL(" then ")
		if err := resultRenderer(w.Result); err != nil {
			return err
		}
	}
	if c.Else != nil {
		t.AppendSQL(" else ")
		if err := resultRenderer(c.Else); err != nil {
			return err
		}
	}
	t.AppendSQL(" end")
	return nil
}

// VisitCaseSimple renders a simple CASE, passing every result arm through
// resultRenderer.
func (t *Translator) VisitCaseSimple(c *types.CaseSimple, resultRenderer func(types.Expression) error) error {
	t.AppendSQL("case ")
	if err := t.Visit(c.Operand); err != nil {
		return err
	}
	for _, w := range c.When {
		t.AppendSQL(" when ")
		if err := t.Visit(w.Value); err != nil {
			return err
		}
		t.AppendSQL(" then ")
		if err := resultRenderer(w.Result); err != nil {
			return err
		}
	}
	if c.Else != nil {
		t.AppendSQL(" else ")
		if err := resultRenderer(c.Else); err != nil {
			return err
		}
	}
	t.AppendSQL(" end")
	return nil
}

// RenderPartitionItem renders one GROUP BY item. A literal stands for the
// empty grouping set.
func (t *Translator) RenderPartitionItem(e types.Expression) error {
	switch n := e.(type) {
	case *types.Literal:
		t.AppendSQL(t.profile.Syntax.EmptyGrouping)
		return nil
	case *types.Summarization:
		return t.renderSummarization(n)
	default:
		return t.Visit(e)
	}
}

// ---------------------------------------------------------------------------
// Temporal values
// ---------------------------------------------------------------------------

func timeValue(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case *time.Time:
		if tv == nil {
			return time.Time{}, false
		}
		return *tv, true
	default:
		return time.Time{}, false
	}
}

func formatTemporal(tm time.Time, typ types.SQLType) string {
	switch typ {
	case types.TypeDate:
		return tm.Format("2006-01-02")
	case types.TypeTime:
		return tm.Format("15:04:05")
	default:
		if tm.Nanosecond() != 0 {
			return tm.Format("2006-01-02 15:04:05.999999999")
		}
		return tm.Format("2006-01-02 15:04:05")
	}
}
