package db2

import (
	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// translator overrides the rendering steps where DB2 departs from ANSI.
type translator struct {
	*render.Translator
	version render.Version

	// lateralPart is the query of the lateral derived table being rendered.
	lateralPart types.QueryPart
}

// ---------------------------------------------------------------------------
// Paging
// ---------------------------------------------------------------------------

func (t *translator) ShouldEmulateFetchClause(part types.QueryPart) bool {
	if part == t.QueryPartForRowNumbering() {
		return false
	}
	p := t.Paging(part)
	if !p.HasFetch() {
		return false
	}
	// DB2 has no percent or ties fetch.
	if p.FetchType != types.RowsOnly {
		return true
	}
	// Before 11.1 the fetch bound must be a constant.
	if t.version.IsBefore(11, 1) {
		if _, ok := p.Fetch.(*types.Literal); !ok {
			return true
		}
	}
	return false
}

func (t *translator) SupportsOffsetClause() bool {
	return t.version.IsSameOrAfter(11, 1)
}

func (t *translator) SupportsParameterOffsetFetchExpression() bool {
	return t.version.IsSameOrAfter(11)
}

func (t *translator) VisitOffsetFetchClause(part types.QueryPart) error {
	if t.IsRowNumberingCurrentQueryPart() {
		return nil
	}
	p := t.Paging(part)
	switch {
	case t.SupportsOffsetClause() || !p.HasOffset():
		return t.RenderOffsetFetchClause(part)
	case t.IsRoot(part) && t.LimitParameter() != nil:
		return t.RenderFetch(t.LimitParameter(), false, types.RowsOnly)
	case p.HasFetch():
		return t.RenderFetch(p.Fetch, false, p.FetchType)
	default:
		return nil
	}
}

func (t *translator) EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part types.QueryPart) error {
	if part != t.lateralPart {
		return t.Translator.EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part)
	}
	// The numbered inner query references the same outer columns.
	t.AppendSQL("lateral ")
	t.lateralPart = nil
	defer func() { t.lateralPart = part }()
	return t.Translator.EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part)
}

func (t *translator) VisitDerivedTableReference(ref *types.DerivedTableReference) error {
	saved := t.lateralPart
	t.lateralPart = nil
	if ref.Lateral {
		t.lateralPart = ref.Select.Query
	}
	defer func() { t.lateralPart = saved }()
	return t.Translator.VisitDerivedTableReference(ref)
}

// ---------------------------------------------------------------------------
// Joins inside a recursive CTE
// ---------------------------------------------------------------------------

// DB2 rejects explicit joins in the recursive member of a CTE. Inner and
// cross joins become comma joins with the join predicate moved to WHERE.

func (t *translator) RenderTableReferenceJoins(g *types.TableGroup) error {
	if !t.IsInRecursiveQueryPart() {
		return t.Translator.RenderTableReferenceJoins(g)
	}
	for _, j := range g.ReferenceJoins {
		if err := t.checkRecursiveJoin(j.Type); err != nil {
			return err
		}
		t.AppendSQL(",")
		if err := t.RenderNamedTableReference(j.Table); err != nil {
			return err
		}
		t.AddAdditionalWherePredicate(j.Predicate)
	}
	for _, j := range g.Joins {
		if err := t.RenderTableGroupJoin(j); err != nil {
			return err
		}
	}
	return nil
}

func (t *translator) RenderTableGroupJoin(j *types.TableGroupJoin) error {
	if !t.IsInRecursiveQueryPart() {
		return t.Translator.RenderTableGroupJoin(j)
	}
	if err := t.checkRecursiveJoin(j.Type); err != nil {
		return err
	}
	t.AppendSQL(",")
	if err := t.RenderTableGroup(j.Group); err != nil {
		return err
	}
	t.AddAdditionalWherePredicate(j.Predicate)
	return nil
}

func (t *translator) checkRecursiveJoin(kind types.JoinType) error {
	switch kind {
	case types.InnerJoin, types.CrossJoin:
		return nil
	default:
		return t.Unsupported(kind.Text()+"join in a recursive query part", "use an inner join")
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// RenderSelectExpression casts plain parameters, whose type DB2 cannot infer
// in a select list.
func (t *translator) RenderSelectExpression(e types.Expression) error {
	if p, ok := e.(*types.Parameter); ok && t.ParameterRenderingMode() == types.RenderDefault {
		return t.RenderCasted(p)
	}
	return t.Translator.RenderSelectExpression(e)
}

func (t *translator) VisitBooleanExpressionPredicate(p *types.BooleanExpressionPredicate) error {
	if t.version.IsBefore(11) {
		return t.Translator.VisitBooleanExpressionPredicate(p)
	}
	if p.Negated {
		t.AppendSQL("not(")
		if err := t.Visit(p.Expression); err != nil {
			return err
		}
		t.AppendSQL(")")
		return nil
	}
	return t.Visit(p.Expression)
}

func (t *translator) VisitCaseSearched(c *types.CaseSearched, resultRenderer func(types.Expression) error) error {
	return t.Translator.VisitCaseSearched(c, t.caseResultRenderer(c.Results(), types.TypeOf(c), resultRenderer))
}

func (t *translator) VisitCaseSimple(c *types.CaseSimple, resultRenderer func(types.Expression) error) error {
	return t.Translator.VisitCaseSimple(c, t.caseResultRenderer(c.Results(), types.TypeOf(c), resultRenderer))
}

// caseResultRenderer casts the first result arm when every arm is a bare
// parameter, so DB2 can type the CASE. At most one arm is cast.
func (t *translator) caseResultRenderer(results []types.Expression, typ types.SQLType, next func(types.Expression) error) func(types.Expression) error {
	if t.ParameterRenderingMode() != types.RenderDefault || !types.AllParameters(results) {
		return next
	}
	casted := false
	return func(e types.Expression) error {
		if casted {
			return next(e)
		}
		casted = true
		return t.RenderCastedAs(e, typ)
	}
}

func (t *translator) RenderComparisonStandard(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error {
	if !isXML(lhs) && !isXML(rhs) {
		return t.Translator.RenderComparisonStandard(lhs, op, rhs)
	}

	// XML values are not comparable; compare their serialized form.
	operand := func(e types.Expression) error {
		if !isXML(e) {
			return t.Visit(e)
		}
		t.AppendSQL("xmlserialize(")
		if err := t.Visit(e); err != nil {
			return err
		}
		t.AppendSQL(" as varchar(32672))")
		return nil
	}

	switch op {
	case types.Equal, types.NotEqual:
		if err := operand(lhs); err != nil {
			return err
		}
		t.AppendSQL(op.SQLText())
		return operand(rhs)
	case types.DistinctFrom, types.NotDistinctFrom:
		if t.version.IsSameOrAfter(11, 1) {
			if err := operand(lhs); err != nil {
				return err
			}
			t.AppendSQL(op.SQLText())
			return operand(rhs)
		}
		t.AppendSQL("decode(")
		if err := operand(lhs); err != nil {
			return err
		}
		t.AppendSQL(",")
		if err := operand(rhs); err != nil {
			return err
		}
		if op == types.DistinctFrom {
			t.AppendSQL(",0,1)=1")
		} else {
			t.AppendSQL(",0,1)=0")
		}
		return nil
	default:
		return t.Unsupported("ordering comparison of xml values")
	}
}

func isXML(e types.Expression) bool {
	return types.TypeOf(e) == types.TypeXML
}

// ---------------------------------------------------------------------------
// Returning
// ---------------------------------------------------------------------------

// DB2 reads DML results through a data change table reference:
// select <columns> from final table (<dml>), or old table for deletes.

func (t *translator) VisitInsertStatementOnly(stmt *types.InsertStatement) error {
	return t.withDataChangeTable(stmt, "final", func() error {
		return t.Translator.VisitInsertStatementOnly(stmt)
	})
}

func (t *translator) VisitUpdateStatementOnly(stmt *types.UpdateStatement) error {
	return t.withDataChangeTable(stmt, "final", func() error {
		return t.Translator.VisitUpdateStatementOnly(stmt)
	})
}

func (t *translator) VisitDeleteStatementOnly(stmt *types.DeleteStatement) error {
	return t.withDataChangeTable(stmt, "old", func() error {
		return t.Translator.VisitDeleteStatementOnly(stmt)
	})
}

func (t *translator) withDataChangeTable(stmt types.Mutation, image string, dml func() error) error {
	if len(stmt.ReturningColumns()) == 0 {
		return dml()
	}
	t.AppendSQL("select ")
	t.RenderReturningColumnList(stmt)
	t.AppendSQL(" from " + image + " table (")
	if err := dml(); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

// VisitReturningColumns renders nothing; the columns are selected by the
// data change table wrapper.
func (t *translator) VisitReturningColumns(types.Mutation) error {
	return nil
}
