package render

import (
	"fmt"
	"strconv"

	"github.com/zoobzio/sqlast/internal/types"
)

// VisitSelectStatement renders CTEs, the root query part and the lock clause.
func (t *Translator) VisitSelectStatement(stmt *types.SelectStatement) error {
	if err := t.renderWith(stmt.With); err != nil {
		return err
	}
	if err := t.renderQueryPart(stmt.Query); err != nil {
		return err
	}
	if t.IsRoot(stmt.Query) {
		return t.hooks.RenderLockClause()
	}
	return nil
}

// renderWith renders the WITH clause of a statement.
func (t *Translator) renderWith(ctes []*types.CTE) error {
	if len(ctes) == 0 {
		return nil
	}
	t.AppendSQL("with ")
	if t.profile.Capabilities.RecursiveKeyword {
		for _, c := range ctes {
			if c.Recursive {
				t.AppendSQL("recursive ")
				break
			}
		}
	}
	for i, c := range ctes {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(t.Identifier(c.Name))
		if len(c.Columns) > 0 {
			t.AppendSQL("(")
			for j, col := range c.Columns {
				if j > 0 {
					t.AppendSQL(",")
				}
				t.AppendSQL(t.Identifier(col))
			}
			t.AppendSQL(")")
		}
		t.AppendSQL(" as (")
		if err := t.renderCTEQuery(c); err != nil {
			return err
		}
		t.AppendSQL(")")
	}
	t.AppendSQL(" ")
	return nil
}

func (t *Translator) renderCTEQuery(c *types.CTE) error {
	savedGroup := t.recursiveGroup
	savedRecursive := t.inRecursivePart
	defer func() {
		t.recursiveGroup = savedGroup
		t.inRecursivePart = savedRecursive
	}()
	t.inRecursivePart = false
	t.recursiveGroup = nil
	if c.Recursive {
		switch q := c.Query.(type) {
		case *types.QueryGroup:
			t.recursiveGroup = q
		case *types.QuerySpec:
			t.inRecursivePart = true
		}
	}
	return t.renderQueryPart(c.Query)
}

// VisitQueryPart renders a query part without enclosing parentheses.
func (t *Translator) VisitQueryPart(part types.QueryPart) error {
	return t.renderQueryPart(part)
}

// renderQueryPart dispatches a query part to its hook.
func (t *Translator) renderQueryPart(part types.QueryPart) error {
	switch p := part.(type) {
	case *types.QuerySpec:
		return t.hooks.VisitQuerySpec(p)
	case *types.QueryGroup:
		return t.hooks.VisitQueryGroup(p)
	default:
		return fmt.Errorf("%w: unknown query part %T", types.ErrInvalidAST, part)
	}
}

// VisitQuerySpec renders a single SELECT, wrapping it in a row numbering
// query when its paging must be emulated.
func (t *Translator) VisitQuerySpec(spec *types.QuerySpec) error {
	handled, err := t.emulatePagingIfNeeded(spec)
	if handled || err != nil {
		return err
	}
	pop := t.pushPart(spec)
	defer pop()

	savedWhere := t.additionalWhere
	t.additionalWhere = nil
	defer func() { t.additionalWhere = savedWhere }()

	t.AppendSQL("select ")
	if spec.Distinct {
		t.AppendSQL("distinct ")
	}
	if err := t.renderSelectClause(spec); err != nil {
		return err
	}
	if err := t.renderFromClause(spec.From); err != nil {
		return err
	}

	// Joins rendered in a recursive part may have contributed predicates.
	if where := types.AndOf(append([]types.Predicate{spec.Where}, t.additionalWhere...)...); !types.IsEmpty(where) {
		t.AppendSQL(" where ")
		if err := t.VisitPredicate(where); err != nil {
			return err
		}
	}
	if len(spec.GroupBy) > 0 {
		t.AppendSQL(" group by ")
		for i, g := range spec.GroupBy {
			if i > 0 {
				t.AppendSQL(",")
			}
			if err := t.hooks.RenderPartitionItem(g); err != nil {
				return err
			}
		}
	}
	if !types.IsEmpty(spec.Having) {
		t.AppendSQL(" having ")
		if err := t.VisitPredicate(spec.Having); err != nil {
			return err
		}
	}
	return t.renderOrderAndPaging(spec)
}

// VisitQueryGroup renders a set operation.
func (t *Translator) VisitQueryGroup(group *types.QueryGroup) error {
	handled, err := t.emulatePagingIfNeeded(group)
	if handled || err != nil {
		return err
	}
	pop := t.pushPart(group)
	defer pop()

	for i, part := range group.Parts {
		if i > 0 {
			t.AppendSQL(" " + group.SetOperator.SQLText() + " ")
		}
		if err := t.renderGroupMember(group, i, part); err != nil {
			return err
		}
	}
	return t.renderOrderAndPaging(group)
}

func (t *Translator) renderGroupMember(group *types.QueryGroup, i int, part types.QueryPart) error {
	savedRecursive := t.inRecursivePart
	defer func() { t.inRecursivePart = savedRecursive }()
	if group == t.recursiveGroup {
		t.inRecursivePart = i > 0
	}

	_, nested := part.(*types.QueryGroup)
	paging := part.Paging()
	wrap := nested || len(part.SortSpecs()) > 0 || paging.HasOffset() || paging.HasFetch()
	if !wrap {
		return t.renderQueryPart(part)
	}
	if t.profile.Capabilities.SetOperationParens {
		t.AppendSQL("(")
		if err := t.renderQueryPart(part); err != nil {
			return err
		}
		t.AppendSQL(")")
		return nil
	}
	t.AppendSQL("select * from (")
	if err := t.renderQueryPart(part); err != nil {
		return err
	}
	t.AppendSQL(") ")
	t.AppendSQL(t.nextAlias("grp"))
	return nil
}

func (t *Translator) renderOrderAndPaging(part types.QueryPart) error {
	if !t.IsRowNumberingCurrentQueryPart() {
		if specs := part.SortSpecs(); len(specs) > 0 {
			t.AppendSQL(" order by ")
			if err := t.renderSortItems(specs); err != nil {
				return err
			}
		}
	}
	return t.hooks.VisitOffsetFetchClause(part)
}

func (t *Translator) renderSelectClause(spec *types.QuerySpec) error {
	aliased := t.aliasedSpecs[spec]
	for i, item := range spec.Select {
		if i > 0 {
			t.AppendSQL(",")
		}
		if err := t.hooks.RenderSelectExpression(item.Expression); err != nil {
			return err
		}
		switch {
		case aliased:
			t.AppendSQL(" c" + strconv.Itoa(i))
		case item.Alias != "":
			t.AppendSQL(" ")
			t.AppendSQL(t.Identifier(item.Alias))
		}
	}
	if t.rowNumberingInline == spec {
		return t.renderRowNumberingColumns(spec)
	}
	return nil
}

func (t *Translator) renderFromClause(groups []*types.TableGroup) error {
	if len(groups) == 0 {
		t.AppendSQL(t.profile.Syntax.FromDual)
		return nil
	}
	t.AppendSQL(" from ")
	for i, g := range groups {
		if i > 0 {
			t.AppendSQL(",")
		}
		if err := t.RenderTableGroup(g); err != nil {
			return err
		}
	}
	return nil
}

// RenderTableGroup renders a primary table reference and everything joined to it.
func (t *Translator) RenderTableGroup(g *types.TableGroup) error {
	if err := t.renderTableReference(g.Primary); err != nil {
		return err
	}
	return t.hooks.RenderTableReferenceJoins(g)
}

func (t *Translator) renderTableReference(ref types.TableReference) error {
	switch r := ref.(type) {
	case *types.NamedTableReference:
		return t.hooks.RenderNamedTableReference(r)
	case *types.DerivedTableReference:
		return t.hooks.VisitDerivedTableReference(r)
	default:
		return fmt.Errorf("%w: unknown table reference %T", types.ErrInvalidAST, ref)
	}
}

// RenderNamedTableReference renders "<table> <alias>".
func (t *Translator) RenderNamedTableReference(ref *types.NamedTableReference) error {
	t.AppendSQL(t.Identifier(ref.Name))
	if ref.Alias != "" {
		t.AppendSQL(" ")
		t.AppendSQL(t.Identifier(ref.Alias))
	}
	return nil
}

// RenderTableReferenceJoins renders the reference joins of a group followed
// by its group joins.
func (t *Translator) RenderTableReferenceJoins(g *types.TableGroup) error {
	for _, j := range g.ReferenceJoins {
		t.AppendSQL(" ")
		t.AppendSQL(j.Type.Text())
		t.AppendSQL("join ")
		if err := t.hooks.RenderNamedTableReference(j.Table); err != nil {
			return err
		}
		if err := t.renderJoinCondition(j.Type, j.Predicate); err != nil {
			return err
		}
	}
	for _, j := range g.Joins {
		if err := t.hooks.RenderTableGroupJoin(j); err != nil {
			return err
		}
	}
	return nil
}

// RenderTableGroupJoin renders " <type>join <group> on <predicate>". Joins of
// the joined group follow flattened.
func (t *Translator) RenderTableGroupJoin(j *types.TableGroupJoin) error {
	t.AppendSQL(" ")
	t.AppendSQL(j.Type.Text())
	t.AppendSQL("join ")
	if err := t.renderTableReference(j.Group.Primary); err != nil {
		return err
	}
	if len(j.Group.ReferenceJoins) > 0 {
		// Reference joins belong to the joined table; keep them bound to it.
		inner := &types.TableGroup{Primary: j.Group.Primary, ReferenceJoins: j.Group.ReferenceJoins}
		if err := t.hooks.RenderTableReferenceJoins(inner); err != nil {
			return err
		}
	}
	if err := t.renderJoinCondition(j.Type, j.Predicate); err != nil {
		return err
	}
	for _, nested := range j.Group.Joins {
		if err := t.hooks.RenderTableGroupJoin(nested); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) renderJoinCondition(kind types.JoinType, p types.Predicate) error {
	if kind == types.CrossJoin {
		return nil
	}
	t.AppendSQL(" on ")
	if types.IsEmpty(p) {
		t.AppendSQL("1=1")
		return nil
	}
	return t.VisitPredicate(p)
}

// VisitDerivedTableReference renders "[lateral ](<select>) <alias>(<columns>)".
func (t *Translator) VisitDerivedTableReference(ref *types.DerivedTableReference) error {
	if ref.Lateral {
		if !t.profile.Capabilities.Lateral {
			return t.Unsupported("lateral derived table")
		}
		t.AppendSQL("lateral ")
	}
	if err := t.RenderDerivedTableSelect(ref.Select); err != nil {
		return err
	}
	t.AppendSQL(" ")
	t.AppendSQL(t.Identifier(ref.Alias))
	if len(ref.Columns) > 0 {
		t.AppendSQL("(")
		for i, c := range ref.Columns {
			if i > 0 {
				t.AppendSQL(",")
			}
			t.AppendSQL(t.Identifier(c))
		}
		t.AppendSQL(")")
	}
	return nil
}

// RenderDerivedTableSelect renders the parenthesized select of a derived table.
func (t *Translator) RenderDerivedTableSelect(stmt *types.SelectStatement) error {
	if len(stmt.With) > 0 && !t.profile.Capabilities.WithInSubquery {
		return t.Unsupported("with clause in a subquery")
	}
	saved := t.inRecursivePart
	t.inRecursivePart = false
	defer func() { t.inRecursivePart = saved }()

	t.AppendSQL("(")
	if err := t.renderWith(stmt.With); err != nil {
		return err
	}
	if err := t.renderQueryPart(stmt.Query); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

func (t *Translator) nextAlias(prefix string) string {
	alias := prefix + "_" + strconv.Itoa(t.aliasCounter) + "_"
	t.aliasCounter++
	return alias
}
