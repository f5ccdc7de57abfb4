package render

import (
	"fmt"
	"strconv"

	"github.com/zoobzio/sqlast/internal/types"
)

// ShouldEmulateFetchClause reports whether the fetch of a part cannot be
// expressed with the dialect's native clause.
func (t *Translator) ShouldEmulateFetchClause(part types.QueryPart) bool {
	p := t.Paging(part)
	if !p.HasFetch() {
		return false
	}
	caps := t.profile.Capabilities
	switch {
	case !caps.OffsetFetch && !caps.FetchFirst && !caps.LimitOffset:
		return true
	case p.FetchType.IsPercent() && !caps.FetchPercent:
		return true
	case p.FetchType.HasTies() && !caps.FetchTies:
		return true
	default:
		return false
	}
}

// SupportsOffsetClause reports whether the dialect has a native offset.
func (t *Translator) SupportsOffsetClause() bool {
	caps := t.profile.Capabilities
	return caps.OffsetFetch || caps.LimitOffset
}

// SupportsParameterOffsetFetchExpression reports whether offset and fetch
// bounds may be bind parameters.
func (t *Translator) SupportsParameterOffsetFetchExpression() bool {
	return t.profile.Capabilities.ParameterOffsetFetch
}

// emulatePagingIfNeeded decides how the paging of a part is rendered. It
// returns true when the part was fully rendered by window function emulation.
func (t *Translator) emulatePagingIfNeeded(part types.QueryPart) (bool, error) {
	if part == t.rowNumbering || part == t.fallbackFetchPart {
		return false, nil
	}
	p := t.Paging(part)
	if !p.HasOffset() && !p.HasFetch() {
		return false, nil
	}
	needsEmulation := t.hooks.ShouldEmulateFetchClause(part) ||
		(p.HasOffset() && !t.hooks.SupportsOffsetClause())
	if !needsEmulation {
		return false, nil
	}

	if t.profile.Capabilities.WindowFunctions {
		return true, t.EmulateFetchOffsetWithWindowFunctions(part)
	}
	if t.IsRoot(part) && !p.HasOffset() && p.FetchType == types.RowsOnly {
		t.fallbackFetchPart = part
		return false, nil
	}
	if p.HasOffset() {
		return true, t.Unsupported("offset", "the dialect has neither an offset clause nor window functions")
	}
	return true, t.Unsupported("fetch first " + p.FetchType.String())
}

// VisitOffsetFetchClause renders the paging of a part with the dialect's
// native clause.
func (t *Translator) VisitOffsetFetchClause(part types.QueryPart) error {
	if t.IsRowNumberingCurrentQueryPart() {
		return nil
	}
	p := t.Paging(part)
	if !p.HasOffset() && !p.HasFetch() {
		return nil
	}
	caps := t.profile.Capabilities
	switch {
	case part == t.fallbackFetchPart:
		return t.renderFallbackFetch(p)
	case caps.OffsetFetch || (caps.FetchFirst && !p.HasOffset()):
		return t.RenderOffsetFetchClause(part)
	case caps.LimitOffset:
		return t.RenderLimitOffsetClause(part)
	default:
		return t.Unsupported("offset/fetch")
	}
}

// RenderOffsetFetchClause renders " offset n rows fetch first|next m rows only".
func (t *Translator) RenderOffsetFetchClause(part types.QueryPart) error {
	p := t.Paging(part)
	if p.HasOffset() {
		if err := t.RenderOffset(p.Offset); err != nil {
			return err
		}
	}
	if p.HasFetch() {
		return t.RenderFetch(p.Fetch, p.HasOffset(), p.FetchType)
	}
	return nil
}

// RenderOffset renders " offset n rows".
func (t *Translator) RenderOffset(offset types.Expression) error {
	t.AppendSQL(" offset ")
	if err := t.renderBound(offset); err != nil {
		return err
	}
	t.AppendSQL(" rows")
	return nil
}

// RenderFetch renders " fetch first n <type>", or " fetch next" after an offset.
func (t *Translator) RenderFetch(fetch types.Expression, afterOffset bool, kind types.FetchClauseType) error {
	if afterOffset {
		t.AppendSQL(" fetch next ")
	} else {
		t.AppendSQL(" fetch first ")
	}
	if err := t.renderBound(fetch); err != nil {
		return err
	}
	t.AppendSQL(" ")
	t.AppendSQL(kind.String())
	return nil
}

// RenderLimitOffsetClause renders " limit m offset n".
func (t *Translator) RenderLimitOffsetClause(part types.QueryPart) error {
	p := t.Paging(part)
	t.AppendSQL(" limit ")
	if p.HasFetch() {
		if err := t.renderBound(p.Fetch); err != nil {
			return err
		}
	} else {
		t.AppendSQL(t.profile.Syntax.NoLimit)
	}
	if p.HasOffset() {
		t.AppendSQL(" offset ")
		return t.renderBound(p.Offset)
	}
	return nil
}

func (t *Translator) renderFallbackFetch(p types.OffsetFetch) error {
	caps := t.profile.Capabilities
	switch {
	case caps.OffsetFetch || caps.FetchFirst:
		t.AppendSQL(" fetch first ")
	case caps.LimitOffset:
		t.AppendSQL(" limit ")
	default:
		return t.Unsupported("fetch first")
	}
	if err := t.RenderExpressionAsLiteral(p.Fetch); err != nil {
		return err
	}
	if caps.OffsetFetch || caps.FetchFirst {
		t.AppendSQL(" rows only")
	}
	return nil
}

func (t *Translator) renderBound(e types.Expression) error {
	if t.inlineOffsetFetch {
		return t.RenderExpressionAsLiteral(e)
	}
	return t.Visit(e)
}

// boundValue returns the integer value of an offset or fetch bound when it is
// known while rendering.
func (t *Translator) boundValue(e types.Expression) (int, bool) {
	switch n := e.(type) {
	case *types.Literal:
		return intValue(n.Value)
	case *types.Parameter:
		if !t.inlineOffsetFetch && t.options.ParameterRendering != types.RenderInline {
			return 0, false
		}
		return intValue(t.values[n])
	default:
		return 0, false
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------------
// Window function emulation
// ---------------------------------------------------------------------------

// EmulateFetchOffsetWithWindowFunctions wraps a part in a derived table that
// numbers its rows and filters on the number:
//
//	select r_0_.c0 from (select e.id c0,row_number() over(order by e.id) rn from emp e) r_0_
//	where r_0_.rn>10 and r_0_.rn<=15 order by r_0_.rn
func (t *Translator) EmulateFetchOffsetWithWindowFunctions(part types.QueryPart) error {
	first := types.FirstSpec(part)
	if first == nil {
		return fmt.Errorf("%w: query group without members", types.ErrInvalidAST)
	}
	for _, item := range first.Select {
		if _, ok := item.Expression.(*types.Star); ok {
			return t.Unsupported("paging a select * by row numbering", "list the selected columns")
		}
	}

	savedMarker := t.rowNumbering
	savedInline := t.rowNumberingInline
	t.rowNumbering = part
	defer func() {
		t.rowNumbering = savedMarker
		t.rowNumberingInline = savedInline
	}()

	p := t.Paging(part)
	alias := t.nextAlias("r")
	order := alias + ".rn"
	rank := order
	if p.FetchType.HasTies() {
		rank = alias + ".rnk"
		if !p.HasOffset() {
			order = rank
		}
	}

	t.AppendSQL("select ")
	for i, item := range first.Select {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(alias + ".c" + strconv.Itoa(i))
		if item.Alias != "" {
			t.AppendSQL(" ")
			t.AppendSQL(t.Identifier(item.Alias))
		}
	}
	t.AppendSQL(" from ")
	if err := t.hooks.EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part); err != nil {
		return err
	}
	t.AppendSQL(" ")
	t.AppendSQL(alias)
	t.AppendSQL(" where ")
	if err := t.renderRowNumberFilter(p, alias+".rn", rank, alias+".cnt"); err != nil {
		return err
	}
	t.AppendSQL(" order by ")
	t.AppendSQL(order)
	return nil
}

// EmulateFetchOffsetWithWindowFunctionsVisitQueryPart renders the numbered
// inner query in parentheses.
func (t *Translator) EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part types.QueryPart) error {
	t.AppendSQL("(")
	if err := t.RenderRowNumberedQueryPart(part); err != nil {
		return err
	}
	t.AppendSQL(")")
	return nil
}

// RenderRowNumberedQueryPart renders the part with its select items aliased
// c0..cN and the numbering columns appended. Parts whose rows are only known
// after a set operation or DISTINCT are numbered from an enclosing select.
func (t *Translator) RenderRowNumberedQueryPart(part types.QueryPart) error {
	if spec, ok := part.(*types.QuerySpec); ok && !spec.Distinct {
		t.aliasedSpecs[spec] = true
		t.rowNumberingInline = spec
		defer delete(t.aliasedSpecs, spec)
		return t.renderQueryPart(spec)
	}

	first := types.FirstSpec(part)
	order, err := t.mapSortSpecsToColumns(part, first)
	if err != nil {
		return err
	}
	inner := t.nextAlias("grp")
	t.AppendSQL("select ")
	for i := range first.Select {
		t.AppendSQL(inner + ".c" + strconv.Itoa(i) + ",")
	}
	if err := t.renderNumberingWindows(t.Paging(part), func() error {
		for i, s := range order {
			if i > 0 {
				t.AppendSQL(",")
			}
			t.AppendSQL(inner + ".c" + strconv.Itoa(s.index))
			if s.descending {
				t.AppendSQL(" desc")
			}
		}
		return nil
	}, len(order) > 0); err != nil {
		return err
	}
	t.AppendSQL(" from (")
	t.aliasedSpecs[first] = true
	defer delete(t.aliasedSpecs, first)
	if err := t.renderQueryPart(part); err != nil {
		return err
	}
	t.AppendSQL(") ")
	t.AppendSQL(inner)
	return nil
}

// renderRowNumberingColumns appends the numbering columns to an inline
// numbered query spec.
func (t *Translator) renderRowNumberingColumns(spec *types.QuerySpec) error {
	t.AppendSQL(",")
	order := spec.OrderBy
	return t.renderNumberingWindows(t.Paging(spec), func() error {
		for i, s := range order {
			if i > 0 {
				t.AppendSQL(",")
			}
			if err := t.Visit(resolveSortExpression(spec, s.Expression)); err != nil {
				return err
			}
			if s.Descending {
				t.AppendSQL(" desc")
			}
		}
		return nil
	}, len(order) > 0)
}

// renderNumberingWindows appends rn, or rnk for a fetch with ties. Ties with
// an offset need both: the offset skips exact rows by rn while rnk keeps the
// tie group of the last fetched row.
func (t *Translator) renderNumberingWindows(p types.OffsetFetch, renderOrder func() error, ordered bool) error {
	window := func(fn, alias string) error {
		t.AppendSQL(fn + " over(")
		switch {
		case ordered:
			t.AppendSQL("order by ")
			if err := renderOrder(); err != nil {
				return err
			}
		case t.profile.Syntax.WindowOrderFallback != "":
			t.AppendSQL("order by ")
			t.AppendSQL(t.profile.Syntax.WindowOrderFallback)
		}
		t.AppendSQL(") " + alias)
		return nil
	}

	if !p.FetchType.HasTies() || p.HasOffset() {
		if err := window("row_number()", "rn"); err != nil {
			return err
		}
		if p.FetchType.HasTies() {
			t.AppendSQL(",")
		}
	}
	if p.FetchType.HasTies() {
		if err := window("rank()", "rnk"); err != nil {
			return err
		}
	}
	if p.FetchType.IsPercent() {
		t.AppendSQL(",count(*) over() cnt")
	}
	return nil
}

// renderRowNumberFilter renders the WHERE of the numbering wrapper. The offset
// is applied to the row number, the fetch to the rank.
func (t *Translator) renderRowNumberFilter(p types.OffsetFetch, number, rank, count string) error {
	if p.HasOffset() {
		t.AppendSQL(number + ">")
		if err := t.renderBound(p.Offset); err != nil {
			return err
		}
	}
	if !p.HasFetch() {
		return nil
	}
	if p.HasOffset() {
		t.AppendSQL(" and ")
	}
	t.AppendSQL(rank + "<=")

	if p.FetchType.IsPercent() {
		if p.HasOffset() {
			if err := t.renderOperandBound(p.Offset); err != nil {
				return err
			}
			t.AppendSQL("+")
		}
		t.AppendSQL("ceil(" + count + "*")
		if err := t.renderOperandBound(p.Fetch); err != nil {
			return err
		}
		t.AppendSQL("/100.0)")
		return nil
	}

	if !p.HasOffset() {
		return t.renderBound(p.Fetch)
	}
	off, okOff := t.boundValue(p.Offset)
	fetch, okFetch := t.boundValue(p.Fetch)
	if okOff && okFetch {
		t.AppendSQL(strconv.Itoa(off + fetch))
		return nil
	}
	if err := t.renderOperandBound(p.Offset); err != nil {
		return err
	}
	t.AppendSQL("+")
	return t.renderOperandBound(p.Fetch)
}

// renderOperandBound renders a bound used as an arithmetic operand. A
// placeholder there has no type to infer, so it is cast to integer.
func (t *Translator) renderOperandBound(e types.Expression) error {
	if _, ok := e.(*types.Parameter); ok && !t.inlineOffsetFetch && t.options.ParameterRendering != types.RenderInline {
		return t.RenderCastedAs(e, types.TypeInteger)
	}
	return t.renderBound(e)
}

type columnOrder struct {
	index      int
	descending bool
}

// mapSortSpecsToColumns resolves the ORDER BY of a part to positions in its
// select list.
func (t *Translator) mapSortSpecsToColumns(part types.QueryPart, first *types.QuerySpec) ([]columnOrder, error) {
	specs := part.SortSpecs()
	order := make([]columnOrder, 0, len(specs))
	for _, s := range specs {
		idx := selectIndex(first, s.Expression)
		if idx < 0 {
			return nil, fmt.Errorf("%w: order by item %T of a paged query is not in its select list", types.ErrInvalidAST, s.Expression)
		}
		order = append(order, columnOrder{index: idx, descending: s.Descending})
	}
	return order, nil
}

// selectIndex returns the 0-based select position an order by item refers to, or -1.
func selectIndex(spec *types.QuerySpec, e types.Expression) int {
	if pos, ok := e.(*types.Positional); ok {
		if pos.Index >= 1 && pos.Index <= len(spec.Select) {
			return pos.Index - 1
		}
		return -1
	}
	for i, item := range spec.Select {
		if item.Expression == e {
			return i
		}
	}
	col, ok := e.(*types.ColumnReference)
	if !ok {
		return -1
	}
	for i, item := range spec.Select {
		if c, ok := item.Expression.(*types.ColumnReference); ok && c.Qualifier == col.Qualifier && c.Column == col.Column {
			return i
		}
	}
	if col.Qualifier == "" {
		for i, item := range spec.Select {
			if item.Alias != "" && item.Alias == col.Column {
				return i
			}
		}
	}
	return -1
}

// resolveSortExpression replaces positional and alias references with the
// select expression they name, since neither is valid inside a window.
func resolveSortExpression(spec *types.QuerySpec, e types.Expression) types.Expression {
	switch n := e.(type) {
	case *types.Positional:
		if idx := selectIndex(spec, n); idx >= 0 {
			return spec.Select[idx].Expression
		}
	case *types.ColumnReference:
		if n.Qualifier == "" {
			if idx := selectIndex(spec, n); idx >= 0 && spec.Select[idx].Alias == n.Column {
				return spec.Select[idx].Expression
			}
		}
	}
	return e
}
