package querydoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/sqlast/internal/types"
)

// builder converts schemas into nodes. Parameters are created once per name
// so that repeated references share identity and value.
type builder struct {
	schemas map[string]ParamSchema
	params  map[string]*types.Parameter
	values  map[*types.Parameter]any
}

func newBuilder(schemas map[string]ParamSchema) *builder {
	return &builder{
		schemas: schemas,
		params:  make(map[string]*types.Parameter),
		values:  make(map[*types.Parameter]any),
	}
}

func (b *builder) param(name string) (*types.Parameter, error) {
	if p, ok := b.params[name]; ok {
		return p, nil
	}
	if name == "" {
		return nil, fmt.Errorf("parameter requires a name")
	}
	schema := b.schemas[name]
	p := types.Param(name, types.ParseSQLType(strings.ToLower(schema.Type)))
	if schema.Value != nil {
		b.values[p] = schema.Value
	}
	b.params[name] = p
	return p, nil
}

func (b *builder) queryPart(q *QuerySchema) (types.QueryPart, error) {
	if len(q.Parts) == 0 {
		return b.querySpec(q)
	}

	group := &types.QueryGroup{}
	op, err := setOperator(q.SetOperator)
	if err != nil {
		return nil, err
	}
	group.SetOperator = op
	for i := range q.Parts {
		part, err := b.queryPart(&q.Parts[i])
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		group.Parts = append(group.Parts, part)
	}
	if group.OrderBy, err = b.orderBy(q.OrderBy); err != nil {
		return nil, err
	}
	if group.OffsetFetch, err = b.offsetFetch(q); err != nil {
		return nil, err
	}
	return group, nil
}

func (b *builder) querySpec(q *QuerySchema) (*types.QuerySpec, error) {
	spec := &types.QuerySpec{Distinct: q.Distinct}

	if q.Table != "" || q.Derived != nil {
		primary, err := b.tableReference(q.Table, q.Alias, q.Derived, q.Lateral)
		if err != nil {
			return nil, err
		}
		group := types.From(primary)
		for i := range q.Joins {
			if err := b.join(group, &q.Joins[i]); err != nil {
				return nil, err
			}
		}
		spec.From = []*types.TableGroup{group}
	}

	for _, f := range q.Fields {
		expr, alias := splitAlias(f)
		e, err := b.operand(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid field '%s': %w", f, err)
		}
		spec.Select = append(spec.Select, types.SelectItem{Expression: e, Alias: alias})
	}
	for i := range q.Cases {
		c, err := b.caseExpression(&q.Cases[i])
		if err != nil {
			return nil, fmt.Errorf("invalid case expression: %w", err)
		}
		spec.Select = append(spec.Select, types.SelectItem{Expression: c, Alias: q.Cases[i].Alias})
	}
	if len(spec.Select) == 0 {
		spec.Select = types.Items(&types.Star{})
	}

	var err error
	if spec.Where, err = b.optionalCondition(q.Where); err != nil {
		return nil, fmt.Errorf("invalid where clause: %w", err)
	}

	if len(q.GroupBy) > 0 {
		groupings, err := b.operands(q.GroupBy)
		if err != nil {
			return nil, fmt.Errorf("invalid group by: %w", err)
		}
		if q.Rollup {
			spec.GroupBy = []types.Expression{&types.Summarization{Kind: types.Rollup, Groupings: groupings}}
		} else {
			spec.GroupBy = groupings
		}
	}
	if spec.Having, err = b.optionalCondition(q.Having); err != nil {
		return nil, fmt.Errorf("invalid having clause: %w", err)
	}

	if spec.OrderBy, err = b.orderBy(q.OrderBy); err != nil {
		return nil, err
	}
	if spec.OffsetFetch, err = b.offsetFetch(q); err != nil {
		return nil, err
	}
	return spec, nil
}

func (b *builder) tableReference(table, alias string, derived *QuerySchema, lateral bool) (types.TableReference, error) {
	if derived == nil {
		if table == "" {
			return nil, fmt.Errorf("table is required")
		}
		return types.Table(table, alias), nil
	}
	if alias == "" {
		return nil, fmt.Errorf("derived table requires an alias")
	}
	part, err := b.queryPart(derived)
	if err != nil {
		return nil, fmt.Errorf("derived table %s: %w", alias, err)
	}
	return &types.DerivedTableReference{Select: types.Select(part), Alias: alias, Lateral: lateral}, nil
}

func (b *builder) join(group *types.TableGroup, j *JoinSchema) error {
	kind, err := joinType(j.Type)
	if err != nil {
		return err
	}
	ref, err := b.tableReference(j.Table, j.Alias, j.Derived, j.Lateral)
	if err != nil {
		return fmt.Errorf("invalid join table '%s': %w", j.Table, err)
	}
	on, err := b.optionalCondition(j.On)
	if err != nil {
		return fmt.Errorf("invalid join condition: %w", err)
	}
	group.Join(kind, types.From(ref), on)
	return nil
}

func (b *builder) orderBy(items []OrderSchema) ([]types.SortSpec, error) {
	var specs []types.SortSpec
	for _, o := range items {
		e, err := b.operand(o.Field)
		if err != nil {
			return nil, fmt.Errorf("invalid order by field '%s': %w", o.Field, err)
		}
		switch strings.ToLower(o.Direction) {
		case "", "asc":
			specs = append(specs, types.Asc(e))
		case "desc":
			specs = append(specs, types.Desc(e))
		default:
			return nil, fmt.Errorf("invalid order direction: %s", o.Direction)
		}
	}
	return specs, nil
}

func (b *builder) offsetFetch(q *QuerySchema) (types.OffsetFetch, error) {
	var of types.OffsetFetch
	var err error
	if q.Offset != "" {
		if of.Offset, err = b.operand(q.Offset); err != nil {
			return of, fmt.Errorf("invalid offset: %w", err)
		}
	}
	if q.Fetch != "" {
		if of.Fetch, err = b.operand(q.Fetch); err != nil {
			return of, fmt.Errorf("invalid fetch: %w", err)
		}
	}
	switch strings.ToLower(q.FetchType) {
	case "", "rows_only":
	case "percent":
		of.FetchType = types.Percent
	case "with_ties":
		of.FetchType = types.WithTies
	case "percent_with_ties":
		of.FetchType = types.PercentWithTies
	default:
		return of, fmt.Errorf("invalid fetch type: %s", q.FetchType)
	}
	return of, nil
}

func (b *builder) caseExpression(c *CaseSchema) (*types.CaseSearched, error) {
	if len(c.When) == 0 {
		return nil, fmt.Errorf("case requires at least one when")
	}
	expr := &types.CaseSearched{}
	for i := range c.When {
		p, err := b.condition(&c.When[i].Condition)
		if err != nil {
			return nil, fmt.Errorf("when %d: %w", i, err)
		}
		result, err := b.operand(c.When[i].Result)
		if err != nil {
			return nil, fmt.Errorf("when %d: %w", i, err)
		}
		expr.When = append(expr.When, types.CaseWhen{Predicate: p, Result: result})
	}
	if c.Else != "" {
		e, err := b.operand(c.Else)
		if err != nil {
			return nil, fmt.Errorf("else: %w", err)
		}
		expr.Else = e
	}
	return expr, nil
}

func (b *builder) optionalCondition(c *ConditionSchema) (types.Predicate, error) {
	if c == nil {
		return nil, nil
	}
	return b.condition(c)
}

func (b *builder) condition(c *ConditionSchema) (types.Predicate, error) {
	if c.Logic != "" {
		return b.conditionGroup(c)
	}

	op := strings.ToLower(strings.Join(strings.Fields(c.Operator), " "))
	if op == "exists" || op == "not exists" {
		if c.Subquery == nil {
			return nil, fmt.Errorf("%s requires a subquery", op)
		}
		part, err := b.queryPart(c.Subquery)
		if err != nil {
			return nil, fmt.Errorf("subquery: %w", err)
		}
		return &types.Exists{Subquery: part, Negated: op == "not exists"}, nil
	}

	lhs, err := b.side(c.Left, c.LeftTuple)
	if err != nil {
		return nil, fmt.Errorf("left operand: %w", err)
	}

	switch op {
	case "is null", "is not null":
		return &types.Nullness{Expression: lhs, Negated: op == "is not null"}, nil
	case "is true", "is false":
		return &types.BooleanExpressionPredicate{Expression: lhs, Negated: op == "is false"}, nil
	case "in", "not in":
		negated := op == "not in"
		if c.Subquery != nil {
			part, err := b.queryPart(c.Subquery)
			if err != nil {
				return nil, fmt.Errorf("subquery: %w", err)
			}
			return &types.InSubquery{Test: lhs, Subquery: part, Negated: negated}, nil
		}
		list, err := b.inList(c.List, lhs)
		if err != nil {
			return nil, err
		}
		return &types.InList{Test: lhs, List: list, Negated: negated}, nil
	case "like", "not like":
		rhs, err := b.operand(c.Right)
		if err != nil {
			return nil, fmt.Errorf("right operand: %w", err)
		}
		return &types.Like{Match: lhs, Pattern: rhs, Negated: op == "not like"}, nil
	}

	cmp, err := comparisonOperator(op)
	if err != nil {
		return nil, err
	}
	rhs, err := b.side(c.Right, c.RightTuple)
	if err != nil {
		return nil, fmt.Errorf("right operand: %w", err)
	}
	return types.Compare(lhs, cmp, rhs), nil
}

func (b *builder) conditionGroup(c *ConditionSchema) (types.Predicate, error) {
	if len(c.Conditions) == 0 {
		return nil, fmt.Errorf("condition group requires at least one condition")
	}
	predicates := make([]types.Predicate, len(c.Conditions))
	for i := range c.Conditions {
		p, err := b.condition(&c.Conditions[i])
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		predicates[i] = p
	}

	switch strings.ToLower(c.Logic) {
	case "and":
		return &types.Junction{Kind: types.And, Predicates: predicates}, nil
	case "or":
		return &types.Junction{Kind: types.Or, Predicates: predicates}, nil
	case "not":
		if len(predicates) != 1 {
			return nil, fmt.Errorf("not requires exactly one condition")
		}
		return &types.Negated{Predicate: predicates[0]}, nil
	default:
		return nil, fmt.Errorf("invalid logic operator: %s", c.Logic)
	}
}

// side returns a single operand or a tuple.
func (b *builder) side(single string, tuple []string) (types.Expression, error) {
	if len(tuple) == 0 {
		return b.operand(single)
	}
	exprs, err := b.operands(tuple)
	if err != nil {
		return nil, err
	}
	return &types.Tuple{Expressions: exprs}, nil
}

// inList parses list items; when the test is a tuple each item is a
// parenthesized, comma separated row such as "(1, 'a')".
func (b *builder) inList(items []string, test types.Expression) ([]types.Expression, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("in requires a list or a subquery")
	}
	_, isTuple := test.(*types.Tuple)
	list := make([]types.Expression, len(items))
	for i, item := range items {
		if !isTuple {
			e, err := b.operand(item)
			if err != nil {
				return nil, fmt.Errorf("list item %d: %w", i, err)
			}
			list[i] = e
			continue
		}
		inner := strings.TrimSpace(item)
		if !strings.HasPrefix(inner, "(") || !strings.HasSuffix(inner, ")") {
			return nil, fmt.Errorf("list item %d: row value must be parenthesized", i)
		}
		exprs, err := b.operands(splitArgs(inner[1 : len(inner)-1]))
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		list[i] = &types.Tuple{Expressions: exprs}
	}
	return list, nil
}

func (b *builder) operands(items []string) ([]types.Expression, error) {
	exprs := make([]types.Expression, len(items))
	for i, item := range items {
		e, err := b.operand(item)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func (b *builder) operand(s string) (types.Expression, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("operand is empty")
	case s == "*":
		return &types.Star{}, nil
	case strings.HasPrefix(s, ":"):
		return b.param(s[1:])
	case strings.HasPrefix(s, "'"):
		if len(s) < 2 || !strings.HasSuffix(s, "'") {
			return nil, fmt.Errorf("unterminated string literal %s", s)
		}
		return types.Lit(strings.ReplaceAll(s[1:len(s)-1], "''", "'")), nil
	case s == "true" || s == "false":
		return types.Lit(s == "true"), nil
	case s == "null":
		return &types.Literal{}, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return types.Lit(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return types.Lit(f), nil
	}

	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		fn := &types.Function{Name: strings.ToLower(strings.TrimSpace(s[:open]))}
		if inner := strings.TrimSpace(s[open+1 : len(s)-1]); inner != "" {
			args, err := b.operands(splitArgs(inner))
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", fn.Name, err)
			}
			fn.Args = args
		}
		return fn, nil
	}

	if !isReference(s) {
		return nil, fmt.Errorf("invalid operand %q", s)
	}
	if dot := strings.LastIndexByte(s, '.'); dot != -1 {
		if s[dot+1:] == "*" {
			return &types.Star{Qualifier: s[:dot]}, nil
		}
		return types.Col(s[:dot], s[dot+1:]), nil
	}
	return types.Col("", s), nil
}

// isReference accepts [qualifier.]name where each part is an identifier.
func isReference(s string) bool {
	for i, part := range strings.Split(s, ".") {
		if part == "*" && i > 0 {
			continue
		}
		if part == "" {
			return false
		}
		for j, ch := range part {
			letter := ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			if !letter && (j == 0 || ch < '0' || ch > '9') {
				return false
			}
		}
	}
	return true
}

// splitArgs splits on commas outside parentheses and quotes.
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	quoted := false
	for i, ch := range s {
		switch {
		case ch == '\'':
			quoted = !quoted
		case quoted:
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ',' && depth == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

// splitAlias splits "expr as alias" on the last " as ".
func splitAlias(field string) (string, string) {
	lower := strings.ToLower(field)
	if i := strings.LastIndex(lower, " as "); i != -1 {
		return strings.TrimSpace(field[:i]), strings.TrimSpace(field[i+4:])
	}
	return field, ""
}

func comparisonOperator(op string) (types.ComparisonOperator, error) {
	switch op {
	case "=":
		return types.Equal, nil
	case "<>", "!=":
		return types.NotEqual, nil
	case "<":
		return types.LessThan, nil
	case "<=":
		return types.LessThanOrEqual, nil
	case ">":
		return types.GreaterThan, nil
	case ">=":
		return types.GreaterThanOrEqual, nil
	case "is distinct from":
		return types.DistinctFrom, nil
	case "is not distinct from":
		return types.NotDistinctFrom, nil
	default:
		return 0, fmt.Errorf("unsupported operator: %s", op)
	}
}

func joinType(s string) (types.JoinType, error) {
	switch strings.ToLower(s) {
	case "", "inner":
		return types.InnerJoin, nil
	case "left":
		return types.LeftJoin, nil
	case "right":
		return types.RightJoin, nil
	case "full":
		return types.FullJoin, nil
	case "cross":
		return types.CrossJoin, nil
	default:
		return 0, fmt.Errorf("unsupported join type: %s", s)
	}
}

func setOperator(s string) (types.SetOperator, error) {
	switch strings.ToLower(s) {
	case "", "union":
		return types.Union, nil
	case "union_all":
		return types.UnionAll, nil
	case "intersect":
		return types.Intersect, nil
	case "intersect_all":
		return types.IntersectAll, nil
	case "except":
		return types.Except, nil
	case "except_all":
		return types.ExceptAll, nil
	default:
		return 0, fmt.Errorf("unsupported set operator: %s", s)
	}
}
