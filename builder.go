package sqlast

import (
	"fmt"
	"strings"
)

type operation int

const (
	opSelect operation = iota
	opInsert
	opUpdate
	opDelete
)

// Builder provides a fluent API for constructing statements over catalog
// tables. Column names are resolved and typed against the catalog; the
// first error is kept and later calls do nothing.
type Builder struct {
	catalog *Catalog
	op      operation
	target  *NamedTableReference
	tables  map[string]*NamedTableReference // by identification variable
	spec    *QuerySpec
	where   Predicate
	columns []string
	row     []Expression
	rows    [][]Expression
	sets    []Assignment
	ret     []*ColumnReference
	err     error
}

func (c *Catalog) newBuilder(op operation, table, alias string) *Builder {
	b := &Builder{catalog: c, op: op, tables: make(map[string]*NamedTableReference)}
	b.target, b.err = c.Table(table, alias)
	if b.err == nil {
		b.tables[b.target.IdentificationVariable()] = b.target
	}
	return b
}

// Select starts a SELECT over table.
func (c *Catalog) Select(table, alias string) *Builder {
	b := c.newBuilder(opSelect, table, alias)
	b.spec = &QuerySpec{}
	if b.err == nil {
		b.spec.From = []*TableGroup{From(b.target)}
	}
	return b
}

// Insert starts an INSERT into table.
func (c *Catalog) Insert(table string) *Builder {
	return c.newBuilder(opInsert, table, "")
}

// Update starts an UPDATE of table.
func (c *Catalog) Update(table, alias string) *Builder {
	return c.newBuilder(opUpdate, table, alias)
}

// Delete starts a DELETE from table.
func (c *Catalog) Delete(table, alias string) *Builder {
	return c.newBuilder(opDelete, table, alias)
}

// Col resolves "alias.column", or "column" of the target table, to a typed
// reference. An unknown name records the error on the builder.
func (b *Builder) Col(name string) *ColumnReference {
	if b.err != nil {
		return &ColumnReference{Column: name}
	}
	table := b.target
	column := name
	if q, col, ok := strings.Cut(name, "."); ok {
		t, found := b.tables[q]
		if !found {
			b.err = fmt.Errorf("%w: no table aliased %q", ErrUnknownTable, q)
			return &ColumnReference{Column: name}
		}
		table, column = t, col
	}
	ref, err := b.catalog.Column(table, column)
	if err != nil {
		b.err = err
		return &ColumnReference{Column: name}
	}
	return ref
}

func (b *Builder) require(op operation, method string) bool {
	if b.err != nil {
		return false
	}
	if b.op != op {
		b.err = fmt.Errorf("%s() cannot be used with %s", method, b.op)
		return false
	}
	return true
}

func (op operation) String() string {
	switch op {
	case opInsert:
		return "INSERT"
	case opUpdate:
		return "UPDATE"
	case opDelete:
		return "DELETE"
	default:
		return "SELECT"
	}
}

// Fields adds columns to the select list.
func (b *Builder) Fields(names ...string) *Builder {
	if !b.require(opSelect, "Fields") {
		return b
	}
	for _, name := range names {
		b.spec.Select = append(b.spec.Select, SelectItem{Expression: b.Col(name)})
	}
	return b
}

// SelectExpr adds an expression to the select list under alias.
func (b *Builder) SelectExpr(e Expression, alias string) *Builder {
	if !b.require(opSelect, "SelectExpr") {
		return b
	}
	b.spec.Select = append(b.spec.Select, SelectItem{Expression: e, Alias: alias})
	return b
}

// Distinct sets the DISTINCT flag.
func (b *Builder) Distinct() *Builder {
	if b.require(opSelect, "Distinct") {
		b.spec.Distinct = true
	}
	return b
}

// Where adds a condition, conjoined with any earlier ones.
func (b *Builder) Where(p Predicate) *Builder {
	if b.err != nil {
		return b
	}
	if b.op == opInsert {
		b.err = fmt.Errorf("Where() cannot be used with INSERT")
		return b
	}
	b.where = AndOf(b.where, p)
	return b
}

// WhereField is a convenience method for a single column comparison.
func (b *Builder) WhereField(column string, op ComparisonOperator, value Expression) *Builder {
	return b.Where(Compare(b.Col(column), op, value))
}

// Join adds an INNER JOIN.
func (b *Builder) Join(table, alias string, on func(*Builder) Predicate) *Builder {
	return b.addJoin(InnerJoin, table, alias, on)
}

// LeftJoin adds a LEFT JOIN.
func (b *Builder) LeftJoin(table, alias string, on func(*Builder) Predicate) *Builder {
	return b.addJoin(LeftJoin, table, alias, on)
}

// RightJoin adds a RIGHT JOIN.
func (b *Builder) RightJoin(table, alias string, on func(*Builder) Predicate) *Builder {
	return b.addJoin(RightJoin, table, alias, on)
}

// CrossJoin adds a CROSS JOIN.
func (b *Builder) CrossJoin(table, alias string) *Builder {
	return b.addJoin(CrossJoin, table, alias, nil)
}

// addJoin registers the joined table before on runs, so the condition can
// reference it through Col.
func (b *Builder) addJoin(kind JoinType, table, alias string, on func(*Builder) Predicate) *Builder {
	if !b.require(opSelect, "Join") {
		return b
	}
	ref, err := b.catalog.Table(table, alias)
	if err != nil {
		b.err = err
		return b
	}
	id := ref.IdentificationVariable()
	if _, dup := b.tables[id]; dup {
		b.err = fmt.Errorf("duplicate table alias %q", id)
		return b
	}
	b.tables[id] = ref

	var pred Predicate
	if on != nil {
		pred = on(b)
	} else if kind != CrossJoin {
		b.err = fmt.Errorf("%sjoin on %s requires a condition", kind.Text(), table)
		return b
	}
	b.spec.From[0].Join(kind, From(ref), pred)
	return b
}

// GroupBy adds GROUP BY columns.
func (b *Builder) GroupBy(names ...string) *Builder {
	if !b.require(opSelect, "GroupBy") {
		return b
	}
	for _, name := range names {
		b.spec.GroupBy = append(b.spec.GroupBy, b.Col(name))
	}
	return b
}

// Having adds a HAVING condition, conjoined with any earlier ones.
func (b *Builder) Having(p Predicate) *Builder {
	if !b.require(opSelect, "Having") {
		return b
	}
	b.spec.Having = AndOf(b.spec.Having, p)
	return b
}

// OrderBy adds an ascending sort column.
func (b *Builder) OrderBy(name string) *Builder {
	if b.require(opSelect, "OrderBy") {
		b.spec.OrderBy = append(b.spec.OrderBy, Asc(b.Col(name)))
	}
	return b
}

// OrderByDesc adds a descending sort column.
func (b *Builder) OrderByDesc(name string) *Builder {
	if b.require(opSelect, "OrderByDesc") {
		b.spec.OrderBy = append(b.spec.OrderBy, Desc(b.Col(name)))
	}
	return b
}

// Offset sets the number of rows to skip. Use a *Parameter to bind it.
func (b *Builder) Offset(e Expression) *Builder {
	if b.require(opSelect, "Offset") {
		b.spec.Offset = e
	}
	return b
}

// Limit sets the maximum number of rows. Use a *Parameter to bind it.
func (b *Builder) Limit(e Expression) *Builder {
	if b.require(opSelect, "Limit") {
		b.spec.Fetch = e
	}
	return b
}

// Set adds a column assignment to an UPDATE.
func (b *Builder) Set(column string, value Expression) *Builder {
	if !b.require(opUpdate, "Set") {
		return b
	}
	if _, err := b.catalog.columnType(b.target.Name, column); err != nil {
		b.err = err
		return b
	}
	b.sets = append(b.sets, Assignment{Column: column, Value: value})
	return b
}

// Value adds a column value to the current INSERT row. Multiple calls build
// up one row; NextRow finalizes it. Every row must name the same columns in
// the same order.
func (b *Builder) Value(column string, value Expression) *Builder {
	if !b.require(opInsert, "Value") {
		return b
	}
	if _, err := b.catalog.columnType(b.target.Name, column); err != nil {
		b.err = err
		return b
	}
	i := len(b.row)
	switch {
	case len(b.rows) == 0:
		b.columns = append(b.columns, column)
	case i >= len(b.columns) || b.columns[i] != column:
		b.err = fmt.Errorf("insert row %d: column %s out of order", len(b.rows)+1, column)
		return b
	}
	b.row = append(b.row, value)
	return b
}

// NextRow finalizes the current INSERT row and starts a new one.
func (b *Builder) NextRow() *Builder {
	if !b.require(opInsert, "NextRow") {
		return b
	}
	if len(b.row) == 0 {
		b.err = fmt.Errorf("NextRow() called on an empty row")
		return b
	}
	if len(b.row) != len(b.columns) {
		b.err = fmt.Errorf("insert row %d has %d values, want %d", len(b.rows)+1, len(b.row), len(b.columns))
		return b
	}
	b.rows = append(b.rows, b.row)
	b.row = nil
	return b
}

// Returning adds RETURNING columns to a mutation.
func (b *Builder) Returning(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	if b.op == opSelect {
		b.err = fmt.Errorf("Returning() cannot be used with SELECT")
		return b
	}
	refs, err := b.catalog.Returning(b.target.Name, columns...)
	if err != nil {
		b.err = err
		return b
	}
	b.ret = append(b.ret, refs...)
	return b
}

// Build returns the constructed statement or the first error.
func (b *Builder) Build() (Statement, error) {
	if b.err != nil {
		return nil, b.err
	}

	var stmt Statement
	switch b.op {
	case opSelect:
		b.spec.Where = b.where
		if len(b.spec.Select) == 0 {
			b.spec.Select = Items(&Star{})
		}
		stmt = Select(b.spec)
	case opInsert:
		if len(b.row) > 0 {
			b.NextRow()
			if b.err != nil {
				return nil, b.err
			}
		}
		if len(b.rows) == 0 {
			return nil, fmt.Errorf("INSERT into %s has no values", b.target.Name)
		}
		stmt = &InsertStatement{Target: b.target, Columns: b.columns, Values: b.rows, Returning: b.ret}
	case opUpdate:
		if len(b.sets) == 0 {
			return nil, fmt.Errorf("UPDATE of %s has no assignments", b.target.Name)
		}
		stmt = &UpdateStatement{Target: b.target, Assignments: b.sets, Where: b.where, Returning: b.ret}
	case opDelete:
		stmt = &DeleteStatement{Target: b.target, Where: b.where, Returning: b.ret}
	}

	if err := Validate(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

// MustBuild returns the statement or panics on error.
func (b *Builder) MustBuild() Statement {
	stmt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return stmt
}

// Render builds the statement and translates it with d.
func (b *Builder) Render(d Dialect, opts QueryOptions) (*Result, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return d.Render(stmt, opts)
}
