package types

// TableReference is a table-like source in a FROM clause.
type TableReference interface {
	tableReferenceNode()
	// IdentificationVariable returns the alias other nodes qualify columns with.
	IdentificationVariable() string
}

// NamedTableReference is a base table with an optional alias.
type NamedTableReference struct {
	Name  string
	Alias string
}

// DerivedTableReference is a subquery in the FROM clause.
// Lateral derived tables may reference columns of preceding FROM items.
type DerivedTableReference struct {
	Select  *SelectStatement
	Alias   string
	Columns []string
	Lateral bool
}

func (*NamedTableReference) tableReferenceNode()   {}
func (*DerivedTableReference) tableReferenceNode() {}

// IdentificationVariable returns the alias, or the table name when unaliased.
func (t *NamedTableReference) IdentificationVariable() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// IdentificationVariable returns the derived table alias.
func (t *DerivedTableReference) IdentificationVariable() string {
	return t.Alias
}

// Table is shorthand for an aliased NamedTableReference.
func Table(name, alias string) *NamedTableReference {
	return &NamedTableReference{Name: name, Alias: alias}
}

// TableReferenceJoin joins an additional physical table that belongs to the
// same logical table group, e.g. a joined-subclass table.
type TableReferenceJoin struct {
	Table     *NamedTableReference
	Predicate Predicate
	Type      JoinType
}

// TableGroupJoin joins another table group.
type TableGroupJoin struct {
	Group     *TableGroup
	Predicate Predicate
	Type      JoinType
}

// TableGroup is a primary table reference plus everything joined to it.
type TableGroup struct {
	Primary        TableReference
	ReferenceJoins []*TableReferenceJoin
	Joins          []*TableGroupJoin
}

// From is shorthand for a TableGroup without joins.
func From(primary TableReference) *TableGroup {
	return &TableGroup{Primary: primary}
}

// Join appends a table group join and returns the receiver.
func (g *TableGroup) Join(kind JoinType, group *TableGroup, on Predicate) *TableGroup {
	g.Joins = append(g.Joins, &TableGroupJoin{Type: kind, Group: group, Predicate: on})
	return g
}

// JoinTable appends a table reference join and returns the receiver.
func (g *TableGroup) JoinTable(kind JoinType, table *NamedTableReference, on Predicate) *TableGroup {
	g.ReferenceJoins = append(g.ReferenceJoins, &TableReferenceJoin{Type: kind, Table: table, Predicate: on})
	return g
}
