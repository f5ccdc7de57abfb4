package render

import "github.com/zoobzio/sqlast/internal/types"

// VisitInsertStatementOnly renders an INSERT without its CTEs.
func (t *Translator) VisitInsertStatementOnly(stmt *types.InsertStatement) error {
	t.AppendSQL("insert into ")
	t.AppendSQL(t.Identifier(stmt.Target.Name))
	if len(stmt.Columns) > 0 {
		t.AppendSQL(" (")
		t.appendIdentifiers(stmt.Columns)
		t.AppendSQL(")")
	}

	if stmt.Source != nil {
		t.AppendSQL(" ")
		if err := t.renderQueryPart(stmt.Source); err != nil {
			return err
		}
	} else {
		t.AppendSQL(" values ")
		for i, row := range stmt.Values {
			if i > 0 {
				t.AppendSQL(",")
			}
			t.AppendSQL("(")
			if err := t.RenderCommaSeparated(row); err != nil {
				return err
			}
			t.AppendSQL(")")
		}
	}
	return t.renderReturning(stmt)
}

// VisitUpdateStatementOnly renders an UPDATE without its CTEs.
func (t *Translator) VisitUpdateStatementOnly(stmt *types.UpdateStatement) error {
	t.AppendSQL("update ")
	t.RenderDMLTarget(stmt.Target)
	t.AppendSQL(" set ")
	for i, a := range stmt.Assignments {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(t.Identifier(a.Column))
		t.AppendSQL("=")
		if err := t.Visit(a.Value); err != nil {
			return err
		}
	}
	if err := t.RenderDMLWhere(stmt.Where); err != nil {
		return err
	}
	return t.renderReturning(stmt)
}

// VisitDeleteStatementOnly renders a DELETE without its CTEs.
func (t *Translator) VisitDeleteStatementOnly(stmt *types.DeleteStatement) error {
	t.AppendSQL("delete from ")
	t.RenderDMLTarget(stmt.Target)
	if err := t.RenderDMLWhere(stmt.Where); err != nil {
		return err
	}
	return t.renderReturning(stmt)
}

// RenderDMLTarget renders the target table of an UPDATE or DELETE.
func (t *Translator) RenderDMLTarget(target *types.NamedTableReference) {
	t.AppendSQL(t.Identifier(target.Name))
	if target.Alias != "" {
		if t.profile.Syntax.DMLAliasAs {
			t.AppendSQL(" as")
		}
		t.AppendSQL(" ")
		t.AppendSQL(t.Identifier(target.Alias))
	}
}

// RenderDMLWhere renders " where <predicate>" unless the predicate is empty.
func (t *Translator) RenderDMLWhere(where types.Predicate) error {
	if types.IsEmpty(where) {
		return nil
	}
	t.AppendSQL(" where ")
	return t.VisitPredicate(where)
}

func (t *Translator) renderReturning(stmt types.Mutation) error {
	if len(stmt.ReturningColumns()) == 0 {
		return nil
	}
	return t.hooks.VisitReturningColumns(stmt)
}

// VisitReturningColumns renders " returning <columns>".
func (t *Translator) VisitReturningColumns(stmt types.Mutation) error {
	if !t.profile.Capabilities.Returning.Supports(stmt) {
		return t.Unsupported("returning on " + statementKind(stmt))
	}
	t.AppendSQL(" returning ")
	t.RenderReturningColumnList(stmt)
	return nil
}

// RenderReturningColumnList renders the unqualified returning columns.
func (t *Translator) RenderReturningColumnList(stmt types.Mutation) {
	for i, c := range stmt.ReturningColumns() {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(t.Identifier(c.Column))
	}
}

func (t *Translator) appendIdentifiers(names []string) {
	for i, n := range names {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(t.Identifier(n))
	}
}

func statementKind(stmt types.Statement) string {
	switch stmt.(type) {
	case *types.InsertStatement:
		return "insert"
	case *types.UpdateStatement:
		return "update"
	case *types.DeleteStatement:
		return "delete"
	default:
		return "select"
	}
}

// ---------------------------------------------------------------------------
// Temporary tables
// ---------------------------------------------------------------------------

// TemporaryTableName returns the prefixed table name, truncated to the
// dialect's identifier length.
func (t *Translator) TemporaryTableName(name string) string {
	if n := t.profile.Syntax.MaxIdentifierLength; n > 0 && len(name) > n {
		name = name[:n]
	}
	return t.profile.Syntax.TemporaryTablePrefix + t.Identifier(name)
}

func (t *Translator) renderCreateTemporaryTable(stmt *types.CreateTemporaryTable) error {
	syntax := t.profile.Syntax
	t.AppendSQL(syntax.TemporaryTableCreate)
	t.AppendSQL(" ")
	t.AppendSQL(t.TemporaryTableName(stmt.Name))
	t.AppendSQL(" (")
	for i, c := range stmt.Columns {
		if i > 0 {
			t.AppendSQL(",")
		}
		t.AppendSQL(t.Identifier(c.Name))
		t.AppendSQL(" ")
		t.AppendSQL(syntax.ColumnType(c.Type))
		if !c.Nullable {
			t.AppendSQL(" not null")
		}
	}
	t.AppendSQL(")")
	t.AppendSQL(syntax.TemporaryTableSuffix)
	return nil
}

func (t *Translator) renderDropTemporaryTable(stmt *types.DropTemporaryTable) error {
	t.AppendSQL(t.profile.Syntax.TemporaryTableDrop)
	t.AppendSQL(" ")
	t.AppendSQL(t.TemporaryTableName(stmt.Name))
	return nil
}
