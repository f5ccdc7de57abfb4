package mssql

import (
	"strings"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

type translator struct {
	*render.Translator
}

// VisitOffsetFetchClause renders OFFSET/FETCH, which SQL Server only accepts
// after an ORDER BY and with an explicit OFFSET.
func (t *translator) VisitOffsetFetchClause(part types.QueryPart) error {
	if t.IsRowNumberingCurrentQueryPart() {
		return nil
	}
	p := t.Paging(part)
	if !p.HasOffset() && !p.HasFetch() {
		return nil
	}
	if len(part.SortSpecs()) == 0 {
		t.AppendSQL(" order by (select 0)")
	}
	if p.HasOffset() {
		if err := t.RenderOffset(p.Offset); err != nil {
			return err
		}
	} else {
		t.AppendSQL(" offset 0 rows")
	}
	if !p.HasFetch() {
		return nil
	}
	return t.RenderFetch(p.Fetch, true, p.FetchType)
}

// ---------------------------------------------------------------------------
// Locking
// ---------------------------------------------------------------------------

// RenderNamedTableReference appends the lock hints to tables of the root
// query.
func (t *translator) RenderNamedTableReference(ref *types.NamedTableReference) error {
	if err := t.Translator.RenderNamedTableReference(ref); err != nil {
		return err
	}
	if t.IsRoot(t.CurrentQueryPart()) {
		t.AppendSQL(lockHint(t.LockOptions()))
	}
	return nil
}

func lockHint(lock types.LockOptions) string {
	var hints []string
	switch lock.Mode {
	case types.LockPessimisticWrite:
		hints = []string{"updlock", "rowlock"}
	case types.LockPessimisticRead:
		hints = []string{"holdlock", "rowlock"}
	default:
		return ""
	}
	switch lock.Wait {
	case types.SkipLocked:
		hints = append(hints, "readpast")
	case types.NoWait:
		hints = append(hints, "nowait")
	}
	return " with (" + strings.Join(hints, ",") + ")"
}

// RenderLockClause renders nothing since locks are table hints. It still
// rejects locking a set operation and drops timeouts.
func (t *translator) RenderLockClause() error {
	lock := t.LockOptions()
	if lock.Mode == types.LockNone || lock.Mode == types.LockRead {
		return nil
	}
	if stmt, ok := t.Statement().(*types.SelectStatement); ok {
		if _, group := stmt.Query.(*types.QueryGroup); group {
			return t.Unsupported("row locking on a set operation")
		}
	}
	if lock.Wait == types.WaitForever && lock.Timeout > 0 {
		t.Logger().Warn("lock timeout not supported, waiting indefinitely",
			"dialect", t.Profile().DisplayName(),
			"timeout", lock.Timeout,
		)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lateral derived tables
// ---------------------------------------------------------------------------

// VisitDerivedTableReference renders lateral derived tables without the
// keyword; the APPLY operator joining them carries the lateral semantics.
func (t *translator) VisitDerivedTableReference(ref *types.DerivedTableReference) error {
	if !ref.Lateral {
		return t.Translator.VisitDerivedTableReference(ref)
	}
	plain := *ref
	plain.Lateral = false
	return t.Translator.VisitDerivedTableReference(&plain)
}

// RenderTableGroupJoin joins lateral derived tables with CROSS or OUTER APPLY.
func (t *translator) RenderTableGroupJoin(j *types.TableGroupJoin) error {
	ref, ok := j.Group.Primary.(*types.DerivedTableReference)
	if !ok || !ref.Lateral {
		return t.Translator.RenderTableGroupJoin(j)
	}
	switch j.Type {
	case types.CrossJoin, types.InnerJoin:
		t.AppendSQL(" cross apply ")
	case types.LeftJoin:
		t.AppendSQL(" outer apply ")
	default:
		return t.Unsupported(j.Type.Text() + "join of a lateral derived table")
	}
	if j.Type != types.CrossJoin && !types.IsEmpty(j.Predicate) {
		return t.Unsupported("join condition on a lateral derived table", "move the condition into the derived table")
	}
	if err := t.VisitDerivedTableReference(ref); err != nil {
		return err
	}
	for _, nested := range j.Group.Joins {
		if err := t.RenderTableGroupJoin(nested); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// DML with OUTPUT
// ---------------------------------------------------------------------------

func (t *translator) VisitInsertStatementOnly(stmt *types.InsertStatement) error {
	t.AppendSQL("insert into ")
	t.AppendSQL(t.Identifier(stmt.Target.Name))
	if len(stmt.Columns) > 0 {
		t.AppendSQL(" (")
		for i, c := range stmt.Columns {
			if i > 0 {
				t.AppendSQL(",")
			}
			t.AppendSQL(t.Identifier(c))
		}
		t.AppendSQL(")")
	}
	t.renderOutput(stmt, "inserted")

	if stmt.Source != nil {
		t.AppendSQL(" ")
		return t.VisitQueryPart(stmt.Source)
	}
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
	return nil
}

// VisitUpdateStatementOnly renders update <alias> set ... from <table> <alias>
// when the target is aliased.
func (t *translator) VisitUpdateStatementOnly(stmt *types.UpdateStatement) error {
	t.AppendSQL("update ")
	t.AppendSQL(t.Identifier(stmt.Target.IdentificationVariable()))
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
	t.renderOutput(stmt, "inserted")
	if stmt.Target.Alias != "" {
		t.AppendSQL(" from ")
		t.RenderDMLTarget(stmt.Target)
	}
	return t.RenderDMLWhere(stmt.Where)
}

// VisitDeleteStatementOnly renders delete <alias> from <table> <alias> when
// the target is aliased.
func (t *translator) VisitDeleteStatementOnly(stmt *types.DeleteStatement) error {
	if stmt.Target.Alias == "" {
		t.AppendSQL("delete from ")
		t.AppendSQL(t.Identifier(stmt.Target.Name))
		t.renderOutput(stmt, "deleted")
	} else {
		t.AppendSQL("delete ")
		t.AppendSQL(t.Identifier(stmt.Target.Alias))
		t.renderOutput(stmt, "deleted")
		t.AppendSQL(" from ")
		t.RenderDMLTarget(stmt.Target)
	}
	return t.RenderDMLWhere(stmt.Where)
}

func (t *translator) renderOutput(stmt types.Mutation, image string) {
	for i, c := range stmt.ReturningColumns() {
		if i == 0 {
			t.AppendSQL(" output ")
		} else {
			t.AppendSQL(",")
		}
		t.AppendSQL(image + "." + t.Identifier(c.Column))
	}
}

// VisitReturningColumns renders nothing; returning columns are an OUTPUT clause.
func (t *translator) VisitReturningColumns(types.Mutation) error {
	return nil
}
