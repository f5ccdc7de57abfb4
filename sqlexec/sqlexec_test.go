package sqlexec

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/db2"
	"github.com/zoobzio/sqlast/sqlite"
)

func employeeByID() (sqlast.Statement, *sqlast.Parameter) {
	id := sqlast.Param("id", sqlast.TypeBigInt)
	spec := &sqlast.QuerySpec{
		Select: sqlast.Items(sqlast.Col("e", "id"), sqlast.Col("e", "name")),
		From:   []*sqlast.TableGroup{sqlast.From(sqlast.Table("employees", "e"))},
		Where:  sqlast.Compare(sqlast.Col("e", "id"), sqlast.Equal, id),
	}
	return sqlast.Select(spec), id
}

func newMock(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, sqlite.New(sqlite.DefaultVersion)), mock
}

func TestQuery_BindsByName(t *testing.T) {
	ex, mock := newMock(t)
	stmt, _ := employeeByID()

	mock.ExpectQuery(regexp.QuoteMeta("select e.id,e.name from employees e where e.id=?")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(42, "Ann"))

	rows, err := ex.Query(context.Background(), stmt, sqlast.QueryOptions{}, map[string]any{"id": 42})
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var (
		id   int
		name string
	)
	require.NoError(t, rows.Scan(&id, &name))
	assert.Equal(t, 42, id)
	assert.Equal(t, "Ann", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_OptionValuesWin(t *testing.T) {
	ex, mock := newMock(t)
	stmt, id := employeeByID()

	mock.ExpectQuery(regexp.QuoteMeta("select e.id,e.name from employees e where e.id=?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	opts := sqlast.QueryOptions{Values: map[*sqlast.Parameter]any{id: 7}}
	rows, err := ex.Query(context.Background(), stmt, opts, map[string]any{"id": 8})
	require.NoError(t, err)
	rows.Close()
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExec_Unbound(t *testing.T) {
	ex, mock := newMock(t)
	stmt, _ := employeeByID()

	_, err := ex.Exec(context.Background(), stmt, sqlast.QueryOptions{}, nil)
	require.ErrorIs(t, err, ErrUnboundParameter)
	assert.Contains(t, err.Error(), "id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExec_DriverError(t *testing.T) {
	ex, mock := newMock(t)
	r := &sqlast.Result{SQL: "delete from employees"}

	boom := errors.New("boom")
	mock.ExpectExec(regexp.QuoteMeta(r.SQL)).WillReturnError(boom)

	_, err := ex.ExecResult(context.Background(), r)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRender_UnsupportedSkipsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ex := New(db, db2.New(sqlast.V(9, 7)))
	stmt, _ := employeeByID()
	opts := sqlast.QueryOptions{Lock: sqlast.LockOptions{Mode: sqlast.LockPessimisticWrite, Wait: sqlast.NoWait}}

	_, err = ex.Query(context.Background(), stmt, opts, map[string]any{"id": 1})
	assert.True(t, sqlast.IsUnsupported(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBind(t *testing.T) {
	a := sqlast.Param("a", sqlast.TypeInteger)
	b := sqlast.Param("b", sqlast.TypeInteger)
	r := &sqlast.Result{Bindings: []sqlast.Binding{
		{Parameter: a, Value: 1, Bound: true},
		{Parameter: b},
		{Parameter: a, Value: 1, Bound: true},
	}}

	Bind(r, map[string]any{"a": 5, "b": 2})
	assert.Equal(t, []any{1, 2, 1}, r.Args())
	assert.Empty(t, r.Unbound())
}

func testCatalog(t *testing.T) *sqlast.Catalog {
	t.Helper()
	project := dbml.NewProject("test")
	employees := dbml.NewTable("employees")
	employees.AddColumn(dbml.NewColumn("id", "bigint"))
	project.AddTable(employees)

	c, err := sqlast.NewCatalog(project)
	require.NoError(t, err)
	_, err = c.Register(sqlast.EntityDefinition{Name: "Employee", IDs: []string{"id"}})
	require.NoError(t, err)
	return c
}

func TestWithTemporaryIDTable(t *testing.T) {
	ex, mock := newMock(t)
	c := testCatalog(t)

	create, err := c.TemporaryIDTable("Employee")
	require.NoError(t, err)
	drop, err := c.DropTemporaryIDTable("Employee")
	require.NoError(t, err)
	createSQL, err := ex.Dialect().Render(create, sqlast.QueryOptions{})
	require.NoError(t, err)
	dropSQL, err := ex.Dialect().Render(drop, sqlast.QueryOptions{})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(createSQL.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(dropSQL.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))

	var seen string
	err = ex.WithTemporaryIDTable(context.Background(), c, "Employee", func(table string) error {
		seen = table
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "HT_employees", seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTemporaryIDTable_DropsOnFailure(t *testing.T) {
	ex, mock := newMock(t)
	c := testCatalog(t)

	mock.ExpectExec("HT_employees").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("HT_employees").WillReturnResult(sqlmock.NewResult(0, 0))

	boom := errors.New("boom")
	err := ex.WithTemporaryIDTable(context.Background(), c, "Employee", func(string) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())

	err = ex.WithTemporaryIDTable(context.Background(), c, "Nobody", func(string) error { return nil })
	assert.ErrorIs(t, err, sqlast.ErrUnknownEntity)
}
