package integration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/sqlexec"
	sqltest "github.com/zoobzio/sqlast/testing"
)

// seedRows are inserted by every backend. Names sort in id order.
var seedRows = []struct {
	id, dept int
	manager  any
	name     string
	salary   int
}{
	{1, 1, nil, "Ada", 5000},
	{2, 1, 1, "Bob", 3000},
	{3, 1, 1, "Cy", 4000},
	{4, 2, 1, "Dee", 2000},
	{5, 2, 4, "Eve", 6000},
	{6, 2, 4, "Fay", 3500},
	{7, 3, 5, "Gus", 1000},
	{8, 3, 5, "Hal", 4500},
}

// backend is one live database the shared scenarios run against.
type backend struct {
	dialect sqlast.Dialect
	conn    *sql.Conn
	// insert is the seed statement in the driver's placeholder syntax.
	insert string
}

func seed(ctx context.Context, t *testing.T, b backend) {
	t.Helper()
	for _, r := range seedRows {
		_, err := b.conn.ExecContext(ctx, b.insert, r.id, r.name, r.salary, r.dept, r.manager)
		require.NoError(t, err, "seed employee %d", r.id)
	}
}

func queryIDs(ctx context.Context, t *testing.T, ex *sqlexec.Executor, stmt sqlast.Statement, opts sqlast.QueryOptions, values map[string]any) []int64 {
	t.Helper()
	rows, err := ex.Query(ctx, stmt, opts, values)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		// Paged selects also return the name column.
		cols, err := rows.Columns()
		require.NoError(t, err)
		dest := make([]any, len(cols))
		var id int64
		dest[0] = &id
		for i := 1; i < len(dest); i++ {
			dest[i] = new(any)
		}
		require.NoError(t, rows.Scan(dest...))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

// runScenarios checks that the SQL rendered for b.dialect executes and
// returns the rows the statement means.
func runScenarios(ctx context.Context, t *testing.T, b backend) {
	c := sqltest.TestCatalog(t)
	ex := sqlexec.New(b.conn, b.dialect)

	t.Run("paging", func(t *testing.T) {
		stmt := sqltest.PagedEmployees(t, c, 2, 3)
		ids := queryIDs(ctx, t, ex, stmt, sqlast.QueryOptions{}, map[string]any{"min_salary": 2000})
		assert.Equal(t, []int64{3, 4, 5}, ids)
	})

	t.Run("keyset", func(t *testing.T) {
		stmt := sqltest.EmployeesAfter(t, c)
		ids := queryIDs(ctx, t, ex, stmt, sqlast.QueryOptions{}, map[string]any{"dept": 1, "id": 3})
		assert.Equal(t, []int64{4, 5, 6, 7, 8}, ids)
	})

	t.Run("lock", func(t *testing.T) {
		lock := sqlast.LockOptions{Mode: sqlast.LockPessimisticWrite}
		if b.dialect.Capabilities().SkipLocked {
			lock.Wait = sqlast.SkipLocked
		}

		tx, err := b.conn.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		txex := sqlexec.New(tx, b.dialect)
		stmt := sqltest.EmployeesAfter(t, c)
		ids := queryIDs(ctx, t, txex, stmt, sqlast.QueryOptions{Lock: lock}, map[string]any{"dept": 2, "id": 6})
		assert.Equal(t, []int64{7, 8}, ids)
	})

	t.Run("insert returning", func(t *testing.T) {
		if !b.dialect.Capabilities().Returning.Supports(&sqlast.InsertStatement{}) {
			t.Skipf("%s %s has no insert returning", b.dialect.Name(), b.dialect.Version())
		}
		target, err := c.Table("orders", "")
		require.NoError(t, err)
		returning, err := c.Returning("orders", "id", "status")
		require.NoError(t, err)

		stmt := &sqlast.InsertStatement{
			Target:  target,
			Columns: []string{"id", "employee_id", "total", "status"},
			Values: [][]sqlast.Expression{{
				sqlast.Param("id", sqlast.TypeBigInt),
				sqlast.Param("employee", sqlast.TypeBigInt),
				sqlast.Lit(125),
				sqlast.Lit("new"),
			}},
			Returning: returning,
		}
		rows, err := ex.Query(ctx, stmt, sqlast.QueryOptions{}, map[string]any{"id": 100, "employee": 5})
		require.NoError(t, err)
		defer rows.Close()

		require.True(t, rows.Next())
		var (
			id     int64
			status string
		)
		require.NoError(t, rows.Scan(&id, &status))
		assert.Equal(t, int64(100), id)
		assert.Equal(t, "new", status)
		assert.False(t, rows.Next())
	})

	t.Run("temporary id table", func(t *testing.T) {
		var called bool
		err := ex.WithTemporaryIDTable(ctx, c, "Employee", func(table string) error {
			called = true
			assert.Equal(t, "HT_employees", table)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})
}
