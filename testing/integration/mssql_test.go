package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/mssql"
	sqltest "github.com/zoobzio/sqlast/testing"
)

func setupMSSQL(ctx context.Context, t *testing.T, version sqlast.Version) backend {
	t.Helper()
	skipShort(t)

	conn := connect(ctx, t, getMSSQLContainer(t).db)
	execAll(ctx, t, conn,
		`IF OBJECT_ID('orders', 'U') IS NOT NULL DROP TABLE orders`,
		`IF OBJECT_ID('employees', 'U') IS NOT NULL DROP TABLE employees`,
		`IF OBJECT_ID('departments', 'U') IS NOT NULL DROP TABLE departments`,
		`CREATE TABLE departments (id BIGINT PRIMARY KEY, name NVARCHAR(255) NOT NULL)`,
		`CREATE TABLE employees (
			id BIGINT PRIMARY KEY,
			name NVARCHAR(255) NOT NULL,
			salary DECIMAL(10,2) NOT NULL,
			dept_id BIGINT,
			manager_id BIGINT,
			active BIT DEFAULT 1
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			employee_id BIGINT,
			total DECIMAL(10,2) NOT NULL,
			status NVARCHAR(50) DEFAULT 'pending'
		)`,
	)

	b := backend{
		dialect: mssql.New(version),
		conn:    conn,
		insert:  "INSERT INTO employees (id, name, salary, dept_id, manager_id) VALUES (@p1, @p2, @p3, @p4, @p5)",
	}
	seed(ctx, t, b)
	return b
}

func TestMSSQLIntegration(t *testing.T) {
	ctx := context.Background()
	runScenarios(ctx, t, setupMSSQL(ctx, t, mssql.DefaultVersion))
}

// The row_number emulation used before 2012 still runs on current servers.
func TestMSSQLIntegration_RowNumberPaging(t *testing.T) {
	ctx := context.Background()
	b := setupMSSQL(ctx, t, sqlast.V(10))

	r := sqltest.Render(t, b.dialect, sqltest.PagedEmployees(t, sqltest.TestCatalog(t), 2, 3), sqlast.QueryOptions{})
	assert.Contains(t, r.SQL, "row_number() over(")
	runScenarios(ctx, t, b)
}
