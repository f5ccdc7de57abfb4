// Package testing provides test utilities for sqlast.
package testing

import (
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlast"
)

// TestProject returns the schema shared by the sqlast test suites:
// employees, departments and orders.
func TestProject() *dbml.Project {
	project := dbml.NewProject("test")

	employees := dbml.NewTable("employees")
	employees.AddColumn(dbml.NewColumn("id", "bigint"))
	employees.AddColumn(dbml.NewColumn("name", "varchar(255)"))
	employees.AddColumn(dbml.NewColumn("salary", "numeric(10,2)"))
	employees.AddColumn(dbml.NewColumn("dept_id", "bigint"))
	employees.AddColumn(dbml.NewColumn("manager_id", "bigint"))
	employees.AddColumn(dbml.NewColumn("active", "boolean"))
	project.AddTable(employees)

	departments := dbml.NewTable("departments")
	departments.AddColumn(dbml.NewColumn("id", "bigint"))
	departments.AddColumn(dbml.NewColumn("name", "varchar(255)"))
	project.AddTable(departments)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("employee_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "numeric(10,2)"))
	orders.AddColumn(dbml.NewColumn("status", "varchar(50)"))
	project.AddTable(orders)

	return project
}

// TestCatalog returns a catalog over TestProject with the Employee,
// Department and Order entities registered.
func TestCatalog(t testing.TB) *sqlast.Catalog {
	t.Helper()

	c, err := sqlast.NewCatalog(TestProject())
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	for _, name := range []string{"Employee", "Department", "Order"} {
		if _, err := c.Register(sqlast.EntityDefinition{Name: name, IDs: []string{"id"}}); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}
	return c
}

// PagedEmployees selects id and name of employees earning at least the
// "min_salary" parameter, ordered by name, skipping offset rows and
// returning at most fetch rows.
func PagedEmployees(t testing.TB, c *sqlast.Catalog, offset, fetch int) sqlast.Statement {
	t.Helper()

	e := table(t, c, "employees", "e")
	spec := &sqlast.QuerySpec{
		Select: sqlast.Items(column(t, c, e, "id"), column(t, c, e, "name")),
		From:   []*sqlast.TableGroup{sqlast.From(e)},
		Where: sqlast.Compare(
			column(t, c, e, "salary"),
			sqlast.GreaterThanOrEqual,
			sqlast.Param("min_salary", sqlast.TypeDecimal),
		),
		OrderBy: []sqlast.SortSpec{sqlast.Asc(column(t, c, e, "name")), sqlast.Asc(column(t, c, e, "id"))},
	}
	spec.Offset = sqlast.Lit(offset)
	spec.Fetch = sqlast.Lit(fetch)
	return sqlast.Select(spec)
}

// EmployeesAfter selects the ids of employees whose (dept_id, id) sorts
// after the "dept" and "id" parameters, the keyset pagination predicate.
func EmployeesAfter(t testing.TB, c *sqlast.Catalog) sqlast.Statement {
	t.Helper()

	e := table(t, c, "employees", "e")
	spec := &sqlast.QuerySpec{
		Select: sqlast.Items(column(t, c, e, "id")),
		From:   []*sqlast.TableGroup{sqlast.From(e)},
		Where: sqlast.Compare(
			&sqlast.Tuple{Expressions: []sqlast.Expression{column(t, c, e, "dept_id"), column(t, c, e, "id")}},
			sqlast.GreaterThan,
			&sqlast.Tuple{Expressions: []sqlast.Expression{
				sqlast.Param("dept", sqlast.TypeBigInt),
				sqlast.Param("id", sqlast.TypeBigInt),
			}},
		),
		OrderBy: []sqlast.SortSpec{sqlast.Asc(column(t, c, e, "dept_id")), sqlast.Asc(column(t, c, e, "id"))},
	}
	return sqlast.Select(spec)
}

func table(t testing.TB, c *sqlast.Catalog, name, alias string) *sqlast.NamedTableReference {
	t.Helper()
	ref, err := c.Table(name, alias)
	if err != nil {
		t.Fatalf("Failed to resolve table %s: %v", name, err)
	}
	return ref
}

func column(t testing.TB, c *sqlast.Catalog, ref *sqlast.NamedTableReference, name string) *sqlast.ColumnReference {
	t.Helper()
	col, err := c.Column(ref, name)
	if err != nil {
		t.Fatalf("Failed to resolve column %s: %v", name, err)
	}
	return col
}

// Render translates stmt, failing the test on error.
func Render(t testing.TB, d sqlast.Dialect, stmt sqlast.Statement, opts sqlast.QueryOptions) *sqlast.Result {
	t.Helper()
	r, err := d.Render(stmt, opts)
	if err != nil {
		t.Fatalf("Failed to render for %s %s: %v", d.Name(), d.Version(), err)
	}
	return r
}

// AssertSQL compares expected and actual SQL, reporting detailed differences.
func AssertSQL(t testing.TB, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Errorf("SQL mismatch:\nExpected: %s\nActual:   %s", expected, actual)
	}
}

// AssertSlots checks the parameter names bound to each slot, in order.
func AssertSlots(t testing.TB, r *sqlast.Result, expected ...string) {
	t.Helper()
	if len(expected) != len(r.Bindings) {
		t.Errorf("Slot count mismatch: expected %d, got %d\nSQL: %s", len(expected), len(r.Bindings), r.SQL)
		return
	}
	for i, b := range r.Bindings {
		if b.Parameter.Name != expected[i] {
			t.Errorf("Slot %d: expected %q, got %q", i+1, expected[i], b.Parameter.Name)
		}
	}
}

// AssertUnsupported checks that err reports feature as unsupported.
func AssertUnsupported(t testing.TB, err error, feature string) {
	t.Helper()
	var ufErr sqlast.UnsupportedFeatureError
	if !errors.As(err, &ufErr) {
		t.Fatalf("Expected unsupported feature %q, got: %v", feature, err)
	}
	if ufErr.Feature != feature {
		t.Errorf("Expected unsupported feature %q, got %q", feature, ufErr.Feature)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertErrorContains checks that error message contains substr.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}
