package testing

import (
	"errors"
	"testing"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/db2"
	"github.com/zoobzio/sqlast/postgres"
)

func TestTestCatalog(t *testing.T) {
	c := TestCatalog(t)
	for _, name := range []string{"Employee", "Department", "Order"} {
		if _, err := c.Entity(name); err != nil {
			t.Errorf("Entity(%s): %v", name, err)
		}
	}

	e, err := c.Entity("Order")
	AssertNoError(t, err)
	if e.Table != "orders" {
		t.Errorf("Order table = %q, want orders", e.Table)
	}
}

func TestPagedEmployees(t *testing.T) {
	c := TestCatalog(t)
	stmt := PagedEmployees(t, c, 10, 5)

	r := Render(t, postgres.New(postgres.DefaultVersion), stmt, sqlast.QueryOptions{})
	AssertSQL(t,
		"select e.id,e.name from employees e where e.salary>=$1 order by e.name,e.id offset 10 rows fetch next 5 rows only",
		r.SQL)
	AssertSlots(t, r, "min_salary")
}

func TestEmployeesAfter(t *testing.T) {
	c := TestCatalog(t)
	r := Render(t, db2.New(db2.DefaultVersion), EmployeesAfter(t, c), sqlast.QueryOptions{})
	AssertSQL(t,
		"select e.id from employees e where (e.dept_id>? or (e.dept_id=? and e.id>?)) order by e.dept_id,e.id",
		r.SQL)
	AssertSlots(t, r, "dept", "dept", "id")
}

func TestAssertUnsupported(t *testing.T) {
	err := sqlast.UnsupportedFeatureError{Feature: "nowait", Dialect: "DB2 11.5"}
	AssertUnsupported(t, err, "nowait")
}

func TestAssertErrorContains(t *testing.T) {
	AssertErrorContains(t, errors.New("sqlast: unknown table: x"), "unknown table")
}

func TestAssertNoError_Nil(t *testing.T) {
	AssertNoError(t, nil)
}
