package sqlast_test

import (
	"fmt"

	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/dialects"
)

func exampleCatalog() *sqlast.Catalog {
	project := dbml.NewProject("example")
	employees := dbml.NewTable("employees")
	employees.AddColumn(dbml.NewColumn("id", "bigint"))
	employees.AddColumn(dbml.NewColumn("name", "varchar(255)"))
	employees.AddColumn(dbml.NewColumn("salary", "numeric(10,2)"))
	project.AddTable(employees)

	c, err := sqlast.NewCatalog(project)
	if err != nil {
		panic(err)
	}
	return c
}

func ExampleCatalog_Select() {
	c := exampleCatalog()
	query := c.Select("employees", "e").
		Fields("id", "name").
		WhereField("salary", sqlast.GreaterThan, sqlast.Param("min", sqlast.TypeDecimal)).
		OrderBy("name").
		Offset(sqlast.Lit(20)).
		Limit(sqlast.Lit(10))

	for _, target := range [][2]string{{"db2", "10.5"}, {"mssql", ""}, {"mariadb", "10.5"}} {
		d, err := dialects.Open(target[0], target[1])
		if err != nil {
			panic(err)
		}
		result, err := query.Render(d, sqlast.QueryOptions{})
		if err != nil {
			panic(err)
		}
		fmt.Println(result.SQL)
	}

	// Output:
	// select r_0_.c0,r_0_.c1 from (select e.id c0,e.name c1,row_number() over(order by e.name) rn from employees e where e.salary>?) r_0_ where r_0_.rn>20 and r_0_.rn<=30 order by r_0_.rn
	// select e.id,e.name from employees e where e.salary>@p1 order by e.name offset 20 rows fetch next 10 rows only
	// select e.id,e.name from employees e where e.salary>? order by e.name limit 10 offset 20
}

func ExampleDialect_unsupported() {
	d, _ := dialects.Open("db2", "11.5")
	stmt := exampleCatalog().Select("employees", "e").Fields("id").MustBuild()

	_, err := d.Render(stmt, sqlast.QueryOptions{
		Lock: sqlast.LockOptions{Mode: sqlast.LockPessimisticWrite, Wait: sqlast.NoWait},
	})
	fmt.Println(sqlast.IsUnsupported(err))
	fmt.Println(err)

	// Output:
	// true
	// DB2 11.5: nowait is not supported
}
