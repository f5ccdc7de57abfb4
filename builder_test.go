package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/sqlast/db2"
	"github.com/zoobzio/sqlast/postgres"
)

func renderPostgres(t *testing.T, b *Builder) *Result {
	t.Helper()
	r, err := b.Render(postgres.New(postgres.DefaultVersion), QueryOptions{})
	require.NoError(t, err)
	return r
}

func TestBuilder_Select(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("employees", "e")
	b.Fields("id", "e.name").
		WhereField("salary", GreaterThanOrEqual, Param("min", TypeDecimal)).
		Where(Compare(b.Col("active"), Equal, Lit(true))).
		OrderByDesc("salary").
		OrderBy("id").
		Limit(Lit(10))

	r := renderPostgres(t, b)
	assert.Equal(t,
		"select e.id,e.name from employees e where e.salary>=$1 and e.active=true order by e.salary desc,e.id fetch first 10 rows only",
		r.SQL)
	require.Len(t, r.Bindings, 1)
	assert.Equal(t, TypeDecimal, r.Bindings[0].Parameter.Type)
}

func TestBuilder_ColumnsAreTyped(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("employees", "e")
	assert.Equal(t, TypeDecimal, b.Col("salary").Type)
	assert.Equal(t, TypeBoolean, b.Col("e.active").Type)
	assert.Equal(t, "e", b.Col("name").Qualifier)
}

func TestBuilder_StarByDefault(t *testing.T) {
	r := renderPostgres(t, testCatalog(t).Select("contractors", ""))
	assert.Equal(t, "select * from contractors", r.SQL)
}

func TestBuilder_Join(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("employees", "e").
		Fields("e.id", "c.id").
		LeftJoin("contractors", "c", func(b *Builder) Predicate {
			return Compare(b.Col("c.id"), Equal, b.Col("e.id"))
		}).
		Distinct()

	r := renderPostgres(t, b)
	assert.Equal(t, "select distinct e.id,c.id from employees e left join contractors c on c.id=e.id", r.SQL)
}

func TestBuilder_GroupByHaving(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("order_lines", "l")
	count := &Function{Name: "count", Args: []Expression{&Star{}}}
	b.Fields("order_id").
		SelectExpr(count, "lines").
		GroupBy("order_id").
		Having(Compare(count, GreaterThan, Lit(1)))

	r := renderPostgres(t, b)
	assert.Equal(t,
		"select l.order_id,count(*) lines from order_lines l group by l.order_id having count(*)>1",
		r.SQL)
}

func TestBuilder_PagingOnDB2(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("employees", "e").Fields("id").OrderBy("id").Offset(Lit(20)).Limit(Lit(10))

	r, err := b.Render(db2.New(V(10, 5)), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t,
		"select r_0_.c0 from (select e.id c0,row_number() over(order by e.id) rn from employees e) r_0_"+
			" where r_0_.rn>20 and r_0_.rn<=30 order by r_0_.rn",
		r.SQL)
}

func TestBuilder_Insert(t *testing.T) {
	c := testCatalog(t)
	b := c.Insert("employees").
		Value("id", Param("id1", TypeBigInt)).
		Value("name", Lit("Ann")).
		NextRow().
		Value("id", Param("id2", TypeBigInt)).
		Value("name", Lit("Bo")).
		Returning("id")

	r := renderPostgres(t, b)
	assert.Equal(t, "insert into employees (id,name) values ($1,'Ann'),($2,'Bo') returning id", r.SQL)
}

func TestBuilder_UpdateReturningOnDB2(t *testing.T) {
	c := testCatalog(t)
	b := c.Update("employees", "e").
		Set("name", Lit("Ann")).
		WhereField("id", Equal, Param("id", TypeBigInt)).
		Returning("id", "name")

	r, err := b.Render(db2.New(db2.DefaultVersion), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "select id,name from final table (update employees e set name='Ann' where e.id=?)", r.SQL)
}

func TestBuilder_Delete(t *testing.T) {
	c := testCatalog(t)
	r := renderPostgres(t, c.Delete("employees", "e").WhereField("active", Equal, Lit(false)))
	assert.Equal(t, "delete from employees e where e.active=false", r.SQL)
}

func TestBuilder_Errors(t *testing.T) {
	c := testCatalog(t)

	tests := map[string]*Builder{
		"unknown table":        c.Select("nobody", "n"),
		"unknown column":       c.Select("employees", "e").Fields("salary", "bonus"),
		"unknown alias":        c.Select("employees", "e").Fields("x.id"),
		"fields on update":     c.Update("employees", "e").Fields("id"),
		"where on insert":      c.Insert("employees").Value("id", Lit(1)).Where(Compare(Lit(1), Equal, Lit(1))),
		"update without set":   c.Update("employees", "e"),
		"insert without value": c.Insert("employees"),
		"ragged insert": c.Insert("employees").
			Value("id", Lit(1)).Value("name", Lit("a")).NextRow().
			Value("name", Lit("b")),
		"short insert row": c.Insert("employees").
			Value("id", Lit(1)).Value("name", Lit("a")).NextRow().
			Value("id", Lit(2)).NextRow(),
		"returning on select": c.Select("employees", "e").Returning("id"),
		"duplicate alias": c.Select("employees", "e").Join("contractors", "e", func(b *Builder) Predicate {
			return Compare(b.Col("id"), Equal, b.Col("id"))
		}),
		"join without condition": c.Select("employees", "e").Join("contractors", "c", nil),
		"set unknown column":     c.Update("employees", "e").Set("bonus", Lit(1)),
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build()
			assert.Error(t, err)
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	c := testCatalog(t)
	_, err := c.Select("employees", "e").Fields("bonus").Fields("x.id").Build()
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	c := testCatalog(t)
	assert.Panics(t, func() { c.Delete("nobody", "").MustBuild() })
	assert.NotPanics(t, func() { c.Delete("employees", "").MustBuild() })
}
