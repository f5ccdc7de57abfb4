package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/sqlast/postgres"
)

var injectionAttempts = []struct {
	name  string
	input string
}{
	{"DROP TABLE", "email; DROP TABLE users; --"},
	{"Union injection", "id UNION SELECT * FROM passwords"},
	{"OR 1=1", "id OR 1=1"},
	{"Subquery injection", "id FROM (SELECT * FROM admin_users)"},
	{"Comment injection", "id/**/OR/**/1=1"},
	{"Stacked queries", "id; DELETE FROM users"},
	{"Backtick injection", "id` FROM users; DROP TABLE users; --"},
	{"Quote injection", "id' OR '1'='1"},
	{"Double quote injection", `id" OR "1"="1`},
	{"Null byte injection", "id\x00 OR 1=1"},
	{"Case bypass", "ID"},
	{"Whitespace tricks", "id\nOR\n1=1"},
	{"Function injection", "id) OR SLEEP(10)--"},
}

func TestInjection_CatalogRejectsNames(t *testing.T) {
	c := testCatalog(t)

	for _, attempt := range injectionAttempts {
		t.Run(attempt.name, func(t *testing.T) {
			_, err := c.Select("employees", "e").Fields(attempt.input).Build()
			assert.ErrorIs(t, err, ErrUnknownColumn, "field")

			_, err = c.Select("employees", "e").WhereField(attempt.input, Equal, Lit(1)).Build()
			assert.ErrorIs(t, err, ErrUnknownColumn, "where")

			_, err = c.Select(attempt.input, "e").Build()
			assert.ErrorIs(t, err, ErrUnknownTable, "table")

			_, err = c.Update("employees", "e").Set(attempt.input, Lit(1)).Build()
			assert.ErrorIs(t, err, ErrUnknownColumn, "set")
		})
	}
}

func TestInjection_LiteralsAreEscaped(t *testing.T) {
	c := testCatalog(t)
	b := c.Select("employees", "e").Fields("id").WhereField("name", Equal, Lit("x' OR '1'='1"))

	r, err := b.Render(postgres.New(postgres.DefaultVersion), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "select e.id from employees e where e.name='x'' OR ''1''=''1'", r.SQL)
}

// Names that bypass the catalog are still quoted with their quote
// character doubled.
func TestInjection_RawIdentifiersAreQuoted(t *testing.T) {
	spec := &QuerySpec{
		Select: Items(Col("e", `id" OR "1"="1`)),
		From:   []*TableGroup{From(Table("employees", "e"))},
	}

	r, err := postgres.New(postgres.DefaultVersion).Render(Select(spec), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, `select e."id"" OR ""1""=""1" from employees e`, r.SQL)
}

func TestInjection_ParametersAreBound(t *testing.T) {
	c := testCatalog(t)
	name := Param("name", TypeVarchar)
	b := c.Select("employees", "e").Fields("id").WhereField("name", Equal, name)

	r, err := b.Render(postgres.New(postgres.DefaultVersion), QueryOptions{
		Values: map[*Parameter]any{name: "x'; DROP TABLE employees; --"},
	})
	require.NoError(t, err)
	assert.Equal(t, "select e.id from employees e where e.name=$1", r.SQL)
	assert.Equal(t, []any{"x'; DROP TABLE employees; --"}, r.Args())
}
