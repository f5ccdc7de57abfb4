package dialects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/sqlast"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		wantName string
		wantVer  string
	}{
		{"db2", "10.5", "DB2", "10.5"},
		{"DB2", "", "DB2", "11.5"},
		{"hsqldb", "2.4", "HSQL", "2.4"},
		{"postgresql", "", "PostgreSQL", "16.0"},
		{"sqlite", "3.30", "SQLite", "3.30"},
		{"mysql", "", "MariaDB", "11.4"},
		{"sqlserver", "11", "SQLServer", "11.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(tt.name, tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, d.Name())
			assert.Equal(t, tt.wantVer, d.Version().String())
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("oracle", "")
	assert.ErrorIs(t, err, ErrUnknownDialect)

	_, err = Open("db2", "eleven")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	infos := List()
	require.Len(t, infos, 6)
	assert.Equal(t, "db2", infos[0].Key)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Key, infos[i].Key)
	}
}

func pagedQuery() sqlast.Statement {
	spec := &sqlast.QuerySpec{
		Select: sqlast.Items(sqlast.Col("e", "id"), sqlast.Col("e", "name")),
		From:   []*sqlast.TableGroup{sqlast.From(sqlast.Table("employee", "e"))},
		Where: sqlast.Compare(
			&sqlast.Tuple{Expressions: []sqlast.Expression{sqlast.Col("e", "a"), sqlast.Col("e", "b")}},
			sqlast.GreaterThan,
			&sqlast.Tuple{Expressions: []sqlast.Expression{sqlast.Param("a", sqlast.TypeInteger), sqlast.Param("b", sqlast.TypeInteger)}},
		),
		OrderBy: []sqlast.SortSpec{sqlast.Asc(sqlast.Col("e", "name"))},
	}
	spec.Offset = sqlast.Lit(10)
	spec.Fetch = sqlast.Lit(5)
	return sqlast.Select(spec)
}

// Dialects are shared values; concurrent renders of one statement must agree.
func TestRender_ConcurrentDeterminism(t *testing.T) {
	stmt := pagedQuery()

	for _, info := range List() {
		t.Run(info.Key, func(t *testing.T) {
			d, err := Open(info.Key, "")
			require.NoError(t, err)

			want, err := d.Render(stmt, sqlast.QueryOptions{})
			require.NoError(t, err)

			results := make([]string, 32)
			var g errgroup.Group
			for i := range results {
				g.Go(func() error {
					r, err := d.Render(stmt, sqlast.QueryOptions{})
					if err != nil {
						return err
					}
					results[i] = r.SQL
					return nil
				})
			}
			require.NoError(t, g.Wait())
			for _, sql := range results {
				assert.Equal(t, want.SQL, sql)
			}
		})
	}
}

func TestRender_UnsupportedNamesDialect(t *testing.T) {
	d, err := Open("hsql", "2.7")
	require.NoError(t, err)

	spec := &sqlast.QuerySpec{
		Select: sqlast.Items(sqlast.Col("e", "id")),
		From:   []*sqlast.TableGroup{sqlast.From(sqlast.Table("employee", "e"))},
	}
	_, err = d.Render(sqlast.Select(spec), sqlast.QueryOptions{
		Lock: sqlast.LockOptions{Mode: sqlast.LockPessimisticWrite, Wait: sqlast.SkipLocked},
	})
	require.True(t, sqlast.IsUnsupported(err))

	var ufErr sqlast.UnsupportedFeatureError
	require.ErrorAs(t, err, &ufErr)
	assert.Equal(t, "skip locked", ufErr.Feature)
	assert.Equal(t, "HSQL 2.7", ufErr.Dialect)
}
