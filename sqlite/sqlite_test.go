package sqlite

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

var (
	v3_8  = render.V(3, 8)
	v3_24 = render.V(3, 24)
	v3_30 = render.V(3, 30)
)

func employees(items ...types.Expression) *types.QuerySpec {
	return &types.QuerySpec{
		Select: types.Items(items...),
		From:   []*types.TableGroup{types.From(types.Table("employee", "e"))},
	}
}

func mustRender(t *testing.T, version render.Version, stmt types.Statement, opts types.QueryOptions) *types.Result {
	t.Helper()
	result, err := New(version).Render(stmt, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return result
}

func unsupported(t *testing.T, err error) render.UnsupportedFeatureError {
	t.Helper()
	var ufErr render.UnsupportedFeatureError
	if !errors.As(err, &ufErr) {
		t.Fatalf("error = %v, want UnsupportedFeatureError", err)
	}
	return ufErr
}

func TestRender_LimitOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   types.Expression
		fetch    types.Expression
		expected string
	}{
		{"limit", nil, types.Lit(5), " limit 5"},
		{"limit offset", types.Lit(10), types.Lit(5), " limit 5 offset 10"},
		{"offset only", types.Lit(10), nil, " limit -1 offset 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := employees(types.Col("e", "id"))
			spec.OrderBy = []types.SortSpec{types.Asc(types.Col("e", "id"))}
			spec.Offset = tt.offset
			spec.Fetch = tt.fetch
			result := mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{})
			expected := "select e.id from employee e order by e.id" + tt.expected
			if result.SQL != expected {
				t.Errorf("SQL = %q, want %q", result.SQL, expected)
			}
		})
	}
}

func TestRender_LimitOptionBindsInRenderOrder(t *testing.T) {
	first, maxRows := 20, 10
	spec := employees(types.Col("e", "id"))

	result := mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{
		Limit: types.Limit{FirstRow: &first, MaxRows: &maxRows},
	})

	if expected := "select e.id from employee e limit ? offset ?"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
	if args := result.Args(); len(args) != 2 || args[0] != 10 || args[1] != 20 {
		t.Errorf("Args() = %v, want [10 20]", args)
	}
}

func TestRender_TiesNeedWindowFunctions(t *testing.T) {
	spec := employees(types.Col("e", "id"))
	spec.OrderBy = []types.SortSpec{types.Desc(types.Col("e", "salary"))}
	spec.Fetch = types.Lit(3)
	spec.FetchType = types.WithTies

	result := mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{})
	expected := "select r_0_.c0 from (select e.id c0,rank() over(order by e.salary desc) rnk from employee e) r_0_" +
		" where r_0_.rnk<=3 order by r_0_.rnk"
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}

	_, err := New(v3_24).Render(types.Select(spec), types.QueryOptions{})
	ufErr := unsupported(t, err)
	if ufErr.Feature != "fetch first rows with ties" {
		t.Errorf("Feature = %q, want %q", ufErr.Feature, "fetch first rows with ties")
	}
	if ufErr.Dialect != "SQLite 3.24" {
		t.Errorf("Dialect = %q, want %q", ufErr.Dialect, "SQLite 3.24")
	}
}

func TestRender_RowValues(t *testing.T) {
	lhs := &types.Tuple{Expressions: []types.Expression{types.Col("e", "a"), types.Col("e", "b")}}
	rhs := &types.Tuple{Expressions: []types.Expression{types.Lit(1), types.Lit(2)}}

	tests := []struct {
		version  render.Version
		expected string
	}{
		{DefaultVersion, "(e.a,e.b)<=(1,2)"},
		{v3_8, "(e.a<1 or (e.a=1 and e.b<=2))"},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			spec := employees(types.Col("e", "id"))
			spec.Where = types.Compare(lhs, types.LessThanOrEqual, rhs)
			result := mustRender(t, tt.version, types.Select(spec), types.QueryOptions{})
			expected := "select e.id from employee e where " + tt.expected
			if result.SQL != expected {
				t.Errorf("SQL = %q, want %q", result.SQL, expected)
			}
		})
	}
}

func TestRender_DistinctFromUsesIs(t *testing.T) {
	spec := employees(types.Col("e", "id"))
	spec.Where = types.Compare(types.Col("e", "a"), types.DistinctFrom, types.Col("e", "b"))
	result := mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{})
	if expected := "select e.id from employee e where e.a is not e.b"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}

	spec.Where = types.Compare(types.Col("e", "a"), types.NotDistinctFrom, types.Col("e", "b"))
	result = mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{})
	if expected := "select e.id from employee e where e.a is e.b"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestRender_LockIgnoredWithWarning(t *testing.T) {
	var buf bytes.Buffer
	r := New(DefaultVersion).WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	result, err := r.Render(types.Select(employees(types.Col("e", "id"))), types.QueryOptions{
		Lock: types.LockOptions{Mode: types.LockPessimisticWrite},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if expected := "select e.id from employee e"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
	if !strings.Contains(buf.String(), "row locking not supported") {
		t.Errorf("log = %q, want a row locking warning", buf.String())
	}

	_, err = r.Render(types.Select(employees(types.Col("e", "id"))), types.QueryOptions{
		Lock: types.LockOptions{Mode: types.LockPessimisticWrite, Wait: types.SkipLocked},
	})
	if ufErr := unsupported(t, err); ufErr.Feature != "skip locked" {
		t.Errorf("Feature = %q, want %q", ufErr.Feature, "skip locked")
	}
}

func TestRender_SetOperationWithoutParens(t *testing.T) {
	paged := employees(types.Col("e", "id"))
	paged.OrderBy = []types.SortSpec{types.Asc(types.Col("e", "id"))}
	paged.Fetch = types.Lit(5)
	group := &types.QueryGroup{
		Parts:       []types.QueryPart{paged, employees(types.Col("e", "manager_id"))},
		SetOperator: types.Union,
	}

	result := mustRender(t, DefaultVersion, types.Select(group), types.QueryOptions{})
	expected := "select * from (select e.id from employee e order by e.id limit 5) grp_0_ union select e.manager_id from employee e"
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestRender_Returning(t *testing.T) {
	stmt := &types.UpdateStatement{
		Target:      types.Table("employee", ""),
		Assignments: []types.Assignment{{Column: "name", Value: types.Lit("x")}},
		Returning:   []*types.ColumnReference{types.Col("", "id")},
	}

	result := mustRender(t, DefaultVersion, stmt, types.QueryOptions{})
	if expected := "update employee set name='x' returning id"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}

	_, err := New(v3_30).Render(stmt, types.QueryOptions{})
	if ufErr := unsupported(t, err); ufErr.Feature != "returning on update" {
		t.Errorf("Feature = %q, want %q", ufErr.Feature, "returning on update")
	}
}

func TestRender_LiteralsWithoutTypedTemporals(t *testing.T) {
	spec := &types.QuerySpec{Select: types.Items(
		types.Lit(true),
		&types.Literal{Value: "2024-03-01", Type: types.TypeDate},
		types.Lit([]byte{0xca, 0xfe}),
	)}
	result := mustRender(t, DefaultVersion, types.Select(spec), types.QueryOptions{})
	if expected := "select 1,'2024-03-01',X'cafe'"; result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}
