package sqlast

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/dbml"
)

func testProject() *dbml.Project {
	project := dbml.NewProject("test")

	employees := dbml.NewTable("employees")
	employees.AddColumn(dbml.NewColumn("id", "bigint"))
	employees.AddColumn(dbml.NewColumn("name", "varchar(255)"))
	employees.AddColumn(dbml.NewColumn("salary", "numeric(10,2)"))
	employees.AddColumn(dbml.NewColumn("active", "boolean"))
	project.AddTable(employees)

	lines := dbml.NewTable("order_lines")
	lines.AddColumn(dbml.NewColumn("order_id", "bigint"))
	lines.AddColumn(dbml.NewColumn("line_no", "int"))
	project.AddTable(lines)

	contractors := dbml.NewTable("contractors")
	contractors.AddColumn(dbml.NewColumn("id", "bigint"))
	project.AddTable(contractors)

	return project
}

func testCatalog(t *testing.T, opts ...CatalogOption) *Catalog {
	t.Helper()
	c, err := NewCatalog(testProject(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewCatalog_NilProject(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.Error(t, err)
}

func TestCatalog_Column(t *testing.T) {
	c := testCatalog(t)

	e, err := c.Table("employees", "e")
	require.NoError(t, err)

	tests := []struct {
		column string
		want   SQLType
	}{
		{"id", TypeBigInt},
		{"name", TypeVarchar},
		{"salary", TypeDecimal},
		{"active", TypeBoolean},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			ref, err := c.Column(e, tt.column)
			require.NoError(t, err)
			assert.Equal(t, "e", ref.Qualifier)
			assert.Equal(t, tt.want, ref.Type)
		})
	}

	_, err = c.Column(e, "missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = c.Table("missing", "m")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestCatalog_Returning(t *testing.T) {
	c := testCatalog(t)

	refs, err := c.Returning("employees", "id", "name")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Empty(t, refs[0].Qualifier)
	assert.Equal(t, TypeBigInt, refs[0].Type)
	assert.Equal(t, "name", refs[1].Column)
}

func TestColumnType(t *testing.T) {
	tests := map[string]SQLType{
		"int":              TypeInteger,
		"BIGINT":           TypeBigInt,
		"varchar(64)":      TypeVarchar,
		"text":             TypeVarchar,
		"double precision": TypeDouble,
		"timestamptz":      TypeTimestamp,
		"bytea":            TypeBinary,
		"uuid":             TypeUUID,
		"date":             TypeDate,
		"geometry":         TypeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ColumnType(in), in)
	}
}

func TestDefaultNaming(t *testing.T) {
	tests := map[string]string{
		"Employee":  "employees",
		"OrderLine": "order_lines",
		"HTTPLog":   "http_logs",
		"Person":    "people",
	}
	for in, want := range tests {
		assert.Equal(t, want, DefaultNaming(in), in)
	}
}

func TestCatalog_Register(t *testing.T) {
	c := testCatalog(t)

	e, err := c.Register(EntityDefinition{Name: "OrderLine", IDs: []string{"order_id", "line_no"}})
	require.NoError(t, err)
	assert.Equal(t, "order_lines", e.Table)

	_, err = c.Register(EntityDefinition{Name: "OrderLine", IDs: []string{"order_id"}})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = c.Register(EntityDefinition{Name: "Invoice", IDs: []string{"id"}})
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = c.Register(EntityDefinition{Name: "Employee", IDs: []string{"number"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = c.Register(EntityDefinition{Name: "Manager", Super: "Employee"})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestCatalog_RegisterSingleTableSubclass(t *testing.T) {
	c := testCatalog(t)

	_, err := c.Register(EntityDefinition{Name: "Employee", IDs: []string{"id"}, Strategy: SingleTable})
	require.NoError(t, err)

	manager, err := c.Register(EntityDefinition{Name: "Manager", Super: "Employee"})
	require.NoError(t, err)
	assert.Equal(t, "employees", manager.Table)
	assert.Equal(t, []string{"id"}, manager.IDs)
	assert.Equal(t, SingleTable, manager.Strategy)
	assert.Equal(t, "Employee", manager.Root().Name)
}

func TestCatalog_MixedInheritanceWarns(t *testing.T) {
	var buf bytes.Buffer
	c := testCatalog(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	_, err := c.Register(EntityDefinition{Name: "Employee", IDs: []string{"id"}, Strategy: SingleTable})
	require.NoError(t, err)

	contractor, err := c.Register(EntityDefinition{
		Name:     "Contractor",
		Super:    "Employee",
		Table:    "contractors",
		Strategy: Joined,
	})
	require.NoError(t, err)
	assert.Equal(t, SingleTable, contractor.Strategy)
	assert.Equal(t, "employees", contractor.Table)
	assert.Contains(t, buf.String(), "invalid sub-strategy")
	assert.Contains(t, buf.String(), "declared=joined")
}

func TestCatalog_JoinedSubclassKeepsOwnTable(t *testing.T) {
	var buf bytes.Buffer
	c := testCatalog(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	_, err := c.Register(EntityDefinition{Name: "Employee", IDs: []string{"id"}, Strategy: Joined})
	require.NoError(t, err)

	contractor, err := c.Register(EntityDefinition{Name: "Contractor", Super: "Employee"})
	require.NoError(t, err)
	assert.Equal(t, "contractors", contractor.Table)
	assert.Equal(t, Joined, contractor.Strategy)
	assert.Empty(t, buf.String())
}

func TestCatalog_NamingStrategy(t *testing.T) {
	c := testCatalog(t, WithNamingStrategy(func(entity string) string { return "contractors" }))

	e, err := c.Register(EntityDefinition{Name: "Worker", IDs: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, "contractors", e.Table)
}

func TestCatalog_TemporaryIDTable(t *testing.T) {
	c := testCatalog(t)
	_, err := c.Register(EntityDefinition{Name: "OrderLine", IDs: []string{"order_id", "line_no"}})
	require.NoError(t, err)

	create, err := c.TemporaryIDTable("OrderLine")
	require.NoError(t, err)
	assert.Equal(t, "HT_order_lines", create.Name)
	assert.Equal(t, []ColumnDefinition{
		{Name: "order_id", Type: TypeBigInt},
		{Name: "line_no", Type: TypeInteger},
	}, create.Columns)

	drop, err := c.DropTemporaryIDTable("OrderLine")
	require.NoError(t, err)
	assert.Equal(t, "HT_order_lines", drop.Name)

	_, err = c.TemporaryIDTable("Missing")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}
