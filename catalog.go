package sqlast

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlast/internal/types"
)

// Catalog errors.
var (
	ErrUnknownTable  = errors.New("sqlast: unknown table")
	ErrUnknownColumn = errors.New("sqlast: unknown column")
	ErrUnknownEntity = errors.New("sqlast: unknown entity")
	ErrDuplicate     = errors.New("sqlast: entity already registered")
)

// TemporaryTablePrefix prefixes the temporary id table of an entity table.
const TemporaryTablePrefix = "HT_"

// InheritanceStrategy is how an entity hierarchy maps onto tables.
type InheritanceStrategy int

const (
	// NoInheritance marks an entity outside any hierarchy, or a subclass
	// that inherits its superclass strategy.
	NoInheritance InheritanceStrategy = iota
	SingleTable
	Joined
	TablePerClass
)

func (s InheritanceStrategy) String() string {
	switch s {
	case SingleTable:
		return "single_table"
	case Joined:
		return "joined"
	case TablePerClass:
		return "table_per_class"
	default:
		return "none"
	}
}

// EntityDefinition declares an entity for registration.
type EntityDefinition struct {
	Name string
	// Table defaults to the naming strategy applied to Name. Subclasses of a
	// single table hierarchy always use the root table.
	Table string
	// Super names an already registered superclass.
	Super string
	// IDs defaults to the superclass id columns.
	IDs      []string
	Strategy InheritanceStrategy
}

// Entity is a registered entity bound to its table.
type Entity struct {
	Super    *Entity
	Name     string
	Table    string
	IDs      []string
	Strategy InheritanceStrategy
}

// Root returns the top of the entity's hierarchy.
func (e *Entity) Root() *Entity {
	root := e
	for root.Super != nil {
		root = root.Super
	}
	return root
}

// NamingStrategy maps an entity name to its default table name.
type NamingStrategy func(entity string) string

// DefaultNaming pluralizes the snake case entity name: OrderLine -> order_lines.
func DefaultNaming(entity string) string {
	return inflection.Plural(snakeCase(entity))
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithNamingStrategy replaces DefaultNaming.
func WithNamingStrategy(n NamingStrategy) CatalogOption {
	return func(c *Catalog) {
		if n != nil {
			c.naming = n
		}
	}
}

// WithLogger sets the logger for registration warnings.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Catalog indexes a DBML schema and the entities mapped onto it.
// Registration is a boot-time step; a fully registered Catalog is read-only
// and safe for concurrent use.
type Catalog struct {
	project  *dbml.Project
	logger   *slog.Logger
	naming   NamingStrategy
	tables   map[string]*dbml.Table
	columns  map[string]map[string]*dbml.Column // table -> column -> definition
	entities map[string]*Entity
}

// NewCatalog indexes the tables and columns of a DBML project.
func NewCatalog(project *dbml.Project, opts ...CatalogOption) (*Catalog, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	c := &Catalog{
		project:  project,
		logger:   slog.Default(),
		naming:   DefaultNaming,
		tables:   make(map[string]*dbml.Table),
		columns:  make(map[string]map[string]*dbml.Column),
		entities: make(map[string]*Entity),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, table := range project.Tables {
		c.tables[table.Name] = table
		c.columns[table.Name] = make(map[string]*dbml.Column)
		for _, col := range table.Columns {
			c.columns[table.Name][col.Name] = col
		}
	}

	return c, nil
}

// Table returns a reference to a schema table.
func (c *Catalog) Table(name, alias string) (*NamedTableReference, error) {
	if _, ok := c.tables[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return types.Table(name, alias), nil
}

// Column returns a typed reference to a column of the referenced table,
// qualified with the table's alias.
func (c *Catalog) Column(table *NamedTableReference, column string) (*ColumnReference, error) {
	typ, err := c.columnType(table.Name, column)
	if err != nil {
		return nil, err
	}
	return &ColumnReference{Qualifier: table.IdentificationVariable(), Column: column, Type: typ}, nil
}

// Returning returns unqualified typed references for a RETURNING list.
func (c *Catalog) Returning(table string, columns ...string) ([]*ColumnReference, error) {
	refs := make([]*ColumnReference, 0, len(columns))
	for _, column := range columns {
		typ, err := c.columnType(table, column)
		if err != nil {
			return nil, err
		}
		refs = append(refs, &ColumnReference{Column: column, Type: typ})
	}
	return refs, nil
}

func (c *Catalog) columnType(table, column string) (SQLType, error) {
	cols, ok := c.columns[table]
	if !ok {
		return TypeUnknown, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	col, ok := cols[column]
	if !ok {
		return TypeUnknown, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
	}
	return ColumnType(col.Type), nil
}

// ColumnType maps a DBML column type onto a SQLType. Length and precision
// arguments are ignored; unrecognized types map to TypeUnknown.
func ColumnType(dbmlType string) SQLType {
	name := strings.ToLower(strings.TrimSpace(dbmlType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	switch name {
	case "int", "int4", "integer", "smallint", "int2", "serial":
		return TypeInteger
	case "bigint", "int8", "bigserial":
		return TypeBigInt
	case "numeric", "decimal", "money":
		return TypeDecimal
	case "float", "float8", "double", "double precision", "real":
		return TypeDouble
	case "varchar", "character varying", "text", "string", "nvarchar", "clob":
		return TypeVarchar
	case "char", "character", "nchar":
		return TypeChar
	case "bool", "boolean":
		return TypeBoolean
	case "timestamp", "timestamptz", "datetime", "datetime2":
		return TypeTimestamp
	case "bytea", "blob", "binary", "varbinary":
		return TypeBinary
	}
	return types.ParseSQLType(name)
}

// Register binds an entity to its table. A subclass declaring a strategy
// other than its root's keeps the root strategy and logs a warning.
func (c *Catalog) Register(def EntityDefinition) (*Entity, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("entity requires a name")
	}
	if _, ok := c.entities[def.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
	}

	e := &Entity{Name: def.Name, Table: def.Table, IDs: def.IDs, Strategy: def.Strategy}
	if def.Super != "" {
		super, ok := c.entities[def.Super]
		if !ok {
			return nil, fmt.Errorf("%w: superclass %s of %s", ErrUnknownEntity, def.Super, def.Name)
		}
		e.Super = super
		root := super.Root()
		if def.Strategy != NoInheritance && def.Strategy != root.Strategy {
			c.logger.Warn("invalid sub-strategy, using the root strategy",
				"entity", def.Name,
				"declared", def.Strategy.String(),
				"root", root.Name,
				"strategy", root.Strategy.String(),
			)
		}
		e.Strategy = root.Strategy
		if e.Strategy == SingleTable {
			e.Table = root.Table
		}
		if len(e.IDs) == 0 {
			e.IDs = super.IDs
		}
	}
	if e.Table == "" {
		e.Table = c.naming(def.Name)
	}

	if _, ok := c.tables[e.Table]; !ok {
		return nil, fmt.Errorf("entity %s: %w: %s", def.Name, ErrUnknownTable, e.Table)
	}
	if len(e.IDs) == 0 {
		return nil, fmt.Errorf("entity %s requires id columns", def.Name)
	}
	for _, id := range e.IDs {
		if _, ok := c.columns[e.Table][id]; !ok {
			return nil, fmt.Errorf("entity %s: %w: %s.%s", def.Name, ErrUnknownColumn, e.Table, id)
		}
	}

	c.entities[def.Name] = e
	return e, nil
}

// Entity returns a registered entity.
func (c *Catalog) Entity(name string) (*Entity, error) {
	e, ok := c.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return e, nil
}

// TemporaryIDTable returns the DDL for the temporary table holding the id
// columns of an entity, used by multi-table mutations.
func (c *Catalog) TemporaryIDTable(entity string) (*CreateTemporaryTable, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	stmt := &CreateTemporaryTable{Name: TemporaryTablePrefix + e.Table}
	for _, id := range e.IDs {
		typ, err := c.columnType(e.Table, id)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, ColumnDefinition{Name: id, Type: typ})
	}
	return stmt, nil
}

// DropTemporaryIDTable returns the DDL dropping an entity's temporary id table.
func (c *Catalog) DropTemporaryIDTable(entity string) (*DropTemporaryTable, error) {
	e, err := c.Entity(entity)
	if err != nil {
		return nil, err
	}
	return &DropTemporaryTable{Name: TemporaryTablePrefix + e.Table}, nil
}
