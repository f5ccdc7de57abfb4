// Package mariadb provides the MariaDB dialect renderer for sqlast.
package mariadb

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "MariaDB"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(11, 4)

// Renderer implements the MariaDB dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates a MariaDB renderer for a server version.
func New(version render.Version) *Renderer {
	return &Renderer{version: version, logger: slog.Default()}
}

// WithLogger returns a copy of the renderer that logs warnings to l.
func (r *Renderer) WithLogger(l *slog.Logger) *Renderer {
	c := *r
	if l != nil {
		c.logger = l
	}
	return &c
}

// Name returns the dialect name.
func (r *Renderer) Name() string {
	return Name
}

// Version returns the server version the renderer targets.
func (r *Renderer) Version() render.Version {
	return r.version
}

// Render translates a statement into MariaDB SQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	return render.NewTranslator(r.Profile(), opts, render.WithLogger(r.logger)).Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
// OFFSET/FETCH and SKIP LOCKED arrived in 10.6, RETURNING in 10.5, window
// functions and CTEs in 10.2.
func (r *Renderer) Capabilities() render.Capabilities {
	v := r.version
	offsetFetch := v.IsSameOrAfter(10, 6)
	returning := render.ReturningNone
	if v.IsSameOrAfter(10, 5) {
		returning = render.ReturningInsert | render.ReturningDelete
	}
	return render.Capabilities{
		RowValueConstructor:   true,
		RowValueInList:        true,
		RowValueInQuantified:  true,
		OffsetFetch:           offsetFetch,
		FetchFirst:            offsetFetch,
		LimitOffset:           true,
		ParameterOffsetFetch:  true,
		FetchTies:             offsetFetch,
		WindowFunctions:       v.IsSameOrAfter(10, 2),
		WithInSubquery:        v.IsSameOrAfter(10, 2),
		RecursiveKeyword:      true,
		PredicateAsExpression: true,
		SetOperationParens:    true,
		SkipLocked:            offsetFetch,
		NoWait:                v.IsSameOrAfter(10, 3),
		LockTimeout:           v.IsSameOrAfter(10, 3),
		Returning:             returning,
		RowLocking:            render.RowLockingFull,
		DistinctFrom:          render.DistinctFromNullSafeEquals,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes[types.TypeInteger] = "signed"
	s.CastTypes[types.TypeBigInt] = "signed"
	s.CastTypes[types.TypeDouble] = "double"
	s.CastTypes[types.TypeVarchar] = "char"
	s.CastTypes[types.TypeBoolean] = "unsigned"
	s.CastTypes[types.TypeTimestamp] = "datetime(6)"
	s.CastTypes[types.TypeXML] = "char"
	s.CastTypes[types.TypeBinary] = "binary"
	s.ColumnTypes = map[types.SQLType]string{
		types.TypeInteger: "integer",
		types.TypeBigInt:  "bigint",
		types.TypeVarchar: "varchar(255)",
		types.TypeBoolean: "boolean",
		types.TypeXML:     "longtext",
		types.TypeBinary:  "varbinary(255)",
	}
	s.QuoteOpen = "`"
	s.QuoteClose = "`"
	s.ForShare = " lock in share mode"
	s.WaitTimeout = " wait %d"
	s.NoLimit = "18446744073709551615"
	s.MaxIdentifierLength = 64

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}
