// Package sqlite provides the SQLite dialect renderer for sqlast.
package sqlite

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "SQLite"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(3, 45)

// Renderer implements the SQLite dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates a SQLite renderer for a library version.
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

// Version returns the library version the renderer targets.
func (r *Renderer) Version() render.Version {
	return r.version
}

// Render translates a statement into SQLite SQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	return render.NewTranslator(r.Profile(), opts, render.WithLogger(r.logger)).Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
// SQLite has no row locking; lock requests are dropped with a warning.
func (r *Renderer) Capabilities() render.Capabilities {
	v := r.version
	rowValues := v.IsSameOrAfter(3, 15)
	returning := render.ReturningNone
	if v.IsSameOrAfter(3, 35) {
		returning = render.ReturningAll
	}
	return render.Capabilities{
		RowValueConstructor:   rowValues,
		RowValueInList:        rowValues,
		RowValueInQuantified:  rowValues,
		LimitOffset:           true,
		ParameterOffsetFetch:  true,
		WindowFunctions:       v.IsSameOrAfter(3, 25),
		WithInSubquery:        true,
		RecursiveKeyword:      true,
		PredicateAsExpression: true,
		Returning:             returning,
		RowLocking:            render.RowLockingNone,
		DistinctFrom:          render.DistinctFromIs,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes = map[types.SQLType]string{
		types.TypeInteger:   "integer",
		types.TypeBigInt:    "integer",
		types.TypeDecimal:   "numeric",
		types.TypeDouble:    "real",
		types.TypeVarchar:   "text",
		types.TypeChar:      "text",
		types.TypeBoolean:   "integer",
		types.TypeDate:      "text",
		types.TypeTime:      "text",
		types.TypeTimestamp: "text",
		types.TypeXML:       "text",
		types.TypeBinary:    "blob",
		types.TypeUUID:      "text",
	}
	s.TrueLiteral = "1"
	s.FalseLiteral = "0"
	s.ForUpdate = ""
	s.SkipLocked = ""
	s.NoWait = ""
	s.EmptyGrouping = "'0'"
	s.NoLimit = "-1"
	s.MaxIdentifierLength = 0
	s.TypedTemporalLiteral = false

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}
