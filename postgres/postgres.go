// Package postgres provides the PostgreSQL dialect renderer for sqlast.
//
// PostgreSQL supports nearly every construct natively, which makes it the
// reference rendering the emulations of other dialects are compared against.
package postgres

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "PostgreSQL"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(16)

// Renderer implements the PostgreSQL dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates a PostgreSQL renderer for a server version.
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

// Render translates a statement into PostgreSQL SQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	return render.NewTranslator(r.Profile(), opts, render.WithLogger(r.logger)).Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
func (r *Renderer) Capabilities() render.Capabilities {
	v := r.version
	return render.Capabilities{
		RowValueConstructor:   true,
		RowValueInList:        true,
		RowValueInQuantified:  true,
		OffsetFetch:           true,
		FetchFirst:            true,
		LimitOffset:           true,
		ParameterOffsetFetch:  true,
		FetchPercent:          false,
		FetchTies:             v.IsSameOrAfter(13),
		WindowFunctions:       true,
		WithInSubquery:        true,
		RecursiveKeyword:      true,
		PredicateAsExpression: true,
		Lateral:               v.IsSameOrAfter(9, 3),
		Summarization:         v.IsSameOrAfter(9, 5),
		SetOperationParens:    true,
		SkipLocked:            v.IsSameOrAfter(9, 5),
		NoWait:                true,
		LockTimeout:           false,
		Returning:             render.ReturningAll,
		RowLocking:            render.RowLockingFull,
		DistinctFrom:          render.DistinctFromNative,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes[types.TypeVarchar] = "varchar"
	s.CastTypes[types.TypeBinary] = "bytea"
	s.CastTypes[types.TypeUUID] = "uuid"
	s.ForShare = " for share"
	s.BinaryLiteralPrefix = `'\x`
	s.MaxIdentifierLength = 63
	s.Placeholder = render.PlaceholderDollar

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}
