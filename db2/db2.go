// Package db2 provides the DB2 for Linux, Unix and Windows dialect renderer for sqlast.
//
// Capabilities are gated on the server version: native OFFSET arrives in
// 11.1, boolean values and parameter bounds for FETCH in 11, SKIP LOCKED DATA
// in 9.7. Everything the version lacks is emulated or rejected.
package db2

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "DB2"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(11, 5)

// Renderer implements the DB2 dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates a DB2 renderer for a server version.
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

// Render translates a statement into DB2 SQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	t := &translator{version: r.version}
	t.Translator = render.NewTranslator(r.Profile(), opts, render.WithHooks(t), render.WithLogger(r.logger))
	return t.Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
func (r *Renderer) Capabilities() render.Capabilities {
	v := r.version
	distinctFrom := render.DistinctFromDecode
	if v.IsSameOrAfter(11, 1) {
		distinctFrom = render.DistinctFromNative
	}
	return render.Capabilities{
		RowValueConstructor:   false,
		RowValueInList:        false,
		RowValueInQuantified:  false,
		OffsetFetch:           v.IsSameOrAfter(11, 1),
		FetchFirst:            true,
		LimitOffset:           false,
		ParameterOffsetFetch:  v.IsSameOrAfter(11),
		FetchPercent:          false,
		FetchTies:             false,
		WindowFunctions:       true,
		WithInSubquery:        false,
		RecursiveKeyword:      false,
		PredicateAsExpression: v.IsSameOrAfter(11),
		Lateral:               true,
		Summarization:         true,
		SetOperationParens:    true,
		SkipLocked:            v.IsSameOrAfter(9, 7),
		NoWait:                false,
		LockTimeout:           false,
		Returning:             render.ReturningNone,
		RowLocking:            render.RowLockingFull,
		DistinctFrom:          distinctFrom,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes[types.TypeDouble] = "double"
	s.CastTypes[types.TypeVarchar] = "varchar(32672)"
	s.CastTypes[types.TypeBinary] = "varchar(32672) for bit data"
	if r.version.IsBefore(11) {
		s.CastTypes[types.TypeBoolean] = "smallint"
		s.TrueLiteral = "1"
		s.FalseLiteral = "0"
	}
	s.ForUpdate = " for read only with rs use and keep update locks"
	s.ForShare = " for read only with rs use and keep share locks"
	s.SkipLocked = " skip locked data"
	s.NoWait = ""
	s.FromDual = " from sysibm.dual"
	s.TemporaryTableCreate = "declare global temporary table"
	s.TemporaryTablePrefix = "session."
	s.TemporaryTableSuffix = " not logged"

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}
