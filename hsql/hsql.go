// Package hsql provides the HyperSQL dialect renderer for sqlast.
package hsql

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "HSQL"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(2, 7)

// Renderer implements the HSQL dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates an HSQL renderer for a server version.
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

// Render translates a statement into HSQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	t := &translator{}
	t.Translator = render.NewTranslator(r.Profile(), opts, render.WithHooks(t), render.WithLogger(r.logger))
	return t.Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
// OFFSET/FETCH arrived in 2.5; earlier versions page with LIMIT.
func (r *Renderer) Capabilities() render.Capabilities {
	offsetFetch := r.version.IsSameOrAfter(2, 5)
	return render.Capabilities{
		OffsetFetch:           offsetFetch,
		FetchFirst:            offsetFetch,
		LimitOffset:           true,
		ParameterOffsetFetch:  true,
		RecursiveKeyword:      true,
		PredicateAsExpression: true,
		Lateral:               true,
		SetOperationParens:    true,
		Returning:             render.ReturningNone,
		RowLocking:            render.RowLockingBasic,
		DistinctFrom:          render.DistinctFromNative,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes[types.TypeDouble] = "double"
	s.CastTypes[types.TypeVarchar] = "varchar(32768)"
	s.CastTypes[types.TypeBinary] = "varbinary(32768)"
	s.NoLimit = "0"
	s.FromDual = " from (values(0))"
	s.EmptyGrouping = "'0' || '0'"
	s.TemporaryTableCreate = "declare local temporary table"
	s.TemporaryTableSuffix = " on commit preserve rows"

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}

type translator struct {
	*render.Translator
}

// RenderSelectExpression casts plain parameters so HSQL can type the
// select list.
func (t *translator) RenderSelectExpression(e types.Expression) error {
	if p, ok := e.(*types.Parameter); ok && t.ParameterRenderingMode() == types.RenderDefault {
		return t.RenderCasted(p)
	}
	return t.Translator.RenderSelectExpression(e)
}
