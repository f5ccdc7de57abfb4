// Package mssql provides the SQL Server dialect renderer for sqlast.
//
// Versions are SQL Server major versions: 11 is 2012, 16 is 2022.
package mssql

import (
	"log/slog"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Name is the dialect name used in errors and the dialect registry.
const Name = "SQLServer"

// DefaultVersion is the version used when none is configured.
var DefaultVersion = render.V(16)

// Renderer implements the SQL Server dialect renderer.
type Renderer struct {
	logger  *slog.Logger
	version render.Version
}

// New creates a SQL Server renderer for a server version.
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

// Render translates a statement into T-SQL.
func (r *Renderer) Render(stmt types.Statement, opts types.QueryOptions) (*types.Result, error) {
	t := &translator{}
	t.Translator = render.NewTranslator(r.Profile(), opts, render.WithHooks(t), render.WithLogger(r.logger))
	return t.Translate(stmt)
}

// Capabilities returns the SQL features supported by the targeted version.
// Row locks are table hints and RETURNING is an OUTPUT clause; both are
// rendered by the translator rather than the shared clause syntax.
func (r *Renderer) Capabilities() render.Capabilities {
	v := r.version
	distinctFrom := render.DistinctFromCaseWhen
	if v.IsSameOrAfter(16) {
		distinctFrom = render.DistinctFromNative
	}
	return render.Capabilities{
		OffsetFetch:          v.IsSameOrAfter(11),
		ParameterOffsetFetch: true,
		WindowFunctions:      true,
		Lateral:              true,
		Summarization:        true,
		SetOperationParens:   true,
		SkipLocked:           true,
		NoWait:               true,
		Returning:            render.ReturningAll,
		RowLocking:           render.RowLockingFull,
		DistinctFrom:         distinctFrom,
	}
}

// Profile returns everything the base translator needs for this version.
func (r *Renderer) Profile() render.Profile {
	s := render.ANSISyntax()
	s.CastTypes = map[types.SQLType]string{
		types.TypeInteger:   "int",
		types.TypeBigInt:    "bigint",
		types.TypeDecimal:   "numeric(38,10)",
		types.TypeDouble:    "float",
		types.TypeVarchar:   "nvarchar(max)",
		types.TypeChar:      "nchar(1)",
		types.TypeBoolean:   "bit",
		types.TypeDate:      "date",
		types.TypeTime:      "time",
		types.TypeTimestamp: "datetime2",
		types.TypeXML:       "xml",
		types.TypeBinary:    "varbinary(max)",
		types.TypeUUID:      "uniqueidentifier",
	}
	s.QuoteOpen = "["
	s.QuoteClose = "]"
	s.TrueLiteral = "1"
	s.FalseLiteral = "0"
	s.ForUpdate = ""
	s.SkipLocked = ""
	s.NoWait = ""
	s.WindowOrderFallback = "(select 0)"
	s.BinaryLiteralPrefix = "0x"
	s.BinaryLiteralSuffix = ""
	s.TemporaryTableCreate = "create table"
	s.TemporaryTablePrefix = "#"
	s.MaxIdentifierLength = 116
	s.Placeholder = render.PlaceholderAtP
	s.TypedTemporalLiteral = false

	return render.Profile{
		Name:         Name,
		Version:      r.version,
		Capabilities: r.Capabilities(),
		Syntax:       s,
	}
}
