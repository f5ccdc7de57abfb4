// Package sqlexec runs translated statements against a database/sql handle.
package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zoobzio/sqlast"
)

// ErrUnboundParameter is returned when a statement still has slots without values.
var ErrUnboundParameter = errors.New("sqlexec: unbound parameter")

// ExecQuerier wraps the standard Exec and Query methods. *sql.DB, *sql.Tx
// and *sql.Conn satisfy it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor renders statements with one dialect and runs them on one handle.
type Executor struct {
	conn    ExecQuerier
	dialect sqlast.Dialect
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger statements are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New returns an Executor for conn.
func New(conn ExecQuerier, d sqlast.Dialect, opts ...Option) *Executor {
	e := &Executor{conn: conn, dialect: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect statements are rendered with.
func (e *Executor) Dialect() sqlast.Dialect { return e.dialect }

// Bind fills the unbound slots of r from values, keyed by parameter name.
// Slots that already carry a value keep it.
func Bind(r *sqlast.Result, values map[string]any) {
	for i := range r.Bindings {
		b := &r.Bindings[i]
		if b.Bound {
			continue
		}
		if v, ok := values[b.Parameter.Name]; ok {
			b.Value = v
			b.Bound = true
		}
	}
}

func args(r *sqlast.Result) ([]any, error) {
	if unbound := r.Unbound(); len(unbound) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnboundParameter, strings.Join(unbound, ", "))
	}
	return r.Args(), nil
}

// Render translates stmt and binds values by parameter name.
func (e *Executor) Render(stmt sqlast.Statement, opts sqlast.QueryOptions, values map[string]any) (*sqlast.Result, error) {
	r, err := e.dialect.Render(stmt, opts)
	if err != nil {
		return nil, err
	}
	Bind(r, values)
	return r, nil
}

// ExecResult runs an already translated statement.
func (e *Executor) ExecResult(ctx context.Context, r *sqlast.Result) (sql.Result, error) {
	a, err := args(r)
	if err != nil {
		return nil, err
	}
	e.logger.DebugContext(ctx, "exec", "dialect", e.dialect.Name(), "sql", r.SQL, "args", len(a))
	res, err := e.conn.ExecContext(ctx, r.SQL, a...)
	if err != nil {
		return nil, fmt.Errorf("exec %q: %w", r.SQL, err)
	}
	return res, nil
}

// QueryResult runs an already translated query. The caller closes the rows.
func (e *Executor) QueryResult(ctx context.Context, r *sqlast.Result) (*sql.Rows, error) {
	a, err := args(r)
	if err != nil {
		return nil, err
	}
	e.logger.DebugContext(ctx, "query", "dialect", e.dialect.Name(), "sql", r.SQL, "args", len(a))
	rows, err := e.conn.QueryContext(ctx, r.SQL, a...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", r.SQL, err)
	}
	return rows, nil
}

// Exec renders and runs stmt.
func (e *Executor) Exec(ctx context.Context, stmt sqlast.Statement, opts sqlast.QueryOptions, values map[string]any) (sql.Result, error) {
	r, err := e.Render(stmt, opts, values)
	if err != nil {
		return nil, err
	}
	return e.ExecResult(ctx, r)
}

// Query renders and runs stmt. The caller closes the rows.
func (e *Executor) Query(ctx context.Context, stmt sqlast.Statement, opts sqlast.QueryOptions, values map[string]any) (*sql.Rows, error) {
	r, err := e.Render(stmt, opts, values)
	if err != nil {
		return nil, err
	}
	return e.QueryResult(ctx, r)
}

// WithTemporaryIDTable creates the id table of entity, calls fn with its
// name and drops the table afterwards, also when fn fails.
func (e *Executor) WithTemporaryIDTable(ctx context.Context, c *sqlast.Catalog, entity string, fn func(table string) error) (err error) {
	create, err := c.TemporaryIDTable(entity)
	if err != nil {
		return err
	}
	drop, err := c.DropTemporaryIDTable(entity)
	if err != nil {
		return err
	}

	if _, err := e.Exec(ctx, create, sqlast.QueryOptions{}, nil); err != nil {
		return err
	}
	defer func() {
		if _, derr := e.Exec(ctx, drop, sqlast.QueryOptions{}, nil); derr != nil {
			err = errors.Join(err, derr)
		}
	}()
	return fn(create.Name)
}
