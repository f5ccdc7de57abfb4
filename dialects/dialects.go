// Package dialects opens sqlast dialects by name and version.
package dialects

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/db2"
	"github.com/zoobzio/sqlast/hsql"
	"github.com/zoobzio/sqlast/mariadb"
	"github.com/zoobzio/sqlast/mssql"
	"github.com/zoobzio/sqlast/postgres"
	"github.com/zoobzio/sqlast/sqlite"
)

// ErrUnknownDialect is returned for a name no dialect answers to.
var ErrUnknownDialect = errors.New("sqlast: unknown dialect")

type entry struct {
	open           func(v sqlast.Version, l *slog.Logger) sqlast.Dialect
	defaultVersion sqlast.Version
	name           string
}

var registry = map[string]entry{
	"db2": {
		name:           db2.Name,
		defaultVersion: db2.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return db2.New(v).WithLogger(l)
		},
	},
	"hsql": {
		name:           hsql.Name,
		defaultVersion: hsql.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return hsql.New(v).WithLogger(l)
		},
	},
	"postgres": {
		name:           postgres.Name,
		defaultVersion: postgres.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return postgres.New(v).WithLogger(l)
		},
	},
	"sqlite": {
		name:           sqlite.Name,
		defaultVersion: sqlite.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return sqlite.New(v).WithLogger(l)
		},
	},
	"mariadb": {
		name:           mariadb.Name,
		defaultVersion: mariadb.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return mariadb.New(v).WithLogger(l)
		},
	},
	"mssql": {
		name:           mssql.Name,
		defaultVersion: mssql.DefaultVersion,
		open: func(v sqlast.Version, l *slog.Logger) sqlast.Dialect {
			return mssql.New(v).WithLogger(l)
		},
	},
}

var aliases = map[string]string{
	"hsqldb":     "hsql",
	"postgresql": "postgres",
	"pg":         "postgres",
	"mysql":      "mariadb",
	"sqlserver":  "mssql",
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger the dialect reports warnings to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open returns the dialect registered under name for a version string.
// Names are case insensitive; an empty version selects the dialect default.
func Open(name, version string, opts ...Option) (sqlast.Dialect, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	e, err := lookup(name)
	if err != nil {
		return nil, err
	}
	v := e.defaultVersion
	if version != "" {
		if v, err = sqlast.ParseVersion(version); err != nil {
			return nil, fmt.Errorf("dialect %s: %w", e.name, err)
		}
	}
	return e.open(v, o.logger), nil
}

// Info describes a registered dialect.
type Info struct {
	Key            string
	Name           string
	DefaultVersion sqlast.Version
}

// List returns the registered dialects ordered by key.
func List() []Info {
	infos := make([]Info, 0, len(registry))
	for key, e := range registry {
		infos = append(infos, Info{Key: key, Name: e.name, DefaultVersion: e.defaultVersion})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

func lookup(name string) (entry, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	e, ok := registry[key]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return e, nil
}
