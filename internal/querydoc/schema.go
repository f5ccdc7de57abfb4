// Package querydoc decodes declarative YAML query documents into statement
// trees.
//
// Operands are written as strings: "e.id" is a column, ":id" a parameter,
// "'text'" a string literal, "10" and "true" literals, "lower(e.name)" a
// function call and "*" the star.
package querydoc

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/sqlast/internal/types"
)

// Operation names.
const (
	OpSelect          = "select"
	OpInsert          = "insert"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpCreateTemporary = "create_temporary"
	OpDropTemporary   = "drop_temporary"
)

// Document is one statement with its parameters and translation options.
type Document struct {
	Params             map[string]ParamSchema `yaml:"params,omitempty"`
	Query              *QuerySchema           `yaml:"query,omitempty"`
	Where              *ConditionSchema       `yaml:"where,omitempty"`
	Lock               *LockSchema            `yaml:"lock,omitempty"`
	Limit              *LimitSchema           `yaml:"limit,omitempty"`
	Temporary          *TemporarySchema       `yaml:"temporary,omitempty"`
	Operation          string                 `yaml:"operation"`
	Table              string                 `yaml:"table,omitempty"`
	Alias              string                 `yaml:"alias,omitempty"`
	ParameterRendering string                 `yaml:"parameter_rendering,omitempty"`
	With               []CTESchema            `yaml:"with,omitempty"`
	Columns            []string               `yaml:"columns,omitempty"`
	Values             [][]string             `yaml:"values,omitempty"`
	Updates            []UpdateSchema         `yaml:"updates,omitempty"`
	Returning          []string               `yaml:"returning,omitempty"`
}

// ParamSchema declares a parameter type and, optionally, its value.
type ParamSchema struct {
	Value any    `yaml:"value,omitempty"`
	Type  string `yaml:"type,omitempty"`
}

// QuerySchema is a query specification, or a set operation when Parts is set.
//
//nolint:govet // fieldalignment: grouped by clause for readability
type QuerySchema struct {
	Table    string           `yaml:"table,omitempty"`
	Alias    string           `yaml:"alias,omitempty"`
	Derived  *QuerySchema     `yaml:"derived,omitempty"`
	Lateral  bool             `yaml:"lateral,omitempty"`
	Fields   []string         `yaml:"fields,omitempty"`
	Cases    []CaseSchema     `yaml:"cases,omitempty"`
	Distinct bool             `yaml:"distinct,omitempty"`
	Joins    []JoinSchema     `yaml:"joins,omitempty"`
	Where    *ConditionSchema `yaml:"where,omitempty"`
	GroupBy  []string         `yaml:"group_by,omitempty"`
	Rollup   bool             `yaml:"rollup,omitempty"`
	Having   *ConditionSchema `yaml:"having,omitempty"`

	Parts       []QuerySchema `yaml:"parts,omitempty"`
	SetOperator string        `yaml:"set_operator,omitempty"` // union, union_all, intersect, except

	OrderBy   []OrderSchema `yaml:"order_by,omitempty"`
	Offset    string        `yaml:"offset,omitempty"`
	Fetch     string        `yaml:"fetch,omitempty"`
	FetchType string        `yaml:"fetch_type,omitempty"` // rows_only, percent, with_ties, percent_with_ties
}

// CTESchema is a common table expression.
type CTESchema struct {
	Query     QuerySchema `yaml:"query"`
	Name      string      `yaml:"name"`
	Columns   []string    `yaml:"columns,omitempty"`
	Recursive bool        `yaml:"recursive,omitempty"`
}

// ConditionSchema is a predicate, or a group of predicates when Logic is set.
//
//nolint:govet // fieldalignment: grouped by form for readability
type ConditionSchema struct {
	// Simple and tuple comparisons
	Left       string   `yaml:"left,omitempty"`
	LeftTuple  []string `yaml:"left_tuple,omitempty"`
	Operator   string   `yaml:"operator,omitempty"`
	Right      string   `yaml:"right,omitempty"`
	RightTuple []string `yaml:"right_tuple,omitempty"`

	// IN lists
	List []string `yaml:"list,omitempty"`

	// IN and EXISTS subqueries
	Subquery *QuerySchema `yaml:"subquery,omitempty"`

	// Grouped conditions
	Logic      string            `yaml:"logic,omitempty"` // "and", "or", "not"
	Conditions []ConditionSchema `yaml:"conditions,omitempty"`
}

// JoinSchema joins a table or a derived table.
type JoinSchema struct {
	On      *ConditionSchema `yaml:"on,omitempty"`
	Derived *QuerySchema     `yaml:"derived,omitempty"`
	Type    string           `yaml:"type"` // inner, left, right, full, cross
	Table   string           `yaml:"table,omitempty"`
	Alias   string           `yaml:"alias,omitempty"`
	Lateral bool             `yaml:"lateral,omitempty"`
}

// OrderSchema is one ORDER BY item.
type OrderSchema struct {
	Field     string `yaml:"field"`
	Direction string `yaml:"direction,omitempty"` // defaults to asc
}

// CaseSchema is a searched CASE in the select list.
type CaseSchema struct {
	Else  string       `yaml:"else,omitempty"`
	Alias string       `yaml:"alias,omitempty"`
	When  []WhenSchema `yaml:"when"`
}

// WhenSchema is one arm of a CASE.
type WhenSchema struct {
	Result    string          `yaml:"result"`
	Condition ConditionSchema `yaml:"condition"`
}

// UpdateSchema is one SET item.
type UpdateSchema struct {
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
}

// LockSchema requests row locking.
type LockSchema struct {
	Mode    string        `yaml:"mode"`           // read, pessimistic_read, pessimistic_write
	Wait    string        `yaml:"wait,omitempty"` // wait, nowait, skip_locked
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LimitSchema is a caller row window applied to the root query.
type LimitSchema struct {
	FirstRow *int `yaml:"first_row,omitempty"`
	MaxRows  *int `yaml:"max_rows,omitempty"`
}

// TemporarySchema declares a temporary table.
type TemporarySchema struct {
	Name    string         `yaml:"name"`
	Columns []ColumnSchema `yaml:"columns,omitempty"`
}

// ColumnSchema is a temporary table column.
type ColumnSchema struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// Parse decodes a YAML document, rejecting unknown keys.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode query document: %w", err)
	}
	return &doc, nil
}

// Build converts a document into a statement and its translation options.
func Build(doc *Document) (types.Statement, types.QueryOptions, error) {
	b := newBuilder(doc.Params)

	opts, err := b.options(doc)
	if err != nil {
		return nil, types.QueryOptions{}, err
	}

	var ctes []*types.CTE
	for i := range doc.With {
		c, err := b.cte(&doc.With[i])
		if err != nil {
			return nil, types.QueryOptions{}, fmt.Errorf("with %s: %w", doc.With[i].Name, err)
		}
		ctes = append(ctes, c)
	}

	var stmt types.Statement
	switch strings.ToLower(doc.Operation) {
	case OpSelect, "":
		stmt, err = b.selectStatement(doc, ctes)
	case OpInsert:
		stmt, err = b.insertStatement(doc, ctes)
	case OpUpdate:
		stmt, err = b.updateStatement(doc, ctes)
	case OpDelete:
		stmt, err = b.deleteStatement(doc, ctes)
	case OpCreateTemporary:
		stmt, err = b.createTemporary(doc)
	case OpDropTemporary:
		if doc.Temporary == nil || doc.Temporary.Name == "" {
			return nil, types.QueryOptions{}, fmt.Errorf("drop_temporary requires temporary.name")
		}
		stmt = &types.DropTemporaryTable{Name: doc.Temporary.Name}
	default:
		return nil, types.QueryOptions{}, fmt.Errorf("unsupported operation: %s", doc.Operation)
	}
	if err != nil {
		return nil, types.QueryOptions{}, err
	}

	if err := types.Validate(stmt); err != nil {
		return nil, types.QueryOptions{}, err
	}
	opts.Values = b.values
	return stmt, opts, nil
}

func (b *builder) options(doc *Document) (types.QueryOptions, error) {
	var opts types.QueryOptions

	switch strings.ToLower(doc.ParameterRendering) {
	case "", "default":
	case "no_plain_parameter":
		opts.ParameterRendering = types.RenderNoPlainParameter
	case "inline":
		opts.ParameterRendering = types.RenderInline
	default:
		return opts, fmt.Errorf("unsupported parameter rendering: %s", doc.ParameterRendering)
	}

	if doc.Limit != nil {
		opts.Limit = types.Limit{FirstRow: doc.Limit.FirstRow, MaxRows: doc.Limit.MaxRows}
	}

	if doc.Lock != nil {
		switch strings.ToLower(doc.Lock.Mode) {
		case "", "none":
		case "read":
			opts.Lock.Mode = types.LockRead
		case "pessimistic_read", "share":
			opts.Lock.Mode = types.LockPessimisticRead
		case "pessimistic_write", "update":
			opts.Lock.Mode = types.LockPessimisticWrite
		default:
			return opts, fmt.Errorf("unsupported lock mode: %s", doc.Lock.Mode)
		}
		switch strings.ToLower(doc.Lock.Wait) {
		case "", "wait":
		case "nowait":
			opts.Lock.Wait = types.NoWait
		case "skip_locked":
			opts.Lock.Wait = types.SkipLocked
		default:
			return opts, fmt.Errorf("unsupported lock wait: %s", doc.Lock.Wait)
		}
		opts.Lock.Timeout = doc.Lock.Timeout
	}
	return opts, nil
}

func (b *builder) cte(c *CTESchema) (*types.CTE, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("CTE requires a name")
	}
	part, err := b.queryPart(&c.Query)
	if err != nil {
		return nil, err
	}
	return &types.CTE{Name: c.Name, Columns: c.Columns, Query: part, Recursive: c.Recursive}, nil
}

func (b *builder) selectStatement(doc *Document, ctes []*types.CTE) (types.Statement, error) {
	if doc.Query == nil {
		return nil, fmt.Errorf("select requires a query")
	}
	part, err := b.queryPart(doc.Query)
	if err != nil {
		return nil, err
	}
	return &types.SelectStatement{Query: part, With: ctes}, nil
}

func (b *builder) insertStatement(doc *Document, ctes []*types.CTE) (types.Statement, error) {
	if doc.Table == "" {
		return nil, fmt.Errorf("insert requires a table")
	}
	stmt := &types.InsertStatement{Target: types.Table(doc.Table, doc.Alias), Columns: doc.Columns, With: ctes}
	switch {
	case doc.Query != nil:
		part, err := b.queryPart(doc.Query)
		if err != nil {
			return nil, fmt.Errorf("insert source: %w", err)
		}
		stmt.Source = part
	case len(doc.Values) > 0:
		for i, row := range doc.Values {
			exprs, err := b.operands(row)
			if err != nil {
				return nil, fmt.Errorf("values row %d: %w", i, err)
			}
			stmt.Values = append(stmt.Values, exprs)
		}
	default:
		return nil, fmt.Errorf("insert requires values or a query")
	}
	stmt.Returning = returning(doc.Returning)
	return stmt, nil
}

func (b *builder) updateStatement(doc *Document, ctes []*types.CTE) (types.Statement, error) {
	if doc.Table == "" {
		return nil, fmt.Errorf("update requires a table")
	}
	if len(doc.Updates) == 0 {
		return nil, fmt.Errorf("update requires at least one column to update")
	}
	stmt := &types.UpdateStatement{Target: types.Table(doc.Table, doc.Alias), With: ctes}
	for _, u := range doc.Updates {
		value, err := b.operand(u.Value)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", u.Column, err)
		}
		stmt.Assignments = append(stmt.Assignments, types.Assignment{Column: u.Column, Value: value})
	}
	where, err := b.optionalCondition(doc.Where)
	if err != nil {
		return nil, fmt.Errorf("invalid where clause: %w", err)
	}
	stmt.Where = where
	stmt.Returning = returning(doc.Returning)
	return stmt, nil
}

func (b *builder) deleteStatement(doc *Document, ctes []*types.CTE) (types.Statement, error) {
	if doc.Table == "" {
		return nil, fmt.Errorf("delete requires a table")
	}
	where, err := b.optionalCondition(doc.Where)
	if err != nil {
		return nil, fmt.Errorf("invalid where clause: %w", err)
	}
	return &types.DeleteStatement{
		Target:    types.Table(doc.Table, doc.Alias),
		Where:     where,
		With:      ctes,
		Returning: returning(doc.Returning),
	}, nil
}

func (b *builder) createTemporary(doc *Document) (types.Statement, error) {
	if doc.Temporary == nil || doc.Temporary.Name == "" {
		return nil, fmt.Errorf("create_temporary requires temporary.name")
	}
	stmt := &types.CreateTemporaryTable{Name: doc.Temporary.Name}
	for _, c := range doc.Temporary.Columns {
		t := types.ParseSQLType(strings.ToLower(c.Type))
		if t == types.TypeUnknown {
			return nil, fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
		}
		stmt.Columns = append(stmt.Columns, types.ColumnDefinition{Name: c.Name, Type: t, Nullable: c.Nullable})
	}
	return stmt, nil
}

func returning(columns []string) []*types.ColumnReference {
	if len(columns) == 0 {
		return nil
	}
	refs := make([]*types.ColumnReference, len(columns))
	for i, c := range columns {
		refs[i] = types.Col("", c)
	}
	return refs
}
