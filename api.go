// Package sqlast translates database-independent SQL statement trees into
// dialect-specific SQL text plus an ordered list of parameter bind slots.
//
// The tree is built from the node types re-exported here and handed to a
// dialect, which renders it for one server version and emulates what that
// version lacks:
//
//	d, err := dialects.Open("db2", "10.5")
//	if err != nil {
//		return err
//	}
//
//	spec := &sqlast.QuerySpec{
//		Select: sqlast.Items(sqlast.Col("e", "id")),
//		From:   []*sqlast.TableGroup{sqlast.From(sqlast.Table("employee", "e"))},
//	}
//	spec.Offset = sqlast.Lit(10)
//	spec.Fetch = sqlast.Lit(5)
//
//	result, err := d.Render(sqlast.Select(spec), sqlast.QueryOptions{})
//	// result.SQL: select r_0_.c0 from (select e.id c0,row_number() over() rn from employee e) r_0_
//	//             where r_0_.rn>10 and r_0_.rn<=15 order by r_0_.rn
//
// # Errors
//
// Constructs a dialect can neither express nor emulate fail with an
// UnsupportedFeatureError naming the construct and the dialect version; use
// IsUnsupported to test for it. Structurally invalid trees fail with an error
// wrapping ErrInvalidAST; use IsInvalid.
//
// # Schema
//
// A Catalog built from a DBML project resolves typed column references and
// entity metadata such as temporary id tables.
package sqlast

import (
	"errors"

	"github.com/zoobzio/sqlast/internal/render"
	"github.com/zoobzio/sqlast/internal/types"
)

// Dialect renders statements for one database and server version.
// Implementations are immutable and safe for concurrent use.
type Dialect interface {
	// Name returns the dialect name, e.g. "DB2".
	Name() string
	// Version returns the targeted server version.
	Version() Version
	// Capabilities returns the SQL features of the targeted version.
	Capabilities() Capabilities
	// Render translates a statement into SQL with bind slots in render order.
	Render(stmt Statement, opts QueryOptions) (*Result, error)
}

// Version is a dotted database server version.
type Version = render.Version

// Capabilities describes the SQL features a dialect version supports.
type Capabilities = render.Capabilities

// UnsupportedFeatureError reports a construct the dialect cannot express.
type UnsupportedFeatureError = render.UnsupportedFeatureError

// ErrInvalidAST is wrapped by every structural validation failure.
var ErrInvalidAST = types.ErrInvalidAST

// V builds a version from its components.
func V(major int, rest ...int) Version {
	return render.V(major, rest...)
}

// ParseVersion parses a dotted version such as "11.1".
func ParseVersion(s string) (Version, error) {
	return render.ParseVersion(s)
}

// IsUnsupported reports whether err is, or wraps, an UnsupportedFeatureError.
func IsUnsupported(err error) bool {
	return errors.Is(err, render.ErrUnsupported)
}

// IsInvalid reports whether err wraps ErrInvalidAST.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidAST)
}

// Statements.
type (
	Statement            = types.Statement
	Mutation             = types.Mutation
	CTE                  = types.CTE
	SelectStatement      = types.SelectStatement
	InsertStatement      = types.InsertStatement
	Assignment           = types.Assignment
	UpdateStatement      = types.UpdateStatement
	DeleteStatement      = types.DeleteStatement
	ColumnDefinition     = types.ColumnDefinition
	CreateTemporaryTable = types.CreateTemporaryTable
	DropTemporaryTable   = types.DropTemporaryTable
)

// Query parts and the FROM clause.
type (
	QueryPart             = types.QueryPart
	QuerySpec             = types.QuerySpec
	QueryGroup            = types.QueryGroup
	SelectItem            = types.SelectItem
	SortSpec              = types.SortSpec
	OffsetFetch           = types.OffsetFetch
	TableReference        = types.TableReference
	NamedTableReference   = types.NamedTableReference
	DerivedTableReference = types.DerivedTableReference
	TableReferenceJoin    = types.TableReferenceJoin
	TableGroupJoin        = types.TableGroupJoin
	TableGroup            = types.TableGroup
)

// Expressions and predicates.
type (
	Expression                 = types.Expression
	ColumnReference            = types.ColumnReference
	Literal                    = types.Literal
	Star                       = types.Star
	Positional                 = types.Positional
	Parameter                  = types.Parameter
	Tuple                      = types.Tuple
	CaseWhen                   = types.CaseWhen
	CaseSearched               = types.CaseSearched
	CaseSimpleWhen             = types.CaseSimpleWhen
	CaseSimple                 = types.CaseSimple
	Summarization              = types.Summarization
	Function                   = types.Function
	Over                       = types.Over
	Cast                       = types.Cast
	Arithmetic                 = types.Arithmetic
	Subquery                   = types.Subquery
	Predicate                  = types.Predicate
	Comparison                 = types.Comparison
	Junction                   = types.Junction
	Negated                    = types.Negated
	Nullness                   = types.Nullness
	BooleanExpressionPredicate = types.BooleanExpressionPredicate
	InList                     = types.InList
	InSubquery                 = types.InSubquery
	Exists                     = types.Exists
	Between                    = types.Between
	Like                       = types.Like
)

// Enumerations.
type (
	SQLType                = types.SQLType
	ComparisonOperator     = types.ComparisonOperator
	JoinType               = types.JoinType
	SetOperator            = types.SetOperator
	JunctionKind           = types.JunctionKind
	SummarizationKind      = types.SummarizationKind
	FetchClauseType        = types.FetchClauseType
	LockMode               = types.LockMode
	LockWait               = types.LockWait
	ParameterRenderingMode = types.ParameterRenderingMode
)

// Options and results.
type (
	LockOptions  = types.LockOptions
	Limit        = types.Limit
	QueryOptions = types.QueryOptions
	Binding      = types.Binding
	Result       = types.Result
)

// Re-export type constants for public API.
const (
	TypeUnknown   = types.TypeUnknown
	TypeInteger   = types.TypeInteger
	TypeBigInt    = types.TypeBigInt
	TypeDecimal   = types.TypeDecimal
	TypeDouble    = types.TypeDouble
	TypeVarchar   = types.TypeVarchar
	TypeChar      = types.TypeChar
	TypeBoolean   = types.TypeBoolean
	TypeDate      = types.TypeDate
	TypeTime      = types.TypeTime
	TypeTimestamp = types.TypeTimestamp
	TypeXML       = types.TypeXML
	TypeBinary    = types.TypeBinary
	TypeUUID      = types.TypeUUID
)

// Re-export operator constants for public API.
const (
	Equal              = types.Equal
	NotEqual           = types.NotEqual
	LessThan           = types.LessThan
	LessThanOrEqual    = types.LessThanOrEqual
	GreaterThan        = types.GreaterThan
	GreaterThanOrEqual = types.GreaterThanOrEqual
	DistinctFrom       = types.DistinctFrom
	NotDistinctFrom    = types.NotDistinctFrom
)

// Re-export join and set operation constants for public API.
const (
	InnerJoin = types.InnerJoin
	CrossJoin = types.CrossJoin
	LeftJoin  = types.LeftJoin
	RightJoin = types.RightJoin
	FullJoin  = types.FullJoin

	Union        = types.Union
	UnionAll     = types.UnionAll
	Intersect    = types.Intersect
	IntersectAll = types.IntersectAll
	Except       = types.Except
	ExceptAll    = types.ExceptAll

	And = types.And
	Or  = types.Or

	Rollup = types.Rollup
	Cube   = types.Cube
)

// Re-export paging and locking constants for public API.
const (
	RowsOnly        = types.RowsOnly
	Percent         = types.Percent
	WithTies        = types.WithTies
	PercentWithTies = types.PercentWithTies

	LockNone             = types.LockNone
	LockRead             = types.LockRead
	LockPessimisticRead  = types.LockPessimisticRead
	LockPessimisticWrite = types.LockPessimisticWrite

	WaitForever = types.WaitForever
	NoWait      = types.NoWait
	SkipLocked  = types.SkipLocked

	RenderDefault          = types.RenderDefault
	RenderNoPlainParameter = types.RenderNoPlainParameter
	RenderInline           = types.RenderInline
)

// Select wraps a query part in a SELECT statement.
func Select(part QueryPart) *SelectStatement { return types.Select(part) }

// Validate checks the structural invariants of a statement.
func Validate(stmt Statement) error { return types.Validate(stmt) }

// Table is shorthand for an aliased NamedTableReference.
func Table(name, alias string) *NamedTableReference { return types.Table(name, alias) }

// From is shorthand for a TableGroup without joins.
func From(primary TableReference) *TableGroup { return types.From(primary) }

// Col references a column through a table alias.
func Col(qualifier, column string) *ColumnReference { return types.Col(qualifier, column) }

// Lit is a literal whose type is inferred from the Go value.
func Lit(v any) *Literal { return types.Lit(v) }

// Param creates a typed parameter.
func Param(name string, t SQLType) *Parameter { return types.Param(name, t) }

// Compare builds a comparison predicate.
func Compare(lhs Expression, op ComparisonOperator, rhs Expression) *Comparison {
	return types.Compare(lhs, op, rhs)
}

// AndOf conjoins predicates, dropping nils.
func AndOf(predicates ...Predicate) Predicate { return types.AndOf(predicates...) }

// Items builds unaliased select items.
func Items(exprs ...Expression) []SelectItem { return types.Items(exprs...) }

// Asc sorts ascending.
func Asc(e Expression) SortSpec { return types.Asc(e) }

// Desc sorts descending.
func Desc(e Expression) SortSpec { return types.Desc(e) }
