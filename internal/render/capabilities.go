package render

import "github.com/zoobzio/sqlast/internal/types"

// RowLockingLevel indicates the level of row-level locking support.
type RowLockingLevel int

const (
	RowLockingNone  RowLockingLevel = iota // No row locking
	RowLockingBasic                        // FOR UPDATE
	RowLockingFull                         // + FOR SHARE
)

// ReturningSupport is a set of statement kinds that accept a native RETURNING clause.
type ReturningSupport int

const (
	ReturningInsert ReturningSupport = 1 << iota
	ReturningUpdate
	ReturningDelete

	ReturningNone ReturningSupport = 0
	ReturningAll                   = ReturningInsert | ReturningUpdate | ReturningDelete
)

// Supports reports whether the statement kind accepts RETURNING.
func (r ReturningSupport) Supports(m types.Mutation) bool {
	switch m.(type) {
	case *types.InsertStatement:
		return r&ReturningInsert != 0
	case *types.UpdateStatement:
		return r&ReturningUpdate != 0
	case *types.DeleteStatement:
		return r&ReturningDelete != 0
	default:
		return false
	}
}

// DistinctFromStrategy selects how IS [NOT] DISTINCT FROM is rendered.
type DistinctFromStrategy int

const (
	DistinctFromCaseWhen       DistinctFromStrategy = iota // case when l=r or l is null and r is null then 0 else 1 end=1
	DistinctFromNative                                     // l is distinct from r
	DistinctFromNullSafeEquals                             // not(l<=>r)
	DistinctFromIs                                         // l is not r
	DistinctFromDecode                                     // decode(l,r,0,1)=1
)

// Capabilities describes the SQL features supported by a dialect version.
type Capabilities struct {
	RowValueConstructor   bool                 // (a, b) = (c, d)
	RowValueInList        bool                 // (a, b) in ((c, d), ...)
	RowValueInQuantified  bool                 // (a, b) in (select ...)
	OffsetFetch           bool                 // offset n rows fetch first m rows only
	FetchFirst            bool                 // fetch first m rows only, no offset
	LimitOffset           bool                 // limit m offset n
	ParameterOffsetFetch  bool                 // offset/fetch bounds may be bind parameters
	FetchPercent          bool                 // fetch first n percent rows only
	FetchTies             bool                 // fetch first n rows with ties
	WindowFunctions       bool                 // row_number() over(...)
	WithInSubquery        bool                 // WITH inside a derived table
	RecursiveKeyword      bool                 // WITH RECURSIVE
	PredicateAsExpression bool                 // select a = b
	Lateral               bool                 // lateral derived tables
	Summarization         bool                 // rollup(...), cube(...)
	SetOperationParens    bool                 // (select ...) union (select ...)
	SkipLocked            bool                 // skip locked rows
	NoWait                bool                 // fail instead of waiting for locks
	LockTimeout           bool                 // wait n seconds for locks
	Returning             ReturningSupport     // RETURNING clause
	RowLocking            RowLockingLevel      // FOR UPDATE/SHARE support
	DistinctFrom          DistinctFromStrategy // IS DISTINCT FROM rendering
}

// PlaceholderStyle is the bind marker syntax of a dialect.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1
	PlaceholderAtP                              // @p1
)

// Syntax holds the dialect-specific SQL fragments the translator appends verbatim.
type Syntax struct {
	CastTypes            map[types.SQLType]string
	ColumnTypes          map[types.SQLType]string // DDL types where they differ from CastTypes
	QuoteOpen            string
	QuoteClose           string
	TrueLiteral          string
	FalseLiteral         string
	ForUpdate            string
	ForShare             string
	SkipLocked           string
	NoWait               string
	WaitTimeout          string // format verb receives whole seconds
	FromDual             string
	EmptyGrouping        string
	NoLimit              string // LIMIT value meaning "all rows" when only an offset is given
	WindowOrderFallback  string // ORDER BY of a window when the query has none
	BinaryLiteralPrefix  string
	BinaryLiteralSuffix  string
	TemporaryTableCreate string
	TemporaryTableDrop   string
	TemporaryTablePrefix string
	TemporaryTableSuffix string
	MaxIdentifierLength  int
	Placeholder          PlaceholderStyle
	TypedTemporalLiteral bool
	DMLAliasAs           bool
}

// CastType returns the type name used in CAST for a SQL type.
// Unknown types fall back to the dialect's varchar.
func (s Syntax) CastType(t types.SQLType) string {
	if name, ok := s.CastTypes[t]; ok {
		return name
	}
	return s.CastTypes[types.TypeVarchar]
}

// ColumnType returns the type name used in temporary table DDL.
func (s Syntax) ColumnType(t types.SQLType) string {
	if name, ok := s.ColumnTypes[t]; ok {
		return name
	}
	return s.CastType(t)
}

// Profile is everything the base translator needs to know about a dialect.
type Profile struct {
	Name         string
	Version      Version
	Capabilities Capabilities
	Syntax       Syntax
}

// DisplayName returns the dialect name with its version, e.g. "DB2 10.5".
func (p Profile) DisplayName() string {
	return p.Name + " " + p.Version.String()
}

// ANSISyntax returns a syntax table with the standard fragments.
// Dialects start from it and override what differs.
func ANSISyntax() Syntax {
	return Syntax{
		CastTypes: map[types.SQLType]string{
			types.TypeInteger:   "integer",
			types.TypeBigInt:    "bigint",
			types.TypeDecimal:   "decimal(38,10)",
			types.TypeDouble:    "double precision",
			types.TypeVarchar:   "varchar(255)",
			types.TypeChar:      "char(1)",
			types.TypeBoolean:   "boolean",
			types.TypeDate:      "date",
			types.TypeTime:      "time",
			types.TypeTimestamp: "timestamp",
			types.TypeXML:       "xml",
			types.TypeBinary:    "varbinary(255)",
			types.TypeUUID:      "char(36)",
		},
		QuoteOpen:            `"`,
		QuoteClose:           `"`,
		TrueLiteral:          "true",
		FalseLiteral:         "false",
		ForUpdate:            " for update",
		SkipLocked:           " skip locked",
		NoWait:               " nowait",
		EmptyGrouping:        "()",
		BinaryLiteralPrefix:  "X'",
		BinaryLiteralSuffix:  "'",
		TemporaryTableCreate: "create temporary table",
		TemporaryTableDrop:   "drop table",
		MaxIdentifierLength:  128,
		TypedTemporalLiteral: true,
	}
}
