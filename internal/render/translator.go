package render

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/zoobzio/sqlast/internal/types"
)

// Hooks is the set of rendering steps a dialect may override.
//
// The base Translator implements every hook with ANSI behavior and dispatches
// through the Hooks it was constructed with, so a dialect that embeds
// *Translator and redefines a method sees its override called from the
// shared traversal. An override calls the embedded method to get the default.
type Hooks interface {
	VisitSelectStatement(stmt *types.SelectStatement) error
	VisitQuerySpec(spec *types.QuerySpec) error
	VisitQueryGroup(group *types.QueryGroup) error
	VisitOffsetFetchClause(part types.QueryPart) error
	ShouldEmulateFetchClause(part types.QueryPart) bool
	SupportsOffsetClause() bool
	SupportsParameterOffsetFetchExpression() bool
	EmulateFetchOffsetWithWindowFunctionsVisitQueryPart(part types.QueryPart) error

	VisitDerivedTableReference(ref *types.DerivedTableReference) error
	RenderNamedTableReference(ref *types.NamedTableReference) error
	RenderTableReferenceJoins(group *types.TableGroup) error
	RenderTableGroupJoin(join *types.TableGroupJoin) error

	RenderSelectExpression(expr types.Expression) error
	RenderExpressionAsClauseItem(expr types.Expression) error
	VisitBooleanExpressionPredicate(p *types.BooleanExpressionPredicate) error
	VisitCaseSearched(c *types.CaseSearched, resultRenderer func(types.Expression) error) error
	VisitCaseSimple(c *types.CaseSimple, resultRenderer func(types.Expression) error) error
	RenderComparison(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error
	RenderComparisonStandard(lhs types.Expression, op types.ComparisonOperator, rhs types.Expression) error
	RenderPartitionItem(expr types.Expression) error
	RenderLockClause() error

	VisitInsertStatementOnly(stmt *types.InsertStatement) error
	VisitUpdateStatementOnly(stmt *types.UpdateStatement) error
	VisitDeleteStatementOnly(stmt *types.DeleteStatement) error
	VisitReturningColumns(stmt types.Mutation) error
}

// Option configures a Translator.
type Option func(*Translator)

// WithHooks routes dispatch through a dialect's overrides.
func WithHooks(h Hooks) Option {
	return func(t *Translator) {
		t.hooks = h
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// Translator renders one statement. It holds the per-translation context and
// must not be reused or shared between goroutines.
type Translator struct {
	hooks   Hooks
	logger  *slog.Logger
	values  map[*types.Parameter]any
	profile Profile
	options types.QueryOptions

	sql      strings.Builder
	bindings []types.Binding

	statement types.Statement
	root      types.QueryPart
	partStack []types.QueryPart

	// Scoped flags, saved and restored around recursive descent.
	rowNumbering       types.QueryPart
	rowNumberingInline *types.QuerySpec
	recursiveGroup     *types.QueryGroup
	inRecursivePart    bool
	aliasedSpecs       map[*types.QuerySpec]bool
	additionalWhere    []types.Predicate

	limitOffset       *types.Parameter
	limitFetch        *types.Parameter
	fallbackFetchPart types.QueryPart
	inlineOffsetFetch bool
	aliasCounter      int
	translated        bool
}

// NewTranslator creates a translator for a single statement.
func NewTranslator(profile Profile, opts types.QueryOptions, options ...Option) *Translator {
	t := &Translator{
		profile:      profile,
		options:      opts,
		logger:       slog.Default(),
		values:       make(map[*types.Parameter]any, len(opts.Values)+2),
		aliasedSpecs: make(map[*types.QuerySpec]bool),
	}
	t.hooks = t
	for _, opt := range options {
		opt(t)
	}
	for p, v := range opts.Values {
		t.values[p] = v
	}
	return t
}

// Translate renders the statement and returns the SQL with its bind slots.
func (t *Translator) Translate(stmt types.Statement) (*types.Result, error) {
	if t.translated {
		return nil, fmt.Errorf("translator already used")
	}
	t.translated = true

	if err := types.Validate(stmt); err != nil {
		return nil, err
	}
	t.statement = stmt

	// Decided once so offset and fetch are rendered consistently.
	t.inlineOffsetFetch = !t.hooks.SupportsParameterOffsetFetchExpression()

	var err error
	switch s := stmt.(type) {
	case *types.SelectStatement:
		t.root = s.Query
		t.prepareLimit()
		err = t.hooks.VisitSelectStatement(s)
	case *types.InsertStatement:
		if err = t.renderWith(s.With); err == nil {
			err = t.hooks.VisitInsertStatementOnly(s)
		}
	case *types.UpdateStatement:
		if err = t.renderWith(s.With); err == nil {
			err = t.hooks.VisitUpdateStatementOnly(s)
		}
	case *types.DeleteStatement:
		if err = t.renderWith(s.With); err == nil {
			err = t.hooks.VisitDeleteStatementOnly(s)
		}
	case *types.CreateTemporaryTable:
		err = t.renderCreateTemporaryTable(s)
	case *types.DropTemporaryTable:
		err = t.renderDropTemporaryTable(s)
	default:
		err = fmt.Errorf("%w: unsupported statement %T", types.ErrInvalidAST, stmt)
	}
	if err != nil {
		return nil, err
	}

	return &types.Result{
		SQL:      t.sql.String(),
		Bindings: t.bindings,
	}, nil
}

// prepareLimit synthesizes the parameters carrying QueryOptions.Limit.
func (t *Translator) prepareLimit() {
	limit := t.options.Limit
	if limit.FirstRow != nil && *limit.FirstRow > 0 {
		t.limitOffset = &types.Parameter{Name: "offset", Type: types.TypeInteger}
		t.values[t.limitOffset] = *limit.FirstRow
	}
	if limit.MaxRows != nil {
		t.limitFetch = &types.Parameter{Name: "limit", Type: types.TypeInteger}
		t.values[t.limitFetch] = *limit.MaxRows
	}
}

// ---------------------------------------------------------------------------
// Context accessors for dialects
// ---------------------------------------------------------------------------

// AppendSQL appends raw SQL text.
func (t *Translator) AppendSQL(s string) {
	t.sql.WriteString(s)
}

// Profile returns the dialect profile.
func (t *Translator) Profile() Profile {
	return t.profile
}

// Statement returns the statement being translated.
func (t *Translator) Statement() types.Statement {
	return t.statement
}

// Capabilities returns the dialect capability table.
func (t *Translator) Capabilities() Capabilities {
	return t.profile.Capabilities
}

// Syntax returns the dialect syntax table.
func (t *Translator) Syntax() Syntax {
	return t.profile.Syntax
}

// Logger returns the translator's logger.
func (t *Translator) Logger() *slog.Logger {
	return t.logger
}

// ParameterRenderingMode returns the requested parameter rendering mode.
func (t *Translator) ParameterRenderingMode() types.ParameterRenderingMode {
	return t.options.ParameterRendering
}

// LockOptions returns the requested row lock.
func (t *Translator) LockOptions() types.LockOptions {
	return t.options.Lock
}

// Unsupported builds an UnsupportedFeatureError naming this dialect and version.
func (t *Translator) Unsupported(feature string, hint ...string) error {
	return NewUnsupportedFeatureError(t.profile.DisplayName(), feature, hint...)
}

// IsRoot reports whether the part is the root query part of the statement.
func (t *Translator) IsRoot(part types.QueryPart) bool {
	return t.root != nil && part == t.root
}

// CurrentQueryPart returns the query part being rendered, or nil.
func (t *Translator) CurrentQueryPart() types.QueryPart {
	if len(t.partStack) == 0 {
		return nil
	}
	return t.partStack[len(t.partStack)-1]
}

// QueryPartForRowNumbering returns the part currently wrapped by pagination emulation.
func (t *Translator) QueryPartForRowNumbering() types.QueryPart {
	return t.rowNumbering
}

// IsRowNumberingCurrentQueryPart reports whether the part being rendered is
// the one wrapped by pagination emulation.
func (t *Translator) IsRowNumberingCurrentQueryPart() bool {
	return t.rowNumbering != nil && t.CurrentQueryPart() == t.rowNumbering
}

// IsInRecursiveQueryPart reports whether the recursive member of a recursive
// CTE is being rendered.
func (t *Translator) IsInRecursiveQueryPart() bool {
	return t.inRecursivePart
}

// AddAdditionalWherePredicate appends a conjunct to the WHERE clause of the
// query spec being rendered.
func (t *Translator) AddAdditionalWherePredicate(p types.Predicate) {
	if !types.IsEmpty(p) {
		t.additionalWhere = append(t.additionalWhere, p)
	}
}

// HasLimit reports whether QueryOptions carry a row window.
func (t *Translator) HasLimit() bool {
	return t.limitOffset != nil || t.limitFetch != nil
}

// LimitParameter returns the synthesized fetch parameter, or nil.
func (t *Translator) LimitParameter() *types.Parameter {
	return t.limitFetch
}

// OffsetParameter returns the synthesized offset parameter, or nil.
func (t *Translator) OffsetParameter() *types.Parameter {
	return t.limitOffset
}

// Paging returns the effective offset and fetch of a part. On the root part
// QueryOptions.Limit takes precedence over the part's own clause.
func (t *Translator) Paging(part types.QueryPart) types.OffsetFetch {
	if t.IsRoot(part) && t.HasLimit() {
		p := types.OffsetFetch{FetchType: types.RowsOnly}
		if t.limitOffset != nil {
			p.Offset = t.limitOffset
		}
		if t.limitFetch != nil {
			p.Fetch = t.limitFetch
		}
		return p
	}
	return part.Paging()
}

// HasOffset reports whether the part has an effective offset.
func (t *Translator) HasOffset(part types.QueryPart) bool {
	return t.Paging(part).HasOffset()
}

// InlineOffsetFetch reports whether offset and fetch bounds are rendered as literals.
func (t *Translator) InlineOffsetFetch() bool {
	return t.inlineOffsetFetch
}

func (t *Translator) pushPart(part types.QueryPart) func() {
	t.partStack = append(t.partStack, part)
	return func() {
		t.partStack = t.partStack[:len(t.partStack)-1]
	}
}

// ---------------------------------------------------------------------------
// Identifiers, literals, parameters
// ---------------------------------------------------------------------------

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedWords = map[string]bool{
	"all": true, "and": true, "as": true, "by": true, "case": true, "check": true,
	"column": true, "cross": true, "default": true, "delete": true, "desc": true,
	"distinct": true, "else": true, "end": true, "except": true, "exists": true,
	"fetch": true, "for": true, "from": true, "full": true, "group": true,
	"having": true, "in": true, "inner": true, "insert": true, "intersect": true,
	"into": true, "is": true, "join": true, "key": true, "left": true, "like": true,
	"limit": true, "not": true, "null": true, "offset": true, "on": true, "or": true,
	"order": true, "right": true, "rows": true, "select": true, "set": true,
	"table": true, "then": true, "to": true, "union": true, "update": true,
	"user": true, "using": true, "value": true, "values": true, "when": true,
	"where": true, "with": true,
}

// Identifier returns a name quoted only when it needs to be.
func (t *Translator) Identifier(name string) string {
	if plainIdentifier.MatchString(name) && !reservedWords[strings.ToLower(name)] {
		return name
	}
	s := t.profile.Syntax
	escaped := strings.ReplaceAll(name, s.QuoteClose, s.QuoteClose+s.QuoteClose)
	return s.QuoteOpen + escaped + s.QuoteClose
}

// AppendPlaceholder registers a bind slot for the parameter and appends its marker.
func (t *Translator) AppendPlaceholder(p *types.Parameter) {
	v, ok := t.values[p]
	t.bindings = append(t.bindings, types.Binding{Parameter: p, Value: v, Bound: ok})
	switch t.profile.Syntax.Placeholder {
	case PlaceholderDollar:
		t.AppendSQL("$" + strconv.Itoa(len(t.bindings)))
	case PlaceholderAtP:
		t.AppendSQL("@p" + strconv.Itoa(len(t.bindings)))
	default:
		t.AppendSQL("?")
	}
}

// RenderParameter renders a parameter according to the parameter rendering mode.
func (t *Translator) RenderParameter(p *types.Parameter) error {
	switch t.options.ParameterRendering {
	case types.RenderInline:
		return t.RenderExpressionAsLiteral(p)
	case types.RenderNoPlainParameter:
		return t.RenderCasted(p)
	default:
		t.AppendPlaceholder(p)
		return nil
	}
}

// RenderCasted renders cast(<expr> as <type>).
func (t *Translator) RenderCasted(e types.Expression) error {
	return t.RenderCastedAs(e, types.TypeOf(e))
}

// RenderCastedAs renders cast(<expr> as <typ>). A parameter keeps its
// placeholder unless parameters are inlined.
func (t *Translator) RenderCastedAs(e types.Expression, typ types.SQLType) error {
	t.AppendSQL("cast(")
	if p, ok := e.(*types.Parameter); ok && t.options.ParameterRendering != types.RenderInline {
		t.AppendPlaceholder(p)
	} else if err := t.Visit(e); err != nil {
		return err
	}
	t.AppendSQL(" as ")
	t.AppendSQL(t.profile.Syntax.CastType(typ))
	t.AppendSQL(")")
	return nil
}

// RenderExpressionAsLiteral renders a literal or a parameter's bound value inline.
func (t *Translator) RenderExpressionAsLiteral(e types.Expression) error {
	switch n := e.(type) {
	case *types.Literal:
		return t.RenderLiteral(n)
	case *types.Parameter:
		v, ok := t.values[n]
		if !ok {
			return fmt.Errorf("no value bound for parameter %q, which must be rendered inline", n.Name)
		}
		return t.RenderLiteral(&types.Literal{Value: v, Type: n.Type})
	default:
		return t.Unsupported(fmt.Sprintf("%T where a literal is required", e))
	}
}

// RenderLiteral renders a constant.
func (t *Translator) RenderLiteral(l *types.Literal) error {
	s := t.profile.Syntax
	switch v := l.Value.(type) {
	case nil:
		t.AppendSQL("null")
	case bool:
		if v {
			t.AppendSQL(s.TrueLiteral)
		} else {
			t.AppendSQL(s.FalseLiteral)
		}
	case int:
		t.AppendSQL(strconv.Itoa(v))
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		t.AppendSQL(fmt.Sprintf("%d", v))
	case float32:
		t.AppendSQL(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		t.AppendSQL(strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		t.appendTemporalPrefix(l.Type)
		t.AppendSQL(quoteString(v))
	case []byte:
		t.AppendSQL(s.BinaryLiteralPrefix)
		t.AppendSQL(fmt.Sprintf("%x", v))
		t.AppendSQL(s.BinaryLiteralSuffix)
	default:
		if tm, ok := timeValue(v); ok {
			typ := l.Type
			if typ != types.TypeDate && typ != types.TypeTime {
				typ = types.TypeTimestamp
			}
			t.appendTemporalPrefix(typ)
			t.AppendSQL(quoteString(formatTemporal(tm, typ)))
			return nil
		}
		return fmt.Errorf("%w: cannot render literal of type %T", types.ErrInvalidAST, l.Value)
	}
	return nil
}

func (t *Translator) appendTemporalPrefix(typ types.SQLType) {
	if !t.profile.Syntax.TypedTemporalLiteral {
		return
	}
	switch typ {
	case types.TypeDate:
		t.AppendSQL("date ")
	case types.TypeTime:
		t.AppendSQL("time ")
	case types.TypeTimestamp:
		t.AppendSQL("timestamp ")
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// RenderCommaSeparated renders expressions separated by ",".
func (t *Translator) RenderCommaSeparated(exprs []types.Expression) error {
	for i, e := range exprs {
		if i > 0 {
			t.AppendSQL(",")
		}
		if err := t.Visit(e); err != nil {
			return err
		}
	}
	return nil
}
