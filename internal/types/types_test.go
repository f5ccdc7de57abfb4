package types

import (
	"errors"
	"testing"
)

// =============================================================================
// Expression Tests
// =============================================================================

func TestLit_InfersType(t *testing.T) {
	tests := []struct {
		value any
		want  SQLType
	}{
		{1, TypeInteger},
		{int64(1), TypeBigInt},
		{1.5, TypeDouble},
		{"x", TypeVarchar},
		{true, TypeBoolean},
		{[]byte{1}, TypeBinary},
		{nil, TypeUnknown},
	}

	for _, tt := range tests {
		if got := Lit(tt.value).Type; got != tt.want {
			t.Errorf("Lit(%v).Type = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseSQLType(t *testing.T) {
	if got := ParseSQLType("timestamp"); got != TypeTimestamp {
		t.Errorf("ParseSQLType(timestamp) = %v, want timestamp", got)
	}
	if got := ParseSQLType("nonsense"); got != TypeUnknown {
		t.Errorf("ParseSQLType(nonsense) = %v, want unknown", got)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want SQLType
	}{
		{"column", &ColumnReference{Column: "id", Type: TypeBigInt}, TypeBigInt},
		{"parameter", Param("p", TypeDate), TypeDate},
		{"case declared", &CaseSearched{Type: TypeXML, When: []CaseWhen{{Result: Lit(1)}}}, TypeXML},
		{"case from arms", &CaseSearched{When: []CaseWhen{{Result: Param("p", TypeUnknown)}, {Result: Lit("x")}}}, TypeVarchar},
		{"case from else", &CaseSimple{When: []CaseSimpleWhen{{Result: Param("p", TypeUnknown)}}, Else: Lit(2)}, TypeInteger},
		{"cast", &Cast{Expression: Lit("1"), Type: TypeInteger}, TypeInteger},
		{"arithmetic", &Arithmetic{Lhs: Param("p", TypeUnknown), Rhs: Lit(1.0), Operator: Add}, TypeDouble},
		{"predicate", Compare(Lit(1), Equal, Lit(2)), TypeBoolean},
		{"scalar subquery", &Subquery{Query: &QuerySpec{Select: Items(&ColumnReference{Column: "n", Type: TypeDecimal})}}, TypeDecimal},
		{"tuple", &Tuple{Expressions: []Expression{Lit(1)}}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.expr); got != tt.want {
				t.Errorf("TypeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllParameters(t *testing.T) {
	p := Param("p", TypeInteger)
	if AllParameters(nil) {
		t.Error("AllParameters(nil) = true, want false")
	}
	if !AllParameters([]Expression{p, p}) {
		t.Error("AllParameters(params) = false, want true")
	}
	if AllParameters([]Expression{p, Lit(1)}) {
		t.Error("AllParameters(mixed) = true, want false")
	}
}

func TestFlatten(t *testing.T) {
	nested := &Tuple{Expressions: []Expression{
		Lit(1),
		&Tuple{Expressions: []Expression{Lit(2), Lit(3)}},
	}}
	if got := len(Flatten(nested)); got != 3 {
		t.Errorf("len(Flatten()) = %d, want 3", got)
	}
	if got := len(Flatten(Lit(1))); got != 1 {
		t.Errorf("len(Flatten(scalar)) = %d, want 1", got)
	}
}

// =============================================================================
// Operator Tests
// =============================================================================

func TestComparisonOperator_Negate(t *testing.T) {
	for _, op := range []ComparisonOperator{Equal, NotEqual, LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, DistinctFrom, NotDistinctFrom} {
		if got := op.Negate().Negate(); got != op {
			t.Errorf("%v.Negate().Negate() = %v", op, got)
		}
	}
	if LessThan.Negate() != GreaterThanOrEqual {
		t.Errorf("LessThan.Negate() = %v, want >=", LessThan.Negate())
	}
}

func TestComparisonOperator_Strict(t *testing.T) {
	if LessThanOrEqual.Strict() != LessThan {
		t.Errorf("<=.Strict() = %v, want <", LessThanOrEqual.Strict())
	}
	if Equal.Strict() != Equal {
		t.Errorf("=.Strict() = %v, want =", Equal.Strict())
	}
}

func TestFetchClauseType(t *testing.T) {
	if !PercentWithTies.IsPercent() || !PercentWithTies.HasTies() {
		t.Error("PercentWithTies should be percent with ties")
	}
	if RowsOnly.IsPercent() || RowsOnly.HasTies() {
		t.Error("RowsOnly should be neither percent nor ties")
	}
	if got := WithTies.String(); got != "rows with ties" {
		t.Errorf("WithTies.String() = %q", got)
	}
}

func TestJoinType_Text(t *testing.T) {
	if got := LeftJoin.Text(); got != "left " {
		t.Errorf("LeftJoin.Text() = %q, want %q", got, "left ")
	}
	if got := InnerJoin.Text(); got != "inner " {
		t.Errorf("InnerJoin.Text() = %q, want %q", got, "inner ")
	}
}

// =============================================================================
// Predicate Tests
// =============================================================================

func TestAndOf(t *testing.T) {
	a := Compare(Lit(1), Equal, Lit(1))
	b := Compare(Lit(2), Equal, Lit(2))

	if AndOf() != nil {
		t.Error("AndOf() should be nil")
	}
	if AndOf(nil, a) != a {
		t.Error("AndOf(nil, a) should be a")
	}
	j, ok := AndOf(a, nil, b).(*Junction)
	if !ok || len(j.Predicates) != 2 || j.Kind != And {
		t.Errorf("AndOf(a, nil, b) = %#v", AndOf(a, nil, b))
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) {
		t.Error("IsEmpty(nil) = false")
	}
	if !IsEmpty(&Junction{Predicates: []Predicate{&Junction{}}}) {
		t.Error("IsEmpty(nested empty junction) = false")
	}
	if IsEmpty(&Junction{Predicates: []Predicate{Compare(Lit(1), Equal, Lit(1))}}) {
		t.Error("IsEmpty(junction with predicate) = true")
	}
}

// =============================================================================
// Query Tests
// =============================================================================

func TestFirstSpecAndArity(t *testing.T) {
	spec := &QuerySpec{Select: Items(Lit(1), Lit(2))}
	group := &QueryGroup{Parts: []QueryPart{
		&QueryGroup{Parts: []QueryPart{spec, &QuerySpec{Select: Items(Lit(3), Lit(4))}}},
		&QuerySpec{Select: Items(Lit(5), Lit(6))},
	}}

	if FirstSpec(group) != spec {
		t.Error("FirstSpec() should return the left-most spec")
	}
	if got := Arity(group); got != 2 {
		t.Errorf("Arity() = %d, want 2", got)
	}
}

func TestTableReference_IdentificationVariable(t *testing.T) {
	if got := Table("employee", "").IdentificationVariable(); got != "employee" {
		t.Errorf("IdentificationVariable() = %q, want %q", got, "employee")
	}
	if got := Table("employee", "e").IdentificationVariable(); got != "e" {
		t.Errorf("IdentificationVariable() = %q, want %q", got, "e")
	}
}

func TestTableGroup_Join(t *testing.T) {
	g := From(Table("employee", "e")).
		JoinTable(InnerJoin, Table("employee_detail", "ed"), nil).
		Join(LeftJoin, From(Table("department", "d")), nil)

	if len(g.ReferenceJoins) != 1 || len(g.Joins) != 1 {
		t.Errorf("joins = %d/%d, want 1/1", len(g.ReferenceJoins), len(g.Joins))
	}
	if g.Joins[0].Type != LeftJoin {
		t.Errorf("join type = %v, want left", g.Joins[0].Type)
	}
}

// =============================================================================
// Result Tests
// =============================================================================

func TestResult_ArgsAndUnbound(t *testing.T) {
	a := Param("a", TypeInteger)
	b := Param("b", TypeInteger)
	r := &Result{Bindings: []Binding{
		{Parameter: a, Value: 1, Bound: true},
		{Parameter: b},
		{Parameter: a, Value: 1, Bound: true},
	}}

	args := r.Args()
	if len(args) != 3 || args[0] != 1 || args[1] != nil || args[2] != 1 {
		t.Errorf("Args() = %v", args)
	}
	unbound := r.Unbound()
	if len(unbound) != 1 || unbound[0] != "b" {
		t.Errorf("Unbound() = %v, want [b]", unbound)
	}
}

func TestLimit_IsEmpty(t *testing.T) {
	n := 1
	if !(Limit{}).IsEmpty() {
		t.Error("empty Limit should be empty")
	}
	if (Limit{MaxRows: &n}).IsEmpty() {
		t.Error("Limit with MaxRows should not be empty")
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	spec := func(n int) *QuerySpec {
		items := make([]Expression, n)
		for i := range items {
			items[i] = Lit(i)
		}
		return &QuerySpec{Select: Items(items...)}
	}

	tests := []struct {
		name  string
		stmt  Statement
		valid bool
	}{
		{"nil statement", nil, false},
		{"select", Select(spec(1)), true},
		{"empty select list", Select(&QuerySpec{}), false},
		{"nil query part", &SelectStatement{}, false},
		{"group of one", Select(&QueryGroup{Parts: []QueryPart{spec(1)}}), false},
		{"group arity mismatch", Select(&QueryGroup{Parts: []QueryPart{spec(1), spec(2)}}), false},
		{"group arity match", Select(&QueryGroup{Parts: []QueryPart{spec(2), spec(2)}}), true},
		{"cte without name", &SelectStatement{Query: spec(1), With: []*CTE{{Query: spec(1)}}}, false},
		{"cte column mismatch", &SelectStatement{Query: spec(1), With: []*CTE{{Name: "c", Columns: []string{"a", "b"}, Query: spec(1)}}}, false},
		{"tuple arity mismatch", Select(&QuerySpec{
			Select: Items(Lit(1)),
			Where: Compare(
				&Tuple{Expressions: []Expression{Lit(1), Lit(2)}}, Equal,
				&Tuple{Expressions: []Expression{Lit(1)}}),
		}), false},
		{"empty case", Select(&QuerySpec{Select: Items(&CaseSearched{})}), false},
		{"insert values", &InsertStatement{Target: Table("t", ""), Columns: []string{"a"}, Values: [][]Expression{{Lit(1)}}}, true},
		{"insert row arity", &InsertStatement{Target: Table("t", ""), Columns: []string{"a"}, Values: [][]Expression{{Lit(1), Lit(2)}}}, false},
		{"insert values and source", &InsertStatement{Target: Table("t", ""), Columns: []string{"a"}, Values: [][]Expression{{Lit(1)}}, Source: spec(1)}, false},
		{"insert source arity", &InsertStatement{Target: Table("t", ""), Columns: []string{"a"}, Source: spec(2)}, false},
		{"update without assignments", &UpdateStatement{Target: Table("t", "")}, false},
		{"delete", &DeleteStatement{Target: Table("t", "")}, true},
		{"delete without target", &DeleteStatement{}, false},
		{"temporary table without columns", &CreateTemporaryTable{Name: "HT_t"}, false},
		{"derived table without query", Select(&QuerySpec{
			Select: Items(Lit(1)),
			From:   []*TableGroup{From(&DerivedTableReference{Alias: "x"})},
		}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.stmt)
			if tt.valid && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidAST) {
				t.Errorf("Validate() error = %v, want ErrInvalidAST", err)
			}
		})
	}
}
