package types

import (
	"errors"
	"fmt"
)

// ErrInvalidAST is wrapped by every structural validation failure.
var ErrInvalidAST = errors.New("sqlast: invalid AST")

// Statement is the root of one translation unit.
// This is exported from the internal package so dialects can use it,
// but external users cannot import this package.
type Statement interface {
	statementNode()
	// CTEs returns the common table expressions declared on the statement.
	CTEs() []*CTE
}

// Mutation is a DML statement that may declare returning columns.
type Mutation interface {
	Statement
	ReturningColumns() []*ColumnReference
	TargetTable() *NamedTableReference
}

// CTE is a common table expression.
// A recursive CTE's query is normally a QueryGroup whose first part is the
// anchor and whose remaining parts reference the CTE itself.
type CTE struct {
	Query     QueryPart
	Name      string
	Columns   []string
	Recursive bool
}

// SelectStatement is a query with optional CTEs.
type SelectStatement struct {
	Query QueryPart
	With  []*CTE
}

// InsertStatement inserts VALUES rows or the result of a query.
type InsertStatement struct {
	Target    *NamedTableReference
	Source    QueryPart
	With      []*CTE
	Columns   []string
	Values    [][]Expression
	Returning []*ColumnReference
}

// Assignment is one SET item of an UPDATE.
type Assignment struct {
	Value  Expression
	Column string
}

// UpdateStatement updates rows of a single table.
type UpdateStatement struct {
	Target      *NamedTableReference
	Where       Predicate
	With        []*CTE
	Assignments []Assignment
	Returning   []*ColumnReference
}

// DeleteStatement deletes rows of a single table.
type DeleteStatement struct {
	Target    *NamedTableReference
	Where     Predicate
	With      []*CTE
	Returning []*ColumnReference
}

// ColumnDefinition is a column of a temporary table.
type ColumnDefinition struct {
	Name     string
	Type     SQLType
	Nullable bool
}

// CreateTemporaryTable declares a session-scoped table.
type CreateTemporaryTable struct {
	Name    string
	Columns []ColumnDefinition
}

// DropTemporaryTable drops a session-scoped table.
type DropTemporaryTable struct {
	Name string
}

func (*SelectStatement) statementNode()      {}
func (*InsertStatement) statementNode()      {}
func (*UpdateStatement) statementNode()      {}
func (*DeleteStatement) statementNode()      {}
func (*CreateTemporaryTable) statementNode() {}
func (*DropTemporaryTable) statementNode()   {}

func (s *SelectStatement) CTEs() []*CTE    { return s.With }
func (s *InsertStatement) CTEs() []*CTE    { return s.With }
func (s *UpdateStatement) CTEs() []*CTE    { return s.With }
func (s *DeleteStatement) CTEs() []*CTE    { return s.With }
func (*CreateTemporaryTable) CTEs() []*CTE { return nil }
func (*DropTemporaryTable) CTEs() []*CTE   { return nil }

func (s *InsertStatement) ReturningColumns() []*ColumnReference { return s.Returning }
func (s *UpdateStatement) ReturningColumns() []*ColumnReference { return s.Returning }
func (s *DeleteStatement) ReturningColumns() []*ColumnReference { return s.Returning }

func (s *InsertStatement) TargetTable() *NamedTableReference { return s.Target }
func (s *UpdateStatement) TargetTable() *NamedTableReference { return s.Target }
func (s *DeleteStatement) TargetTable() *NamedTableReference { return s.Target }

// Select wraps a query part into a statement.
func Select(part QueryPart) *SelectStatement {
	return &SelectStatement{Query: part}
}

// Validate performs structural validation on a statement.
// Failures wrap ErrInvalidAST.
func Validate(stmt Statement) error {
	if stmt == nil {
		return fmt.Errorf("%w: statement is nil", ErrInvalidAST)
	}
	for _, cte := range stmt.CTEs() {
		if cte == nil || cte.Name == "" {
			return fmt.Errorf("%w: CTE requires a name", ErrInvalidAST)
		}
		if err := validatePart(cte.Query); err != nil {
			return fmt.Errorf("CTE %s: %w", cte.Name, err)
		}
		if len(cte.Columns) > 0 && len(cte.Columns) != Arity(cte.Query) {
			return fmt.Errorf("%w: CTE %s declares %d columns but selects %d",
				ErrInvalidAST, cte.Name, len(cte.Columns), Arity(cte.Query))
		}
	}

	switch s := stmt.(type) {
	case *SelectStatement:
		return validatePart(s.Query)
	case *InsertStatement:
		if s.Target == nil {
			return fmt.Errorf("%w: insert requires a target table", ErrInvalidAST)
		}
		if len(s.Columns) == 0 {
			return fmt.Errorf("%w: insert requires at least one column", ErrInvalidAST)
		}
		if s.Source != nil && len(s.Values) > 0 {
			return fmt.Errorf("%w: insert cannot have both values and a source query", ErrInvalidAST)
		}
		if s.Source != nil {
			if err := validatePart(s.Source); err != nil {
				return err
			}
			if Arity(s.Source) != len(s.Columns) {
				return fmt.Errorf("%w: insert of %d columns from a query selecting %d",
					ErrInvalidAST, len(s.Columns), Arity(s.Source))
			}
			return nil
		}
		if len(s.Values) == 0 {
			return fmt.Errorf("%w: insert requires values or a source query", ErrInvalidAST)
		}
		for i, row := range s.Values {
			if len(row) != len(s.Columns) {
				return fmt.Errorf("%w: values row %d has %d expressions, expected %d",
					ErrInvalidAST, i, len(row), len(s.Columns))
			}
			for _, e := range row {
				if err := validateExpression(e); err != nil {
					return err
				}
			}
		}
	case *UpdateStatement:
		if s.Target == nil {
			return fmt.Errorf("%w: update requires a target table", ErrInvalidAST)
		}
		if len(s.Assignments) == 0 {
			return fmt.Errorf("%w: update requires at least one assignment", ErrInvalidAST)
		}
		for _, a := range s.Assignments {
			if err := validateExpression(a.Value); err != nil {
				return err
			}
		}
		return validateExpression(s.Where)
	case *DeleteStatement:
		if s.Target == nil {
			return fmt.Errorf("%w: delete requires a target table", ErrInvalidAST)
		}
		return validateExpression(s.Where)
	case *CreateTemporaryTable:
		if s.Name == "" || len(s.Columns) == 0 {
			return fmt.Errorf("%w: temporary table requires a name and columns", ErrInvalidAST)
		}
	case *DropTemporaryTable:
		if s.Name == "" {
			return fmt.Errorf("%w: temporary table requires a name", ErrInvalidAST)
		}
	}
	return nil
}

func validatePart(part QueryPart) error {
	switch p := part.(type) {
	case *QuerySpec:
		if p == nil {
			return fmt.Errorf("%w: query spec is nil", ErrInvalidAST)
		}
		if len(p.Select) == 0 {
			return fmt.Errorf("%w: query spec selects nothing", ErrInvalidAST)
		}
		for _, item := range p.Select {
			if err := validateExpression(item.Expression); err != nil {
				return err
			}
		}
		for _, g := range p.From {
			if err := validateGroup(g); err != nil {
				return err
			}
		}
		if err := validateExpression(p.Where); err != nil {
			return err
		}
		return validateExpression(p.Having)
	case *QueryGroup:
		if p == nil || len(p.Parts) < 2 {
			return fmt.Errorf("%w: query group requires at least two parts", ErrInvalidAST)
		}
		want := Arity(p.Parts[0])
		for i, member := range p.Parts {
			if err := validatePart(member); err != nil {
				return err
			}
			if got := Arity(member); got != want {
				return fmt.Errorf("%w: query group member %d selects %d columns, expected %d",
					ErrInvalidAST, i, got, want)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: query part is nil", ErrInvalidAST)
	default:
		return fmt.Errorf("%w: unknown query part %T", ErrInvalidAST, part)
	}
}

func validateGroup(g *TableGroup) error {
	if g == nil || g.Primary == nil {
		return fmt.Errorf("%w: table group requires a primary table", ErrInvalidAST)
	}
	if d, ok := g.Primary.(*DerivedTableReference); ok {
		if d.Select == nil {
			return fmt.Errorf("%w: derived table %s has no query", ErrInvalidAST, d.Alias)
		}
		if err := Validate(d.Select); err != nil {
			return err
		}
	}
	for _, j := range g.ReferenceJoins {
		if j.Table == nil {
			return fmt.Errorf("%w: table reference join has no table", ErrInvalidAST)
		}
	}
	for _, j := range g.Joins {
		if err := validateGroup(j.Group); err != nil {
			return err
		}
	}
	return nil
}

func validateExpression(e Expression) error {
	switch n := e.(type) {
	case nil:
		return nil
	case *Comparison:
		if lt, ok := n.Lhs.(*Tuple); ok {
			if rt, ok := n.Rhs.(*Tuple); ok && len(Flatten(lt)) != len(Flatten(rt)) {
				return fmt.Errorf("%w: tuple comparison of %d and %d expressions",
					ErrInvalidAST, len(Flatten(lt)), len(Flatten(rt)))
			}
		}
	case *CaseSearched:
		if len(n.When) == 0 {
			return fmt.Errorf("%w: case expression requires at least one when", ErrInvalidAST)
		}
	case *CaseSimple:
		if len(n.When) == 0 {
			return fmt.Errorf("%w: case expression requires at least one when", ErrInvalidAST)
		}
	case *Junction:
		for _, p := range n.Predicates {
			if err := validateExpression(p); err != nil {
				return err
			}
		}
	case *Negated:
		return validateExpression(n.Predicate)
	case *Subquery:
		return validatePart(n.Query)
	case *InSubquery:
		return validatePart(n.Subquery)
	case *Exists:
		return validatePart(n.Subquery)
	}
	return nil
}
