// Package binding resolves a cst.Program into a type-annotated bound
// tree: every expression node carries a fixed symbols.Type, and every
// failure path produces a BoundError node plus a diagnostic rather than
// panicking, so a caller can always walk the tree to completion.
package binding

import (
	"github.com/aspidlang/aspid/internal/operators"
	"github.com/aspidlang/aspid/internal/symbols"
	"github.com/aspidlang/aspid/internal/token"
)

// BoundNode is the common interface for every node in the bound tree.
type BoundNode interface {
	Pos() token.Position
}

// BoundExpression is a bound node that carries a static type.
type BoundExpression interface {
	BoundNode
	Type() symbols.Type
	boundExprNode()
}

// BoundStatement is a bound node executed for effect.
type BoundStatement interface {
	BoundNode
	boundStmtNode()
}

// ============================================================================
// Expressions
// ============================================================================

// BoundError stands in for any expression the binder could not resolve.
// Its Type is always symbols.Error; §8 requires that Error appear in the
// bound tree iff at least one diagnostic was added, so every path that
// constructs a BoundError must also append one.
type BoundError struct {
	position token.Position
	Message  string
}

func NewBoundError(pos token.Position, message string) *BoundError {
	return &BoundError{position: pos, Message: message}
}

func (b *BoundError) Pos() token.Position  { return b.position }
func (b *BoundError) Type() symbols.Type   { return symbols.Error }
func (b *BoundError) boundExprNode()       {}

// BoundNumberLiteral carries the parsed numeric value, already resolved
// to Int or Double per §4.4's hex-int / decimal-int / double ordering.
type BoundNumberLiteral struct {
	position  token.Position
	valueType symbols.Type
	IntValue  int64
	DoubleVal float64
}

func NewBoundIntLiteral(pos token.Position, v int64) *BoundNumberLiteral {
	return &BoundNumberLiteral{position: pos, valueType: symbols.Int, IntValue: v}
}

func NewBoundDoubleLiteral(pos token.Position, v float64) *BoundNumberLiteral {
	return &BoundNumberLiteral{position: pos, valueType: symbols.Double, DoubleVal: v}
}

func (b *BoundNumberLiteral) Pos() token.Position { return b.position }
func (b *BoundNumberLiteral) Type() symbols.Type  { return b.valueType }
func (b *BoundNumberLiteral) boundExprNode()      {}

type BoundStringLiteral struct {
	position token.Position
	Value    string
}

func NewBoundStringLiteral(pos token.Position, value string) *BoundStringLiteral {
	return &BoundStringLiteral{position: pos, Value: value}
}

func (b *BoundStringLiteral) Pos() token.Position { return b.position }
func (b *BoundStringLiteral) Type() symbols.Type  { return symbols.String }
func (b *BoundStringLiteral) boundExprNode()      {}

type BoundBooleanLiteral struct {
	position token.Position
	Value    bool
}

func NewBoundBooleanLiteral(pos token.Position, value bool) *BoundBooleanLiteral {
	return &BoundBooleanLiteral{position: pos, Value: value}
}

func (b *BoundBooleanLiteral) Pos() token.Position { return b.position }
func (b *BoundBooleanLiteral) Type() symbols.Type  { return symbols.Bool }
func (b *BoundBooleanLiteral) boundExprNode()      {}

// BoundVariable is a resolved variable reference; Name is carried so the
// evaluator can look it up again on its own runtime scope stack without
// needing a back-pointer to the binder's scope.
type BoundVariable struct {
	position  token.Position
	Name      string
	valueType symbols.Type
}

func NewBoundVariable(pos token.Position, name string, t symbols.Type) *BoundVariable {
	return &BoundVariable{position: pos, Name: name, valueType: t}
}

func (b *BoundVariable) Pos() token.Position { return b.position }
func (b *BoundVariable) Type() symbols.Type  { return b.valueType }
func (b *BoundVariable) boundExprNode()      {}

// BoundArrayLiteral's ElementType is the common type of its elements, or
// Any when the elements disagree. An empty literal is Any, except as the
// initializer of a declared array variable, where it takes the declared
// element type.
type BoundArrayLiteral struct {
	position    token.Position
	Elements    []BoundExpression
	ElementType symbols.Type
}

func (b *BoundArrayLiteral) Pos() token.Position { return b.position }
func (b *BoundArrayLiteral) Type() symbols.Type  { return symbols.Array(b.ElementType) }
func (b *BoundArrayLiteral) boundExprNode()      {}

// BoundArrayAccess's Type is the array's element type (or Any when the
// array itself is Any).
type BoundArrayAccess struct {
	position  token.Position
	Array     BoundExpression
	Index     BoundExpression
	valueType symbols.Type
}

func (b *BoundArrayAccess) Pos() token.Position { return b.position }
func (b *BoundArrayAccess) Type() symbols.Type  { return b.valueType }
func (b *BoundArrayAccess) boundExprNode()      {}

// BoundUnary is a fixed (operator, operand-type, result-type) record per
// the glossary's "bound operator" — IsPrefix distinguishes `++x` from
// `x++` for the evaluator's pre/post semantics.
type BoundUnary struct {
	position  token.Position
	Operator  token.Kind
	Operand   BoundExpression
	IsPrefix  bool
	valueType symbols.Type
}

func (b *BoundUnary) Pos() token.Position { return b.position }
func (b *BoundUnary) Type() symbols.Type  { return b.valueType }
func (b *BoundUnary) boundExprNode()      {}

// BoundBinary is a fixed (operator, left-type, right-type, result-type)
// bound-operator record, resolved once at bind time via
// internal/operators so the evaluator never re-derives it.
type BoundBinary struct {
	position  token.Position
	Operator  token.Kind
	Left      BoundExpression
	Right     BoundExpression
	valueType symbols.Type
}

func (b *BoundBinary) Pos() token.Position { return b.position }
func (b *BoundBinary) Type() symbols.Type  { return b.valueType }
func (b *BoundBinary) boundExprNode()      {}

// BoundConversion is an explicit or implicit value conversion, per
// §4.3's conversion table (operators.CanConvert decided it was legal).
type BoundConversion struct {
	position token.Position
	Operand  BoundExpression
	Target   symbols.Type
	Kind     operators.ConversionKind
}

func (b *BoundConversion) Pos() token.Position { return b.position }
func (b *BoundConversion) Type() symbols.Type  { return b.Target }
func (b *BoundConversion) boundExprNode()      {}

// BoundCall invokes a resolved function symbol with bound arguments.
type BoundCall struct {
	position token.Position
	Function *symbols.FunctionSymbol
	Args     []BoundExpression
}

func (b *BoundCall) Pos() token.Position { return b.position }
func (b *BoundCall) Type() symbols.Type  { return b.Function.ReturnType }
func (b *BoundCall) boundExprNode()      {}

// ============================================================================
// Statements
// ============================================================================

type BoundExpressionStatement struct {
	Expr BoundExpression
}

func (s *BoundExpressionStatement) Pos() token.Position { return s.Expr.Pos() }
func (s *BoundExpressionStatement) boundStmtNode()       {}

type BoundBlock struct {
	position   token.Position
	Statements []BoundStatement
}

func (s *BoundBlock) Pos() token.Position { return s.position }
func (s *BoundBlock) boundStmtNode()       {}

// BoundVariableDeclaration's Initializer is nil when the source omitted
// one; the evaluator then stores an integer zero per §4.4.
type BoundVariableDeclaration struct {
	position    token.Position
	Name        string
	DeclaredType symbols.Type
	Initializer BoundExpression
}

func (s *BoundVariableDeclaration) Pos() token.Position { return s.position }
func (s *BoundVariableDeclaration) boundStmtNode()       {}

// BoundAssignment's Target is either a BoundVariable or a
// BoundArrayAccess; Value has already been wrapped in a BoundConversion
// when the target type required one.
type BoundAssignment struct {
	position token.Position
	Target   BoundExpression
	Value    BoundExpression
}

func (s *BoundAssignment) Pos() token.Position { return s.position }
func (s *BoundAssignment) boundStmtNode()       {}

type BoundFunctionDeclaration struct {
	position token.Position
	Symbol   *symbols.FunctionSymbol
	Body     *BoundBlock
}

func (s *BoundFunctionDeclaration) Pos() token.Position { return s.position }
func (s *BoundFunctionDeclaration) boundStmtNode()       {}

type BoundIf struct {
	position  token.Position
	Condition BoundExpression
	Then      *BoundBlock
	Else      *BoundBlock
}

func (s *BoundIf) Pos() token.Position { return s.position }
func (s *BoundIf) boundStmtNode()       {}

type BoundWhile struct {
	position  token.Position
	Condition BoundExpression
	Action    *BoundBlock
}

func (s *BoundWhile) Pos() token.Position { return s.position }
func (s *BoundWhile) boundStmtNode()       {}

type BoundDoWhile struct {
	position  token.Position
	Action    *BoundBlock
	Condition BoundExpression
}

func (s *BoundDoWhile) Pos() token.Position { return s.position }
func (s *BoundDoWhile) boundStmtNode()       {}

// BoundForIn's ElementType is the declared type of its loop variable —
// the iterable's element type, or Any when the iterable itself is Any.
type BoundForIn struct {
	position    token.Position
	VarName     string
	ElementType symbols.Type
	Iterable    BoundExpression
	Action      *BoundBlock
}

func (s *BoundForIn) Pos() token.Position { return s.position }
func (s *BoundForIn) boundStmtNode()       {}

type BoundReturn struct {
	position token.Position
	Value    BoundExpression // nil for a bare return
}

func (s *BoundReturn) Pos() token.Position { return s.position }
func (s *BoundReturn) boundStmtNode()       {}

// BoundProgram is the root of the bound tree.
type BoundProgram struct {
	Statements []BoundStatement
}
