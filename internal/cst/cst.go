// Package cst defines the concrete syntax tree produced by the parser:
// one node shape per grammar production, preserving every token consumed
// so diagnostics can point at exact source spans.
package cst

import "github.com/aspidlang/aspid/internal/token"

// Node is the common interface satisfied by every CST node.
type Node interface {
	Pos() token.Position
	End() token.Position
	String() string
}

// Expression is a CST node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a CST node that produces no value, executed for effect.
type Statement interface {
	Node
	stmtNode()
}

// ============================================================================
// Expressions
// ============================================================================

// NumberLiteral is an unparsed numeric lexeme (decimal, hex, or float);
// actual value parsing happens in the binder.
type NumberLiteral struct {
	Token token.Token
}

func (e *NumberLiteral) Pos() token.Position { return e.Token.Pos }
func (e *NumberLiteral) End() token.Position { return e.Token.Pos }
func (e *NumberLiteral) String() string      { return e.Token.Literal }
func (e *NumberLiteral) exprNode()           {}

// StringLiteral is a plain (non-interpolated) string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (e *StringLiteral) Pos() token.Position { return e.Token.Pos }
func (e *StringLiteral) End() token.Position { return e.Token.Pos }
func (e *StringLiteral) String() string      { return e.Token.Literal }
func (e *StringLiteral) exprNode()           {}

// BooleanLiteral is the `true` or `false` keyword used as a value.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (e *BooleanLiteral) Pos() token.Position { return e.Token.Pos }
func (e *BooleanLiteral) End() token.Position { return e.Token.Pos }
func (e *BooleanLiteral) String() string      { return e.Token.Literal }
func (e *BooleanLiteral) exprNode()           {}

// Variable is a bare identifier used as a value.
type Variable struct {
	Token token.Token
	Name  string
}

func (e *Variable) Pos() token.Position { return e.Token.Pos }
func (e *Variable) End() token.Position { return e.Token.Pos }
func (e *Variable) String() string      { return e.Name }
func (e *Variable) exprNode()           {}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	LBracket token.Token
	Elements []Expression
	RBracket token.Token
}

func (e *ArrayLiteral) Pos() token.Position { return e.LBracket.Pos }
func (e *ArrayLiteral) End() token.Position { return e.RBracket.Pos }
func (e *ArrayLiteral) String() string      { return "[...]" }
func (e *ArrayLiteral) exprNode()           {}

// ArrayAccess is `target[index]`.
type ArrayAccess struct {
	Target   Expression
	LBracket token.Token
	Index    Expression
	RBracket token.Token
}

func (e *ArrayAccess) Pos() token.Position { return e.Target.Pos() }
func (e *ArrayAccess) End() token.Position { return e.RBracket.Pos }
func (e *ArrayAccess) String() string      { return e.Target.String() + "[...]" }
func (e *ArrayAccess) exprNode()           {}

// PrefixUnary is a prefix unary operator application: `+x`, `-x`, `!x`,
// `++x`, `--x`. The parser requires Operand to be a Variable when
// Operator is `++`/`--`.
type PrefixUnary struct {
	Operator token.Token
	Operand  Expression
}

func (e *PrefixUnary) Pos() token.Position { return e.Operator.Pos }
func (e *PrefixUnary) End() token.Position { return e.Operand.End() }
func (e *PrefixUnary) String() string      { return e.Operator.Literal + e.Operand.String() }
func (e *PrefixUnary) exprNode()           {}

// PostfixUnary is a postfix unary operator application: `x++`, `x--`. The
// parser requires Operand to be a Variable.
type PostfixUnary struct {
	Operand  Expression
	Operator token.Token
}

func (e *PostfixUnary) Pos() token.Position { return e.Operand.Pos() }
func (e *PostfixUnary) End() token.Position { return e.Operator.Pos }
func (e *PostfixUnary) String() string      { return e.Operand.String() + e.Operator.Literal }
func (e *PostfixUnary) exprNode()           {}

// Binary is a binary operator application, laid out by the parser's
// precedence-climbing loop. All binary operators left-associate.
type Binary struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (e *Binary) Pos() token.Position { return e.Left.Pos() }
func (e *Binary) End() token.Position { return e.Right.End() }
func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + e.Operator.Literal + " " + e.Right.String() + ")"
}
func (e *Binary) exprNode() {}

// Call is `callee(arg1, arg2, ...)`. The binder decides whether callee
// names a user function, a built-in, or a primitive type (making the
// call an explicit type conversion).
type Call struct {
	Callee Expression
	LParen token.Token
	Args   []Expression
	RParen token.Token
}

func (e *Call) Pos() token.Position { return e.Callee.Pos() }
func (e *Call) End() token.Position { return e.RParen.Pos }
func (e *Call) String() string      { return e.Callee.String() + "(...)" }
func (e *Call) exprNode()           {}

// Parenthesized is an explicitly parenthesized expression, including the
// synthetic grouping the lexer introduces when desugaring f-strings.
type Parenthesized struct {
	LParen token.Token
	Inner  Expression
	RParen token.Token
}

func (e *Parenthesized) Pos() token.Position { return e.LParen.Pos }
func (e *Parenthesized) End() token.Position { return e.RParen.Pos }
func (e *Parenthesized) String() string      { return "(" + e.Inner.String() + ")" }
func (e *Parenthesized) exprNode()           {}

// ============================================================================
// Statements
// ============================================================================

// ExpressionStatement wraps an expression evaluated for its side effects
// (a call, a standalone increment/decrement).
type ExpressionStatement struct {
	Expr Expression
}

func (s *ExpressionStatement) Pos() token.Position { return s.Expr.Pos() }
func (s *ExpressionStatement) End() token.Position { return s.Expr.End() }
func (s *ExpressionStatement) String() string      { return s.Expr.String() }
func (s *ExpressionStatement) stmtNode()           {}

// Block is a sequence of statements at one indentation level, delimited
// by a matched INDENT/DEDENT pair.
type Block struct {
	Indent     token.Token
	Statements []Statement
	Dedent     token.Token
}

func (s *Block) Pos() token.Position { return s.Indent.Pos }
func (s *Block) End() token.Position { return s.Dedent.Pos }
func (s *Block) String() string      { return "<block>" }
func (s *Block) stmtNode()           {}

// VariableDeclaration is `name ':' typeId ('[' ']')* ('=' expr)?`. TypeText
// is the base type identifier's literal with one "[]" suffix appended per
// bracket pair, left for the binder's type-symbol parser to turn into a
// possibly-nested Array(T) type.
type VariableDeclaration struct {
	Name        token.Token
	Colon       token.Token
	TypeToken   token.Token // the base type identifier token
	TypeText    string      // TypeToken.Literal with "[]" appended per dimension
	Initializer Expression  // nil if omitted
}

func (s *VariableDeclaration) Pos() token.Position { return s.Name.Pos }
func (s *VariableDeclaration) End() token.Position {
	if s.Initializer != nil {
		return s.Initializer.End()
	}
	return s.TypeToken.Pos
}
func (s *VariableDeclaration) String() string { return s.Name.Literal + ": " + s.TypeText }
func (s *VariableDeclaration) stmtNode()      {}

// Assignment is `target = value`, `target += value`, or `target -= value`.
// Target is always a Variable or an ArrayAccess.
type Assignment struct {
	Target   Expression
	Operator token.Token
	Value    Expression
}

func (s *Assignment) Pos() token.Position { return s.Target.Pos() }
func (s *Assignment) End() token.Position { return s.Value.End() }
func (s *Assignment) String() string {
	return s.Target.String() + " " + s.Operator.Literal + " " + s.Value.String()
}
func (s *Assignment) stmtNode() {}

// Parameter is one formal parameter: a name and an optional type
// annotation token (missing annotations default to Any in the binder).
type Parameter struct {
	Name token.Token
	Type *token.Token // nil if unannotated
}

// FunctionDeclaration is `fn name(p1, p2, ...):` followed by an indented
// body. The language has no return-type annotation syntax; the binder
// never checks a declared return type against returned values.
type FunctionDeclaration struct {
	FnToken token.Token
	Name    token.Token
	Params  []Parameter
	Body    *Block
}

func (s *FunctionDeclaration) Pos() token.Position { return s.FnToken.Pos }
func (s *FunctionDeclaration) End() token.Position { return s.Body.End() }
func (s *FunctionDeclaration) String() string      { return "fn " + s.Name.Literal + "(...)" }
func (s *FunctionDeclaration) stmtNode()           {}

// If is `if cond: then [else: else]`. An `else if` is represented as an
// Else block containing exactly one nested If statement.
type If struct {
	IfToken   token.Token
	Condition Expression
	Then      *Block
	Else      *Block // nil when there is no else branch
}

func (s *If) Pos() token.Position { return s.IfToken.Pos }
func (s *If) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Then.End()
}
func (s *If) String() string { return "if ..." }
func (s *If) stmtNode()      {}

// While is `while cond: action`.
type While struct {
	WhileToken token.Token
	Condition  Expression
	Action     *Block
}

func (s *While) Pos() token.Position { return s.WhileToken.Pos }
func (s *While) End() token.Position { return s.Action.End() }
func (s *While) String() string      { return "while ..." }
func (s *While) stmtNode()           {}

// DoWhile is `do: action while cond`.
type DoWhile struct {
	DoToken    token.Token
	Action     *Block
	WhileToken token.Token
	Condition  Expression
}

func (s *DoWhile) Pos() token.Position { return s.DoToken.Pos }
func (s *DoWhile) End() token.Position { return s.Condition.End() }
func (s *DoWhile) String() string      { return "do ... while ..." }
func (s *DoWhile) stmtNode()           {}

// ForIn is `for item in iterable: action`, iterating an array's elements.
type ForIn struct {
	ForToken token.Token
	Var      token.Token
	Iterable Expression
	Action   *Block
}

func (s *ForIn) Pos() token.Position { return s.ForToken.Pos }
func (s *ForIn) End() token.Position { return s.Action.End() }
func (s *ForIn) String() string      { return "for " + s.Var.Literal + " in ..." }
func (s *ForIn) stmtNode()           {}

// Return is `return [expr]`; Value is nil for a bare `return`.
type Return struct {
	ReturnToken token.Token
	Value       Expression // nil if bare
}

func (s *Return) Pos() token.Position { return s.ReturnToken.Pos }
func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.ReturnToken.Pos
}
func (s *Return) String() string { return "return" }
func (s *Return) stmtNode()      {}

// Program is the root node: the top-level sequence of statements in a
// source file or REPL submission.
type Program struct {
	Statements []Statement
}

func (p *Program) String() string { return "<program>" }
