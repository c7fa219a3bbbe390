// Package parser builds a concrete syntax tree from a token stream via
// recursive descent with precedence climbing for expressions.
package parser

import (
	"fmt"

	"github.com/aspidlang/aspid/internal/cst"
	"github.com/aspidlang/aspid/internal/lexer"
	"github.com/aspidlang/aspid/internal/token"
)

// Parser consumes a flat token slice (already produced by the lexer,
// INDENT/DEDENT/NEWLINE included) and builds a cst.Program.
type Parser struct {
	tokens    []token.Token
	current   int
	errors    []Error
	filename  string
	panicMode bool
	exprDepth int
}

const maxExprDepth = 200
const maxParseErrors = 50

// Error is a single syntax error.
type Error struct {
	Pos     token.Position
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// New lexes source and returns a Parser ready to Parse it. Lexer errors
// are folded into the parser's error list so callers only need to check
// one place.
func New(source, filename string) *Parser {
	l := lexer.New(source, filename)
	tokens := l.ScanTokens()

	p := &Parser{tokens: tokens, filename: filename}
	for _, e := range l.Errors() {
		p.errors = append(p.errors, Error{Pos: e.Pos, Message: e.Message})
	}
	return p
}

// Parse builds the top-level program: repeatedly skip stray NEWLINEs,
// then parse one statement, until EOF. Any non-EOF residue left after the
// loop is reported as a hard parse error.
func (p *Parser) Parse() *cst.Program {
	prog := &cst.Program{}

	for {
		p.skipNewlines()
		if p.isAtEnd() {
			break
		}
		p.panicMode = false
		stmt := p.parseStatement()
		if p.panicMode {
			p.synchronize()
			continue
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}

	return prog
}

func (p *Parser) Errors() []Error { return p.errors }
func (p *Parser) HasErrors() bool { return len(p.errors) > 0 }

// ============================================================================
// Token helpers
// ============================================================================

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(k token.Kind) bool {
	return !p.isAtEnd() && p.peek().Kind == k
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(k token.Kind, message string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.error(message)
	p.panicMode = true
	return token.Token{}
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) error(message string) {
	if p.panicMode {
		return
	}
	pos := p.peek().Pos
	if len(p.errors) > 0 {
		last := p.errors[len(p.errors)-1]
		if last.Pos.Line == pos.Line && last.Pos.Column == pos.Column {
			return
		}
	}
	if len(p.errors) >= maxParseErrors {
		p.errors = append(p.errors, Error{Pos: pos, Message: "too many errors, aborting"})
		p.panicMode = true
		return
	}
	p.errors = append(p.errors, Error{Pos: pos, Message: message})
}

// synchronize discards tokens up to the next NEWLINE, DEDENT, or
// statement-starting keyword, so one bad statement does not cascade.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		switch p.previous().Kind {
		case token.NEWLINE, token.DEDENT:
			return
		}
		switch p.peek().Kind {
		case token.IF, token.WHILE, token.DO, token.FOR, token.FN, token.RETURN:
			return
		}
		p.advance()
	}
}

// ============================================================================
// Statements
// ============================================================================

// typeKeywords names the primitive type identifiers a variable
// declaration's type position accepts. They are ordinary identifiers
// lexically, not reserved words.
var typeKeywords = map[string]bool{
	"int": true, "double": true, "bool": true, "string": true, "void": true, "any": true,
}

func (p *Parser) parseStatement() cst.Statement {
	switch p.peek().Kind {
	case token.INDENT:
		return p.parseBlock()
	case token.FN:
		return p.parseFunctionDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseForIn()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		switch p.peekAt(1).Kind {
		case token.COLON:
			return p.parseVariableDeclaration()
		case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.LBRACKET:
			return p.parseAssignmentOrExpressionStatement()
		}
	}
	return p.parseExpressionStatement()
}

// parseBlock consumes an INDENT, a sequence of statements, and the
// matching DEDENT, tolerating blank NEWLINEs between statements.
func (p *Parser) parseBlock() *cst.Block {
	indent := p.consume(token.INDENT, "expected an indented block")
	block := &cst.Block{Indent: indent}

	for {
		p.skipNewlines()
		if p.check(token.DEDENT) || p.isAtEnd() {
			break
		}
		p.panicMode = false
		stmt := p.parseStatement()
		if p.panicMode {
			p.synchronize()
			continue
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	block.Dedent = p.consume(token.DEDENT, "expected dedent to close block")
	return block
}

// parseColonBlock consumes the ':' that introduces a body, an optional
// NEWLINE, then the indented block itself.
func (p *Parser) parseColonBlock(context string) *cst.Block {
	p.consume(token.COLON, "expected ':' "+context)
	p.skipNewlines()
	return p.parseBlock()
}

func (p *Parser) parseVariableDeclaration() cst.Statement {
	name := p.advance()
	colon := p.advance() // ':'
	typeTok := p.consume(token.IDENT, "expected a type identifier")
	typeText := typeTok.Literal
	if !typeKeywords[typeText] {
		p.error(fmt.Sprintf("unknown type %q", typeText))
	}
	for p.check(token.LBRACKET) {
		p.advance()
		p.consume(token.RBRACKET, "expected ']' after '[' in array type")
		typeText += "[]"
	}

	decl := &cst.VariableDeclaration{Name: name, Colon: colon, TypeToken: typeTok, TypeText: typeText}
	if p.match(token.ASSIGN) {
		decl.Initializer = p.parseExpression()
	}
	return decl
}

// parseAssignmentOrExpressionStatement speculatively parses the left
// expression (a postfix chain starting from the identifier), then checks
// whether an assignment operator follows. If the left expression is
// neither a Variable nor an ArrayAccess, an assignment operator here is
// an error.
func (p *Parser) parseAssignmentOrExpressionStatement() cst.Statement {
	left := p.parsePrecedence(precPostfixOnly)
	if left == nil {
		return nil
	}

	switch p.peek().Kind {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN:
		if !isValidAssignTarget(left) {
			p.error("invalid assignment target")
		}
		op := p.advance()
		value := p.parseExpression()
		return &cst.Assignment{Target: left, Operator: op, Value: value}
	default:
		// Not actually an assignment (e.g. `x[0]` alone, or the lookahead
		// mispredicted): continue parsing as a general expression from
		// where we left off.
		expr := p.continueExpression(left, precLogical)
		return &cst.ExpressionStatement{Expr: expr}
	}
}

func isValidAssignTarget(expr cst.Expression) bool {
	switch expr.(type) {
	case *cst.Variable, *cst.ArrayAccess:
		return true
	default:
		return false
	}
}

func (p *Parser) parseFunctionDecl() cst.Statement {
	fnTok := p.advance()
	name := p.consume(token.IDENT, "expected function name")
	p.consume(token.LPAREN, "expected '(' after function name")

	var params []cst.Parameter
	if !p.check(token.RPAREN) {
		params = append(params, p.parseParameter())
		for p.match(token.COMMA) {
			params = append(params, p.parseParameter())
		}
	}
	p.consume(token.RPAREN, "expected ')' after parameters")

	body := p.parseColonBlock("before function body")
	return &cst.FunctionDeclaration{FnToken: fnTok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseParameter() cst.Parameter {
	name := p.consume(token.IDENT, "expected parameter name")
	param := cst.Parameter{Name: name}
	if p.match(token.COLON) {
		typeTok := p.consume(token.IDENT, "expected a type identifier")
		param.Type = &typeTok
	}
	return param
}

func (p *Parser) parseIf() cst.Statement {
	ifTok := p.advance()
	cond := p.parseExpression()
	then := p.parseColonBlock("after if condition")

	stmt := &cst.If{IfToken: ifTok, Condition: cond, Then: then}

	save := p.current
	p.skipNewlines()
	if p.check(token.ELSE) {
		p.advance()
		if p.check(token.IF) {
			nested := p.parseIf()
			stmt.Else = &cst.Block{Statements: []cst.Statement{nested}}
		} else {
			stmt.Else = p.parseColonBlock("after else")
		}
	} else {
		p.current = save
	}

	return stmt
}

func (p *Parser) parseWhile() cst.Statement {
	kw := p.advance()
	cond := p.parseExpression()
	action := p.parseColonBlock("after while condition")
	return &cst.While{WhileToken: kw, Condition: cond, Action: action}
}

func (p *Parser) parseDoWhile() cst.Statement {
	doTok := p.advance()
	action := p.parseColonBlock("after do")
	p.skipNewlines()
	whileTok := p.consume(token.WHILE, "expected 'while' to close do block")
	cond := p.parseExpression()
	return &cst.DoWhile{DoToken: doTok, Action: action, WhileToken: whileTok, Condition: cond}
}

func (p *Parser) parseForIn() cst.Statement {
	forTok := p.advance()
	varTok := p.consume(token.IDENT, "expected loop variable name")
	p.consume(token.IN, "expected 'in' after loop variable")
	iterable := p.parseExpression()
	action := p.parseColonBlock("after for-in iterable")
	return &cst.ForIn{ForToken: forTok, Var: varTok, Iterable: iterable, Action: action}
}

func (p *Parser) parseReturn() cst.Statement {
	returnTok := p.advance()
	var value cst.Expression
	if !p.check(token.NEWLINE) && !p.check(token.DEDENT) && !p.isAtEnd() {
		value = p.parseExpression()
	}
	return &cst.Return{ReturnToken: returnTok, Value: value}
}

func (p *Parser) parseExpressionStatement() cst.Statement {
	expr := p.parseExpression()
	if expr == nil {
		p.advance()
		return nil
	}
	return &cst.ExpressionStatement{Expr: expr}
}

// ============================================================================
// Expressions: precedence climbing
//
// Precedence table, low to high: level 1 `&&` `||`; level 2 `==` `!=` `<`
// `<=` `>` `>=`; level 3 `+` `-`; level 4 `*` `/`; then prefix unary, then
// postfix (call, index, ++, --). All binary operators left-associate.
// ============================================================================

const (
	precNone = iota
	precLogical     // && ||
	precRelational  // == != < <= > >=
	precTerm        // + -
	precFactor      // * /
	precUnary       // prefix +, -, !, ++, --
	precPostfixOnly // call, index, postfix ++/--
)

func (p *Parser) getPrecedence(k token.Kind) int {
	switch k {
	case token.AND, token.OR:
		return precLogical
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return precRelational
	case token.PLUS, token.MINUS:
		return precTerm
	case token.STAR, token.SLASH:
		return precFactor
	case token.LBRACKET, token.LPAREN, token.INCREMENT, token.DECREMENT:
		return precPostfixOnly
	default:
		return precNone
	}
}

func (p *Parser) parseExpression() cst.Expression {
	return p.parsePrecedence(precLogical)
}

// continueExpression resumes precedence climbing with left already
// parsed as the leftmost operand, used after the assignment speculation
// in parseAssignmentOrExpressionStatement decides it wasn't an assignment.
func (p *Parser) continueExpression(left cst.Expression, minPrec int) cst.Expression {
	for minPrec <= p.getPrecedence(p.peek().Kind) && !p.panicMode {
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrecedence(precedence int) cst.Expression {
	p.exprDepth++
	if p.exprDepth > maxExprDepth {
		p.error("expression too deeply nested")
		p.panicMode = true
		p.exprDepth--
		return nil
	}
	defer func() { p.exprDepth-- }()

	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for precedence <= p.getPrecedence(p.peek().Kind) && !p.panicMode {
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parsePrefix() cst.Expression {
	switch p.peek().Kind {
	case token.NUMBER:
		tok := p.advance()
		return &cst.NumberLiteral{Token: tok}
	case token.STRING:
		tok := p.advance()
		value, _ := tok.Value.(string)
		return &cst.StringLiteral{Token: tok, Value: value}
	case token.TRUE:
		tok := p.advance()
		return &cst.BooleanLiteral{Token: tok, Value: true}
	case token.FALSE:
		tok := p.advance()
		return &cst.BooleanLiteral{Token: tok, Value: false}
	case token.IDENT:
		tok := p.advance()
		return &cst.Variable{Token: tok, Name: tok.Literal}
	case token.LPAREN:
		return p.parseParenthesized()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.PLUS, token.MINUS, token.BANG:
		return p.parsePrefixUnary()
	case token.INCREMENT, token.DECREMENT:
		return p.parsePrefixIncDec()
	default:
		p.error(fmt.Sprintf("unexpected token %s", p.peek().Kind))
		p.advance()
		return nil
	}
}

func (p *Parser) parseParenthesized() cst.Expression {
	lparen := p.advance()
	inner := p.parseExpression()
	rparen := p.consume(token.RPAREN, "expected ')'")
	return &cst.Parenthesized{LParen: lparen, Inner: inner, RParen: rparen}
}

func (p *Parser) parseArrayLiteral() cst.Expression {
	lbracket := p.advance()
	lit := &cst.ArrayLiteral{LBracket: lbracket}
	if !p.check(token.RBRACKET) {
		lit.Elements = append(lit.Elements, p.parseExpression())
		for p.match(token.COMMA) {
			lit.Elements = append(lit.Elements, p.parseExpression())
		}
	}
	lit.RBracket = p.consume(token.RBRACKET, "expected ']'")
	return lit
}

func (p *Parser) parsePrefixUnary() cst.Expression {
	op := p.advance()
	operand := p.parsePrecedence(precUnary)
	return &cst.PrefixUnary{Operator: op, Operand: operand}
}

// parsePrefixIncDec parses `++x`/`--x`, requiring the operand to be a
// bare variable (a syntactic check, not a binder check).
func (p *Parser) parsePrefixIncDec() cst.Expression {
	op := p.advance()
	operand := p.parsePrecedence(precUnary)
	if _, ok := operand.(*cst.Variable); !ok && operand != nil {
		p.error("'++'/'--' requires a variable operand")
	}
	return &cst.PrefixUnary{Operator: op, Operand: operand}
}

func (p *Parser) parseInfix(left cst.Expression) cst.Expression {
	switch p.peek().Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR:
		return p.parseBinary(left)
	case token.LBRACKET:
		return p.parseArrayAccess(left)
	case token.LPAREN:
		return p.parseCall(left)
	case token.INCREMENT, token.DECREMENT:
		return p.parsePostfixIncDec(left)
	default:
		return left
	}
}

func (p *Parser) parseBinary(left cst.Expression) cst.Expression {
	op := p.advance()
	prec := p.getPrecedence(op.Kind)
	right := p.parsePrecedence(prec + 1)
	return &cst.Binary{Left: left, Operator: op, Right: right}
}

func (p *Parser) parseArrayAccess(left cst.Expression) cst.Expression {
	lbracket := p.advance()
	index := p.parseExpression()
	rbracket := p.consume(token.RBRACKET, "expected ']'")
	return &cst.ArrayAccess{Target: left, LBracket: lbracket, Index: index, RBracket: rbracket}
}

func (p *Parser) parseCall(left cst.Expression) cst.Expression {
	lparen := p.advance()
	call := &cst.Call{Callee: left, LParen: lparen}
	if !p.check(token.RPAREN) {
		call.Args = append(call.Args, p.parseExpression())
		for p.match(token.COMMA) {
			call.Args = append(call.Args, p.parseExpression())
		}
	}
	call.RParen = p.consume(token.RPAREN, "expected ')'")
	return call
}

// parsePostfixIncDec parses `x++`/`x--`, requiring the operand to be a
// bare variable.
func (p *Parser) parsePostfixIncDec(left cst.Expression) cst.Expression {
	op := p.advance()
	if _, ok := left.(*cst.Variable); !ok {
		p.error("'++'/'--' requires a variable operand")
	}
	return &cst.PostfixUnary{Operand: left, Operator: op}
}
