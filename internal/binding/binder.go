package binding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aspidlang/aspid/internal/cst"
	"github.com/aspidlang/aspid/internal/diag"
	"github.com/aspidlang/aspid/internal/operators"
	"github.com/aspidlang/aspid/internal/scope"
	"github.com/aspidlang/aspid/internal/symbols"
	"github.com/aspidlang/aspid/internal/token"
)

// typeKeywords mirrors the parser's set; the binder uses it both to parse
// a VariableDeclaration's TypeText and to reject a function or variable
// name that collides with a primitive type name.
var typeKeywords = map[string]symbols.Type{
	"int": symbols.Int, "double": symbols.Double, "bool": symbols.Bool,
	"string": symbols.String, "void": symbols.Void, "any": symbols.Any,
}

// Binder resolves a cst.Program into a BoundProgram. It holds a scope
// pointer (doubled into a parallel variable-type chain and
// function-symbol chain, pushed and popped together) and a diagnostic
// list; binding a well-formed CST never panics.
type Binder struct {
	vars        *scope.Scope[symbols.Type]
	funcs       *scope.Scope[*symbols.FunctionSymbol]
	diagnostics []string
}

// New creates a Binder with an empty global scope.
func New() *Binder {
	return &Binder{
		vars:  scope.New[symbols.Type](nil),
		funcs: scope.New[*symbols.FunctionSymbol](nil),
	}
}

func (b *Binder) Diagnostics() []string { return b.diagnostics }
func (b *Binder) HasErrors() bool       { return len(b.diagnostics) > 0 }

// Err folds every diagnostic accumulated so far into one multierr error,
// for a caller that wants a single err != nil check instead of ranging
// over Diagnostics() itself.
func (b *Binder) Err() error {
	return diag.AggregateStrings(b.diagnostics)
}

func (b *Binder) addDiagnostic(pos token.Position, message string) {
	b.diagnostics = append(b.diagnostics, fmt.Sprintf("%s: %s", pos, message))
}

func (b *Binder) pushScope() {
	b.vars = scope.New(b.vars)
	b.funcs = scope.New(b.funcs)
}

func (b *Binder) popScope() {
	b.vars = b.vars.Parent
	b.funcs = b.funcs.Parent
}

// Bind resolves an entire program.
func (b *Binder) Bind(prog *cst.Program) *BoundProgram {
	bound := &BoundProgram{}
	for _, stmt := range prog.Statements {
		bound.Statements = append(bound.Statements, b.bindStatement(stmt))
	}
	return bound
}

// BindStatement resolves a single top-level statement against the
// Binder's existing global scope, for a REPL-style caller that binds,
// checks Diagnostics, and only then hands the result to the evaluator
// one line (or one indented block) at a time.
func (b *Binder) BindStatement(stmt cst.Statement) BoundStatement {
	return b.bindStatement(stmt)
}

// ============================================================================
// Statements
// ============================================================================

func (b *Binder) bindStatement(stmt cst.Statement) BoundStatement {
	switch s := stmt.(type) {
	case *cst.ExpressionStatement:
		return &BoundExpressionStatement{Expr: b.bindExpression(s.Expr)}
	case *cst.Block:
		return b.bindBlockNewScope(s)
	case *cst.VariableDeclaration:
		return b.bindVariableDeclaration(s)
	case *cst.Assignment:
		return b.bindAssignment(s)
	case *cst.FunctionDeclaration:
		return b.bindFunctionDeclaration(s)
	case *cst.If:
		return b.bindIf(s)
	case *cst.While:
		return b.bindWhile(s)
	case *cst.DoWhile:
		return b.bindDoWhile(s)
	case *cst.ForIn:
		return b.bindForIn(s)
	case *cst.Return:
		return b.bindReturn(s)
	default:
		panic(fmt.Sprintf("binding: unhandled statement kind %T", stmt))
	}
}

func (b *Binder) bindBlockNewScope(block *cst.Block) *BoundBlock {
	b.pushScope()
	defer b.popScope()
	return b.bindBlockStatements(block)
}

func (b *Binder) bindBlockStatements(block *cst.Block) *BoundBlock {
	bound := &BoundBlock{position: block.Pos()}
	for _, stmt := range block.Statements {
		bound.Statements = append(bound.Statements, b.bindStatement(stmt))
	}
	return bound
}

// resolveTypeText parses a VariableDeclaration.TypeText / a Parameter's
// type token into a symbols.Type, applying one Array() wrap per "[]"
// suffix. Returns (Invalid, false) for an unknown base identifier.
func resolveTypeText(text string) (symbols.Type, bool) {
	dims := 0
	base := text
	for strings.HasSuffix(base, "[]") {
		dims++
		base = base[:len(base)-2]
	}
	t, ok := typeKeywords[base]
	if !ok {
		return symbols.Invalid, false
	}
	for i := 0; i < dims; i++ {
		t = symbols.Array(t)
	}
	return t, true
}

func (b *Binder) bindVariableDeclaration(decl *cst.VariableDeclaration) BoundStatement {
	declaredType, ok := resolveTypeText(decl.TypeText)
	if !ok {
		b.addDiagnostic(decl.Pos(), fmt.Sprintf("unknown type %q", decl.TypeText))
		return &BoundVariableDeclaration{position: decl.Pos(), Name: decl.Name.Literal, DeclaredType: symbols.Error}
	}

	if b.vars.DefinedHere(decl.Name.Literal) {
		b.addDiagnostic(decl.Pos(), fmt.Sprintf("%q is already declared in this scope", decl.Name.Literal))
	}

	var init BoundExpression
	if decl.Initializer != nil {
		init = b.bindExpression(decl.Initializer)
		if lit, isLit := init.(*BoundArrayLiteral); isLit && len(lit.Elements) == 0 && declaredType.IsArray() {
			// An empty literal has no elements to infer from; it takes
			// the declared element type.
			lit.ElementType = declaredType.Element()
		}
		if !operators.CanConvert(init.Type(), declaredType, operators.ImplicitConversion) {
			b.addDiagnostic(decl.Pos(), fmt.Sprintf("cannot initialize %s variable %q with a value of type %s",
				declaredType, decl.Name.Literal, init.Type()))
			init = &BoundConversion{position: init.Pos(), Operand: init, Target: declaredType}
		} else if !init.Type().Equal(declaredType) {
			init = &BoundConversion{position: init.Pos(), Operand: init, Target: declaredType}
		}
	}

	b.vars.Define(decl.Name.Literal, declaredType)
	return &BoundVariableDeclaration{position: decl.Pos(), Name: decl.Name.Literal, DeclaredType: declaredType, Initializer: init}
}

func (b *Binder) bindAssignment(assign *cst.Assignment) BoundStatement {
	switch target := assign.Target.(type) {
	case *cst.Variable:
		return b.bindVariableAssignment(assign, target)
	case *cst.ArrayAccess:
		return b.bindArrayAssignment(assign, target)
	default:
		b.addDiagnostic(assign.Pos(), "invalid assignment target")
		return &BoundAssignment{position: assign.Pos(), Target: NewBoundError(assign.Pos(), "invalid target"), Value: b.bindExpression(assign.Value)}
	}
}

func (b *Binder) bindVariableAssignment(assign *cst.Assignment, target *cst.Variable) BoundStatement {
	value := b.bindExpression(assign.Value)

	existing, ok := b.vars.Lookup(target.Name)
	if !ok {
		if _, isCompound := compoundOperator(assign.Operator.Kind); isCompound {
			b.addDiagnostic(assign.Pos(), fmt.Sprintf("cannot use %s on undeclared variable %q", assign.Operator.Literal, target.Name))
		}
		// First sight of this name at an assignment (not a declaration):
		// implicitly declared as Any in the current frame.
		b.vars.Define(target.Name, symbols.Any)
		boundTarget := NewBoundVariable(target.Pos(), target.Name, symbols.Any)
		return &BoundAssignment{position: assign.Pos(), Target: boundTarget, Value: value}
	}

	boundTarget := NewBoundVariable(target.Pos(), target.Name, existing)
	value = b.applyCompoundOperator(assign, boundTarget, value)
	if !existing.IsAny() {
		if !operators.CanConvert(value.Type(), existing, operators.ImplicitConversion) {
			b.addDiagnostic(assign.Pos(), fmt.Sprintf("cannot assign %s to variable %q of type %s", value.Type(), target.Name, existing))
		} else if !value.Type().Equal(existing) {
			value = &BoundConversion{position: value.Pos(), Operand: value, Target: existing}
		}
	}
	return &BoundAssignment{position: assign.Pos(), Target: boundTarget, Value: value}
}

func (b *Binder) bindArrayAssignment(assign *cst.Assignment, target *cst.ArrayAccess) BoundStatement {
	boundTarget := b.bindExpression(target)
	access, ok := boundTarget.(*BoundArrayAccess)
	if !ok {
		return &BoundAssignment{position: assign.Pos(), Target: boundTarget, Value: b.bindExpression(assign.Value)}
	}
	if _, rootIsVariable := target.Target.(*cst.Variable); !rootIsVariable {
		b.addDiagnostic(assign.Pos(), "array-assignment target's root must be a variable")
	}

	value := b.bindExpression(assign.Value)
	value = b.applyCompoundOperator(assign, access, value)

	elemType := access.Type()
	if !elemType.IsAny() {
		if !operators.CanConvert(value.Type(), elemType, operators.ImplicitConversion) {
			b.addDiagnostic(assign.Pos(), fmt.Sprintf("cannot assign %s into an array of %s", value.Type(), elemType))
		} else if !value.Type().Equal(elemType) {
			value = &BoundConversion{position: value.Pos(), Operand: value, Target: elemType}
		}
	}
	return &BoundAssignment{position: assign.Pos(), Target: access, Value: value}
}

// applyCompoundOperator desugars `target += value` into `target = target +
// value` (and `-=` likewise with `-`), per spec.md §8 scenario 4's own
// description of how `+=` is bound. target is the already-bound read
// expression for the assignment's target (a BoundVariable or
// BoundArrayAccess), reused here as the left operand of a BoundBinary so
// the evaluator's ordinary read-then-store assignment path performs the
// read-modify-write without any dedicated opcode, the same way a plain
// `i = i + 1` would.
func (b *Binder) applyCompoundOperator(assign *cst.Assignment, target, value BoundExpression) BoundExpression {
	op, isCompound := compoundOperator(assign.Operator.Kind)
	if !isCompound {
		return value
	}

	resultType, ok := operators.ResolveBinary(op, target.Type(), value.Type())
	if !ok {
		b.addDiagnostic(assign.Pos(), operators.DescribeIllegalBinary(op, target.Type(), value.Type()))
		resultType = symbols.Error
	}
	return &BoundBinary{position: assign.Pos(), Operator: op, Left: target, Right: value, valueType: resultType}
}

// compoundOperator maps a compound-assignment token to the plain binary
// operator it desugars to.
func compoundOperator(k token.Kind) (token.Kind, bool) {
	switch k {
	case token.PLUS_ASSIGN:
		return token.PLUS, true
	case token.MINUS_ASSIGN:
		return token.MINUS, true
	default:
		return token.ILLEGAL, false
	}
}

func (b *Binder) bindFunctionDeclaration(decl *cst.FunctionDeclaration) BoundStatement {
	name := decl.Name.Literal
	if b.funcs.DefinedHere(name) || b.vars.DefinedHere(name) || isReservedName(name) {
		b.addDiagnostic(decl.Pos(), fmt.Sprintf("%q is already declared", name))
	}

	seen := map[string]bool{}
	params := make([]symbols.ParameterSymbol, 0, len(decl.Params))
	for _, p := range decl.Params {
		if seen[p.Name.Literal] {
			b.addDiagnostic(p.Name.Pos, fmt.Sprintf("duplicate parameter name %q", p.Name.Literal))
		}
		seen[p.Name.Literal] = true

		paramType := symbols.Any
		if p.Type != nil {
			if t, ok := resolveTypeText(p.Type.Literal); ok {
				paramType = t
			} else {
				b.addDiagnostic(p.Type.Pos, fmt.Sprintf("unknown type %q", p.Type.Literal))
			}
		}
		params = append(params, symbols.ParameterSymbol{Name: p.Name.Literal, Type: paramType})
	}

	sym := &symbols.FunctionSymbol{Name: name, Parameters: params, ReturnType: symbols.Any}
	b.funcs.Define(name, sym)

	b.pushScope()
	for _, p := range params {
		b.vars.Define(p.Name, p.Type)
	}
	body := b.bindBlockStatements(decl.Body)
	b.popScope()

	return &BoundFunctionDeclaration{position: decl.Pos(), Symbol: sym, Body: body}
}

func isReservedName(name string) bool {
	if _, ok := typeKeywords[name]; ok {
		return true
	}
	_, ok := symbols.LookupBuiltin(name)
	return ok
}

func (b *Binder) bindCondition(expr cst.Expression) BoundExpression {
	cond := b.bindExpression(expr)
	if !cond.Type().Equal(symbols.Bool) {
		b.addDiagnostic(expr.Pos(), fmt.Sprintf("condition must be Bool, got %s", cond.Type()))
	}
	return cond
}

func (b *Binder) bindIf(stmt *cst.If) BoundStatement {
	cond := b.bindCondition(stmt.Condition)
	then := b.bindBlockNewScope(stmt.Then)
	var elseBlock *BoundBlock
	if stmt.Else != nil {
		elseBlock = b.bindBlockNewScope(stmt.Else)
	}
	return &BoundIf{position: stmt.Pos(), Condition: cond, Then: then, Else: elseBlock}
}

func (b *Binder) bindWhile(stmt *cst.While) BoundStatement {
	cond := b.bindCondition(stmt.Condition)
	action := b.bindBlockNewScope(stmt.Action)
	return &BoundWhile{position: stmt.Pos(), Condition: cond, Action: action}
}

func (b *Binder) bindDoWhile(stmt *cst.DoWhile) BoundStatement {
	action := b.bindBlockNewScope(stmt.Action)
	cond := b.bindCondition(stmt.Condition)
	return &BoundDoWhile{position: stmt.Pos(), Action: action, Condition: cond}
}

func (b *Binder) bindForIn(stmt *cst.ForIn) BoundStatement {
	iterable := b.bindExpression(stmt.Iterable)
	elemType := symbols.Any
	if iterable.Type().IsArray() {
		elemType = iterable.Type().Element()
	} else if !iterable.Type().IsAny() {
		b.addDiagnostic(stmt.Pos(), fmt.Sprintf("for-in requires an array or Any, got %s", iterable.Type()))
	}

	b.pushScope()
	b.vars.Define(stmt.Var.Literal, elemType)
	action := b.bindBlockStatements(stmt.Action)
	b.popScope()

	return &BoundForIn{position: stmt.Pos(), VarName: stmt.Var.Literal, ElementType: elemType, Iterable: iterable, Action: action}
}

func (b *Binder) bindReturn(stmt *cst.Return) BoundStatement {
	var value BoundExpression
	if stmt.Value != nil {
		value = b.bindExpression(stmt.Value)
	}
	return &BoundReturn{position: stmt.Pos(), Value: value}
}

// ============================================================================
// Expressions
// ============================================================================

func (b *Binder) bindExpression(expr cst.Expression) BoundExpression {
	switch e := expr.(type) {
	case *cst.NumberLiteral:
		return b.bindNumberLiteral(e)
	case *cst.StringLiteral:
		return NewBoundStringLiteral(e.Pos(), e.Value)
	case *cst.BooleanLiteral:
		return NewBoundBooleanLiteral(e.Pos(), e.Value)
	case *cst.Variable:
		return b.bindVariable(e)
	case *cst.ArrayLiteral:
		return b.bindArrayLiteral(e)
	case *cst.ArrayAccess:
		return b.bindArrayAccess(e)
	case *cst.PrefixUnary:
		return b.bindPrefixUnary(e)
	case *cst.PostfixUnary:
		return b.bindPostfixUnary(e)
	case *cst.Binary:
		return b.bindBinary(e)
	case *cst.Call:
		return b.bindCall(e)
	case *cst.Parenthesized:
		return b.bindExpression(e.Inner)
	default:
		panic(fmt.Sprintf("binding: unhandled expression kind %T", expr))
	}
}

func (b *Binder) bindNumberLiteral(lit *cst.NumberLiteral) BoundExpression {
	text := lit.Token.Literal
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			b.addDiagnostic(lit.Pos(), fmt.Sprintf("invalid hex literal %q", text))
			return NewBoundError(lit.Pos(), "invalid hex literal")
		}
		return NewBoundIntLiteral(lit.Pos(), v)
	}
	if strings.Contains(text, ".") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			b.addDiagnostic(lit.Pos(), fmt.Sprintf("invalid number literal %q", text))
			return NewBoundError(lit.Pos(), "invalid number literal")
		}
		return NewBoundDoubleLiteral(lit.Pos(), v)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.addDiagnostic(lit.Pos(), fmt.Sprintf("invalid number literal %q", text))
		return NewBoundError(lit.Pos(), "invalid number literal")
	}
	return NewBoundIntLiteral(lit.Pos(), v)
}

func (b *Binder) bindVariable(v *cst.Variable) BoundExpression {
	t, ok := b.vars.Lookup(v.Name)
	if !ok {
		hint := suggestionSuffix(v.Name, b.vars.VisibleNames())
		b.addDiagnostic(v.Pos(), fmt.Sprintf("undefined variable %q%s", v.Name, hint))
		return NewBoundError(v.Pos(), "undefined variable")
	}
	return NewBoundVariable(v.Pos(), v.Name, t)
}

func (b *Binder) bindArrayLiteral(lit *cst.ArrayLiteral) BoundExpression {
	bound := &BoundArrayLiteral{position: lit.Pos()}
	var common symbols.Type
	first := true
	for _, el := range lit.Elements {
		be := b.bindExpression(el)
		bound.Elements = append(bound.Elements, be)
		if first {
			common = be.Type()
			first = false
		} else if !common.Equal(be.Type()) {
			common = symbols.Any
		}
	}
	if first {
		common = symbols.Any
	}
	bound.ElementType = common
	return bound
}

func (b *Binder) bindArrayAccess(access *cst.ArrayAccess) BoundExpression {
	target := b.bindExpression(access.Target)
	index := b.bindExpression(access.Index)

	if !index.Type().Equal(symbols.Int) && !index.Type().IsAny() {
		b.addDiagnostic(access.Pos(), fmt.Sprintf("array index must be Int, got %s", index.Type()))
	}

	var elemType symbols.Type
	switch {
	case target.Type().IsArray():
		elemType = target.Type().Element()
	case target.Type().IsAny():
		elemType = symbols.Any
	default:
		b.addDiagnostic(access.Pos(), fmt.Sprintf("cannot index into %s", target.Type()))
		elemType = symbols.Error
	}
	return &BoundArrayAccess{position: access.Pos(), Array: target, Index: index, valueType: elemType}
}

func (b *Binder) bindPrefixUnary(u *cst.PrefixUnary) BoundExpression {
	operand := b.bindExpression(u.Operand)
	resultType, ok := operators.ResolveUnary(u.Operator.Kind, operand.Type())
	if !ok {
		b.addDiagnostic(u.Pos(), fmt.Sprintf("operator %q is not defined for %s", u.Operator.Literal, operand.Type()))
		resultType = symbols.Error
	}
	return &BoundUnary{position: u.Pos(), Operator: u.Operator.Kind, Operand: operand, IsPrefix: true, valueType: resultType}
}

func (b *Binder) bindPostfixUnary(u *cst.PostfixUnary) BoundExpression {
	operand := b.bindExpression(u.Operand)
	resultType, ok := operators.ResolveUnary(u.Operator.Kind, operand.Type())
	if !ok {
		b.addDiagnostic(u.Pos(), fmt.Sprintf("operator %q is not defined for %s", u.Operator.Literal, operand.Type()))
		resultType = symbols.Error
	}
	return &BoundUnary{position: u.Pos(), Operator: u.Operator.Kind, Operand: operand, IsPrefix: false, valueType: resultType}
}

func (b *Binder) bindBinary(bin *cst.Binary) BoundExpression {
	left := b.bindExpression(bin.Left)
	right := b.bindExpression(bin.Right)
	resultType, ok := operators.ResolveBinary(bin.Operator.Kind, left.Type(), right.Type())
	if !ok {
		b.addDiagnostic(bin.Pos(), operators.DescribeIllegalBinary(bin.Operator.Kind, left.Type(), right.Type()))
		resultType = symbols.Error
	}
	return &BoundBinary{position: bin.Pos(), Operator: bin.Operator.Kind, Left: left, Right: right, valueType: resultType}
}

func (b *Binder) bindCall(call *cst.Call) BoundExpression {
	name, isIdent := calleeName(call.Callee)
	if !isIdent {
		b.addDiagnostic(call.Pos(), "call target must be a name")
		return NewBoundError(call.Pos(), "invalid call target")
	}

	if targetType, isConversion := typeKeywords[name]; isConversion {
		return b.bindConversionCall(call, targetType)
	}

	sym, ok := b.funcs.Lookup(name)
	if !ok {
		sym, ok = symbols.LookupBuiltin(name)
	}
	if !ok {
		candidates := b.funcs.VisibleNames()
		for builtin := range symbols.BuiltinTable {
			candidates = append(candidates, builtin)
		}
		hint := suggestionSuffix(name, candidates)
		b.addDiagnostic(call.Pos(), fmt.Sprintf("undefined function %q%s", name, hint))
		return NewBoundError(call.Pos(), "undefined function")
	}

	args := make([]BoundExpression, 0, len(call.Args))
	for _, a := range call.Args {
		args = append(args, b.bindExpression(a))
	}

	if len(args) != sym.Arity() {
		b.addDiagnostic(call.Pos(), fmt.Sprintf("%s expects %d argument(s), got %d", name, sym.Arity(), len(args)))
	} else {
		for i, arg := range args {
			paramType := sym.Parameters[i].Type
			if !operators.CanConvert(arg.Type(), paramType, operators.ImplicitConversion) {
				b.addDiagnostic(arg.Pos(), fmt.Sprintf("argument %d to %s: cannot convert %s to %s", i+1, name, arg.Type(), paramType))
			} else if !arg.Type().Equal(paramType) {
				args[i] = &BoundConversion{position: arg.Pos(), Operand: arg, Target: paramType}
			}
		}
	}

	return &BoundCall{position: call.Pos(), Function: sym, Args: args}
}

func (b *Binder) bindConversionCall(call *cst.Call, target symbols.Type) BoundExpression {
	if len(call.Args) != 1 {
		b.addDiagnostic(call.Pos(), fmt.Sprintf("type conversion %s(...) takes exactly one argument", target))
		return NewBoundError(call.Pos(), "invalid conversion arity")
	}
	operand := b.bindExpression(call.Args[0])
	if !operators.CanConvert(operand.Type(), target, operators.ExplicitConversion) {
		b.addDiagnostic(call.Pos(), fmt.Sprintf("cannot convert %s to %s", operand.Type(), target))
		return NewBoundError(call.Pos(), "invalid conversion")
	}
	return &BoundConversion{position: call.Pos(), Operand: operand, Target: target, Kind: operators.ExplicitConversion}
}

func calleeName(expr cst.Expression) (string, bool) {
	v, ok := expr.(*cst.Variable)
	if !ok {
		return "", false
	}
	return v.Name, true
}
