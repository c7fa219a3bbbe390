package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aspidlang/aspid/internal/binding"
	"github.com/aspidlang/aspid/internal/scope"
	"github.com/aspidlang/aspid/internal/symbols"
	"github.com/aspidlang/aspid/internal/token"
)

// Callable is a host-visible function: a built-in or a registered user
// function, invoked with its already-evaluated, already-converted
// argument vector.
type Callable func(args []Value) (Value, error)

// Evaluator holds the single runtime scope stack (§4.5: "a runtime
// scope stack with a single global frame") and the function dispatch
// table shared by built-ins and user-defined functions. It is not
// reentrant across goroutines — §5 specifies a single-threaded,
// synchronous execution model.
type Evaluator struct {
	global    *scope.Scope[Value]
	frames    *scope.Scope[Value]
	functions map[*symbols.FunctionSymbol]Callable
}

// New creates an Evaluator with an empty global frame and no built-ins
// registered. Host-provided effects (print/input/random) are wired in
// separately via DefineFunction — see internal/builtins.Register — so
// there is exactly one seam for host I/O, not a second one here.
func New() *Evaluator {
	g := scope.New[Value](nil)
	return &Evaluator{
		global:    g,
		frames:    g,
		functions: make(map[*symbols.FunctionSymbol]Callable),
	}
}

// DefineFunction registers sym's callable. Built-ins call this during
// setup (internal/builtins); BoundFunctionDeclaration evaluation calls
// it for every user declaration encountered.
func (e *Evaluator) DefineFunction(sym *symbols.FunctionSymbol, fn Callable) {
	e.functions[sym] = fn
}

func (e *Evaluator) pushFrame() { e.frames = scope.New(e.frames) }
func (e *Evaluator) popFrame()  { e.frames = e.frames.Parent }

// Run executes every top-level statement in order, stopping at the
// first runtime error (callers that want "one bad statement doesn't
// kill the rest" should call Exec per-statement themselves, the way the
// REPL does).
func (e *Evaluator) Run(prog *binding.BoundProgram) error {
	for _, stmt := range prog.Statements {
		if err := e.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs a single top-level (or nested) bound statement. A
// returnSignal that escapes all the way here (return outside any
// function) is reported as the runtime error §7 names explicitly.
func (e *Evaluator) Exec(stmt binding.BoundStatement) error {
	err := e.execStatement(stmt)
	if _, isReturn := asReturn(err); isReturn {
		return fmt.Errorf("runtime error: return outside function")
	}
	return err
}

// ExecTopLevel is Exec plus the expression value the REPL echoes for a
// successful non-void result: a bare expression statement is evaluated
// (not executed for effect twice), everything else runs through Exec
// with no result to echo.
func (e *Evaluator) ExecTopLevel(stmt binding.BoundStatement) (result Value, hasResult bool, err error) {
	exprStmt, ok := stmt.(*binding.BoundExpressionStatement)
	if !ok {
		return Value{}, false, e.Exec(stmt)
	}

	v, err := e.evalExpression(exprStmt.Expr)
	if err != nil {
		if _, isReturn := asReturn(err); isReturn {
			return Value{}, false, fmt.Errorf("runtime error: return outside function")
		}
		return Value{}, false, err
	}
	if v.Kind == KindVoid {
		return Value{}, false, nil
	}
	return v, true, nil
}

// ============================================================================
// Statements
// ============================================================================

func (e *Evaluator) execStatement(stmt binding.BoundStatement) error {
	switch s := stmt.(type) {
	case *binding.BoundExpressionStatement:
		_, err := e.evalExpression(s.Expr)
		return err
	case *binding.BoundBlock:
		return e.execBlockNewFrame(s)
	case *binding.BoundVariableDeclaration:
		return e.execVariableDeclaration(s)
	case *binding.BoundAssignment:
		return e.execAssignment(s)
	case *binding.BoundFunctionDeclaration:
		return e.execFunctionDeclaration(s)
	case *binding.BoundIf:
		return e.execIf(s)
	case *binding.BoundWhile:
		return e.execWhile(s)
	case *binding.BoundDoWhile:
		return e.execDoWhile(s)
	case *binding.BoundForIn:
		return e.execForIn(s)
	case *binding.BoundReturn:
		return e.execReturn(s)
	default:
		return fmt.Errorf("runtime error: unhandled bound statement kind %T", stmt)
	}
}

func (e *Evaluator) execBlockStatements(stmts []binding.BoundStatement) error {
	for _, s := range stmts {
		if err := e.execStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execBlockNewFrame(block *binding.BoundBlock) error {
	e.pushFrame()
	defer e.popFrame()
	return e.execBlockStatements(block.Statements)
}

func (e *Evaluator) execVariableDeclaration(decl *binding.BoundVariableDeclaration) error {
	if decl.Initializer == nil {
		e.frames.Define(decl.Name, Int(0))
		return nil
	}
	v, err := e.evalExpression(decl.Initializer)
	if err != nil {
		return err
	}
	e.frames.Define(decl.Name, v)
	return nil
}

func (e *Evaluator) execAssignment(assign *binding.BoundAssignment) error {
	value, err := e.evalExpression(assign.Value)
	if err != nil {
		return err
	}

	switch target := assign.Target.(type) {
	case *binding.BoundVariable:
		if !e.frames.Assign(target.Name, value) {
			e.frames.Define(target.Name, value)
		}
		return nil
	case *binding.BoundArrayAccess:
		return e.execArrayAssignment(target, value)
	default:
		return fmt.Errorf("runtime error: invalid assignment target %T", target)
	}
}

func (e *Evaluator) execArrayAssignment(access *binding.BoundArrayAccess, value Value) error {
	arr, idx, err := e.evalArrayAndIndex(access)
	if err != nil {
		return err
	}
	arr.Array[idx] = value
	return nil
}

func (e *Evaluator) execFunctionDeclaration(decl *binding.BoundFunctionDeclaration) error {
	definingScope := e.frames
	sym := decl.Symbol
	body := decl.Body

	e.DefineFunction(sym, func(args []Value) (Value, error) {
		saved := e.frames
		e.frames = scope.New(definingScope)
		defer func() { e.frames = saved }()

		for i, param := range sym.Parameters {
			e.frames.Define(param.Name, args[i])
		}

		err := e.execBlockStatements(body.Statements)
		if v, isReturn := asReturn(err); isReturn {
			return v, nil
		}
		if err != nil {
			return Value{}, err
		}
		return Void(), nil
	})
	return nil
}

func (e *Evaluator) execIf(stmt *binding.BoundIf) error {
	cond, err := e.evalExpression(stmt.Condition)
	if err != nil {
		return err
	}
	if Truthy(cond) {
		return e.execBlockNewFrame(stmt.Then)
	}
	if stmt.Else != nil {
		return e.execBlockNewFrame(stmt.Else)
	}
	return nil
}

func (e *Evaluator) execWhile(stmt *binding.BoundWhile) error {
	for {
		cond, err := e.evalExpression(stmt.Condition)
		if err != nil {
			return err
		}
		if !Truthy(cond) {
			return nil
		}
		if err := e.execBlockNewFrame(stmt.Action); err != nil {
			return err
		}
	}
}

func (e *Evaluator) execDoWhile(stmt *binding.BoundDoWhile) error {
	for {
		if err := e.execBlockNewFrame(stmt.Action); err != nil {
			return err
		}
		cond, err := e.evalExpression(stmt.Condition)
		if err != nil {
			return err
		}
		if !Truthy(cond) {
			return nil
		}
	}
}

func (e *Evaluator) execForIn(stmt *binding.BoundForIn) error {
	iterable, err := e.evalExpression(stmt.Iterable)
	if err != nil {
		return err
	}
	if iterable.Kind != KindArray {
		return fmt.Errorf("runtime error: for-in requires an array, got %s", iterable.Kind)
	}

	e.pushFrame()
	defer e.popFrame()
	e.frames.Define(stmt.VarName, Int(0))

	for _, el := range iterable.Array {
		if !e.frames.Assign(stmt.VarName, el) {
			e.frames.Define(stmt.VarName, el)
		}
		if err := e.execBlockStatements(stmt.Action.Statements); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execReturn(stmt *binding.BoundReturn) error {
	if stmt.Value == nil {
		return returnSignal{value: Void()}
	}
	v, err := e.evalExpression(stmt.Value)
	if err != nil {
		return err
	}
	return returnSignal{value: v}
}

// ============================================================================
// Expressions
// ============================================================================

func (e *Evaluator) evalExpression(expr binding.BoundExpression) (Value, error) {
	switch ex := expr.(type) {
	case *binding.BoundError:
		return Value{}, fmt.Errorf("runtime error: %s", ex.Message)
	case *binding.BoundNumberLiteral:
		if ex.Type().Equal(symbols.Double) {
			return Double(ex.DoubleVal), nil
		}
		return Int(ex.IntValue), nil
	case *binding.BoundStringLiteral:
		return String(ex.Value), nil
	case *binding.BoundBooleanLiteral:
		return Bool(ex.Value), nil
	case *binding.BoundVariable:
		return e.evalVariable(ex)
	case *binding.BoundArrayLiteral:
		return e.evalArrayLiteral(ex)
	case *binding.BoundArrayAccess:
		return e.evalArrayAccess(ex)
	case *binding.BoundUnary:
		return e.evalUnary(ex)
	case *binding.BoundBinary:
		return e.evalBinary(ex)
	case *binding.BoundConversion:
		return e.evalConversion(ex)
	case *binding.BoundCall:
		return e.evalCall(ex)
	default:
		return Value{}, fmt.Errorf("runtime error: unhandled bound expression kind %T", expr)
	}
}

func (e *Evaluator) evalVariable(v *binding.BoundVariable) (Value, error) {
	val, ok := e.frames.Lookup(v.Name)
	if !ok {
		return Value{}, fmt.Errorf("runtime error: undeclared variable %q", v.Name)
	}
	return val, nil
}

func (e *Evaluator) evalArrayLiteral(lit *binding.BoundArrayLiteral) (Value, error) {
	elements := make([]Value, len(lit.Elements))
	for i, el := range lit.Elements {
		v, err := e.evalExpression(el)
		if err != nil {
			return Value{}, err
		}
		elements[i] = v
	}
	return Array(elements), nil
}

// evalArrayAndIndex evaluates an array access's array and index
// sub-expressions and resolves the index to a range-checked, already
// negative-adjusted position, shared by read access and assignment.
func (e *Evaluator) evalArrayAndIndex(access *binding.BoundArrayAccess) (Value, int, error) {
	arr, err := e.evalExpression(access.Array)
	if err != nil {
		return Value{}, 0, err
	}
	if arr.Kind != KindArray {
		return Value{}, 0, fmt.Errorf("runtime error: cannot index into %s", arr.Kind)
	}
	idxVal, err := e.evalExpression(access.Index)
	if err != nil {
		return Value{}, 0, err
	}
	idx, ok := ToInt(idxVal)
	if !ok {
		return Value{}, 0, fmt.Errorf("runtime error: array index must be numeric")
	}
	if idx < 0 {
		idx += int64(len(arr.Array))
	}
	if idx < 0 || idx >= int64(len(arr.Array)) {
		return Value{}, 0, fmt.Errorf("runtime error: array index out of range")
	}
	return arr, int(idx), nil
}

func (e *Evaluator) evalArrayAccess(access *binding.BoundArrayAccess) (Value, error) {
	arr, idx, err := e.evalArrayAndIndex(access)
	if err != nil {
		return Value{}, err
	}
	return arr.Array[idx], nil
}

func (e *Evaluator) evalUnary(u *binding.BoundUnary) (Value, error) {
	switch u.Operator {
	case token.INCREMENT, token.DECREMENT:
		return e.evalIncDec(u)
	}

	v, err := e.evalExpression(u.Operand)
	if err != nil {
		return Value{}, err
	}
	switch u.Operator {
	case token.PLUS:
		return v, nil
	case token.MINUS:
		return negate(v), nil
	case token.BANG:
		b, err := convertToBool(v)
		if err != nil {
			return Value{}, err
		}
		return Bool(!b.Bool), nil
	default:
		return Value{}, fmt.Errorf("runtime error: unhandled unary operator %s", u.Operator)
	}
}

func negate(v Value) Value {
	if v.Kind == KindDouble {
		return Double(-v.Double)
	}
	return Int(-v.Int)
}

// evalIncDec implements §4.5's pre/post increment: look up the current
// value, coerce to numeric, add ±1, store back, and return the new
// value (prefix) or the old value (postfix).
func (e *Evaluator) evalIncDec(u *binding.BoundUnary) (Value, error) {
	variable, ok := u.Operand.(*binding.BoundVariable)
	if !ok {
		return Value{}, fmt.Errorf("runtime error: ++/-- requires a variable operand")
	}
	old, err := e.evalVariable(variable)
	if err != nil {
		return Value{}, err
	}
	if !IsNumeric(old) {
		return Value{}, fmt.Errorf("runtime error: ++/-- requires a numeric value, got %s", old.Kind)
	}

	delta := int64(1)
	if u.Operator == token.DECREMENT {
		delta = -1
	}
	var updated Value
	if old.Kind == KindDouble {
		updated = Double(old.Double + float64(delta))
	} else {
		updated = Int(old.Int + delta)
	}

	if !e.frames.Assign(variable.Name, updated) {
		e.frames.Define(variable.Name, updated)
	}
	if u.IsPrefix {
		return updated, nil
	}
	return old, nil
}

func (e *Evaluator) evalBinary(bin *binding.BoundBinary) (Value, error) {
	left, err := e.evalExpression(bin.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.evalExpression(bin.Right)
	if err != nil {
		return Value{}, err
	}

	switch bin.Operator {
	case token.EQ:
		return Bool(Equal(left, right)), nil
	case token.NEQ:
		return Bool(!Equal(left, right)), nil
	case token.LT, token.LE, token.GT, token.GE:
		return evalRelational(bin.Operator, left, right)
	case token.AND, token.OR:
		return evalLogical(bin.Operator, left, right)
	case token.PLUS:
		return evalAdditive(left, right, bin.Type())
	case token.MINUS, token.STAR, token.SLASH:
		return evalArithmetic(bin.Operator, left, right, bin.Type())
	default:
		return Value{}, fmt.Errorf("runtime error: unhandled binary operator %s", bin.Operator)
	}
}

func evalRelational(op token.Kind, left, right Value) (Value, error) {
	l, ok1 := ToDouble(left)
	r, ok2 := ToDouble(right)
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("runtime error: operator %s requires numeric operands", op)
	}
	switch op {
	case token.LT:
		return Bool(l < r), nil
	case token.LE:
		return Bool(l <= r), nil
	case token.GT:
		return Bool(l > r), nil
	case token.GE:
		return Bool(l >= r), nil
	default:
		return Value{}, fmt.Errorf("runtime error: unhandled relational operator %s", op)
	}
}

// evalLogical implements `&&`/`||`: both operands are evaluated (no
// short-circuit, per spec.md §4.5/§9) and each is coerced to Bool via
// the same nonzero-numeric/non-empty-string rule as an explicit Bool
// conversion, not a bare Kind check, so an Any-typed operand holding a
// nonzero number or non-empty string is treated as truthy.
func evalLogical(op token.Kind, left, right Value) (Value, error) {
	l, err := convertToBool(left)
	if err != nil {
		return Value{}, err
	}
	r, err := convertToBool(right)
	if err != nil {
		return Value{}, err
	}
	if op == token.AND {
		return Bool(l.Bool && r.Bool), nil
	}
	return Bool(l.Bool || r.Bool), nil
}

// evalAdditive implements `+`, which alone among the arithmetic
// operators also means string concatenation. staticType is the bound
// node's resolved type (String, Double, Int, or Any); Any re-dispatches
// on the runtime values with "string wins over double wins over int".
func evalAdditive(left, right Value, staticType symbols.Type) (Value, error) {
	if staticType.Equal(symbols.String) {
		return String(Format(left) + Format(right)), nil
	}
	if staticType.IsAny() {
		if left.Kind == KindString || right.Kind == KindString {
			return String(Format(left) + Format(right)), nil
		}
		return evalArithmetic(token.PLUS, left, right, anyNumericResultType(left, right))
	}
	return evalArithmetic(token.PLUS, left, right, staticType)
}

func evalArithmetic(op token.Kind, left, right Value, staticType symbols.Type) (Value, error) {
	resultType := staticType
	if staticType.IsAny() {
		resultType = anyNumericResultType(left, right)
	}

	l, ok1 := ToDouble(left)
	r, ok2 := ToDouble(right)
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("runtime error: operator %s requires numeric operands, got %s and %s", op, left.Kind, right.Kind)
	}

	if resultType.Equal(symbols.Double) {
		return Double(applyArith(op, l, r)), nil
	}
	li, _ := ToInt(left)
	ri, _ := ToInt(right)
	if op == token.SLASH {
		if ri == 0 {
			return Value{}, fmt.Errorf("runtime error: division by zero")
		}
		return Int(li / ri), nil
	}
	return Int(int64(applyArith(op, float64(li), float64(ri)))), nil
}

func applyArith(op token.Kind, l, r float64) float64 {
	switch op {
	case token.PLUS:
		return l + r
	case token.MINUS:
		return l - r
	case token.STAR:
		return l * r
	case token.SLASH:
		return l / r
	default:
		return 0
	}
}

func anyNumericResultType(left, right Value) symbols.Type {
	if left.Kind == KindDouble || right.Kind == KindDouble {
		return symbols.Double
	}
	return symbols.Int
}

func (e *Evaluator) evalConversion(conv *binding.BoundConversion) (Value, error) {
	v, err := e.evalExpression(conv.Operand)
	if err != nil {
		return Value{}, err
	}
	return convertValue(v, conv.Target)
}

func convertValue(v Value, target symbols.Type) (Value, error) {
	switch {
	case target.IsAny():
		return v, nil
	case target.Equal(symbols.Int):
		return convertToInt(v)
	case target.Equal(symbols.Double):
		return convertToDouble(v)
	case target.Equal(symbols.Bool):
		return convertToBool(v)
	case target.Equal(symbols.String):
		return String(Format(v)), nil
	default:
		return v, nil
	}
}

func convertToInt(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return v, nil
	case KindDouble:
		return Int(int64(v.Double)), nil
	case KindString:
		text := strings.TrimSpace(v.Str)
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			n, err := strconv.ParseInt(text[2:], 16, 64)
			if err != nil {
				return Value{}, fmt.Errorf("runtime error: cannot convert %q to Int", v.Str)
			}
			return Int(n), nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("runtime error: cannot convert %q to Int", v.Str)
		}
		return Int(n), nil
	default:
		return Value{}, fmt.Errorf("runtime error: cannot convert %s to Int", v.Kind)
	}
}

func convertToDouble(v Value) (Value, error) {
	switch v.Kind {
	case KindDouble:
		return v, nil
	case KindInt:
		return Double(float64(v.Int)), nil
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return Value{}, fmt.Errorf("runtime error: cannot convert %q to Double", v.Str)
		}
		return Double(n), nil
	default:
		return Value{}, fmt.Errorf("runtime error: cannot convert %s to Double", v.Kind)
	}
}

func convertToBool(v Value) (Value, error) {
	switch v.Kind {
	case KindBool:
		return v, nil
	case KindInt:
		return Bool(v.Int != 0), nil
	case KindDouble:
		return Bool(v.Double != 0), nil
	case KindString:
		return Bool(v.Str != ""), nil
	default:
		return Value{}, fmt.Errorf("runtime error: cannot convert %s to Bool", v.Kind)
	}
}

func (e *Evaluator) evalCall(call *binding.BoundCall) (Value, error) {
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := e.evalExpression(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	fn, ok := e.functions[call.Function]
	if !ok {
		return Value{}, fmt.Errorf("runtime error: %q has no registered implementation", call.Function.Name)
	}
	return fn(args)
}
