package eval

import (
	"testing"

	"github.com/aspidlang/aspid/internal/binding"
	"github.com/aspidlang/aspid/internal/parser"
)

func bindAndEval(t *testing.T, src string) (*Evaluator, error) {
	t.Helper()
	p := parser.New(src, "test.aspid")
	prog := p.Parse()
	if p.HasErrors() {
		for _, e := range p.Errors() {
			t.Fatalf("parse error: %v", e)
		}
	}
	b := binding.New()
	bound := b.Bind(prog)
	if b.HasErrors() {
		t.Fatalf("bind error: %v", b.Diagnostics())
	}
	ev := New()
	return ev, ev.Run(bound)
}

func lookup(t *testing.T, ev *Evaluator, name string) Value {
	t.Helper()
	v, ok := ev.frames.Lookup(name)
	if !ok {
		t.Fatalf("variable %q not found", name)
	}
	return v
}

func TestEvalVariableDeclarationAndLookup(t *testing.T) {
	ev, err := bindAndEval(t, "x: int = 10\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "x")
	if v.Kind != KindInt || v.Int != 10 {
		t.Fatalf("expected Int(10), got %+v", v)
	}
}

func TestEvalVariableDeclarationWithoutInitializerDefaultsToZero(t *testing.T) {
	ev, err := bindAndEval(t, "x: int\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "x")
	if v.Kind != KindInt || v.Int != 0 {
		t.Fatalf("expected Int(0), got %+v", v)
	}
}

func TestEvalAssignmentToUndeclaredNameImplicitlyDeclares(t *testing.T) {
	ev, err := bindAndEval(t, "x = 42\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "x")
	if v.Kind != KindInt || v.Int != 42 {
		t.Fatalf("expected Int(42), got %+v", v)
	}
}

func TestEvalArrayLiteralAndAccess(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [1, 2, 3]\nb = a[1]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "b")
	if v.Int != 2 {
		t.Fatalf("expected 2, got %+v", v)
	}
}

func TestEvalNegativeArrayIndex(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [1, 2, 3]\nb = a[-1]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "b")
	if v.Int != 3 {
		t.Fatalf("expected 3 (last element), got %+v", v)
	}
}

func TestEvalArrayIndexOutOfRangeIsRuntimeError(t *testing.T) {
	_, err := bindAndEval(t, "a: int[] = [1, 2]\nb = a[5]\n")
	if err == nil {
		t.Fatalf("expected a runtime error for an out-of-range index")
	}
}

func TestEvalArrayIndexAssignmentMutatesInPlace(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [1, 2, 3]\na[0] = 99\nb = a[0]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "b")
	if v.Int != 99 {
		t.Fatalf("expected 99, got %+v", v)
	}
}

func TestEvalArrayIndexAssignmentVisibleThroughSharedReference(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [1, 2, 3]\nc = a\nc[0] = 99\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := lookup(t, ev, "a")
	if a.Array[0].Int != 99 {
		t.Fatalf("expected mutation through c to be visible on a, got %+v", a)
	}
}

func TestEvalPrefixIncrement(t *testing.T) {
	ev, err := bindAndEval(t, "x: int = 1\ny = ++x\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x := lookup(t, ev, "x")
	y := lookup(t, ev, "y")
	if x.Int != 2 || y.Int != 2 {
		t.Fatalf("expected x=2, y=2, got x=%+v y=%+v", x, y)
	}
}

func TestEvalPostfixDecrement(t *testing.T) {
	ev, err := bindAndEval(t, "x: int = 5\ny = x--\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x := lookup(t, ev, "x")
	y := lookup(t, ev, "y")
	if x.Int != 4 || y.Int != 5 {
		t.Fatalf("expected x=4, y=5, got x=%+v y=%+v", x, y)
	}
}

func TestEvalAdditiveAnyDispatchPrefersString(t *testing.T) {
	ev, err := bindAndEval(t, "x = 1\ny = \"a\"\nz = x + y\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "z")
	if v.Kind != KindString || v.Str != "1a" {
		t.Fatalf("expected String(\"1a\"), got %+v", v)
	}
}

func TestEvalArithmeticWidensToDouble(t *testing.T) {
	ev, err := bindAndEval(t, "x: double = 1.5\ny: int = 2\nz = x + y\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "z")
	if v.Kind != KindDouble || v.Double != 3.5 {
		t.Fatalf("expected Double(3.5), got %+v", v)
	}
}

func TestEvalComparisonEpsilonTolerance(t *testing.T) {
	ev, err := bindAndEval(t, "a = (0.1 + 0.2 == 0.3)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "a")
	if v.Kind != KindBool || !v.Bool {
		t.Fatalf("expected epsilon-tolerant equality to hold, got %+v", v)
	}
}

func TestEvalLogicalOperatorsDoNotShortCircuit(t *testing.T) {
	ev, err := bindAndEval(t, "count: int = 0\nfn bump():\n    count = count + 1\n    return true\nresult = false && bump()\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := lookup(t, ev, "count")
	if count.Int != 1 {
		t.Fatalf("expected the right operand to still run under &&, count=%+v", count)
	}
}

func TestEvalLogicalAndCoercesAnyNonzeroNumberToTruthy(t *testing.T) {
	ev, err := bindAndEval(t, "x = 5\ny = x && true\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "y")
	if v.Kind != KindBool || !v.Bool {
		t.Fatalf("expected a nonzero Any-typed operand to coerce truthy, got %+v", v)
	}
}

func TestEvalLogicalOrCoercesAnyZeroNumberToFalsy(t *testing.T) {
	ev, err := bindAndEval(t, "x = 0\ny = x || false\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "y")
	if v.Kind != KindBool || v.Bool {
		t.Fatalf("expected a zero Any-typed operand to coerce falsy, got %+v", v)
	}
}

func TestEvalUnaryNotCoercesAnyNonzeroNumberToFalse(t *testing.T) {
	ev, err := bindAndEval(t, "x = 5\ny = !x\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "y")
	if v.Kind != KindBool || v.Bool {
		t.Fatalf("expected !5 through an Any operand to be false, got %+v", v)
	}
}

func TestEvalIfElse(t *testing.T) {
	ev, err := bindAndEval(t, "x: int = 0\nif x == 0:\n    x = 10\nelse:\n    x = 20\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "x")
	if v.Int != 10 {
		t.Fatalf("expected x=10, got %+v", v)
	}
}

func TestEvalWhileLoop(t *testing.T) {
	ev, err := bindAndEval(t, "i: int = 0\nwhile i < 5:\n    i = i + 1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "i")
	if v.Int != 5 {
		t.Fatalf("expected i=5, got %+v", v)
	}
}

func TestEvalCompoundAssignmentAddsInPlace(t *testing.T) {
	ev, err := bindAndEval(t, "i: int = 0\nwhile i < 5:\n    i += 1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "i")
	if v.Int != 5 {
		t.Fatalf("expected i=5, got %+v", v)
	}
}

func TestEvalCompoundAssignmentSubtractsInPlace(t *testing.T) {
	ev, err := bindAndEval(t, "i: int = 10\ni -= 3\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "i")
	if v.Int != 7 {
		t.Fatalf("expected i=7, got %+v", v)
	}
}

func TestEvalCompoundAssignmentOnArrayElement(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [10, 20]\na[1] += 5\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := lookup(t, ev, "a")
	if arr.Array[1].Int != 25 {
		t.Fatalf("expected a[1]=25, got %+v", arr.Array[1])
	}
}

func TestEvalDoWhileRunsAtLeastOnce(t *testing.T) {
	ev, err := bindAndEval(t, "i: int = 0\ndo:\n    i = i + 1\nwhile i < 0\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "i")
	if v.Int != 1 {
		t.Fatalf("expected the body to run exactly once, i=%+v", v)
	}
}

func TestEvalForInSumsElements(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = [1, 2, 3]\ntotal: int = 0\nfor n in a:\n    total = total + n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "total")
	if v.Int != 6 {
		t.Fatalf("expected total=6, got %+v", v)
	}
}

func TestEvalForInOverEmptyArrayRunsZeroIterations(t *testing.T) {
	ev, err := bindAndEval(t, "a: int[] = []\nhits: int = 0\nfor n in a:\n    hits = hits + 1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "hits")
	if v.Int != 0 {
		t.Fatalf("expected zero iterations, got %+v", v)
	}
}

func TestEvalFunctionDeclarationCallAndReturn(t *testing.T) {
	ev, err := bindAndEval(t, "fn square(n):\n    return n * n\nresult = square(5)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "result")
	if v.Int != 25 {
		t.Fatalf("expected result=25, got %+v", v)
	}
}

func TestEvalReturnFromNestedIfExitsFunctionImmediately(t *testing.T) {
	src := "fn classify(n):\n" +
		"    if n < 0:\n" +
		"        return \"negative\"\n" +
		"    return \"non-negative\"\n" +
		"a = classify(-5)\n" +
		"b = classify(5)\n"
	ev, err := bindAndEval(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := lookup(t, ev, "a")
	b := lookup(t, ev, "b")
	if a.Str != "negative" || b.Str != "non-negative" {
		t.Fatalf("expected negative/non-negative, got a=%+v b=%+v", a, b)
	}
}

func TestEvalExplicitIntConversionFromHexString(t *testing.T) {
	ev, err := bindAndEval(t, "x = int(\"0x1F\")\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "x")
	if v.Int != 31 {
		t.Fatalf("expected 31, got %+v", v)
	}
}

func TestEvalFStringWithLeadingLiteralChunk(t *testing.T) {
	ev, err := bindAndEval(t, "fn greet(name):\n    return f\"hello {name}\"\nresult = greet(\"world\")\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "result")
	if v.Kind != KindString || v.Str != "hello world" {
		t.Fatalf(`expected String("hello world"), got %+v`, v)
	}
}

func TestEvalFStringWithOnlyALeadingExpression(t *testing.T) {
	ev, err := bindAndEval(t, "x = 5\ny = f\"{x}\"\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := lookup(t, ev, "y")
	if v.Kind != KindString || v.Str != "5" {
		t.Fatalf(`expected String("5"), got %+v`, v)
	}
}

func TestEvalReturnOutsideFunctionIsRuntimeError(t *testing.T) {
	p := parser.New("return 1\n", "t")
	prog := p.Parse()
	if p.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	b := binding.New()
	bound := b.Bind(prog)
	if b.HasErrors() {
		t.Fatalf("unexpected bind errors: %v", b.Diagnostics())
	}
	ev := New()
	if err := ev.Run(bound); err == nil {
		t.Fatalf("expected a runtime error for return outside a function")
	}
}
