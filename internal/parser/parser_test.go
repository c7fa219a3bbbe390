package parser

import (
	"testing"

	"github.com/aspidlang/aspid/internal/cst"
)

func parseProgram(t *testing.T, src string) *cst.Program {
	t.Helper()
	p := New(src, "test.aspid")
	prog := p.Parse()
	if p.HasErrors() {
		for _, err := range p.Errors() {
			t.Errorf("parse error: %v", err)
		}
	}
	return prog
}

func TestParseVariableDeclaration(t *testing.T) {
	prog := parseProgram(t, "x: int = 10\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*cst.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", prog.Statements[0])
	}
	if decl.TypeText != "int" {
		t.Fatalf("expected type 'int', got %q", decl.TypeText)
	}
	if decl.Initializer == nil {
		t.Fatalf("expected an initializer")
	}
}

func TestParseArrayTypeDeclaration(t *testing.T) {
	prog := parseProgram(t, "a: int[] = [10, 20, 30]\n")
	decl, ok := prog.Statements[0].(*cst.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", prog.Statements[0])
	}
	if decl.TypeText != "int[]" {
		t.Fatalf("expected type 'int[]', got %q", decl.TypeText)
	}
}

func TestParseVariableDeclarationWithoutInitializer(t *testing.T) {
	prog := parseProgram(t, "x: int\n")
	decl := prog.Statements[0].(*cst.VariableDeclaration)
	if decl.Initializer != nil {
		t.Fatalf("expected no initializer")
	}
}

func TestParseAssignment(t *testing.T) {
	prog := parseProgram(t, "x = 1 + 2\n")
	stmt, ok := prog.Statements[0].(*cst.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", prog.Statements[0])
	}
	if _, ok := stmt.Target.(*cst.Variable); !ok {
		t.Fatalf("expected Variable target, got %T", stmt.Target)
	}
	if _, ok := stmt.Value.(*cst.Binary); !ok {
		t.Fatalf("expected Binary value, got %T", stmt.Value)
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog := parseProgram(t, "i += 1\n")
	stmt, ok := prog.Statements[0].(*cst.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", prog.Statements[0])
	}
	if stmt.Operator.Literal != "+=" {
		t.Fatalf("expected '+=' operator, got %q", stmt.Operator.Literal)
	}
}

func TestParseArrayIndexAssignment(t *testing.T) {
	prog := parseProgram(t, "a[0] = 99\n")
	stmt, ok := prog.Statements[0].(*cst.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", prog.Statements[0])
	}
	if _, ok := stmt.Target.(*cst.ArrayAccess); !ok {
		t.Fatalf("expected ArrayAccess target, got %T", stmt.Target)
	}
}

func TestParseIfElse(t *testing.T) {
	src := "if n == 5:\n    print(\"five\")\nelse:\n    print(\"other\")\n"
	prog := parseProgram(t, src)
	ifStmt, ok := prog.Statements[0].(*cst.If)
	if !ok {
		t.Fatalf("expected If, got %T", prog.Statements[0])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected else block")
	}
}

func TestParseElseIfNestsAsIfInsideElseBlock(t *testing.T) {
	src := "if x > 0:\n    y = 1\nelse if x < 0:\n    y = 2\nelse:\n    y = 3\n"
	prog := parseProgram(t, src)
	ifStmt := prog.Statements[0].(*cst.If)
	if ifStmt.Else == nil || len(ifStmt.Else.Statements) != 1 {
		t.Fatalf("expected else block with exactly one nested statement")
	}
	nested, ok := ifStmt.Else.Statements[0].(*cst.If)
	if !ok {
		t.Fatalf("expected nested If, got %T", ifStmt.Else.Statements[0])
	}
	if nested.Else == nil {
		t.Fatalf("expected the nested if's own else block")
	}
}

func TestParseWhileLoop(t *testing.T) {
	src := "while i < 3:\n    print(i)\n    i += 1\n"
	prog := parseProgram(t, src)
	stmt, ok := prog.Statements[0].(*cst.While)
	if !ok {
		t.Fatalf("expected While, got %T", prog.Statements[0])
	}
	if len(stmt.Action.Statements) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(stmt.Action.Statements))
	}
}

func TestParseDoWhileLoop(t *testing.T) {
	src := "do:\n    x = x + 1\nwhile x < 10\n"
	prog := parseProgram(t, src)
	stmt, ok := prog.Statements[0].(*cst.DoWhile)
	if !ok {
		t.Fatalf("expected DoWhile, got %T", prog.Statements[0])
	}
	if stmt.Condition == nil {
		t.Fatalf("expected a condition")
	}
}

func TestParseForIn(t *testing.T) {
	src := "for item in items:\n    print(item)\n"
	prog := parseProgram(t, src)
	stmt, ok := prog.Statements[0].(*cst.ForIn)
	if !ok {
		t.Fatalf("expected ForIn, got %T", prog.Statements[0])
	}
	if stmt.Var.Literal != "item" {
		t.Fatalf("expected loop variable 'item', got %q", stmt.Var.Literal)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	src := "fn add(a, b):\n    return a + b\n"
	prog := parseProgram(t, src)
	fn, ok := prog.Statements[0].(*cst.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", prog.Statements[0])
	}
	if fn.Name.Literal != "add" {
		t.Fatalf("expected name 'add', got %q", fn.Name.Literal)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*cst.Return); !ok {
		t.Fatalf("expected Return in body, got %T", fn.Body.Statements[0])
	}
}

func TestParseFunctionDeclWithTypedParams(t *testing.T) {
	src := "fn add(a: int, b: int):\n    return a + b\n"
	prog := parseProgram(t, src)
	fn := prog.Statements[0].(*cst.FunctionDeclaration)
	if fn.Params[0].Type == nil || fn.Params[0].Type.Literal != "int" {
		t.Fatalf("expected first param typed 'int'")
	}
}

func TestParseNestedBlocks(t *testing.T) {
	src := "fn f():\n    if true:\n        x = 1\n    return x\n"
	prog := parseProgram(t, src)
	fn, ok := prog.Statements[0].(*cst.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", prog.Statements[0])
	}
	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body.Statements))
	}
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	src := "x: int[] = [1, 2, 3]\ny = x[0]\n"
	prog := parseProgram(t, src)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	second := prog.Statements[1].(*cst.Assignment)
	if _, ok := second.Value.(*cst.ArrayAccess); !ok {
		t.Fatalf("expected ArrayAccess, got %T", second.Value)
	}
}

func TestParseNegativeArrayIndex(t *testing.T) {
	src := "y = a[-1]\n"
	prog := parseProgram(t, src)
	assign := prog.Statements[0].(*cst.Assignment)
	access := assign.Value.(*cst.ArrayAccess)
	if _, ok := access.Index.(*cst.PrefixUnary); !ok {
		t.Fatalf("expected PrefixUnary index, got %T", access.Index)
	}
}

func TestParseCallExpression(t *testing.T) {
	src := "print(\"hi\", 1)\n"
	prog := parseProgram(t, src)
	stmt := prog.Statements[0].(*cst.ExpressionStatement)
	call, ok := stmt.Expr.(*cst.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", stmt.Expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestParseFStringDesugarsToParenthesized(t *testing.T) {
	src := "x = f\"a{1}b\"\n"
	prog := parseProgram(t, src)
	assign := prog.Statements[0].(*cst.Assignment)
	if _, ok := assign.Value.(*cst.Parenthesized); !ok {
		t.Fatalf("expected Parenthesized from f-string desugaring, got %T", assign.Value)
	}
}

func TestParsePrecedenceLogicalLowerThanRelational(t *testing.T) {
	prog := parseProgram(t, "x = a == b && c == d\n")
	assign := prog.Statements[0].(*cst.Assignment)
	top, ok := assign.Value.(*cst.Binary)
	if !ok {
		t.Fatalf("expected Binary, got %T", assign.Value)
	}
	if top.Operator.Literal != "&&" {
		t.Fatalf("expected '&&' at the top of the tree, got %q", top.Operator.Literal)
	}
	if _, ok := top.Left.(*cst.Binary); !ok {
		t.Fatalf("expected left side to itself be a Binary (==), got %T", top.Left)
	}
}

func TestParsePrecedenceFactorHigherThanTerm(t *testing.T) {
	prog := parseProgram(t, "x = 1 + 2 * 3\n")
	assign := prog.Statements[0].(*cst.Assignment)
	top := assign.Value.(*cst.Binary)
	if top.Operator.Literal != "+" {
		t.Fatalf("expected '+' at the top of the tree, got %q", top.Operator.Literal)
	}
	right, ok := top.Right.(*cst.Binary)
	if !ok || right.Operator.Literal != "*" {
		t.Fatalf("expected right side to be a '*' Binary, got %v", top.Right)
	}
}

// Two spaces are less than one indentation unit and count as none, so
// `y = 2` is back at top level.
func TestParseSubUnitIndentationDedentsToTopLevel(t *testing.T) {
	src := "if true:\n    x = 1\n  y = 2\n"
	p := New(src, "test.aspid")
	prog := p.Parse()
	if p.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Statements))
	}
	if _, ok := prog.Statements[1].(*cst.Assignment); !ok {
		t.Fatalf("expected the second statement to be an Assignment, got %T", prog.Statements[1])
	}
}

func TestParseReturnBare(t *testing.T) {
	src := "fn f():\n    return\n"
	prog := parseProgram(t, src)
	fn := prog.Statements[0].(*cst.FunctionDeclaration)
	ret := fn.Body.Statements[0].(*cst.Return)
	if ret.Value != nil {
		t.Fatalf("expected a bare return with no value")
	}
}
