// Command aspid is the interpreter's entry point: given a file, it
// runs it; given nothing, it starts the interactive session.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"

	"github.com/aspidlang/aspid/internal/aspidlog"
	"github.com/aspidlang/aspid/internal/binding"
	"github.com/aspidlang/aspid/internal/builtins"
	"github.com/aspidlang/aspid/internal/config"
	"github.com/aspidlang/aspid/internal/diag"
	"github.com/aspidlang/aspid/internal/eval"
	"github.com/aspidlang/aspid/internal/lexer"
	"github.com/aspidlang/aspid/internal/parser"
	"github.com/aspidlang/aspid/internal/replsession"
	"github.com/aspidlang/aspid/internal/token"
)

var (
	showTokens = flag.Bool("tokens", false, "print the token stream as JSON and exit")
	verbose    = flag.Bool("v", false, "enable debug-level session logging")
	noColor    = flag.Bool("no-color", false, "disable colored output regardless of terminal support")
)

func main() {
	flag.Parse()

	if *noColor {
		diag.DisableColors()
	}

	if flag.NArg() < 1 {
		runREPL()
		return
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	if *showTokens {
		dumpTokens(string(source), filename)
		return
	}

	runFile(string(source), filename)
}

// tokenDump is the JSON shape printed by -tokens: Kind rendered as its
// name rather than its underlying int, so the dump is readable without
// cross-referencing token.go.
type tokenDump struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func dumpTokens(source, filename string) {
	l := lexer.New(source, filename)
	tokens := l.ScanTokens()

	dump := make([]tokenDump, len(tokens))
	for i, tok := range tokens {
		dump[i] = tokenDump{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Line:    tok.Pos.Line,
			Column:  tok.Pos.Column,
		}
	}

	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding tokens: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if l.HasErrors() {
		reportDiagnostics(aspidlog.Nop(), "lex", lexErrorDiagnostics(l.Errors()))
		os.Exit(1)
	}
}

func lexErrorDiagnostics(errs []lexer.Error) []diag.Diagnostic {
	diags := make([]diag.Diagnostic, len(errs))
	for i, e := range errs {
		diags[i] = diag.NewError(token.Span{Start: e.Pos}, e.Message)
	}
	return diags
}

// reportDiagnostics renders each of diags through internal/diag's
// Render pipeline and folds the batch into one multierr, logged under
// kind at debug level — a single aggregated event rather than one log
// call per diagnostic.
func reportDiagnostics(log *aspidlog.Logger, kind string, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, diag.Render(d))
	}
	if len(diags) > 0 {
		log.DiagnosticRaised(kind, diag.Aggregate(diags).Error())
	}
}

// runFile binds and evaluates one top-level statement at a time, per
// §7's error-handling contract: a statement whose binding raised a
// diagnostic, or whose evaluation raised a runtime error, is skipped,
// but every other statement in the file still runs — a late error
// never suppresses earlier valid output. This mirrors
// internal/replsession.Session.execute's per-statement loop.
func runFile(source, filename string) {
	log := aspidlog.New(*verbose)
	defer log.Sync()

	p := parser.New(source, filename)
	prog := p.Parse()
	if p.HasErrors() {
		diags := make([]diag.Diagnostic, len(p.Errors()))
		for i, e := range p.Errors() {
			diags[i] = diag.NewError(token.Span{Start: e.Pos}, e.Message)
		}
		reportDiagnostics(log, "parse", diags)
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Dir(filename))
	if err != nil {
		fmt.Fprintln(os.Stderr, diag.Render(diag.NewError(token.Span{}, err.Error())))
		os.Exit(1)
	}

	host := builtins.NewHost(os.Stdout, os.Stdin, cfg.RandomSeed)
	ev := eval.New()
	builtins.Register(ev, host)
	binder := binding.New()

	log.SessionStarted(true)

	exitCode := 0
	executed := 0
	for _, stmt := range prog.Statements {
		before := len(binder.Diagnostics())
		bound := binder.BindStatement(stmt)
		if fresh := binder.Diagnostics()[before:]; len(fresh) > 0 {
			diags := make([]diag.Diagnostic, len(fresh))
			for i, d := range fresh {
				diags[i] = diag.NewError(token.Span{}, d)
			}
			reportDiagnostics(log, "binder", diags)
			exitCode = 1
			continue
		}

		if err := ev.Exec(bound); err != nil {
			fmt.Fprintln(os.Stderr, diag.FormatRuntimeError(err))
			log.DiagnosticRaised("runtime", err.Error())
			exitCode = 1
			continue
		}
		executed++
	}

	log.SessionEnded(executed)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func runREPL() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, diag.Render(diag.NewError(token.Span{}, err.Error())))
		os.Exit(1)
	}
	if !cfg.Color {
		diag.DisableColors()
	}

	log := aspidlog.New(*verbose)
	defer log.Sync()
	log.SessionStarted(err == nil)

	session := replsession.New(cfg, os.Stdin, os.Stdout)
	session.Run()

	log.SessionEnded(session.StatementCount())
}
