// Package replsession implements the interactive read-eval-print loop
// named in the external-interface contract: read one line, accumulate
// until a logical top-level statement is complete (tracked by an
// indentation stack rather than bracket counting, since the language
// is indentation-, not bracket-, delimited), bind it, and evaluate it.
package replsession

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aspidlang/aspid/internal/binding"
	"github.com/aspidlang/aspid/internal/builtins"
	"github.com/aspidlang/aspid/internal/config"
	"github.com/aspidlang/aspid/internal/diag"
	"github.com/aspidlang/aspid/internal/eval"
	"github.com/aspidlang/aspid/internal/parser"
	"github.com/aspidlang/aspid/internal/token"
)

// Session is one REPL run: a persistent binder and evaluator (so
// variables and functions declared on one line are visible on the
// next), fed by a line reader and writing results/diagnostics to out.
type Session struct {
	cfg    config.Config
	reader *bufio.Reader
	writer io.Writer

	binder    *binding.Binder
	evaluator *eval.Evaluator
	host      *builtins.Host

	buffer         strings.Builder
	continuing     bool
	statementCount int
}

// New creates a Session over in/out, registering the built-ins against
// a fresh evaluator and wiring host I/O (print/input) to the same
// writer/reader the REPL itself uses.
func New(cfg config.Config, in io.Reader, out io.Writer) *Session {
	host := builtins.NewHost(out, in, cfg.RandomSeed)
	ev := eval.New()
	builtins.Register(ev, host)

	return &Session{
		cfg:       cfg,
		reader:    bufio.NewReader(in),
		writer:    out,
		binder:    binding.New(),
		evaluator: ev,
		host:      host,
	}
}

// Run drives the loop until EOF. It never returns an error for EOF —
// that's clean termination, per the external-interface contract.
func (s *Session) Run() {
	for {
		prompt := s.cfg.Prompt
		if s.continuing {
			prompt = s.cfg.ContinuePrompt
		}
		fmt.Fprint(s.writer, prompt)

		line, err := s.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			fmt.Fprintln(s.writer, diag.Red(fmt.Sprintf("Error reading input: %v", err)))
			return
		}
		atEOF := err == io.EOF
		line = strings.TrimRight(line, "\r\n")

		if s.continuing {
			s.buffer.WriteString("\n")
		}
		s.buffer.WriteString(line)

		if !atEOF && s.needsMoreInput(s.buffer.String()) {
			s.continuing = true
			continue
		}

		input := s.buffer.String()
		s.buffer.Reset()
		s.continuing = false

		if strings.TrimSpace(input) != "" {
			s.execute(input)
		}

		if atEOF {
			fmt.Fprintln(s.writer)
			return
		}
	}
}

// needsMoreInput decides whether buffer is a complete logical line by
// walking its indentation stack the way the lexer does (one unit per
// four spaces or one tab) rather than counting brackets: as long as
// any line is still more indented than the statement's opening line,
// or the last line opens a new block (ends with ':'), more input is
// required.
func (s *Session) needsMoreInput(buffer string) bool {
	stack := []int{0}
	lastContentLine := ""

	for _, line := range strings.Split(buffer, "\n") {
		units, blank := indentUnits(line)
		if blank || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lastContentLine = line

		top := stack[len(stack)-1]
		switch {
		case units > top:
			stack = append(stack, units)
		case units < top:
			for len(stack) > 1 && stack[len(stack)-1] > units {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) > 1 {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(lastContentLine, " \t"), ":")
}

// indentUnits measures line's leading-whitespace depth using the same
// four-spaces-or-one-tab unit the lexer's own indent stack uses, and
// reports whether the line is entirely whitespace.
func indentUnits(line string) (units int, blank bool) {
	spaceRun := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			spaceRun++
			if spaceRun == 4 {
				units++
				spaceRun = 0
			}
		case '\t':
			units++
			spaceRun = 0
		default:
			return units, false
		}
	}
	return units, true
}

// execute parses, binds, and evaluates one logical top-level
// statement, following §7's three-taxonomy error handling: a parse
// error aborts this statement only; binder diagnostics, flushed per
// statement, suppress evaluation of that statement if nonempty;
// runtime errors abort evaluation of this statement without exiting
// the session.
func (s *Session) execute(input string) {
	p := parser.New(input, "<repl>")
	prog := p.Parse()
	if p.HasErrors() {
		diags := make([]diag.Diagnostic, len(p.Errors()))
		for i, e := range p.Errors() {
			diags[i] = diag.NewError(token.Span{Start: e.Pos}, e.Message)
		}
		s.report(diags)
		return
	}

	for _, stmt := range prog.Statements {
		before := len(s.binder.Diagnostics())
		bound := s.binder.BindStatement(stmt)
		if fresh := s.binder.Diagnostics()[before:]; len(fresh) > 0 {
			diags := make([]diag.Diagnostic, len(fresh))
			for i, d := range fresh {
				diags[i] = diag.NewError(token.Span{}, d)
			}
			s.report(diags)
			continue
		}

		result, hasResult, err := s.evaluator.ExecTopLevel(bound)
		if err != nil {
			fmt.Fprintln(s.writer, diag.FormatRuntimeError(err))
			continue
		}
		s.statementCount++
		if hasResult {
			fmt.Fprintln(s.writer, diag.Render(diag.NewResult(eval.Format(result))))
		}
	}
}

// report writes each diagnostic through internal/diag's Render
// pipeline rather than looping over raw strings at the call site.
func (s *Session) report(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(s.writer, diag.Render(d))
	}
}

// StatementCount reports how many top-level statements this session
// has successfully evaluated, for the CLI's session-lifecycle logging.
func (s *Session) StatementCount() int { return s.statementCount }
