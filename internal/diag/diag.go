// Package diag centralizes the three diagnostic taxonomies the
// language's error-handling design distinguishes (lex/parse errors,
// binder diagnostics, runtime errors) into one Diagnostic type with
// ANSI-colored rendering, gated on TTY/NO_COLOR detection, and batch
// aggregation via go.uber.org/multierr.
package diag

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/aspidlang/aspid/internal/token"
)

// Severity classifies a Diagnostic for coloring and exit-status
// purposes.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityResult
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityResult:
		return "Result"
	default:
		return "<unknown severity>"
	}
}

// Diagnostic is one reportable event: a lex/parse error, a binder
// diagnostic, a runtime error, or a successful REPL result (rendered
// in green per the external-interface contract).
type Diagnostic struct {
	Severity Severity
	Span     token.Span
	Message  string
}

func NewError(span token.Span, message string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Span: span, Message: message}
}

func NewResult(message string) Diagnostic {
	return Diagnostic{Severity: SeverityResult, Message: message}
}

// Error lets a Diagnostic satisfy the error interface, so a batch can
// be folded into a multierr.Error alongside ordinary Go errors.
func (d Diagnostic) Error() string {
	if d.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", d.Span.Start, d.Message)
	}
	return d.Message
}

// Render formats d the way the CLI writes it: errors in red with their
// source position, warnings in yellow and successful results in green,
// both without one.
func Render(d Diagnostic) string {
	switch d.Severity {
	case SeverityError:
		return Red(fmt.Sprintf("%s: %s", prefix(d), d.Message))
	case SeverityWarning:
		return Yellow(fmt.Sprintf("Warning: %s", d.Message))
	case SeverityResult:
		return Green(d.Message)
	default:
		return d.Message
	}
}

func prefix(d Diagnostic) string {
	if d.Span.Start.IsValid() {
		return fmt.Sprintf("%s Error", d.Span.Start)
	}
	return "Error"
}

// FormatRuntimeError renders a bare runtime error (already prefixed by
// the evaluator with "runtime error: ") into the CLI's
// "Runtime Error: <message>" form, in red.
func FormatRuntimeError(err error) string {
	msg := strings.TrimPrefix(err.Error(), "runtime error: ")
	return Red(fmt.Sprintf("Runtime Error: %s", msg))
}

// Aggregate folds a batch of diagnostics (e.g. every diagnostic the
// binder accumulated while binding one top-level statement) into a
// single multierr error, so a caller that wants one err != nil check
// doesn't need to range over the slice itself.
func Aggregate(diagnostics []Diagnostic) error {
	var combined error
	for _, d := range diagnostics {
		combined = multierr.Append(combined, d)
	}
	return combined
}

// AggregateStrings is the same aggregation for the binder's current
// []string diagnostic shape (internal/binding.Binder.Diagnostics),
// wrapping each string as a plain error.
func AggregateStrings(messages []string) error {
	var combined error
	for _, m := range messages {
		combined = multierr.Append(combined, fmt.Errorf("%s", m))
	}
	return combined
}
