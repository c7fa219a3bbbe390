// Package builtins registers the three host-provided functions every
// aspid program can call without a user-defined declaration: print,
// input, and random. Each is wired into an eval.Evaluator's dispatch
// table against the symbols.BuiltinTable entry the binder already
// resolved calls to, mirroring the teacher's registerBuiltins /
// BuiltinFunc map idiom in internal/runtime/runtime.go.
package builtins

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"go.uber.org/atomic"

	"github.com/aspidlang/aspid/internal/eval"
	"github.com/aspidlang/aspid/internal/symbols"
)

// Host carries the I/O surface the three built-ins act on: where print
// writes, where input reads lines from, and the seed feeding random's
// PRNG. A zero Host is unusable; use NewHost for sane defaults.
type Host struct {
	Out   io.Writer
	In    *bufio.Reader
	seed  *atomic.Int64
	calls *atomic.Uint64
}

// NewHost wraps out/in with a monotonic call counter folded into the
// configured PRNG seed on every random() call, so repeated draws in the
// same process don't all reuse the same seed.
func NewHost(out io.Writer, in io.Reader, seed int64) *Host {
	return &Host{
		Out:   out,
		In:    bufio.NewReader(in),
		seed:  atomic.NewInt64(seed),
		calls: atomic.NewUint64(0),
	}
}

// Register installs print/input/random onto ev, keyed by the same
// *symbols.FunctionSymbol pointers the binder resolves calls against
// (symbols.BuiltinTable's map values, stable across lookups).
func Register(ev *eval.Evaluator, host *Host) {
	printSym, _ := symbols.LookupBuiltin("print")
	inputSym, _ := symbols.LookupBuiltin("input")
	randomSym, _ := symbols.LookupBuiltin("random")

	ev.DefineFunction(printSym, host.print)
	ev.DefineFunction(inputSym, host.input)
	ev.DefineFunction(randomSym, host.random)
}

// print writes a human-readable rendering of its single argument
// followed by a trailing newline, per the one-argument print(x: any)
// signature.
func (h *Host) print(args []eval.Value) (eval.Value, error) {
	fmt.Fprintln(h.Out, eval.Format(args[0]))
	return eval.Void(), nil
}

// input reads one line from standard input; EOF yields the empty
// string rather than an error, per the external-interface contract.
func (h *Host) input(args []eval.Value) (eval.Value, error) {
	line, err := h.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return eval.Value{}, fmt.Errorf("runtime error: input: %w", err)
	}
	line = trimTrailingNewline(line)
	return eval.String(line), nil
}

func trimTrailingNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// random returns a uniform integer in [low, high), reseeding a fresh
// rand.Rand on every call from the host's atomic seed counter advanced
// by the call count, so successive calls within the same process don't
// repeat.
func (h *Host) random(args []eval.Value) (eval.Value, error) {
	low := args[0].Int
	high := args[1].Int
	if high <= low {
		return eval.Value{}, fmt.Errorf("runtime error: random: max must be greater than min")
	}

	call := h.calls.Inc()
	seed := h.seed.Load() + int64(call)
	r := rand.New(rand.NewSource(seed))
	return eval.Int(low + r.Int63n(high-low)), nil
}
