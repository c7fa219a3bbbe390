package lexer

import (
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/aspidlang/aspid/internal/token"
)

// tokenFixture is the comparable shape of a token for a golden-style
// assertion: Kind rendered through String() so a mismatch prints a
// symbol ("+", "(") rather than an opaque int.
type tokenFixture struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal"`
}

func fixtureOf(tokens []token.Token) []tokenFixture {
	out := make([]tokenFixture, len(tokens))
	for i, t := range tokens {
		out[i] = tokenFixture{Kind: t.Kind.String(), Literal: t.Literal}
	}
	return out
}

// assertGolden compares got against a fixture built from want, dumping
// both sides as indented JSON on mismatch rather than Go's %v — easier
// to diff by eye across a dozen tokens.
func assertGolden(t *testing.T, got []token.Token, want []tokenFixture) {
	t.Helper()
	gotFixture := fixtureOf(got)
	if len(gotFixture) == len(want) {
		match := true
		for i := range gotFixture {
			if gotFixture[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return
		}
	}

	gotJSON, _ := json.MarshalIndent(gotFixture, "", "  ")
	wantJSON, _ := json.MarshalIndent(want, "", "  ")
	t.Fatalf("token stream mismatch:\ngot:\n%s\nwant:\n%s", gotJSON, wantJSON)
}

// TestLexerGoldenFStringDesugaring locks in the exact desugared token
// sequence for an f-string whose single expression is itself a binary
// expression, so the "+" joiners on either side of the braced region
// don't get confused with the "+" inside it.
func TestLexerGoldenFStringDesugaring(t *testing.T) {
	l := New(`f"sum={1+2}"`+"\n", "golden.aspid")
	got := l.ScanTokens()
	if l.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", l.Errors())
	}

	want := []tokenFixture{
		{"(", "("},
		{"STRING", "sum="},
		{"+", "+"},
		{"(", "("},
		{"NUMBER", "1"},
		{"+", "+"},
		{"NUMBER", "2"},
		{")", ")"},
		{"+", "+"},
		{"STRING", ""},
		{")", ")"},
		{"NEWLINE", "\n"},
		{"EOF", ""},
	}
	assertGolden(t, got, want)
}
