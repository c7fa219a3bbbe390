// Package operators resolves the static result type of a binary or unary
// operator application given its operand types, and the legality and
// result type of a value conversion. It holds no state; every function is
// a pure table lookup over internal/symbols.Type, consulted by the binder
// and mirrored at runtime by the evaluator's dynamic dispatch for Any
// operands.
package operators

import (
	"fmt"

	"github.com/aspidlang/aspid/internal/symbols"
	"github.com/aspidlang/aspid/internal/token"
)

// BinaryKind classifies a binary operator for resolution purposes.
type BinaryKind int

const (
	BinaryUnknown BinaryKind = iota
	BinaryEquality
	BinaryRelational
	BinaryAdditive
	BinaryMultiplicative
	BinaryLogical
)

// ClassifyBinary maps a token kind to the operator family §4.3 resolves
// by. PLUS is Additive (it alone supports string concatenation); MINUS,
// STAR, SLASH are Multiplicative, which applies the same numeric-widening
// rule as PLUS but never concatenates.
func ClassifyBinary(k token.Kind) BinaryKind {
	switch k {
	case token.EQ, token.NEQ:
		return BinaryEquality
	case token.LT, token.LE, token.GT, token.GE:
		return BinaryRelational
	case token.PLUS:
		return BinaryAdditive
	case token.MINUS, token.STAR, token.SLASH:
		return BinaryMultiplicative
	case token.AND, token.OR:
		return BinaryLogical
	default:
		return BinaryUnknown
	}
}

func isNumeric(t symbols.Type) bool {
	return t.Equal(symbols.Int) || t.Equal(symbols.Double)
}

// ResolveBinary implements the §4.3 binary operator resolution table. It
// returns the statically known result type and whether the combination is
// legal at all; when ok is false the result is symbols.Invalid, and the
// binder reports a diagnostic and substitutes symbols.Error.
func ResolveBinary(op token.Kind, left, right symbols.Type) (result symbols.Type, ok bool) {
	if left.IsAny() || right.IsAny() {
		switch ClassifyBinary(op) {
		case BinaryEquality, BinaryRelational, BinaryLogical:
			return symbols.Bool, true
		default:
			return symbols.Any, true
		}
	}

	switch ClassifyBinary(op) {
	case BinaryEquality:
		if left.Equal(right) || (isNumeric(left) && isNumeric(right)) {
			return symbols.Bool, true
		}
		return symbols.Invalid, false

	case BinaryRelational:
		if isNumeric(left) && isNumeric(right) {
			return symbols.Bool, true
		}
		return symbols.Invalid, false

	case BinaryLogical:
		if left.Equal(symbols.Bool) && right.Equal(symbols.Bool) {
			return symbols.Bool, true
		}
		return symbols.Invalid, false

	case BinaryAdditive:
		if left.Equal(symbols.String) || right.Equal(symbols.String) {
			return symbols.String, true
		}
		return resolveArithmetic(left, right)

	case BinaryMultiplicative:
		return resolveArithmetic(left, right)

	default:
		return symbols.Invalid, false
	}
}

func resolveArithmetic(left, right symbols.Type) (symbols.Type, bool) {
	if !isNumeric(left) || !isNumeric(right) {
		return symbols.Invalid, false
	}
	if left.Equal(symbols.Double) || right.Equal(symbols.Double) {
		return symbols.Double, true
	}
	return symbols.Int, true
}

// UnaryKind classifies a unary operator (prefix or postfix) for
// resolution purposes.
type UnaryKind int

const (
	UnaryUnknown UnaryKind = iota
	UnarySign        // + -
	UnaryNot         // !
	UnaryIncDec      // ++ --
)

func ClassifyUnary(k token.Kind) UnaryKind {
	switch k {
	case token.PLUS, token.MINUS:
		return UnarySign
	case token.BANG:
		return UnaryNot
	case token.INCREMENT, token.DECREMENT:
		return UnaryIncDec
	default:
		return UnaryUnknown
	}
}

// ResolveUnary implements the §4.3 unary operator resolution table. The
// parser already enforces that ++/-- apply only to a syntactic variable;
// this function only decides the resulting type.
func ResolveUnary(op token.Kind, operand symbols.Type) (symbols.Type, bool) {
	if operand.IsAny() {
		return symbols.Any, true
	}

	switch ClassifyUnary(op) {
	case UnarySign, UnaryIncDec:
		if isNumeric(operand) {
			return operand, true
		}
		return symbols.Invalid, false
	case UnaryNot:
		if operand.Equal(symbols.Bool) {
			return symbols.Bool, true
		}
		return symbols.Invalid, false
	default:
		return symbols.Invalid, false
	}
}

// ConversionKind distinguishes an implicit conversion (inserted by the
// binder at an assignment or parameter boundary) from an explicit
// call-form conversion (`int(x)`), which accepts a wider source set.
type ConversionKind int

const (
	ImplicitConversion ConversionKind = iota
	ExplicitConversion
)

// CanConvert reports whether a value of type from can become a value of
// type to, per §4.3's conversion table. ExplicitConversion additionally
// allows String -> {Int, Double, Bool} so that `int("0x1F")` and similar
// call-form conversions are legal; apart from those String sources, both
// kinds accept the same conversions.
func CanConvert(from, to symbols.Type, kind ConversionKind) bool {
	if from.Equal(to) {
		return true
	}
	if from.IsAny() || to.IsAny() {
		return true
	}
	if isNumeric(from) && to.Equal(symbols.Bool) {
		return true
	}
	if from.Equal(symbols.Int) && to.Equal(symbols.Double) {
		return true
	}
	if kind == ExplicitConversion && from.Equal(symbols.String) {
		switch {
		case to.Equal(symbols.Int), to.Equal(symbols.Double), to.Equal(symbols.Bool):
			return true
		}
	}
	return false
}

// DescribeIllegalBinary renders the diagnostic text for a binary
// operator/operand-type combination ResolveBinary rejected.
func DescribeIllegalBinary(op token.Kind, left, right symbols.Type) string {
	return fmt.Sprintf("operator %q is not defined for %s and %s", lexemeOf(op), left, right)
}

func lexemeOf(k token.Kind) string {
	for _, op := range token.Operators() {
		if op.Kind == k {
			return op.Text
		}
	}
	return k.String()
}
