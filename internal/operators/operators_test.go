package operators

import (
	"testing"

	"github.com/aspidlang/aspid/internal/symbols"
	"github.com/aspidlang/aspid/internal/token"
)

func TestResolveBinaryArithmeticWidensToDouble(t *testing.T) {
	result, ok := ResolveBinary(token.PLUS, symbols.Int, symbols.Double)
	if !ok || !result.Equal(symbols.Double) {
		t.Fatalf("expected Double, got %s (ok=%v)", result, ok)
	}
}

func TestResolveBinaryIntArithmeticStaysInt(t *testing.T) {
	result, ok := ResolveBinary(token.STAR, symbols.Int, symbols.Int)
	if !ok || !result.Equal(symbols.Int) {
		t.Fatalf("expected Int, got %s (ok=%v)", result, ok)
	}
}

func TestResolveBinaryStringConcatenation(t *testing.T) {
	result, ok := ResolveBinary(token.PLUS, symbols.String, symbols.Int)
	if !ok || !result.Equal(symbols.String) {
		t.Fatalf("expected String, got %s (ok=%v)", result, ok)
	}
}

func TestResolveBinaryAnyDefersToRuntime(t *testing.T) {
	result, ok := ResolveBinary(token.PLUS, symbols.Any, symbols.Int)
	if !ok || !result.IsAny() {
		t.Fatalf("expected Any, got %s (ok=%v)", result, ok)
	}
}

func TestResolveBinaryEqualityAcceptsSameType(t *testing.T) {
	result, ok := ResolveBinary(token.EQ, symbols.Bool, symbols.Bool)
	if !ok || !result.Equal(symbols.Bool) {
		t.Fatalf("expected Bool, got %s (ok=%v)", result, ok)
	}
}

func TestResolveBinaryEqualityAcrossNumericTypes(t *testing.T) {
	_, ok := ResolveBinary(token.EQ, symbols.Int, symbols.Double)
	if !ok {
		t.Fatalf("expected Int == Double to be legal")
	}
}

func TestResolveBinaryEqualityRejectsIncompatibleTypes(t *testing.T) {
	_, ok := ResolveBinary(token.EQ, symbols.Bool, symbols.String)
	if ok {
		t.Fatalf("expected Bool == String to be illegal")
	}
}

func TestResolveBinaryRelationalRejectsNonNumeric(t *testing.T) {
	_, ok := ResolveBinary(token.LT, symbols.String, symbols.String)
	if ok {
		t.Fatalf("expected String < String to be illegal")
	}
}

func TestResolveBinaryArithmeticRejectsNonNumeric(t *testing.T) {
	_, ok := ResolveBinary(token.MINUS, symbols.Bool, symbols.Int)
	if ok {
		t.Fatalf("expected Bool - Int to be illegal")
	}
}

func TestResolveBinaryLogicalRequiresBool(t *testing.T) {
	_, ok := ResolveBinary(token.AND, symbols.Int, symbols.Bool)
	if ok {
		t.Fatalf("expected Int && Bool to be illegal")
	}
	result, ok := ResolveBinary(token.OR, symbols.Bool, symbols.Bool)
	if !ok || !result.Equal(symbols.Bool) {
		t.Fatalf("expected Bool || Bool to be legal and Bool-typed")
	}
}

func TestResolveUnarySignOnNumeric(t *testing.T) {
	result, ok := ResolveUnary(token.MINUS, symbols.Double)
	if !ok || !result.Equal(symbols.Double) {
		t.Fatalf("expected Double, got %s (ok=%v)", result, ok)
	}
}

func TestResolveUnaryNotRequiresBool(t *testing.T) {
	_, ok := ResolveUnary(token.BANG, symbols.Int)
	if ok {
		t.Fatalf("expected '!' on Int to be illegal")
	}
}

func TestResolveUnaryIncDecOnAny(t *testing.T) {
	result, ok := ResolveUnary(token.INCREMENT, symbols.Any)
	if !ok || !result.IsAny() {
		t.Fatalf("expected Any, got %s (ok=%v)", result, ok)
	}
}

func TestCanConvertIdentity(t *testing.T) {
	if !CanConvert(symbols.Int, symbols.Int, ImplicitConversion) {
		t.Fatalf("expected identity conversion to be legal")
	}
}

func TestCanConvertIntToDoubleWidening(t *testing.T) {
	if !CanConvert(symbols.Int, symbols.Double, ImplicitConversion) {
		t.Fatalf("expected Int -> Double widening to be legal")
	}
}

func TestCanConvertDoubleToIntIsNotImplicit(t *testing.T) {
	if CanConvert(symbols.Double, symbols.Int, ImplicitConversion) {
		t.Fatalf("expected Double -> Int to be illegal implicitly")
	}
}

func TestCanConvertNumericToBool(t *testing.T) {
	if !CanConvert(symbols.Int, symbols.Bool, ImplicitConversion) {
		t.Fatalf("expected Int -> Bool to be legal")
	}
}

func TestCanConvertStringToIntOnlyExplicit(t *testing.T) {
	if CanConvert(symbols.String, symbols.Int, ImplicitConversion) {
		t.Fatalf("expected String -> Int to be illegal implicitly")
	}
	if !CanConvert(symbols.String, symbols.Int, ExplicitConversion) {
		t.Fatalf("expected String -> Int to be legal via explicit call-form conversion")
	}
}

func TestCanConvertAnyIsAlwaysLegal(t *testing.T) {
	if !CanConvert(symbols.Any, symbols.Bool, ImplicitConversion) {
		t.Fatalf("expected Any -> Bool to be legal")
	}
	if !CanConvert(symbols.String, symbols.Any, ImplicitConversion) {
		t.Fatalf("expected String -> Any to be legal")
	}
}

func TestCanConvertArrayTypesRequireElementIdentity(t *testing.T) {
	ints := symbols.Array(symbols.Int)
	strings := symbols.Array(symbols.String)
	if CanConvert(ints, strings, ImplicitConversion) {
		t.Fatalf("expected Array(Int) -> Array(String) to be illegal")
	}
	if !CanConvert(ints, ints, ImplicitConversion) {
		t.Fatalf("expected Array(Int) -> Array(Int) to be legal")
	}
}
