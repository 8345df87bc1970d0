package lang

import (
	"testing"

	"scorelang/internal/iobuf"
	"scorelang/internal/symtab"
)

// parseNum drives a standalone NumParser over src and returns the value,
// the ok flag and the sink, leaving any diagnostics for the caller to check.
func parseNum(t *testing.T, src string) (float64, bool, *Sink) {
	t.Helper()
	sink := NewSink("test", false)
	syms := symtab.New()
	s := NewScanner(iobuf.NewFromString(src), syms, sink)
	p := NewNumParser(s, syms, sink, DefaultNamedConst, DefaultMathFunc)
	val, ok := p.Parse()
	return val, ok, sink
}

func wantNum(t *testing.T, src string, want float64) {
	t.Helper()
	got, ok, sink := parseNum(t, src)
	if !ok {
		for _, d := range sink.Diags {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatalf("parse of %q did not succeed", src)
	}
	if got != want {
		t.Fatalf("parse of %q = %v, want %v", src, got, want)
	}
}

func TestPrecedenceAddMul(t *testing.T) {
	wantNum(t, "2+3*4", 14)
	wantNum(t, "2*3+4", 10)
}

func TestPowerRightAssociative(t *testing.T) {
	// 2^3^2 = 2^(3^2) = 2^9 = 512; left-assoc would give (2^3)^2 = 64.
	wantNum(t, "2^3^2", 512)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	wantNum(t, "(1+2)*3", 9)
}

func TestJuxtapositionMultiplication(t *testing.T) {
	// A digit literal immediately followed by "(" implies multiplication.
	wantNum(t, "2(3)", 6)
}

func TestJuxtapositionChainsRightward(t *testing.T) {
	// The spec's own canonical example: 3(2)(1) = 3*2*1 = 6.
	wantNum(t, "3(2)(1)", 6)
}

func TestJuxtapositionRequiresNoWhitespace(t *testing.T) {
	// "2 (3)" has a space before the paren, so the paren is not juxtaposed
	// onto the literal; only the bare "2" is consumed as the expression.
	got, ok, sink := parseNum(t, "2 (3)")
	if !ok {
		for _, d := range sink.Diags {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatalf("parse of \"2 (3)\" did not succeed")
	}
	if got != 2 {
		t.Fatalf("parse of \"2 (3)\" = %v, want 2 (whitespace must block juxtaposition)", got)
	}
}

func TestDivisionByZeroRejectsAsInfinity(t *testing.T) {
	_, ok, sink := parseNum(t, "3/0")
	if ok {
		t.Fatalf("parse of \"3/0\" succeeded, want rejection (Inf)")
	}
	if !sink.HasErrors() {
		t.Fatalf("parse of \"3/0\" did not raise a diagnostic")
	}
}
