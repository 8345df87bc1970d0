package iobuf

import "testing"

func TestGetcUngetcRoundTrip(t *testing.T) {
	b := NewFromString("hello")
	var got []byte
	for i := 0; i < 5; i++ {
		c, status := b.Getc()
		if status != StatusOK {
			t.Fatalf("unexpected status %v at %d", status, i)
		}
		got = append(got, c)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
	b.Ungetc()
	b.Ungetc()
	c, status := b.Getc()
	if status != StatusOK || c != 'l' {
		t.Fatalf("after ungetc x2 want 'l', got %q status %v", c, status)
	}
}

func TestEOFMarker(t *testing.T) {
	b := NewFromString("ab")
	b.Getc()
	b.Getc()
	c, status := b.Getc()
	if status != StatusEOF {
		t.Fatalf("want StatusEOF, got %v", status)
	}
	if c != MarkerByte {
		t.Fatalf("want marker byte, got %v", c)
	}
	// Keeps re-emitting.
	c2, status2 := b.Getc()
	if status2 != StatusEOF || c2 != MarkerByte {
		t.Fatalf("terminal callback should keep emitting marker, got %v %v", c2, status2)
	}
}

func TestLineColumnTracking(t *testing.T) {
	b := NewFromString("ab\ncd")
	for i := 0; i < 3; i++ {
		b.Getc()
	}
	if b.Line() != 2 || b.Column() != 1 {
		t.Fatalf("want line 2 col 1 after newline, got line=%d col=%d", b.Line(), b.Column())
	}
	b.Ungetc()
	if b.Line() != 1 {
		t.Fatalf("ungetc should restore previous line, got %d", b.Line())
	}
}

func TestTry(t *testing.T) {
	b := NewFromString(":=x")
	if !b.Try(':') {
		t.Fatalf("expected Try(':') to succeed")
	}
	if b.Try('Z') {
		t.Fatalf("expected Try('Z') to fail")
	}
	if !b.Try('=') {
		t.Fatalf("expected Try('=') to succeed")
	}
}

func TestSkipLineAndSpace(t *testing.T) {
	b := NewFromString("  x\nrest")
	b.SkipSpace()
	c, _ := b.Getc()
	if c != 'x' {
		t.Fatalf("want 'x' after SkipSpace, got %q", c)
	}
	b.SkipLine()
	c2, _ := b.Getc()
	if c2 != 'r' {
		t.Fatalf("want 'r' after SkipLine, got %q", c2)
	}
}

func TestGetDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		n    int
	}{
		{"123", 123, 3},
		{"-4.5", -4.5, 4},
		{"3.14x", 3.14, 4},
		{"+10", 10, 3},
		{"abc", 0, 0},
	}
	for _, c := range cases {
		b := NewFromString(c.in)
		got, n := b.GetDecimal()
		if got != c.want || n != c.n {
			t.Fatalf("GetDecimal(%q) = (%v,%d), want (%v,%d)", c.in, got, n, c.want, c.n)
		}
	}
}

func TestGetIdentifier(t *testing.T) {
	b := NewFromString("foo_Bar123 rest")
	isIdentChar := func(c byte) bool {
		return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	name := b.GetIdentifier(make([]byte, 0), isIdentChar)
	if name != "foo_Bar123" {
		t.Fatalf("got %q", name)
	}
	b.SkipSpace()
	c, _ := b.Getc()
	if c != 'r' {
		t.Fatalf("expected to stop before space, next is %q", c)
	}
}

func TestRefillAcrossHalfBoundary(t *testing.T) {
	// Force a tiny ring so we exercise multiple refills within one test.
	src := "0123456789abcdefghijklmnopqrstuvwxyz"
	pos := 0
	buf := New(8, func(dst []byte) (int, error) {
		if pos >= len(src) {
			return 0, nil
		}
		n := copy(dst, src[pos:])
		pos += n
		return n, nil
	})
	var out []byte
	for i := 0; i < len(src); i++ {
		c, status := buf.Getc()
		if status != StatusOK {
			t.Fatalf("unexpected status %v at %d", status, i)
		}
		out = append(out, c)
	}
	if string(out) != src {
		t.Fatalf("got %q, want %q", out, src)
	}
}

func TestReadErrorSetsStatus(t *testing.T) {
	b := New(16, func(dst []byte) (int, error) {
		return 0, errBoom
	})
	c, status := b.Getc()
	if status != StatusError {
		t.Fatalf("want StatusError, got %v", status)
	}
	if c != MarkerByte {
		t.Fatalf("want marker byte on error")
	}
	if b.Err() == nil {
		t.Fatalf("want non-nil Err()")
	}
}

var errBoom = &testErr{"boom"}

type testErr struct{ s string }

func (e *testErr) Error() string { return e.s }
