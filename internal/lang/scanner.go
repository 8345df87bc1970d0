package lang

import (
	"scorelang/internal/iobuf"
	"scorelang/internal/symtab"
)

// WSLevel controls how the scanner folds whitespace. The number parser
// temporarily raises it to WSNone so that e.g. a minus sign immediately
// preceding a number is never mistaken for separated tokens.
type WSLevel int

const (
	WSNormal WSLevel = iota // collapse runs of space/tab, fold line breaks
	WSNone                  // no folding: every byte is significant
)

// undoFrame is one entry of the scanner's bounded undo ring (spec: "ring of
// up to 64 undo frames").
type undoFrame struct {
	char   byte
	line   int
	col    int
	folded bool
	// runLen is nonzero for a frame recorded by pushRunUndo: it covers a
	// multi-byte run (e.g. a GetDecimal scan) consumed straight off the
	// buffer rather than one significant byte at a time, so Ungetc must
	// back out the whole run in one Ungetn instead of a single Ungetc.
	runLen int
}

const undoRingSize = 64

// Scanner drives an iobuf.Buffer, folding whitespace/comments and reading
// numeric/identifier lexemes. It is the direct analogue of the teacher's
// Lexer, but operates a character at a time instead of pre-tokenizing the
// whole source, since the script parser here is driven by single-letter
// dispatch rather than a token stream.
type Scanner struct {
	buf    *iobuf.Buffer
	syms   *symtab.Table
	sink   *Sink
	wsLvl  WSLevel
	ring   [undoRingSize]undoFrame
	ringAt int // next slot to write
	ringN  int // number of valid undo frames
}

func NewScanner(buf *iobuf.Buffer, syms *symtab.Table, sink *Sink) *Scanner {
	return &Scanner{buf: buf, syms: syms, sink: sink}
}

func (s *Scanner) SetWSLevel(lvl WSLevel) WSLevel {
	prev := s.wsLvl
	s.wsLvl = lvl
	return prev
}

func (s *Scanner) Line() int   { return s.buf.Line() }
func (s *Scanner) Column() int { return s.buf.Column() }

func (s *Scanner) pushUndo(c byte, folded bool) {
	s.ring[s.ringAt] = undoFrame{char: c, line: s.buf.Line(), col: s.buf.Column(), folded: folded}
	s.ringAt = (s.ringAt + 1) % undoRingSize
	if s.ringN < undoRingSize {
		s.ringN++
	}
}

// pushRunUndo records a multi-byte run already consumed directly from the
// underlying buffer (bypassing Getc's per-byte folding), so a following
// Ungetc backs the whole run out at once.
func (s *Scanner) pushRunUndo(n int) {
	s.ring[s.ringAt] = undoFrame{line: s.buf.Line(), col: s.buf.Column(), runLen: n}
	s.ringAt = (s.ringAt + 1) % undoRingSize
	if s.ringN < undoRingSize {
		s.ringN++
	}
}

// Getc returns the next significant byte, after applying the active
// character-class filters (comment skipping, whitespace folding at
// WSNormal). Returns (0, false) at end of input.
func (s *Scanner) Getc() (byte, bool) {
	for {
		c, status := s.buf.Getc()
		if status != iobuf.StatusOK {
			return 0, false
		}
		switch {
		case c == '#':
			// Skip to the end of the line, giving the newline back; a
			// comment that runs to end of input leaves nothing to give back.
			for {
				cc, st := s.buf.Getc()
				if st != iobuf.StatusOK {
					break
				}
				if cc == '\n' {
					s.buf.Ungetc()
					break
				}
			}
			continue
		case c == '\r':
			// CRLF: fold into the following \n.
			continue
		case s.wsLvl == WSNormal && (c == ' ' || c == '\t'):
			s.buf.SkipSpace()
			s.pushUndo(' ', true)
			return ' ', true
		default:
			s.pushUndo(c, false)
			return c, true
		}
	}
}

// Ungetc pushes the last returned byte back onto the underlying buffer.
func (s *Scanner) Ungetc() {
	if s.ringN == 0 {
		panic("lang: scanner ungetc with empty undo ring")
	}
	s.ringAt = (s.ringAt - 1 + undoRingSize) % undoRingSize
	s.ringN--
	frame := s.ring[s.ringAt]
	if frame.runLen > 0 {
		s.buf.Ungetn(frame.runLen)
		return
	}
	if frame.folded {
		// A folded run of whitespace was consumed by SkipSpace as part of
		// Getc; undo only the single representative byte we actually
		// returned for it.
		s.buf.Ungetc()
		return
	}
	s.buf.Ungetc()
}

// GetDecimal reads an optionally-signed, optionally-fractional decimal
// number directly off the underlying buffer (C1's get_decimal primitive),
// recording a single run-length undo frame so a following Ungetc can back
// the whole run out at once rather than byte by byte.
func (s *Scanner) GetDecimal() (float64, bool) {
	val, n := s.buf.GetDecimal()
	if n == 0 {
		return 0, false
	}
	s.pushRunUndo(n)
	return val, true
}

// Tryc advances past the next significant byte iff it equals c.
func (s *Scanner) Tryc(c byte) bool {
	got, ok := s.Getc()
	if ok && got == c {
		return true
	}
	if ok {
		s.Ungetc()
	}
	return false
}

// PeekNonSpace reports the byte the next Getc would return (a folded
// whitespace run shows as ' ') without consuming it.
func (s *Scanner) PeekNonSpace() (byte, bool) {
	c, ok := s.Getc()
	if ok {
		s.Ungetc()
	}
	return c, ok
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

const maxIdentLen = 79

// GetIdentifier reads `[A-Za-z_][A-Za-z0-9_]*`, truncated to maxIdentLen
// bytes, starting from the byte already consumed as first. Returns "" if
// first is not a valid identifier start.
func (s *Scanner) GetIdentifier(first byte) string {
	if !isIdentStart(first) {
		return ""
	}
	out := []byte{first}
	for {
		c, ok := s.Getc()
		if !ok || !isIdentChar(c) {
			if ok {
				s.Ungetc()
			}
			break
		}
		if len(out) < maxIdentLen {
			out = append(out, c)
		}
	}
	return string(out)
}

// InternIdentifier interns name in the variable namespace, looking it up
// (lazily creating on first use, per the symbol table's contract for
// TypeVariable).
func (s *Scanner) InternIdentifier(name string) *symtab.SymItem {
	item, _ := s.syms.Lookup(name, symtab.TypeVariable)
	return item
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
