// Package iobuf implements the circular byte buffer that sits under the
// scanner. It is deliberately low-level: getc/ungetc plus a handful of
// scan-ahead helpers (skip_line, skip_space, get_decimal, get_identifier).
// Everything above this layer (the scanner, the parsers) is blind to how
// bytes actually arrive — a refill callback can come from an open file, an
// in-memory string, or (in tests) a source that fails partway through.
package iobuf

import (
	"fmt"
	"io"
	"os"
)

// Status reports whether the buffer is delivering real bytes or has hit
// end-of-input / a read error. Callers must check Status in addition to
// comparing against MarkerByte, because legitimate input may itself contain
// low control bytes.
type Status int

const (
	StatusOK Status = iota
	StatusEOF
	StatusError
)

// MarkerByte is emitted (repeatedly) once the underlying source is exhausted
// or has failed. It is a single byte with value <= 0x07 so callers that only
// check the byte value (ignoring Status) still have a fighting chance of
// noticing, but the authoritative signal is Status.
const MarkerByte byte = 0x01

// DefaultSize is the default total ring size: a power of two, split into two
// equal refill halves.
const DefaultSize = 8192

type posFrame struct {
	line, col int
}

// RefillFunc fills dst with the next chunk of source bytes, returning how
// many bytes were actually placed. A short read with a nil error is followed
// by another call for the rest of dst; a call that returns n == 0 or a
// non-nil error ends the source, and the buffer makes no further calls.
type RefillFunc func(dst []byte) (n int, err error)

// Buffer is a circular byte buffer of fixed total size (a power of two),
// split into two equal-size refill halves. Refills happen one half at a
// time via a callback, which lets callers ungetc back across the most
// recent half-boundary.
type Buffer struct {
	data []byte
	size int
	half int

	pos       int // absolute count of bytes consumed so far
	validUpTo int // absolute count of bytes successfully filled

	history []posFrame // ring, indexed by pos % size

	refill   RefillFunc
	terminal bool
	status   Status
	err      error

	line, col int

	closer io.Closer
}

// New creates a buffer of the given size (rounded up to the next power of
// two, minimum 2*A for some A>0) that pulls bytes from refill.
func New(size int, refill RefillFunc) *Buffer {
	size = nextPow2(size)
	if size < 2 {
		size = 2
	}
	b := &Buffer{
		data:    make([]byte, size),
		size:    size,
		half:    size / 2,
		history: make([]posFrame, size),
		refill:  refill,
		line:    1,
		col:     1,
	}
	return b
}

func nextPow2(n int) int {
	if n <= 0 {
		return DefaultSize
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// NewFromString creates a buffer over an in-memory source. Useful for tests
// and for compiling script text that didn't come from a file.
func NewFromString(s string) *Buffer {
	pos := 0
	return New(DefaultSize, func(dst []byte) (int, error) {
		if pos >= len(s) {
			return 0, io.EOF
		}
		n := copy(dst, s[pos:])
		pos += n
		if n < len(dst) {
			return n, io.EOF
		}
		return n, nil
	})
}

// NewFromFile opens path and returns a buffer reading from it. The Buffer
// owns the file handle and Close releases it; on open failure the error is
// returned directly (callers report this to diagnostics as an IO failure
// and abort the compile, per the file-buffer contract).
func NewFromFile(path string) (*Buffer, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("iobuf: open %s: %w", path, err)
	}
	b := New(DefaultSize, func(dst []byte) (int, error) {
		return f.Read(dst)
	})
	b.closer = f
	return b, nil
}

// Close releases the underlying resource, if any. Safe to call more than
// once and safe to call when there is none.
func (b *Buffer) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// Status reports the current end-of-input / error state.
func (b *Buffer) Status() Status { return b.status }

// Err returns the underlying read error, if the buffer entered StatusError.
func (b *Buffer) Err() error { return b.err }

// Line and Column report the 1-based position of the byte that the next
// Getc call will return.
func (b *Buffer) Line() int   { return b.line }
func (b *Buffer) Column() int { return b.col }

func (b *Buffer) doRefill() {
	if b.terminal {
		return
	}
	slot := b.validUpTo % b.size
	dst := b.data[slot : slot+b.half]

	got := 0
	var rerr error
	for got < len(dst) {
		n, err := b.refill(dst[got:])
		got += n
		if err != nil {
			rerr = err
			break
		}
		if n == 0 {
			break
		}
	}

	b.validUpTo += got
	if got < len(dst) {
		// Short read or error: place the marker just past the last good
		// byte and switch to the terminal callback.
		markerSlot := b.validUpTo % b.size
		b.data[markerSlot] = MarkerByte
		b.terminal = true
		if rerr != nil && rerr != io.EOF {
			b.status = StatusError
			b.err = rerr
		} else {
			b.status = StatusEOF
		}
	}
}

// Getc reads and returns the next byte plus the buffer's status. Once the
// source is exhausted or has failed, it keeps returning MarkerByte with the
// terminal status forever.
func (b *Buffer) Getc() (byte, Status) {
	if b.terminal && b.pos >= b.validUpTo {
		return MarkerByte, b.status
	}
	if b.pos >= b.validUpTo {
		b.doRefill()
		if b.pos >= b.validUpTo {
			return MarkerByte, b.status
		}
	}

	slot := b.pos % b.size
	b.history[slot] = posFrame{line: b.line, col: b.col}
	c := b.data[slot]
	b.pos++

	if c == '\n' {
		b.line++
		b.col = 1
	} else {
		b.col++
	}
	return c, StatusOK
}

// Ungetc pushes the last-read byte back. Safe up to `half-1` bytes past the
// most recent refill boundary; going further is a programming error (it
// would read into data overwritten by a later refill) and is not detected.
// Ungetc at the start of input panics.
func (b *Buffer) Ungetc() {
	if b.pos == 0 {
		panic("iobuf: ungetc at start of input")
	}
	b.pos--
	slot := b.pos % b.size
	frame := b.history[slot]
	b.line, b.col = frame.line, frame.col
}

// Ungetn pushes back n bytes.
func (b *Buffer) Ungetn(n int) {
	for i := 0; i < n; i++ {
		b.Ungetc()
	}
}

// Try advances past the next byte iff it equals c, reporting whether it did.
func (b *Buffer) Try(c byte) bool {
	got, status := b.Getc()
	if status != StatusOK {
		return false
	}
	if got == c {
		return true
	}
	b.Ungetc()
	return false
}

// SkipLine consumes bytes up to and including the next newline, or until
// end-of-input.
func (b *Buffer) SkipLine() {
	for {
		c, status := b.Getc()
		if status != StatusOK {
			return
		}
		if c == '\n' {
			return
		}
	}
}

// SkipSpace consumes horizontal whitespace (space and tab).
func (b *Buffer) SkipSpace() {
	for {
		c, status := b.Getc()
		if status != StatusOK {
			return
		}
		if c != ' ' && c != '\t' {
			b.Ungetc()
			return
		}
	}
}

// GetDecimal parses an optionally-signed, optionally-fractional decimal
// number directly from the buffer into an f64, returning the number of
// bytes consumed. If no digits are present at all, it consumes nothing and
// returns (0, 0).
func (b *Buffer) GetDecimal() (float64, int) {
	start := b.pos
	var text []byte

	c, status := b.Getc()
	if status == StatusOK && (c == '+' || c == '-') {
		text = append(text, c)
	} else if status == StatusOK {
		b.Ungetc()
	} else {
		return 0, 0
	}

	sawDigit := false
	for {
		c, status := b.Getc()
		if status != StatusOK || c < '0' || c > '9' {
			if status == StatusOK {
				b.Ungetc()
			}
			break
		}
		sawDigit = true
		text = append(text, c)
	}

	if c, status := b.Getc(); status == StatusOK && c == '.' {
		fracStart := len(text)
		text = append(text, c)
		for {
			c, status := b.Getc()
			if status != StatusOK || c < '0' || c > '9' {
				if status == StatusOK {
					b.Ungetc()
				}
				break
			}
			sawDigit = true
			text = append(text, c)
		}
		if len(text) == fracStart+1 {
			// Lone trailing dot with no fractional digits: put it back,
			// it isn't part of the number.
			text = text[:fracStart]
			b.Ungetc()
		}
	} else if status == StatusOK {
		b.Ungetc()
	}

	if !sawDigit {
		b.Ungetn(b.pos - start)
		return 0, 0
	}

	consumed := b.pos - start
	val := parseFloatBytes(text)
	return val, consumed
}

// GetIdentifier reads bytes while filter(byte) reports true, writing into
// dst (truncated to len(dst)) and returning the full matched string (which
// may be longer than dst if the caller wants to detect truncation).
func (b *Buffer) GetIdentifier(dst []byte, filter func(byte) bool) string {
	var out []byte
	for {
		c, status := b.Getc()
		if status != StatusOK || !filter(c) {
			if status == StatusOK {
				b.Ungetc()
			}
			break
		}
		out = append(out, c)
	}
	n := copy(dst, out)
	_ = n
	return string(out)
}

func parseFloatBytes(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	neg := false
	i := 0
	if b[0] == '+' || b[0] == '-' {
		neg = b[0] == '-'
		i++
	}
	var whole float64
	for ; i < len(b) && b[i] != '.'; i++ {
		whole = whole*10 + float64(b[i]-'0')
	}
	if i < len(b) && b[i] == '.' {
		i++
		frac := 0.0
		div := 1.0
		for ; i < len(b); i++ {
			frac = frac*10 + float64(b[i]-'0')
			div *= 10
		}
		whole += frac / div
	}
	if neg {
		whole = -whole
	}
	return whole
}
