package lang

import (
	"math"

	"scorelang/internal/symtab"
)

// NamedConstFunc resolves a bare identifier (not followed immediately by
// "(") to a numeric constant — note-pitch names like C4/Df5, pan keywords
// L/C/R, and so on. The caller supplies this; the parser itself knows
// nothing about music theory.
type NamedConstFunc func(name string) (float64, bool)

// MathFuncLookup resolves an identifier followed by "(" to a unary math
// function (sin, abs, ...).
type MathFuncLookup func(name string) (func(float64) float64, bool)

// NumParser implements the C4 operator-precedence number/expression
// evaluator: SUB (parens) < ADT (+ -) < MLT (* / %) < POW (^) < NUM (atom).
type NumParser struct {
	s          *Scanner
	syms       *symtab.Table
	sink       *Sink
	namedConst NamedConstFunc
	mathFn     MathFuncLookup
}

func NewNumParser(s *Scanner, syms *symtab.Table, sink *Sink, namedConst NamedConstFunc, mathFn MathFuncLookup) *NumParser {
	return &NumParser{s: s, syms: syms, sink: sink, namedConst: namedConst, mathFn: mathFn}
}

// Parse reads one expression at the top ADT level, temporarily forcing the
// scanner to WSNone so whitespace can't hide inside a number, and restoring
// the previous level on return. ok is false if no expression was present at
// all (NaN result, silent) or if the result was +/-Inf (diagnostic raised).
func (p *NumParser) Parse() (val float64, ok bool) {
	prev := p.s.SetWSLevel(WSNone)
	defer p.s.SetWSLevel(prev)

	val = p.parseADT()
	if math.IsNaN(val) {
		return 0, false
	}
	if math.IsInf(val, 0) {
		p.sink.Errorf(StageNumber, CategorySemanticReject, p.s.Line(), p.s.Column(), "expression evaluates to infinity")
		return 0, false
	}
	return val, true
}

func (p *NumParser) parseADT() float64 {
	left := p.parseMLT()
	if math.IsNaN(left) {
		return left
	}
	for {
		c, ok := p.s.Getc()
		if !ok {
			return left
		}
		if c != '+' && c != '-' {
			p.s.Ungetc()
			return left
		}
		right := p.parseMLT()
		if math.IsNaN(right) {
			p.s.Ungetc() // the operator consumed nothing useful after it
			return left
		}
		if c == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *NumParser) parseMLT() float64 {
	left := p.parsePOW()
	if math.IsNaN(left) {
		return left
	}
	for {
		c, ok := p.s.Getc()
		if !ok {
			return left
		}
		if c != '*' && c != '/' && c != '%' {
			p.s.Ungetc()
			return left
		}
		right := p.parsePOW()
		if math.IsNaN(right) {
			p.s.Ungetc()
			return left
		}
		switch c {
		case '*':
			left *= right
		case '/':
			left /= right
		case '%':
			left = math.Mod(left, right)
		}
	}
}

// parsePOW is right-associative: 2^3^2 = 2^(3^2) = 512.
func (p *NumParser) parsePOW() float64 {
	left := p.parseAtom()
	if math.IsNaN(left) {
		return left
	}
	c, ok := p.s.Getc()
	if !ok {
		return left
	}
	if c != '^' {
		p.s.Ungetc()
		return left
	}
	right := p.parsePOW()
	if math.IsNaN(right) {
		p.s.Ungetc()
		return left
	}
	return math.Pow(left, right)
}

func (p *NumParser) parseAtom() float64 {
	c, ok := p.s.Getc()
	if !ok {
		return math.NaN()
	}

	switch {
	case c == '(':
		v := p.parseADT()
		p.s.Tryc(')')
		return p.maybeJuxtaposeMul(v)

	case c == '+' || c == '-':
		v := p.parseADT()
		if math.IsNaN(v) {
			p.s.Ungetc()
			return math.NaN()
		}
		if c == '-' {
			v = -v
		}
		return v

	case isDigit(c) || c == '.':
		p.s.Ungetc()
		val, ok := p.s.GetDecimal()
		if !ok {
			return math.NaN()
		}
		return p.maybeJuxtaposeMul(val)

	case c == '$':
		first, ok2 := p.s.Getc()
		var name string
		if ok2 {
			name = p.s.GetIdentifier(first)
		}
		if name == "" {
			p.sink.Errorf(StageNumber, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected variable name after '$'")
			return math.NaN()
		}
		item, _ := p.syms.Lookup(name, symtab.TypeVariable)
		return item.Payload.Number

	case isIdentStart(c):
		name := p.s.GetIdentifier(c)
		if next, ok2 := p.s.Getc(); ok2 && next == '(' {
			if p.mathFn != nil {
				if fn, found := p.mathFn(name); found {
					arg := p.parseADT()
					p.s.Tryc(')')
					if math.IsNaN(arg) {
						return math.NaN()
					}
					return fn(arg)
				}
			}
			p.s.Ungetc()
			p.sink.Errorf(StageNumber, CategorySemanticReject, p.s.Line(), p.s.Column(), "unknown math function %q", name)
			return math.NaN()
		} else if ok2 {
			p.s.Ungetc()
		}
		if p.namedConst != nil {
			if v, found := p.namedConst(name); found {
				return p.maybeJuxtaposeMul(v)
			}
		}
		p.sink.Errorf(StageNumber, CategorySemanticReject, p.s.Line(), p.s.Column(), "unknown named constant %q", name)
		return math.NaN()

	default:
		p.s.Ungetc()
		return math.NaN()
	}
}

// maybeJuxtaposeMul implements "juxtaposition after a closing ) [or a named
// constant] with no whitespace implies multiplication": 3(2)(1) = 6, but
// with separating whitespace the following parenthesized term is not
// multiplied in (it belongs to an outer context instead).
func (p *NumParser) maybeJuxtaposeMul(v float64) float64 {
	c, ok := p.s.Getc()
	if !ok {
		return v
	}
	if c != '(' {
		p.s.Ungetc()
		return v
	}
	rhs := p.parseADT()
	p.s.Tryc(')')
	if math.IsNaN(rhs) {
		return v
	}
	return v * p.maybeJuxtaposeMul(rhs)
}

