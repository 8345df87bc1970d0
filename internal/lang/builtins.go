package lang

import "math"

// pitchSemitone maps the seven natural note letters to a semitone offset
// from C, for the C4/Df5-style named-constant pitches the number parser
// resolves via DefaultNamedConst.
var pitchSemitone = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// DefaultNamedConst resolves note-pitch names (C4, Df5, Cs3, ...) and pan
// keywords (L, C, R) to a numeric value. Pitch names map to a frequency in
// Hz (A4 = 440); pan keywords map to -1/0/1.
func DefaultNamedConst(name string) (float64, bool) {
	switch name {
	case "L":
		return -1, true
	case "C":
		return 0, true
	case "R":
		return 1, true
	}
	if len(name) < 2 {
		return 0, false
	}
	letter := name[0]
	semi, ok := pitchSemitone[letter]
	if !ok {
		return 0, false
	}
	i := 1
	accidental := 0
	if i < len(name) {
		switch name[i] {
		case 's', '#':
			accidental = 1
			i++
		case 'f', 'b':
			accidental = -1
			i++
		}
	}
	if i >= len(name) {
		return 0, false
	}
	octave := 0
	neg := false
	j := i
	if name[j] == '-' {
		neg = true
		j++
	}
	if j >= len(name) {
		return 0, false
	}
	for ; j < len(name); j++ {
		if name[j] < '0' || name[j] > '9' {
			return 0, false
		}
		octave = octave*10 + int(name[j]-'0')
	}
	if neg {
		octave = -octave
	}
	semitoneFromA4 := (semi + accidental) - pitchSemitone['A'] + (octave-4)*12
	return 440 * math.Pow(2, float64(semitoneFromA4)/12), true
}

// DefaultMathFunc resolves a small set of unary math functions, the
// domain-neutral analogue of the runtime's names_for(math-func) callback.
func DefaultMathFunc(name string) (func(float64) float64, bool) {
	switch name {
	case "abs":
		return math.Abs, true
	case "sin":
		return math.Sin, true
	case "cos":
		return math.Cos, true
	case "sqrt":
		return math.Sqrt, true
	case "exp":
		return math.Exp, true
	case "log":
		return math.Log, true
	default:
		return nil, false
	}
}

// NameTable is the set of wave/noise/line-shape/math-function identifiers
// the runtime publishes (§6 "Expected callbacks"); the compiler itself
// never invents these names. See internal/soundbank for a YAML-backed
// loader that builds one of these from a project's sound-bank file.
type NameTable struct {
	Waves      []string
	Noises     []string
	LineShapes []string
	MathFuncs  []string
}
