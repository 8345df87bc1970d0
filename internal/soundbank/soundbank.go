// Package soundbank loads the YAML sound-bank registry that supplies the
// wave/noise/line-shape/math-function name tables the runtime would
// otherwise publish (spec §6 "Expected callbacks from the runtime"). It
// lets the compiler's CLI and tests build a lang.NameTable without a real
// audio runtime attached, the way the teacher's BuildManifest stands in for
// a real cartridge header at build time.
package soundbank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"scorelang/internal/lang"
)

// Bank is one YAML sound-bank document: flat lists of names the symbol
// table registers under the wave/noise/line-shape/math-function type tags.
type Bank struct {
	Waves      []string `yaml:"waves"`
	Noises     []string `yaml:"noises"`
	LineShapes []string `yaml:"line_shapes"`
	MathFuncs  []string `yaml:"math_funcs"`
}

// Load decodes a single sound-bank YAML file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("soundbank: read %s: %w", path, err)
	}
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("soundbank: parse %s: %w", path, err)
	}
	return &b, nil
}

// LoadMerged loads every path in order and merges them into one NameTable;
// later banks' entries are appended after earlier ones (name collisions are
// left to the symbol table's bulk-insert, which lets later entries win).
func LoadMerged(paths []string) (*lang.NameTable, error) {
	nt := &lang.NameTable{}
	for _, p := range paths {
		b, err := Load(p)
		if err != nil {
			return nil, err
		}
		nt.Waves = append(nt.Waves, b.Waves...)
		nt.Noises = append(nt.Noises, b.Noises...)
		nt.LineShapes = append(nt.LineShapes, b.LineShapes...)
		nt.MathFuncs = append(nt.MathFuncs, b.MathFuncs...)
	}
	return nt, nil
}

// DefaultBank is the built-in name table used when a project supplies no
// sound-bank files at all, covering the shapes named in spec §3 ("hold,
// linear, ear-tuned exp, ear-tuned log") plus a handful of common
// oscillator/noise kinds.
func DefaultBank() *lang.NameTable {
	return &lang.NameTable{
		Waves:      []string{"sin", "sqr", "saw", "tri"},
		Noises:     []string{"white", "pink"},
		LineShapes: []string{"hold", "lin", "exp", "log"},
		MathFuncs:  []string{"abs", "sin", "cos", "sqrt", "exp", "log"},
	}
}
