// Package projectcfg loads the TOML project manifest that supplies a
// compile's named-constant table, default ramp-duration override, and
// sound-bank search paths — the file-level analogue of the teacher's
// corelx.BuildManifest/CompileOptions split, rendered as a project config
// file instead of a post-build artifact.
package projectcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"scorelang/internal/lang"
)

// Config is one project's compile-time configuration, decoded from a
// "scoreproject.toml" file.
type Config struct {
	// Project is free-form metadata, unused by the compiler itself but
	// carried so tooling (the devkit, CI) can label builds.
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`

	// Constants names pitch/pan-style named constants available to every
	// script compiled under this project, merged over (and overriding)
	// DefaultNamedConst.
	Constants map[string]float64 `toml:"constants"`

	// DefaultRampMs overrides lang.DefaultRampTimeMs for this project's
	// compiles, addressing the source's FIXME-marked default (spec §9a).
	// Zero means "use the compiler's built-in default".
	DefaultRampMs uint32 `toml:"default_ramp_ms"`

	// SoundBanks lists YAML sound-bank files (internal/soundbank) to load
	// and merge, in order, later entries overriding earlier ones on name
	// collision. Paths are resolved relative to the config file's directory.
	SoundBanks []string `toml:"sound_banks"`

	// Quiet mirrors lang.CompileOptions.Quiet: suppress warning-level
	// diagnostics for every compile under this project.
	Quiet bool `toml:"quiet"`

	dir string // directory the config file lived in, for resolving SoundBanks
}

// Load decodes path as a TOML project manifest.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("projectcfg: decode %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// SoundBankPaths returns SoundBanks resolved against the config file's
// directory.
func (c *Config) SoundBankPaths() []string {
	out := make([]string, len(c.SoundBanks))
	for i, p := range c.SoundBanks {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(c.dir, p)
		}
	}
	return out
}

// NamedConstFunc returns a lang.NamedConstFunc that checks this project's
// Constants table before falling back to lang.DefaultNamedConst, so a
// project can add or shadow note/pan names without losing the built-ins.
func (c *Config) NamedConstFunc() lang.NamedConstFunc {
	return func(name string) (float64, bool) {
		if v, ok := c.Constants[name]; ok {
			return v, true
		}
		return lang.DefaultNamedConst(name)
	}
}

// RampDefaultMs returns the project's ramp-duration override, or the
// compiler's built-in default if the project left it at zero.
func (c *Config) RampDefaultMs() uint32 {
	if c.DefaultRampMs == 0 {
		return lang.DefaultRampTimeMs
	}
	return c.DefaultRampMs
}

// Exists reports whether path names a readable file, used by callers (the
// CLI, the devkit) deciding whether to look for a project manifest at all
// before attempting to load one.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
