package projectcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scoreproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDecodesConstantsAndSoundBanks(t *testing.T) {
	path := writeConfig(t, `
default_ramp_ms = 250
sound_banks = ["banks/default.yaml"]
quiet = true

[project]
name = "demo"

[constants]
Kick = 60
Snare = 200
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.Project.Name)
	require.EqualValues(t, 250, cfg.DefaultRampMs)
	require.True(t, cfg.Quiet)
	require.InDelta(t, 60, cfg.Constants["Kick"], 0.0001)

	banks := cfg.SoundBankPaths()
	require.Len(t, banks, 1)
	require.Equal(t, filepath.Join(filepath.Dir(path), "banks/default.yaml"), banks[0])
}

func TestNamedConstFuncFallsBackToBuiltins(t *testing.T) {
	path := writeConfig(t, `
[constants]
Kick = 60
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	fn := cfg.NamedConstFunc()
	v, ok := fn("Kick")
	require.True(t, ok)
	require.InDelta(t, 60, v, 0.0001)

	v, ok = fn("A4")
	require.True(t, ok)
	require.InDelta(t, 440, v, 0.0001)

	_, ok = fn("NotAThing")
	require.False(t, ok)
}

func TestRampDefaultMsFallsBackWhenUnset(t *testing.T) {
	path := writeConfig(t, `name = "no-ramp"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 1000, cfg.RampDefaultMs())
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	require.False(t, Exists(filepath.Join(dir, "missing.toml")))
	path := writeConfig(t, "name = \"x\"")
	require.True(t, Exists(path))
	require.False(t, Exists(dir))
}
