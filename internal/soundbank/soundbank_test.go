package soundbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeBank(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadParsesBank(t *testing.T) {
	path := writeBank(t, "bank.yaml", `
waves: [sin, sqr]
noises: [white]
line_shapes: [hold, lin]
math_funcs: [abs]
`)
	b, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"sin", "sqr"}, b.Waves)
	require.Equal(t, []string{"white"}, b.Noises)
}

func TestLoadMergedConcatenatesInOrder(t *testing.T) {
	a := writeBank(t, "a.yaml", "waves: [sin]\n")
	b := writeBank(t, "b.yaml", "waves: [sqr]\nnoises: [pink]\n")

	nt, err := LoadMerged([]string{a, b})
	require.NoError(t, err)
	require.Equal(t, []string{"sin", "sqr"}, nt.Waves)
	require.Equal(t, []string{"pink"}, nt.Noises)
}

func TestLoadMergedPropagatesMissingFile(t *testing.T) {
	_, err := LoadMerged([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestDefaultBankCoversRequiredShapes(t *testing.T) {
	nt := DefaultBank()
	require.Contains(t, nt.LineShapes, "hold")
	require.Contains(t, nt.LineShapes, "lin")
	require.Contains(t, nt.LineShapes, "exp")
	require.Contains(t, nt.LineShapes, "log")
}
