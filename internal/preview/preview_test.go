package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"scorelang/internal/lang"
)

func TestRampThumbnailProducesRequestedSize(t *testing.T) {
	r := lang.Ramp{V0: -1, Vt: 1, TimeMs: 500, Shape: lang.ShapeLinear, Flags: lang.RampState | lang.RampGoal}
	img := RampThumbnail(r, 64, 16, 1000)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 16, img.Bounds().Dy())
}

func TestRampThumbnailFallsBackToOneShotWhenTimeZero(t *testing.T) {
	r := lang.Ramp{V0: 0.5, Flags: lang.RampState}
	img := RampThumbnail(r, 32, 8, 2000)
	require.Equal(t, 32, img.Bounds().Dx())
}

func TestWriteRampThumbnailPNGEncodesValidPNG(t *testing.T) {
	r := lang.Ramp{V0: 0, Vt: 1, TimeMs: 100, Shape: lang.ShapeExp, Flags: lang.RampState | lang.RampGoal}
	var buf bytes.Buffer
	require.NoError(t, WriteRampThumbnailPNG(&buf, r, 16, 16, 1000))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestCarrierThumbnailsSkipsUnsetAmp(t *testing.T) {
	prog := &lang.Program{
		Events: []lang.ProgEvent{
			{OpData: []lang.OpData{{OpID: 0}}},
			{OpData: []lang.OpData{{OpID: 1, ParamsMask: lang.ParamAmp, Amp: lang.Ramp{V0: 1, Flags: lang.RampState}, TimeMs: 500}}},
		},
	}
	thumbs := CarrierThumbnails(prog, 32, 8)
	require.Len(t, thumbs, 1)
}
