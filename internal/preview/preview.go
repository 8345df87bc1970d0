// Package preview renders waveform/ramp thumbnails for a compiled
// lang.Program, the audio-DSL analogue of the teacher's sprite/tile preview
// panels (internal/ui/panels/tile_viewer.go): a small values buffer
// rasterized to a 1-pixel-tall strip, then scaled up with
// golang.org/x/image/draw the way the devkit scales emulator framebuffers.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"scorelang/internal/lang"
)

// rawHeight is the height of the unscaled source strip: one row per sample
// band, matching the source's fixed-point waveform's amplitude resolution
// loosely (spec §3's Ramp is float32, but a thumbnail only needs enough
// vertical resolution to read the curve shape).
const rawHeight = 64

// RampThumbnail rasterizes r's Fill() curve over its TimeMs span (or
// oneShotMs samples if TimeMs is zero, i.e. a HOLD with no ramp) into a
// width x height RGBA image, scaled from a raw sample-count-wide strip
// using draw.CatmullRom, matching the teacher's nearest/bilinear-vs-quality
// trade-off discussion in ui_render.go but erring toward smoothness since
// this is an offline preview, not a per-frame render.
func RampThumbnail(r lang.Ramp, width, height int, oneShotMs uint32) *image.RGBA {
	rawWidth := int(r.TimeMs)
	if rawWidth == 0 {
		rawWidth = int(oneShotMs)
	}
	if rawWidth < 2 {
		rawWidth = 2
	}
	if rawWidth > 4096 {
		rawWidth = 4096 // thumbnails don't need per-millisecond fidelity
	}

	samples := make([]float32, rawWidth)
	cur := lang.NewFillCursor(r)
	lang.Fill(r, cur, samples, rawWidth, nil)

	raw := image.NewRGBA(image.Rect(0, 0, rawWidth, rawHeight))
	bg := color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff}
	trace := color.RGBA{R: 0x5a, G: 0xd7, B: 0xff, A: 0xff}
	draw.Draw(raw, raw.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	for x := 0; x < rawWidth; x++ {
		y := valueToRow(samples[x])
		raw.SetRGBA(x, y, trace)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), raw, raw.Bounds(), draw.Over, nil)
	return dst
}

// valueToRow maps a ramp value in roughly [-1, 1] (amp/pan/phase-normalized
// conventions used elsewhere in this compiler) to a row in [0, rawHeight).
// Values outside that range are clamped rather than rejected, since freq
// ramps routinely exceed it.
func valueToRow(v float32) int {
	norm := (v + 1) / 2
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	row := rawHeight - 1 - int(norm*float32(rawHeight-1))
	if row < 0 {
		row = 0
	}
	if row > rawHeight-1 {
		row = rawHeight - 1
	}
	return row
}

// WriteRampThumbnailPNG renders r and encodes it as a PNG to w.
func WriteRampThumbnailPNG(w io.Writer, r lang.Ramp, width, height int, oneShotMs uint32) error {
	img := RampThumbnail(r, width, height, oneShotMs)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("preview: encode png: %w", err)
	}
	return nil
}

// CarrierThumbnails renders one amplitude-ramp thumbnail per OpData with an
// explicitly-set amp ramp, across all of prog's events, in event order. It
// skips operators whose amp ramp was never set (ParamAmp absent), matching
// the teacher's preview panels skipping unpopulated asset slots.
func CarrierThumbnails(prog *lang.Program, width, height int) []*image.RGBA {
	var out []*image.RGBA
	for _, ev := range prog.Events {
		for _, od := range ev.OpData {
			if od.ParamsMask&lang.ParamAmp == 0 {
				continue
			}
			oneShot := od.TimeMs
			if oneShot == 0 {
				oneShot = lang.DefaultRampTimeMs
			}
			out = append(out, RampThumbnail(od.Amp, width, height, oneShot))
		}
	}
	return out
}
