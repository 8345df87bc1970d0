// Command scoreplay auditions a compiled score by approximating each
// event's carrier as an audible sine tone, reusing the teacher's
// sdl.OpenAudioDevice/AUDIO_F32/QueueAudio pattern from internal/ui/ui.go
// (and cmd/corelx_devkit/main.go's SDL init sequence) almost verbatim in
// structure. It is an illustrative consumer of lang.Program, not a DSP
// engine: it does not implement the named wave/noise/line-shape kernels
// themselves, matching apu.sineFixed's own rough approximation.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"scorelang/internal/lang"
	"scorelang/internal/soundbank"
)

const sampleRate = 44100

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <input.score>\n", os.Args[0])
		os.Exit(1)
	}

	opts := &lang.CompileOptions{
		NamedConst: lang.DefaultNamedConst,
		MathFunc:   lang.DefaultMathFunc,
		Names:      soundbank.DefaultBank(),
	}
	result, err := lang.CompileFile(flag.Arg(0), opts)
	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if err != nil && result.Program == nil {
		fmt.Fprintf(os.Stderr, "scoreplay: compile failed: %v\n", err)
		os.Exit(1)
	}

	samples := renderProgram(result.Program)

	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		fmt.Fprintf(os.Stderr, "scoreplay: sdl init: %v\n", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_F32,
		Channels: 2,
		Samples:  4096,
	}
	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scoreplay: open audio device: %v\n", err)
		os.Exit(1)
	}
	defer sdl.CloseAudioDevice(dev)
	sdl.PauseAudioDevice(dev, false)

	if err := sdl.QueueAudio(dev, stereoBytes(samples)); err != nil {
		fmt.Fprintf(os.Stderr, "scoreplay: queue audio: %v\n", err)
		os.Exit(1)
	}

	durMs := 1000 * len(samples) / sampleRate
	for sdl.GetQueuedAudioSize(dev) > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Printf("scoreplay: played %d samples (%dms)\n", len(samples), durMs)
}

// renderProgram approximates prog as one continuous mono buffer: each event
// advances a running clock by WaitMs, and an OpData carrying a freq+amp
// ramp pair contributes a sine tone over its own TimeMs window starting at
// that clock position.
func renderProgram(prog *lang.Program) []float32 {
	totalSamples := int(prog.DurationMs) * sampleRate / 1000
	if totalSamples <= 0 {
		totalSamples = sampleRate // at least a second so an empty/short program isn't silent air
	}
	out := make([]float32, totalSamples)

	var clockMs uint32
	for _, ev := range prog.Events {
		clockMs += ev.WaitMs
		for _, od := range ev.OpData {
			if od.ParamsMask&lang.ParamFreq == 0 || od.ParamsMask&lang.ParamAmp == 0 {
				continue
			}
			mixSineTone(out, clockMs, od)
		}
	}
	return out
}

// mixSineTone adds od's tone into out starting at startMs. lang.Fill's
// cursor advances one sample per millisecond (the unit od.Freq/od.Amp's
// TimeMs is expressed in), so the ramp is first sampled at that native
// ms resolution and each ms tick is then held across the handful of
// audio samples it spans at sampleRate, rather than feeding Fill an
// audio-rate sample count it was never scaled for.
func mixSineTone(out []float32, startMs uint32, od lang.OpData) {
	msCount := int(od.TimeMs)
	if msCount <= 0 {
		return
	}

	freqCur := lang.NewFillCursor(od.Freq)
	ampCur := lang.NewFillCursor(od.Amp)
	freqs := make([]float32, msCount)
	amps := make([]float32, msCount)
	lang.Fill(od.Freq, freqCur, freqs, msCount, nil)
	lang.Fill(od.Amp, ampCur, amps, msCount, nil)

	startSample := int(startMs) * sampleRate / 1000
	totalSamples := msCount * sampleRate / 1000

	var phase float64
	for i := 0; i < totalSamples; i++ {
		idx := startSample + i
		if idx < 0 || idx >= len(out) {
			continue
		}
		ms := i * 1000 / sampleRate
		if ms >= msCount {
			ms = msCount - 1
		}
		phase += 2 * math.Pi * float64(freqs[ms]) / sampleRate
		out[idx] += amps[ms] * float32(math.Sin(phase))
	}
}

// stereoBytes duplicates a mono float32 buffer into interleaved L/R bytes,
// matching the teacher's own manual byte-layout in internal/ui/ui.go rather
// than reaching for an encoding/binary helper, since AUDIO_F32 expects
// native-endian float32 bit patterns.
func stereoBytes(mono []float32) []byte {
	out := make([]byte, len(mono)*2*4)
	for i, sample := range mono {
		b := (*[4]byte)(unsafe.Pointer(&sample))
		o := i * 8
		copy(out[o:o+4], b[:])
		copy(out[o+4:o+8], b[:])
	}
	return out
}
