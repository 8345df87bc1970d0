// Command scorelx_devkit is a minimal Fyne visual front-end for this
// repository's compiler, trimmed from the teacher's cmd/corelx_devkit/main.go
// (no sprite/tile/emulator panels, since there is no runtime apu to drive
// here): a source pane, a Compile button, and a diagnostics list bound to
// the result of one lang.CompileSource call per click.
package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"scorelang/internal/lang"
	"scorelang/internal/soundbank"
)

const defaultTemplate = `W f440 a0.5 t1
W f220 a0.8 t1
`

type devKitState struct {
	window        fyne.Window
	sourceEntry   *widget.Entry
	diagnostics   []lang.Diagnostic
	diagList      *widget.List
	diagDetail    *widget.Label
	statusLabel   *widget.Label
}

func main() {
	a := app.New()
	w := a.NewWindow("scorelx devkit")

	s := &devKitState{window: w}
	s.sourceEntry = widget.NewMultiLineEntry()
	s.sourceEntry.SetText(defaultTemplate)

	s.diagDetail = widget.NewLabel("")
	s.diagDetail.Wrapping = fyne.TextWrapWord

	s.diagList = widget.NewList(
		func() int { return len(s.diagnostics) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(s.diagnostics[id].Error())
		},
	)
	s.diagList.OnSelected = func(id widget.ListItemID) {
		if id < len(s.diagnostics) {
			s.diagDetail.SetText(s.diagnostics[id].Error())
		}
	}

	s.statusLabel = widget.NewLabel("ready")

	compileBtn := widget.NewButton("Compile", func() { s.compile() })

	toolbar := container.NewHBox(compileBtn, layout.NewSpacer(), s.statusLabel)

	diagPane := container.NewBorder(widget.NewLabel("Diagnostics"), s.diagDetail, nil, nil, s.diagList)
	split := container.NewHSplit(container.NewScroll(s.sourceEntry), diagPane)
	split.Offset = 0.6

	w.SetContent(container.NewBorder(toolbar, nil, nil, nil, split))
	w.Resize(fyne.NewSize(900, 600))
	w.ShowAndRun()
}

// compile runs one CompileSource call over the editor's current text and
// refreshes the diagnostics list, mirroring the devkit's own runBuild
// without the emulator hookup that follows a successful build there.
func (s *devKitState) compile() {
	opts := &lang.CompileOptions{
		NamedConst: lang.DefaultNamedConst,
		MathFunc:   lang.DefaultMathFunc,
		Names:      soundbank.DefaultBank(),
	}
	result, err := lang.CompileSource(s.sourceEntry.Text, "devkit.score", opts)
	s.diagnostics = result.Diagnostics
	s.diagList.Refresh()

	switch {
	case err != nil && result.Program == nil:
		s.statusLabel.SetText(fmt.Sprintf("compile failed: %v", err))
	case len(result.Diagnostics) > 0:
		s.statusLabel.SetText(fmt.Sprintf("compiled with %d diagnostic(s)", len(result.Diagnostics)))
	default:
		s.statusLabel.SetText(fmt.Sprintf("ok: %d event(s), %d voice(s)", len(result.Program.Events), result.Program.VoiceCount))
	}
}
