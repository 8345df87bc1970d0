package lang

import (
	"fmt"

	"scorelang/internal/debug"
	"scorelang/internal/iobuf"
	"scorelang/internal/symtab"
)

// CompileOptions configures one compile, mirroring the teacher's
// CompileOptions/CompileProject split between "compile a path" and
// "compile source text with path metadata".
type CompileOptions struct {
	Quiet      bool // suppress warnings, per C9's "quiet flag"
	NamedConst NamedConstFunc
	MathFunc   MathFuncLookup
	Names      *NameTable

	// DefaultRampMs overrides DefaultRampTimeMs for this compile (spec
	// §9a); zero means "use the compiler's built-in default".
	DefaultRampMs uint32

	// Logger, if set, receives trace entries from the parser, timing,
	// flatten and lowering stages as the compile runs, the way cmd/scorec's
	// -v flag drives it.
	Logger *debug.Logger
}

// CompileResult is what a compile always produces: either a Program (even
// if some diagnostics were issued) or nothing, if a hard error occurred.
type CompileResult struct {
	Program     *Program
	Diagnostics []Diagnostic
}

func defaultCompileOptions() CompileOptions {
	return CompileOptions{
		NamedConst:    DefaultNamedConst,
		MathFunc:      DefaultMathFunc,
		DefaultRampMs: DefaultRampTimeMs,
	}
}

// CompileFile opens path and compiles it, in one step (C1 owns the file
// handle for the duration of scanning; open failure is a hard IO error and
// the caller gets no Program).
func CompileFile(path string, opts *CompileOptions) (result *CompileResult, err error) {
	buf, openErr := iobuf.NewFromFile(path)
	if openErr != nil {
		diag := Diagnostic{
			Category: CategoryIOError,
			Code:     diagnosticCode(SeverityError, StageIO, CategoryIOError),
			Message:  openErr.Error(),
			File:     path,
			Severity: SeverityError,
			Stage:    StageIO,
		}
		return &CompileResult{Diagnostics: []Diagnostic{diag}}, &DiagnosticsError{Diagnostics: []Diagnostic{diag}}
	}
	defer buf.Close()
	return compile(buf, path, opts)
}

// CompileSource compiles in-memory source text, with path used only for
// diagnostic messages (tests use this so they don't need a filesystem).
func CompileSource(source, path string, opts *CompileOptions) (*CompileResult, error) {
	buf := iobuf.NewFromString(source)
	return compile(buf, path, opts)
}

func compile(buf *iobuf.Buffer, path string, opts *CompileOptions) (result *CompileResult, err error) {
	cfg := defaultCompileOptions()
	if opts != nil {
		mergeCompileOptions(&cfg, *opts)
	}

	defer func() {
		if r := recover(); r != nil {
			if result == nil {
				result = &CompileResult{}
			}
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Category: CategoryInternal,
				Message:  fmt.Sprintf("internal compiler panic: %v", r),
				File:     path,
				Severity: SeverityError,
				Stage:    StageLowering,
			})
			result.Program = nil
			err = &DiagnosticsError{Diagnostics: result.Diagnostics}
		}
	}()

	sink := NewSink(path, cfg.Quiet)
	defer sink.NormalizeRanges()
	if cfg.Logger != nil {
		sink.AttachLogger(cfg.Logger)
	}
	syms := symtab.New()
	registerNames(syms, cfg.Names)

	scanner := NewScanner(buf, syms, sink)
	parser := NewParser(scanner, syms, sink, cfg.NamedConst, cfg.MathFunc)
	if cfg.DefaultRampMs != 0 {
		parser.DefaultRampMs = cfg.DefaultRampMs
	}

	events := parser.ParseScript()
	if buf.Status() == iobuf.StatusError {
		sink.Errorf(StageIO, CategoryIOError, 0, 0, "read error: %v", buf.Err())
		return &CompileResult{Diagnostics: sink.Diags}, sink.AsError()
	}

	RunTimingPassWithDefault(events, sink, parser.DefaultRampMs)
	events = FlattenEvents(events, sink)

	prog := Lower(events, sink)
	if hasHardError(sink.Diags) {
		return &CompileResult{Diagnostics: sink.Diags}, sink.AsError()
	}
	if parser.AmpMultSet {
		applyAmpMult(prog, parser.AmpMult)
	}
	prog.AmpDivVoices = !parser.AmpMultSet
	prog.Name = path

	result = &CompileResult{Program: prog, Diagnostics: sink.Diags}
	return result, sink.AsError()
}

// hasHardError reports whether any diagnostic is one of the kinds that
// leave a compile without a usable Program (Overflow, Internal; IO is
// handled separately before lowering ever runs).
func hasHardError(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError && (d.Category == CategoryOverflow || d.Category == CategoryInternal) {
			return true
		}
	}
	return false
}

func mergeCompileOptions(dst *CompileOptions, src CompileOptions) {
	dst.Quiet = src.Quiet
	if src.NamedConst != nil {
		dst.NamedConst = src.NamedConst
	}
	if src.MathFunc != nil {
		dst.MathFunc = src.MathFunc
	}
	if src.Names != nil {
		dst.Names = src.Names
	}
	if src.DefaultRampMs != 0 {
		dst.DefaultRampMs = src.DefaultRampMs
	}
	if src.Logger != nil {
		dst.Logger = src.Logger
	}
}

func registerNames(syms *symtab.Table, names *NameTable) {
	if names == nil {
		return
	}
	var entries []symtab.BulkEntry
	for i, n := range names.Waves {
		entries = append(entries, symtab.BulkEntry{Name: n, Type: symtab.TypeWave, ID: uint32(i)})
	}
	for i, n := range names.Noises {
		entries = append(entries, symtab.BulkEntry{Name: n, Type: symtab.TypeNoise, ID: uint32(i)})
	}
	for i, n := range names.LineShapes {
		entries = append(entries, symtab.BulkEntry{Name: n, Type: symtab.TypeLineShape, ID: uint32(i)})
	}
	for i, n := range names.MathFuncs {
		entries = append(entries, symtab.BulkEntry{Name: n, Type: symtab.TypeMathFunc, ID: uint32(i)})
	}
	syms.BulkInsert(entries)
}

// applyAmpMult folds the "S a=<mult>" setting into every event's carrier amp
// state, per scenario 5: the program's amp values are pre-multiplied by the
// script-level ampmult setting, rather than left for the runtime to divide
// by voice count.
func applyAmpMult(prog *Program, mult float64) {
	carriers := make(map[int]bool)
	for _, ev := range prog.Events {
		if ev.VoiceData == nil {
			continue
		}
		for _, ref := range ev.VoiceData.OpList {
			if ref.UseKind == UseCarr {
				carriers[ref.OpID] = true
			}
		}
	}
	for i := range prog.Events {
		for j := range prog.Events[i].OpData {
			od := &prog.Events[i].OpData[j]
			if carriers[od.OpID] && od.ParamsMask&ParamAmp != 0 {
				od.Amp.V0 *= float32(mult)
				od.Amp.Vt *= float32(mult)
			}
		}
	}
}

