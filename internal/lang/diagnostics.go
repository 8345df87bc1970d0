package lang

import (
	"fmt"
	"strings"

	"scorelang/internal/debug"
)

// Severity distinguishes warnings (reported but never abort a compile) from
// errors (reported, and the overall compile is marked failed, but most error
// kinds still let the compile continue to produce diagnostics for the rest
// of the source).
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stage identifies which pass raised a Diagnostic.
type Stage string

const (
	StageIO        Stage = "io"
	StageLexer     Stage = "lexer"
	StageNumber    Stage = "number"
	StageParser    Stage = "parser"
	StageTiming    Stage = "timing"
	StageFlatten   Stage = "flatten"
	StageLowering  Stage = "lowering"
)

// Category is a stable, greppable diagnostic code family, analogous to the
// teacher's DiagnosticCategory.
type Category string

const (
	CategoryIOError        Category = "IOError"
	CategoryLexicalInvalid Category = "LexicalInvalid"
	CategorySyntaxError    Category = "SyntaxUnexpected"
	CategorySemanticReject Category = "SemanticRejected"
	CategoryOverflow       Category = "Overflow"
	CategoryInternal       Category = "Internal"
)

// DiagnosticLocation is a secondary source position attached to a
// Diagnostic's Related list, directly modeled on corelx.DiagnosticLocation
// (e.g. "operator originally defined here" for a cycle-detection warning).
type DiagnosticLocation struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message,omitempty"`
}

// Diagnostic carries enough context to print a useful compiler message and
// enough structure for a caller to filter/aggregate programmatically.
type Diagnostic struct {
	Category  Category
	Code      string
	Message   string
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Severity  Severity
	Stage     Stage
	Notes     []string
	Related   []DiagnosticLocation
}

// diagnosticCode derives a stable, greppable code from a diagnostic's
// severity/stage/category, the way the teacher's call sites each supply an
// explicit "E_..." string literal; deriving it centrally here means every
// Errorf/Warnf call site gets one for free instead of having to thread a
// code argument through two dozen call sites by hand.
func diagnosticCode(sev Severity, stage Stage, cat Category) string {
	prefix := "E"
	if sev == SeverityWarning {
		prefix = "W"
	}
	return fmt.Sprintf("%s_%s_%s", prefix, strings.ToUpper(string(stage)), strings.ToUpper(string(cat)))
}

func (d Diagnostic) Error() string {
	if d.File != "" && d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	}
	if d.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// DiagnosticsError aggregates every Diagnostic raised during a compile. Its
// Error() reports the first one, matching the teacher's DiagnosticsError.
type DiagnosticsError struct {
	Diagnostics []Diagnostic
}

func (e *DiagnosticsError) Error() string {
	if e == nil || len(e.Diagnostics) == 0 {
		return ""
	}
	return e.Diagnostics[0].Error()
}

// HasErrors reports whether any diagnostic in the slice is an error (as
// opposed to a warning).
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sink collects diagnostics as a compile runs. It is not safe for
// concurrent use; one compile owns one sink.
type Sink struct {
	File   string
	Diags  []Diagnostic
	quiet  bool          // suppress warnings, matching C9's "quiet flag"
	logger *debug.Logger // optional trace logger; nil unless AttachLogger was called
}

func NewSink(file string, quiet bool) *Sink {
	return &Sink{File: file, quiet: quiet}
}

// AttachLogger wires a trace logger into this sink's compile. The parser,
// timing, flatten and lowering stages trace through the same logger via
// their *Sink, so the CLI's -v flag traces the whole pipeline
// instead of just the CLI's own summary lines.
func (s *Sink) AttachLogger(l *debug.Logger) {
	s.logger = l
}

// trace emits a stage-tagged trace entry if a logger is attached; it is a
// no-op otherwise so every call site below stays cheap when tracing is off.
func (s *Sink) trace(component debug.Component, line, col int, data map[string]interface{}, format string, args ...interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.LogAt(component, debug.LogLevelTrace, line, col, fmt.Sprintf(format, args...), data)
}

func (s *Sink) add(sev Severity, stage Stage, cat Category, line, col int, related []DiagnosticLocation, format string, args ...interface{}) {
	if sev == SeverityWarning && s.quiet {
		return
	}
	s.Diags = append(s.Diags, Diagnostic{
		Category: cat,
		Code:     diagnosticCode(sev, stage, cat),
		Message:  fmt.Sprintf(format, args...),
		File:     s.File,
		Line:     line,
		Column:   col,
		Severity: sev,
		Stage:    stage,
		Related:  related,
	})
}

func (s *Sink) Warnf(stage Stage, cat Category, line, col int, format string, args ...interface{}) {
	s.add(SeverityWarning, stage, cat, line, col, nil, format, args...)
}

func (s *Sink) Errorf(stage Stage, cat Category, line, col int, format string, args ...interface{}) {
	s.add(SeverityError, stage, cat, line, col, nil, format, args...)
}

// WarnfRelated is Warnf plus secondary source locations (e.g. C8's cycle
// detection pointing back at where the offending operator was first
// defined), mirroring corelx.SemanticAnalyzer.addDuplicateDiagnostic's use
// of Related.
func (s *Sink) WarnfRelated(stage Stage, cat Category, line, col int, related []DiagnosticLocation, format string, args ...interface{}) {
	s.add(SeverityWarning, stage, cat, line, col, related, format, args...)
}

func (s *Sink) HasErrors() bool {
	return HasErrors(s.Diags)
}

func (s *Sink) AsError() error {
	if !s.HasErrors() {
		return nil
	}
	return &DiagnosticsError{Diagnostics: s.Diags}
}

// NormalizeRanges fills EndLine/EndColumn from Line/Column wherever a call
// site only reported a point position, mirroring the teacher's own
// normalizeDiagnosticRanges pass over corelx.CompileResult.Diagnostics.
// Compile defers this so it runs exactly once, right before the sink's
// diagnostics are handed back to the caller.
func (s *Sink) NormalizeRanges() {
	normalizeDiagnosticRanges(s.Diags)
}

func normalizeDiagnosticRanges(diags []Diagnostic) {
	for i := range diags {
		if diags[i].Line > 0 && diags[i].EndLine == 0 {
			diags[i].EndLine = diags[i].Line
		}
		if diags[i].Line > 0 && diags[i].Column > 0 && diags[i].EndColumn == 0 {
			diags[i].EndColumn = diags[i].Column
		}
	}
}
