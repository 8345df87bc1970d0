// Command scorec is the production entrypoint for this repository's score
// compiler, modeled on the teacher's cmd/corelx/main.go flow (read source,
// run the pipeline, report diagnostics, write an artifact) plus an
// fsnotify-backed --watch flag for incremental recompiles during editing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"scorelang/internal/debug"
	"scorelang/internal/lang"
	"scorelang/internal/projectcfg"
	"scorelang/internal/soundbank"
)

func main() {
	var (
		outPath     = flag.String("o", "", "write the compiled program as JSON to this path (default: stdout)")
		watch       = flag.Bool("watch", false, "recompile the input on every save")
		quiet       = flag.Bool("quiet", false, "suppress warning-level diagnostics")
		projectTOML = flag.String("project", "", "path to a scoreproject.toml (defaults to scoreproject.toml next to the input)")
		verbose     = flag.Bool("v", false, "print component-level trace logging to stderr")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input.score>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	logger := debug.NewLogger(2000)
	defer logger.Shutdown()
	if *verbose {
		for _, c := range []debug.Component{
			debug.ComponentLexer, debug.ComponentNumber, debug.ComponentParser,
			debug.ComponentTiming, debug.ComponentFlatten, debug.ComponentLower,
			debug.ComponentCLI,
		} {
			logger.SetComponentEnabled(c, true)
		}
		logger.SetMinLevel(debug.LogLevelTrace)
	}

	opts, err := buildOptions(input, *projectTOML, *quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scorec: %v\n", err)
		os.Exit(1)
	}
	opts.Logger = logger

	runOnce := func() bool {
		return compileAndReport(input, *outPath, opts, logger)
	}

	if !*watch {
		if !runOnce() {
			os.Exit(1)
		}
		return
	}

	runOnce()
	if err := watchAndRecompile(input, runOnce, logger); err != nil {
		fmt.Fprintf(os.Stderr, "scorec: watch: %v\n", err)
		os.Exit(1)
	}
}

// buildOptions assembles lang.CompileOptions from an optional project
// manifest next to (or named by) the input file, falling back to the
// built-in default name table and named constants when no manifest exists.
func buildOptions(input, projectFlag string, quiet bool) (*lang.CompileOptions, error) {
	opts := &lang.CompileOptions{Quiet: quiet, NamedConst: lang.DefaultNamedConst, MathFunc: lang.DefaultMathFunc}

	cfgPath := projectFlag
	if cfgPath == "" {
		candidate := filepath.Join(filepath.Dir(input), "scoreproject.toml")
		if projectcfg.Exists(candidate) {
			cfgPath = candidate
		}
	}

	if cfgPath == "" {
		opts.Names = soundbank.DefaultBank()
		return opts, nil
	}

	cfg, err := projectcfg.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}
	opts.NamedConst = cfg.NamedConstFunc()
	opts.DefaultRampMs = cfg.RampDefaultMs()
	if !opts.Quiet {
		opts.Quiet = cfg.Quiet
	}

	if banks := cfg.SoundBankPaths(); len(banks) > 0 {
		names, err := soundbank.LoadMerged(banks)
		if err != nil {
			return nil, fmt.Errorf("load sound banks: %w", err)
		}
		opts.Names = names
	} else {
		opts.Names = soundbank.DefaultBank()
	}
	return opts, nil
}

// compileAndReport runs one compile, prints diagnostics to stderr, writes
// the resulting Program (if any) to outPath or stdout, and reports whether
// the compile produced a usable Program.
func compileAndReport(input, outPath string, opts *lang.CompileOptions, logger *debug.Logger) bool {
	verbose := logger.IsComponentEnabled(debug.ComponentCLI)
	if verbose {
		logger.Clear()
	}
	logger.Logf(debug.ComponentCLI, debug.LogLevelInfo, "compiling %s", input)

	result, err := lang.CompileFile(input, opts)
	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if verbose {
		for _, e := range logger.GetEntries() {
			fmt.Fprintln(os.Stderr, e.Format())
		}
	}
	if err != nil && result.Program == nil {
		logger.Logf(debug.ComponentCLI, debug.LogLevelError, "compile failed: %v", err)
		return false
	}

	data, marshalErr := json.MarshalIndent(result.Program, "", "  ")
	if marshalErr != nil {
		fmt.Fprintf(os.Stderr, "scorec: marshal program: %v\n", marshalErr)
		return false
	}

	if outPath == "" {
		fmt.Println(string(data))
		return true
	}
	if writeErr := os.WriteFile(outPath, data, 0644); writeErr != nil {
		fmt.Fprintf(os.Stderr, "scorec: write %s: %v\n", outPath, writeErr)
		return false
	}
	fmt.Printf("scorec: wrote %s\n", outPath)
	return true
}

// watchAndRecompile recompiles input every time fsnotify reports a write,
// the CLI analogue of the devkit's autosave.go debounce loop, but driven by
// the filesystem instead of a UI timer.
func watchAndRecompile(input string, runOnce func() bool, logger *debug.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(input)
	fmt.Printf("scorec: watching %s for changes (ctrl-c to stop)\n", input)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Logf(debug.ComponentCLI, debug.LogLevelInfo, "change detected: %s", ev.Op)
			runOnce()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "scorec: watch error: %v\n", watchErr)
		}
	}
}
