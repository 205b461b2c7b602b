// Package cli implements the command-line surface spec.md §6 names:
// TASK [OPTIONS]... positional invocation, -P project properties, worker
// count/backtrace/log-level/console global flags, and per-task option
// tails slurped against each task type's declared engine/option.Declarations.
// Grounded on the teacher's cli/root.go (cobra root command, environment
// file load, pkg/config.Manager wiring, pkg/logger attach), trimmed to the
// much smaller, fully-enumerated flag set a build tool actually has — this
// tool's flags are fixed and few, so they're declared directly on a
// spf13/pflag.FlagSet rather than through the teacher's reflect-driven,
// extensible definition.CreateRegistry() pattern built for a much larger
// generic configuration surface.
package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/assemble-build/assemble/pkg/apperr"
	"github.com/assemble-build/assemble/pkg/logger"
)

// GlobalFlags holds every flag spec.md §6 lists outside of a task's own
// option tail.
type GlobalFlags struct {
	Workers       int
	NoParallel    bool
	RerunTasks    bool
	Backtrace     bool
	LongBacktrace bool
	LogLevel      logger.LogLevel
	Console       string
	Properties    map[string]*string
}

// EffectiveWorkers resolves the worker count a build.Options.WorkerCount
// should use: --no-parallel always wins and forces one worker.
func (g GlobalFlags) EffectiveWorkers() int {
	if g.NoParallel {
		return 1
	}
	return g.Workers
}

// BacktraceMode maps the mutually exclusive -b/-B flags onto
// apperr.BacktraceMode.
func (g GlobalFlags) BacktraceMode() apperr.BacktraceMode {
	switch {
	case g.LongBacktrace:
		return apperr.LongBacktrace
	case g.Backtrace:
		return apperr.ShortBacktrace
	default:
		return apperr.NoBacktrace
	}
}

// ParseGlobalFlags scans argv for the fixed global flag set, leaving every
// other token (task names and their own option tails) in the returned
// remainder, in original order. Global flags are recognized only before
// the first task name: parsing stops there, and that token plus everything
// after it is returned untouched, since a per-task flag is only resolvable
// once that task's type is known (see ResolveTaskOptions). An unrecognized
// flag that appears before the first task name is dropped, not returned.
func ParseGlobalFlags(argv []string) (GlobalFlags, []string, error) {
	fs := pflag.NewFlagSet("assemble", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetInterspersed(false)
	fs.Usage = func() {}

	workers := fs.IntP("workers", "J", 0, "number of parallel workers")
	noParallel := fs.Bool("no-parallel", false, "force a single worker")
	rerun := fs.Bool("rerun-tasks", false, "ignore cached work fingerprints and rerun everything requested")
	backtrace := fs.BoolP("backtrace", "b", false, "show a short backtrace for failures")
	longBacktrace := fs.BoolP("long-backtrace", "B", false, "show a full backtrace for failures")
	errorLevel := fs.Bool("error", false, "log at error level")
	warnLevel := fs.Bool("warn", false, "log at warn level")
	infoLevel := fs.Bool("info", false, "log at info level")
	debugLevel := fs.Bool("debug", false, "log at debug level")
	traceLevel := fs.Bool("trace", false, "log at trace level")
	console := fs.String("console", "auto", "console output mode: auto, plain, rich")
	props := fs.StringArrayP("prop", "P", nil, "project property key[=value]")

	if err := fs.Parse(argv); err != nil {
		return GlobalFlags{}, nil, apperr.Newf(apperr.CodeInvalidIdentifier, nil, "parsing global flags: %s", err)
	}

	if *workers != 0 && *noParallel {
		return GlobalFlags{}, nil, apperr.Newf(
			apperr.CodeInvalidIdentifier, nil, "--workers and --no-parallel are mutually exclusive",
		)
	}
	if *backtrace && *longBacktrace {
		return GlobalFlags{}, nil, apperr.Newf(
			apperr.CodeInvalidIdentifier, nil, "-b and -B are mutually exclusive",
		)
	}

	level, err := resolveLogLevel(*errorLevel, *warnLevel, *infoLevel, *debugLevel, *traceLevel)
	if err != nil {
		return GlobalFlags{}, nil, err
	}

	properties, err := parseProperties(*props)
	if err != nil {
		return GlobalFlags{}, nil, err
	}

	return GlobalFlags{
		Workers:       *workers,
		NoParallel:    *noParallel,
		RerunTasks:    *rerun,
		Backtrace:     *backtrace,
		LongBacktrace: *longBacktrace,
		LogLevel:      level,
		Console:       *console,
		Properties:    properties,
	}, fs.Args(), nil
}

func resolveLogLevel(errorLevel, warnLevel, infoLevel, debugLevel, traceLevel bool) (logger.LogLevel, error) {
	set := 0
	level := logger.InfoLevel
	check := func(on bool, l logger.LogLevel) {
		if on {
			set++
			level = l
		}
	}
	check(errorLevel, logger.ErrorLevel)
	check(warnLevel, logger.WarnLevel)
	check(infoLevel, logger.InfoLevel)
	check(debugLevel, logger.DebugLevel)
	check(traceLevel, logger.TraceLevel)
	if set > 1 {
		return "", apperr.Newf(
			apperr.CodeInvalidIdentifier, nil,
			"--error, --warn, --info, --debug and --trace are mutually exclusive",
		)
	}
	return level, nil
}

// parseProperties splits each "-P key[=value]" token on its first "=",
// leaving the value nil when absent (a bare -P key).
func parseProperties(raw []string) (map[string]*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]*string, len(raw))
	for _, entry := range raw {
		key, value, hasValue := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, apperr.Newf(apperr.CodeInvalidIdentifier, map[string]any{"prop": entry}, "empty -P key in %q", entry)
		}
		if hasValue {
			v := value
			out[key] = &v
		} else {
			out[key] = nil
		}
	}
	return out, nil
}
