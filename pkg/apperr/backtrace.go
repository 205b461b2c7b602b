package apperr

import (
	"fmt"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// BacktraceMode controls how much of an error's captured stack Render shows,
// matching the CLI's -b (short) / -B (long) flags from spec.md §6.
type BacktraceMode int

const (
	// NoBacktrace renders only the error message (the CLI's default).
	NoBacktrace BacktraceMode = iota
	// ShortBacktrace elides stdlib/runtime frames and stops at the first
	// frame inside the program's own entry point, per spec.md §7.
	ShortBacktrace
	// LongBacktrace renders every captured frame, stdlib included.
	LongBacktrace
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Render formats err for CLI output at the given backtrace mode. NoBacktrace
// is just err.Error(); Short/LongBacktrace append the stack captured at the
// point the *Error was constructed, walking Unwrap until a stackTracer turns
// up.
func Render(err error, mode BacktraceMode) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if mode == NoBacktrace {
		return msg
	}

	trace := findStackTrace(err)
	if trace == nil {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for _, frame := range trace {
		fn := fmt.Sprintf("%n", frame)
		loc := fmt.Sprintf("%s:%d", frame, frame)
		if mode == ShortBacktrace && isRuntimeFrame(fn, loc) {
			continue
		}
		b.WriteString("\n\t")
		b.WriteString(fn)
		b.WriteString("\n\t\t")
		b.WriteString(loc)
		if mode == ShortBacktrace && isProgramEntry(fn) {
			break
		}
	}
	return b.String()
}

// findStackTrace walks err's Unwrap chain (including the *Error.stack field
// populated at construction time, since that wrapper itself isn't exposed
// through Unwrap) looking for a pkg/errors stack trace.
func findStackTrace(err error) pkgerrors.StackTrace {
	for cur := err; cur != nil; cur = unwrapOnce(cur) {
		if tracer, ok := cur.(stackTracer); ok {
			return tracer.StackTrace()
		}
		if appErr, ok := cur.(*Error); ok && appErr.stack != nil {
			if tracer, ok := appErr.stack.(stackTracer); ok {
				return tracer.StackTrace()
			}
		}
	}
	return nil
}

func unwrapOnce(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func isRuntimeFrame(fn, loc string) bool {
	return strings.HasPrefix(fn, "runtime.") || strings.Contains(loc, runtime.GOROOT())
}

func isProgramEntry(fn string) bool {
	return fn == "main.main"
}
