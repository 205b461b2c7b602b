package logger

import (
	"flag"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// disabledLevel sits above charmlog's ErrorLevel so nothing is ever emitted.
const disabledLevel = charmlog.Level(1000)

// LogLevel is the severity threshold a Logger is configured with. Each of
// the `--error|--warn|--info|--debug|--trace` CLI flags selects one of these;
// DisabledLevel has no flag.
type LogLevel string

const (
	// TraceLevel is the most verbose level the CLI's --trace flag selects.
	// charmbracelet/log has nothing below Debug, so this aliases straight
	// to it; the distinction exists for the CLI's flag surface, not for a
	// distinct verbosity charmlog itself understands.
	TraceLevel    LogLevel = "trace"
	DebugLevel    LogLevel = "debug"
	InfoLevel     LogLevel = "info"
	WarnLevel     LogLevel = "warn"
	ErrorLevel    LogLevel = "error"
	DisabledLevel LogLevel = "disabled"
)

// ToCharmlogLevel maps a LogLevel onto the equivalent charmbracelet/log level.
// Unknown values default to InfoLevel rather than erroring, since log setup
// must never be a reason the build itself fails to start.
func (l LogLevel) ToCharmlogLevel() charmlog.Level {
	switch LogLevel(strings.ToLower(string(l))) {
	case TraceLevel, DebugLevel:
		return charmlog.DebugLevel
	case InfoLevel:
		return charmlog.InfoLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case DisabledLevel:
		return disabledLevel
	default:
		return charmlog.InfoLevel
	}
}

// Config controls Logger construction.
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig is used whenever NewLogger receives a nil Config outside of a
// test binary.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stdout,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// TestConfig produces a Config suitable for unit tests: logging disabled and
// output discarded, so test runs stay quiet by default.
func TestConfig() *Config {
	return &Config{
		Level:      DisabledLevel,
		Output:     io.Discard,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// IsTestEnvironment reports whether the current binary is a `go test` binary.
func IsTestEnvironment() bool {
	if flag.Lookup("test.v") != nil {
		return true
	}
	return strings.HasSuffix(os.Args[0], ".test")
}
