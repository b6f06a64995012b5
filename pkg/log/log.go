// Package log provides the structured logger used across aclcore. It wraps
// zerolog with per-package enable/disable toggles so that a host process can
// turn on diagnostics for a single subsystem (e.g. the compiler) without
// flooding output from the rest of the service.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
)

type traceKey struct{}

func init() {
	zerolog.CallerSkipFrameCount = 3
}

var pkgs = []string{}
var enabledLoggers = map[string]*zerolog.Logger{}

// Out is the log output writer.
var Out io.Writer = os.Stderr

// Mode "console" prints human-readable lines, "json" prints structured output.
var Mode = "console"

// Logger is a handle bound to one package name.
type Logger struct {
	pkg string
}

// ListRegisteredPackages returns the names of packages that have called New.
func ListRegisteredPackages() []string {
	return pkgs
}

// ListEnabledPackages returns the names of packages with output enabled.
func ListEnabledPackages() []string {
	out := []string{}
	for k, v := range enabledLoggers {
		if v.GetLevel() != zerolog.Disabled {
			out = append(out, k)
		}
	}
	return out
}

// EnableAll turns on logging for every package that has registered.
func EnableAll() {
	for _, p := range pkgs {
		Enable(p)
	}
}

// Enable turns on logging for a single package.
func Enable(pkg string) {
	l := build(pkg)
	enabledLoggers[pkg] = l
}

// Disable silences a single package.
func Disable(pkg string) {
	nop := zerolog.Nop()
	enabledLoggers[pkg] = &nop
}

func build(pkg string) *zerolog.Logger {
	pid := os.Getpid()
	zl := zerolog.New(os.Stderr).With().Str("pkg", pkg).Int("pid", pid).Timestamp().Caller().Logger()
	if Mode == "json" {
		zl = zl.Output(Out)
	} else {
		zl = zl.Output(zerolog.ConsoleWriter{Out: Out})
	}
	return &zl
}

// New registers and returns a Logger for pkg. Output is disabled until Enable
// is called, mirroring zerolog.Nop() cost for packages nobody cares about.
func New(pkg string) *Logger {
	pkgs = append(pkgs, pkg)
	if _, ok := enabledLoggers[pkg]; !ok {
		nop := zerolog.Nop()
		enabledLoggers[pkg] = &nop
	}
	return &Logger{pkg: pkg}
}

func find(pkg string) *zerolog.Logger {
	return enabledLoggers[pkg]
}

func trace(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTrace returns a child context carrying a trace identifier that every
// subsequent log line on this context will carry.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// Info logs a formatted message at info level.
func (l *Logger) Info(ctx context.Context, format string, args ...interface{}) {
	find(l.pkg).Info().Str("trace", trace(ctx)).Msg(fmt.Sprintf(format, args...))
}

// Debug logs a formatted message at debug level.
func (l *Logger) Debug(ctx context.Context, format string, args ...interface{}) {
	find(l.pkg).Debug().Str("trace", trace(ctx)).Msg(fmt.Sprintf(format, args...))
}

// Error logs err at error level.
func (l *Logger) Error(ctx context.Context, err error) {
	find(l.pkg).Error().Str("trace", trace(ctx)).Msg(err.Error())
}

// Panic logs reason and a stack trace at error level without calling panic.
func (l *Logger) Panic(ctx context.Context, reason string) {
	find(l.pkg).Error().Str("trace", trace(ctx)).Bool("panic", true).Msg(reason + "\n" + string(debug.Stack()))
}
