package logx

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func init() {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = consoleTimeFormat
}

// Logger is a structured logger. The zero value discards everything and
// reports IsZero, so callers can substitute a default.
type Logger struct {
	zl *zerolog.Logger
}

// Nop returns a logger that writes nothing but is not zero.
func Nop() Logger {
	zl := zerolog.Nop()
	return Logger{zl: &zl}
}

// NewConsole logs to stdout in the human-readable format. Used before the
// configuration is loaded, and by the editor.
func NewConsole(level string) Logger {
	return fromZerolog(zerolog.New(newConsoleWriter(os.Stdout)), level)
}

func fromZerolog(zl zerolog.Logger, level string) Logger {
	zl = zl.Level(parseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
	return Logger{zl: &zl}
}

func (l Logger) IsZero() bool { return l.zl == nil }

// With returns a logger that adds fields to every line.
func (l Logger) With(fields ...Field) Logger {
	if l.zl == nil || len(fields) == 0 {
		return l
	}
	zl := apply(*l.zl, fields)
	return Logger{zl: &zl}
}

func (l Logger) Trace(msg string, fields ...Field) { l.log(zerolog.TraceLevel, msg, fields) }
func (l Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l Logger) log(level zerolog.Level, msg string, fields []Field) {
	if l.zl == nil || level < l.zl.GetLevel() || level < zerolog.GlobalLevel() {
		return
	}
	zl := apply(*l.zl, fields)
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	// caller of Info/Warn/..., as file:line
	if _, file, line, ok := runtime.Caller(2); ok {
		e.Str(zerolog.CallerFieldName, filepath.Base(file)+":"+strconv.Itoa(line))
	}
	e.Msg(msg)
}

func parseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return def
}
