package logx

import (
	"time"

	"github.com/rs/zerolog"
)

// Field adds one key to a log context. Later fields with the same key win.
type Field func(c zerolog.Context) zerolog.Context

func String(k, v string) Field { return func(c zerolog.Context) zerolog.Context { return c.Str(k, v) } }
func Int(k string, v int) Field { return func(c zerolog.Context) zerolog.Context { return c.Int(k, v) } }
func Int64(k string, v int64) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Int64(k, v) }
}
func Bool(k string, v bool) Field { return func(c zerolog.Context) zerolog.Context { return c.Bool(k, v) } }
func Duration(k string, v time.Duration) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Dur(k, v) }
}
func Time(k string, v time.Time) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Time(k, v) }
}
func Any(k string, v any) Field { return func(c zerolog.Context) zerolog.Context { return c.Interface(k, v) } }

// Err is a no-op for a nil error.
func Err(err error) Field {
	return func(c zerolog.Context) zerolog.Context {
		if err == nil {
			return c
		}
		return c.Err(err)
	}
}

func apply(zl zerolog.Logger, fields []Field) zerolog.Logger {
	if len(fields) == 0 {
		return zl
	}
	c := zl.With()
	for _, f := range fields {
		if f != nil {
			c = f(c)
		}
	}
	return c.Logger()
}
