package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Config selects the sinks. Level defaults to info.
type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	// Path defaults to DefaultFilePath.
	Path string
}

// DefaultFilePath is <temp dir>/WorkStarter.log.
func DefaultFilePath() string {
	return filepath.Join(os.TempDir(), "WorkStarter.log")
}

// Service owns the sinks of one agent process.
//
// Sinks are opened once in New. Close releases the log file and redirects
// every logger derived from the service to the console (or nowhere, when
// the console is off), so late writers never touch a closed file.
type Service struct {
	out     *sink
	console io.Writer // nil when console output is off

	mu   sync.Mutex
	file *os.File
	path string
}

// New opens the configured sinks. A log file that cannot be opened is
// reported and replaced by console output; New never fails.
func New(cfg Config) (*Service, Logger) {
	s := &Service{}
	if cfg.Console {
		s.console = newConsoleWriter(os.Stdout)
	}

	var sinks []io.Writer
	if s.console != nil {
		sinks = append(sinks, s.console)
	}
	var fileErr error
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = DefaultFilePath()
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fileErr = fmt.Errorf("open log file %q: %w", path, err)
		} else {
			s.file, s.path = f, path
			sinks = append(sinks, f)
		}
	}
	if len(sinks) == 0 {
		// Nothing else would show the problem (or anything at all).
		s.console = newConsoleWriter(os.Stderr)
		sinks = append(sinks, s.console)
	}

	var w io.Writer = sinks[0]
	if len(sinks) > 1 {
		w = zerolog.MultiLevelWriter(sinks...)
	}
	s.out = &sink{w: w}

	log := fromZerolog(zerolog.New(s.out), cfg.Level)
	if fileErr != nil {
		log.Warn("file logging unavailable; logging to console", Err(fileErr))
	}
	return s, log
}

// FilePath returns the open log file, or "" when there is none.
func (s *Service) FilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Close is safe to call more than once.
func (s *Service) Close() error {
	var rest io.Writer = io.Discard
	if s.console != nil {
		rest = s.console
	}
	s.out.redirect(rest)

	s.mu.Lock()
	f := s.file
	s.file, s.path = nil, ""
	s.mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// sink serializes writes and can be pointed elsewhere while loggers hold it.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *sink) redirect(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func newConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   consoleTimeFormat,
		FormatCaller: func(i any) string { s, _ := i.(string); return s },
	}
}
