package logx

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{in: "debug", want: zerolog.DebugLevel},
		{in: " WARNING ", want: zerolog.WarnLevel},
		{in: "error", want: zerolog.ErrorLevel},
		{in: "", want: zerolog.InfoLevel},
		{in: "nonsense", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in, zerolog.InfoLevel); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZeroLoggerIsNoop(t *testing.T) {
	t.Parallel()
	var log Logger
	if !log.IsZero() {
		t.Fatal("zero Logger must report IsZero")
	}
	log.With(String("a", "b")).Error("dropped", Err(os.ErrClosed))
	if Nop().IsZero() {
		t.Fatal("Nop must not report IsZero")
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("decode log line: %v (%s)", err, sc.Text())
		}
		out = append(out, m)
	}
	return out
}

func TestServiceFileSink(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "agent.log")
	svc, log := New(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	if svc.FilePath() != path {
		t.Fatalf("FilePath = %q, want %q", svc.FilePath(), path)
	}

	log = log.With(String("comp", "test"), String("run", "r1"))
	log.Debug("hello", Int("n", 3), String("run", "r2"))
	log.Trace("below level")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	m := lines[0]
	if m["comp"] != "test" || m["message"] != "hello" || m["n"] != float64(3) || m["level"] != "debug" {
		t.Fatalf("unexpected log line: %v", m)
	}
	if c, _ := m["caller"].(string); c == "" {
		t.Fatalf("caller missing: %v", m)
	}
}

func TestLoggingAfterCloseLeavesFileAlone(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "agent.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	derived := log.With(String("comp", "launcher"))
	derived.Info("before close")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if svc.FilePath() != "" {
		t.Fatalf("FilePath after Close = %q", svc.FilePath())
	}

	// A child process exiting late still logs through derived loggers.
	derived.Warn("after close")
	log.Error("after close")

	if lines := readLines(t, path); len(lines) != 1 || lines[0]["message"] != "before close" {
		t.Fatalf("file lines = %v", lines)
	}
}

func TestServiceFileSinkFallback(t *testing.T) {
	t.Parallel()
	bad := filepath.Join(t.TempDir(), "missing", "dir", "agent.log")
	svc, log := New(Config{File: FileConfig{Enabled: true, Path: bad}})
	defer svc.Close()
	if svc.FilePath() != "" {
		t.Fatalf("FilePath = %q, want none", svc.FilePath())
	}
	if log.IsZero() {
		t.Fatal("fallback logger must be usable")
	}
	log.Info("still logging")
}
