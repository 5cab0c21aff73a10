package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path, nopLog())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Tasks == nil || len(cfg.Tasks) != 0 {
		t.Fatalf("Tasks = %#v, want empty non-nil slice", cfg.Tasks)
	}

	if _, err := Read(path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read error = %v, want ErrNotFound", err)
	}
}

func TestLoadMalformedIsEmpty(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{tasks: oops"},
		{name: "empty file", content: ""},
		{name: "tasks not a list", content: `{"tasks": {"type": "open_link"}}`},
		{name: "trailing data", content: `{"tasks": []}{"tasks": []}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, "config.json", tt.content)
			cfg, err := Load(path, nopLog())
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if len(cfg.Tasks) != 0 {
				t.Fatalf("Tasks = %#v, want empty", cfg.Tasks)
			}
			if _, err := Read(path); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Read error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoadUnknownTaskTypeIsFatal(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.json", `{"tasks":[{"type":"open_link","url":"https://a.example"},{"type":"launch_missile"}]}`)

	_, err := Load(path, nopLog())
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Fatalf("Load error = %v, want ErrUnknownTaskType", err)
	}
	if !Fatal(err) {
		t.Fatal("unknown task type must be fatal")
	}
	var te *TaskError
	if !errors.As(err, &te) {
		t.Fatalf("error %T does not carry the task index", err)
	}
	if te.Index != 1 || te.Type != "launch_missile" {
		t.Fatalf("TaskError = %+v, want index 1 type launch_missile", te)
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		task string
		want error
	}{
		{name: "missing type", task: `{"url":"https://a.example"}`, want: ErrUnknownTaskType},
		{name: "numeric type", task: `{"type":3}`, want: ErrUnknownTaskType},
		{name: "string delay", task: `{"type":"open_link","url":"https://a.example","delay":"5"}`, want: ErrInvalidTask},
		{name: "fractional delay", task: `{"type":"open_link","url":"https://a.example","delay":1.5}`, want: ErrInvalidTask},
		{name: "negative delay", task: `{"type":"open_program","path":"/bin/true","delay":-1}`, want: ErrInvalidTask},
		{name: "link without url", task: `{"type":"open_link"}`, want: ErrInvalidTask},
		{name: "program without path", task: `{"type":"open_program","delay":2}`, want: ErrInvalidTask},
		{name: "not an object", task: `"open_link"`, want: ErrInvalidTask},
		{name: "padded type", task: `{"type":" open_link ","url":"https://a.example"}`, want: ErrUnknownTaskType},
		{name: "blank url", task: `{"type":"open_link","url":"   "}`, want: ErrInvalidTask},
		{name: "blank path", task: `{"type":"open_program","path":"\t"}`, want: ErrInvalidTask},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("config.json", []byte(`{"tasks":[`+tt.task+`]}`))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse error = %v, want %v", err, tt.want)
			}
			if !Fatal(err) {
				t.Fatalf("descriptor error %v must be fatal", err)
			}
		})
	}
}

func TestParseDefaultsAndOrder(t *testing.T) {
	t.Parallel()
	doc := `{
  "tasks": [
    {"type": "open_program", "path": "/usr/bin/editor", "delay": 5},
    {"type": "open_link", "url": "https://mail.example", "browser": "firefox"},
    {"type": "open_link", "url": "https://chat.example", "delay": null, "extra": true}
  ]
}`
	cfg, err := Parse("config.json", []byte(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := []Descriptor{
		OpenProgram("/usr/bin/editor", 5),
		{Type: KindOpenLink, URL: "https://mail.example", Browser: "firefox"},
		OpenLink("https://chat.example", 0),
	}
	if !reflect.DeepEqual(cfg.Tasks, want) {
		t.Fatalf("Tasks = %#v\nwant %#v", cfg.Tasks, want)
	}
	if cfg.Logging != nil || cfg.History != nil {
		t.Fatalf("optional sections should stay nil: %+v %+v", cfg.Logging, cfg.History)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	doc := `
tasks:
  - type: open_link
    url: https://a.example
    delay: 3
history:
  driver: none
`
	cfg, err := Parse("config.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(cfg.Tasks) != 1 || cfg.Tasks[0] != OpenLink("https://a.example", 3) {
		t.Fatalf("Tasks = %#v", cfg.Tasks)
	}
	if cfg.History == nil || cfg.History.Driver != "none" {
		t.Fatalf("History = %+v", cfg.History)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	in := Configuration{Tasks: []Descriptor{
		OpenLink("https://a.example/path?q=1", 0),
		{Type: KindOpenLink, URL: "https://b.example", Browser: "chromium", Delay: 10},
		OpenProgram(`C:\Program Files\App\app.exe`, 7),
	}}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !reflect.DeepEqual(out.Tasks, in.Tasks) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", out.Tasks, in.Tasks)
	}

	// Rewriting an unchanged configuration yields the same bytes.
	first, _ := os.ReadFile(path)
	if err := Save(path, out); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Fatalf("rewrite changed content:\n%s\n---\n%s", first, second)
	}
}

func TestSaveReadKeepsValuesVerbatim(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	in := Configuration{Tasks: []Descriptor{
		OpenProgram("/opt/my tool ", 0),
		{Type: KindOpenLink, URL: " https://a.example", Browser: "firefox ", Delay: 1},
	}}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !reflect.DeepEqual(out.Tasks, in.Tasks) {
		t.Fatalf("values changed on the way back:\n got %#v\nwant %#v", out.Tasks, in.Tasks)
	}
}

func TestSaveRejectsBlankTarget(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	for _, d := range []Descriptor{OpenLink("   ", 0), OpenProgram(" ", 3)} {
		if err := Save(path, Configuration{Tasks: []Descriptor{d}}); !errors.Is(err, ErrInvalidTask) {
			t.Fatalf("Save(%+v) error = %v, want ErrInvalidTask", d, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not be written, stat err = %v", err)
	}
}

func TestParseYAMLRejectsNonStringKeys(t *testing.T) {
	t.Parallel()
	_, err := Parse("config.yml", []byte("tasks:\n  - type: open_link\n    url: https://a.example\n    1: x\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Parse error = %v, want ErrMalformed", err)
	}
	// Other extensions are never read as YAML.
	if _, err := Parse("config.json", []byte("tasks: []\n")); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Parse(json) error = %v, want ErrMalformed", err)
	}
}

func TestSaveEmptyWritesTaskList(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Configuration{}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"tasks\": []\n}\n" {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestSaveRejectsUnknownType(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	err := Save(path, Configuration{Tasks: []Descriptor{{Type: "launch_missile"}}})
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Fatalf("Save error = %v, want ErrUnknownTaskType", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("file should not be written, stat err = %v", statErr)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    Descriptor
		want string
	}{
		{d: OpenLink("https://mail.example.com/inbox", 0), want: "open site: mail.example.com"},
		{d: OpenProgram("/usr/bin/code", 0), want: "start program: code"},
		{d: OpenProgram(`C:\Tools\notepad.exe`, 0), want: "start program: notepad.exe"},
	}
	for _, tt := range tests {
		if got := tt.d.DisplayName(); got != tt.want {
			t.Fatalf("DisplayName(%+v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestResolveDir(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/ws-env")
	if got, err := ResolveDir("/tmp/ws-flag"); err != nil || got != "/tmp/ws-flag" {
		t.Fatalf("ResolveDir(override) = %q, %v", got, err)
	}
	if got, err := ResolveDir(""); err != nil || got != "/tmp/ws-env" {
		t.Fatalf("ResolveDir(env) = %q, %v", got, err)
	}
	if got := FilePath("/tmp/ws"); got != filepath.Join("/tmp/ws", "config.json") {
		t.Fatalf("FilePath = %q", got)
	}
}
