package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	logx "workstarter/pkg/logx"
)

// Read reads and parses the configuration at path.
//
// Errors wrap ErrNotFound, ErrMalformed, ErrUnknownTaskType or ErrInvalidTask.
// The editor uses Read directly so it never overwrites a file it could not parse.
func Read(path string) (Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Empty(), fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Empty(), err
	}
	return Parse(path, b)
}

// Load reads the configuration for a run.
//
// A missing or malformed file is logged and yields an empty configuration
// with a nil error. Descriptor errors (unknown type, invalid fields) and I/O
// errors other than "not found" are returned and must abort the run.
func Load(path string, log logx.Logger) (Configuration, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg, err := Read(path)
	switch {
	case err == nil:
		log.Debug("config loaded", logx.String("path", path), logx.Int("tasks", len(cfg.Tasks)))
		return cfg, nil
	case errors.Is(err, ErrNotFound):
		log.Warn("config file not found; no tasks to run", logx.String("path", path))
		return Empty(), nil
	case errors.Is(err, ErrMalformed):
		log.Error("config file could not be parsed; no tasks to run", logx.String("path", path), logx.Err(err))
		return Empty(), nil
	default:
		return Empty(), err
	}
}

// Parse decodes a configuration document. path is only used to pick the
// format by extension (.yaml/.yml are coerced to JSON first).
func Parse(path string, data []byte) (Configuration, error) {
	jb, err := jsonDocument(path, data)
	if err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var doc struct {
		Tasks   []json.RawMessage `json:"tasks"`
		Logging *LoggingConfig    `json:"logging,omitempty"`
		History *HistoryConfig    `json:"history,omitempty"`
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	if err := dec.Decode(&doc); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Empty(), fmt.Errorf("%w: trailing data", ErrMalformed)
		}
		return Empty(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	cfg := Configuration{
		Tasks:   make([]Descriptor, 0, len(doc.Tasks)),
		Logging: doc.Logging,
		History: doc.History,
	}
	for i, raw := range doc.Tasks {
		d, err := decodeDescriptor(raw)
		if err != nil {
			return Empty(), &TaskError{Index: i, Type: rawType(raw), Err: err}
		}
		cfg.Tasks = append(cfg.Tasks, d)
	}
	return cfg, nil
}

func decodeDescriptor(raw []byte) (Descriptor, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Descriptor{}, fmt.Errorf("%w: descriptor must be an object", ErrInvalidTask)
	}

	var typ string
	if rt, ok := fields["type"]; ok {
		if err := json.Unmarshal(rt, &typ); err != nil {
			return Descriptor{}, fmt.Errorf("%w: type must be a string", ErrUnknownTaskType)
		}
	}
	// Type names match exactly, like every other key.
	kind := Kind(typ)
	if !kind.Known() {
		if typ == "" {
			return Descriptor{}, fmt.Errorf("%w: type is missing", ErrUnknownTaskType)
		}
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownTaskType, typ)
	}

	d := Descriptor{Type: kind}
	var err error
	switch kind {
	case KindOpenLink:
		if d.URL, err = stringField(fields, "url"); err != nil {
			return Descriptor{}, err
		}
		if d.Browser, err = stringField(fields, "browser"); err != nil {
			return Descriptor{}, err
		}
	case KindOpenProgram:
		if d.Path, err = stringField(fields, "path"); err != nil {
			return Descriptor{}, err
		}
	}
	if d.Delay, err = delayField(fields); err != nil {
		return Descriptor{}, err
	}
	if err := ValidateDescriptor(d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidTask, key)
	}
	// Kept verbatim so Save writes back exactly what was read.
	return s, nil
}

// delayField accepts a JSON integer (absent or null means 0).
func delayField(fields map[string]json.RawMessage) (int64, error) {
	raw, ok := fields["delay"]
	if !ok || string(raw) == "null" {
		return 0, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	_ = dec.Decode(&v)
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: delay must be a number, got %s", ErrInvalidTask, string(raw))
	}
	secs, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: delay must be a whole number of seconds, got %s", ErrInvalidTask, n.String())
	}
	return secs, nil
}

func rawType(raw []byte) string {
	var head struct {
		Type any `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.Type == nil {
		return ""
	}
	return fmt.Sprint(head.Type)
}
