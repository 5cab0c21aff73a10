package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Kind is the task type discriminator persisted as "type".
// The set is closed; anything else is rejected when parsing.
type Kind string

const (
	KindOpenLink    Kind = "open_link"
	KindOpenProgram Kind = "open_program"
)

// Kinds lists every known task type in display order.
func Kinds() []Kind { return []Kind{KindOpenLink, KindOpenProgram} }

func (k Kind) Known() bool {
	switch k {
	case KindOpenLink, KindOpenProgram:
		return true
	default:
		return false
	}
}

// Configuration is the persisted document:
//
//	{ "tasks": [ ... ], "logging": {...}, "history": {...} }
//
// Only tasks are written by the editor; logging and history are optional
// agent settings and default when omitted.
type Configuration struct {
	Tasks   []Descriptor   `json:"tasks"`
	Logging *LoggingConfig `json:"logging,omitempty"`
	History *HistoryConfig `json:"history,omitempty"`
}

// Empty returns a configuration with no tasks.
func Empty() Configuration {
	return Configuration{Tasks: []Descriptor{}}
}

// Descriptor is the persisted form of one task.
//
// Exactly one of URL (open_link) or Path (open_program) is meaningful;
// Browser only applies to open_link. Delay is in whole seconds after the
// agent starts. Descriptors compare with ==.
type Descriptor struct {
	Type    Kind   `json:"type" validate:"required"`
	URL     string `json:"url,omitempty" validate:"required_if=Type open_link"`
	Browser string `json:"browser,omitempty"`
	Path    string `json:"path,omitempty" validate:"required_if=Type open_program"`
	Delay   int64  `json:"delay" validate:"gte=0,lte=9223372036"`
}

// OpenLink builds an open_link descriptor.
func OpenLink(rawURL string, delay int64) Descriptor {
	return Descriptor{Type: KindOpenLink, URL: rawURL, Delay: delay}
}

// OpenProgram builds an open_program descriptor.
func OpenProgram(path string, delay int64) Descriptor {
	return Descriptor{Type: KindOpenProgram, Path: path, Delay: delay}
}

// Target returns the URL or path depending on the type.
func (d Descriptor) Target() string {
	if d.Type == KindOpenProgram {
		return d.Path
	}
	return d.URL
}

// DisplayName is a short human label, e.g. "open site: example.com".
func (d Descriptor) DisplayName() string {
	switch d.Type {
	case KindOpenLink:
		host := d.URL
		if u, err := url.Parse(d.URL); err == nil && u.Host != "" {
			host = u.Host
		}
		return "open site: " + host
	case KindOpenProgram:
		// Paths written on Windows keep their separators on every platform.
		p := strings.ReplaceAll(d.Path, `\`, "/")
		return "start program: " + filepath.Base(filepath.FromSlash(p))
	default:
		return fmt.Sprintf("unknown task %q", string(d.Type))
	}
}

// MarshalJSON writes only the fields that belong to the descriptor's type.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type    Kind   `json:"type"`
		URL     string `json:"url,omitempty"`
		Path    string `json:"path,omitempty"`
		Browser string `json:"browser,omitempty"`
		Delay   int64  `json:"delay"`
	}
	w := wire{Type: d.Type, Delay: d.Delay}
	switch d.Type {
	case KindOpenLink:
		w.URL = d.URL
		w.Browser = d.Browser
	case KindOpenProgram:
		w.Path = d.Path
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, string(d.Type))
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a single descriptor, rejecting unknown types.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	got, err := decodeDescriptor(b)
	if err != nil {
		return err
	}
	*d = got
	return nil
}

// LoggingConfig controls the agent's log sinks.
//
// Defaults (when the section is omitted):
//   - level: "info"
//   - console: true
//   - file: enabled, at <temp dir>/WorkStarter.log
type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// HistoryConfig controls the optional run history.
//
// Example:
//
//	"history": { "driver": "sqlite", "path": "/home/me/.config/WorkStarter/history.db" }
//
// Driver is "file" (default), "sqlite" or "none". An empty path is resolved
// next to config.json.
type HistoryConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
}
