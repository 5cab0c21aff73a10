package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free JSON Lines backend
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the persistence API used by the agent and the editor.
type Store interface {
	AppendRun(ctx context.Context, r RunRecord) error
	AppendEvent(ctx context.Context, e EventRecord) error
	// Runs returns up to limit runs, newest first. limit <= 0 means all.
	Runs(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

// RunRecord summarizes one agent invocation.
type RunRecord struct {
	ID        string       `json:"id"`
	Start     time.Time    `json:"start"`
	Finished  time.Time    `json:"finished"`
	Tasks     int          `json:"tasks"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []TaskRecord `json:"results,omitempty"`
}

// TaskRecord is the terminal outcome of one task within a run.
type TaskRecord struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Target    string    `json:"target"`
	State     string    `json:"state"`
	Scheduled time.Time `json:"scheduled"`
	Started   time.Time `json:"started,omitempty"`
	Finished  time.Time `json:"finished"`
	Error     string    `json:"error,omitempty"`
}

// EventRecord is one task state transition.
type EventRecord struct {
	RunID  string    `json:"run_id"`
	TaskID string    `json:"task_id"`
	Name   string    `json:"name"`
	State  string    `json:"state"`
	At     time.Time `json:"at"`
	Error  string    `json:"error,omitempty"`
}
