package runner

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Task is what the runner needs from a task.
type Task interface {
	ID() string
	Name() string
	Delay() time.Duration
	Run(ctx context.Context) error
}

// State is a task's position in its lifecycle within one run.
type State string

const (
	StateWait  State = "wait"
	StateStart State = "start"
	StateDone  State = "done"
	StateError State = "error"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == StateDone || s == StateError }

// EventType is the bus event type for a transition into s, e.g. "task.start".
func (s State) EventType() string { return "task." + string(s) }

// TaskEvent is published on the event bus for every state transition.
type TaskEvent struct {
	RunStart time.Time     `json:"run_start"`
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	State    State         `json:"state"`
	At       time.Time     `json:"at"`
	Wait     time.Duration `json:"wait,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Result is the terminal outcome of one task.
type Result struct {
	Index     int
	ID        string
	Name      string
	State     State
	Scheduled time.Time // start epoch + delay
	Started   time.Time // zero if the action never began
	Finished  time.Time
	Err       error
}

// Lateness is how far after its scheduled time the action began.
func (r Result) Lateness() time.Duration {
	if r.Started.IsZero() {
		return 0
	}
	return r.Started.Sub(r.Scheduled)
}

// Report is the outcome of a whole batch, in configuration order.
type Report struct {
	Start    time.Time
	Finished time.Time
	Results  []Result
}

// Failed returns the results that ended in StateError.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == StateError {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded counts results that ended in StateDone.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.State == StateDone {
			n++
		}
	}
	return n
}

// Err joins every task failure, or returns nil when all tasks succeeded.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s (%s): %w", res.Name, res.ID, res.Err))
	}
	return errors.Join(errs...)
}
