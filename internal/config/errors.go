package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the configuration file does not exist. Recoverable.
	ErrNotFound = errors.New("config not found")
	// ErrMalformed: the file is not a valid configuration document. Recoverable.
	ErrMalformed = errors.New("config malformed")
	// ErrUnknownTaskType: a descriptor's type is missing or not recognized.
	// Signals editor/runner version skew; the whole batch is rejected.
	ErrUnknownTaskType = errors.New("unknown task type")
	// ErrInvalidTask: a descriptor of a known type has invalid fields
	// (e.g. a negative or non-integer delay, a missing url/path).
	ErrInvalidTask = errors.New("invalid task")
)

// TaskError identifies the descriptor that failed to parse.
type TaskError struct {
	Index int
	Type  string
	Err   error
}

func (e *TaskError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("tasks[%d]: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("tasks[%d] (type %q): %v", e.Index, e.Type, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Fatal reports whether err must abort the run before any task is dispatched.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrMalformed)
}
