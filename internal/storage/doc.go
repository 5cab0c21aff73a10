// Package storage keeps a history of agent runs.
//
// Each run appends one RunRecord (per-task outcomes included) and the task
// state transitions observed during it. History is best-effort: a store
// that cannot be opened disables history, it never blocks a run.
package storage
