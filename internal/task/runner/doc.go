// Package runner executes one batch of tasks.
//
// Every task's delay is measured from a single start epoch captured when the
// agent is constructed: a task fires at roughly start+delay, however late its
// goroutine was dispatched. All tasks are dispatched at once; Run returns only
// after each one has finished, failed, or been canceled while waiting.
// A failure never affects sibling tasks and nothing is retried.
package runner
