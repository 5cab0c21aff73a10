// Package task turns persisted descriptors into runnable tasks.
//
// The variant set is closed (open_link, open_program). New dispatches on the
// descriptor type and rejects anything else, so a runner built from an older
// release never silently skips a task type it does not know.
//
// Run performs exactly one external side effect and is not idempotent:
// calling it twice opens the page or starts the program twice.
package task
