package task

import "errors"

// ErrLaunchFailed wraps any failure of the OS-level open/start call.
// It is reported per task and never retried.
var ErrLaunchFailed = errors.New("launch failed")
