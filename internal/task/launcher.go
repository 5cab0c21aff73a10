package task

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	logx "workstarter/pkg/logx"
)

// Launcher is the OS capability tasks act through.
//
// Both calls return once the open/start request has been handed to the OS;
// neither waits for the opened page or started program to finish.
type Launcher interface {
	OpenURL(ctx context.Context, rawURL, browser string) error
	StartProcess(ctx context.Context, path string) error
}

// OSLauncher opens URLs with the platform handler (xdg-open, open,
// url.dll) or a named browser, and starts programs directly without a shell.
type OSLauncher struct {
	Log logx.Logger
}

func NewOSLauncher(log logx.Logger) *OSLauncher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &OSLauncher{Log: log}
}

func (l *OSLauncher) OpenURL(ctx context.Context, rawURL, browser string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("empty url")
	}
	if _, err := url.Parse(rawURL); err != nil {
		return err
	}
	if b := strings.TrimSpace(browser); b != "" {
		return l.start(ctx, exec.Command(b, rawURL))
	}
	name, args := urlOpener(runtime.GOOS)
	return l.start(ctx, exec.Command(name, append(args, rawURL)...))
}

func (l *OSLauncher) StartProcess(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	cmd := exec.Command(path)
	if filepath.IsAbs(path) {
		// Programs picked in a file dialog often expect their own folder as cwd.
		cmd.Dir = filepath.Dir(path)
	}
	return l.start(ctx, cmd)
}

// start spawns cmd and reaps it in the background.
// exec.Command (not CommandContext): canceling the run must not kill what was launched.
func (l *OSLauncher) start(ctx context.Context, cmd *exec.Cmd) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	pid := cmd.Process.Pid
	l.Log.Debug("process started", logx.String("cmd", cmd.Path), logx.Int("pid", pid))
	go func() {
		if err := cmd.Wait(); err != nil {
			l.Log.Debug("process exited", logx.String("cmd", cmd.Path), logx.Int("pid", pid), logx.Err(err))
		}
	}()
	return nil
}

func urlOpener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// LauncherFuncs adapts plain functions to Launcher (tests, dry runs).
type LauncherFuncs struct {
	Open  func(ctx context.Context, rawURL, browser string) error
	Start func(ctx context.Context, path string) error
}

func (f LauncherFuncs) OpenURL(ctx context.Context, rawURL, browser string) error {
	if f.Open == nil {
		return fmt.Errorf("open url not supported")
	}
	return f.Open(ctx, rawURL, browser)
}

func (f LauncherFuncs) StartProcess(ctx context.Context, path string) error {
	if f.Start == nil {
		return fmt.Errorf("start process not supported")
	}
	return f.Start(ctx, path)
}
