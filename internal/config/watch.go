package config

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"

	logx "workstarter/pkg/logx"
)

// ChangeFunc receives the result of re-reading the file after a change.
// err wraps the same sentinels as Read.
type ChangeFunc func(cfg Configuration, err error)

// Watcher re-reads a configuration file whenever it changes on disk.
//
// Editors often produce several events per save (truncate, write, rename),
// so events are debounced and unchanged content is not reported twice.
type Watcher struct {
	path     string
	log      logx.Logger
	onChange ChangeFunc

	Debounce time.Duration

	mu       sync.Mutex
	lastHash uint64
	reported bool
}

func NewWatcher(path string, log logx.Logger, fn ChangeFunc) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{path: path, log: log, onChange: fn, Debounce: 250 * time.Millisecond}
}

// Check reads the file once and reports it, regardless of earlier results.
func (w *Watcher) Check() {
	w.reload(true)
}

func (w *Watcher) reload(force bool) {
	b, readErr := os.ReadFile(w.path)
	h := hashBytes(b)

	w.mu.Lock()
	unchanged := w.reported && readErr == nil && h == w.lastHash
	w.lastHash = h
	w.reported = true
	w.mu.Unlock()

	if unchanged && !force {
		w.log.Debug("config unchanged; skipping", logx.String("path", w.path))
		return
	}

	cfg, err := Read(w.path)
	if w.onChange != nil {
		w.onChange(cfg, err)
	}
}

// Run watches the file's directory until ctx is canceled.
//
// When fsnotify gets into a bad state the watcher may stop delivering events
// or close its channels; Run recreates it with exponential backoff.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		w.log.Debug("config change detected; scheduling reload", logx.String("path", w.path))
		timer = time.AfterFunc(w.Debounce, func() {
			if ctx.Err() != nil {
				return
			}
			w.reload(false)
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	wait := func(reason string, err error) bool {
		d := bo.NextBackOff()
		w.log.Warn(reason, logx.Err(err), logx.String("dir", dir), logx.Duration("backoff", d))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			if !wait("config watch init failed", err) {
				return nil
			}
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			if !wait("config watch add failed", err) {
				return nil
			}
			continue
		}

		bo.Reset()
		w.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					debounce()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if err == nil {
					continue
				}
				// Overflow means we may have missed events; reload once and keep going.
				if strings.Contains(strings.ToLower(err.Error()), "overflow") {
					w.log.Warn("config watch overflow; forcing reload", logx.Err(err))
					debounce()
					continue
				}
				w.log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
				if strings.Contains(strings.ToLower(err.Error()), "closed") {
					broken = true
				}
			}
		}

		_ = fw.Close()
		if !wait("config watcher stopped; restarting", fmt.Errorf("watcher closed")) {
			return nil
		}
	}
}

// hashBytes returns a stable 64-bit hash of bytes. Empty input returns 0.
func hashBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
