package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"workstarter/internal/eventbus"
	"workstarter/internal/runtime/supervisor"
	logx "workstarter/pkg/logx"
)

// ErrAlreadyRan is returned by a second Run: launching is not idempotent.
var ErrAlreadyRan = errors.New("runner already ran")

type Runner struct {
	start time.Time
	now   func() time.Time

	log logx.Logger
	bus eventbus.Bus

	ran atomic.Bool
}

type Option func(*Runner)

func WithLogger(log logx.Logger) Option { return func(r *Runner) { r.log = log } }

// WithBus publishes a TaskEvent for every state transition.
func WithBus(bus eventbus.Bus) Option { return func(r *Runner) { r.bus = bus } }

// WithClock replaces time.Now when computing remaining delays.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// New returns a runner whose delays count from start.
// start is read-only afterwards and shared by every task goroutine.
func New(start time.Time, opts ...Option) *Runner {
	r := &Runner{start: start, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	if r.log.IsZero() {
		r.log = logx.Nop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Runner) Start() time.Time { return r.start }

// Run dispatches every task concurrently and waits for all of them.
//
// Canceling ctx stops tasks that are still waiting (they end in StateError);
// actions already handed to the OS are not undone. Task failures are in the
// report, not in the returned error.
func (r *Runner) Run(ctx context.Context, tasks []Task) (Report, error) {
	if !r.ran.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRan
	}

	rep := Report{Start: r.start, Results: make([]Result, len(tasks))}
	r.log.Info("run started", logx.Int("tasks", len(tasks)))

	sup := supervisor.New(ctx, supervisor.WithLogger(r.log))
	defer sup.Cancel()
	for i, t := range tasks {
		// Each goroutine writes only its own slot.
		slot := &rep.Results[i]
		sup.Go("task."+t.ID(), func(ctx context.Context) error {
			*slot = r.runOne(ctx, i, t)
			return nil
		})
	}
	// Every goroutine settles on its own (timers end, launches return), so
	// this wait needs no deadline.
	_ = sup.Wait(context.Background())

	rep.Finished = r.now()
	failed := len(rep.Failed())
	log := r.log.With(logx.Int("tasks", len(tasks)), logx.Int("succeeded", rep.Succeeded()), logx.Int("failed", failed), logx.Duration("took", rep.Finished.Sub(r.start)))
	if failed > 0 {
		log.Warn("run finished with failures")
	} else {
		log.Info("run finished")
	}
	return rep, nil
}

func (r *Runner) runOne(ctx context.Context, idx int, t Task) Result {
	res := Result{
		Index:     idx,
		ID:        t.ID(),
		Name:      t.Name(),
		Scheduled: r.start.Add(t.Delay()),
	}
	log := r.log.With(logx.String("task", res.Name), logx.String("id", res.ID))

	// now is read here, at dispatch: a late goroutine waits correspondingly less.
	remaining := t.Delay() - r.now().Sub(r.start)
	if remaining < 0 {
		remaining = 0
	}
	r.publish(res, StateWait, remaining, nil)
	log.Debug("task.waiting", logx.Duration("delay", t.Delay()), logx.Duration("remaining", remaining))

	if err := waitFor(ctx, remaining); err != nil {
		res.State = StateError
		res.Err = fmt.Errorf("canceled before start: %w", err)
		res.Finished = r.now()
		log.Warn("task.canceled", logx.Err(err))
		r.publish(res, StateError, 0, res.Err)
		return res
	}

	res.Started = r.now()
	r.publish(res, StateStart, 0, nil)
	log.Debug("task.started", logx.Duration("late", res.Lateness()))

	err := safeRun(ctx, t)
	res.Finished = r.now()
	dur := res.Finished.Sub(res.Started)
	if err != nil {
		res.State = StateError
		res.Err = err
		log.Warn("task.failed", logx.Err(err), logx.Duration("dur", dur))
		r.publish(res, StateError, 0, err)
		return res
	}
	res.State = StateDone
	log.Info("task.completed", logx.Duration("dur", dur), logx.Duration("late", res.Lateness()))
	r.publish(res, StateDone, 0, nil)
	return res
}

// waitFor suspends for d; it is the only suspension point before a task's action.
func waitFor(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	tmr := time.NewTimer(d)
	defer tmr.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tmr.C:
		return nil
	}
}

// safeRun converts a task panic into an error so one bad task can't take the batch down.
func safeRun(ctx context.Context, t Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return t.Run(ctx)
}

func (r *Runner) publish(res Result, st State, wait time.Duration, err error) {
	if r.bus == nil {
		return
	}
	ev := TaskEvent{
		RunStart: r.start,
		ID:       res.ID,
		Name:     res.Name,
		State:    st,
		At:       r.now(),
		Wait:     wait,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	r.bus.Publish(eventbus.Event{Type: st.EventType(), Time: ev.At, Data: ev})
}
