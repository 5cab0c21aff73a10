package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"workstarter/internal/config"
	"workstarter/internal/eventbus"
	"workstarter/internal/runtime/supervisor"
	"workstarter/internal/storage"
	"workstarter/internal/task"
	"workstarter/internal/task/runner"
	logx "workstarter/pkg/logx"
)

// Options configures an agent. The zero value runs against the user's
// configuration directory with the OS launcher.
type Options struct {
	// ConfigDir overrides the resolved configuration directory.
	ConfigDir string
	// Launcher performs the actions; nil means task.NewOSLauncher.
	Launcher task.Launcher
	// Now replaces time.Now (epoch and delay arithmetic).
	Now func() time.Time
	// Log, when set, is used as-is and the logging section is ignored.
	Log logx.Logger
	// NoHistory skips the history store (dry runs).
	NoHistory bool
}

// App is one agent invocation: load, launch everything, record, exit.
type App struct {
	dir     string
	cfgPath string
	cfg     config.Configuration

	now   func() time.Time
	start time.Time

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	tasks []task.Task
	ran   atomic.Bool
}

// New loads the configuration and prepares every task.
//
// A missing or malformed file yields an agent with no tasks. Descriptor
// errors are returned: a suspect batch never runs partially.
func New(opts Options) (*App, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	dir, err := config.ResolveDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	cfgPath := config.FilePath(dir)

	log := opts.Log
	bootstrap := log.IsZero()
	if bootstrap {
		log = logx.NewConsole("info")
	}

	cfg, err := config.Load(cfgPath, log.With(logx.String("comp", "config")))
	if err != nil {
		return nil, err
	}

	var logSvc *logx.Service
	if bootstrap {
		logSvc, log = logx.New(mapLoggingConfig(cfg.Logging))
	}
	log = log.With(logx.String("comp", "app"))

	var store storage.Store
	if !opts.NoHistory {
		if st, err := OpenHistory(dir, cfg, log.With(logx.String("comp", "storage"))); err != nil {
			log.Warn("run history disabled", logx.Err(err))
		} else if st != nil {
			store = st
		}
	}

	launcher := opts.Launcher
	if launcher == nil {
		launcher = task.NewOSLauncher(log.With(logx.String("comp", "launcher")))
	}
	tasks, err := task.Build(cfg.Tasks, launcher)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		if logSvc != nil {
			_ = logSvc.Close()
		}
		return nil, err
	}

	a := &App{
		dir:     dir,
		cfgPath: cfgPath,
		cfg:     cfg,
		now:     now,
		log:     log,
		logs:    logSvc,
		store:   store,
		tasks:   tasks,
	}
	// Every delay is measured from here.
	a.start = now()
	log.Info("agent ready",
		logx.String("config", cfgPath),
		logx.Int("tasks", len(tasks)),
		logx.Bool("history", store != nil),
		logx.Time("start", a.start),
	)
	return a, nil
}

func (a *App) ConfigPath() string                  { return a.cfgPath }
func (a *App) Configuration() config.Configuration { return a.cfg }
func (a *App) Tasks() []task.Task                  { return a.tasks }
func (a *App) Start() time.Time                    { return a.start }
func (a *App) Logger() logx.Logger                 { return a.log }

// Run launches every task at start+delay and returns once all have settled.
// Task failures are in the report; the error is reserved for the agent itself.
func (a *App) Run(ctx context.Context) (runner.Report, error) {
	if !a.ran.CompareAndSwap(false, true) {
		return runner.Report{}, runner.ErrAlreadyRan
	}
	runID := uuid.NewString()
	log := a.log.With(logx.String("run", runID))

	bus := eventbus.New()
	sup := supervisor.New(ctx, supervisor.WithLogger(log))
	defer sup.Cancel()
	closeEvents := func() {}
	if a.store != nil {
		// At most three transitions per task; the buffer covers all of them.
		events, unsub := bus.Subscribe(3*len(a.tasks) + 8)
		defer unsub()
		closeEvents = unsub
		rec := &recorder{runID: runID, store: a.store, log: log}
		// History outlives Ctrl-C: the launches already happened.
		recCtx := context.WithoutCancel(ctx)
		sup.Go("history.recorder", func(context.Context) error {
			return rec.consume(recCtx, events)
		})
	}

	rtasks := make([]runner.Task, len(a.tasks))
	for i, t := range a.tasks {
		rtasks[i] = t
	}
	rn := runner.New(a.start,
		runner.WithLogger(log.With(logx.String("comp", "runner"))),
		runner.WithBus(bus),
		runner.WithClock(a.now),
	)
	rep, err := rn.Run(ctx, rtasks)
	// The runner is done publishing; closing the subscription lets the
	// recorder drain what is buffered and return.
	closeEvents()
	if err != nil {
		return rep, err
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sup.Wait(waitCtx); err != nil {
		log.Warn("history recorder did not finish cleanly", logx.Err(err))
	}
	cancel()
	if n := bus.Dropped(); n > 0 {
		log.Warn("task events dropped", logx.Int64("dropped", int64(n)))
	}

	if a.store != nil {
		if err := a.store.AppendRun(context.WithoutCancel(ctx), a.runRecord(runID, rep)); err != nil {
			log.Warn("could not record run", logx.Err(err))
		}
	}

	for _, res := range rep.Failed() {
		log.Warn("task did not launch", logx.String("task", res.Name), logx.Err(res.Err))
	}
	log.Info("agent finished",
		logx.Int("tasks", len(rep.Results)),
		logx.Int("succeeded", rep.Succeeded()),
		logx.Int("failed", len(rep.Failed())),
	)
	return rep, nil
}

// Close releases history and log sinks.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			err = fmt.Errorf("close history: %w", cerr)
		}
		a.store = nil
	}
	if a.logs != nil {
		_ = a.logs.Close()
		a.logs = nil
	}
	return err
}

func (a *App) runRecord(runID string, rep runner.Report) storage.RunRecord {
	out := storage.RunRecord{
		ID:        runID,
		Start:     rep.Start,
		Finished:  rep.Finished,
		Tasks:     len(rep.Results),
		Succeeded: rep.Succeeded(),
		Failed:    len(rep.Failed()),
		Results:   make([]storage.TaskRecord, 0, len(rep.Results)),
	}
	for _, res := range rep.Results {
		d := a.tasks[res.Index].Descriptor()
		tr := storage.TaskRecord{
			Index:     res.Index,
			ID:        res.ID,
			Name:      res.Name,
			Type:      string(d.Type),
			Target:    d.Target(),
			State:     string(res.State),
			Scheduled: res.Scheduled,
			Started:   res.Started,
			Finished:  res.Finished,
		}
		if res.Err != nil {
			tr.Error = res.Err.Error()
		}
		out.Results = append(out.Results, tr)
	}
	return out
}
