package app

import (
	"context"

	"workstarter/internal/eventbus"
	"workstarter/internal/storage"
	"workstarter/internal/task/runner"
	logx "workstarter/pkg/logx"
)

// recorder appends task transitions to history until events is closed.
type recorder struct {
	runID string
	store storage.Store
	log   logx.Logger

	written int
	failed  int
}

func (r *recorder) consume(ctx context.Context, events <-chan eventbus.Event) error {
	for e := range events {
		ev, ok := e.Data.(runner.TaskEvent)
		if !ok {
			continue
		}
		err := r.store.AppendEvent(ctx, storage.EventRecord{
			RunID:  r.runID,
			TaskID: ev.ID,
			Name:   ev.Name,
			State:  string(ev.State),
			At:     ev.At,
			Error:  ev.Error,
		})
		if err != nil {
			// Keep draining; one bad write should not stall the bus.
			if r.failed == 0 {
				r.log.Warn("could not record task event", logx.String("type", e.Type), logx.Err(err))
			}
			r.failed++
			continue
		}
		r.written++
	}
	r.log.Debug("history events recorded", logx.Int("written", r.written), logx.Int("failed", r.failed))
	return nil
}
