package task

import (
	"context"
	"fmt"
	"time"

	"workstarter/internal/config"
)

// Task is one configured action plus its delay.
type Task interface {
	// ID is stable within a run ("0", "1", ...), following config order.
	ID() string
	Name() string
	// Delay is measured from the agent's start epoch, not from dispatch.
	Delay() time.Duration
	Descriptor() config.Descriptor
	Run(ctx context.Context) error
}

type base struct {
	id   string
	desc config.Descriptor
	l    Launcher
}

func (b base) ID() string                    { return b.id }
func (b base) Name() string                  { return b.desc.DisplayName() }
func (b base) Delay() time.Duration          { return time.Duration(b.desc.Delay) * time.Second }
func (b base) Descriptor() config.Descriptor { return b.desc }

// OpenLink opens a URL in the default handler or in the configured browser.
type OpenLink struct{ base }

func (t *OpenLink) Run(ctx context.Context) error {
	if err := t.l.OpenURL(ctx, t.desc.URL, t.desc.Browser); err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrLaunchFailed, t.desc.URL, err)
	}
	return nil
}

// OpenProgram starts an executable and does not wait for it to exit.
type OpenProgram struct{ base }

func (t *OpenProgram) Run(ctx context.Context) error {
	if err := t.l.StartProcess(ctx, t.desc.Path); err != nil {
		return fmt.Errorf("%w: start %q: %w", ErrLaunchFailed, t.desc.Path, err)
	}
	return nil
}

// New builds the task for descriptor d at position index.
func New(index int, d config.Descriptor, l Launcher) (Task, error) {
	if err := config.ValidateDescriptor(d); err != nil {
		return nil, &config.TaskError{Index: index, Type: string(d.Type), Err: err}
	}
	b := base{id: fmt.Sprint(index), desc: d, l: l}
	switch d.Type {
	case config.KindOpenLink:
		return &OpenLink{b}, nil
	case config.KindOpenProgram:
		return &OpenProgram{b}, nil
	default:
		return nil, &config.TaskError{Index: index, Type: string(d.Type), Err: config.ErrUnknownTaskType}
	}
}

// Build converts every descriptor, failing on the first invalid one so no
// task runs from a suspect batch.
func Build(descs []config.Descriptor, l Launcher) ([]Task, error) {
	out := make([]Task, 0, len(descs))
	for i, d := range descs {
		t, err := New(i, d, l)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
