// Package engine is the daemon's single sequential actor: it consumes
// compositor events and control commands from one bounded channel, owns all
// per-workspace layout state, and is the only caller of the compositor's
// command connection.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"swaybard/internal/config"
	"swaybard/internal/ctl"
	"swaybard/internal/layout"
	"swaybard/internal/sway"
)

// Compositor is the slice of the compositor client the engine needs. A fake
// implementation stands in during tests.
type Compositor interface {
	RunCommand(ctx context.Context, command string) error
	GetTree(ctx context.Context) (*sway.Node, error)
	FocusedWorkspace(ctx context.Context) (sway.Workspace, error)
}

// ErrShuttingDown answers control requests that arrive once shutdown began.
var ErrShuttingDown = errors.New("daemon shutting down")

const (
	// inputBuffer bounds the engine channel. When the engine lags, producers
	// block here, which throttles the compositor event stream to the engine's
	// own pace instead of buffering without bound.
	inputBuffer = 64

	renameDebounce = 100 * time.Millisecond
)

// input is one unit of engine work: either a compositor event or a control
// command awaiting a reply, plus the internal rename tick.
type input struct {
	event      sway.Event
	cmd        ctl.Command
	reply      chan error
	renameTick bool
}

// Engine processes events and commands strictly in arrival order.
type Engine struct {
	comp   Compositor
	cfg    config.Config
	logger *zap.Logger

	inputs chan input
	done   chan struct{}

	workspaces  map[int]*layout.WorkspaceState
	defaultMode layout.Mode
	renameTimer *time.Timer
}

// New builds an engine around an immutable configuration. cfg must already be
// validated.
func New(comp Compositor, cfg config.Config, logger *zap.Logger) *Engine {
	mode, err := cfg.DefaultMode()
	if err != nil {
		// Validate catches this before construction; fall back defensively.
		mode = layout.ManualMode()
	}
	return &Engine{
		comp:        comp,
		cfg:         cfg,
		logger:      logger,
		inputs:      make(chan input, inputBuffer),
		done:        make(chan struct{}),
		workspaces:  make(map[int]*layout.WorkspaceState),
		defaultMode: mode,
	}
}

// Submit enqueues one compositor event. It blocks while the channel is full,
// providing backpressure to the event decoder.
func (e *Engine) Submit(ctx context.Context, event sway.Event) error {
	select {
	case e.inputs <- input{event: event}:
		return nil
	case <-e.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch enqueues one control command and waits for the engine's reply.
// Commands that cannot be dispatched before shutdown are answered with
// ErrShuttingDown rather than silently dropped.
func (e *Engine) Dispatch(ctx context.Context, cmd ctl.Command) error {
	reply := make(chan error, 1)
	select {
	case e.inputs <- input{cmd: cmd, reply: reply}:
	case <-e.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-e.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the engine loop. It returns after a compositor Shutdown event or
// context cancellation, in both cases running the configured exit hook first.
// The current item is always finished before stopping.
func (e *Engine) Run(ctx context.Context) error {
	defer e.stop()

	for {
		select {
		case in := <-e.inputs:
			if stop := e.handle(ctx, in); stop {
				e.runExitHook()
				return nil
			}
		case <-ctx.Done():
			e.runExitHook()
			return ctx.Err()
		}
	}
}

// stop closes the done gate and fails every queued, unanswered command.
func (e *Engine) stop() {
	close(e.done)
	if e.renameTimer != nil {
		e.renameTimer.Stop()
	}
	for {
		select {
		case in := <-e.inputs:
			if in.reply != nil {
				in.reply <- ErrShuttingDown
			}
		default:
			return
		}
	}
}

func (e *Engine) handle(ctx context.Context, in input) (stop bool) {
	switch {
	case in.renameTick:
		e.renameFocusedWorkspace(ctx)
		return false
	case in.cmd != nil:
		err := e.handleCommand(ctx, in.cmd)
		if err != nil {
			e.logger.Debug("command failed", zap.String("command", in.cmd.Name()), zap.Error(err))
		}
		in.reply <- err
		return false
	default:
		return e.handleEvent(ctx, in.event)
	}
}

// state returns the workspace's layout state, creating it lazily with the
// configured default mode.
func (e *Engine) state(num int) *layout.WorkspaceState {
	if st, ok := e.workspaces[num]; ok {
		return st
	}
	st := &layout.WorkspaceState{Mode: e.defaultMode}
	e.workspaces[num] = st
	return st
}

// run issues one compositor command, surfacing the failure to the caller
// without retrying.
func (e *Engine) run(ctx context.Context, command string) error {
	e.logger.Debug("run command", zap.String("command", command))
	return e.comp.RunCommand(ctx, command)
}

func (e *Engine) runExitHook() {
	if e.cfg.OnExit == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.comp.RunCommand(ctx, e.cfg.OnExit); err != nil {
		e.logger.Warn("exit hook failed", zap.Error(err))
	}
}
