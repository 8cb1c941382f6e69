package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"swaybard/internal/layout"
	"swaybard/internal/sway"
)

// handleEvent processes one compositor event to completion. The returned flag
// stops the engine loop.
func (e *Engine) handleEvent(ctx context.Context, event sway.Event) (stop bool) {
	switch ev := event.(type) {
	case sway.WindowNew:
		e.scheduleRename()
		e.onWindowNew(ctx, ev)
	case sway.WindowClose:
		e.scheduleRename()
		e.onWindowClose(ctx, ev)
	case sway.WindowFocus:
		e.scheduleRename()
		e.onWindowFocus(ctx, ev)
	case sway.WorkspaceFocus:
		// Lazy creation keeps later dispatches cheap.
		e.state(ev.WorkspaceNum)
	case sway.WorkspaceEmpty:
		delete(e.workspaces, ev.WorkspaceNum)
	case sway.Shutdown:
		e.logger.Info("compositor shutdown")
		return true
	}
	return false
}

func (e *Engine) onWindowNew(ctx context.Context, ev sway.WindowNew) {
	ws, err := e.comp.FocusedWorkspace(ctx)
	if err != nil {
		e.logger.Warn("window new: no focused workspace", zap.Error(err))
		return
	}
	st := e.state(ws.Num)

	switch st.Mode.Kind {
	case layout.Spiral:
		e.spiralPlace(ctx, st, ev)
	case layout.StackMain:
		e.stackMainPlace(ctx, st, ev)
	case layout.Manual:
	}
}

// spiralPlace alternates the split orientation per new window. The first
// window of a workspace seeds the toggle from its own geometry; every later
// window flips it. The split is applied to the just-created window so the
// next one subdivides it along the alternated axis.
func (e *Engine) spiralPlace(ctx context.Context, st *layout.WorkspaceState, ev sway.WindowNew) {
	var split layout.Orientation
	if st.Mode.Seeded {
		split = st.Mode.LastSplit.Flip()
	} else {
		split = layout.SeedOrientation(ev.Width, ev.Height)
	}
	st.Mode.LastSplit = split
	st.Mode.Seeded = true

	cmd := fmt.Sprintf("[con_id=%d] %s", ev.WindowID, split.Command())
	if err := e.run(ctx, cmd); err != nil {
		e.logger.Warn("spiral split failed", zap.Error(err))
	}
}

// stackMainPlace routes a new window into the stack-main structure: the first
// window becomes main, later ones join the back of the stack.
func (e *Engine) stackMainPlace(ctx context.Context, st *layout.WorkspaceState, ev sway.WindowNew) {
	id := layout.WindowID(ev.WindowID)

	if st.Main == 0 {
		st.Main = id
		cmd := fmt.Sprintf("[con_id=%d] focus; split h", ev.WindowID)
		if err := e.run(ctx, cmd); err != nil {
			e.logger.Warn("stack-main place main failed", zap.Error(err))
		}
		return
	}

	if id == st.Main || st.InStack(id) {
		return
	}
	anchor := layout.WindowID(0)
	if len(st.Stack) > 0 {
		anchor = st.Stack[len(st.Stack)-1]
	}
	if err := st.AttachStack(id); err != nil {
		e.logger.Warn("stack attach refused", zap.Error(err))
		return
	}

	cmd := e.stackInsertCommand(st, id, anchor)
	if err := e.run(ctx, cmd); err != nil {
		e.logger.Warn("stack-main place stack failed", zap.Error(err))
	}
}

// stackInsertCommand builds the compositor choreography that moves a freshly
// attached window into the stack container. The first stack window creates
// the container and sizes the main area; later ones are moved next to the
// previous back of the stack via a transient mark.
func (e *Engine) stackInsertCommand(st *layout.WorkspaceState, id, anchor layout.WindowID) string {
	if anchor == 0 {
		return fmt.Sprintf(
			"[con_id=%d] focus; %s; resize set width %d ppt; [con_id=%d] resize set width %d ppt",
			id, st.Mode.Stack.Command(), 100-st.Mode.SizePercent, st.Main, st.Mode.SizePercent,
		)
	}
	mark := fmt.Sprintf("_swaybard_stack_%d", anchor)
	return fmt.Sprintf(
		"[con_id=%d] mark --add %s; [con_id=%d] move to mark %s; [con_mark=%s] unmark %s; [con_id=%d] focus",
		anchor, mark, id, mark, mark, mark, id,
	)
}

// onWindowClose drops the window from whichever workspace tracks it. Close
// events fire for windows on any workspace, not just the focused one, so the
// owning workspace is found by scanning all tracked state.
func (e *Engine) onWindowClose(ctx context.Context, ev sway.WindowClose) {
	id := layout.WindowID(ev.WindowID)
	for _, st := range e.workspaces {
		// Keep the focus-hook tracking from targeting a dead container.
		if st.Focused == id {
			st.Focused = 0
		}
		if st.Mode.Kind != layout.StackMain {
			continue
		}
		if id != st.Main && !st.InStack(id) {
			continue
		}

		promoted, wasMain := st.RemoveWindow(id)

		switch {
		case wasMain && promoted != 0 && len(st.Stack) == 0:
			// Last stack window took over as the only window left.
			cmd := fmt.Sprintf("[con_id=%d] focus; layout splith", promoted)
			if err := e.run(ctx, cmd); err != nil {
				e.logger.Warn("stack-main close relayout failed", zap.Error(err))
			}
		case wasMain && promoted != 0:
			cmd := fmt.Sprintf("[con_id=%d] focus; move left; resize set width %d ppt", promoted, st.Mode.SizePercent)
			if err := e.run(ctx, cmd); err != nil {
				e.logger.Warn("stack-main promote failed", zap.Error(err))
			}
		case !wasMain && st.Main != 0 && len(st.Stack) > 0:
			cmd := fmt.Sprintf("[con_id=%d] resize set width %d ppt", st.Main, st.Mode.SizePercent)
			if err := e.run(ctx, cmd); err != nil {
				e.logger.Warn("stack-main resize failed", zap.Error(err))
			}
		}
	}
}

// onWindowFocus realizes the configured focus hooks: the leave command runs
// against the previously focused window of the workspace, the focus command
// against the newly focused one. Pure side effect, no layout change.
func (e *Engine) onWindowFocus(ctx context.Context, ev sway.WindowFocus) {
	ws, err := e.comp.FocusedWorkspace(ctx)
	if err != nil {
		e.logger.Warn("window focus: no focused workspace", zap.Error(err))
		return
	}
	st := e.state(ws.Num)
	id := layout.WindowID(ev.WindowID)

	if e.cfg.OnWindowFocusLeave != "" && st.Focused != 0 && st.Focused != id {
		cmd := fmt.Sprintf("[con_id=%d] %s", st.Focused, e.cfg.OnWindowFocusLeave)
		if err := e.run(ctx, cmd); err != nil {
			// Expected when the previous window just closed.
			e.logger.Debug("focus-leave hook failed", zap.Error(err))
		}
	}
	if e.cfg.OnWindowFocus != "" && st.Focused != id {
		if err := e.run(ctx, e.cfg.OnWindowFocus); err != nil {
			e.logger.Debug("focus hook failed", zap.Error(err))
		}
	}

	st.SyncFocus(id)
}

// scheduleRename debounces workspace renaming. The timer fires back into the
// engine channel so the rename itself still runs on the engine loop.
func (e *Engine) scheduleRename() {
	if !e.cfg.WorkspaceRenaming {
		return
	}
	if e.renameTimer != nil {
		e.renameTimer.Stop()
	}
	e.renameTimer = time.AfterFunc(renameDebounce, func() {
		select {
		case e.inputs <- input{renameTick: true}:
		case <-e.done:
		}
	})
}

// renameFocusedWorkspace renames the focused workspace to "<num>: <app>" of
// its focused window, or back to the bare number when it emptied.
func (e *Engine) renameFocusedWorkspace(ctx context.Context) {
	ws, err := e.comp.FocusedWorkspace(ctx)
	if err != nil {
		return
	}
	if ws.Num < 0 {
		return
	}

	tree, err := e.comp.GetTree(ctx)
	if err != nil {
		e.logger.Debug("rename: get tree failed", zap.Error(err))
		return
	}
	node := tree.FindWorkspace(ws.Num)
	if node == nil {
		return
	}

	name := fmt.Sprintf("%d", ws.Num)
	if focused := node.Find(func(n *sway.Node) bool { return n.Focused && n.IsWindow() }); focused != nil {
		if app := focused.App(); app != "" {
			name = fmt.Sprintf("%d: %s", ws.Num, app)
		}
	}
	if name == ws.Name {
		return
	}

	cmd := fmt.Sprintf("rename workspace %q to %q", ws.Name, name)
	if err := e.run(ctx, cmd); err != nil {
		e.logger.Debug("workspace rename failed", zap.Error(err))
	}
}
