package engine

import (
	"context"
	"fmt"
	"strings"

	"swaybard/internal/ctl"
	"swaybard/internal/layout"
	"swaybard/internal/sway"
)

// handleCommand executes one control command against the currently focused
// workspace, which is queried fresh at dispatch time. The returned error
// becomes the client's ERROR reply; workspace state is left untouched on
// every failure path.
func (e *Engine) handleCommand(ctx context.Context, cmd ctl.Command) error {
	ws, err := e.comp.FocusedWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("resolve focused workspace: %w", err)
	}
	if ws.Num < 0 {
		return fmt.Errorf("focused workspace %q has no number; name workspaces with a leading number", ws.Name)
	}
	st := e.state(ws.Num)

	switch c := cmd.(type) {
	case ctl.ChangeLayout:
		return e.changeLayout(ctx, ws, st, c.Mode)
	case ctl.StackFocusNext:
		return e.stackFocusAdvance(ctx, ws, st, false)
	case ctl.StackFocusPrev:
		return e.stackFocusAdvance(ctx, ws, st, true)
	case ctl.StackSwapMain:
		return e.stackSwapMain(ctx, ws, st)
	case ctl.StackMainRotateNext:
		return e.stackMainRotate(ctx, ws, st, false)
	case ctl.StackMainRotatePrev:
		return e.stackMainRotate(ctx, ws, st, true)
	case ctl.Ping:
		return nil
	default:
		return fmt.Errorf("unsupported command %q", cmd.Name())
	}
}

// requireStackMain guards the stack commands.
func requireStackMain(cmd string, ws sway.Workspace, st *layout.WorkspaceState) error {
	if st.Mode.Kind == layout.StackMain {
		return nil
	}
	return fmt.Errorf(
		"%s only works on stack-main workspaces: workspace %d (%q) is %s; fix: swaybard change-layout stack-main",
		cmd, ws.Num, ws.Name, st.Mode.Kind,
	)
}

func (e *Engine) changeLayout(ctx context.Context, ws sway.Workspace, st *layout.WorkspaceState, mode layout.Mode) error {
	if st.Mode.Equal(mode) {
		// Re-requesting the active mode is a no-op, not an error.
		return nil
	}

	switch mode.Kind {
	case layout.Manual, layout.Spiral:
		// Windows stay exactly where they are; only future events change.
		st.Mode = mode
		st.Reset()
		return nil
	case layout.StackMain:
		return e.adoptStackMain(ctx, ws, st, mode)
	default:
		return fmt.Errorf("unrecognized layout")
	}
}

// adoptStackMain converts the focused workspace to stack-main: the focused
// window becomes main and every other window joins the stack in tree order,
// top to bottom as the compositor currently shows them. Then one compositor
// command rearranges the containers.
func (e *Engine) adoptStackMain(ctx context.Context, ws sway.Workspace, st *layout.WorkspaceState, mode layout.Mode) error {
	tree, err := e.comp.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("get tree: %w", err)
	}
	node := tree.FindWorkspace(ws.Num)
	if node == nil {
		return fmt.Errorf("workspace %d not in tree", ws.Num)
	}

	windows := node.Windows()
	var main *sway.Node
	for _, w := range windows {
		if w.Focused {
			main = w
			break
		}
	}
	if main == nil && len(windows) > 0 {
		main = windows[0]
	}

	st.Mode = mode
	st.Reset()
	if main == nil {
		return nil
	}
	st.Main = layout.WindowID(main.ID)
	st.SyncFocus(st.Main)
	for _, w := range windows {
		if w.ID == main.ID {
			continue
		}
		if err := st.AttachStack(layout.WindowID(w.ID)); err != nil {
			return err
		}
	}

	if cmd := adoptCommand(st); cmd != "" {
		if err := e.run(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// adoptCommand builds the one-shot rearrangement that physically forms the
// main/stack split out of the workspace's current windows.
func adoptCommand(st *layout.WorkspaceState) string {
	if len(st.Stack) == 0 {
		return fmt.Sprintf("[con_id=%d] focus; split h", st.Main)
	}

	var parts []string
	first := st.Stack[0]
	parts = append(parts,
		fmt.Sprintf("[con_id=%d] focus; split h", st.Main),
		fmt.Sprintf("[con_id=%d] focus; %s; resize set width %d ppt", first, st.Mode.Stack.Command(), 100-st.Mode.SizePercent),
	)
	mark := fmt.Sprintf("_swaybard_stack_%d", first)
	for _, id := range st.Stack[1:] {
		parts = append(parts,
			fmt.Sprintf("[con_id=%d] mark --add %s", first, mark),
			fmt.Sprintf("[con_id=%d] move to mark %s", id, mark),
			fmt.Sprintf("[con_mark=%s] unmark %s", mark, mark),
		)
	}
	parts = append(parts, fmt.Sprintf("[con_id=%d] focus", st.Main))
	return strings.Join(parts, "; ")
}

// stackFocusAdvance moves a focus cursor over the stack with wraparound and
// focuses the window it lands on. The stored order is not mutated.
func (e *Engine) stackFocusAdvance(ctx context.Context, ws sway.Workspace, st *layout.WorkspaceState, reverse bool) error {
	name := "stack-focus-next"
	if reverse {
		name = "stack-focus-prev"
	}
	if err := requireStackMain(name, ws, st); err != nil {
		return err
	}
	if len(st.Stack) == 0 {
		return nil
	}

	var target layout.WindowID
	if reverse {
		target = st.CursorPrev()
	} else {
		target = st.CursorNext()
	}
	return e.run(ctx, fmt.Sprintf("[con_id=%d] focus", target))
}

// stackSwapMain exchanges the main window with the focused stack entry in
// place, issuing the container swap to match.
func (e *Engine) stackSwapMain(ctx context.Context, ws sway.Workspace, st *layout.WorkspaceState) error {
	if err := requireStackMain("stack-swap-main", ws, st); err != nil {
		return err
	}
	if len(st.Stack) == 0 {
		return nil
	}

	idx := st.SwapIndex()
	oldMain := st.Main
	target := st.Stack[idx]
	cmd := fmt.Sprintf(
		"[con_id=%d] focus; swap container with con_id %d; [con_id=%d] focus",
		oldMain, target, target,
	)
	if err := e.run(ctx, cmd); err != nil {
		return err
	}
	if err := st.SwapMainAt(idx); err != nil {
		return err
	}
	st.SyncFocus(target)
	return nil
}

// stackMainRotate performs the FIFO rotation between main and the stack. Next
// promotes the front of the stack; prev promotes the back. The demoted main
// is walked to the matching end of the stack so the physical order keeps
// tracking the bookkeeping.
func (e *Engine) stackMainRotate(ctx context.Context, ws sway.Workspace, st *layout.WorkspaceState, reverse bool) error {
	name := "stack-main-rotate-next"
	if reverse {
		name = "stack-main-rotate-prev"
	}
	if err := requireStackMain(name, ws, st); err != nil {
		return err
	}
	if len(st.Stack) == 0 {
		return nil
	}

	oldMain := st.Main
	var target layout.WindowID
	if reverse {
		target = st.Stack[len(st.Stack)-1]
	} else {
		target = st.Stack[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[con_id=%d] focus; swap container with con_id %d", oldMain, target)
	step := "move down"
	if reverse {
		step = "move up"
	}
	for i := 0; i < len(st.Stack)-1; i++ {
		fmt.Fprintf(&b, "; [con_id=%d] %s", oldMain, step)
	}
	fmt.Fprintf(&b, "; [con_id=%d] focus", target)

	if err := e.run(ctx, b.String()); err != nil {
		return err
	}

	if reverse {
		st.RotatePrev()
	} else {
		st.RotateNext()
	}
	st.SyncFocus(st.Main)
	return nil
}
