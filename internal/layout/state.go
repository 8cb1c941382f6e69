package layout

import "fmt"

// WindowID identifies a sway container.
type WindowID int64

// WorkspaceState is the layout bookkeeping for one workspace. It is owned by
// the engine and mutated only from its loop.
//
// Invariants while Mode.Kind is StackMain: Main is set whenever the workspace
// has at least one managed window, Stack never contains Main, and every id in
// Stack is unique. The front of Stack (index 0) is the top of the stack.
type WorkspaceState struct {
	Mode Mode

	// Main is the main window of a stack-main workspace, zero when unset.
	Main WindowID

	// Stack holds the secondary windows, front first.
	Stack []WindowID

	// Focused is the most recently focused window on this workspace, used for
	// focus-leave hooks and for anchoring stack swaps. Zero when unknown.
	Focused WindowID

	// cursor is the stack focus cursor for stack-focus-next/prev. It is not
	// part of the ordering invariants and is clamped on use. Until cursorSet,
	// the first advance starts at the matching end of the stack.
	cursor    int
	cursorSet bool
}

// InStack reports whether id is currently in the stack.
func (w *WorkspaceState) InStack(id WindowID) bool {
	return w.stackIndex(id) >= 0
}

func (w *WorkspaceState) stackIndex(id WindowID) int {
	for i, s := range w.Stack {
		if s == id {
			return i
		}
	}
	return -1
}

// AttachStack appends id to the back of the stack.
func (w *WorkspaceState) AttachStack(id WindowID) error {
	if id == w.Main {
		return fmt.Errorf("window %d is the main window", id)
	}
	if w.InStack(id) {
		return fmt.Errorf("window %d already stacked", id)
	}
	w.Stack = append(w.Stack, id)
	return nil
}

// RemoveWindow drops id from the workspace. When id was the main window the
// front of the stack (if any) is promoted in its place; the promoted id is
// returned with wasMain set.
func (w *WorkspaceState) RemoveWindow(id WindowID) (promoted WindowID, wasMain bool) {
	if w.Focused == id {
		w.Focused = 0
	}
	if id == w.Main {
		w.Main = 0
		if len(w.Stack) > 0 {
			promoted = w.Stack[0]
			w.Stack = append(w.Stack[:0], w.Stack[1:]...)
			w.Main = promoted
		}
		w.clampCursor()
		return promoted, true
	}
	if i := w.stackIndex(id); i >= 0 {
		w.Stack = append(w.Stack[:i], w.Stack[i+1:]...)
		w.clampCursor()
	}
	return 0, false
}

// RotateNext promotes the front of the stack to main and appends the old main
// to the back, a strict FIFO rotation.
func (w *WorkspaceState) RotateNext() {
	if len(w.Stack) == 0 {
		return
	}
	oldMain := w.Main
	w.Main = w.Stack[0]
	w.Stack = append(w.Stack[:0], w.Stack[1:]...)
	w.Stack = append(w.Stack, oldMain)
}

// RotatePrev is the inverse of RotateNext: the back of the stack becomes main
// and the old main moves to the front.
func (w *WorkspaceState) RotatePrev() {
	if len(w.Stack) == 0 {
		return
	}
	oldMain := w.Main
	w.Main = w.Stack[len(w.Stack)-1]
	w.Stack = append([]WindowID{oldMain}, w.Stack[:len(w.Stack)-1]...)
}

// SwapMainAt exchanges the main window with the stack entry at index i,
// keeping the entry's position.
func (w *WorkspaceState) SwapMainAt(i int) error {
	if i < 0 || i >= len(w.Stack) {
		return fmt.Errorf("stack index %d out of range", i)
	}
	w.Main, w.Stack[i] = w.Stack[i], w.Main
	return nil
}

// SwapIndex picks the stack entry a swap should target: the currently focused
// window when it sits in the stack, otherwise the focus cursor position.
func (w *WorkspaceState) SwapIndex() int {
	if i := w.stackIndex(w.Focused); i >= 0 {
		return i
	}
	w.clampCursor()
	return w.cursor
}

// CursorNext advances the stack focus cursor with wraparound and returns the
// window it lands on; an untouched cursor lands on the front of the stack.
// The stored order is not mutated.
func (w *WorkspaceState) CursorNext() WindowID {
	if len(w.Stack) == 0 {
		return 0
	}
	if w.cursorSet {
		w.cursor = (w.cursor + 1) % len(w.Stack)
	} else {
		w.cursor = 0
		w.cursorSet = true
	}
	return w.Stack[w.cursor]
}

// CursorPrev moves the stack focus cursor backwards with wraparound; an
// untouched cursor lands on the back of the stack.
func (w *WorkspaceState) CursorPrev() WindowID {
	if len(w.Stack) == 0 {
		return 0
	}
	if w.cursorSet {
		w.cursor = (w.cursor - 1 + len(w.Stack)) % len(w.Stack)
	} else {
		w.cursor = len(w.Stack) - 1
		w.cursorSet = true
	}
	return w.Stack[w.cursor]
}

// SyncFocus records id as the focused window and aligns the cursor with it
// when it is a stack entry.
func (w *WorkspaceState) SyncFocus(id WindowID) {
	w.Focused = id
	if i := w.stackIndex(id); i >= 0 {
		w.cursor = i
		w.cursorSet = true
	}
}

// Reset discards all stack bookkeeping, keeping the mode untouched.
func (w *WorkspaceState) Reset() {
	w.Main = 0
	w.Stack = nil
	w.cursor = 0
	w.cursorSet = false
}

func (w *WorkspaceState) clampCursor() {
	if len(w.Stack) == 0 {
		w.cursor = 0
		w.cursorSet = false
		return
	}
	if w.cursor >= len(w.Stack) {
		w.cursor = len(w.Stack) - 1
	}
}

// Check verifies the stack-main invariants, for use in tests.
func (w *WorkspaceState) Check() error {
	seen := make(map[WindowID]struct{}, len(w.Stack))
	for _, id := range w.Stack {
		if id == w.Main {
			return fmt.Errorf("main window %d present in stack", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate window %d in stack", id)
		}
		seen[id] = struct{}{}
	}
	if w.Mode.Kind == StackMain && w.Main == 0 && len(w.Stack) > 0 {
		return fmt.Errorf("stack populated without a main window")
	}
	return nil
}
