package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stackMainState(main WindowID, stack ...WindowID) *WorkspaceState {
	st := &WorkspaceState{Mode: StackMainMode(70, StackTiled), Main: main}
	st.Stack = append(st.Stack, stack...)
	return st
}

func TestAttachStackRejectsMainAndDuplicates(t *testing.T) {
	st := stackMainState(1)

	require.NoError(t, st.AttachStack(2))
	require.Error(t, st.AttachStack(2))
	require.Error(t, st.AttachStack(1))
	require.NoError(t, st.Check())
	require.Equal(t, []WindowID{2}, st.Stack)
}

func TestRemoveWindowPromotesFrontOnMainClose(t *testing.T) {
	st := stackMainState(1, 2, 3)

	promoted, wasMain := st.RemoveWindow(1)
	require.True(t, wasMain)
	require.Equal(t, WindowID(2), promoted)
	require.Equal(t, WindowID(2), st.Main)
	require.Equal(t, []WindowID{3}, st.Stack)
	require.NoError(t, st.Check())
}

func TestRemoveWindowDropsStackEntry(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)

	promoted, wasMain := st.RemoveWindow(3)
	require.False(t, wasMain)
	require.Zero(t, promoted)
	require.Equal(t, WindowID(1), st.Main)
	require.Equal(t, []WindowID{2, 4}, st.Stack)
	require.NoError(t, st.Check())
}

func TestRemoveWindowClearsTrackedFocus(t *testing.T) {
	st := stackMainState(1, 2)
	st.SyncFocus(2)

	st.RemoveWindow(2)
	require.Zero(t, st.Focused)
}

func TestRotateNextIsStrictFIFO(t *testing.T) {
	st := stackMainState(10, 20, 30)

	st.RotateNext()
	require.Equal(t, WindowID(20), st.Main)
	require.Equal(t, []WindowID{30, 10}, st.Stack)
	require.NoError(t, st.Check())
}

func TestRotateRoundTripsAfterFullCycle(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)

	for i := 0; i < len(st.Stack)+1; i++ {
		st.RotateNext()
		require.NoError(t, st.Check())
	}
	require.Equal(t, WindowID(1), st.Main)
	require.Equal(t, []WindowID{2, 3, 4}, st.Stack)
}

func TestRotatePrevInvertsRotateNext(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)

	st.RotateNext()
	st.RotatePrev()
	require.Equal(t, WindowID(1), st.Main)
	require.Equal(t, []WindowID{2, 3, 4}, st.Stack)
}

func TestSwapMainTwiceRestoresState(t *testing.T) {
	st := stackMainState(1, 2, 3)
	st.SyncFocus(3)

	idx := st.SwapIndex()
	require.Equal(t, 1, idx)
	require.NoError(t, st.SwapMainAt(idx))
	require.Equal(t, WindowID(3), st.Main)
	require.Equal(t, []WindowID{2, 1}, st.Stack)
	require.NoError(t, st.Check())

	require.NoError(t, st.SwapMainAt(idx))
	require.Equal(t, WindowID(1), st.Main)
	require.Equal(t, []WindowID{2, 3}, st.Stack)
}

func TestSwapMainAtRange(t *testing.T) {
	st := stackMainState(1, 2)
	require.Error(t, st.SwapMainAt(-1))
	require.Error(t, st.SwapMainAt(1))
}

func TestCursorWrapsBothDirections(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)

	require.Equal(t, WindowID(2), st.CursorNext())
	require.Equal(t, WindowID(3), st.CursorNext())
	require.Equal(t, WindowID(4), st.CursorNext())
	require.Equal(t, WindowID(2), st.CursorNext())
	require.Equal(t, WindowID(4), st.CursorPrev())
	// Order is never mutated by cursor movement.
	require.Equal(t, []WindowID{2, 3, 4}, st.Stack)
}

func TestCursorFirstUseStartsAtStackEnds(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)
	require.Equal(t, WindowID(2), st.CursorNext())

	st = stackMainState(1, 2, 3, 4)
	require.Equal(t, WindowID(4), st.CursorPrev())
}

func TestCursorOnEmptyStack(t *testing.T) {
	st := stackMainState(1)
	require.Zero(t, st.CursorNext())
	require.Zero(t, st.CursorPrev())
}

func TestSyncFocusAlignsCursor(t *testing.T) {
	st := stackMainState(1, 2, 3, 4)

	st.SyncFocus(4)
	require.Equal(t, WindowID(2), st.CursorNext())
}

func TestResetDiscardsBookkeeping(t *testing.T) {
	st := stackMainState(1, 2, 3)
	st.Reset()

	require.Zero(t, st.Main)
	require.Empty(t, st.Stack)
	require.NoError(t, st.Check())
}
