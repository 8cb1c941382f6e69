// Package layout models per-workspace layout modes and window bookkeeping.
package layout

import "fmt"

// Orientation is a sway split axis.
type Orientation string

const (
	// OrientationHorizontal splits along the horizontal axis (windows side by side).
	OrientationHorizontal Orientation = "splith"
	// OrientationVertical splits along the vertical axis (windows stacked below).
	OrientationVertical Orientation = "splitv"
)

// Flip returns the opposite split axis.
func (o Orientation) Flip() Orientation {
	if o == OrientationHorizontal {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// Command returns the sway command that applies the split axis.
func (o Orientation) Command() string {
	if o == OrientationVertical {
		return "split v"
	}
	return "split h"
}

// SeedOrientation picks the initial spiral split from container geometry:
// the split follows the long axis, so a tall container splits vertically and a
// wide (or square) one splits horizontally.
func SeedOrientation(width, height int) Orientation {
	if height > width {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// StackLayout is how the stack area of a stack-main workspace is arranged.
type StackLayout string

const (
	StackTabbed  StackLayout = "tabbed"
	StackTiled   StackLayout = "tiled"
	StackStacked StackLayout = "stacked"
)

// ParseStackLayout maps the textual stack-layout name to its variant.
func ParseStackLayout(s string) (StackLayout, error) {
	switch StackLayout(s) {
	case StackTabbed, StackTiled, StackStacked:
		return StackLayout(s), nil
	default:
		return "", fmt.Errorf("unrecognized stack layout %q", s)
	}
}

// Command returns the sway commands that shape the stack container.
func (s StackLayout) Command() string {
	switch s {
	case StackTabbed:
		return "split v; layout tabbed"
	case StackStacked:
		return "split v; layout stacking"
	default:
		return "split v"
	}
}

// ModeKind discriminates the layout mode variants.
type ModeKind int

const (
	// Manual leaves window placement entirely to the user.
	Manual ModeKind = iota
	// Spiral alternates split orientation per new window.
	Spiral
	// StackMain keeps one main window beside a stack of secondary windows.
	StackMain
)

func (k ModeKind) String() string {
	switch k {
	case Spiral:
		return "spiral"
	case StackMain:
		return "stack-main"
	default:
		return "manual"
	}
}

// Mode is the tagged layout mode of one workspace. Only the fields of the
// active Kind are meaningful.
type Mode struct {
	Kind ModeKind

	// Spiral state: the split applied to the previous new window, valid only
	// once Seeded is set by the first window of the workspace.
	LastSplit Orientation
	Seeded    bool

	// StackMain parameters.
	SizePercent int
	Stack       StackLayout
}

// ManualMode returns the manual layout mode.
func ManualMode() Mode {
	return Mode{Kind: Manual}
}

// SpiralMode returns a spiral layout mode with an unseeded toggle.
func SpiralMode() Mode {
	return Mode{Kind: Spiral}
}

// StackMainMode returns a stack-main layout mode with the given main-area size
// percentage and stack arrangement.
func StackMainMode(sizePercent int, stack StackLayout) Mode {
	return Mode{Kind: StackMain, SizePercent: sizePercent, Stack: stack}
}

// Equal reports whether two modes are the same variant with the same
// parameters. Transient spiral toggle state is ignored.
func (m Mode) Equal(other Mode) bool {
	if m.Kind != other.Kind {
		return false
	}
	if m.Kind == StackMain {
		return m.SizePercent == other.SizePercent && m.Stack == other.Stack
	}
	return true
}

func (m Mode) String() string {
	if m.Kind == StackMain {
		return fmt.Sprintf("stack-main(size=%d, stack=%s)", m.SizePercent, m.Stack)
	}
	return m.Kind.String()
}
