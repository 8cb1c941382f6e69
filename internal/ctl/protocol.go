// Package ctl implements the daemon's control socket: the textual line
// protocol, the one-exchange-per-connection server, the client side used by
// CLI invocations, and socket acquisition with stale-owner recovery.
package ctl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"swaybard/internal/layout"
)

// Command is one decoded control request. The concrete types form a closed
// set; the engine type-switches exhaustively.
type Command interface {
	isCommand()
	Name() string
}

// ChangeLayout switches the focused workspace to the given mode.
type ChangeLayout struct {
	Mode layout.Mode
}

// StackFocusNext focuses the next stack window with wraparound.
type StackFocusNext struct{}

// StackFocusPrev focuses the previous stack window with wraparound.
type StackFocusPrev struct{}

// StackSwapMain exchanges the main window with the focused stack entry.
type StackSwapMain struct{}

// StackMainRotateNext rotates the front of the stack into the main position.
type StackMainRotateNext struct{}

// StackMainRotatePrev rotates the back of the stack into the main position.
type StackMainRotatePrev struct{}

// Ping is a liveness probe answered by the server itself.
type Ping struct{}

func (ChangeLayout) isCommand()        {}
func (StackFocusNext) isCommand()      {}
func (StackFocusPrev) isCommand()      {}
func (StackSwapMain) isCommand()       {}
func (StackMainRotateNext) isCommand() {}
func (StackMainRotatePrev) isCommand() {}
func (Ping) isCommand()                {}

func (c ChangeLayout) Name() string      { return "change-layout " + c.Mode.Kind.String() }
func (StackFocusNext) Name() string      { return "stack-focus-next" }
func (StackFocusPrev) Name() string      { return "stack-focus-prev" }
func (StackSwapMain) Name() string       { return "stack-swap-main" }
func (StackMainRotateNext) Name() string { return "stack-main-rotate-next" }
func (StackMainRotatePrev) Name() string { return "stack-main-rotate-prev" }
func (Ping) Name() string                { return "ping" }

// Defaults applied when change-layout stack-main omits its flags.
const (
	DefaultStackMainSize = 70
	DefaultStackLayout   = layout.StackTiled
)

// ParseCommand decodes one request line of the control grammar.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty request")
	}

	verb, rest := fields[0], fields[1:]
	switch verb {
	case "change-layout":
		return parseChangeLayout(rest)
	case "stack-focus-next":
		return StackFocusNext{}, trailing(verb, rest)
	case "stack-focus-prev":
		return StackFocusPrev{}, trailing(verb, rest)
	case "stack-swap-main":
		return StackSwapMain{}, trailing(verb, rest)
	case "stack-main-rotate-next":
		return StackMainRotateNext{}, trailing(verb, rest)
	case "stack-main-rotate-prev":
		return StackMainRotatePrev{}, trailing(verb, rest)
	case "ping":
		return Ping{}, trailing(verb, rest)
	default:
		return nil, fmt.Errorf("unknown command %q", verb)
	}
}

func trailing(verb string, rest []string) error {
	if len(rest) != 0 {
		return fmt.Errorf("%s takes no arguments", verb)
	}
	return nil
}

func parseChangeLayout(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, errors.New("change-layout requires a layout name")
	}

	switch args[0] {
	case "manual":
		return ChangeLayout{Mode: layout.ManualMode()}, trailing("change-layout manual", args[1:])
	case "spiral":
		return ChangeLayout{Mode: layout.SpiralMode()}, trailing("change-layout spiral", args[1:])
	case "stack-main":
		// fall through to flag parsing below
	default:
		return nil, errors.New("unrecognized layout")
	}

	size := DefaultStackMainSize
	stack := DefaultStackLayout
	args = args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--size":
			i++
			if i >= len(args) {
				return nil, errors.New("--size requires a value")
			}
			parsed, err := strconv.Atoi(args[i])
			if err != nil {
				return nil, fmt.Errorf("invalid --size %q", args[i])
			}
			if parsed < 0 || parsed > 100 {
				return nil, fmt.Errorf("--size %d out of range 0..100", parsed)
			}
			size = parsed
		case "--stack-layout":
			i++
			if i >= len(args) {
				return nil, errors.New("--stack-layout requires a value")
			}
			parsed, err := layout.ParseStackLayout(args[i])
			if err != nil {
				return nil, err
			}
			stack = parsed
		default:
			return nil, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return ChangeLayout{Mode: layout.StackMainMode(size, stack)}, nil
}

// Reply lines.
const replyOK = "OK"

const replyErrorPrefix = "ERROR: "

// FormatReply renders the single reply line for a handled request.
func FormatReply(err error) string {
	if err == nil {
		return replyOK
	}
	// Collapse to one line so the reply stays a single exchange.
	return replyErrorPrefix + strings.ReplaceAll(err.Error(), "\n", " ")
}

// ParseReply interprets a server reply line on the client side.
func ParseReply(line string) error {
	line = strings.TrimSpace(line)
	if line == replyOK {
		return nil
	}
	if msg, ok := strings.CutPrefix(line, replyErrorPrefix); ok {
		return &replyError{msg: msg}
	}
	return fmt.Errorf("malformed reply %q", line)
}
