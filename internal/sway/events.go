package sway

import (
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Event names accepted by the subscribe request.
const (
	SubscribeWindow    = "window"
	SubscribeWorkspace = "workspace"
	SubscribeShutdown  = "shutdown"
)

// Event is one decoded compositor event. The concrete types below form a
// closed set; consumers type-switch exhaustively.
type Event interface {
	isEvent()
}

// WindowNew fires when a window appears.
type WindowNew struct {
	WindowID int64
	AppID    string
	Width    int
	Height   int
}

// WindowClose fires when a window disappears.
type WindowClose struct {
	WindowID int64
}

// WindowFocus fires when window focus changes.
type WindowFocus struct {
	WindowID int64
}

// WorkspaceFocus fires when workspace focus changes.
type WorkspaceFocus struct {
	WorkspaceNum int
}

// WorkspaceEmpty fires when the compositor destroys a workspace.
type WorkspaceEmpty struct {
	WorkspaceNum int
}

// Shutdown fires when the compositor is going away.
type Shutdown struct{}

func (WindowNew) isEvent()      {}
func (WindowClose) isEvent()    {}
func (WindowFocus) isEvent()    {}
func (WorkspaceFocus) isEvent() {}
func (WorkspaceEmpty) isEvent() {}
func (Shutdown) isEvent()       {}

type subscribeReply struct {
	Success bool `json:"success"`
}

// Subscribe registers the event kinds on the subscription connection. After a
// successful acknowledgment that connection carries only event frames and is
// never reused for requests.
func (c *Client) Subscribe(kinds ...string) error {
	payload, err := json.Marshal(kinds)
	if err != nil {
		return fmt.Errorf("encode subscribe payload: %w", err)
	}
	if err := WriteMessage(c.sub, MessageSubscribe, payload); err != nil {
		return err
	}
	frame, err := ReadMessage(c.sub)
	if err != nil {
		return err
	}
	if frame.Type != MessageSubscribe {
		return fmt.Errorf("compositor replied type %d to subscribe", frame.Type)
	}
	var reply subscribeReply
	if err := json.Unmarshal(frame.Payload, &reply); err != nil {
		return fmt.Errorf("decode subscribe reply: %w", err)
	}
	if !reply.Success {
		return fmt.Errorf("compositor refused subscription to %v", kinds)
	}
	return nil
}

type windowEventPayload struct {
	Change    string `json:"change"`
	Container Node   `json:"container"`
}

type workspaceEventPayload struct {
	Change  string `json:"change"`
	Current *struct {
		Num int `json:"num"`
	} `json:"current"`
}

// NextEvent blocks on the subscription connection until a relevant event
// arrives. Frames with undecodable payloads or irrelevant change kinds are
// logged and skipped; connection loss and framing errors propagate to the
// caller, which treats them as fatal.
func (c *Client) NextEvent() (Event, error) {
	for {
		frame, err := ReadMessage(c.sub)
		if err != nil {
			return nil, err
		}
		if !frame.IsEvent() {
			c.logger.Warn("non-event frame on subscription connection", zap.Uint32("type", frame.Type))
			continue
		}

		event, err := decodeEvent(frame)
		if err != nil {
			c.logger.Warn("dropping undecodable event payload", zap.Uint32("type", frame.Type), zap.Error(err))
			continue
		}
		if event != nil {
			return event, nil
		}
	}
}

// decodeEvent maps an event frame to its variant. A nil event with nil error
// means the frame is deliberately ignored.
func decodeEvent(frame Frame) (Event, error) {
	switch frame.Type {
	case EventTypeWindow:
		var payload windowEventPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode window event: %w", err)
		}
		switch payload.Change {
		case "new":
			return WindowNew{
				WindowID: payload.Container.ID,
				AppID:    payload.Container.App(),
				Width:    payload.Container.Rect.Width,
				Height:   payload.Container.Rect.Height,
			}, nil
		case "close":
			return WindowClose{WindowID: payload.Container.ID}, nil
		case "focus":
			return WindowFocus{WindowID: payload.Container.ID}, nil
		default:
			return nil, nil
		}
	case EventTypeWorkspace:
		var payload workspaceEventPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode workspace event: %w", err)
		}
		if payload.Current == nil {
			return nil, nil
		}
		switch payload.Change {
		case "focus":
			return WorkspaceFocus{WorkspaceNum: payload.Current.Num}, nil
		case "empty":
			return WorkspaceEmpty{WorkspaceNum: payload.Current.Num}, nil
		default:
			return nil, nil
		}
	case EventTypeShutdown:
		return Shutdown{}, nil
	default:
		return nil, nil
	}
}
