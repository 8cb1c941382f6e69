package sway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// SocketPath resolves the compositor's IPC socket from the environment.
func SocketPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("SWAYSOCK")); path != "" {
		return path, nil
	}
	if path := strings.TrimSpace(os.Getenv("I3SOCK")); path != "" {
		return path, nil
	}
	return "", errors.New("SWAYSOCK is not set")
}

// Client owns the two compositor connections: a command connection for
// synchronous request/reply exchanges and a subscription connection that,
// after Subscribe, only ever carries asynchronous event frames.
//
// The command connection is not safe for concurrent use; the engine is the
// sole caller and serializes every exchange.
type Client struct {
	cmd    net.Conn
	sub    net.Conn
	logger *zap.Logger
}

// Connect opens both compositor connections. The daemon cannot operate
// without either, so any dial failure is fatal to the caller.
func Connect(path string, logger *zap.Logger) (*Client, error) {
	cmd, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial compositor command socket %s: %w", path, err)
	}
	sub, err := net.Dial("unix", path)
	if err != nil {
		_ = cmd.Close()
		return nil, fmt.Errorf("dial compositor subscription socket %s: %w", path, err)
	}
	return &Client{cmd: cmd, sub: sub, logger: logger}, nil
}

// Close releases both connections.
func (c *Client) Close() error {
	cmdErr := c.cmd.Close()
	subErr := c.sub.Close()
	if cmdErr != nil {
		return cmdErr
	}
	return subErr
}

// roundTrip performs one synchronous exchange on the command connection.
func (c *Client) roundTrip(ctx context.Context, messageType uint32, payload []byte) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.cmd.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set command deadline: %w", err)
		}
		defer func() { _ = c.cmd.SetDeadline(time.Time{}) }()
	}

	if err := WriteMessage(c.cmd, messageType, payload); err != nil {
		return nil, err
	}
	frame, err := ReadMessage(c.cmd)
	if err != nil {
		return nil, err
	}
	if frame.Type != messageType {
		return nil, fmt.Errorf("compositor replied type %d to request type %d", frame.Type, messageType)
	}
	return frame.Payload, nil
}

// commandResult is one entry of a run_command reply array.
type commandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RunCommand submits a textual sway command and fails if the compositor
// rejects any part of it. Failed commands are never retried: replaying a
// layout command against a tree that half-applied it corrupts placement.
func (c *Client) RunCommand(ctx context.Context, command string) error {
	payload, err := c.roundTrip(ctx, MessageRunCommand, []byte(command))
	if err != nil {
		return fmt.Errorf("run command %q: %w", command, err)
	}

	var results []commandResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return fmt.Errorf("decode run command reply: %w", err)
	}
	for _, res := range results {
		if !res.Success {
			return fmt.Errorf("compositor rejected %q: %s", command, res.Error)
		}
	}
	return nil
}

// GetTree fetches the full layout tree.
func (c *Client) GetTree(ctx context.Context) (*Node, error) {
	payload, err := c.roundTrip(ctx, MessageGetTree, nil)
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	var root Node
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &root, nil
}

// GetWorkspaces fetches the workspace list.
func (c *Client) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	payload, err := c.roundTrip(ctx, MessageGetWorkspaces, nil)
	if err != nil {
		return nil, fmt.Errorf("get workspaces: %w", err)
	}
	var workspaces []Workspace
	if err := json.Unmarshal(payload, &workspaces); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	return workspaces, nil
}

// FocusedWorkspace returns the workspace the compositor currently reports
// focused. Queried fresh per call, never cached.
func (c *Client) FocusedWorkspace(ctx context.Context) (Workspace, error) {
	workspaces, err := c.GetWorkspaces(ctx)
	if err != nil {
		return Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.Focused {
			return ws, nil
		}
	}
	return Workspace{}, errors.New("no focused workspace")
}
