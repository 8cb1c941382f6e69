package ctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"
)

// Send opens a unix-socket request/response roundtrip with a deadline: one
// command line out, one reply line back. A nil error means the daemon
// answered OK; an error from ParseReply carries the daemon's message.
func Send(ctx context.Context, path string, command string, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write([]byte(strings.TrimSpace(command) + "\n")); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	return ParseReply(line)
}

// Probe checks whether a responsive daemon is listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	err := Send(ctx, path, "ping", timeout)
	if err == nil {
		return true, nil
	}
	if IsDaemonUnavailable(err) {
		return false, nil
	}
	// Any decoded reply, even an error, proves a live owner.
	var reply *replyError
	if errors.As(err, &reply) {
		return true, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// IsDaemonUnavailable reports transport failures that mean no daemon is
// reachable: the socket is missing or nothing accepts on it.
func IsDaemonUnavailable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(err.Error(), "no such file or directory")
}

// replyError distinguishes daemon-reported errors from transport errors.
type replyError struct {
	msg string
}

func (e *replyError) Error() string {
	return e.msg
}
