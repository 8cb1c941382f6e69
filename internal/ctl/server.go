package ctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// requestReadTimeout bounds how long a connection may take to deliver its one
// request line, so an idle client cannot pin a goroutine past shutdown.
const requestReadTimeout = 2 * time.Second

// Handler dispatches one decoded control command.
type Handler interface {
	Handle(ctx context.Context, cmd Command) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Command) error

func (f HandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Serve accepts control clients until context cancellation or listener close.
// Each connection carries exactly one request line and one reply line.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		writeReply(conn, fmt.Errorf("read request: %v", err))
		return
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		writeReply(conn, err)
		return
	}

	// Liveness probes are answered here so a backlogged engine cannot make
	// the daemon look dead to Acquire.
	if _, ok := cmd.(Ping); ok {
		writeReply(conn, nil)
		return
	}

	writeReply(conn, handler.Handle(ctx, cmd))
}

func writeReply(conn net.Conn, err error) {
	_, _ = conn.Write([]byte(FormatReply(err) + "\n"))
}
