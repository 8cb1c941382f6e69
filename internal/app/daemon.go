package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"swaybard/internal/config"
	"swaybard/internal/ctl"
	"swaybard/internal/engine"
	"swaybard/internal/sway"
)

const (
	acquireProbeTimeout = 200 * time.Millisecond
	acquireRetries      = 3
)

// runDaemon owns the daemon lifetime: control socket acquisition, compositor
// connections and subscription, the engine loop, and teardown.
func (r Runner) runDaemon(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		resolved, err := ctl.DefaultSocketPath()
		if err != nil {
			return err
		}
		socketPath = resolved
	}

	listener, err := ctl.Acquire(ctx, socketPath, acquireProbeTimeout, acquireRetries)
	if err != nil {
		if errors.Is(err, ctl.ErrAlreadyRunning) {
			return fmt.Errorf("%w on %s", ctl.ErrAlreadyRunning, socketPath)
		}
		return err
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	swayPath, err := sway.SocketPath()
	if err != nil {
		return err
	}
	client, err := sway.Connect(swayPath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Subscribe(sway.SubscribeWindow, sway.SubscribeWorkspace, sway.SubscribeShutdown); err != nil {
		return fmt.Errorf("subscribe to compositor events: %w", err)
	}

	eng := engine.New(client, cfg, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pumpErr := make(chan error, 1)
	go func() {
		for {
			event, err := client.NextEvent()
			if err != nil {
				pumpErr <- err
				// Losing the compositor is fatal; route it through the engine
				// so the exit hook still gets a best-effort run.
				_ = eng.Submit(runCtx, sway.Shutdown{})
				return
			}
			if err := eng.Submit(runCtx, event); err != nil {
				return
			}
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- ctl.Serve(runCtx, listener, ctl.HandlerFunc(eng.Dispatch))
	}()

	logger.Info("swaybard daemon started",
		zap.String("control_socket", socketPath),
		zap.String("compositor_socket", swayPath),
		zap.String("default_layout", cfg.DefaultLayout),
	)

	runErr := eng.Run(runCtx)
	cancel()

	if err := <-serveErr; err != nil {
		logger.Error("control server failed", zap.Error(err))
	}
	select {
	case err := <-pumpErr:
		if !errors.Is(err, sway.ErrConnectionClosed) {
			logger.Error("compositor event stream failed", zap.Error(err))
		}
	default:
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
