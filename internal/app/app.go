// Package app wires the swaybard process: the CLI command tree, the daemon
// runtime, and forwarding of client verbs to a running daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"swaybard/internal/config"
	"swaybard/internal/ctl"
	"swaybard/internal/logging"
	"swaybard/internal/version"
)

const forwardTimeout = 2 * time.Second

// Runner executes one CLI invocation with injected output streams.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	app := r.newApp()
	err := app.RunContext(ctx, append([]string{app.Name}, args...))
	if err == nil {
		return 0
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintf(r.Stderr, "error: %s\n", msg)
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func (r Runner) newApp() *cli.App {
	return &cli.App{
		Name:      "swaybard",
		Usage:     "a daemon that persuades sway into spiral and stack-main layouts",
		Version:   version.String(),
		Writer:    r.Stdout,
		ErrWriter: r.Stderr,
		// Exit codes are decided in Execute, not by os.Exit inside Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket-path",
				Aliases: []string{"s"},
				Usage:   "control socket path (daemon and client)",
			},
		},
		Commands: []*cli.Command{
			r.daemonCommand(),
			r.changeLayoutCommand(),
			r.forwardCommand("stack-focus-next", "Focus the next stack window with wraparound"),
			r.forwardCommand("stack-focus-prev", "Focus the previous stack window with wraparound"),
			r.forwardCommand("stack-swap-main", "Swap the main window with the focused stack window"),
			r.forwardCommand("stack-main-rotate-next", "Rotate the front of the stack into the main position"),
			r.forwardCommand("stack-main-rotate-prev", "Rotate the back of the stack into the main position"),
		},
	}
}

func (r Runner) daemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run the layout daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file path"},
			&cli.StringFlag{Name: "default-layout", Usage: "layout for new workspaces: manual, spiral, stack-main"},
			&cli.IntFlag{Name: "stack-main-default-size", Value: -1, Usage: "default main area size percent"},
			&cli.StringFlag{Name: "stack-main-default-stack-layout", Usage: "default stack arrangement: tabbed, tiled, stacked"},
			&cli.BoolFlag{Name: "workspace-renaming", Usage: "rename workspaces after their focused application"},
			&cli.StringFlag{Name: "on-window-focus", Usage: "sway command run against a window gaining focus"},
			&cli.StringFlag{Name: "on-window-focus-leave", Usage: "sway command run against the window losing focus"},
			&cli.StringFlag{Name: "on-exit", Usage: "sway command run when the daemon exits"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, or error"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := buildConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = logger.Sync() }()

			if err := r.runDaemon(c.Context, cfg, logger); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// buildConfig layers the config file under the daemon flags.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("default-layout") {
		cfg.DefaultLayout = c.String("default-layout")
	}
	if size := c.Int("stack-main-default-size"); size >= 0 {
		cfg.StackMainSize = size
	}
	if c.IsSet("stack-main-default-stack-layout") {
		cfg.StackMainStackLayout = c.String("stack-main-default-stack-layout")
	}
	if c.IsSet("workspace-renaming") {
		cfg.WorkspaceRenaming = c.Bool("workspace-renaming")
	}
	if c.IsSet("on-window-focus") {
		cfg.OnWindowFocus = c.String("on-window-focus")
	}
	if c.IsSet("on-window-focus-leave") {
		cfg.OnWindowFocusLeave = c.String("on-window-focus-leave")
	}
	if c.IsSet("on-exit") {
		cfg.OnExit = c.String("on-exit")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("socket-path") {
		cfg.SocketPath = c.String("socket-path")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// changeLayoutCommand forwards its raw argument line so the daemon's grammar
// stays the single source of truth.
func (r Runner) changeLayoutCommand() *cli.Command {
	return &cli.Command{
		Name:            "change-layout",
		Usage:           "Switch the focused workspace's layout",
		UsageText:       "swaybard change-layout <manual|spiral|stack-main [--size N] [--stack-layout tabbed|tiled|stacked]>",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			line := strings.Join(append([]string{"change-layout"}, c.Args().Slice()...), " ")
			return r.forward(c, line)
		},
	}
}

func (r Runner) forwardCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			return r.forward(c, name)
		},
	}
}

// forward sends one command line to the daemon's control socket and maps the
// reply onto exit codes: 0 for OK, 1 for an ERROR reply or transport failure.
func (r Runner) forward(c *cli.Context, line string) error {
	path := c.String("socket-path")
	if path == "" {
		resolved, err := ctl.DefaultSocketPath()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		path = resolved
	}

	if err := ctl.Send(c.Context, path, line, forwardTimeout); err != nil {
		if ctl.IsDaemonUnavailable(err) {
			return cli.Exit("no swaybard daemon running", 1)
		}
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(r.Stdout, "OK")
	return nil
}
