package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/chatpanel/internal/api"
	"github.com/diogo/chatpanel/internal/chat"
	"github.com/diogo/chatpanel/internal/config"
	"github.com/diogo/chatpanel/internal/logging"
	"github.com/diogo/chatpanel/internal/telemetry"
	"github.com/diogo/chatpanel/internal/tui"
)

// TUIRunner starts the chat panel.
type TUIRunner func(orch *chat.Orchestrator, toasts *tui.ToastNotifier, refresher *tui.RefreshService, opts tui.Options) error

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Config config.Config
	Logger *zap.Logger

	// Sender performs chat requests; Prober checks the status URL.
	Sender chat.Sender
	Prober tui.Prober

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether stdout is a terminal.
	Interactive bool
	// StdinPiped reports whether stdin carries data.
	StdinPiped bool
	Width      int

	Clipboard func(string) error
	RunTUI    TUIRunner

	closers []func()
}

// Close releases everything opened by buildDependencies, last first.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func (d *Dependencies) onClose(fn func()) {
	d.closers = append(d.closers, fn)
}

// newDependencies is replaced in tests.
var newDependencies = buildDependencies

// buildDependencies wires the production stack: config, logger, telemetry
// and the HTTP client.
func buildDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg = config.ApplyEnv(cfg)
	if endpointFlag != "" {
		cfg.Endpoint = endpointFlag
	}

	deps := &Dependencies{
		Config:      cfg,
		Logger:      logging.Nop(),
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isStdoutTTY(),
		StdinPiped:  hasStdinData(),
		Width:       getTerminalWidth(),
		Clipboard:   clipboard.WriteAll,
		RunTUI:      tui.Run,
	}

	logDir, err := config.GetLogDir()
	if err != nil {
		return nil, err
	}

	logOpts := logging.DefaultOptions(logDir)
	logOpts.Level = cfg.LogLevel
	logOpts.Verbose = verboseFlag
	if logger, closeLog, err := logging.New(logOpts); err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		deps.Logger = logger
		deps.onClose(closeLog)
	}

	providers := telemetry.Noop()
	if cfg.Telemetry {
		p, err := telemetry.Init(ctx, logDir, Version, deps.Logger)
		if err != nil {
			deps.Logger.Warn("telemetry disabled", zap.Error(err))
		} else {
			providers = p
			deps.onClose(func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = providers.Shutdown(shutdownCtx)
			})
		}
	}

	client, err := api.NewClient(
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		api.WithUserAgent("chatpanel/"+Version),
		api.WithLogger(deps.Logger),
		api.WithTracer(providers.Tracer),
		api.WithMeter(providers.Meter),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	deps.onClose(client.Close)

	deps.Sender = client
	deps.Prober = client

	deps.Logger.Debug("dependencies ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("telemetry", cfg.Telemetry),
	)
	return deps, nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func hasStdinData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
