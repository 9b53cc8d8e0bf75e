package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/chatpanel/internal/chat"
	"github.com/diogo/chatpanel/internal/models"
	"github.com/diogo/chatpanel/internal/render"
	"github.com/diogo/chatpanel/internal/tui"
)

var demoFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat panel",
	Long: `Start the interactive chat panel.

Every message is sent together with the whole conversation so far.
Type /copy to copy the last reply, /clear to clear the input,
/exit or /quit (or press Esc / Ctrl+C) to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		return runChat(cmd.Context(), deps, demoFlag)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&demoFlag, "demo", false, "Start with a sample conversation")
}

func runChat(ctx context.Context, deps *Dependencies, demo bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := deps.Config

	toasts := tui.NewToastNotifier(16)
	refresher := tui.NewRefreshService()

	orch := chat.NewOrchestrator(deps.Sender,
		chat.WithNotifier(toasts),
		chat.WithRefresher(refresher),
		chat.WithLogger(deps.Logger),
		chat.WithMinPromptLength(cfg.MinPromptLength),
	)
	if demo {
		orch.Seed(models.SampleTranscript())
	}

	palette, ok := render.PaletteByName(cfg.TUITheme)
	if !ok && cfg.TUITheme != "" {
		deps.Logger.Warn("unknown tui theme, using default", zap.String("theme", cfg.TUITheme))
	}

	deps.Logger.Info("chat panel started",
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("demo", demo),
	)

	return deps.RunTUI(orch, toasts, refresher, tui.Options{
		Context:   ctx,
		Endpoint:  cfg.Endpoint,
		StatusURL: cfg.StatusURL,
		Prober:    deps.Prober,
		Render:    render.OptionsFromConfig(cfg.Markdown),
		Palette:   palette,
		Clipboard: deps.Clipboard,
		Logger:    deps.Logger,
	})
}
