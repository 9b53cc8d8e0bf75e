package commands

import (
	"context"
	"testing"

	"github.com/diogo/chatpanel/internal/chat"
	"github.com/diogo/chatpanel/internal/render"
	"github.com/diogo/chatpanel/internal/tui"
)

func TestChatCommand(t *testing.T) {
	if chatCmd.Use != "chat" {
		t.Errorf("Use = %q", chatCmd.Use)
	}
	if chatCmd.Flags().Lookup("demo") == nil {
		t.Error("missing --demo flag")
	}
	if err := chatCmd.Args(chatCmd, []string{"extra"}); err == nil {
		t.Error("chat should reject arguments")
	}
}

func TestRunChat(t *testing.T) {
	tests := []struct {
		name      string
		demo      bool
		theme     string
		wantLen   int
		wantTheme string
	}{
		{name: "empty", theme: "nord", wantLen: 0, wantTheme: "nord"},
		{name: "demo", demo: true, theme: "dracula", wantLen: 4, wantTheme: "dracula"},
		{name: "unknown theme", theme: "neon", wantLen: 0, wantTheme: render.TokyoNight.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDeps(t)
			td.Config.TUITheme = tt.theme
			td.Config.StatusURL = "http://localhost:3000/api/health"
			prober := &fakeProber{}
			td.Prober = prober

			var (
				gotLen  int
				gotOpts tui.Options
				wired   bool
			)
			td.RunTUI = func(orch *chat.Orchestrator, toasts *tui.ToastNotifier, refresher *tui.RefreshService, opts tui.Options) error {
				gotLen = orch.Len()
				gotOpts = opts
				wired = toasts != nil && refresher != nil
				return nil
			}

			if err := runChat(context.Background(), td.Dependencies, tt.demo); err != nil {
				t.Fatal(err)
			}
			if gotLen != tt.wantLen {
				t.Errorf("seeded messages = %d, want %d", gotLen, tt.wantLen)
			}
			if gotOpts.Palette.Name != tt.wantTheme {
				t.Errorf("palette = %q, want %q", gotOpts.Palette.Name, tt.wantTheme)
			}
			if gotOpts.StatusURL != td.Config.StatusURL || gotOpts.Endpoint != td.Config.Endpoint {
				t.Errorf("options = %+v", gotOpts)
			}
			if gotOpts.Prober != tui.Prober(prober) {
				t.Error("prober not passed through")
			}
			if !wired {
				t.Error("toasts and refresher must be passed to the panel")
			}
		})
	}
}
