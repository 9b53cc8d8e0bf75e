package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatpanel/internal/config"
	"github.com/diogo/chatpanel/internal/render"
)

// NewConfigCmd creates the config command tree
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show or change chatpanel settings stored in config.json.

Keys: ` + strings.Join(config.Keys(), ", "),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				cfg = config.ApplyEnv(cfg)
				return showConfig(cmd, cfg)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setConfig(cmd, args[0], args[1])
			},
		},
	)

	return cmd
}

var configCmd = NewConfigCmd()

func showConfig(cmd *cobra.Command, cfg config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, string(data))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Markdown styles: %s\n", strings.Join(styleNames(), ", "))
	fmt.Fprintf(out, "TUI themes:      %s\n", strings.Join(render.PaletteNames(), ", "))
	return nil
}

func styleNames() []string {
	styles := render.AvailableStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.Name
	}
	return names
}

func setConfig(cmd *cobra.Command, key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if key == "tui_theme" {
		if _, ok := render.PaletteByName(value); !ok {
			return fmt.Errorf("unknown tui theme %q (available: %s)", value, strings.Join(render.PaletteNames(), ", "))
		}
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
	return nil
}
