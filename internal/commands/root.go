// Package commands provides CLI commands for chatpanel.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	endpointFlag string
	verboseFlag  bool
	outputFlag   string
	fileFlag     string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatpanel [prompt]",
	Short: "Terminal chat client for a JSON chat endpoint",
	Long: `chatpanel sends your conversation to a chat endpoint that accepts
POST {"messages": [...]} and answers with a single message.

Examples:
  chatpanel chat                        Start the interactive chat panel
  chatpanel chat --demo                 Start with a sample conversation
  chatpanel "What is Go?"               Send a single prompt
  chatpanel -f prompt.md                Read prompt from file
  cat prompt.md | chatpanel             Read prompt from stdin
  chatpanel "Hello" -o reply.md         Save the reply to a file
  chatpanel config set endpoint http://localhost:3000/api/chat`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "chatpanel %s (built %s)\n", Version, BuildTime)
			return nil
		}

		deps, err := newDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		prompt, ok, err := readPrompt(args, fileFlag, deps.Stdin, deps.StdinPiped)
		if err != nil {
			return err
		}
		if !ok {
			return cmd.Help()
		}
		return runQuery(cmd.Context(), deps, prompt)
	},
}

// readPrompt picks the prompt from -f, stdin or the positional argument,
// in that order. ok is false when there is no input at all.
func readPrompt(args []string, file string, stdin io.Reader, stdinPiped bool) (prompt string, ok bool, err error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if stdinPiped && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var shown *exitError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, errorLine(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Chat endpoint URL (overrides config and CHATPANEL_ENDPOINT)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Debug logging and detailed errors")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}
