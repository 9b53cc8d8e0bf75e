package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/chatpanel/internal/chat"
	"github.com/diogo/chatpanel/internal/render"
	"github.com/diogo/chatpanel/internal/tui"
)

// exitError marks a failure that was already shown to the user.
type exitError struct {
	err error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// cliNotifier holds notifications until the spinner has cleared its line.
type cliNotifier struct {
	mu    sync.Mutex
	notes []chat.Notification
}

func (n *cliNotifier) Notify(note chat.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *cliNotifier) flush(w io.Writer) {
	n.mu.Lock()
	notes := n.notes
	n.notes = nil
	n.mu.Unlock()

	for _, note := range notes {
		fmt.Fprintln(w, formatNotification(note))
	}
}

func formatNotification(n chat.Notification) string {
	color := colorText
	mark := "•"
	if n.Variant == chat.VariantDestructive {
		color = colorError
		mark = "✗"
	}
	out := lipgloss.NewStyle().Foreground(color).Bold(true).Render(mark + " " + n.Title)
	if n.Description != "" {
		out += "\n  " + lipgloss.NewStyle().Foreground(color).Render(n.Description)
	}
	return out
}

// statusRefresher re-probes the status URL after each submission. The probe
// runs in the background; status joins it.
type statusRefresher struct {
	ctx    context.Context
	prober tui.Prober
	url    string
	logger *zap.Logger

	mu      sync.Mutex
	done    chan struct{}
	last    string
	checked bool
}

func (r *statusRefresher) Refresh() {
	if r.prober == nil || r.url == "" {
		return
	}
	done := make(chan struct{})
	r.mu.Lock()
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		r.probe()
	}()
}

func (r *statusRefresher) probe() {
	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()

	result, err := r.prober.Probe(ctx, r.url)
	var line string
	switch {
	case err != nil:
		line = fmt.Sprintf("offline (%v)", err)
	case result.Online():
		line = fmt.Sprintf("online (%s)", result.Latency.Round(time.Millisecond))
	default:
		line = fmt.Sprintf("offline (status %d)", result.StatusCode)
	}

	r.mu.Lock()
	r.last, r.checked = line, true
	r.mu.Unlock()
	r.logger.Debug("server status", zap.String("url", r.url), zap.String("status", line))
}

// status waits for the latest probe, if any, and returns its summary.
func (r *statusRefresher) status() (string, bool) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.checked
}

func errorLine(err error) string {
	return lipgloss.NewStyle().Foreground(colorError).Render(fmt.Sprintf("✗ %v", err))
}

// runQuery sends a single prompt through the orchestrator and prints the
// reply. Output is decorated only when stdout is a terminal.
func runQuery(ctx context.Context, deps *Dependencies, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	cfg := deps.Config

	// an unjoined probe is abandoned when the query returns
	probeCtx, cancelProbe := context.WithCancel(ctx)
	defer cancelProbe()

	notifier := &cliNotifier{}
	refresher := &statusRefresher{
		ctx:    probeCtx,
		prober: deps.Prober,
		url:    cfg.StatusURL,
		logger: deps.Logger,
	}
	orch := chat.NewOrchestrator(deps.Sender,
		chat.WithNotifier(notifier),
		chat.WithRefresher(refresher),
		chat.WithLogger(deps.Logger),
		chat.WithMinPromptLength(cfg.MinPromptLength),
	)

	var spin *replySpinner
	if deps.Interactive {
		// a one-shot conversation sends only the prompt
		spin = newReplySpinner(deps.Stderr, orch.Len()+1)
		spin.start()
	}

	startTime := time.Now()
	out, err := orch.Submit(ctx, prompt)
	requestDuration := time.Since(startTime)

	if err != nil || !out.OK() {
		if spin != nil {
			spin.fail()
		}
		if err != nil {
			if ferr := orch.FieldError(); ferr != nil {
				fmt.Fprintln(deps.Stderr, errorLine(errors.New(ferr.Message)))
			} else {
				fmt.Fprintln(deps.Stderr, errorLine(err))
			}
			return &exitError{err: err}
		}
		notifier.flush(deps.Stderr)
		if verboseFlag {
			fmt.Fprintln(deps.Stderr, tui.FormatError(out.Err))
		}
		return &exitError{err: out.Err}
	}
	if spin != nil {
		spin.succeed(out)
	}

	if verboseFlag {
		fmt.Fprintf(deps.Stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
		if line, ok := refresher.status(); ok {
			fmt.Fprintf(deps.Stderr, "[verbose] Server %s\n", line)
		}
	}

	text := out.Reply.Content

	if cfg.CopyToClipboard && deps.Clipboard != nil {
		if err := deps.Clipboard(text); err != nil {
			deps.Logger.Warn("clipboard write failed", zap.Error(err))
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else if deps.Interactive {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if deps.Interactive {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", outputFlag),
			))
		}
		return nil
	}

	if !deps.Interactive {
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	fmt.Fprintln(deps.Stdout, renderReply(text, deps.Width, cfg.TUITheme, render.OptionsFromConfig(cfg.Markdown)))
	return nil
}

// renderReply draws the reply the way the chat panel does: a label and a
// bordered bubble around the rendered markdown.
func renderReply(text string, termWidth int, theme string, opts render.Options) string {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	palette, _ := render.PaletteByName(theme)

	label := lipgloss.NewStyle().
		Foreground(palette.Assistant).
		Bold(true).
		Render("✦ Assistant")

	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(palette.Assistant).
		Foreground(palette.Text).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1).
		Width(bubbleWidth).
		Render(render.Reply(text, opts.WithWidth(contentWidth)))

	return label + "\n" + bubble
}
