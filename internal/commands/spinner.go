package commands

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatpanel/internal/chat"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorError    = lipgloss.Color("#f7768e")
)

const (
	spinnerInterval = 80 * time.Millisecond
	spinnerLabel    = "Waiting for a reply"

	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"
)

var spinnerGlyphs = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// replySpinner animates on stderr while one submission is in flight. Each
// frame shows how many messages were sent and how long the wait has been.
type replySpinner struct {
	w       io.Writer
	sent    int
	started time.Time
	tick    int

	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func newReplySpinner(w io.Writer, sent int) *replySpinner {
	return &replySpinner{
		w:        w,
		sent:     sent,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (s *replySpinner) start() {
	s.started = time.Now()
	go s.loop()
}

func (s *replySpinner) loop() {
	defer close(s.finished)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	fmt.Fprint(s.w, hideCursor)
	for {
		select {
		case <-s.quit:
			fmt.Fprint(s.w, clearLine+showCursor)
			return
		case now := <-ticker.C:
			fmt.Fprint(s.w, s.frame(now.Sub(s.started)))
			s.tick++
		}
	}
}

// frame renders one animation step.
func (s *replySpinner) frame(elapsed time.Duration) string {
	glyph := lipgloss.NewStyle().
		Foreground(gradientColors[s.tick%len(gradientColors)]).
		Bold(true).
		Render(spinnerGlyphs[s.tick%len(spinnerGlyphs)])
	label := lipgloss.NewStyle().Foreground(colorText).Render(spinnerLabel)
	meta := lipgloss.NewStyle().Foreground(colorTextMute).Render(
		fmt.Sprintf("%s · %s", messageCount(s.sent), elapsed.Truncate(time.Second)),
	)
	return fmt.Sprintf("%s%s %s %s", clearLine, glyph, label, meta)
}

// halt stops the animation, clears its line and returns the time spent
// waiting. It is safe to call more than once.
func (s *replySpinner) halt() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	s.once.Do(func() { close(s.quit) })
	<-s.finished
	return time.Since(s.started)
}

// succeed replaces the animation with a summary of the merged reply.
func (s *replySpinner) succeed(out chat.Outcome) {
	elapsed := s.halt()
	mark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
		fmt.Sprintf("Reply received in %s · %s", elapsed.Round(100*time.Millisecond), messageCount(out.Count)),
	)
	fmt.Fprintf(s.w, "%s %s\n", mark, msg)
}

// fail clears the animation; the notification is printed by the caller.
func (s *replySpinner) fail() {
	s.halt()
}

func messageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}
