package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatpanel/internal/chat"
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 5 * time.Second

// maxVisibleToasts caps the stack drawn under the input.
const maxVisibleToasts = 3

// ToastNotifier delivers notifications into the Bubble Tea loop.
type ToastNotifier struct {
	ch      chan chat.Notification
	dropped atomic.Int64
}

// NewToastNotifier creates a notifier buffering up to size notifications.
func NewToastNotifier(size int) *ToastNotifier {
	if size <= 0 {
		size = 1
	}
	return &ToastNotifier{ch: make(chan chat.Notification, size)}
}

// Notify queues n without blocking. When the buffer is full n is dropped.
func (t *ToastNotifier) Notify(n chat.Notification) {
	select {
	case t.ch <- n:
	default:
		t.dropped.Add(1)
	}
}

// C exposes the queue for listeners.
func (t *ToastNotifier) C() <-chan chat.Notification {
	return t.ch
}

// Dropped returns how many notifications were discarded.
func (t *ToastNotifier) Dropped() int64 {
	return t.dropped.Load()
}

type (
	toastMsg struct {
		n chat.Notification
	}
	toastExpiredMsg struct {
		id int
	}
)

type toast struct {
	id int
	n  chat.Notification
}

// waitForToast blocks until the next notification arrives.
func waitForToast(ch <-chan chat.Notification) tea.Cmd {
	return func() tea.Msg {
		return toastMsg{n: <-ch}
	}
}

func dismissToastAfter(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func renderToast(n chat.Notification, width int) string {
	style := toastStyle
	if n.Variant == chat.VariantDestructive {
		style = toastDestructiveStyle
	}
	body := toastTitleStyle.Render(n.Title)
	if n.Description != "" {
		body += "\n" + n.Description
	}
	return style.Width(width).Render(body)
}
