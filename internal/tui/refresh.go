package tui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatpanel/internal/api"
)

// probeTimeout bounds a single status probe.
const probeTimeout = 5 * time.Second

// Prober checks whether the chat server is reachable.
type Prober interface {
	Probe(ctx context.Context, url string) (api.ProbeResult, error)
}

// RefreshService turns refresh requests into status probes run by the
// Bubble Tea loop. Requests made while one is pending are coalesced.
type RefreshService struct {
	ch       chan struct{}
	requests atomic.Int64
}

// NewRefreshService creates an idle refresh service.
func NewRefreshService() *RefreshService {
	return &RefreshService{ch: make(chan struct{}, 1)}
}

// Refresh requests a new probe. It never blocks.
func (r *RefreshService) Refresh() {
	r.requests.Add(1)
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// Requests returns how many refreshes were requested.
func (r *RefreshService) Requests() int64 {
	return r.requests.Load()
}

type (
	refreshMsg struct{}
	statusMsg  struct {
		result api.ProbeResult
		err    error
	}
)

func waitForRefresh(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return refreshMsg{}
	}
}

// probeCmd re-derives the server status. It returns nil when there is
// nothing to probe.
func probeCmd(p Prober, url string) tea.Cmd {
	if p == nil || url == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		result, err := p.Probe(ctx, url)
		return statusMsg{result: result, err: err}
	}
}
