package commands

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diogo/chatpanel/internal/api"
	"github.com/diogo/chatpanel/internal/config"
	"github.com/diogo/chatpanel/internal/logging"
	"github.com/diogo/chatpanel/internal/models"
)

type fakeProber struct {
	result api.ProbeResult
	err    error
	delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, url string) (api.ProbeResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return api.ProbeResult{}, ctx.Err()
		}
	}
	res := f.result
	res.URL = url
	return res, f.err
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testDeps struct {
	*Dependencies
	sender *api.MockSender
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	td := &testDeps{
		sender: &api.MockSender{Reply: models.NewAssistantMessage("hi")},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	td.Dependencies = &Dependencies{
		Config: config.DefaultConfig(),
		Logger: logging.Nop(),
		Sender: td.sender,
		Stdout: td.stdout,
		Stderr: td.stderr,
		Width:  80,
		Clipboard: func(s string) error {
			td.copied = append(td.copied, s)
			return nil
		},
	}
	return td
}

// setFlag sets a package flag variable for the duration of the test.
func setFlag[T any](t *testing.T, flag *T, value T) {
	t.Helper()
	old := *flag
	*flag = value
	t.Cleanup(func() { *flag = old })
}
