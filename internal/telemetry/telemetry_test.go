package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNoop(t *testing.T) {
	p := Noop()
	if p.Tracer == nil || p.Meter == nil {
		t.Fatal("expected non-nil tracer and meter")
	}

	_, span := p.Tracer.Start(context.Background(), "noop")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNilProvidersShutdown(t *testing.T) {
	var p *Providers
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on nil = %v", err)
	}
}

func TestInitExportsSpansToFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	p, err := Init(ctx, dir, "test", nil)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := p.Tracer.Start(ctx, "chat.send")
	span.End()

	counter, err := p.Meter.Int64Counter("chat.request.failures")
	if err != nil {
		t.Fatal(err)
	}
	counter.Add(ctx, 1)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TracesFile))
	if err != nil {
		t.Fatalf("trace file missing: %v", err)
	}
	if !strings.Contains(string(data), "chat.send") {
		t.Errorf("trace file does not mention the span: %s", data)
	}
}
