package api

import (
	"context"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"go.uber.org/zap"

	apierrors "github.com/diogo/chatpanel/internal/errors"
)

// ProbeResult is the outcome of a status probe.
type ProbeResult struct {
	URL        string
	StatusCode int
	Latency    time.Duration
	CheckedAt  time.Time
}

// Online reports whether the probed server answered with a 2xx status.
func (r ProbeResult) Online() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Probe issues a GET to target and reports the status. It never touches
// the conversation.
func (c *Client) Probe(ctx context.Context, target string) (ProbeResult, error) {
	result := ProbeResult{URL: target, CheckedAt: time.Now()}

	if c.IsClosed() {
		return result, apierrors.ErrClientClosed
	}
	if err := validateEndpoint(target); err != nil {
		return result, err
	}

	ctx, span := c.tracer.Start(ctx, "chat.probe")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		c.logger.Debug("status probe failed", zap.String("url", target), zap.Error(err))
		return result, apierrors.NewNetworkError("probe", target, err)
	}
	defer func() {
		if resp.Body != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			_ = resp.Body.Close()
		}
	}()

	result.StatusCode = resp.StatusCode
	c.logger.Debug("status probe",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", result.Latency),
	)
	return result, nil
}
