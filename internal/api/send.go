package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apierrors "github.com/diogo/chatpanel/internal/errors"
	"github.com/diogo/chatpanel/internal/models"
)

// Send posts the conversation to the chat endpoint and returns the single
// message it answers with. Only status 200 counts as success.
func (c *Client) Send(ctx context.Context, messages []models.Message) (models.Message, error) {
	if c.IsClosed() {
		return models.Message{}, apierrors.ErrClientClosed
	}

	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "chat.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("chat.request_id", requestID),
			attribute.Int("chat.messages", len(messages)),
		),
	)
	defer span.End()

	start := time.Now()
	reply, status, err := c.doSend(ctx, requestID, messages)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.Int("http.status_code", status))
	c.requestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	if err != nil {
		c.requestFailures.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("chat request failed",
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return models.Message{}, err
	}

	span.SetAttributes(attribute.Int("http.status_code", status))
	c.logger.Debug("chat request succeeded",
		zap.String("request_id", requestID),
		zap.Duration("elapsed", elapsed),
		zap.Int("reply_bytes", len(reply.Content)),
	)
	return reply, nil
}

// doSend performs the request. The returned status is 0 when no response
// was received.
func (c *Client) doSend(ctx context.Context, requestID string, messages []models.Message) (models.Message, int, error) {
	payload, err := json.Marshal(models.ChatRequest{Messages: models.CloneMessages(messages)})
	if err != nil {
		return models.Message{}, 0, &apierrors.ParseError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.Message{}, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders(c.userAgent) {
		req.Header.Set(key, value)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.HeaderRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Message{}, 0, c.transportError("send chat", err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, models.MaxErrorBody))
		apiErr := apierrors.NewAPIError(resp.StatusCode, c.endpoint, errorSummary(resp.StatusCode, body))
		apiErr.Body = string(body)
		return models.Message{}, resp.StatusCode, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Message{}, resp.StatusCode, c.transportError("read response", err)
	}

	reply, err := ParseReply(body)
	if err != nil {
		return models.Message{}, resp.StatusCode, err
	}
	return reply, resp.StatusCode, nil
}

// transportError classifies a failure that happened before a complete
// response was read.
func (c *Client) transportError(op string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apierrors.NewTimeoutError(op, c.endpoint)
	}
	return apierrors.NewNetworkError(op, c.endpoint, err)
}

// errorSummary picks a short message for a failed response.
func errorSummary(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if msg := parsed.Get(PathErrorMessage); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
		if msg := parsed.Get(PathErrorText); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status " + strconv.Itoa(status)
}

// ParseReply extracts a message from a successful response body.
func ParseReply(body []byte) (models.Message, error) {
	if !gjson.ValidBytes(body) {
		return models.Message{}, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return models.Message{}, apierrors.NewParseError("expected a JSON object", "")
	}

	obj := parsed
	if !obj.Get(PathContent).Exists() {
		for _, path := range []string{PathChoiceMessage, PathWrappedMessage} {
			if candidate := parsed.Get(path); candidate.IsObject() {
				obj = candidate
				break
			}
		}
	}

	content := obj.Get(PathContent)
	if !content.Exists() {
		return models.Message{}, apierrors.NewParseError("missing message content", PathContent)
	}
	if content.Type != gjson.String {
		return models.Message{}, apierrors.NewParseError("message content is not a string", PathContent)
	}

	role := models.RoleAssistant
	if r := obj.Get(PathRole); r.Exists() {
		parsedRole, err := models.ParseRole(r.String())
		if err != nil {
			return models.Message{}, &apierrors.ParseError{Message: err.Error(), Path: PathRole, Err: err}
		}
		role = parsedRole
	}

	return models.Message{Role: role, Content: content.String()}, nil
}
