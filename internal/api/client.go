package api

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/diogo/chatpanel/internal/models"
)

// DefaultTimeout is zero: a request is not bounded unless WithTimeout is set.
const DefaultTimeout time.Duration = 0

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "chatpanel"

// HTTPDoer is the subset of tls_client.HttpClient used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends conversations to the chat endpoint
type Client struct {
	httpClient HTTPDoer
	endpoint   string
	userAgent  string
	headers    map[string]string
	timeout    time.Duration

	logger *zap.Logger
	tracer trace.Tracer
	meter  metric.Meter

	requestDuration metric.Float64Histogram
	requestFailures metric.Int64Counter

	mu     sync.RWMutex
	closed bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the chat endpoint URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the transport (used by tests)
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for request spans
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter sets the meter used for request metrics
func WithMeter(meter metric.Meter) ClientOption {
	return func(c *Client) {
		if meter != nil {
			c.meter = meter
		}
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint:  models.DefaultEndpoint,
		userAgent: DefaultUserAgent,
		headers:   make(map[string]string),
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
		tracer:    tracenoop.NewTracerProvider().Tracer(""),
		meter:     metricnoop.NewMeterProvider().Meter(""),
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := validateEndpoint(client.endpoint); err != nil {
		return nil, err
	}

	if client.httpClient == nil {
		// always set: zero replaces tls-client's own default with no limit
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	var err error
	client.requestDuration, err = client.meter.Float64Histogram(
		"chat.request.duration",
		metric.WithDescription("Chat request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	client.requestFailures, err = client.meter.Int64Counter(
		"chat.request.failures",
		metric.WithDescription("Chat requests that did not produce a reply"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	return client, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// Endpoint returns the configured chat endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close marks the client closed; later requests fail with ErrClientClosed
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
