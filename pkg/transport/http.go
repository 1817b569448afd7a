package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
)

const maxReceiptBody = 4 << 10

// ErrEndpointRequired is returned by NewHTTP for an empty endpoint.
var ErrEndpointRequired = errors.New("transport: endpoint is required")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transport: endpoint responded %d", e.StatusCode)
	}
	return fmt.Sprintf("transport: endpoint responded %d: %s", e.StatusCode, e.Body)
}

// HTTP posts payloads to an endpoint. Any 2xx response is a success.
type HTTP struct {
	endpoint string
	client   *http.Client
	format   payload.Format
	header   http.Header
	logger   *zap.Logger
	prop     propagation.TextMapPropagator
}

// Ensure the implementation satisfies the submission contract.
var _ submission.Transport = (*HTTP)(nil)

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient overrides the client used to post payloads.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTP) {
		if client != nil {
			t.client = client
		}
	}
}

// WithFormat selects the request encoding. Defaults to form encoding, the
// shape a browser form post would produce.
func WithFormat(format payload.Format) HTTPOption {
	return func(t *HTTP) {
		if format != "" {
			t.format = format
		}
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTP) {
		t.header.Add(key, value)
	}
}

// WithHTTPLogger sets the logger used for request diagnostics.
func WithHTTPLogger(logger *zap.Logger) HTTPOption {
	return func(t *HTTP) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithPropagator injects trace context into request headers with p instead of
// the global propagator.
func WithPropagator(p propagation.TextMapPropagator) HTTPOption {
	return func(t *HTTP) {
		if p != nil {
			t.prop = p
		}
	}
}

// NewHTTP builds an HTTP transport posting to endpoint.
func NewHTTP(endpoint string, options ...HTTPOption) (*HTTP, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	t := &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: time.Minute},
		format:   payload.FormatForm,
		header:   make(http.Header),
		logger:   zap.NewNop(),
		prop:     otel.GetTextMapPropagator(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t, nil
}

// Send posts p and maps the response to a receipt.
func (t *HTTP) Send(ctx context.Context, p payload.Payload) (submission.Receipt, error) {
	body, err := t.format.Encode(p)
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("transport: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("transport: build request: %w", err)
	}
	for key, values := range t.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", t.format.ContentType())
	req.Header.Set("Accept", "application/json, text/plain, */*")
	t.prop.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.client.Do(req)
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("transport: post %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReceiptBody))
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("transport: read response: %w", err)
	}
	message := strings.TrimSpace(string(raw))

	t.logger.Debug("transport: response",
		zap.String("endpoint", t.endpoint),
		zap.Int("status", resp.StatusCode),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return submission.Receipt{StatusCode: resp.StatusCode}, &StatusError{StatusCode: resp.StatusCode, Body: message}
	}
	return submission.Receipt{StatusCode: resp.StatusCode, Message: message}, nil
}
