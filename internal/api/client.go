// Package api implements the JSON transport for the admin backend.
//
// All authenticated requests carry the current bearer token from an
// injected TokenSource, so 401 classification and retry policy live in one
// place. The client never retries: a failed request surfaces as a typed
// error and the caller decides what to do, which for the stores means
// "keep stale data and wait for a re-trigger".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 512

// TokenSource supplies the current bearer token. An empty string means no
// usable credential exists; callers are expected to guard before dialing.
type TokenSource interface {
	Token() string
}

// Envelope is the backend's standard success wrapper: {success, data} on
// reads, {success} or {message} on writes. Collection listings bypass it
// and return bare arrays.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Client is the HTTP client for the admin backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// NewClient creates a client for the given base URL ("https://host/api").
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 15 * time.Second,
		tokens:  tokens,
		logger:  slog.Default(),
		tracer:  otel.Tracer("adminsync/api"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// Do performs a JSON request. body is marshalled when non-nil; result is
// unmarshalled from the response body when non-nil. A non-2xx response
// returns *Error; connection failures return *UnreachableError; a body
// that does not decode into result returns *DecodeError.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, method, path, bodyReader, contentType, result)
}

// DoForm performs a multipart/form-data request with the given string
// fields. Product create/update uses form encoding rather than JSON.
func (c *Client) DoForm(ctx context.Context, method, path string, fields map[string]string, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to encode form field %q: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize form body: %w", err)
	}
	return c.do(ctx, method, path, &buf, w.FormDataContentType(), result)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result any) error {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, body, contentType, requestID, result)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.observe(method, status, err, elapsed)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("request failed",
			"method", method, "path", path,
			"status", status, "request_id", requestID, "error", err)
		return err
	}

	span.SetAttributes(attribute.Int("http.status_code", status))
	c.logger.Debug("request completed",
		"method", method, "path", path,
		"status", status, "request_id", requestID, "elapsed", elapsed)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, contentType, requestID string, result any) (int, error) {
	url := c.baseURL + path

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &UnreachableError{Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, &UnreachableError{Cause: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return httpResp.StatusCode, &Error{
			Status: httpResp.StatusCode,
			Body:   truncate(string(respBody), maxErrorBody),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return httpResp.StatusCode, &DecodeError{Cause: err}
		}
	}

	return httpResp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
