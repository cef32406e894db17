// Package api is the typed client for the b0 platform API. All backend
// services (agent orchestration, code generation, deployment) sit behind
// this boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

const defaultRequestTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	validator  *validator.Validate
}

type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
		tracer:     otel.Tracer("b0-console/api"),
		validator:  validator.New(),
	}
}

// SetToken replaces the bearer credential, e.g. after a re-login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// TaskStreamURL is the server-push endpoint for agent task lifecycle events.
func (c *Client) TaskStreamURL(projectID string) string {
	return fmt.Sprintf("%s/projects/%s/sse", c.baseURL, projectID)
}

// LogStreamURL is the server-push endpoint for build log events.
func (c *Client) LogStreamURL(projectID string) string {
	return fmt.Sprintf("%s/projects/%s/log", c.baseURL, projectID)
}

// do issues one request and applies the boundary error policy: exactly one
// transparent retry on 401, and any other non-2xx body handed back to the
// caller as an APIError. Resource identifiers the caller knows (project id,
// endpoint id) come in as span attributes.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, attrs ...attribute.KeyValue) ([]byte, error) {
	spanAttrs := append([]attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	}, attrs...)

	ctx, span := c.tracer.Start(ctx, "api."+method+" "+path, trace.WithAttributes(spanAttrs...))
	defer span.End()

	resp, raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug("got 401, retrying once", "method", method, "path", path)

		resp, raw, err = c.send(ctx, method, path, query, body)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := newAPIError(resp.StatusCode, raw)
		otelhelper.SetError(span, apiErr)

		return nil, apiErr
	}

	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, []byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader

	if body != nil && method != http.MethodGet && method != http.MethodHead {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}

		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	return resp, raw, nil
}
