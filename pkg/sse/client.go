// Package sse implements a reader for the platform's server-push streams.
package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Handler receives each subscribed event with its declared type string and
// raw JSON payload.
type Handler func(eventType string, data []byte)

// Options configures one stream subscription.
type Options struct {
	URL    string
	Token  string
	Events []string
}

// Client opens long-lived text/event-stream connections. A zero timeout on
// the underlying transport is required; event gaps can be minutes long.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		// No overall timeout: the connection stays open across agent runs.
		httpClient: &http.Client{Timeout: 0},
		logger:     logger,
	}
}

// ErrStreamRejected is returned when the server refuses the subscription.
var ErrStreamRejected = errors.New("stream subscription rejected")

// Stream connects and dispatches named events until ctx is cancelled or the
// transport fails. There is no automatic reconnection: on transport error the
// connection is closed and the error returned; the caller decides whether to
// re-trigger. A nil error means ctx ended the stream.
func (c *Client) Stream(ctx context.Context, opts Options, handler Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("%w: %d %s", ErrStreamRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	subscribed := make(map[string]bool, len(opts.Events))
	for _, name := range opts.Events {
		subscribed[name] = true
	}

	c.logger.Debug("stream opened", "url", opts.URL, "events", opts.Events)

	started := time.Now()
	err = c.readLoop(ctx, resp.Body, subscribed, handler)

	c.logger.Debug("stream closed", "url", opts.URL, "duration", time.Since(started), "error", err)

	if ctx.Err() != nil {
		return nil
	}

	return err
}

// readLoop parses the event-stream wire format: "event:" and "data:" fields
// accumulated until a blank line terminates the frame.
func (c *Client) readLoop(ctx context.Context, body io.Reader, subscribed map[string]bool, handler Handler) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	var eventType string

	var data strings.Builder

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			c.dispatch(eventType, data.String(), subscribed, handler)

			eventType = ""
			data.Reset()

			continue
		}

		switch {
		case strings.HasPrefix(line, ":"):
			// Comment line, used by some servers as keepalive.
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}

			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}

	// A pending frame without a trailing blank line is still delivered.
	c.dispatch(eventType, data.String(), subscribed, handler)

	return scanner.Err()
}

func (c *Client) dispatch(eventType, data string, subscribed map[string]bool, handler Handler) {
	if eventType == "" || data == "" {
		return
	}

	if eventType == "ping" {
		c.logger.Debug("got ping from server")

		return
	}

	if !subscribed[eventType] {
		return
	}

	handler(eventType, []byte(data))
}
