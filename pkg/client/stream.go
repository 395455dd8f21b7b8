package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/unitgrid/pkg/domain"
)

// DefaultRetryDelay is the pause before reconnecting a dropped event stream.
const DefaultRetryDelay = 2 * time.Second

// RetryPolicy reconnects after a fixed Delay, with no attempt limit.
type RetryPolicy struct {
	Delay time.Duration
}

// Wait sleeps for the delay or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context) error {
	d := p.Delay
	if d <= 0 {
		d = DefaultRetryDelay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StreamHandler receives event-stream callbacks. Either field may be nil.
type StreamHandler struct {
	// Connected runs after every successful (re)connect.
	Connected func()
	Message   func(domain.UpdateMessage)
}

// Subscribe follows the project's event stream until ctx is done, reconnecting
// after every failure. It returns ctx.Err() on shutdown, or the error of a
// rejected credential, which no retry can fix.
func (c *Client) Subscribe(ctx context.Context, projectID string, h StreamHandler) error {
	for {
		err := c.connect(ctx, projectID, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return err
		}
		c.logger.Warn("Event stream lost, reconnecting", "project_id", projectID, "delay", c.retry.Delay, "err", err)
		if err := c.retry.Wait(ctx); err != nil {
			return err
		}
	}
}

// connect runs a single connection until it ends.
func (c *Client) connect(ctx context.Context, projectID string, h StreamHandler) error {
	u := c.baseURL + "/api/project/events/" + url.PathEscape(projectID) + "?token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	c.logger.Debug("Event stream connected", "project_id", projectID)
	if h.Connected != nil {
		h.Connected()
	}

	return readEvents(resp.Body, func(event, data string) {
		if event != "" && event != "message" {
			return
		}
		var msg domain.UpdateMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			c.logger.Warn("Ignoring malformed update", "project_id", projectID, "err", err)
			return
		}
		if h.Message != nil {
			h.Message(msg)
		}
	})
}

// readEvents parses text/event-stream framing and calls dispatch once per event.
// It returns io.ErrUnexpectedEOF when the server closes the stream.
func readEvents(r io.Reader, dispatch func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 8<<20)

	var event string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				dispatch(event, strings.Join(data, "\n"))
			}
			event, data = "", data[:0]
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return io.ErrUnexpectedEOF
}
