// Package ai talks to the upstream chat-completions endpoint and decodes
// its event stream into plain text fragments.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/middleware"
	"github.com/Qualiasolutions/theracoach/internal/models"
)

// StatusError reports a non-success upstream response. The upstream body
// is never carried along; the status code is all callers may see.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

// Client streams completions from the configured upstream endpoint.
type Client struct {
	cfg        *config.UpstreamConfig
	httpClient *http.Client
	budget     *rate.Limiter
	logger     *logrus.Logger
	metrics    *middleware.Metrics
}

// NewClient creates the upstream client. When cfg.MaxRPS is positive, a
// process-wide budget throttles outbound calls so one busy instance cannot
// burn through the shared API quota.
func NewClient(cfg *config.UpstreamConfig, metrics *middleware.Metrics, logger *logrus.Logger) *Client {
	var budget *rate.Limiter
	if cfg.MaxRPS > 0 {
		budget = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		budget:  budget,
		logger:  logger,
		metrics: metrics,
	}
}

// Configured reports whether the upstream credential is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Stream sends one conversation upstream and forwards each decoded text
// fragment to emit, in arrival order. It returns nil once the upstream
// stream completes. A non-nil error before the first emit call means
// nothing was sent to the client yet; after that the stream is simply cut
// short and the caller closes the response.
func (c *Client) Stream(ctx context.Context, systemPrompt string, messages []models.Message, emit func(fragment string) error) error {
	if c.budget != nil {
		if err := c.budget.Wait(ctx); err != nil {
			return fmt.Errorf("upstream budget wait: %w", err)
		}
	}

	payload := models.UpstreamRequest{
		Model:       c.cfg.Model,
		Messages:    make([]models.UpstreamMessage, 0, len(messages)+1),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      true,
	}
	payload.Messages = append(payload.Messages, models.UpstreamMessage{Role: "system", Content: systemPrompt})
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, models.UpstreamMessage{Role: msg.Role, Content: msg.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest("error", time.Since(start))
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, but never log
		// or forward the upstream body.
		io.CopyN(io.Discard, resp.Body, 4096)
		c.metrics.RecordUpstreamRequest("error", time.Since(start))
		c.logger.WithField("status", resp.StatusCode).Error("Upstream request failed")
		return &StatusError{Code: resp.StatusCode}
	}

	err = c.relayStream(resp.Body, emit)
	if err != nil {
		c.metrics.RecordUpstreamRequest("stream_error", time.Since(start))
		return err
	}
	c.metrics.RecordUpstreamRequest("success", time.Since(start))
	return nil
}

// relayStream decodes the SSE body chunk by chunk, forwarding fragments as
// they complete. One malformed line never aborts the stream; a read or
// emit failure does.
func (c *Client) relayStream(body io.Reader, emit func(fragment string) error) error {
	var framer LineFramer
	buf := make([]byte, 4096)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, line := range framer.Append(buf[:n]) {
				if content, ok := decodeDataLine(line); ok {
					if err := emit(content); err != nil {
						return fmt.Errorf("client write failed: %w", err)
					}
					c.metrics.RecordStreamFragment(len(content))
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("upstream stream read failed: %w", readErr)
		}
	}

	if line, ok := framer.Flush(); ok {
		if content, ok := decodeDataLine(line); ok {
			if err := emit(content); err != nil {
				return fmt.Errorf("client write failed: %w", err)
			}
			c.metrics.RecordStreamFragment(len(content))
		}
	}
	return nil
}
