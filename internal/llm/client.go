package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newelco/appraiser/internal/logger"
)

// Client wraps a Provider with bounded retry, exponential backoff, and
// JSON-shaped completion helpers. All pipeline call sites go through it.
type Client struct {
	provider Provider
	attempts int
	backoff  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAttempts sets the total number of attempts per call (minimum 1).
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBackoff sets the base backoff; attempt i sleeps backoff << i.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a client around the given provider.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: p,
		attempts: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// CompleteText runs a plain text completion and returns the trimmed output.
func (c *Client) CompleteText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.complete(ctx, Request{
		Messages: messages(system, prompt),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// CompleteJSON runs a JSON-constrained completion and decodes the response
// into out. Markdown code fences around the JSON are tolerated.
func (c *Client) CompleteJSON(ctx context.Context, system, prompt string, out any) error {
	resp, err := c.complete(ctx, Request{
		Messages: messages(system, prompt),
		JSONMode: true,
	})
	if err != nil {
		return err
	}

	raw := StripCodeFence(resp.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func (c *Client) complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			logger.Debug("llm retry", "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("llm call failed after %d attempts: %w", c.attempts, lastErr)
}

func messages(system, prompt string) []Message {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	return append(msgs, Message{Role: RoleUser, Content: prompt})
}

// StripCodeFence removes a surrounding markdown code block, if present.
// Models occasionally wrap JSON output in ```json fences despite instructions.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
