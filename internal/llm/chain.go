package llm

import (
	"context"
	"fmt"
	"strings"
)

// Chain tries each provider in order until one succeeds. Useful for provider
// failover (try OpenAI, fall back to Anthropic).
type Chain struct {
	providers []Provider
}

// NewChain creates a failover chain from the given providers.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Complete tries each provider in order until one succeeds.
func (c *Chain) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviderAvailable
	}

	var lastErr error
	var tried []string
	for _, p := range c.providers {
		tried = append(tried, p.Name())
		resp, err := p.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("all providers failed (tried: %s): %w", strings.Join(tried, ", "), lastErr)
}

// Name returns the chain description.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain(" + strings.Join(names, "->") + ")"
}

// Model returns the first provider's model.
func (c *Chain) Model() string {
	if len(c.providers) == 0 {
		return ""
	}
	return c.providers[0].Model()
}

// Empty reports whether the chain has no providers at all.
func (c *Chain) Empty() bool {
	return len(c.providers) == 0
}

var _ Provider = (*Chain)(nil)
