// Package llm provides a unified interface over the generative-text providers
// used for price extraction fallback, bulk classification, and copywriting.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrNoProviderAvailable is returned when no provider in the chain is usable.
var ErrNoProviderAvailable = errors.New("no llm provider available")

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
}

// Request represents a completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider to constrain output to a single JSON value.
	// Providers without a native JSON mode rely on the prompt alone.
	JSONMode bool
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response represents the result of a completion.
type Response struct {
	Content      string
	FinishReason string
	Model        string
	Usage        Usage
	Duration     time.Duration
}

// Provider is the interface all generative backends implement.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g. "openai", "anthropic").
	Name() string

	// Model returns the configured model name.
	Model() string
}

// Config holds common provider configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}
