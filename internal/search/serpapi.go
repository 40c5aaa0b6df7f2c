// Package search wraps the SerpAPI Google Lens engine: one image URL in, a
// ranked list of visually similar listings out.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/newelco/appraiser/internal/logger"
	"github.com/newelco/appraiser/pkg/listing"
)

const (
	defaultBaseURL = "https://serpapi.com"

	// The provider returns dozens of matches of rapidly decaying relevance;
	// everything past the first 18 is noise for appraisal purposes.
	defaultMaxMatches = 18
)

// Client calls the reverse-image search provider.
type Client struct {
	apiKey     string
	baseURL    string
	maxMatches int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithMaxMatches caps the number of matches returned.
func WithMaxMatches(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxMatches = n
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a search client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxMatches: defaultMaxMatches,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lensResponse struct {
	VisualMatches []struct {
		Title     string `json:"title"`
		Source    string `json:"source"`
		Link      string `json:"link"`
		Thumbnail string `json:"thumbnail"`
	} `json:"visual_matches"`
	Error string `json:"error"`
}

// VisualMatches runs a reverse-image search for imageURL and returns the
// top matches in provider relevance order, unclassified.
func (c *Client) VisualMatches(ctx context.Context, imageURL string) ([]listing.Listing, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("reverse-image search: missing API key")
	}

	q := url.Values{}
	q.Set("engine", "google_lens")
	q.Set("url", imageURL)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("reverse-image search: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse-image search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reverse-image search: reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("reverse-image search: HTTP %d", resp.StatusCode)
	}

	var lens lensResponse
	if err := json.Unmarshal(body, &lens); err != nil {
		return nil, fmt.Errorf("reverse-image search: decoding response: %w", err)
	}
	if lens.Error != "" {
		return nil, fmt.Errorf("reverse-image search: provider error: %s", lens.Error)
	}

	matches := lens.VisualMatches
	if len(matches) > c.maxMatches {
		matches = matches[:c.maxMatches]
	}

	listings := make([]listing.Listing, 0, len(matches))
	for _, m := range matches {
		listings = append(listings, listing.Listing{
			Title:     m.Title,
			Source:    m.Source,
			Link:      m.Link,
			Thumbnail: m.Thumbnail,
		})
	}
	logger.Debug("reverse-image search complete", "matches", len(listings))
	return listings, nil
}
