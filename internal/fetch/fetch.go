// Package fetch retrieves listing HTML over plain HTTP with bot-resistant
// headers and a shared cookie session, so an optional authenticated login
// survives across every listing fetch in a run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/newelco/appraiser/internal/logger"
)

// DefaultMaxBody caps response bodies to bound memory and downstream regex
// cost; listing pages that matter fit well inside it.
const DefaultMaxBody = 600 * 1024

const defaultUserAgent = "Mozilla/5.0 (compatible; NewelAppraiser/1.0; +https://newel.com)"

// ErrHTTPStatus is wrapped into errors returned for 4xx/5xx responses.
var ErrHTTPStatus = errors.New("http error status")

var botHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// Config holds configuration for the fetch client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBody   int

	// Optional LiveAuctioneers credentials; login is attempted at most once
	// per client and its failure never blocks anonymous scraping.
	Username string
	Password string
	LoginURL string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   18 * time.Second,
		MaxBody:   DefaultMaxBody,
		LoginURL:  "https://www.liveauctioneers.com/login/",
	}
}

// Client fetches pages through a single Colly collector so cookies and
// headers persist across the run. It is not safe for concurrent use; the
// pipeline is sequential by design.
type Client struct {
	config   Config
	c        *colly.Collector
	loggedIn bool

	lastStatus int
	lastBody   []byte
	lastErr    error
}

// New creates a fetch client with a fresh session.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBody == 0 {
		cfg.MaxBody = def.MaxBody
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = def.LoginURL
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(cfg.Timeout)

	client := &Client{config: cfg, c: c}

	c.OnRequest(func(r *colly.Request) {
		for k, v := range botHeaders {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		client.lastStatus = r.StatusCode
		client.lastBody = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		client.lastErr = err
		if r != nil {
			client.lastStatus = r.StatusCode
		}
	})

	return client
}

// HTML fetches a listing page. On any transport or HTTP-status failure it
// returns an empty body, the status code when one exists, and the error; the
// caller treats every failure identically.
func (c *Client) HTML(ctx context.Context, url string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	c.reset()
	if err := c.c.Visit(url); err != nil {
		return "", c.lastStatus, fmt.Errorf("fetch %s: %w", url, err)
	}
	if c.lastErr != nil {
		return "", c.lastStatus, fmt.Errorf("fetch %s: %w", url, c.lastErr)
	}
	if c.lastStatus >= 400 {
		return "", c.lastStatus, fmt.Errorf("fetch %s: status %d: %w", url, c.lastStatus, ErrHTTPStatus)
	}

	body := c.lastBody
	if len(body) > c.config.MaxBody {
		logger.Debug("response truncated", "url", url, "bytes", len(body), "cap", c.config.MaxBody)
		body = body[:c.config.MaxBody]
	}
	return string(body), c.lastStatus, nil
}

// post submits a form through the shared session.
func (c *Client) post(url string, form map[string]string) (string, int, error) {
	c.reset()
	if err := c.c.Post(url, form); err != nil {
		return "", c.lastStatus, fmt.Errorf("post %s: %w", url, err)
	}
	if c.lastErr != nil {
		return "", c.lastStatus, fmt.Errorf("post %s: %w", url, c.lastErr)
	}
	return string(c.lastBody), c.lastStatus, nil
}

func (c *Client) reset() {
	c.lastStatus = 0
	c.lastBody = nil
	c.lastErr = nil
}
