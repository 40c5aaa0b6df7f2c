package fetch

import (
	"context"
	"regexp"
	"strings"

	"github.com/newelco/appraiser/internal/logger"
)

var csrfRe = regexp.MustCompile(`(?i)name="csrfmiddlewaretoken"\s+value="([^"]+)"`)

// TryLogin performs a best-effort LiveAuctioneers form login: fetch the login
// page, scrape the CSRF token if one is present, POST the credentials, and
// treat the session as authenticated when the response no longer looks like
// an anonymous login page. Markup changes break it silently; a failed login
// must never affect unauthenticated scraping.
func (c *Client) TryLogin(ctx context.Context) bool {
	if c.config.Username == "" || c.config.Password == "" {
		return false
	}
	if c.loggedIn {
		return true
	}

	html, _, err := c.HTML(ctx, c.config.LoginURL)
	if err != nil || html == "" {
		logger.Debug("login page fetch failed", "error", err)
		return false
	}

	form := map[string]string{
		"username": c.config.Username,
		"email":    c.config.Username,
		"password": c.config.Password,
	}
	if m := csrfRe.FindStringSubmatch(html); m != nil {
		form["csrfmiddlewaretoken"] = m[1]
	}

	body, status, err := c.post(c.config.LoginURL, form)
	if err != nil || status >= 400 {
		logger.Debug("login post failed", "status", status, "error", err)
		return false
	}

	lower := strings.ToLower(body)
	if strings.Contains(lower, "sign in") && strings.Contains(lower, "password") {
		return false
	}

	c.loggedIn = true
	logger.Info("authenticated session established", "host", "liveauctioneers.com")
	return true
}

// LoggedIn reports whether a login has succeeded on this session.
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}
