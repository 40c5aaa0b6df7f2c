// Package imagestore uploads the appraisal photo somewhere the search
// provider can fetch it from. The pipeline only needs a store that turns raw
// bytes into a publicly reachable URL.
package imagestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/newelco/appraiser/internal/logger"
)

// Store accepts image bytes and returns a public fetch URL for them.
type Store interface {
	Store(ctx context.Context, data []byte, contentType, filename string) (string, error)
}

// HTTPStore uploads via HTTP PUT to an object-storage-style endpoint and
// derives the public URL from a configured base. Keys are randomized per
// upload so concurrent runs never collide.
type HTTPStore struct {
	uploadBase string
	publicBase string
	httpClient *http.Client
}

// HTTPStoreOption configures an HTTPStore.
type HTTPStoreOption func(*HTTPStore)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) HTTPStoreOption {
	return func(s *HTTPStore) { s.httpClient = hc }
}

// NewHTTPStore builds a store that PUTs objects under uploadBase and serves
// them from publicBase. An empty publicBase reuses uploadBase.
func NewHTTPStore(uploadBase, publicBase string, opts ...HTTPStoreOption) *HTTPStore {
	if publicBase == "" {
		publicBase = uploadBase
	}
	s := &HTTPStore{
		uploadBase: strings.TrimRight(uploadBase, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store uploads data and returns its public URL.
func (s *HTTPStore) Store(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	if s.uploadBase == "" {
		return "", fmt.Errorf("image store: no upload endpoint configured")
	}

	key := "uploads/" + randomHex(16) + "_" + sanitizeFilename(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.uploadBase+"/"+key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("image store: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = int64(len(data))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image store: upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image store: upload failed: HTTP %d", resp.StatusCode)
	}

	publicURL := s.publicBase + "/" + key
	logger.Debug("image stored", "key", key, "bytes", len(data))
	return publicURL, nil
}

// sanitizeFilename keeps only the base name and replaces characters that do
// not belong in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the process is in a bad way; fall back to
		// a constant rather than aborting an appraisal over an object key.
		return "upload"
	}
	return hex.EncodeToString(b)
}
