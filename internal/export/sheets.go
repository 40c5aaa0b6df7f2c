package export

import (
	"bytes"
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

const defaultSheetsBaseURL = "https://sheets.googleapis.com"

// SheetsClient appends rows to a Google Sheets workbook through the values
// REST API. Authentication is a caller-supplied bearer token; how it was
// minted (service account, gcloud, workload identity) is not this package's
// concern.
type SheetsClient struct {
	sheetID    string
	token      string
	baseURL    string
	httpClient *http.Client
}

// SheetsOption configures a SheetsClient.
type SheetsOption func(*SheetsClient)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) SheetsOption {
	return func(c *SheetsClient) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) SheetsOption {
	return func(c *SheetsClient) { c.httpClient = hc }
}

// NewSheetsClient builds a client for one workbook.
func NewSheetsClient(sheetID, token string, opts ...SheetsOption) *SheetsClient {
	c := &SheetsClient{
		sheetID:    sheetID,
		token:      token,
		baseURL:    defaultSheetsBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append adds one row to the end of the named tab. USER_ENTERED input lets
// the =IMAGE() formula cell evaluate instead of landing as literal text.
func (c *SheetsClient) Append(ctx context.Context, tab string, row []string) error {
	if c.sheetID == "" {
		return fmt.Errorf("sheets export: no sheet ID configured")
	}

	payload, err := json.Marshal(map[string][][]string{"values": {row}})
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(c.sheetID), url.PathEscape(tab+"!A:Z"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sheets export: append to %q failed: HTTP %d: %s", tab, resp.StatusCode, body)
	}

	logger.Debug("sheet row appended", "tab", tab, "cells", len(row))
	return nil
}

// ExportRun appends the run's auction and retail rows to their tabs.
func (c *SheetsClient) ExportRun(ctx context.Context, run *listing.AppraisalRun) error {
	if err := c.Append(ctx, TabAuction, AuctionRow(run)); err != nil {
		return err
	}
	return c.Append(ctx, TabRetail, RetailRow(run))
}
