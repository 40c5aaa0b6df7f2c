package enrich

import (
	"context"
	"fmt"

	"github.com/newelco/appraiser/internal/extract"
	"github.com/newelco/appraiser/internal/llm"
	"github.com/newelco/appraiser/pkg/money"
)

// aiTextBudget caps the cleaned page text sent to the model per listing.
const aiTextBudget = 14000

const auctionExtractPrompt = `Extract auction estimate values from the text below (source URL included).
Return ONLY JSON: {"low_estimate":"$...","high_estimate":"$...","reserve":"$..."}.
If any value is not present, set it to null. Do not guess.

URL: %s

TEXT:
%s`

const retailExtractPrompt = `Extract the retail listing price from the text below (source URL included).
Return ONLY JSON: {"retail_price":"$..."}. If not present, retail_price must be null. Do not guess.

URL: %s

TEXT:
%s`

// Extractor asks a generative model for the price fields the structured
// extractors could not find. Model output passes through the same money
// sanitization as scraped values, so a hallucinated or implausible figure is
// discarded rather than surfaced.
type Extractor struct {
	client *llm.Client
}

// NewExtractor wraps an LLM client for per-page fallback extraction.
func NewExtractor(c *llm.Client) *Extractor {
	return &Extractor{client: c}
}

// RetailPrice extracts a retail asking price from cleaned page text.
func (x *Extractor) RetailPrice(ctx context.Context, pageText, url string) (*string, error) {
	var out struct {
		RetailPrice *string `json:"retail_price"`
	}
	prompt := fmt.Sprintf(retailExtractPrompt, url, truncate(pageText, aiTextBudget))
	if err := x.client.CompleteJSON(ctx, "", prompt, &out); err != nil {
		return nil, err
	}
	return sanitizePtr(out.RetailPrice), nil
}

// AuctionEstimates extracts an estimate range and reserve from cleaned page
// text.
func (x *Extractor) AuctionEstimates(ctx context.Context, pageText, url string) (extract.Estimates, error) {
	var out struct {
		LowEstimate  *string `json:"low_estimate"`
		HighEstimate *string `json:"high_estimate"`
		Reserve      *string `json:"reserve"`
	}
	prompt := fmt.Sprintf(auctionExtractPrompt, url, truncate(pageText, aiTextBudget))
	if err := x.client.CompleteJSON(ctx, "", prompt, &out); err != nil {
		return extract.Estimates{}, err
	}
	return extract.Estimates{
		Low:     sanitizePtr(out.LowEstimate),
		High:    sanitizePtr(out.HighEstimate),
		Reserve: sanitizePtr(out.Reserve),
	}, nil
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return money.Sanitize(*s)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
