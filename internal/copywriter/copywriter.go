// Package copywriter turns an appraised run's comparables into listing copy:
// auction catalog text, house listing text, and SEO keywords.
package copywriter

import (
	"context"
	"fmt"
	"strings"

	"github.com/newelco/appraiser/internal/llm"
	"github.com/newelco/appraiser/pkg/listing"
	"github.com/newelco/appraiser/pkg/money"
)

// maxReferenceComps bounds how many same-kind comparables feed a prompt.
const maxReferenceComps = 6

const auctionTitlePrompt = `You are an expert auction cataloger.
Create a concise, high-quality AUCTION TITLE (max 12 words).
Use the reference listings as guidance, but do NOT include source names.
Return ONLY the title text.

%s`

const auctionDescriptionPrompt = `You are an expert auction cataloger.
Write an AUCTION DESCRIPTION (120-200 words) using the reference listings as guidance.
Tone: professional, factual, sales-appropriate. Avoid overclaiming.
Do NOT include source names.
If maker/designer is uncertain, use cautious language (e.g., "attributed to", "in the manner of").
Return ONLY the description text.

%s`

const houseTitlePrompt = `You are writing listing content for Newel (high-end vintage & antique furniture).
Create a NEWEL TITLE (max 12 words). Elegant, accurate, SEO-friendly.
Do NOT include source names. Avoid hype.
Return ONLY the title text.

%s`

const houseDescriptionPrompt = `You are writing listing content for Newel (high-end vintage & antique furniture).
Write a NEWEL DESCRIPTION (140-220 words). Include:
- likely maker/designer attribution (cautious if uncertain)
- materials/finish clues (if inferable)
- style/period keywords
- condition note phrased safely (e.g., "consistent with age and use" if unknown)
Do NOT include source names.
Return ONLY the description text.

%s`

const keywordsPrompt = `Generate 15-25 SEO KEYWORDS/PHRASES (comma-separated) for a Newel listing.
Use the reference listings as guidance. Avoid source names. Include style, period, materials, category.
Return ONLY a comma-separated list.

%s`

// Writer generates copy through the provider chain.
type Writer struct {
	client *llm.Client
}

// New wraps an LLM client.
func New(c *llm.Client) *Writer {
	return &Writer{client: c}
}

// AuctionTitle writes a catalog title from the run's auction comparables.
func (w *Writer) AuctionTitle(ctx context.Context, run *listing.AppraisalRun) (string, error) {
	return w.generate(ctx, auctionTitlePrompt, run, listing.KindAuction)
}

// AuctionDescription writes catalog body copy from the auction comparables.
func (w *Writer) AuctionDescription(ctx context.Context, run *listing.AppraisalRun) (string, error) {
	return w.generate(ctx, auctionDescriptionPrompt, run, listing.KindAuction)
}

// HouseTitle writes a retail listing title from the retail comparables.
func (w *Writer) HouseTitle(ctx context.Context, run *listing.AppraisalRun) (string, error) {
	return w.generate(ctx, houseTitlePrompt, run, listing.KindRetail)
}

// HouseDescription writes retail listing body copy.
func (w *Writer) HouseDescription(ctx context.Context, run *listing.AppraisalRun) (string, error) {
	return w.generate(ctx, houseDescriptionPrompt, run, listing.KindRetail)
}

// Keywords writes a comma-separated SEO keyword list.
func (w *Writer) Keywords(ctx context.Context, run *listing.AppraisalRun) (string, error) {
	return w.generate(ctx, keywordsPrompt, run, listing.KindRetail)
}

func (w *Writer) generate(ctx context.Context, template string, run *listing.AppraisalRun, kind listing.Kind) (string, error) {
	return w.client.CompleteText(ctx, "", fmt.Sprintf(template, referenceContext(run, kind)))
}

// referenceContext lines up the run's same-kind comparables with display
// money values, plus the run identity, as the shared prompt context.
func referenceContext(run *listing.AppraisalRun, kind listing.Kind) string {
	comps := run.ByKind(kind)
	if len(comps) > maxReferenceComps {
		comps = comps[:maxReferenceComps]
	}

	var lines []string
	for i, l := range comps {
		title := strings.TrimSpace(l.Title)
		source := strings.TrimSpace(l.Source)
		link := strings.TrimSpace(l.Link)
		if kind == listing.KindAuction {
			lines = append(lines, fmt.Sprintf("%d. %s | %s | low=%s, high=%s, reserve=%s | %s",
				i+1, title, source,
				money.Display(l.AuctionLow), money.Display(l.AuctionHigh), money.Display(l.AuctionReserve),
				link))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s | %s | retail_price=%s | %s",
				i+1, title, source, money.Display(l.RetailPrice), link))
		}
	}

	return strings.TrimSpace(fmt.Sprintf(`SKU: %s
Image URL: %s
Mode: %s
Reference Listings:
%s`, run.SKULabel, run.ImageURL, kind, strings.Join(lines, "\n")))
}
