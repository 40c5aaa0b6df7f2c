package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/newelco/appraiser/internal/llm"
	"github.com/newelco/appraiser/internal/logger"
	"github.com/newelco/appraiser/pkg/classify"
	"github.com/newelco/appraiser/pkg/listing"
)

const batchClassifyPrompt = `Classify each listing below as "auction" or "retail" and extract any price values it mentions.
Return ONLY a JSON array with exactly one object per listing, in the same order as the input:
[{"kind":"auction or retail","confidence":0.0,"auction_low":"$...","auction_high":"$...","auction_reserve":"$...","retail_price":"$..."}]
Use null for any value that is not present. Do not guess.

LISTINGS:
%s`

// BatchClassifier classifies a whole result set in one model call. When the
// model is unavailable or keeps failing, it degrades to the keyword
// heuristic, which always yields a kind and a low confidence; the degradation
// is surfaced to the caller once per session, not per listing.
type BatchClassifier struct {
	client *llm.Client
	warn   func(msg string)
	warned bool
	cache  map[string][]listing.Update
}

// NewBatchClassifier wraps an LLM client. warn, when non-nil, receives the
// one-time degradation notice.
func NewBatchClassifier(c *llm.Client, warn func(string)) *BatchClassifier {
	return &BatchClassifier{
		client: c,
		warn:   warn,
		cache:  make(map[string][]listing.Update),
	}
}

// ClassifyAndExtract returns one update per input listing, positionally
// aligned. Identical batches within a session are served from cache without a
// model call.
func (b *BatchClassifier) ClassifyAndExtract(ctx context.Context, listings []listing.Listing) []listing.Update {
	if len(listings) == 0 {
		return nil
	}

	key := batchKey(listings)
	if cached, ok := b.cache[key]; ok {
		return cached
	}

	updates, err := b.classify(ctx, listings)
	if err != nil {
		if !b.warned {
			b.warned = true
			msg := "Generative classification unavailable; using keyword heuristics for this session."
			logger.Warn(msg, "error", err)
			if b.warn != nil {
				b.warn(msg)
			}
		}
		updates = b.heuristic(listings)
	}

	b.cache[key] = updates
	return updates
}

func (b *BatchClassifier) classify(ctx context.Context, listings []listing.Listing) ([]listing.Update, error) {
	var sb strings.Builder
	for i, l := range listings {
		fmt.Fprintf(&sb, "%d. title=%q | source=%q | link=%q\n", i+1, l.Title, l.Source, l.Link)
	}

	var out []struct {
		Kind           string   `json:"kind"`
		Confidence     *float64 `json:"confidence"`
		AuctionLow     *string  `json:"auction_low"`
		AuctionHigh    *string  `json:"auction_high"`
		AuctionReserve *string  `json:"auction_reserve"`
		RetailPrice    *string  `json:"retail_price"`
	}
	prompt := fmt.Sprintf(batchClassifyPrompt, sb.String())
	if err := b.client.CompleteJSON(ctx, "", prompt, &out); err != nil {
		return nil, err
	}
	if len(out) != len(listings) {
		return nil, fmt.Errorf("batch classification returned %d entries for %d listings", len(out), len(listings))
	}

	updates := make([]listing.Update, len(listings))
	for i, entry := range out {
		u := listing.Update{
			AuctionLow:     sanitizePtr(entry.AuctionLow),
			AuctionHigh:    sanitizePtr(entry.AuctionHigh),
			AuctionReserve: sanitizePtr(entry.AuctionReserve),
			RetailPrice:    sanitizePtr(entry.RetailPrice),
			Confidence:     entry.Confidence,
		}
		switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
		case "auction":
			u.Kind = listing.KindPtr(listing.KindAuction)
		case "retail":
			u.Kind = listing.KindPtr(listing.KindRetail)
		default:
			u.Kind = listing.KindPtr(listing.KindOther)
		}
		updates[i] = u
	}
	return updates, nil
}

// heuristic is the no-model path. It never fails and touches only kind and
// confidence.
func (b *BatchClassifier) heuristic(listings []listing.Listing) []listing.Update {
	updates := make([]listing.Update, len(listings))
	for i, l := range listings {
		kind, confidence := classify.Heuristic(l.Title, l.Source, l.Link)
		updates[i] = listing.Update{
			Kind:       listing.KindPtr(kind),
			Confidence: listing.Float64Ptr(confidence),
		}
	}
	return updates
}

// batchKey hashes the identifying content of a batch, so reruns of the same
// search result set reuse the prior classification.
func batchKey(listings []listing.Listing) string {
	h := sha256.New()
	for _, l := range listings {
		fmt.Fprintf(h, "%s|%s|%s\n", l.Title, l.Source, l.Link)
	}
	return hex.EncodeToString(h.Sum(nil))
}
