// Package enrich drives the per-listing scrape loop: fetch each supported
// listing page, run the structured extractors for its source family, fall
// back to the generative extractor for anything still missing, and merge the
// result onto the listing. Processing is sequential and bounded by a per-run
// budget; every per-listing failure is contained to that listing.
package enrich

import (
	"context"
	"net/url"
	"strings"

	"github.com/newelco/appraiser/internal/extract"
	"github.com/newelco/appraiser/internal/logger"
	"github.com/newelco/appraiser/pkg/classify"
	"github.com/newelco/appraiser/pkg/listing"
)

// PageFetcher is the slice of the fetch client the enricher needs.
type PageFetcher interface {
	HTML(ctx context.Context, url string) (html string, status int, err error)
}

// Enricher runs the enrichment loop over a run's listings.
type Enricher struct {
	fetcher PageFetcher
	ai      *Extractor
	cache   *RunCache
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithAI enables the generative fallback extractor. Without it, enrichment is
// purely deterministic.
func WithAI(x *Extractor) Option {
	return func(e *Enricher) { e.ai = x }
}

// WithCache supplies a shared per-run cache; callers that rerun enrichment
// within one session pass the same cache to skip already-fetched URLs.
func WithCache(c *RunCache) Option {
	return func(e *Enricher) { e.cache = c }
}

// New builds an Enricher around a page fetcher.
func New(f PageFetcher, opts ...Option) *Enricher {
	e := &Enricher{fetcher: f}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewRunCache()
	}
	return e
}

// Enrich processes listings in place, preserving the provider's relevance
// order. Listings without a link or outside the supported domain families are
// skipped without consuming budget; everything else, including cache hits and
// failed fetches, counts toward maxToScrape.
func (e *Enricher) Enrich(ctx context.Context, listings []listing.Listing, maxToScrape int) {
	processed := 0
	for i := range listings {
		if processed >= maxToScrape {
			break
		}
		l := &listings[i]

		link := strings.TrimSpace(l.Link)
		if link == "" {
			continue
		}
		if !classify.Supported(link) {
			continue
		}
		if l.Kind == "" {
			l.Kind = classify.ByDomain(link)
		}

		if cached, ok := e.cache.Get(link); ok {
			l.Apply(cached)
			processed++
			continue
		}

		l.Apply(e.scrape(ctx, l, link))
		processed++
	}
}

// EnrichRun enriches a whole appraisal run and normalizes the result, so
// every listing ends up with its kind-appropriate field set.
func (e *Enricher) EnrichRun(ctx context.Context, run *listing.AppraisalRun, maxToScrape int) {
	e.Enrich(ctx, run.Listings, maxToScrape)
	run.Normalize()
}

// scrape fetches one listing page and extracts its price fields. The returned
// update is cached under the original link regardless of outcome, so the URL
// is never fetched twice in a run.
func (e *Enricher) scrape(ctx context.Context, l *listing.Listing, link string) listing.Update {
	html, status, err := e.fetcher.HTML(ctx, link)
	update := listing.Update{HTTPStatus: status}
	if err != nil || html == "" {
		logger.Debug("listing fetch failed", "url", link, "status", status, "error", err)
		e.cache.Put(link, update)
		return update
	}

	host := classify.Hostname(link)
	if hostHasSuffix(host, "chairish.com") {
		if product := e.resolveChairish(ctx, link, html, l.Title, l.Thumbnail); product != "" && product != link {
			update.Link = listing.StrPtr(product)
			logger.Debug("resolved canonical product page", "original", link, "product", product)
		}
	}

	switch l.Kind {
	case listing.KindRetail:
		update.RetailPrice = extract.RetailPrice(host, html)
		if update.RetailPrice == nil && e.ai != nil {
			if p, err := e.ai.RetailPrice(ctx, extract.CleanText(html), link); err == nil {
				update.RetailPrice = p
			} else {
				logger.Warn("generative retail extraction failed", "url", link, "error", err)
			}
		}

	case listing.KindAuction:
		est := extract.AuctionEstimates(host, html)
		update.AuctionLow = est.Low
		update.AuctionHigh = est.High
		update.AuctionReserve = est.Reserve
		if (update.AuctionLow == nil || update.AuctionHigh == nil) && e.ai != nil {
			if aiEst, err := e.ai.AuctionEstimates(ctx, extract.CleanText(html), link); err == nil {
				if update.AuctionLow == nil {
					update.AuctionLow = aiEst.Low
				}
				if update.AuctionHigh == nil {
					update.AuctionHigh = aiEst.High
				}
				if update.AuctionReserve == nil {
					update.AuctionReserve = aiEst.Reserve
				}
			} else {
				logger.Warn("generative auction extraction failed", "url", link, "error", err)
			}
		}
	}

	e.cache.Put(link, update)
	return update
}

// resolveChairish pins a Chairish listing to its canonical product detail
// page. Search results often point at collection or search pages; the product
// page is the only one that reliably carries the price. Returns "" when no
// canonical page could be resolved.
func (e *Enricher) resolveChairish(ctx context.Context, link, html, title, thumbnail string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	base := u.Scheme + "://" + u.Host
	canonicalPrefix := strings.TrimRight(base, "/") + "/product/"

	if strings.HasPrefix(link, canonicalPrefix) {
		return link
	}

	if product := extract.ResolveChairishProduct(html, base, title, thumbnail); product != "" {
		return product
	}

	// Last resort: run a site search for the listing title and scan the
	// result page for the product link.
	if title == "" {
		return ""
	}
	searchURL := base + "/search?query=" + url.QueryEscape(title)
	searchHTML, _, err := e.fetcher.HTML(ctx, searchURL)
	if err != nil || searchHTML == "" {
		return ""
	}
	return extract.ResolveChairishProduct(searchHTML, base, title, thumbnail)
}

func hostHasSuffix(host, suffix string) bool {
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}
