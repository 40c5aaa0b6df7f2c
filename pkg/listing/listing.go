// Package listing defines the core domain model: visual-search matches, the
// commerce category assigned to each, and the appraisal run that aggregates
// them.
package listing

import "time"

// Kind is the commerce category of a listing's originating site.
type Kind string

const (
	KindAuction Kind = "auction"
	KindRetail  Kind = "retail"
	KindOther   Kind = "other"
)

// Listing is one reverse-image-search result, progressively enriched by the
// pipeline. Money fields hold canonical display strings ("$1,250") or nil.
type Listing struct {
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Link       string  `json:"link"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"`

	// Auction-only. Reserve is rarely published; nil is the expected case.
	AuctionLow     *string `json:"auction_low"`
	AuctionHigh    *string `json:"auction_high"`
	AuctionReserve *string `json:"auction_reserve"`

	// Retail-only.
	RetailPrice *string `json:"retail_price"`

	// HTTPStatus records the last fetch outcome for traceability (0 = never
	// fetched or transport failure).
	HTTPStatus int `json:"http_status,omitempty"`
}

// Update is the partial field set discovered for a single URL. It is what the
// per-run scrape cache stores and what gets merged onto a Listing.
type Update struct {
	Link           *string
	AuctionLow     *string
	AuctionHigh    *string
	AuctionReserve *string
	RetailPrice    *string
	Kind           *Kind
	Confidence     *float64
	HTTPStatus     int
}

// Apply merges u onto l. Values already present on the listing win: the
// deterministic pass always runs first, so anything it committed must not be
// overwritten by a later generative opinion.
func (l *Listing) Apply(u Update) {
	if u.Link != nil && *u.Link != "" {
		l.Link = *u.Link
	}
	if l.AuctionLow == nil {
		l.AuctionLow = u.AuctionLow
	}
	if l.AuctionHigh == nil {
		l.AuctionHigh = u.AuctionHigh
	}
	if l.AuctionReserve == nil {
		l.AuctionReserve = u.AuctionReserve
	}
	if l.RetailPrice == nil {
		l.RetailPrice = u.RetailPrice
	}
	if u.Kind != nil && (l.Kind == "" || l.Kind == KindOther) {
		// Controlled upgrade only: the domain pass is authoritative for
		// known domains and must not be reclassified. An upgrade carries the
		// classifier's confidence with it, replacing the low default.
		l.Kind = *u.Kind
		if u.Confidence != nil {
			l.Confidence = *u.Confidence
		}
	} else if u.Confidence != nil && l.Confidence == 0 {
		l.Confidence = *u.Confidence
	}
	if u.HTTPStatus != 0 {
		l.HTTPStatus = u.HTTPStatus
	}
}

// AppraisalRun aggregates one user-triggered appraisal. The listing order is
// the search provider's relevance ranking and is never re-sorted.
type AppraisalRun struct {
	Timestamp time.Time `json:"timestamp"`
	SKULabel  string    `json:"sku_label,omitempty"`
	ImageURL  string    `json:"image_url"`
	Listings  []Listing `json:"listings"`
}

// ByKind returns the run's listings of one kind, preserving relevance order.
func (r *AppraisalRun) ByKind(k Kind) []Listing {
	var out []Listing
	for _, l := range r.Listings {
		if l.Kind == k {
			out = append(out, l)
		}
	}
	return out
}

// Normalize guarantees every listing carries its kind-appropriate field set
// with explicit nils, so rendering and export never branch on key existence.
// Applied once after enrichment.
func (r *AppraisalRun) Normalize() {
	for i := range r.Listings {
		l := &r.Listings[i]
		if l.Kind == "" {
			l.Kind = KindOther
		}
		switch l.Kind {
		case KindRetail:
			l.AuctionLow, l.AuctionHigh, l.AuctionReserve = nil, nil, nil
		case KindAuction:
			l.RetailPrice = nil
		}
	}
}

// StrPtr is a convenience for building optional field values.
func StrPtr(s string) *string { return &s }

// KindPtr is a convenience for building optional kind values.
func KindPtr(k Kind) *Kind { return &k }

// Float64Ptr is a convenience for building optional confidence values.
func Float64Ptr(f float64) *float64 { return &f }
