// Package classify maps listings to a commerce category. The domain-suffix
// classifier is pure, total, and authoritative for the supported site lists;
// the keyword scorer is the degraded path used when no generative opinion is
// available for unknown domains.
package classify

import (
	"net/url"
	"strings"

	"github.com/newelco/appraiser/pkg/listing"
)

// Supported listing-source families. Auction houses publish estimate ranges;
// retail marketplaces publish a single asking price.
var (
	AuctionDomains = []string{
		"liveauctioneers.com",
		"bidsquare.com",
		"sothebys.com",
		"christies.com",
	}
	RetailDomains = []string{
		"1stdibs.com",
		"chairish.com",
		"incollect.com",
		"rauantiques.com",
	}
)

// Hostname extracts the lower-cased registrable hostname, stripping a leading
// "www.". Returns "" for anything that does not parse as a URL with a host.
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}

// ByDomain classifies a listing URL by its domain suffix. Total and pure: any
// input, including garbage, yields exactly one Kind.
func ByDomain(rawURL string) listing.Kind {
	host := Hostname(rawURL)
	if host == "" {
		return listing.KindOther
	}
	if matchesAny(host, AuctionDomains) {
		return listing.KindAuction
	}
	if matchesAny(host, RetailDomains) {
		return listing.KindRetail
	}
	return listing.KindOther
}

// Supported reports whether the host belongs to a scrapable domain family.
// Unsupported domains are never fetched.
func Supported(rawURL string) bool {
	return ByDomain(rawURL) != listing.KindOther
}

// Default confidence scores for domain-only classification: known families
// score well, anything else is a weak guess until a richer signal arrives.
const (
	DomainConfidence = 0.75
	OtherConfidence  = 0.35
)

// AssignDefaults fills in kind and confidence for raw search matches that
// carry neither, leaving already-classified listings untouched.
func AssignDefaults(listings []listing.Listing) {
	for i := range listings {
		l := &listings[i]
		if l.Kind == "" {
			l.Kind = ByDomain(l.Link)
		}
		if l.Confidence == 0 {
			if l.Kind == listing.KindOther {
				l.Confidence = OtherConfidence
			} else {
				l.Confidence = DomainConfidence
			}
		}
	}
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Weighted indicator terms for the keyword fallback. Auction vocabulary is
// distinctive; retail terms are weaker signals, hence the lighter weights.
var (
	auctionTerms = map[string]int{
		"auction":  4,
		"lot ":     3,
		"estimate": 3,
		"bid":      2,
		"hammer":   2,
		"sale ":    1,
		"gallery":  1,
	}
	retailTerms = map[string]int{
		"for sale":  3,
		"price":     2,
		"buy":       2,
		"shop":      2,
		"vintage":   1,
		"antique":   1,
		"furniture": 1,
	}
)

// Heuristic scores a listing's title, source, and link against the indicator
// term lists. It never fails and always assigns a kind with low confidence;
// it is the last resort when the generative classifier is exhausted.
func Heuristic(title, source, link string) (listing.Kind, float64) {
	if k := ByDomain(link); k != listing.KindOther {
		return k, 0.75
	}

	hay := strings.ToLower(title + " " + source + " " + link)
	var aScore, rScore int
	for term, w := range auctionTerms {
		if strings.Contains(hay, term) {
			aScore += w
		}
	}
	for term, w := range retailTerms {
		if strings.Contains(hay, term) {
			rScore += w
		}
	}

	switch {
	case aScore > rScore && aScore > 0:
		return listing.KindAuction, 0.4
	case rScore > aScore && rScore > 0:
		return listing.KindRetail, 0.4
	default:
		return listing.KindOther, 0.2
	}
}
