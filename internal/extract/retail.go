package extract

import (
	"regexp"
	"strconv"

	"github.com/newelco/appraiser/pkg/money"
)

// centsRe recognizes the price-in-cents integer field some marketplaces
// embed in inline JSON. Only consulted when no structured price was found.
var centsRe = regexp.MustCompile(`(?i)"price_cents"\s*:\s*([0-9]{3,})`)

// Field-name variants for structured price fields in marketplace app state.
var retailPriceKeys = []string{"price", "listPrice", "salePrice", "askingPrice"}

// RetailFunc extracts the asking price from one retail source family's HTML.
type RetailFunc func(html string) *string

var retailExtractors = []struct {
	suffix string
	fn     RetailFunc
}{
	{"1stdibs.com", firstDibsPrice},
	{"chairish.com", chairishPrice},
}

// RetailPrice runs the extractor for the listing's source family.
func RetailPrice(host, html string) *string {
	for _, e := range retailExtractors {
		if hostMatches(host, e.suffix) {
			return e.fn(html)
		}
	}
	return genericRetailPrice(html)
}

// genericRetailPrice is the marketplace-agnostic cascade: JSON-LD offers,
// then meta tags, then a keyword window around "price" in the cleaned text.
func genericRetailPrice(html string) *string {
	doc := parseDoc(html)
	if doc != nil {
		if p := lowestPlausible(jsonLDOffers(doc)); p != nil {
			return p
		}
		if p := metaPrice(metaMap(doc)); p != nil {
			return p
		}
	}
	return priceFromText(html)
}

// chairishPrice adds the price_cents field Chairish embeds when neither
// JSON-LD nor meta carried a price.
func chairishPrice(html string) *string {
	doc := parseDoc(html)
	if doc != nil {
		if p := lowestPlausible(jsonLDOffers(doc)); p != nil {
			return p
		}
		if p := metaPrice(metaMap(doc)); p != nil {
			return p
		}
	}
	if m := centsRe.FindStringSubmatch(html); m != nil {
		if cents, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return money.Sanitize(money.FromCents(cents))
		}
	}
	return priceFromText(html)
}

// firstDibsPrice prefers the __NEXT_DATA__ app state 1stDibs renders with,
// then falls back to the generic cascade.
func firstDibsPrice(html string) *string {
	if nd := nextData(html); nd != nil {
		if p := lowestPlausible(walkAmounts(nd, retailPriceKeys)); p != nil {
			return p
		}
	}
	return genericRetailPrice(html)
}

// lowestPlausible picks the smallest sanitized candidate. Marketplace pages
// show the listing price next to inflated comparables and shipping add-ons;
// the lowest plausible value is most likely the actual ask.
func lowestPlausible(amounts []money.Amount) *string {
	var best *string
	var bestAmount money.Amount
	for _, a := range amounts {
		s := money.Sanitize(a)
		if s == nil {
			continue
		}
		if best == nil || a.Less(bestAmount) {
			best = s
			bestAmount = a
		}
	}
	return best
}

// priceFromText anchors on the literal word "price" in the cleaned text and
// takes the first plausible monetary token in that window.
func priceFromText(html string) *string {
	w := keywordWindowAround(CleanText(html), "price")
	if w == "" {
		return nil
	}
	return firstMoneyToken(w)
}
