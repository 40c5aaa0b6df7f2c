// Package extract pulls candidate monetary values out of raw listing HTML.
// Extraction is layered: embedded structured markup first (JSON-LD offers,
// meta tags, page-state JSON), keyword-windowed text search last. Extractors
// never fail: anything unparsable is simply "not found".
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newelco/appraiser/pkg/money"
)

// Caps on derived text, mirroring the fetch-side body cap.
const (
	maxCleanText  = 350_000
	keywordWindow = 10_000
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)

	moneyTokenRe = regexp.MustCompile(`(?i)(?:(?:USD|US\$)\s*)?\$?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)

	nextDataRe = regexp.MustCompile(`(?is)<script[^>]+id=["']__NEXT_DATA__["'][^>]*>(.*?)</script>`)
)

// CleanText strips script/style blocks and markup, collapsing whitespace, to
// produce the text used for keyword-window search and generative fallback.
func CleanText(html string) string {
	t := scriptRe.ReplaceAllString(html, " ")
	t = styleRe.ReplaceAllString(t, " ")
	t = tagRe.ReplaceAllString(t, " ")
	t = spaceRe.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	if len(t) > maxCleanText {
		t = t[:maxCleanText]
	}
	return t
}

// keywordWindowAround returns a text window centered on the first occurrence
// of keyword (case-insensitive), or "" when the keyword never appears.
func keywordWindowAround(text, keyword string) string {
	idx := strings.Index(strings.ToLower(text), keyword)
	if idx < 0 {
		return ""
	}
	start := idx - keywordWindow
	if start < 0 {
		start = 0
	}
	end := idx + keywordWindow
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// firstMoneyToken returns the first plausible monetary token in s, or nil.
func firstMoneyToken(s string) *string {
	m := moneyTokenRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return money.Sanitize(m[1])
}

// parseDoc parses HTML into a goquery document, nil on failure.
func parseDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

// metaMap builds a lower-cased key→content map from <meta> tags, keyed by
// whichever of name/property/itemprop the tag carries.
func metaMap(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		for _, attr := range []string{"property", "name", "itemprop"} {
			if key, ok := s.Attr(attr); ok && key != "" {
				k := strings.ToLower(key)
				if _, exists := out[k]; !exists {
					out[k] = content
				}
			}
		}
	})
	return out
}

// Meta keys known to carry the listing price.
var priceMetaKeys = []string{
	"product:price:amount",
	"og:price:amount",
	"og:product:price:amount",
	"price",
}

// metaPrice consults known price-bearing meta keys, honoring an adjacent
// currency key when one names a non-USD currency.
func metaPrice(meta map[string]string) *string {
	for _, cur := range []string{"product:price:currency", "og:price:currency", "pricecurrency"} {
		if v, ok := meta[cur]; ok && !isUSD(v) {
			return nil
		}
	}
	for _, key := range priceMetaKeys {
		if v, ok := meta[key]; ok {
			if s := money.Sanitize(v); s != nil {
				return s
			}
		}
	}
	return nil
}

func isUSD(currency string) bool {
	c := strings.ToUpper(strings.TrimSpace(currency))
	return c == "" || c == "USD" || c == "US$" || c == "$"
}

// jsonLDOffers decodes every application/ld+json block and recursively
// collects USD offer amounts: price, lowPrice, and highPrice.
func jsonLDOffers(doc *goquery.Document) []money.Amount {
	var amounts []money.Amount
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var node any
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return
		}
		walkOffers(node, &amounts)
	})
	return amounts
}

func walkOffers(node any, amounts *[]money.Amount) {
	switch n := node.(type) {
	case map[string]any:
		if isOfferNode(n) {
			for _, key := range []string{"price", "lowPrice", "highPrice"} {
				if v, ok := n[key]; ok {
					if a, ok := money.Parse(v); ok {
						*amounts = append(*amounts, a)
					}
				}
			}
		}
		for _, v := range n {
			walkOffers(v, amounts)
		}
	case []any:
		for _, v := range n {
			walkOffers(v, amounts)
		}
	}
}

// isOfferNode reports whether a JSON-LD node is an offer priced in USD.
func isOfferNode(n map[string]any) bool {
	typ, _ := n["@type"].(string)
	if !strings.Contains(strings.ToLower(typ), "offer") {
		return false
	}
	for _, key := range []string{"priceCurrency", "currency"} {
		if v, ok := n[key].(string); ok {
			return isUSD(v)
		}
	}
	return true
}

// nextData decodes the __NEXT_DATA__ app-state payload when present.
func nextData(html string) any {
	m := nextDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	raw := strings.TrimSpace(m[1])
	if raw == "" {
		return nil
	}
	var node any
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return nil
	}
	return node
}

// walkAmounts recursively collects parseable amounts stored under any of the
// wanted field-name variants (case-insensitive).
func walkAmounts(node any, keys []string) []money.Amount {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[strings.ToLower(k)] = true
	}

	var found []money.Amount
	var rec func(any)
	rec = func(x any) {
		switch n := x.(type) {
		case map[string]any:
			for k, v := range n {
				if wanted[strings.ToLower(k)] {
					if a, ok := money.Parse(v); ok {
						found = append(found, a)
					}
				}
				rec(v)
			}
		case []any:
			for _, v := range n {
				rec(v)
			}
		}
	}
	rec(node)
	return found
}

// minAmount returns the smallest amount, ok=false for an empty slice.
func minAmount(amounts []money.Amount) (money.Amount, bool) {
	if len(amounts) == 0 {
		return money.Amount{}, false
	}
	min := amounts[0]
	for _, a := range amounts[1:] {
		if a.Less(min) {
			min = a
		}
	}
	return min, true
}
