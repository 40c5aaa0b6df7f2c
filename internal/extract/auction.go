package extract

import (
	"regexp"

	"github.com/newelco/appraiser/pkg/money"
)

// Estimates is an auction listing's published estimate range plus the rarely
// published reserve. Every auction listing gets all three keys; absent values
// stay nil and render as the "—" sentinel.
type Estimates struct {
	Low     *string
	High    *string
	Reserve *string
}

var (
	dollarRangeRe = regexp.MustCompile(`(?i)\$\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)\s*(?:-|–|to)\s*\$\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)
	usdRangeRe    = regexp.MustCompile(`(?i)([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)\s*(?:-|–|to)\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)\s*(?:USD|US\$)\b`)

	// Bare "Estimate 800 - 1,200" with no currency marker at all.
	estimateBareRangeRe = regexp.MustCompile(`(?i)estimate[^0-9]{0,60}([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)\s*(?:-|–|to)\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)

	lowEstimateAmountRe  = regexp.MustCompile(`(?i)"lowEstimate"\s*:\s*\{[^}]*"amount"\s*:\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	highEstimateAmountRe = regexp.MustCompile(`(?i)"highEstimate"\s*:\s*\{[^}]*"amount"\s*:\s*([0-9]+(?:\.[0-9]{1,2})?)`)

	lowEstimateKeyRe  = regexp.MustCompile(`(?i)"(?:estimate_low|lowEstimate|low_estimate|estimateLow)"\s*:\s*("?)([0-9,]+(?:\.[0-9]{1,2})?)`)
	highEstimateKeyRe = regexp.MustCompile(`(?i)"(?:estimate_high|highEstimate|high_estimate|estimateHigh)"\s*:\s*("?)([0-9,]+(?:\.[0-9]{1,2})?)`)
)

// Field-name variants for structured estimate fields across auction sources.
var (
	lowEstimateKeys  = []string{"lowEstimate", "estimateLow", "estimate_low", "low_estimate"}
	highEstimateKeys = []string{"highEstimate", "estimateHigh", "estimate_high", "high_estimate"}
)

// AuctionFunc extracts estimates from one auction source family's HTML.
type AuctionFunc func(html string) Estimates

// Domain-suffix dispatch table. Anything not listed gets the text extractor,
// which is all Sotheby's and Christie's pages offer anyway.
var auctionExtractors = []struct {
	suffix string
	fn     AuctionFunc
}{
	{"liveauctioneers.com", liveAuctioneersEstimates},
	{"bidsquare.com", bidsquareEstimates},
}

// AuctionEstimates runs the extractor for the listing's source family.
func AuctionEstimates(host, html string) Estimates {
	for _, e := range auctionExtractors {
		if hostMatches(host, e.suffix) {
			return e.fn(html)
		}
	}
	return textEstimates(html)
}

// liveAuctioneersEstimates prefers the __NEXT_DATA__ app state, then raw
// JSON amount objects in the HTML, then cleaned-text range search.
func liveAuctioneersEstimates(html string) Estimates {
	var est Estimates

	if nd := nextData(html); nd != nil {
		lows := walkAmounts(nd, lowEstimateKeys)
		highs := walkAmounts(nd, highEstimateKeys)
		if lo, ok := minAmount(lows); ok {
			if hi, ok := minAmount(highs); ok {
				est.Low = money.Sanitize(lo)
				est.High = money.Sanitize(hi)
			}
		}
	}

	if est.Low == nil || est.High == nil {
		if m := lowEstimateAmountRe.FindStringSubmatch(html); m != nil && est.Low == nil {
			est.Low = money.Sanitize(m[1])
		}
		if m := highEstimateAmountRe.FindStringSubmatch(html); m != nil && est.High == nil {
			est.High = money.Sanitize(m[1])
		}
	}

	text := CleanText(html)
	if est.Low == nil || est.High == nil {
		lo, hi := textEstimateRange(text)
		if est.Low == nil {
			est.Low = lo
		}
		if est.High == nil {
			est.High = hi
		}
	}

	est.Reserve = reserveFromText(text)
	return est
}

// bidsquareEstimates tries text first, then scans the HTML for the estimate
// key variants Bidsquare embeds in inline JSON.
func bidsquareEstimates(html string) Estimates {
	text := CleanText(html)
	lo, hi := textEstimateRange(text)
	est := Estimates{Low: lo, High: hi, Reserve: reserveFromText(text)}

	if est.Low == nil || est.High == nil {
		var lows, highs []money.Amount
		for _, m := range lowEstimateKeyRe.FindAllStringSubmatch(html, -1) {
			if a, ok := money.Parse(m[2]); ok {
				lows = append(lows, a)
			}
		}
		for _, m := range highEstimateKeyRe.FindAllStringSubmatch(html, -1) {
			if a, ok := money.Parse(m[2]); ok {
				highs = append(highs, a)
			}
		}
		if lo, ok := minAmount(lows); ok {
			if hi, ok := minAmount(highs); ok {
				if est.Low == nil {
					est.Low = money.Sanitize(lo)
				}
				if est.High == nil {
					est.High = money.Sanitize(hi)
				}
			}
		}
	}

	return est
}

// textEstimates is the generic fallback: cleaned-text range and reserve only.
func textEstimates(html string) Estimates {
	text := CleanText(html)
	lo, hi := textEstimateRange(text)
	return Estimates{Low: lo, High: hi, Reserve: reserveFromText(text)}
}

// textEstimateRange searches an estimate-anchored window first, then the
// whole document, for any recognized dollar-range pattern.
func textEstimateRange(text string) (*string, *string) {
	windows := make([]string, 0, 2)
	if w := keywordWindowAround(text, "estimate"); w != "" {
		windows = append(windows, w)
	}
	windows = append(windows, text)

	for _, w := range windows {
		if m := dollarRangeRe.FindStringSubmatch(w); m != nil {
			return money.SanitizeRange(m[1], m[2])
		}
		if m := usdRangeRe.FindStringSubmatch(w); m != nil {
			return money.SanitizeRange(m[1], m[2])
		}
		if m := estimateBareRangeRe.FindStringSubmatch(w); m != nil {
			return money.SanitizeRange(m[1], m[2])
		}
	}
	return nil, nil
}

// reserveFromText searches a window anchored on the word "reserve". Most
// houses never publish it, so a missing keyword means nil, not an error.
func reserveFromText(text string) *string {
	w := keywordWindowAround(text, "reserve")
	if w == "" {
		return nil
	}
	return firstMoneyToken(w)
}

func hostMatches(host, suffix string) bool {
	return host == suffix || (len(host) > len(suffix) && host[len(host)-len(suffix)-1] == '.' && host[len(host)-len(suffix):] == suffix)
}
