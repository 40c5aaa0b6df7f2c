// Package money normalizes the heterogeneous monetary values that listing
// pages and model responses produce into exact USD amounts with a canonical
// display form.
package money

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausibility band for scraped values, in cents. Anything outside is treated
// as extraction noise (phone numbers, IDs, truncated markup) and discarded.
const (
	minPlausibleCents = 100
	maxPlausibleCents = 200_000_000_00
)

var (
	tagRe = regexp.MustCompile(`<[^>]+>`)

	// Optional USD/US$/$ prefix, grouped or ungrouped integer part, up to two
	// decimal digits. The first match wins. The grouped alternative requires
	// at least one comma group so that "2400.00" is consumed whole by the
	// ungrouped alternative instead of stopping at "240".
	captureRe = regexp.MustCompile(`(?i)(?:(?:USD|US\$)\s*)?\$?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)
)

// Amount is an exact USD amount held as integer cents. The zero value is $0,
// which is never a valid scraped price.
type Amount struct {
	cents int64
}

// FromCents builds an Amount from integer cents.
func FromCents(c int64) Amount {
	return Amount{cents: c}
}

// Cents returns the amount in integer cents.
func (a Amount) Cents() int64 {
	return a.cents
}

// Less reports whether a is strictly smaller than b.
func (a Amount) Less(b Amount) bool {
	return a.cents < b.cents
}

// String renders the canonical display form: thousands separators always,
// decimals only when the amount is fractional ("$1,250" vs "$1,250.50").
func (a Amount) String() string {
	dollars := a.cents / 100
	rem := a.cents % 100
	if rem == 0 {
		return "$" + group(dollars)
	}
	return "$" + group(dollars) + "." + twoDigits(rem)
}

// Parse extracts the first monetary token from v. Numeric values are taken
// directly (round-tripped through their string form so binary float error
// never leaks into cents); strings are stripped of any markup the caller
// accidentally captured, then matched against the money grammar.
func Parse(v any) (Amount, bool) {
	switch n := v.(type) {
	case nil:
		return Amount{}, false
	case Amount:
		return n, true
	case int:
		return fromDecimalString(strconv.Itoa(n))
	case int64:
		return fromDecimalString(strconv.FormatInt(n, 10))
	case float64:
		return fromDecimalString(strconv.FormatFloat(n, 'f', -1, 64))
	case float32:
		return fromDecimalString(strconv.FormatFloat(float64(n), 'f', -1, 32))
	case string:
		return parseString(n)
	default:
		return Amount{}, false
	}
}

// Sanitize parses v and applies the plausibility band. Returns the canonical
// display string, or nil when v is absent, unparsable, or implausible.
func Sanitize(v any) *string {
	a, ok := Parse(v)
	if !ok {
		return nil
	}
	if a.cents < minPlausibleCents || a.cents > maxPlausibleCents {
		return nil
	}
	s := a.String()
	return &s
}

// SanitizeRange sanitizes both bounds of an estimate range. A range is only
// useful when both ends are trustworthy, so a single failed bound voids the
// pair. Inverted bounds are swapped rather than rejected: source pages
// sometimes list high-then-low.
func SanitizeRange(lo, hi any) (*string, *string) {
	alo, okLo := Parse(lo)
	ahi, okHi := Parse(hi)
	if !okLo || !okHi {
		return nil, nil
	}
	if ahi.Less(alo) {
		alo, ahi = ahi, alo
	}
	if alo.cents < minPlausibleCents || ahi.cents > maxPlausibleCents {
		return nil, nil
	}
	slo, shi := alo.String(), ahi.String()
	return &slo, &shi
}

// Display renders v for humans: the sanitized canonical form when possible,
// the em-dash sentinel when absent or worthless.
func Display(v *string) string {
	if v == nil {
		return "—"
	}
	if s := Sanitize(*v); s != nil {
		return *s
	}
	return "—"
}

func parseString(s string) (Amount, bool) {
	s = strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
	if s == "" {
		return Amount{}, false
	}
	m := captureRe.FindStringSubmatch(s)
	if m == nil {
		return Amount{}, false
	}
	return fromDecimalString(strings.ReplaceAll(m[1], ",", ""))
}

// fromDecimalString converts an unsigned decimal literal with at most two
// fraction digits into cents.
func fromDecimalString(s string) (Amount, bool) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return Amount{}, false
	}
	var cents int64
	if whole != "" {
		d, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || d > maxInt64Dollars {
			return Amount{}, false
		}
		cents = d * 100
	}
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Amount{}, false
		}
		cents += d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Amount{}, false
		}
		cents += d
	default:
		// More than two fraction digits never comes out of the money
		// grammar; numeric round-trips can produce it, so truncate.
		d, err := strconv.ParseInt(frac[:2], 10, 64)
		if err != nil {
			return Amount{}, false
		}
		cents += d
	}
	return Amount{cents: cents}, true
}

// Dollar values above this would overflow cents; far beyond the plausibility
// band anyway.
const maxInt64Dollars = int64(1) << 52

func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
