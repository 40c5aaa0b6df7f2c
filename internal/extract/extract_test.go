package extract

import (
	"strings"
	"testing"
)

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func TestCleanText(t *testing.T) {
	html := `<html><head><style>body { color: red; }</style>
<script>var price = 99999;</script></head>
<body><h1>Walnut   Commode</h1><p>Circa   1880</p></body></html>`

	got := CleanText(html)
	want := "Walnut Commode Circa 1880"
	if got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
	if strings.Contains(got, "99999") {
		t.Fatalf("script content leaked into cleaned text: %q", got)
	}
}

func TestCleanTextCapped(t *testing.T) {
	html := "<p>" + strings.Repeat("x ", maxCleanText) + "</p>"
	if got := len(CleanText(html)); got > maxCleanText {
		t.Fatalf("cleaned text length = %d, want <= %d", got, maxCleanText)
	}
}

func TestRetailPriceJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type":"Product","name":"Louis XV Style Commode",
	 "offers":{"@type":"Offer","price":"2400.00","priceCurrency":"USD"}}
	</script></head><body></body></html>`

	got := RetailPrice("www.chairish.com", html)
	if strOrEmpty(got) != "$2,400" {
		t.Fatalf("RetailPrice = %q, want $2,400", strOrEmpty(got))
	}
}

func TestRetailPriceJSONLDNonUSD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type":"Offer","price":"2400.00","priceCurrency":"GBP"}
	</script></head><body></body></html>`

	if got := RetailPrice("chairish.com", html); got != nil {
		t.Fatalf("non-USD offer produced %q, want nil", *got)
	}
}

func TestRetailPriceLowestPlausible(t *testing.T) {
	// Comparable items priced higher than the listing itself; the lowest
	// plausible offer wins.
	html := `<html><head><script type="application/ld+json">
	[{"@type":"Offer","price":"8500","priceCurrency":"USD"},
	 {"@type":"Offer","price":"3200","priceCurrency":"USD"},
	 {"@type":"Offer","price":"0.50","priceCurrency":"USD"}]
	</script></head><body></body></html>`

	got := RetailPrice("1stdibs.com", html)
	if strOrEmpty(got) != "$3,200" {
		t.Fatalf("RetailPrice = %q, want $3,200", strOrEmpty(got))
	}
}

func TestRetailPriceMetaTag(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og product price",
			html: `<html><head><meta property="product:price:amount" content="1850.00"></head><body></body></html>`,
			want: "$1,850",
		},
		{
			name: "non-usd currency blocks meta price",
			html: `<html><head><meta property="product:price:amount" content="1850.00">
			<meta property="product:price:currency" content="EUR"></head><body></body></html>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RetailPrice("incollect.com", tt.html)
			if strOrEmpty(got) != tt.want {
				t.Fatalf("RetailPrice = %q, want %q", strOrEmpty(got), tt.want)
			}
		})
	}
}

func TestChairishPriceCents(t *testing.T) {
	html := `<html><body><script>window.__STATE__ = {"product": {"price_cents": 240000}};</script></body></html>`

	got := RetailPrice("chairish.com", html)
	if strOrEmpty(got) != "$2,400" {
		t.Fatalf("price_cents path = %q, want $2,400", strOrEmpty(got))
	}
}

func TestRetailPriceTextWindow(t *testing.T) {
	html := `<html><body><p>A fine giltwood mirror.</p>
	<p>Price: $4,750 plus shipping</p></body></html>`

	got := RetailPrice("rauantiques.com", html)
	if strOrEmpty(got) != "$4,750" {
		t.Fatalf("text window price = %q, want $4,750", strOrEmpty(got))
	}
}

func TestRetailPriceNotFound(t *testing.T) {
	html := `<html><body><p>Sold. Contact us for similar pieces.</p></body></html>`
	if got := RetailPrice("chairish.com", html); got != nil {
		t.Fatalf("expected nil for page with no price, got %q", *got)
	}
}

func TestFirstDibsNextData(t *testing.T) {
	html := `<html><body><script id="__NEXT_DATA__" type="application/json">
	{"props":{"pageProps":{"item":{"price":{"amount":6200},"listPrice":6200}}}}
	</script></body></html>`

	got := RetailPrice("www.1stdibs.com", html)
	if strOrEmpty(got) != "$6,200" {
		t.Fatalf("RetailPrice = %q, want $6,200", strOrEmpty(got))
	}
}

func TestAuctionEstimatesTextRange(t *testing.T) {
	html := `<html><body><h1>Pair of Bronze Candelabra</h1>
	<p>Estimate: $800 - $1,200</p></body></html>`

	est := AuctionEstimates("www.liveauctioneers.com", html)
	if strOrEmpty(est.Low) != "$800" || strOrEmpty(est.High) != "$1,200" {
		t.Fatalf("estimates = %q/%q, want $800/$1,200", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
	if est.Reserve != nil {
		t.Fatalf("reserve = %q, want nil", *est.Reserve)
	}
}

func TestAuctionEstimatesNextData(t *testing.T) {
	html := `<html><body><script id="__NEXT_DATA__" type="application/json">
	{"props":{"lot":{"lowEstimate":1500,"highEstimate":2500}}}
	</script></body></html>`

	est := AuctionEstimates("liveauctioneers.com", html)
	if strOrEmpty(est.Low) != "$1,500" || strOrEmpty(est.High) != "$2,500" {
		t.Fatalf("estimates = %q/%q, want $1,500/$2,500", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestAuctionEstimatesAmountObjects(t *testing.T) {
	html := `<html><body><script>
	var lot = {"lowEstimate":{"amount":3000,"currency":"USD"},"highEstimate":{"amount":5000,"currency":"USD"}};
	</script></body></html>`

	est := AuctionEstimates("liveauctioneers.com", html)
	if strOrEmpty(est.Low) != "$3,000" || strOrEmpty(est.High) != "$5,000" {
		t.Fatalf("estimates = %q/%q, want $3,000/$5,000", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestAuctionEstimatesReserve(t *testing.T) {
	html := `<html><body>
	<p>Reserve: $1,800</p>
	<p>Estimate: $2,000 - $3,000</p></body></html>`

	est := AuctionEstimates("sothebys.com", html)
	if strOrEmpty(est.Low) != "$2,000" || strOrEmpty(est.High) != "$3,000" {
		t.Fatalf("estimates = %q/%q, want $2,000/$3,000", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
	if strOrEmpty(est.Reserve) != "$1,800" {
		t.Fatalf("reserve = %q, want $1,800", strOrEmpty(est.Reserve))
	}
}

func TestAuctionEstimatesBareRange(t *testing.T) {
	html := `<html><body><p>Estimate 800 - 1,200</p></body></html>`

	est := AuctionEstimates("christies.com", html)
	if strOrEmpty(est.Low) != "$800" || strOrEmpty(est.High) != "$1,200" {
		t.Fatalf("estimates = %q/%q, want $800/$1,200", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestAuctionEstimatesUSDSuffix(t *testing.T) {
	html := `<html><body><p>Estimate: 4,000 - 6,000 USD</p></body></html>`

	est := AuctionEstimates("bidsquare.com", html)
	if strOrEmpty(est.Low) != "$4,000" || strOrEmpty(est.High) != "$6,000" {
		t.Fatalf("estimates = %q/%q, want $4,000/$6,000", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestBidsquareEstimateKeys(t *testing.T) {
	html := `<html><body><script>
	var lot = {"estimate_low":"1,000","estimate_high":"1,500"};
	</script></body></html>`

	est := AuctionEstimates("www.bidsquare.com", html)
	if strOrEmpty(est.Low) != "$1,000" || strOrEmpty(est.High) != "$1,500" {
		t.Fatalf("estimates = %q/%q, want $1,000/$1,500", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestAuctionEstimatesInvertedRange(t *testing.T) {
	html := `<html><body><p>Estimate: $1,200 - $800</p></body></html>`

	est := AuctionEstimates("liveauctioneers.com", html)
	if strOrEmpty(est.Low) != "$800" || strOrEmpty(est.High) != "$1,200" {
		t.Fatalf("inverted range = %q/%q, want $800/$1,200", strOrEmpty(est.Low), strOrEmpty(est.High))
	}
}

func TestResolveChairishProduct(t *testing.T) {
	const base = "https://www.chairish.com"
	html := `<html><body>
	<a href="/product/111/walnut-commode"><img src="https://images.chairish.com/image/product/full/commode-abc.jpg">Louis XV Walnut Commode</a>
	<a href="/product/222/other-table"><img src="https://images.chairish.com/image/product/full/table-xyz.jpg">Oak Dining Table</a>
	<a href="/collection/french">French Furniture</a>
	</body></html>`

	got := ResolveChairishProduct(html, base, "Louis XV Walnut Commode",
		"https://serpapi.example.com/thumbs/commode-abc.jpg")
	want := "https://www.chairish.com/product/111/walnut-commode"
	if got != want {
		t.Fatalf("ResolveChairishProduct = %q, want %q", got, want)
	}
}

func TestResolveChairishProductBareFallback(t *testing.T) {
	const base = "https://www.chairish.com"
	html := `<html><body><script>
	var canonical = "https://www.chairish.com/product/333/gilt-mirror";
	</script></body></html>`

	got := ResolveChairishProduct(html, base, "Gilt Mirror", "")
	want := `https://www.chairish.com/product/333/gilt-mirror`
	if got != want {
		t.Fatalf("ResolveChairishProduct = %q, want %q", got, want)
	}
}

func TestResolveChairishProductNoCandidates(t *testing.T) {
	html := `<html><body><a href="/collection/french">French Furniture</a></body></html>`
	if got := ResolveChairishProduct(html, "https://www.chairish.com", "Commode", ""); got != "" {
		t.Fatalf("ResolveChairishProduct = %q, want empty", got)
	}
}

func TestIsLikelyThumbnailURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://img.example.com/p.jpg?width=265&height=265", true},
		{"https://img.example.com/p.jpg?width=300&height=300", true},
		{"https://img.example.com/p.jpg?width=1200&height=900", false},
		{"https://img.example.com/thumbs/p.jpg", true},
		{"https://img.example.com/full/p.jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsLikelyThumbnailURL(tt.url); got != tt.want {
				t.Fatalf("IsLikelyThumbnailURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestHostMatches(t *testing.T) {
	tests := []struct {
		host   string
		suffix string
		want   bool
	}{
		{"chairish.com", "chairish.com", true},
		{"www.chairish.com", "chairish.com", true},
		{"notchairish.com", "chairish.com", false},
		{"chairish.com.evil.com", "chairish.com", false},
	}
	for _, tt := range tests {
		if got := hostMatches(tt.host, tt.suffix); got != tt.want {
			t.Errorf("hostMatches(%q, %q) = %v, want %v", tt.host, tt.suffix, got, tt.want)
		}
	}
}
