package extract

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Chairish search results often link to collection pages rather than the
// product detail page that actually carries the price. ResolveChairishProduct
// scans a page for canonical /product/ links and scores each candidate by how
// well its image and surrounding text match the search result we are trying
// to pin down.

var (
	titleWordRe   = regexp.MustCompile(`\w{4,}`)
	sizedImgRe    = regexp.MustCompile(`width=(\d+)&height=\d+`)
	bareProductRe = regexp.MustCompile(`(?i)(https?://[^"'>\s]*chairish\.com/product/[^"'>\s]+)`)
)

// ResolveChairishProduct picks the best canonical product URL from html, or
// "" when no candidate clears the floor.
func ResolveChairishProduct(html, baseURL, matchTitle, matchThumbnail string) string {
	canonicalPrefix := strings.TrimRight(baseURL, "/") + "/product/"
	thumbBase := strings.ToLower(imageBasename(matchThumbnail))
	titleWords := titleWordRe.FindAllString(strings.ToLower(matchTitle), -1)

	type candidate struct {
		score int
		url   string
	}
	var candidates []candidate

	doc := parseDoc(html)
	if doc != nil {
		doc.Find(`a[href*="/product/"]`).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			full := resolveURL(baseURL, href)
			if !strings.HasPrefix(full, canonicalPrefix) {
				return
			}
			imgSrc, _ := s.Find("img").First().Attr("src")
			imgSrc = resolveURL(baseURL, imgSrc)

			score := scoreCandidate(s.Text(), imgSrc, thumbBase, titleWords)
			candidates = append(candidates, candidate{score: score, url: full})
		})
	}

	if len(candidates) == 0 {
		for _, m := range bareProductRe.FindAllString(html, -1) {
			if strings.HasPrefix(m, canonicalPrefix) {
				candidates = append(candidates, candidate{score: 1, url: m})
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	best := candidates[0]
	if best.score >= 1 {
		return best.url
	}
	return ""
}

// scoreCandidate weighs a candidate product link: an exact full-size image
// basename match dominates, title-word overlap breaks ties.
func scoreCandidate(snippet, imgSrc, thumbBase string, titleWords []string) int {
	score := 0
	if imgSrc != "" && !IsLikelyThumbnailURL(imgSrc) {
		candBase := strings.ToLower(imageBasename(imgSrc))
		switch {
		case thumbBase != "" && candBase == thumbBase:
			score += 100
		case thumbBase != "" && strings.Contains(candBase, thumbBase):
			score += 50
		default:
			score += 5
		}
	}
	lower := strings.ToLower(snippet)
	for _, w := range titleWords {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	return score
}

// IsLikelyThumbnailURL recognizes the sized/thumbnail image variants the
// search provider and Chairish grids serve, which never match a product
// page's full-size image.
func IsLikelyThumbnailURL(imgURL string) bool {
	if imgURL == "" {
		return false
	}
	low := strings.ToLower(imgURL)
	if strings.Contains(low, "width=265") || strings.Contains(low, "height=265") {
		return true
	}
	if m := sizedImgRe.FindStringSubmatch(low); m != nil {
		if w, err := strconv.Atoi(m[1]); err == nil && w < 500 {
			return true
		}
	}
	for _, tok := range []string{"/thumbs/", "/thumbnail", "thumbnail=", "thumb=", "/small", "/w_"} {
		if strings.Contains(low, tok) {
			return true
		}
	}
	return false
}

// imageBasename strips query and fragment and returns the final path element.
func imageBasename(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return path.Base(s)
}

func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
