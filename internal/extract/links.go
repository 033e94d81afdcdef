package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/PulsoRadial/radar/internal/domain"
)

// Links discovers candidate article links in a source homepage. The primary
// selector group is tried first; only when it yields nothing does the broader
// fallback group run, guarded by the keyword, path and exclusion filters.
// Relative hrefs are resolved against baseURL and non-http(s) results are
// dropped. Order follows selector match order; duplicate hrefs keep the first
// occurrence.
func Links(html, baseURL string, rules LinkRules) []domain.CandidateLink {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	links := selectPairs(doc, rules.Primary, rules.PrimaryCap, nil)
	if len(links) == 0 {
		links = selectPairs(doc, rules.Fallback, rules.FallbackCap, func(l domain.CandidateLink) bool {
			return acceptFallback(l, rules)
		})
	}

	return resolveLinks(links, baseURL)
}

// FromPairs applies the primary-pass filters and URL resolution to link
// pairs already extracted server-side by the rendering service.
func FromPairs(pairs []domain.CandidateLink, baseURL string, rules LinkRules) []domain.CandidateLink {
	var links []domain.CandidateLink
	seen := make(map[string]struct{})

	for _, pair := range pairs {
		if pair.Href == "" || pair.Text == "" {
			continue
		}
		if _, dup := seen[pair.Href]; dup {
			continue
		}
		seen[pair.Href] = struct{}{}
		links = append(links, domain.CandidateLink{Href: pair.Href, Text: collapseSpaces(pair.Text)})
		if len(links) >= rules.PrimaryCap {
			break
		}
	}

	return resolveLinks(links, baseURL)
}

// PrimaryUnion returns the primary selector group as one combined selector,
// the form the rendering service's extract-rules mode expects.
func (r LinkRules) PrimaryUnion() string {
	return strings.Join(r.Primary, ", ")
}

// selectPairs runs a unioned selector query and collects non-empty
// (href, text) pairs up to limit, applying the optional accept filter.
func selectPairs(doc *goquery.Document, selectors []string, limit int, accept func(domain.CandidateLink) bool) []domain.CandidateLink {
	if len(selectors) == 0 || limit <= 0 {
		return nil
	}

	var links []domain.CandidateLink
	seen := make(map[string]struct{})

	doc.Find(strings.Join(selectors, ", ")).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		text := collapseSpaces(sel.Text())
		if !ok || href == "" || text == "" {
			return true
		}

		link := domain.CandidateLink{Href: href, Text: text}
		if accept != nil && !accept(link) {
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}

		seen[href] = struct{}{}
		links = append(links, link)
		return len(links) < limit
	})

	return links
}

// acceptFallback applies the fallback-pass filters: exclusion list first,
// then anchor length bounds, then keyword or path acceptance.
func acceptFallback(l domain.CandidateLink, rules LinkRules) bool {
	lowerHref := strings.ToLower(l.Href)
	lowerText := strings.ToLower(l.Text)

	for _, excl := range rules.Exclusions {
		// A bare "#" excludes fragment-only anchors, not article URLs that
		// happen to carry a fragment.
		if excl == "#" {
			if strings.HasPrefix(lowerHref, "#") {
				return false
			}
			continue
		}
		if strings.Contains(lowerHref, excl) || strings.Contains(lowerText, excl) {
			return false
		}
	}

	if n := len([]rune(l.Text)); n < rules.MinAnchorLen || n > rules.MaxAnchorLen {
		return false
	}

	for _, kw := range rules.Keywords {
		if strings.Contains(lowerText, kw) || strings.Contains(lowerHref, kw) {
			return true
		}
	}
	for _, p := range rules.ArticlePaths {
		if strings.Contains(lowerHref, p) {
			return true
		}
	}
	return datePathPattern.MatchString(l.Href)
}

// resolveLinks resolves hrefs against the source base URL and keeps only
// absolute http(s) results.
func resolveLinks(links []domain.CandidateLink, baseURL string) []domain.CandidateLink {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	out := make([]domain.CandidateLink, 0, len(links))
	for _, l := range links {
		ref, err := url.Parse(l.Href)
		if err != nil {
			continue
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			continue
		}
		l.Href = ref.String()
		out = append(out, l)
	}
	return out
}

// collapseSpaces trims the string and collapses runs of whitespace to single
// spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
