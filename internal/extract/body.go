package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/PulsoRadial/radar/internal/logger"
	"github.com/PulsoRadial/radar/pkg/render"
)

// Sentinel content strings returned when body extraction cannot produce real
// text. The extractor never fails its caller; a bad article degrades to one
// of these instead of aborting the batch.
const (
	SentinelInvalidURL  = "URL inválida"
	SentinelFetchFailed = "Error al obtener contenido"
	SentinelNoContent   = "Contenido no disponible"
)

// maxHTMLBytes caps how much fetched HTML is parsed per article page.
const maxHTMLBytes = 1 << 20

// sentinelHTTPError reports a non-2xx fetch for a single article.
func sentinelHTTPError(status int) string {
	return fmt.Sprintf("Error HTTP %d", status)
}

// Fetcher is the fetch capability the body extractor needs from the
// rendering service client.
type Fetcher interface {
	FetchHTML(ctx context.Context, target string, opts render.Options) (string, error)
}

// BodyExtractor fetches article pages and extracts their main body text.
type BodyExtractor struct {
	fetcher Fetcher
	rules   BodyRules
	log     logger.Logger
}

// NewBodyExtractor builds a body extractor around the given fetcher.
func NewBodyExtractor(fetcher Fetcher, rules BodyRules, log logger.Logger) *BodyExtractor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &BodyExtractor{fetcher: fetcher, rules: rules, log: log}
}

// Extract returns the plain body text of the article at the given URL. It
// always returns a string: fetch or parse failures map to sentinel messages.
// Pages are fetched without JS rendering and with resource blocking since
// text extraction needs neither.
func (e *BodyExtractor) Extract(ctx context.Context, articleURL string) string {
	articleURL = strings.TrimSpace(articleURL)
	if articleURL == "" || !strings.HasPrefix(articleURL, "http") {
		return SentinelInvalidURL
	}

	html, err := e.fetcher.FetchHTML(ctx, articleURL, render.Options{
		RenderJS:       false,
		BlockResources: true,
	})
	if err != nil {
		var upstream *render.UpstreamError
		if errors.As(err, &upstream) {
			return sentinelHTTPError(upstream.StatusCode)
		}
		var invalid *render.InvalidURLError
		if errors.As(err, &invalid) {
			return SentinelInvalidURL
		}
		e.log.WarnObj("article fetch failed", "body_fetch_error", map[string]any{
			"url":   articleURL,
			"error": err.Error(),
		})
		return SentinelFetchFailed
	}

	content := BodyFromHTML(html, e.rules)
	if content == "" {
		return SentinelNoContent
	}
	return content
}

// BodyFromHTML extracts the main body text from article HTML. Boilerplate
// subtrees are removed first so no later selector can pick up their text,
// then the content selector cascade runs first-match-wins. Results below the
// usable threshold fall back to a readability pass and finally to the whole
// page text. Returns "" when nothing usable is found.
func BodyFromHTML(html string, rules BodyRules) string {
	if len(html) > maxHTMLBytes {
		html = html[:maxHTMLBytes]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if len(rules.Remove) > 0 {
		doc.Find(strings.Join(rules.Remove, ", ")).Remove()
	}

	if content := contentFromCascade(doc, rules); utfLen(content) >= rules.MinContentLen {
		return content
	}

	if content := contentFromReadability(html); utfLen(content) >= rules.MinContentLen {
		return content
	}

	return normalizeText(doc.Find("body").Text())
}

// contentFromCascade tries the ordered content selectors and returns the
// first non-empty joined text. It never merges across selectors: overlapping
// selectors would duplicate the same paragraphs.
func contentFromCascade(doc *goquery.Document, rules BodyRules) string {
	for _, selector := range rules.Content {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}

		var parts []string
		sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= rules.MaxElements {
				return false
			}
			text := normalizeText(s.Text())
			if usableElement(text, rules) {
				parts = append(parts, text)
			}
			return true
		})

		if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
			return joined
		}
	}
	return ""
}

// usableElement rejects element texts that are image file names, ad or logo
// placeholders, or too short to be prose.
func usableElement(text string, rules BodyRules) bool {
	if utfLen(text) < rules.MinElementLen {
		return false
	}
	if imageFilePattern.MatchString(text) {
		return false
	}
	if adTextPattern.MatchString(text) {
		return false
	}
	return true
}

// contentFromReadability runs the readability algorithm over the raw page as
// an intermediate fallback between the selector cascade and the whole-page
// text. Only the text content is used, so the page URL is a placeholder.
func contentFromReadability(html string) string {
	base, err := url.Parse("https://localhost/")
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), base)
	if err != nil {
		return ""
	}
	return normalizeText(article.TextContent)
}

// normalizeText collapses whitespace, strips characters outside a
// conservative allow-list (letters including Spanish diacritics, digits and
// common punctuation) and trims.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return collapseSpaces(b.String())
}

// allowedRune reports whether the rune survives normalization.
func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '\n' || r == '\t':
		return true
	}
	switch r {
	case 'á', 'é', 'í', 'ó', 'ú', 'ü', 'ñ', 'Á', 'É', 'Í', 'Ó', 'Ú', 'Ü', 'Ñ':
		return true
	case '.', ',', ';', ':', '(', ')', '[', ']', '%', '$', '"', '\'', '«', '»',
		'-', '–', '—', '…', '!', '?', '¡', '¿', '/', '&', '+':
		return true
	}
	return false
}

// utfLen returns the rune length of s.
func utfLen(s string) int {
	return len([]rune(s))
}
