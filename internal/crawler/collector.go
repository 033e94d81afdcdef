// Package crawler runs the breaking-news discovery pipeline: it iterates the
// configured sources, discovers candidate article links and enriches each
// article with its body text.
package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/extract"
	"github.com/PulsoRadial/radar/internal/logger"
	"github.com/PulsoRadial/radar/pkg/render"
	"github.com/PulsoRadial/radar/pkg/sources"
)

// Placeholder metadata assigned to articles before any enrichment runs.
const (
	defaultCategory  = "general"
	defaultUrgency   = "media"
	defaultSentiment = "neutral"
)

// RenderClient is the rendering service capability the collector needs.
type RenderClient interface {
	FetchHTML(ctx context.Context, target string, opts render.Options) (string, error)
	ExtractLinks(ctx context.Context, target, selector string, opts render.Options) ([]domain.CandidateLink, error)
}

// Collector discovers candidate articles across the configured sources.
// Sources are visited sequentially so the output order is stable under
// source order; a failing source is logged and skipped, never surfaced.
type Collector struct {
	client RenderClient
	opts   render.Options
	log    logger.Logger
	now    func() time.Time
}

// NewCollector builds a collector. opts configures homepage fetches (JS
// rendering is usually on for homepages).
func NewCollector(client RenderClient, opts render.Options, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Collector{client: client, opts: opts, log: log, now: time.Now}
}

// Collect iterates the sources and returns provisional articles, deduplicated
// by exact title (first occurrence wins) and truncated to globalCap. When
// regionFilter is set and not the "all" sentinel, only sources whose name
// matches it are visited.
func (c *Collector) Collect(ctx context.Context, srcs []sources.Source, regionFilter string, globalCap int) []domain.Article {
	srcs = filterSources(srcs, regionFilter)

	var out []domain.Article
	seenTitles := make(map[string]struct{})

	for _, src := range srcs {
		if ctx.Err() != nil {
			break
		}
		if globalCap > 0 && len(out) >= globalCap {
			break
		}

		links, err := c.collectSource(ctx, src)
		if err != nil {
			c.log.WarnObj("source discovery failed", "source_error", map[string]any{
				"source": src.Name,
				"url":    src.URL,
				"error":  err.Error(),
			})
			continue
		}

		for _, link := range links {
			if _, dup := seenTitles[link.Text]; dup {
				continue
			}
			seenTitles[link.Text] = struct{}{}
			out = append(out, c.provisionalArticle(src, link))
			if globalCap > 0 && len(out) >= globalCap {
				break
			}
		}
	}

	return out
}

// collectSource discovers candidate links on one source homepage. Sources
// opted into extract-rules mode ask the rendering service to apply the
// primary selector group server-side; an empty answer falls back to fetching
// the raw HTML and parsing locally.
func (c *Collector) collectSource(ctx context.Context, src sources.Source) ([]domain.CandidateLink, error) {
	opts := c.opts
	opts.Headers = src.Headers

	if src.UseExtractRules {
		pairs, err := c.client.ExtractLinks(ctx, src.URL, src.LinkRules.PrimaryUnion(), opts)
		if err != nil {
			return nil, err
		}
		if links := extract.FromPairs(pairs, src.URL, src.LinkRules); len(links) > 0 {
			return links, nil
		}
		c.log.DebugObj("extract rules returned nothing, parsing locally", "extract_rules_empty", map[string]any{
			"source": src.Name,
		})
	}

	html, err := c.client.FetchHTML(ctx, src.URL, opts)
	if err != nil {
		return nil, err
	}

	return extract.Links(html, src.URL, src.LinkRules), nil
}

// provisionalArticle maps a candidate link to an article with placeholder
// metadata, pending body enrichment.
func (c *Collector) provisionalArticle(src sources.Source, link domain.CandidateLink) domain.Article {
	now := c.now()
	return domain.Article{
		ID:          domain.NewArticleID(now),
		Title:       link.Text,
		URL:         link.Href,
		Source:      src.Name,
		Region:      src.Region,
		PublishDate: now,
		Category:    defaultCategory,
		Urgency:     defaultUrgency,
		Sentiment:   defaultSentiment,
	}
}

// filterSources keeps sources matching the region filter. The empty string
// and the "all" sentinel disable filtering. Matching is exact, not substring.
func filterSources(srcs []sources.Source, regionFilter string) []sources.Source {
	regionFilter = strings.TrimSpace(regionFilter)
	if regionFilter == "" || strings.EqualFold(regionFilter, sources.RegionAll) {
		return srcs
	}

	out := make([]sources.Source, 0, len(srcs))
	for _, src := range srcs {
		if strings.EqualFold(src.Name, regionFilter) {
			out = append(out, src)
		}
	}
	return out
}
