package crawler

import (
	"context"

	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/logger"
	"github.com/PulsoRadial/radar/pkg/sources"
)

// DefaultGlobalCap bounds the aggregated result set per run.
const DefaultGlobalCap = 15

// Params shapes one pipeline run.
type Params struct {
	// Region filters sources; empty or "all" keeps every source.
	Region string

	// MaxResults caps the aggregated article count; <=0 uses DefaultGlobalCap.
	MaxResults int
}

// Pipeline orchestrates discovery and enrichment. It always returns a
// (possibly empty) article list: per-source and per-article failures are
// absorbed along the way, never propagated.
type Pipeline struct {
	collector *Collector
	enricher  *Enricher
	log       logger.Logger
}

// NewPipeline wires a collector and enricher into a pipeline.
func NewPipeline(collector *Collector, enricher *Enricher, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{collector: collector, enricher: enricher, log: log}
}

// Run discovers candidate articles across the sources and enriches each with
// its body content.
func (p *Pipeline) Run(ctx context.Context, srcs []sources.Source, params Params) []domain.Article {
	globalCap := params.MaxResults
	if globalCap <= 0 {
		globalCap = DefaultGlobalCap
	}

	articles := p.collector.Collect(ctx, srcs, params.Region, globalCap)

	p.log.InfoObj("discovery finished", "collect_done", map[string]any{
		"sources":  len(srcs),
		"region":   params.Region,
		"articles": len(articles),
	})

	articles = p.enricher.Enrich(ctx, articles)

	p.log.InfoObj("enrichment finished", "enrich_done", map[string]any{
		"articles": len(articles),
	})

	return articles
}
