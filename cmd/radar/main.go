// Command radar discovers breaking-news articles on the configured source
// homepages, extracts their body text and publishes the newly seen ones to
// the configured sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/PulsoRadial/radar/internal/config"
	"github.com/PulsoRadial/radar/internal/crawler"
	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/extract"
	"github.com/PulsoRadial/radar/internal/logger"
	"github.com/PulsoRadial/radar/internal/store"
	"github.com/PulsoRadial/radar/pkg/httpclient"
	"github.com/PulsoRadial/radar/pkg/publishers"
	"github.com/PulsoRadial/radar/pkg/render"
	"github.com/PulsoRadial/radar/pkg/sources"
)

func main() {
	configPath := flag.String("config", "config.yaml", "application config file")
	sourcesPath := flag.String("sources", "sources.yaml", "sources config file")
	publishersPath := flag.String("publishers", "", "publishers config file (optional)")
	region := flag.String("region", "", "region filter, overrides config when set")
	maxResults := flag.Int("max", 0, "max aggregated articles, overrides config when set")
	flag.Parse()

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	if err := run(*configPath, *sourcesPath, *publishersPath, *region, *maxResults); err != nil {
		fmt.Fprintf(os.Stderr, "radar: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, sourcesPath, publishersPath, regionFlag string, maxFlag int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srcReg, err := sources.LoadRegistry(sourcesPath)
	if err != nil {
		return err
	}
	srcs := srcReg.Sources()

	httpc := httpclient.NewRestyClient(cfg.Render.Timeout())
	renderClient := render.NewClient(render.Config{
		APIKey:   cfg.Render.APIKey,
		Endpoint: cfg.Render.Endpoint,
	}, httpc, log)

	homepageOpts := render.Options{
		RenderJS:     cfg.Render.RenderJS,
		PremiumProxy: cfg.Render.PremiumProxy,
		CountryCode:  cfg.Render.CountryCode,
	}

	bodies := extract.NewBodyExtractor(renderClient, extract.DefaultBodyRules(), log)
	collector := crawler.NewCollector(renderClient, homepageOpts, log)
	enricher := crawler.NewEnricher(bodies, cfg.Pipeline.RequestDelay(), log)
	pipeline := crawler.NewPipeline(collector, enricher, log)

	params := crawler.Params{
		Region:     cfg.Pipeline.Region,
		MaxResults: cfg.Pipeline.MaxResults,
	}
	if regionFlag != "" {
		params.Region = regionFlag
	}
	if maxFlag > 0 {
		params.MaxResults = maxFlag
	}

	articles := pipeline.Run(ctx, srcs, params)

	history, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	fresh, err := history.FilterNew(articles)
	if err != nil {
		return err
	}

	log.InfoObj("pipeline run complete", "run_summary", map[string]any{
		"sources":    len(srcs),
		"discovered": len(articles),
		"new":        len(fresh),
	})

	if publishersPath != "" && len(fresh) > 0 {
		if err := publish(ctx, publishersPath, fresh, log); err != nil {
			return err
		}
	}

	if err := history.MarkSeen(fresh); err != nil {
		return err
	}

	return nil
}

// publish delivers the new articles to every enabled publisher, one event
// per source. Delivery failures are logged but do not fail the run: the
// articles are still marked seen by the caller.
func publish(ctx context.Context, path string, articles []domain.Article, log logger.Logger) error {
	pubReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return err
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubReg.Enabled(), log)
	if err != nil {
		return err
	}

	for _, evt := range eventsBySource(articles) {
		for _, pub := range pubs {
			if err := pub.Publish(ctx, evt); err != nil {
				log.ErrorObj("publisher delivery failed", "publish_error", map[string]any{
					"publisher": pub.ID(),
					"source":    evt.Source,
					"error":     err.Error(),
				})
			}
		}
	}

	return nil
}

// eventsBySource groups articles into one event per source, preserving the
// pipeline's article order.
func eventsBySource(articles []domain.Article) []publishers.Event {
	var order []string
	grouped := make(map[string][]domain.Article)
	for _, art := range articles {
		if _, ok := grouped[art.Source]; !ok {
			order = append(order, art.Source)
		}
		grouped[art.Source] = append(grouped[art.Source], art)
	}

	events := make([]publishers.Event, 0, len(order))
	for _, src := range order {
		batch := grouped[src]
		region := ""
		if len(batch) > 0 {
			region = batch[0].Region
		}
		events = append(events, publishers.NewEvent(src, region, batch))
	}
	return events
}
