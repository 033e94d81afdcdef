package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/logger"
)

// maxEnrichWorkers bounds concurrent article fetches so origin servers are
// never hit by more than a handful of requests at once.
const maxEnrichWorkers = 4

// BodySource extracts the body text for one article URL. Implementations
// never fail: extraction problems degrade to sentinel content strings.
type BodySource interface {
	Extract(ctx context.Context, articleURL string) string
}

// Enricher fills in article content by fetching and extracting each article
// page through a small worker pool with a shared pacing ticker.
type Enricher struct {
	bodies  BodySource
	delay   time.Duration
	workers int
	log     logger.Logger
}

// NewEnricher builds an enricher. delay is the politeness pause between
// article fetches; zero disables pacing.
func NewEnricher(bodies BodySource, delay time.Duration, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{bodies: bodies, delay: delay, workers: maxEnrichWorkers, log: log}
}

// Enrich returns a copy of articles with content and summaries filled in.
// Index order is preserved. On cancellation the articles not yet processed
// keep their provisional state so partial results are still returned.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	if len(articles) == 0 {
		return out
	}

	workerCount := min(len(articles), e.workers)

	var limiter <-chan time.Time
	if e.delay > 0 {
		ticker := time.NewTicker(e.delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go e.worker(ctx, limiter, jobCh, out, &wg, workerID)
	}

	// The send must race ctx.Done: workers stop consuming on cancel, so a
	// bare send would block forever once they are gone.
dispatch:
	for idx := range articles {
		select {
		case jobCh <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobCh)

	wg.Wait()

	return out
}

// worker consumes article indexes, waits for the rate limiter and extracts
// the body for each article.
func (e *Enricher) worker(
	ctx context.Context,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		e.log.DebugObj("extracting article body", "enrich_start", map[string]any{
			"worker_id": workerID,
			"url":       out[idx].URL,
		})

		content := e.bodies.Extract(ctx, out[idx].URL)
		out[idx].SetContent(content)
	}
}
