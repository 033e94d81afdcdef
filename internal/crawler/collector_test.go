package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/extract"
	"github.com/PulsoRadial/radar/pkg/render"
	"github.com/PulsoRadial/radar/pkg/sources"
)

// fakeRender serves canned homepages and link pairs per URL.
type fakeRender struct {
	htmls      map[string]string
	errs       map[string]error
	pairs      map[string][]domain.CandidateLink
	htmlCalls  int
	pairsCalls int
}

func (f *fakeRender) FetchHTML(_ context.Context, target string, _ render.Options) (string, error) {
	f.htmlCalls++
	if err := f.errs[target]; err != nil {
		return "", err
	}
	return f.htmls[target], nil
}

func (f *fakeRender) ExtractLinks(_ context.Context, target, _ string, _ render.Options) ([]domain.CandidateLink, error) {
	f.pairsCalls++
	if err := f.errs[target]; err != nil {
		return nil, err
	}
	return f.pairs[target], nil
}

func testSource(name, url, region string) sources.Source {
	return sources.Source{
		Name:      name,
		URL:       url,
		Region:    region,
		LinkRules: extract.DefaultLinkRules(),
	}
}

func homepage(titles ...string) string {
	html := "<html><body>"
	for i, title := range titles {
		html += `<article><a href="/noticia/` + string(rune('a'+i)) + `">` + title + `</a></article>`
	}
	return html + "</body></html>"
}

func TestCollectPerSourceIsolation(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{
			"https://b.cl": homepage("Titular del medio que funciona"),
		},
		errs: map[string]error{
			"https://a.cl": &render.NetworkError{Err: errors.New("connection reset")},
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	srcs := []sources.Source{
		testSource("medio-a", "https://a.cl", "norte"),
		testSource("medio-b", "https://b.cl", "sur"),
	}

	out := c.Collect(context.Background(), srcs, "", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1 from the healthy source", len(out))
	}
	if out[0].Source != "medio-b" {
		t.Errorf("out[0].Source = %q, want %q", out[0].Source, "medio-b")
	}
}

func TestCollectDeduplicatesByTitle(t *testing.T) {
	title := "Terremoto en el norte"
	client := &fakeRender{
		htmls: map[string]string{
			"https://a.cl": homepage(title),
			"https://b.cl": homepage(title),
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	srcs := []sources.Source{
		testSource("medio-a", "https://a.cl", ""),
		testSource("medio-b", "https://b.cl", ""),
	}

	out := c.Collect(context.Background(), srcs, "", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1 after title dedup", len(out))
	}
	if out[0].Source != "medio-a" {
		t.Errorf("out[0].Source = %q, first occurrence in source order should win", out[0].Source)
	}
	if out[0].URL != "https://a.cl/noticia/a" {
		t.Errorf("out[0].URL = %q", out[0].URL)
	}
}

func TestCollectRegionFilterExactMatch(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{
			"https://a.cl": homepage("Noticia del medio uno"),
			"https://b.cl": homepage("Noticia del medio dos"),
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	srcs := []sources.Source{
		testSource("medio-a", "https://a.cl", ""),
		testSource("medio-ab", "https://b.cl", ""),
	}

	out := c.Collect(context.Background(), srcs, "medio-a", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1: filter is exact, not substring", len(out))
	}
	if out[0].Source != "medio-a" {
		t.Errorf("out[0].Source = %q, want %q", out[0].Source, "medio-a")
	}
}

func TestCollectAllSentinelDisablesFilter(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{
			"https://a.cl": homepage("Noticia del medio uno"),
			"https://b.cl": homepage("Noticia del medio dos"),
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	srcs := []sources.Source{
		testSource("medio-a", "https://a.cl", ""),
		testSource("medio-b", "https://b.cl", ""),
	}

	out := c.Collect(context.Background(), srcs, "all", 15)

	if len(out) != 2 {
		t.Fatalf("Collect() returned %d articles, want 2 with the all sentinel", len(out))
	}
}

func TestCollectGlobalCap(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{
			"https://a.cl": homepage("Primer titular del día", "Segundo titular del día", "Tercer titular del día"),
			"https://b.cl": homepage("Cuarto titular del día"),
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	srcs := []sources.Source{
		testSource("medio-a", "https://a.cl", ""),
		testSource("medio-b", "https://b.cl", ""),
	}

	out := c.Collect(context.Background(), srcs, "", 2)

	if len(out) != 2 {
		t.Fatalf("Collect() returned %d articles, want global cap 2", len(out))
	}
	if out[0].Title != "Primer titular del día" || out[1].Title != "Segundo titular del día" {
		t.Errorf("Collect() order not stable under source order: %q, %q", out[0].Title, out[1].Title)
	}
}

func TestCollectProvisionalMetadata(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{"https://a.cl": homepage("Titular con metadatos por defecto")},
	}
	c := NewCollector(client, render.Options{}, nil)

	out := c.Collect(context.Background(), []sources.Source{testSource("medio-a", "https://a.cl", "norte")}, "", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1", len(out))
	}
	art := out[0]
	if art.ID == "" {
		t.Error("article ID is empty")
	}
	if art.Category != "general" || art.Urgency != "media" || art.Sentiment != "neutral" {
		t.Errorf("placeholder metadata = (%q, %q, %q), want (general, media, neutral)",
			art.Category, art.Urgency, art.Sentiment)
	}
	if art.Region != "norte" {
		t.Errorf("art.Region = %q, want inherited source region", art.Region)
	}
	if art.PublishDate.IsZero() {
		t.Error("art.PublishDate is zero")
	}
}

func TestCollectExtractRulesMode(t *testing.T) {
	client := &fakeRender{
		pairs: map[string][]domain.CandidateLink{
			"https://a.cl": {{Href: "/noticia/uno", Text: "Titular entregado por el servicio"}},
		},
	}
	c := NewCollector(client, render.Options{}, nil)

	src := testSource("medio-a", "https://a.cl", "")
	src.UseExtractRules = true

	out := c.Collect(context.Background(), []sources.Source{src}, "", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1 via extract rules", len(out))
	}
	if client.pairsCalls != 1 {
		t.Errorf("ExtractLinks called %d times, want 1", client.pairsCalls)
	}
	if client.htmlCalls != 0 {
		t.Errorf("FetchHTML called %d times, want 0 when the service answers", client.htmlCalls)
	}
	if out[0].URL != "https://a.cl/noticia/uno" {
		t.Errorf("out[0].URL = %q", out[0].URL)
	}
}

func TestCollectExtractRulesFallsBackToHTML(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{"https://a.cl": homepage("Titular desde el HTML crudo")},
	}
	c := NewCollector(client, render.Options{}, nil)

	src := testSource("medio-a", "https://a.cl", "")
	src.UseExtractRules = true

	out := c.Collect(context.Background(), []sources.Source{src}, "", 15)

	if len(out) != 1 {
		t.Fatalf("Collect() returned %d articles, want 1 via the HTML fallback", len(out))
	}
	if client.pairsCalls != 1 || client.htmlCalls != 1 {
		t.Errorf("calls = (pairs %d, html %d), want (1, 1)", client.pairsCalls, client.htmlCalls)
	}
}
