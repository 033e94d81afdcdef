package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/PulsoRadial/radar/pkg/render"
	"github.com/PulsoRadial/radar/pkg/sources"
)

func newTestPipeline(client *fakeRender, bodies *fakeBodies) *Pipeline {
	collector := NewCollector(client, render.Options{}, nil)
	enricher := NewEnricher(bodies, 0, nil)
	return NewPipeline(collector, enricher, nil)
}

func TestPipelineRunShapeIsIdempotent(t *testing.T) {
	client := &fakeRender{
		htmls: map[string]string{
			"https://a.cl": homepage("Primer titular del día", "Segundo titular del día"),
		},
	}
	bodies := &fakeBodies{content: map[string]string{
		"https://a.cl/noticia/a": "Cuerpo de la primera noticia con suficiente texto para ser útil.",
		"https://a.cl/noticia/b": "Cuerpo de la segunda noticia con suficiente texto para ser útil.",
	}}
	p := newTestPipeline(client, bodies)
	srcs := []sources.Source{testSource("medio-a", "https://a.cl", "")}

	first := p.Run(context.Background(), srcs, Params{})
	second := p.Run(context.Background(), srcs, Params{})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Run() returned %d then %d articles, want 2 and 2", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title {
			t.Errorf("titles differ across runs: %q vs %q", first[i].Title, second[i].Title)
		}
		if first[i].URL != second[i].URL {
			t.Errorf("urls differ across runs: %q vs %q", first[i].URL, second[i].URL)
		}
		if first[i].Content != second[i].Content {
			t.Errorf("contents differ across runs: %q vs %q", first[i].Content, second[i].Content)
		}
	}
}

func TestPipelineRunNeverFails(t *testing.T) {
	client := &fakeRender{
		errs: map[string]error{
			"https://a.cl": &render.NetworkError{Err: errors.New("dns failure")},
		},
	}
	p := newTestPipeline(client, &fakeBodies{})

	out := p.Run(context.Background(), []sources.Source{testSource("medio-a", "https://a.cl", "")}, Params{})

	if out == nil {
		t.Log("empty result is returned as an empty slice or nil; both are valid empty outcomes")
	}
	if len(out) != 0 {
		t.Fatalf("Run() returned %d articles from a failing source, want 0", len(out))
	}
}

func TestPipelineRunDefaultsGlobalCap(t *testing.T) {
	titles := make([]string, 0, 6)
	for _, s := range []string{"uno", "dos", "tres", "cuatro", "cinco", "seis"} {
		titles = append(titles, "Titular número "+s+" del día")
	}
	client := &fakeRender{
		htmls: map[string]string{"https://a.cl": homepage(titles...)},
	}
	p := newTestPipeline(client, &fakeBodies{})

	src := testSource("medio-a", "https://a.cl", "")
	src.LinkRules.PrimaryCap = 50

	out := p.Run(context.Background(), []sources.Source{src}, Params{MaxResults: 4})

	if len(out) != 4 {
		t.Fatalf("Run() returned %d articles, want MaxResults 4", len(out))
	}
}
