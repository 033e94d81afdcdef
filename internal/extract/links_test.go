package extract

import (
	"strings"
	"testing"

	"github.com/PulsoRadial/radar/internal/domain"
)

func TestLinksPrimaryPass(t *testing.T) {
	html := `
		<html><body>
			<article><h2><a href="/noticia/incendio-en-valparaiso">Incendio afecta a Valparaíso</a></h2></article>
			<article><h2><a href="/noticia/corte-de-agua">Corte de agua en la capital</a></h2></article>
			<div class="menu"><a href="/contacto">Contacto</a></div>
		</body></html>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 2 {
		t.Fatalf("Links() returned %d links, want 2", len(links))
	}
	if links[0].Href != "https://www.ejemplo.cl/noticia/incendio-en-valparaiso" {
		t.Errorf("links[0].Href = %q, relative href was not resolved", links[0].Href)
	}
	if links[0].Text != "Incendio afecta a Valparaíso" {
		t.Errorf("links[0].Text = %q", links[0].Text)
	}
}

func TestLinksSkipsEmptyPairs(t *testing.T) {
	html := `
		<html><body>
			<article><a href="/noticia/uno"></a></article>
			<article><a href="">Texto sin enlace</a></article>
			<article><a href="/noticia/dos">Noticia con texto válido</a></article>
		</body></html>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 1 {
		t.Fatalf("Links() returned %d links, want 1", len(links))
	}
	if !strings.HasSuffix(links[0].Href, "/noticia/dos") {
		t.Errorf("links[0].Href = %q, want the pair with both href and text", links[0].Href)
	}
}

func TestLinksFallbackAcceptsArticlePath(t *testing.T) {
	// The primary group does not match .card containers, so the fallback
	// pass must run and accept the pair via its /noticia/ href.
	html := `<div class="card"><a href="/noticia/123">Breaking: algo importante</a></div>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 1 {
		t.Fatalf("Links() returned %d links, want 1 from the fallback pass", len(links))
	}
	if links[0].Href != "https://www.ejemplo.cl/noticia/123" {
		t.Errorf("links[0].Href = %q", links[0].Href)
	}
}

func TestLinksFallbackRejectsExcluded(t *testing.T) {
	html := `
		<div class="card"><a href="javascript:void(0)">Noticia urgente de hoy mismo</a></div>
		<div class="card"><a href="/login">Urgente: inicie sesión para ver noticias</a></div>
		<div class="card"><a href="/suscripcion">Suscríbase a nuestras noticias urgentes</a></div>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 0 {
		t.Fatalf("Links() returned %d links, want 0: exclusions beat keyword matches", len(links))
	}
}

func TestLinksFallbackKeepsFragmentURLs(t *testing.T) {
	html := `
		<div class="card"><a href="/noticia/123#comentarios">Noticia urgente con comentarios</a></div>
		<div class="card"><a href="#">Noticia urgente sin destino real</a></div>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 1 {
		t.Fatalf("Links() returned %d links, want 1: only the fragment-only anchor is excluded", len(links))
	}
	if links[0].Href != "https://www.ejemplo.cl/noticia/123#comentarios" {
		t.Errorf("links[0].Href = %q, article URL with a fragment should survive", links[0].Href)
	}
}

func TestLinksFallbackAnchorLengthBounds(t *testing.T) {
	long := strings.Repeat("noticia ", 50)
	html := `
		<div class="card"><a href="/noticia/corta">urgente</a></div>
		<div class="card"><a href="/noticia/larga">` + long + `</a></div>
		<div class="card"><a href="/noticia/ok">Noticia urgente con largo razonable</a></div>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 1 {
		t.Fatalf("Links() returned %d links, want 1", len(links))
	}
	if !strings.HasSuffix(links[0].Href, "/noticia/ok") {
		t.Errorf("links[0].Href = %q, length bounds not applied", links[0].Href)
	}
}

func TestLinksFallbackAcceptsDatePath(t *testing.T) {
	html := `<div class="item"><a href="/2025/08/temporal-en-el-sur">Temporal deja daños en el sur</a></div>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 1 {
		t.Fatalf("Links() returned %d links, want 1 accepted via date path", len(links))
	}
}

func TestLinksPrimaryCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		b.WriteString(`<article><a href="/noticia/n` + string(rune('0'+i)) + `">Titular número `)
		b.WriteString(string(rune('0' + i)))
		b.WriteString("</a></article>")
	}
	b.WriteString("</body></html>")

	rules := DefaultLinkRules()
	links := Links(b.String(), "https://www.ejemplo.cl", rules)

	if len(links) != rules.PrimaryCap {
		t.Fatalf("Links() returned %d links, want primary cap %d", len(links), rules.PrimaryCap)
	}
}

func TestLinksDropsNonHTTPSchemes(t *testing.T) {
	html := `<article><a href="ftp://archivo.ejemplo.cl/nota">Archivo histórico de noticias</a></article>`

	links := Links(html, "https://www.ejemplo.cl", DefaultLinkRules())

	if len(links) != 0 {
		t.Fatalf("Links() returned %d links, want 0 for non-http schemes", len(links))
	}
}

func TestFromPairs(t *testing.T) {
	rules := DefaultLinkRules()
	pairs := []domain.CandidateLink{
		{Href: "/noticia/uno", Text: "Primer titular del día"},
		{Href: "", Text: "Sin enlace"},
		{Href: "/noticia/uno", Text: "Duplicado del primero"},
		{Href: "/noticia/dos", Text: "Segundo titular del día"},
		{Href: "/noticia/tres", Text: "Tercer titular del día"},
		{Href: "/noticia/cuatro", Text: "Cuarto, sobre el límite"},
	}

	links := FromPairs(pairs, "https://www.ejemplo.cl", rules)

	if len(links) != rules.PrimaryCap {
		t.Fatalf("FromPairs() returned %d links, want %d", len(links), rules.PrimaryCap)
	}
	if links[0].Href != "https://www.ejemplo.cl/noticia/uno" {
		t.Errorf("links[0].Href = %q", links[0].Href)
	}
	if links[0].Text != "Primer titular del día" {
		t.Errorf("links[0].Text = %q, first occurrence should win", links[0].Text)
	}
}
