// Package extract discovers article links on source homepages and pulls the
// main body text out of article pages. All selector and keyword heuristics
// are plain data injected into the extractors so sources can override them.
package extract

import "regexp"

// LinkRules drives link discovery on a source homepage. Primary is a broad,
// hand-tuned union of article-like selectors tried first; Fallback is a
// looser group that only applies together with the keyword and exclusion
// filters when the primary pass comes up empty.
type LinkRules struct {
	Primary  []string
	Fallback []string

	// Keywords accept a fallback pair when the anchor text or href contains
	// any of them.
	Keywords []string

	// ArticlePaths accept a fallback pair when the href contains any of them.
	ArticlePaths []string

	// Exclusions reject a pair regardless of any keyword match.
	Exclusions []string

	// Anchor text length bounds applied on the fallback pass.
	MinAnchorLen int
	MaxAnchorLen int

	// Per-source result caps for each pass.
	PrimaryCap  int
	FallbackCap int
}

// datePathPattern matches date-style URL paths such as /2025/08/ or /2025/.
var datePathPattern = regexp.MustCompile(`/20\d{2}(/\d{1,2})?/`)

// DefaultLinkRules returns the built-in link discovery heuristics, tuned for
// Chilean and general Spanish-language news sites.
func DefaultLinkRules() LinkRules {
	return LinkRules{
		Primary: []string{
			"article h1 a",
			"article h2 a",
			"article h3 a",
			"article a",
			".article-title a",
			".story-title a",
			".headline a",
			".titular a",
			".nota-titulo a",
			".post-title a",
			".entry-title a",
			"h1.title a",
			"h2.title a",
			"main a[href*='/noticia/']",
			"main a[href*='/noticias/']",
			"section a[href*='/noticia/']",
			"main a[href*='/nacional/']",
			"main a[href*='/pais/']",
			"main a[href*='/2024/']",
			"main a[href*='/2025/']",
			"main a[href*='/2026/']",
		},
		Fallback: []string{
			".news a",
			".item a",
			".card a",
			".nota a",
			".destacado a",
			"li a",
			"h2 a",
			"h3 a",
		},
		Keywords: []string{
			"noticia",
			"breaking",
			"urgente",
			"última hora",
			"ultima hora",
			"nacional",
			"internacional",
			"política",
			"politica",
			"economía",
			"economia",
			"deportes",
			"policial",
			"región",
			"region",
		},
		ArticlePaths: []string{
			"/noticia/",
			"/noticias/",
			"/news/",
			"/articulo/",
			"/nota/",
			"/nacional/",
			"/pais/",
		},
		Exclusions: []string{
			"javascript:",
			"mailto:",
			"tel:",
			"#",
			"login",
			"registro",
			"suscr",
			"subscribe",
			"newsletter",
			"privacidad",
			"terminos",
			"cookies",
			"publicidad",
			"contacto",
		},
		MinAnchorLen: 10,
		MaxAnchorLen: 300,
		PrimaryCap:   3,
		FallbackCap:  2,
	}
}

// BodyRules drives body extraction on a single article page. Remove lists
// selectors for boilerplate subtrees stripped before any content selector
// runs; Content is the ordered cascade tried until one selector yields text.
type BodyRules struct {
	Remove  []string
	Content []string

	// MinElementLen rejects individual element texts shorter than this.
	MinElementLen int

	// MinContentLen is the usable-content threshold below which extraction
	// falls back to the full page text.
	MinContentLen int

	// MaxElements bounds how many matching elements a selector contributes.
	MaxElements int
}

// imageFilePattern spots element texts that are really image file names.
var imageFilePattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg)\b`)

// adTextPattern spots logo, banner and advertisement placeholder texts.
var adTextPattern = regexp.MustCompile(`(?i)\b(logo|banner|publicidad|advertisement|sponsored|anuncio)\b`)

// DefaultBodyRules returns the built-in body extraction heuristics.
func DefaultBodyRules() BodyRules {
	return BodyRules{
		Remove: []string{
			"script",
			"style",
			"noscript",
			"iframe",
			"img",
			"figure",
			"figcaption",
			"picture",
			"video",
			"nav",
			"header",
			"footer",
			"aside",
			"form",
			".ad",
			".ads",
			".advertisement",
			".publicidad",
			".banner",
			".share",
			".compartir",
			".social",
			".related",
			".relacionadas",
			".recommended",
			".tags",
			".etiquetas",
			".breadcrumb",
			".breadcrumbs",
			".comments",
			".comentarios",
			".newsletter",
		},
		Content: []string{
			".article-body p",
			".article-content p",
			".cuerpo-noticia p",
			".nota-contenido p",
			".post-content p",
			".entry-content p",
			".story-body p",
			".texto-noticia p",
			"article p",
			"main p",
			".content p",
			"p",
		},
		MinElementLen: 20,
		MinContentLen: 50,
		MaxElements:   5,
	}
}
