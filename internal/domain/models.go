package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Domain contains the core models shared by the discovery pipeline.

// summaryMaxRunes bounds the summary prefix taken from the article content.
const summaryMaxRunes = 300

// CandidateLink is an (href, anchor text) pair discovered on a source homepage.
// It is ephemeral: either promoted to an Article or rejected by the filters.
type CandidateLink struct {
	Href string
	Text string
}

// Article is the pipeline's output unit. URL is always absolute http(s);
// Content is collapsed-whitespace plain text once enrichment has run.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishDate time.Time `json:"publish_date"`
	Category    string    `json:"category"`
	Region      string    `json:"region,omitempty"`
	Author      string    `json:"author,omitempty"`
	Urgency     string    `json:"urgency"`
	Sentiment   string    `json:"sentiment"`
}

// NewArticleID returns a per-run identifier built from the current time and a
// random suffix. IDs are unique within a run but not stable across runs.
func NewArticleID(now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("art-%d", now.UnixNano())
	}
	return fmt.Sprintf("art-%d-%s", now.UnixNano(), hex.EncodeToString(buf[:]))
}

// Summarize returns a bounded prefix of content with an ellipsis marker when
// the content was truncated.
func Summarize(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= summaryMaxRunes {
		return content
	}
	return string(runes[:summaryMaxRunes]) + "..."
}

// SetContent updates the article content and derives the summary from it.
func (a *Article) SetContent(content string) {
	a.Content = content
	a.Summary = Summarize(content)
}
