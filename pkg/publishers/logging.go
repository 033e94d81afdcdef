// Package publishers fans pipeline output out to downstream sinks: cloud
// queues or generic HTTP endpoints, selected by a config file.
package publishers

import (
	"context"
	"time"

	"github.com/PulsoRadial/radar/internal/domain"
)

// Event is the payload delivered to each publisher after a pipeline run.
type Event struct {
	Source      string           `json:"source"`
	Region      string           `json:"region,omitempty"`
	Count       int              `json:"count"`
	Articles    []domain.Article `json:"articles"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// NewEvent builds an event for a batch of articles.
func NewEvent(source, region string, articles []domain.Article) Event {
	return Event{
		Source:      source,
		Region:      region,
		Count:       len(articles),
		Articles:    articles,
		GeneratedAt: time.Now().UTC(),
	}
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface publishers use, satisfied by the
// application's logger package.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

// nopLogger discards all entries.
type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger returns a usable logger even when none was provided.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
