// Package render wraps the third-party page rendering service used to fetch
// origin pages. The service fetches (and optionally JS-renders) a target URL
// on our behalf and returns either raw HTML or, in extract-rules mode, a
// pre-structured JSON document of link pairs.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PulsoRadial/radar/internal/domain"
	"github.com/PulsoRadial/radar/internal/logger"
	"github.com/PulsoRadial/radar/pkg/httpclient"
)

const (
	// DefaultEndpoint is the rendering service API root.
	DefaultEndpoint = "https://app.scrapingbee.com/api/v1/"

	defaultTimeout = 45 * time.Second

	maxErrorSnippet = 512
)

// InvalidURLError reports a target URL rejected before any network call.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid target url %q", e.URL)
}

// UpstreamError reports a non-2xx response from the rendering service.
type UpstreamError struct {
	StatusCode int
	Snippet    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("rendering service returned status %d body: %s", e.StatusCode, e.Snippet)
}

// NetworkError reports a transport-level failure (timeout, DNS, reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("rendering service request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Options controls how the rendering service fetches a target page.
type Options struct {
	RenderJS       bool
	BlockResources bool
	PremiumProxy   bool
	CountryCode    string

	// Headers are forwarded to the origin through the rendering service.
	Headers map[string]string
}

// Config holds the rendering service credentials and endpoint.
type Config struct {
	APIKey   string
	Endpoint string
}

// Client calls the rendering service. It performs exactly one outbound call
// per invocation: no retries and no caching.
type Client struct {
	cfg  Config
	http httpclient.Client
	log  logger.Logger
}

// NewClient builds a rendering service client.
func NewClient(cfg Config, http httpclient.Client, log logger.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if http == nil {
		http = httpclient.NewRestyClient(defaultTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{cfg: cfg, http: http, log: log}
}

// FetchHTML fetches the rendered HTML of the target URL.
func (c *Client) FetchHTML(ctx context.Context, target string, opts Options) (string, error) {
	body, err := c.call(ctx, target, opts, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// linkRulesPayload is the extract-rules document sent to the rendering
// service: one list rule that yields (enlace, texto) pairs per anchor.
type linkRulesPayload struct {
	Noticias struct {
		Selector string `json:"selector"`
		Type     string `json:"type"`
		Output   struct {
			Enlace struct {
				Selector string `json:"selector"`
				Output   string `json:"output"`
			} `json:"enlace"`
			Texto string `json:"texto"`
		} `json:"output"`
	} `json:"noticias"`
}

// linkRulesResult mirrors the service response for the link extraction rule.
type linkRulesResult struct {
	Noticias []struct {
		Enlace string `json:"enlace"`
		Texto  string `json:"texto"`
	} `json:"noticias"`
}

// ExtractLinks asks the rendering service itself to apply the given link
// selector and returns the structured pairs it found. An empty result is not
// an error; callers fall back to client-side parsing.
func (c *Client) ExtractLinks(ctx context.Context, target, selector string, opts Options) ([]domain.CandidateLink, error) {
	var payload linkRulesPayload
	payload.Noticias.Selector = selector
	payload.Noticias.Type = "list"
	payload.Noticias.Output.Enlace.Selector = "a"
	payload.Noticias.Output.Enlace.Output = "@href"
	payload.Noticias.Output.Texto = "a"

	rules, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal extract rules: %w", err)
	}

	body, err := c.call(ctx, target, opts, string(rules))
	if err != nil {
		return nil, err
	}

	var result linkRulesResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode extract rules response: %w", err)
	}

	links := make([]domain.CandidateLink, 0, len(result.Noticias))
	for _, pair := range result.Noticias {
		links = append(links, domain.CandidateLink{
			Href: strings.TrimSpace(pair.Enlace),
			Text: strings.TrimSpace(pair.Texto),
		})
	}
	return links, nil
}

// call validates the target, builds the service URL and performs the request.
func (c *Client) call(ctx context.Context, target string, opts Options, extractRules string) ([]byte, error) {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "http") {
		return nil, &InvalidURLError{URL: target}
	}

	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("url", target)
	params.Set("render_js", strconv.FormatBool(opts.RenderJS))
	params.Set("block_resources", strconv.FormatBool(opts.BlockResources))
	if opts.PremiumProxy {
		params.Set("premium_proxy", "true")
	}
	if opts.CountryCode != "" {
		params.Set("country_code", opts.CountryCode)
	}
	if extractRules != "" {
		params.Set("extract_rules", extractRules)
	}

	// The service forwards Spb-prefixed headers to the origin.
	var headers map[string]string
	if len(opts.Headers) > 0 {
		params.Set("forward_headers", "true")
		headers = make(map[string]string, len(opts.Headers))
		for k, v := range opts.Headers {
			headers["Spb-"+k] = v
		}
	}

	c.log.DebugObj("calling rendering service", "render_fetch", map[string]any{
		"url":       target,
		"render_js": opts.RenderJS,
	})

	resp, err := c.http.Get(ctx, c.cfg.Endpoint+"?"+params.Encode(), headers)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode(),
			Snippet:    responseSnippet(resp.Body()),
		}
	}

	return resp.Body(), nil
}

// responseSnippet returns a truncated snippet of the response body for error
// messages.
func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
