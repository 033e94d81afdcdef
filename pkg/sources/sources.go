// Package sources loads the configured news origins and their discovery
// settings from a YAML or JSON file.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/PulsoRadial/radar/internal/extract"
)

// RegionAll is the region filter sentinel that disables filtering.
const RegionAll = "all"

// configFile represents the structure of the sources configuration file.
type configFile struct {
	Sources []SourceConfig `json:"sources" yaml:"sources"`
}

// SourceConfig is a single source entry as declared in the config file.
type SourceConfig struct {
	Name            string             `json:"name" yaml:"name"`
	URL             string             `json:"url" yaml:"url"`
	Region          string             `json:"region" yaml:"region"`
	Enabled         *bool              `json:"enabled" yaml:"enabled"`
	Headers         map[string]string  `json:"headers" yaml:"headers"`
	UseExtractRules bool               `json:"use_extract_rules" yaml:"use_extract_rules"`
	MaxLinks        int                `json:"max_links" yaml:"max_links"`
	Selectors       *SelectorOverrides `json:"selectors" yaml:"selectors"`
}

// SelectorOverrides replaces the built-in selector groups for one source.
type SelectorOverrides struct {
	Primary  []string `json:"primary" yaml:"primary"`
	Fallback []string `json:"fallback" yaml:"fallback"`
}

// Source is a validated source with its discovery rules resolved against the
// built-in defaults, ready for the crawler.
type Source struct {
	Name            string
	URL             string
	Region          string
	Headers         map[string]string
	UseExtractRules bool
	LinkRules       extract.LinkRules
}

// Registry holds the sources loaded from a config file.
type Registry struct {
	mu      sync.RWMutex
	sources []SourceConfig
	idx     map[string]SourceConfig
}

// LoadRegistry loads the source registry from a YAML/JSON file. Environment
// variable references in the file are expanded before parsing.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	fileReg, err := parseRegistry(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{
		sources: make([]SourceConfig, len(fileReg.Sources)),
		idx:     make(map[string]SourceConfig, len(fileReg.Sources)),
	}

	for i := range fileReg.Sources {
		cfg := sanitizeSourceConfig(fileReg.Sources[i])
		if err := validateSourceConfig(cfg); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		key := strings.ToLower(cfg.Name)
		if _, exists := reg.idx[key]; exists {
			return nil, fmt.Errorf("duplicate source name %q", cfg.Name)
		}
		reg.sources[i] = cfg
		reg.idx[key] = cfg
	}

	return reg, nil
}

// parseRegistry attempts to decode the sources file content.
func parseRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		ext string
		fn  func([]byte, any) error
	}{
		{ext: ".yaml", fn: yaml.Unmarshal},
		{ext: ".yml", fn: yaml.Unmarshal},
		{ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

// sanitizeSourceConfig trims and normalizes a source entry.
func sanitizeSourceConfig(cfg SourceConfig) SourceConfig {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Region = strings.ToLower(strings.TrimSpace(cfg.Region))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}

	if len(cfg.Headers) > 0 {
		headers := make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			key := strings.TrimSpace(k)
			val := strings.TrimSpace(v)
			if key == "" || val == "" {
				continue
			}
			headers[key] = val
		}
		if len(headers) == 0 {
			headers = nil
		}
		cfg.Headers = headers
	}

	return cfg
}

// validateSourceConfig checks that required fields are present.
func validateSourceConfig(cfg SourceConfig) error {
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	if cfg.URL == "" {
		return fmt.Errorf("url is required for source %q", cfg.Name)
	}
	if !strings.HasPrefix(cfg.URL, "http") {
		return fmt.Errorf("url must be http(s) for source %q", cfg.Name)
	}
	if cfg.MaxLinks < 0 {
		return fmt.Errorf("max_links must be non-negative for source %q", cfg.Name)
	}
	return nil
}

// ByName returns the source config by name (case-insensitive).
func (r *Registry) ByName(name string) (SourceConfig, bool) {
	if r == nil {
		return SourceConfig{}, false
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SourceConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[name]
	return cfg, ok
}

// All returns all configured sources.
func (r *Registry) All() []SourceConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceConfig, len(r.sources))
	copy(out, r.sources)
	return out
}

// Sources returns the enabled sources with their discovery rules resolved
// against the built-in defaults, preserving file order.
func (r *Registry) Sources() []Source {
	all := r.All()
	out := make([]Source, 0, len(all))
	for _, cfg := range all {
		if cfg.Enabled != nil && !*cfg.Enabled {
			continue
		}
		out = append(out, resolveSource(cfg))
	}
	return out
}

// resolveSource merges a source entry with the default discovery rules.
func resolveSource(cfg SourceConfig) Source {
	rules := extract.DefaultLinkRules()
	if cfg.Selectors != nil {
		if len(cfg.Selectors.Primary) > 0 {
			rules.Primary = cfg.Selectors.Primary
		}
		if len(cfg.Selectors.Fallback) > 0 {
			rules.Fallback = cfg.Selectors.Fallback
		}
	}
	if cfg.MaxLinks > 0 {
		rules.PrimaryCap = cfg.MaxLinks
		if rules.FallbackCap > cfg.MaxLinks {
			rules.FallbackCap = cfg.MaxLinks
		}
	}

	return Source{
		Name:            cfg.Name,
		URL:             cfg.URL,
		Region:          cfg.Region,
		Headers:         cfg.Headers,
		UseExtractRules: cfg.UseExtractRules,
		LinkRules:       rules,
	}
}
