package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourcesFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeSourcesFile(t, "sources.yaml", `
sources:
  - name: medio-a
    url: https://a.cl
    region: norte
  - name: medio-b
    url: https://b.cl
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if len(reg.All()) != 2 {
		t.Fatalf("All() = %d entries, want 2", len(reg.All()))
	}

	srcs := reg.Sources()
	if len(srcs) != 1 {
		t.Fatalf("Sources() = %d enabled entries, want 1", len(srcs))
	}
	if srcs[0].Name != "medio-a" || srcs[0].Region != "norte" {
		t.Errorf("srcs[0] = %+v", srcs[0])
	}
	if len(srcs[0].LinkRules.Primary) == 0 {
		t.Error("default link rules were not resolved")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeSourcesFile(t, "sources.json",
		`{"sources":[{"name":"medio-a","url":"https://a.cl"}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if _, ok := reg.ByName("MEDIO-A"); !ok {
		t.Error("ByName() lookup should be case-insensitive")
	}
}

func TestLoadRegistryExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SOURCE_HOST", "https://env.cl")
	path := writeSourcesFile(t, "sources.yaml", `
sources:
  - name: medio-env
    url: ${TEST_SOURCE_HOST}
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	cfg, _ := reg.ByName("medio-env")
	if cfg.URL != "https://env.cl" {
		t.Errorf("cfg.URL = %q, env reference not expanded", cfg.URL)
	}
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "sources:\n  - url: https://a.cl\n"},
		{"missing url", "sources:\n  - name: medio-a\n"},
		{"non-http url", "sources:\n  - name: medio-a\n    url: ftp://a.cl\n"},
		{"duplicate names", "sources:\n  - name: medio-a\n    url: https://a.cl\n  - name: Medio-A\n    url: https://b.cl\n"},
		{"empty file", "sources: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSourcesFile(t, "sources.yaml", tt.content)
			if _, err := LoadRegistry(path); err == nil {
				t.Error("LoadRegistry() error = nil, want validation error")
			}
		})
	}
}

func TestResolveSourceOverrides(t *testing.T) {
	path := writeSourcesFile(t, "sources.yaml", `
sources:
  - name: medio-a
    url: https://a.cl
    max_links: 1
    use_extract_rules: true
    selectors:
      primary: [".portada a"]
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	src := reg.Sources()[0]
	if !src.UseExtractRules {
		t.Error("UseExtractRules not carried over")
	}
	if src.LinkRules.PrimaryCap != 1 || src.LinkRules.FallbackCap != 1 {
		t.Errorf("caps = (%d, %d), want (1, 1)", src.LinkRules.PrimaryCap, src.LinkRules.FallbackCap)
	}
	if len(src.LinkRules.Primary) != 1 || src.LinkRules.Primary[0] != ".portada a" {
		t.Errorf("Primary = %v, override not applied", src.LinkRules.Primary)
	}
	if len(src.LinkRules.Fallback) == 0 {
		t.Error("Fallback should keep the defaults when not overridden")
	}
}
