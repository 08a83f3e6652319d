package erpclean

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadBaseURLsYAML(t *testing.T) {
	path := writeFile(t, "urls.yaml", `
environments:
  - name: sandbox
    url: https://sandbox.internal/api
  - name: "2"
    url: http://localhost:9000/api
`)
	urls, err := LoadBaseURLs(path)
	if err != nil {
		t.Fatalf("LoadBaseURLs: %v", err)
	}
	if urls[Sandbox] != "https://sandbox.internal/api" {
		t.Fatalf("sandbox = %q", urls[Sandbox])
	}
	if urls[Local] != "http://localhost:9000/api" {
		t.Fatalf("local = %q", urls[Local])
	}
	if urls[Production] != DefaultBaseURLs()[Production] {
		t.Fatalf("production should keep its default, got %q", urls[Production])
	}
}

func TestLoadBaseURLsJSON(t *testing.T) {
	path := writeFile(t, "urls.json", `{"environments":[{"name":"dusk","url":"http://dusk.test/api"}]}`)
	urls, err := LoadBaseURLs(path)
	if err != nil {
		t.Fatalf("LoadBaseURLs: %v", err)
	}
	if urls[Dusk] != "http://dusk.test/api" {
		t.Fatalf("dusk = %q", urls[Dusk])
	}
}

func TestLoadBaseURLsRejectsBadFiles(t *testing.T) {
	cases := map[string]struct {
		name    string
		content string
		want    string
	}{
		"empty list":  {"a.yaml", "environments: []\n", "no environments"},
		"unknown env": {"b.yaml", "environments:\n  - name: staging\n    url: http://x\n", "environments[0]"},
		"missing url": {"c.yaml", "environments:\n  - name: sandbox\n", "url is required"},
		"duplicate":   {"d.yaml", "environments:\n  - name: sandbox\n    url: http://a\n  - name: \"3\"\n    url: http://b\n", "duplicate"},
		"bad json":    {"e.json", "{", "not recognized"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBaseURLs(writeFile(t, tc.name, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	if _, err := LoadBaseURLs(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadBaseURLs(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
