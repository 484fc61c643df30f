package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at an empty directory and clears provider variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"SERPER_API_KEY", "BRAVE_API_KEY", "GROQ_API_KEY", "OLLAMA_URL", "SLEUTH_SERVER_ADDR", "SLEUTH_SEARCH_PROVIDER"} {
		t.Setenv(k, "")
	}
	return home
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	home := isolate(t)

	cfg, err := loadFrom(nil)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if want := filepath.Join(home, ".sleuth", "sleuth.db"); cfg.Store.SQLitePath != want {
		t.Errorf("sqlite path = %q, want %q", cfg.Store.SQLitePath, want)
	}
	if cfg.Search.Provider != SearchSerper || cfg.Search.Count != 20 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Enrich.Timeout != 25*time.Second {
		t.Errorf("enrich timeout = %v", cfg.Enrich.Timeout)
	}
	if got := cfg.EnrichProvider(); got != EnrichNone {
		t.Errorf("EnrichProvider = %q, want none without a key", got)
	}
}

func TestProjectOverridesGlobal(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	global := write(t, filepath.Join(dir, "global.yaml"), `
server:
  addr: ":9000"
search:
  provider: brave
  count: 30
cache:
  ttl: 2h
`)
	project := write(t, filepath.Join(dir, "project.yaml"), `
search:
  count: 40
enrich:
  provider: ollama
  timeout: 5s
images:
  dedupe: true
`)

	cfg, err := loadFrom([]string{global, project, filepath.Join(dir, "missing.yaml")})
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q, want the global value", cfg.Server.Addr)
	}
	if cfg.Search.Provider != SearchBrave || cfg.Search.Count != 40 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Enrich.Provider != EnrichOllama || cfg.Enrich.Timeout != 5*time.Second {
		t.Errorf("enrich = %+v", cfg.Enrich)
	}
	if !cfg.Images.Dedupe {
		t.Error("images.dedupe not applied")
	}
	if !cfg.Store.WatchCSV {
		t.Error("unset keys should keep their defaults")
	}
}

func TestEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("SLEUTH_SERVER_ADDR", "127.0.0.1:7000")

	path := write(t, filepath.Join(t.TempDir(), "c.yaml"), "search:\n  serper_key: from-file\n")
	cfg, err := loadFrom([]string{path})
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Search.SerperKey != "serper-key" {
		t.Errorf("serper key = %q, want the environment value", cfg.Search.SerperKey)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if got := cfg.EnrichProvider(); got != EnrichGroq {
		t.Errorf("EnrichProvider = %q, want groq", got)
	}
}

func TestBraveKeyFile(t *testing.T) {
	home := isolate(t)
	write(t, filepath.Join(home, ".brave"), "file-key\n")

	cfg, err := loadFrom(nil)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Search.BraveKey != "file-key" {
		t.Errorf("brave key = %q", cfg.Search.BraveKey)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"ok", func(*Config) {}, ""},
		{"search provider case", func(c *Config) { c.Search.Provider = " Brave " }, ""},
		{"bad search provider", func(c *Config) { c.Search.Provider = "bing" }, "search provider"},
		{"bad enrich provider", func(c *Config) { c.Enrich.Provider = "gpt" }, "enrichment provider"},
		{"zero count", func(c *Config) { c.Search.Count = 0 }, "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate error = %v, want it to mention %q", err, tt.errSub)
			}
		})
	}
}
