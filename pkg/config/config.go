// Package config loads sleuth settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/codeGROOVE-dev/sleuth/pkg/websearch"
)

// Provider names.
const (
	SearchSerper = "serper"
	SearchBrave  = "brave"

	EnrichAuto   = ""
	EnrichGroq   = "groq"
	EnrichOllama = "ollama"
	EnrichNone   = "none"
)

// ProjectFile is read from the working directory and overrides the global
// file.
const ProjectFile = "sleuth.yaml"

// Config is the complete sleuth configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Search SearchConfig `mapstructure:"search"`
	Enrich EnrichConfig `mapstructure:"enrich"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Images ImageConfig  `mapstructure:"images"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig locates the local record stores.
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
	CSVDir     string `mapstructure:"csv_dir"`
	WatchCSV   bool   `mapstructure:"watch_csv"`
}

// SearchConfig selects the web search provider.
type SearchConfig struct {
	Provider  string `mapstructure:"provider"`
	SerperKey string `mapstructure:"serper_key"`
	BraveKey  string `mapstructure:"brave_key"`
	Count     int    `mapstructure:"count"`
}

// EnrichConfig selects the language model used for enrichment. An empty
// provider picks Groq when a key is set and disables enrichment otherwise.
type EnrichConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	GroqKey   string        `mapstructure:"groq_key"`
	OllamaURL string        `mapstructure:"ollama_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the provider response cache.
type CacheConfig struct {
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"`
	Disabled bool          `mapstructure:"disabled"`
}

// ImageConfig controls deep search image handling.
type ImageConfig struct {
	Dedupe bool `mapstructure:"dedupe"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			SQLitePath: filepath.Join(Dir(), "sleuth.db"),
			CSVDir:     "scripts",
			WatchCSV:   true,
		},
		Search: SearchConfig{Provider: SearchSerper, Count: websearch.SimpleCount},
		Enrich: EnrichConfig{Timeout: 25 * time.Second},
		Cache:  CacheConfig{TTL: 24 * time.Hour},
	}
}

// Dir returns the global sleuth directory, ~/.sleuth.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sleuth"
	}
	return filepath.Join(home, ".sleuth")
}

// Paths returns the config files Load reads, lowest precedence first.
func Paths() []string {
	return []string{filepath.Join(Dir(), "config.yaml"), ProjectFile}
}

// Load reads the global and project config files, then the environment.
// When explicit is set, only that file is read and it must exist.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return loadFrom([]string{explicit})
	}
	return loadFrom(Paths())
}

func loadFrom(paths []string) (*Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
	}

	v.SetEnvPrefix("SLEUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range conventionalEnv {
		if err := v.BindEnv(key, "SLEUTH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Search.BraveKey == "" {
		cfg.Search.BraveKey = websearch.LoadBraveAPIKey()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// conventionalEnv maps keys to the unprefixed variables other tools use.
var conventionalEnv = map[string]string{
	"search.serper_key": "SERPER_API_KEY",
	"search.brave_key":  "BRAVE_API_KEY",
	"enrich.groq_key":   "GROQ_API_KEY",
	"enrich.ollama_url": "OLLAMA_URL",
}

// setDefaults registers every key so environment variables reach Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("store.sqlite_path", cfg.Store.SQLitePath)
	v.SetDefault("store.csv_dir", cfg.Store.CSVDir)
	v.SetDefault("store.watch_csv", cfg.Store.WatchCSV)
	v.SetDefault("search.provider", cfg.Search.Provider)
	v.SetDefault("search.serper_key", cfg.Search.SerperKey)
	v.SetDefault("search.brave_key", cfg.Search.BraveKey)
	v.SetDefault("search.count", cfg.Search.Count)
	v.SetDefault("enrich.provider", cfg.Enrich.Provider)
	v.SetDefault("enrich.model", cfg.Enrich.Model)
	v.SetDefault("enrich.groq_key", cfg.Enrich.GroqKey)
	v.SetDefault("enrich.ollama_url", cfg.Enrich.OllamaURL)
	v.SetDefault("enrich.timeout", cfg.Enrich.Timeout)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.disabled", cfg.Cache.Disabled)
	v.SetDefault("images.dedupe", cfg.Images.Dedupe)
}

// Validate rejects unknown provider names and impossible values.
func (c *Config) Validate() error {
	c.Search.Provider = strings.ToLower(strings.TrimSpace(c.Search.Provider))
	c.Enrich.Provider = strings.ToLower(strings.TrimSpace(c.Enrich.Provider))

	switch c.Search.Provider {
	case SearchSerper, SearchBrave:
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	switch c.Enrich.Provider {
	case EnrichAuto, EnrichGroq, EnrichOllama, EnrichNone:
	default:
		return fmt.Errorf("unknown enrichment provider %q", c.Enrich.Provider)
	}
	if c.Search.Count <= 0 {
		return fmt.Errorf("search count must be positive, got %d", c.Search.Count)
	}
	return nil
}

// EnrichProvider resolves the automatic choice.
func (c *Config) EnrichProvider() string {
	if c.Enrich.Provider != EnrichAuto {
		return c.Enrich.Provider
	}
	if c.Enrich.GroqKey != "" {
		return EnrichGroq
	}
	return EnrichNone
}
