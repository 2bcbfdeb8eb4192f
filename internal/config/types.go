// Package config loads slngraph settings.
//
// Precedence (highest to lowest): explicitly set flags, SLNGRAPH_*
// environment variables, slngraph.yaml, built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/matzehuels/slngraph/pkg/cache"
	"github.com/matzehuels/slngraph/pkg/pipeline"
	"github.com/matzehuels/slngraph/pkg/render/dot"
)

// AppName names the config file, env prefix and cache directory.
const AppName = "slngraph"

// DefaultServeAddr is where "serve" listens unless configured.
const DefaultServeAddr = "127.0.0.1:8765"

// Config is the merged configuration.
type Config struct {
	Output   string   `koanf:"output"`
	Formats  []string `koanf:"formats"`
	Workers  int      `koanf:"workers"`
	RankDir  string   `koanf:"rankdir"`
	Detailed bool     `koanf:"detailed"`
	Styled   bool     `koanf:"styled"`
	NoCache  bool     `koanf:"no_cache"`

	Cache CacheConfig `koanf:"cache"`
	Serve ServeConfig `koanf:"serve"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Dir string `koanf:"dir"`
	// RedisURL switches the cache to Redis when set.
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl"`
}

// ServeConfig configures the HTTP display surface.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// defaults returns the lowest-precedence layer.
func defaults() map[string]any {
	return map[string]any{
		"output":          pipeline.DefaultOutputPath(),
		"formats":         []string{pipeline.FormatDOT},
		"workers":         runtime.GOMAXPROCS(0),
		"rankdir":         string(dot.RankTB),
		"detailed":        false,
		"styled":          false,
		"no_cache":        false,
		"cache.dir":       DefaultCacheDir(),
		"cache.redis_url": "",
		"cache.ttl":       cache.TTLArtifact.String(),
		"serve.addr":      DefaultServeAddr,
	}
}

// DefaultCacheDir returns the XDG cache directory (~/.cache/slngraph).
// An empty string means no home directory could be determined.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	if _, err := dot.ParseRankDir(c.RankDir); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr cannot be empty")
	}
	return nil
}

// PipelineOptions maps the configuration onto a pipeline run.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Output:   c.Output,
		Formats:  append([]string(nil), c.Formats...),
		RankDir:  c.RankDir,
		Detailed: c.Detailed,
		Styled:   c.Styled,
	}
}
