package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "SLNGRAPH_"

// flagKeys maps CLI flag names onto config keys. Flags not listed here
// (verbose, config) are not configuration.
var flagKeys = map[string]string{
	"output":    "output",
	"format":    "formats",
	"workers":   "workers",
	"rankdir":   "rankdir",
	"detailed":  "detailed",
	"styled":    "styled",
	"no-cache":  "no_cache",
	"cache-dir": "cache.dir",
	"redis-url": "cache.redis_url",
	"cache-ttl": "cache.ttl",
	"addr":      "serve.addr",
}

// sections are the nested config tables; env names under them keep one
// level of nesting (SLNGRAPH_CACHE_REDIS_URL -> cache.redis_url).
var sections = []string{"cache", "serve"}

// findConfigFile picks the config file to use.
// Priority: explicit path > slngraph.yaml > slngraph.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{AppName + ".yaml", AppName + ".yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey transforms SLNGRAPH_CACHE_REDIS_URL into cache.redis_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(key, sec+"_"); ok {
			return sec + "." + rest
		}
	}
	return key
}

// Load merges defaults, the config file, the environment and the flags
// that were explicitly set. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Formats = splitFormats(cfg.Formats)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// splitFormats accepts both list and comma-separated forms
// ("svg,json" from an env var arrives as a single element).
func splitFormats(in []string) []string {
	var out []string
	for _, f := range in {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
