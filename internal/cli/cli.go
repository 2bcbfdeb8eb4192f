// Package cli implements the slngraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/slngraph/internal/config"
	"github.com/matzehuels/slngraph/pkg/buildinfo"
	"github.com/matzehuels/slngraph/pkg/cache"
	"github.com/matzehuels/slngraph/pkg/hosts"
	"github.com/matzehuels/slngraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisKeyPrefix scopes slngraph keys in a shared Redis instance.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfgFile string
	verbose bool
	out     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "slngraph draws the project dependency graph of a solution",
		Long: `slngraph scans every project of a solution (Visual Studio .sln/.slnx,
go.work/go.mod or Cargo.toml), collects the dependencies each project
declares and writes the resulting graph as a Graphviz DOT file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
				registerLogHooks(c.Logger)
			}
			c.SetLogLevel(level)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (default ./slngraph.yaml)")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges the config layers with the flags of cmd.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cache.Instrument(store), keyer, c.Logger)
	r.Workers = cfg.Workers
	r.TTL = cfg.Cache.TTL
	return r, nil
}

// newCache picks the artifact cache backend. An unreachable Redis falls
// back to the file cache with a warning.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, cache.Keyer, error) {
	if cfg.NoCache {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisKeyPrefix)
		if err == nil {
			return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	if cfg.Cache.Dir == "" {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return fc, nil, nil
}

// newOpener creates the solution opener shared by rescans.
func (c *CLI) newOpener() (*hosts.Opener, error) {
	return hosts.NewOpener(c.Logger, 0)
}

// =============================================================================
// Flags
// =============================================================================

// addGraphFlags registers the flags shared by commands that write a graph.
// Defaults are left to the config layer; only flags that are set override it.
func addGraphFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "", "DOT output file (default $TMPDIR/dependencyGraph.dot)")
	fs.StringSliceP("format", "f", nil, "extra output format(s): svg, png, json (comma-separated)")
	fs.String("rankdir", "", "graph direction: TB (default), LR, BT, RL")
	fs.Bool("detailed", false, "add project path and type count to labels")
	fs.Bool("styled", false, "draw projects as boxes and dependencies as ellipses")
	fs.Bool("no-cache", false, "disable the artifact cache")
	fs.String("cache-dir", "", "artifact cache directory")
	fs.String("redis-url", "", "use Redis as artifact cache (redis://host:port/db)")
	fs.Duration("cache-ttl", 0, "artifact cache TTL")
}

// addScanFlags registers graph flags plus scanner tuning.
func addScanFlags(fs *pflag.FlagSet) {
	addGraphFlags(fs)
	fs.IntP("workers", "w", 0, "projects loaded concurrently (default GOMAXPROCS)")
}
