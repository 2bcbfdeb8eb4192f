package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/cache"
	"github.com/matzehuels/slngraph/pkg/pipeline"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("output", "o", "", "")
	fs.StringSliceP("format", "f", nil, "")
	fs.Int("workers", 0, "")
	fs.String("rankdir", "", "")
	fs.Bool("detailed", false, "")
	fs.Bool("no-cache", false, "")
	fs.String("redis-url", "", "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, pipeline.DefaultOutputPath(), cfg.Output)
	assert.Equal(t, []string{"dot"}, cfg.Formats)
	assert.Equal(t, "TB", cfg.RankDir)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, cache.TTLArtifact, cfg.Cache.TTL)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slngraph.yaml"), []byte(`
output: from-file.dot
workers: 2
rankdir: LR
formats: [dot, svg]
cache:
  ttl: 1h
  redis_url: redis://file:6379/0
serve:
  addr: ":9000"
`), 0o644))

	t.Setenv("SLNGRAPH_WORKERS", "3")
	t.Setenv("SLNGRAPH_CACHE_REDIS_URL", "redis://env:6379/0")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--workers", "5", "-v"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "slngraph.yaml", cfg.File)
	assert.Equal(t, "from-file.dot", cfg.Output, "file overrides default")
	assert.Equal(t, "LR", cfg.RankDir)
	assert.Equal(t, []string{"dot", "svg"}, cfg.Formats)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, "redis://env:6379/0", cfg.Cache.RedisURL, "env overrides file")
	assert.Equal(t, 5, cfg.Workers, "flag overrides env")
}

func TestLoadUnsetFlagsDoNotOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SLNGRAPH_OUTPUT", "env.dot")

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "env.dot", cfg.Output)
	assert.False(t, cfg.NoCache)
}

func TestLoadEnvFormatsList(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SLNGRAPH_FORMATS", "svg, JSON")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"svg", "json"}, cfg.Formats)
}

func TestLoadExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detailed: true\nstyled: true\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Detailed)
	assert.True(t, cfg.Styled)
	assert.Equal(t, path, cfg.File)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad format", "formats: [gif]\n"},
		{"bad rankdir", "rankdir: diagonal\n"},
		{"zero workers", "workers: 0\n"},
		{"negative ttl", "cache:\n  ttl: -1h\n"},
		{"malformed", "output: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			require.NoError(t, os.WriteFile("slngraph.yaml", []byte(tt.yaml), 0o644))
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load("does-not-exist.yaml", nil)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "cache.redis_url", envKey("SLNGRAPH_CACHE_REDIS_URL"))
	assert.Equal(t, "serve.addr", envKey("SLNGRAPH_SERVE_ADDR"))
	assert.Equal(t, "no_cache", envKey("SLNGRAPH_NO_CACHE"))
	assert.Equal(t, "workers", envKey("SLNGRAPH_WORKERS"))
}

func TestPipelineOptions(t *testing.T) {
	cfg := &Config{Output: "g.dot", Formats: []string{"svg"}, RankDir: "LR", Detailed: true}
	opts := cfg.PipelineOptions()
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, []string{"dot", "svg"}, opts.Formats)
	assert.Equal(t, "g.dot", opts.Output)
	assert.Equal(t, []string{"svg"}, cfg.Formats, "config slice not aliased")
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultCacheDir())
}
