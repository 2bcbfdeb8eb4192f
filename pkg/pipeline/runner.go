package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/slngraph/pkg/cache"
	"github.com/matzehuels/slngraph/pkg/depgraph"
	"github.com/matzehuels/slngraph/pkg/errors"
	slnio "github.com/matzehuels/slngraph/pkg/io"
	"github.com/matzehuels/slngraph/pkg/observability"
	"github.com/matzehuels/slngraph/pkg/output"
	"github.com/matzehuels/slngraph/pkg/render/dot"
	"github.com/matzehuels/slngraph/pkg/scanner"
	"github.com/matzehuels/slngraph/pkg/solution"
)

// Runner executes pipeline runs with artifact caching.
//
// The Runner keeps no per-run state, so multiple goroutines can share one:
// concurrent runs targeting the same output file are serialized by the
// Writer and the last one to finish wins.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Writer *output.Writer
	Logger *log.Logger

	// Workers bounds concurrent project loads per scan.
	Workers int

	// TTL is how long rendered artifacts stay cached. Zero means
	// cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = quietLogger()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Writer:  output.NewWriter(0),
		Logger:  logger,
		Workers: 1,
	}
}

// Run scans the host's solution and writes its dependency graph.
func (r *Runner) Run(ctx context.Context, host solution.Host, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if host.Solution == nil {
		return nil, errors.New(errors.ErrCodeHostUnavailable, "no solution is open")
	}

	sc := scanner.New(host.Workspace, r.Logger)
	sc.Workers = r.Workers

	scanStart := time.Now()
	scan, err := sc.Scan(ctx, host.Solution)
	if err != nil {
		return nil, err
	}
	scanTime := time.Since(scanStart)

	if len(scan.Records) == 0 && len(scan.Failures) > 0 {
		return nil, errors.Wrap(errors.ErrCodeScanFailed, scan.Failures[0],
			"all %d projects of %s failed", len(scan.Failures), host.Solution.Name())
	}

	r.Logger.Info("scanned solution",
		"solution", host.Solution.Name(),
		"projects", len(scan.Records),
		"failed", len(scan.Failures),
		"duration", scanTime)

	res, err := r.render(ctx, scan, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.ScanTime = scanTime
	return res, nil
}

// RenderRecords renders previously collected records without scanning,
// for example records loaded from a saved report.
func (r *Runner) RenderRecords(ctx context.Context, records []scanner.ProjectRecord, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	return r.render(ctx, &scanner.Result{ID: uuid.New(), Records: records, Started: time.Now()}, opts)
}

func (r *Runner) render(ctx context.Context, scan *scanner.Result, opts Options) (*Result, error) {
	g, err := depgraph.Build(scan.Records)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "build graph")
	}

	res := &Result{
		ScanID:   scan.ID,
		Solution: scan.Solution,
		Records:  scan.Records,
		Failures: scan.Failures,
		Graph:    g,
		Outputs:  make(map[string]string, len(opts.Formats)),
		Stats: Stats{
			Projects: len(scan.Records),
			Failed:   len(scan.Failures),
			Vertices: g.VertexCount(),
			Edges:    g.EdgeCount(),
			Cyclic:   g.HasCycle(),
		},
	}
	if res.Stats.Cyclic {
		r.Logger.Warn("dependency graph contains a cycle")
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, opts.Formats, g.VertexCount(), g.EdgeCount())
	err = r.writeAll(ctx, res, scan, opts)
	res.Stats.RenderTime = time.Since(start)
	observability.Render().OnRenderComplete(ctx, opts.Formats, res.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("wrote dependency graph",
		"path", res.Outputs[FormatDOT],
		"vertices", res.Stats.Vertices,
		"edges", res.Stats.Edges,
		"duration", res.Stats.RenderTime)
	return res, nil
}

func (r *Runner) writeAll(ctx context.Context, res *Result, scan *scanner.Result, opts Options) error {
	res.DOT = dot.ToDOT(res.Graph, opts.DOTOptions())
	if err := r.write(ctx, opts, FormatDOT, []byte(res.DOT), res); err != nil {
		return err
	}

	dotHash := cache.Hash([]byte(res.DOT))
	images, hits := 0, 0
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatDOT:
			continue
		case FormatJSON:
			b, err := slnio.NewReport(scan, res.Graph).Marshal()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
			}
			data = b
		default:
			b, hit, err := r.artifact(ctx, res.DOT, dotHash, format)
			if err != nil {
				return err
			}
			images++
			if hit {
				hits++
			}
			data = b
		}
		if err := r.write(ctx, opts, format, data, res); err != nil {
			return err
		}
	}
	res.CacheInfo.RenderHit = images > 0 && hits == images
	return nil
}

func (r *Runner) write(ctx context.Context, opts Options, format string, data []byte, res *Result) error {
	path := opts.OutputPath(format)
	if err := r.Writer.Write(ctx, path, data); err != nil {
		return err
	}
	res.Outputs[format] = path
	r.Logger.Debug("wrote output", "format", format, "path", path, "bytes", len(data))
	return nil
}

// artifact renders an image format through the cache.
func (r *Runner) artifact(ctx context.Context, text, dotHash, format string) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(dotHash, cache.ArtifactKeyOpts{Format: format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		r.Logger.Debug("artifact cache hit", "format", format)
		return data, true, nil
	} else if err != nil {
		r.Logger.Warn("artifact cache read failed", "format", format, "err", err)
	}

	f, err := dot.ParseFormat(format)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeUnsupported, err, "render")
	}
	data, err := dot.Render(ctx, text, f)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, false, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
	}
	return data, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	if err := r.Cache.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return nil
}
