package cli

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slngraph/internal/config"
	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the HTTP display command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <solution>",
		Short: "Serve the dependency graph over HTTP",
		Long: `Scan the solution and serve the rendered graph in the browser.

Routes:
  GET  /             page embedding the graph
  GET  /graph.svg    rendered graph
  GET  /graph.dot    graph description
  GET  /report.json  scan report
  POST /rescan       scan again (a scan still running is cancelled)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), args[0], cfg)
		},
	}

	addScanFlags(cmd.Flags())
	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultServeAddr+")")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, cfg *config.Config) error {
	opener, err := c.newOpener()
	if err != nil {
		return err
	}
	if _, _, err := opener.Open(path); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := cfg.PipelineOptions()
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatJSON} {
		if !slices.Contains(opts.Formats, f) {
			opts.Formats = append(opts.Formats, f)
		}
	}
	scan := func(ctx context.Context) (*pipeline.Result, error) {
		host, _, err := opener.Open(path)
		if err != nil {
			return nil, err
		}
		return runner.Run(ctx, host, opts)
	}

	srv := newGraphServer(ctx, path, scan, c.Logger)
	srv.trigger()

	return serveHTTP(ctx, cfg.Serve.Addr, srv.routes(), c.Logger)
}

// serveHTTP runs handler on addr until ctx is done, then shuts down
// gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "listen on %s", addr)
	}
	printSuccess("Serving on %s", StyleLink.Render("http://"+ln.Addr().String()))

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// =============================================================================
// graphServer - display surface state
// =============================================================================

// graphServer holds the latest scan result. Rescans cancel the scan in
// flight; only the most recently started one is published.
type graphServer struct {
	parent   context.Context
	solution string
	scan     scanFunc
	logger   *log.Logger

	mu       sync.RWMutex
	gen      int
	cancel   context.CancelFunc
	scanning bool
	res      *pipeline.Result
	err      error
}

func newGraphServer(ctx context.Context, solution string, scan scanFunc, logger *log.Logger) *graphServer {
	return &graphServer{parent: ctx, solution: solution, scan: scan, logger: logger}
}

// trigger starts a scan and returns a channel closed once it finished.
func (s *graphServer) trigger() <-chan struct{} {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.scanning = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		res, err := s.scan(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			s.logger.Debug("dropping superseded scan", "scan", gen)
			return
		}
		s.scanning = false
		if err != nil && ctx.Err() != nil {
			return
		}
		s.res, s.err = res, err
		if err != nil {
			s.logger.Error("scan failed", "err", err)
		}
	}()
	return done
}

func (s *graphServer) snapshot() (res *pipeline.Result, scanning bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res, s.scanning, s.err
}

func (s *graphServer) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		requestLogger(s.logger),
	)

	r.Get("/", s.handleIndex)
	r.Get("/graph.svg", s.handleOutput(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/graph.dot", s.handleOutput(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
	r.Get("/report.json", s.handleOutput(pipeline.FormatJSON, "application/json"))
	r.Post("/rescan", s.handleRescan)
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http", "method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start))
		})
	}
}

// handleOutput serves the file last written for format. Nothing is served
// unless the file exists.
func (s *graphServer) handleOutput(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _, _ := s.snapshot()
		if res == nil {
			http.Error(w, "no graph yet", http.StatusNotFound)
			return
		}
		path, ok := res.Outputs[format]
		if !ok {
			http.Error(w, "not rendered", http.StatusNotFound)
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	}
}

func (s *graphServer) handleRescan(w http.ResponseWriter, r *http.Request) {
	s.trigger()
	w.WriteHeader(http.StatusAccepted)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Solution}} dependencies</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1f2937; }
.dim { color: #6b7280; }
.warn { color: #b45309; }
img { max-width: 100%; border: 1px solid #e5e7eb; border-radius: 6px; }
</style>
</head>
<body>
<h1>{{.Solution}}</h1>
<form method="post" action="/rescan"><button type="submit">Rescan</button></form>
{{if .Scanning}}<p class="dim">Scanning...</p>{{end}}
{{if .Error}}<p class="warn">{{.Error}}</p>{{end}}
{{if .Result}}
<p class="dim">{{.Result.Stats.Projects}} projects, {{.Result.Stats.Vertices}} nodes, {{.Result.Stats.Edges}} edges</p>
{{range .Result.Failures}}<p class="warn">{{.Project}}: {{.Err}}</p>{{end}}
{{if .HasGraph}}<img src="/graph.svg" alt="dependency graph">
<p><a href="/graph.dot">graph.dot</a> · <a href="/report.json">report.json</a></p>{{end}}
{{end}}
</body>
</html>
`))

type indexData struct {
	Solution string
	Scanning bool
	Error    string
	Result   *pipeline.Result
	HasGraph bool
}

func (s *graphServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, scanning, err := s.snapshot()
	data := indexData{Solution: s.solution, Scanning: scanning, Result: res}
	if err != nil {
		data.Error = errors.UserMessage(err)
	}
	if res != nil && res.DisplayURI() != "" {
		_, data.HasGraph = res.Outputs[pipeline.FormatSVG]
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index", "err", err)
	}
}
