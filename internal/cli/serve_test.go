package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/pipeline"
)

func writeOutputs(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		pipeline.FormatDOT:  "digraph G {\n}\n",
		pipeline.FormatSVG:  "<svg></svg>",
		pipeline.FormatJSON: `{"solution":"Shop"}`,
	}
	out := map[string]string{}
	for format, content := range files {
		p := filepath.Join(dir, "graph."+format)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		out[format] = p
	}
	return out
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestGraphServerRoutes(t *testing.T) {
	res := sampleResult(t)
	res.Outputs = writeOutputs(t)

	s := newGraphServer(context.Background(), "Shop.sln", func(context.Context) (*pipeline.Result, error) {
		return res, nil
	}, log.New(io.Discard))
	h := s.routes()

	// Nothing scanned yet.
	assert.Equal(t, http.StatusNotFound, get(t, h, http.MethodGet, "/graph.dot").Code)

	<-s.trigger()

	rec := get(t, h, http.MethodGet, "/graph.svg")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())

	rec = get(t, h, http.MethodGet, "/graph.dot")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph G")

	rec = get(t, h, http.MethodGet, "/report.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"solution":"Shop"}`, rec.Body.String())

	rec = get(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<img src="/graph.svg"`)
	assert.Contains(t, rec.Body.String(), "Legacy")
}

func TestGraphServerHidesMissingGraph(t *testing.T) {
	res := sampleResult(t)
	res.Outputs = writeOutputs(t)
	require.NoError(t, os.Remove(res.Outputs[pipeline.FormatDOT]))
	require.NoError(t, os.Remove(res.Outputs[pipeline.FormatSVG]))

	s := newGraphServer(context.Background(), "Shop.sln", func(context.Context) (*pipeline.Result, error) {
		return res, nil
	}, log.New(io.Discard))
	<-s.trigger()
	h := s.routes()

	assert.Equal(t, http.StatusNotFound, get(t, h, http.MethodGet, "/graph.svg").Code)
	assert.NotContains(t, get(t, h, http.MethodGet, "/").Body.String(), "<img")
}

func TestGraphServerRescanLatestWins(t *testing.T) {
	var calls atomic.Int32
	first := sampleResult(t)
	second := sampleResult(t)
	release := make(chan struct{})

	s := newGraphServer(context.Background(), "Shop.sln", func(ctx context.Context) (*pipeline.Result, error) {
		if calls.Add(1) == 1 {
			select {
			case <-release:
				return first, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return second, nil
	}, log.New(io.Discard))

	done1 := s.trigger()

	rec := get(t, s.routes(), http.MethodPost, "/rescan")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-done1:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded scan was not cancelled")
	}
	close(release)

	require.Eventually(t, func() bool {
		res, scanning, _ := s.snapshot()
		return !scanning && res == second
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeHTTPShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- serveHTTP(ctx, "127.0.0.1:0", http.NotFoundHandler(), log.New(&bytes.Buffer{}))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeHTTPBadAddr(t *testing.T) {
	err := serveHTTP(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), log.New(io.Discard))
	assert.Error(t, err)
}
