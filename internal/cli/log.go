package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slngraph/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Scanned 42 projects (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks forwards observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetScanHooks(h)
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnScanStart(_ context.Context, solution string) {
	h.logger.Debug("scan started", "solution", solution)
}

func (h *logHooks) OnProjectScanned(_ context.Context, project string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("project failed", "project", project, "duration", d, "err", err)
		return
	}
	h.logger.Debug("project scanned", "project", project, "duration", d)
}

func (h *logHooks) OnScanComplete(_ context.Context, solution string, records, failures int, d time.Duration) {
	h.logger.Debug("scan complete", "solution", solution, "projects", records, "failed", failures, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string, vertices, edges int) {
	h.logger.Debug("render started", "formats", formats, "vertices", vertices, "edges", edges)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
