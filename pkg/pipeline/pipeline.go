// Package pipeline runs the scan → graph → render operation.
//
// This package ties the scanner, the graph builder and the DOT renderer
// together so the CLI commands, the terminal panel and the HTTP server all
// produce identical output for the same solution.
//
// # Stages
//
//  1. Scan: walk the solution and open every project ([scanner.Scanner])
//  2. Build: fold the records into a [depgraph.Graph]
//  3. Render: serialize to DOT and atomically replace the output file
//
// Optional extra formats are written next to the DOT file: "svg" and "png"
// go through the Graphviz layout engine and the artifact cache, "json"
// writes the scan report.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Run(ctx, host, pipeline.Options{Formats: []string{"dot", "svg"}})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Outputs["dot"])
//
// # Failure semantics
//
// Per-project failures do not abort a run; they are returned in
// [Result.Failures] and the graph of the remaining projects is still
// written. A run fails with SCAN_FAILED only when every project failed.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/slngraph/pkg/depgraph"
	"github.com/matzehuels/slngraph/pkg/output"
	"github.com/matzehuels/slngraph/pkg/render/dot"
	"github.com/matzehuels/slngraph/pkg/scanner"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultOutputName is the file name of the graph description written to
// the temp directory when no output path is configured.
const DefaultOutputName = "dependencyGraph.dot"

// DefaultOutputPath returns the default graph file location.
func DefaultOutputPath() string {
	return filepath.Join(os.TempDir(), DefaultOutputName)
}

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Output is the DOT file path. Other formats replace its extension.
	Output string `json:"output"`

	// Formats lists the files to write. "dot" is always written.
	Formats []string `json:"formats,omitempty"`

	RankDir  string `json:"rankdir,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	Styled   bool   `json:"styled,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.Output) == "" {
		o.Output = DefaultOutputPath()
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !slices.Contains(o.Formats, FormatDOT) {
		o.Formats = append([]string{FormatDOT}, o.Formats...)
	}
	for _, f := range o.Formats {
		if f != FormatDOT && strings.EqualFold(o.OutputPath(f), o.Output) {
			return fmt.Errorf("output %q would be overwritten by the %s output; use a .dot path", o.Output, f)
		}
	}
	rd, err := dot.ParseRankDir(o.RankDir)
	if err != nil {
		return err
	}
	o.RankDir = string(rd)
	o.validated = true
	return nil
}

// DOTOptions returns the renderer options.
func (o Options) DOTOptions() dot.Options {
	return dot.Options{RankDir: dot.RankDir(o.RankDir), Detailed: o.Detailed, Styled: o.Styled}
}

// OutputPath returns the file written for format.
func (o Options) OutputPath(format string) string {
	if format == FormatDOT {
		return o.Output
	}
	base := strings.TrimSuffix(o.Output, filepath.Ext(o.Output))
	return base + "." + format
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	ScanID   uuid.UUID
	Solution string
	Records  []scanner.ProjectRecord
	Failures []*scanner.ScanError

	// Graph is the dependency graph built from Records.
	Graph *depgraph.Graph

	// DOT is the graph description written to Outputs["dot"].
	DOT string

	// Outputs maps each written format to its file path.
	Outputs map[string]string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Projects   int
	Failed     int
	Vertices   int
	Edges      int
	Cyclic     bool
	ScanTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks artifact cache use.
type CacheInfo struct {
	// RenderHit is true when every image artifact came from cache.
	RenderHit bool
}

// DisplayURI returns the file:// reference of the DOT output for a
// viewer, or "" if the file does not exist.
func (r *Result) DisplayURI() string {
	path, ok := r.Outputs[FormatDOT]
	if !ok {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return output.FileURI(path)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
