package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/slngraph/pkg/depgraph"
	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/scanner"
)

// Report is the serialized outcome of a scan.
type Report struct {
	ScanID     uuid.UUID               `json:"scan_id"`
	Solution   string                  `json:"solution"`
	Started    time.Time               `json:"started"`
	DurationMS int64                   `json:"duration_ms"`
	Projects   []scanner.ProjectRecord `json:"projects"`
	Failures   []Failure               `json:"failures,omitempty"`
	Graph      *Graph                  `json:"graph,omitempty"`
}

// Failure is a serialized [scanner.ScanError].
type Failure struct {
	Project string `json:"project"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error"`
}

// Graph is the serialized dependency graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a serialized vertex.
type Node struct {
	ID   string            `json:"id"`
	Kind string            `json:"kind"`
	Meta depgraph.Metadata `json:"meta,omitempty"`
}

// Edge is a serialized edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewReport assembles a report from a scan result and, optionally, the
// graph built from it.
func NewReport(res *scanner.Result, g *depgraph.Graph) *Report {
	r := &Report{
		ScanID:     res.ID,
		Solution:   res.Solution,
		Started:    res.Started.UTC(),
		DurationMS: res.Duration.Milliseconds(),
		Projects:   res.Records,
	}
	if r.Projects == nil {
		r.Projects = []scanner.ProjectRecord{}
	}
	for _, f := range res.Failures {
		r.Failures = append(r.Failures, Failure{Project: f.Project, Path: f.Path, Error: f.Err.Error()})
	}
	if g != nil {
		r.Graph = &Graph{Nodes: []Node{}, Edges: []Edge{}}
		for _, v := range g.Vertices() {
			r.Graph.Nodes = append(r.Graph.Nodes, Node{ID: v.ID, Kind: v.Kind.String(), Meta: v.Meta})
		}
		for _, e := range g.Edges() {
			r.Graph.Edges = append(r.Graph.Edges, Edge{From: e.From, To: e.To})
		}
	}
	return r
}

// Marshal encodes the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadReport decodes a report from r.
//
// Every project must have a name and every dependency must be non-empty;
// otherwise an INVALID_FORMAT error names the offending entry. The graph
// section is not validated because it is rebuilt from the projects.
// ReadReport does not close r.
func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
	}
	for i, p := range rep.Projects {
		if p.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "project %d has no name", i)
		}
		for j, d := range p.Dependencies {
			if d == "" {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "project %s: dependency %d is empty", p.Name, j)
			}
		}
	}
	return &rep, nil
}

// ImportReport reads a report from a JSON file.
func ImportReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "report %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	rep, err := ReadReport(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}
