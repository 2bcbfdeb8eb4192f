package depgraph

import (
	"cmp"
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidVertexID is returned by [Graph.AddVertex] when the vertex ID
	// is empty. All vertices must have non-empty identifiers.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrUnknownSource is returned by [Graph.AddEdge] when the From vertex
	// does not exist.
	ErrUnknownSource = errors.New("unknown source vertex")

	// ErrUnknownTarget is returned by [Graph.AddEdge] when the To vertex
	// does not exist.
	ErrUnknownTarget = errors.New("unknown target vertex")
)

// Metadata stores arbitrary key-value pairs attached to vertices or the
// graph. Metadata maps are never nil after insertion.
type Metadata map[string]any

// Metadata keys set by [Build].
const (
	MetaPath      = "path"
	MetaTypeCount = "types"
)

// VertexKind distinguishes scanned projects from plain dependencies.
type VertexKind int

const (
	// KindDependency is a referenced library, package or assembly.
	KindDependency VertexKind = iota
	// KindProject is a project of the scanned solution.
	KindProject
)

// String returns "project" or "dependency".
func (k VertexKind) String() string {
	if k == KindProject {
		return "project"
	}
	return "dependency"
}

// Vertex is a node of the graph. Its ID doubles as the display label.
type Vertex struct {
	ID   string
	Kind VertexKind
	Meta Metadata
}

// IsProject reports whether the vertex is a scanned project.
func (v Vertex) IsProject() bool { return v.Kind == KindProject }

// Edge is a directed "From depends on To" relation.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph with idempotent insertion.
//
// The zero value is not usable - use New.
type Graph struct {
	vertices map[string]*Vertex
	edges    map[Edge]struct{}
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		vertices: make(map[string]*Vertex),
		edges:    make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddVertex inserts v and reports whether it was new.
//
// Adding an ID that already exists is not an error: the existing vertex is
// kept, except that a dependency vertex is promoted to a project when v is a
// project, and v's metadata keys are merged in without overwriting.
// Returns ErrInvalidVertexID if v.ID is empty.
func (g *Graph) AddVertex(v Vertex) (bool, error) {
	if v.ID == "" {
		return false, ErrInvalidVertexID
	}
	if existing, ok := g.vertices[v.ID]; ok {
		if v.Kind == KindProject {
			existing.Kind = KindProject
		}
		for k, val := range v.Meta {
			if _, set := existing.Meta[k]; !set {
				existing.Meta[k] = val
			}
		}
		return false, nil
	}
	if v.Meta == nil {
		v.Meta = Metadata{}
	} else {
		v.Meta = maps.Clone(v.Meta)
	}
	g.vertices[v.ID] = &v
	return true, nil
}

// AddEdge inserts the edge from→to and reports whether it was new.
// A repeated edge is absorbed. Returns ErrUnknownSource or ErrUnknownTarget
// if an endpoint has not been added.
func (g *Graph) AddEdge(from, to string) (bool, error) {
	if _, ok := g.vertices[from]; !ok {
		return false, ErrUnknownSource
	}
	if _, ok := g.vertices[to]; !ok {
		return false, ErrUnknownTarget
	}
	e := Edge{From: from, To: to}
	if _, ok := g.edges[e]; ok {
		return false, nil
	}
	g.edges[e] = struct{}{}
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return true, nil
}

// Vertex returns the vertex with the given ID and true, or the zero vertex
// and false if not found. The returned value is a copy.
func (g *Graph) Vertex(id string) (Vertex, bool) {
	v, ok := g.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Vertices returns copies of all vertices sorted by ID.
func (g *Graph) Vertices() []Vertex {
	out := make([]Vertex, 0, len(g.vertices))
	for _, id := range slices.Sorted(maps.Keys(g.vertices)) {
		out = append(out, *g.vertices[id])
	}
	return out
}

// Edges returns all edges sorted by From, then To.
func (g *Graph) Edges() []Edge {
	out := slices.Collect(maps.Keys(g.edges))
	slices.SortFunc(out, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs a vertex depends on, in insertion order.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// HasCycle reports whether the graph contains a directed cycle, such as
// two projects referencing each other. Cycles are reported, never broken.
//
// Cycle detection runs in O(V+E) using depth-first search with
// white/gray/black coloring.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.vertices))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range slices.Sorted(maps.Keys(g.vertices)) {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return true
			}
		}
	}
	return false
}
