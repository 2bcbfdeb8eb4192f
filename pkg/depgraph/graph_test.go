package depgraph

import (
	"errors"
	"testing"

	"github.com/matzehuels/slngraph/pkg/scanner"
)

func TestAddVertex(t *testing.T) {
	g := New(nil)
	added, err := g.AddVertex(Vertex{ID: "A"})
	if err != nil || !added {
		t.Fatalf("AddVertex(A) = %v, %v; want true, nil", added, err)
	}
	added, err = g.AddVertex(Vertex{ID: "A"})
	if err != nil || added {
		t.Fatalf("second AddVertex(A) = %v, %v; want false, nil", added, err)
	}
	if g.VertexCount() != 1 {
		t.Errorf("VertexCount = %d, want 1", g.VertexCount())
	}
	if _, err := g.AddVertex(Vertex{}); !errors.Is(err, ErrInvalidVertexID) {
		t.Errorf("AddVertex(empty) err = %v, want ErrInvalidVertexID", err)
	}
}

func TestAddVertexPromotesProject(t *testing.T) {
	g := New(nil)
	g.AddVertex(Vertex{ID: "B", Kind: KindDependency})
	g.AddVertex(Vertex{ID: "B", Kind: KindProject, Meta: Metadata{MetaPath: "/b.csproj"}})

	v, ok := g.Vertex("B")
	if !ok {
		t.Fatal("vertex B missing")
	}
	if !v.IsProject() {
		t.Errorf("kind = %v, want project", v.Kind)
	}
	if v.Meta[MetaPath] != "/b.csproj" {
		t.Errorf("path = %v, want /b.csproj", v.Meta[MetaPath])
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	g.AddVertex(Vertex{ID: "A"})
	g.AddVertex(Vertex{ID: "B"})

	tests := []struct {
		name     string
		from, to string
		added    bool
		err      error
	}{
		{"new", "A", "B", true, nil},
		{"duplicate", "A", "B", false, nil},
		{"unknown source", "X", "B", false, ErrUnknownSource},
		{"unknown target", "A", "X", false, ErrUnknownTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := g.AddEdge(tt.from, tt.to)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if added != tt.added {
				t.Errorf("added = %v, want %v", added, tt.added)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if e := g.Edges(); len(e) != 1 || e[0] != (Edge{From: "A", To: "B"}) {
		t.Errorf("Edges = %v, want [A→B]", e)
	}
}

func TestSortedOutput(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		g.AddVertex(Vertex{ID: id})
	}
	g.AddEdge("c", "a")
	g.AddEdge("a", "c")
	g.AddEdge("a", "b")

	var ids []string
	for _, v := range g.Vertices() {
		ids = append(ids, v.ID)
	}
	if got := len(ids); got != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Vertices = %v, want [a b c]", ids)
	}

	want := []Edge{{"a", "b"}, {"a", "c"}, {"c", "a"}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("Edges = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChildren(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"app", "lib", "core"} {
		g.AddVertex(Vertex{ID: id})
	}
	g.AddEdge("app", "lib")
	g.AddEdge("app", "core")
	g.AddEdge("lib", "core")

	if got := g.Children("app"); len(got) != 2 || got[0] != "lib" || got[1] != "core" {
		t.Errorf("Children(app) = %v, want [lib core]", got)
	}
	if got := g.Children("core"); len(got) != 0 {
		t.Errorf("Children(core) = %v, want none", got)
	}
}

func TestHasCycle(t *testing.T) {
	g := New(nil)
	g.AddVertex(Vertex{ID: "A"})
	g.AddVertex(Vertex{ID: "B"})
	g.AddEdge("A", "B")
	if g.HasCycle() {
		t.Error("unexpected cycle")
	}
	g.AddEdge("B", "A")
	if !g.HasCycle() {
		t.Error("expected cycle")
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		records  []scanner.ProjectRecord
		vertices int
		edges    []Edge
	}{
		{
			name:     "empty",
			records:  nil,
			vertices: 0,
		},
		{
			name: "project and shared dependency",
			records: []scanner.ProjectRecord{
				{Name: "A", FilePath: "/a", Dependencies: []string{"libX", "B"}},
				{Name: "B", FilePath: "/b", Dependencies: []string{"libX"}},
			},
			vertices: 3,
			edges:    []Edge{{"A", "B"}, {"A", "libX"}, {"B", "libX"}},
		},
		{
			name: "duplicate dependency",
			records: []scanner.ProjectRecord{
				{Name: "A", FilePath: "/a", Dependencies: []string{"libX", "libX"}},
			},
			vertices: 2,
			edges:    []Edge{{"A", "libX"}},
		},
		{
			name: "no dependencies",
			records: []scanner.ProjectRecord{
				{Name: "Solo", FilePath: "/solo", Dependencies: []string{}},
			},
			vertices: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.records)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if g.VertexCount() != tt.vertices {
				t.Errorf("VertexCount = %d, want %d", g.VertexCount(), tt.vertices)
			}
			got := g.Edges()
			if len(got) != len(tt.edges) {
				t.Fatalf("Edges = %v, want %v", got, tt.edges)
			}
			for i := range tt.edges {
				if got[i] != tt.edges[i] {
					t.Errorf("Edges[%d] = %v, want %v", i, got[i], tt.edges[i])
				}
			}
		})
	}
}

func TestBuildProjectKindWins(t *testing.T) {
	g, err := Build([]scanner.ProjectRecord{
		{Name: "A", FilePath: "/a", Dependencies: []string{"B"}},
		{Name: "B", FilePath: "/b", Dependencies: []string{}, DeclaredTypes: []string{"T1", "T2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := g.Vertex("B")
	if !v.IsProject() {
		t.Error("B should be a project vertex")
	}
	if v.Meta[MetaTypeCount] != 2 {
		t.Errorf("type count = %v, want 2", v.Meta[MetaTypeCount])
	}
	if d, _ := g.Vertex("A"); d.Meta[MetaPath] != "/a" {
		t.Errorf("path = %v", d.Meta[MetaPath])
	}
}

func TestBuildEmptyDependency(t *testing.T) {
	_, err := Build([]scanner.ProjectRecord{{Name: "A", Dependencies: []string{""}}})
	if !errors.Is(err, ErrInvalidVertexID) {
		t.Errorf("err = %v, want ErrInvalidVertexID", err)
	}
}
