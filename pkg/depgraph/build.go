package depgraph

import (
	"fmt"

	"github.com/matzehuels/slngraph/pkg/scanner"
)

// Build creates a graph from scanner records.
//
// Every record contributes a project vertex and, for each dependency, a
// dependency vertex plus one edge. Records sharing a name map to one vertex;
// the first record's path is kept. Dependencies naming a project become
// that project's vertex whichever record is seen first.
//
// Returns an error wrapping ErrInvalidVertexID for a record or dependency
// with an empty name.
func Build(records []scanner.ProjectRecord) (*Graph, error) {
	g := New(nil)
	for _, r := range records {
		if _, err := g.AddVertex(Vertex{
			ID:   r.Name,
			Kind: KindProject,
			Meta: Metadata{MetaPath: r.FilePath, MetaTypeCount: len(r.DeclaredTypes)},
		}); err != nil {
			return nil, fmt.Errorf("project %s: %w", r.FilePath, err)
		}
	}
	for _, r := range records {
		for i, dep := range r.Dependencies {
			if _, err := g.AddVertex(Vertex{ID: dep, Kind: KindDependency}); err != nil {
				return nil, fmt.Errorf("project %s dependency %d: %w", r.Name, i, err)
			}
			if _, err := g.AddEdge(r.Name, dep); err != nil {
				return nil, fmt.Errorf("edge %s -> %s: %w", r.Name, dep, err)
			}
		}
	}
	return g, nil
}
