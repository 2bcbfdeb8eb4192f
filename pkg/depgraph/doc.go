// Package depgraph provides the project dependency graph.
//
// # Overview
//
// A [Graph] holds string vertices and directed edges meaning "from depends
// on to". Project names and dependency names share one namespace: a
// dependency that names another project of the solution is that project's
// vertex, not a second one.
//
// Both insertions are idempotent. Adding an existing vertex or an existing
// edge is a no-op, so a project that lists the same dependency twice still
// yields a single edge:
//
//	g := depgraph.New(nil)
//	g.AddVertex(depgraph.Vertex{ID: "A"})
//	g.AddVertex(depgraph.Vertex{ID: "libX"})
//	g.AddEdge("A", "libX")
//	g.AddEdge("A", "libX") // absorbed
//	g.EdgeCount()          // 1
//
// [Build] constructs a graph from scanner records in one call.
//
// # Ordering
//
// [Graph.Vertices] and [Graph.Edges] return sorted slices so serializations
// of the same graph are byte-identical regardless of insertion order.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. A graph is built once per scan
// and then only read.
package depgraph
