// Package dot serializes dependency graphs to Graphviz DOT and renders them.
//
// [ToDOT] is pure and deterministic: vertices and edges are written in sorted
// order, so scanning an unchanged solution twice produces byte-identical
// files. Every vertex is labelled with its own ID.
//
//	text := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.Render(ctx, text, dot.FormatSVG)
//
// [Render] runs the Graphviz layout engine through goccy/go-graphviz, which
// embeds Graphviz as WebAssembly; no system install is needed.
package dot
