package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/slngraph/pkg/depgraph"
)

// RankDir is the Graphviz layout direction.
type RankDir string

const (
	RankTB RankDir = "TB"
	RankLR RankDir = "LR"
	RankBT RankDir = "BT"
	RankRL RankDir = "RL"
)

// ParseRankDir accepts a direction case-insensitively. Empty means TB.
func ParseRankDir(s string) (RankDir, error) {
	switch d := RankDir(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return RankTB, nil
	case RankTB, RankLR, RankBT, RankRL:
		return d, nil
	default:
		return "", fmt.Errorf("invalid rank direction %q (want TB, LR, BT or RL)", s)
	}
}

// Options configures DOT output.
type Options struct {
	// RankDir sets the layout direction. Empty means TB.
	RankDir RankDir

	// Detailed appends the project path and declared type count to project
	// labels. When false, the label is exactly the vertex ID.
	Detailed bool

	// Styled draws projects as filled boxes and dependencies as ellipses.
	Styled bool
}

// ToDOT converts a graph to Graphviz DOT.
func ToDOT(g *depgraph.Graph, opts Options) string {
	rank := opts.RankDir
	if rank == "" {
		rank = RankTB
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rank)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, v := range g.Vertices() {
		attrs := fmtAttrs(v, fmtLabel(v, opts.Detailed), opts.Styled)
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(v.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From), quote(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(v depgraph.Vertex, detailed bool) string {
	if !detailed || !v.IsProject() {
		return v.ID
	}
	parts := []string{v.ID}
	if p, ok := v.Meta[depgraph.MetaPath].(string); ok && p != "" {
		parts = append(parts, "path: "+p)
	}
	if n, ok := v.Meta[depgraph.MetaTypeCount].(int); ok {
		parts = append(parts, fmt.Sprintf("types: %d", n))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(v depgraph.Vertex, label string, styled bool) []string {
	attrs := []string{"label=" + quote(label)}
	if !styled {
		return attrs
	}
	if v.IsProject() {
		return append(attrs, "fillcolor=\"#dbeafe\"", "color=\"#1d4ed8\"")
	}
	return append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#f3f4f6\"", "color=\"#6b7280\"")
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// quote returns s as a double-quoted DOT string.
func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}
