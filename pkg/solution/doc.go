// Package solution defines the host-side object model slngraph scans.
//
// # Overview
//
// A [Solution] is a tree of [Project] nodes. Genuine projects have a file
// path that a [Workspace] can open into a [Compilation]; folder nodes
// ([KindFolder]) only group other nodes and may nest to any depth.
//
// The scanner depends on these interfaces only. Concrete hosts live in
// subpackages:
//
//   - [github.com/matzehuels/slngraph/pkg/solution/vs]: .sln and .slnx files
//   - [github.com/matzehuels/slngraph/pkg/solution/msbuild]: .csproj/.vbproj/.fsproj
//   - [github.com/matzehuels/slngraph/pkg/solution/gowork]: go.work and go.mod
//   - [github.com/matzehuels/slngraph/pkg/solution/cargo]: Cargo workspaces
//   - [github.com/matzehuels/slngraph/pkg/solution/memory]: in-memory host for tests
//
// # Concurrency
//
// Workspace implementations must be safe for concurrent OpenProject calls;
// the scanner may open several projects at once when configured with more
// than one worker.
package solution
