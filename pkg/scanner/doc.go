// Package scanner walks a solution tree and collects one [ProjectRecord]
// per genuine project.
//
// # Traversal
//
// The tree is walked with an explicit worklist rather than recursion, so
// folder nesting depth is unbounded and cancellation is checked between
// nodes. Records come out in depth-first discovery order: a folder's
// children are visited, in host order, before the folder's next sibling.
// Folders never produce records. A project file reachable through more
// than one folder is scanned once.
//
// # Partial failure
//
// A project that cannot be opened, or whose documents cannot be parsed,
// produces a [*ScanError] in [Result.Failures] instead of aborting the
// scan; every other project is still scanned. Only failing to enumerate
// the solution's top level, or cancellation, aborts [Scanner.Scan].
//
// # Concurrency
//
// With Workers > 1 projects are opened concurrently through a bounded
// errgroup. Records are slotted by discovery index, so the result order is
// identical to a sequential scan.
package scanner
