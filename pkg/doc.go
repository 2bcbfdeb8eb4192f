// Package pkg provides the libraries behind slngraph, the solution
// dependency graph scanner.
//
// # Overview
//
// slngraph opens a solution, visits every project in it, collects the
// dependencies each project declares and writes the result as a Graphviz
// DOT file. The pkg directory is organized as:
//
//  1. [solution] - Capability interfaces for solutions, projects and
//     workspaces, plus host adapters (vs, msbuild, gowork, cargo, memory)
//  2. [hosts] - Picks the adapter for a path
//  3. [scanner] - Walks a solution and produces one record per project
//  4. [depgraph] - Folds records into a dependency graph
//  5. [render/dot] - DOT serialization and Graphviz rendering
//  6. [pipeline] - Orchestration (scan → graph → render → write)
//  7. [output], [io], [cache], [errors], [observability] - Infrastructure
//
// # Architecture
//
//	.sln / .slnx / go.work / Cargo.toml
//	         ↓
//	    [hosts] package (detect and open)
//	         ↓
//	    [scanner] package (project records, per-project failures)
//	         ↓
//	    [depgraph] package (vertices, edges)
//	         ↓
//	    [render/dot] package (DOT text, optional SVG/PNG)
//	         ↓
//	    [output] package (atomic file replacement)
//
// # Quick Start
//
//	opener, _ := hosts.NewOpener(logger, 0)
//	host, _, err := opener.Open("./Shop.sln")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Run(ctx, host, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Outputs["dot"])
//
// # Failure Model
//
// A project that cannot be opened or parsed is reported in
// [pipeline.Result.Failures] and left out of the graph; the run still
// succeeds. Only a solution that cannot be enumerated at all, or one where
// every project failed, fails the run.
package pkg
