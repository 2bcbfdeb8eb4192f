// Package memory provides an in-memory solution host.
//
// It is used by tests across the module and by callers that already hold a
// project model in memory. The host implements both [solution.Solution] and
// [solution.Workspace]:
//
//	sol := memory.New("App")
//	sol.AddProject("Api", "/src/Api/Api.csproj").
//	    Refs("Newtonsoft.Json", "Core").
//	    Types("Program", "Startup")
//	libs := sol.AddFolder("libs")
//	libs.AddProject("Core", "/src/Core/Core.csproj")
//
//	host := sol.Host()
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/slngraph/pkg/solution"
)

// Solution is an in-memory solution tree and workspace.
type Solution struct {
	name string
	path string
	root *Folder

	mu       sync.Mutex
	projects map[string]*Project
	failures map[string]error
	opened   map[string]int
	topErr   error
}

// New creates an empty solution with the given name.
func New(name string) *Solution {
	s := &Solution{
		name:     name,
		path:     "/" + name + ".sln",
		projects: make(map[string]*Project),
		failures: make(map[string]error),
		opened:   make(map[string]int),
	}
	s.root = &Folder{sol: s, name: name}
	return s
}

// Host returns the solution paired with itself as workspace.
func (s *Solution) Host() solution.Host {
	return solution.Host{Solution: s, Workspace: s}
}

// Name returns the solution name.
func (s *Solution) Name() string { return s.name }

// FilePath returns a synthetic path derived from the name.
func (s *Solution) FilePath() string { return s.path }

// TopLevel returns the top-level nodes in insertion order.
func (s *Solution) TopLevel(ctx context.Context) ([]solution.Project, error) {
	if s.topErr != nil {
		return nil, s.topErr
	}
	return s.root.Children(ctx)
}

// FailTopLevel makes TopLevel return err.
func (s *Solution) FailTopLevel(err error) { s.topErr = err }

// AddProject appends a project at the top level.
func (s *Solution) AddProject(name, path string) *Project { return s.root.AddProject(name, path) }

// AddFolder appends a folder at the top level.
func (s *Solution) AddFolder(name string) *Folder { return s.root.AddFolder(name) }

// Fail makes OpenProject(path) return err.
func (s *Solution) Fail(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = err
}

// Opened returns how many times OpenProject was called for path.
func (s *Solution) Opened(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened[path]
}

// OpenProject implements [solution.Workspace].
func (s *Solution) OpenProject(ctx context.Context, path string) (solution.Compilation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened[path]++
	if err, ok := s.failures[path]; ok {
		return nil, err
	}
	p, ok := s.projects[path]
	if !ok {
		return nil, fmt.Errorf("project file %s not found", path)
	}
	return p, nil
}

// Folder is a grouping node.
type Folder struct {
	sol      *Solution
	name     string
	items    []solution.Project
	childErr error
}

func (f *Folder) Name() string           { return f.name }
func (f *Folder) FilePath() string       { return "" }
func (f *Folder) Kind() solution.Kind    { return solution.KindFolder }
func (f *Folder) FailChildren(err error) { f.childErr = err }

// Children returns the folder items in insertion order.
func (f *Folder) Children(ctx context.Context) ([]solution.Project, error) {
	if f.childErr != nil {
		return nil, f.childErr
	}
	return append([]solution.Project(nil), f.items...), nil
}

// AddProject appends a project to the folder. The same path may be added
// under several folders; it then shares one compilation.
func (f *Folder) AddProject(name, path string) *Project {
	f.sol.mu.Lock()
	p, ok := f.sol.projects[path]
	if !ok {
		p = &Project{name: name, path: path}
		f.sol.projects[path] = p
	}
	f.sol.mu.Unlock()
	f.items = append(f.items, p)
	return p
}

// AddFolder appends a nested folder.
func (f *Folder) AddFolder(name string) *Folder {
	sub := &Folder{sol: f.sol, name: name}
	f.items = append(f.items, sub)
	return sub
}

// Project is a genuine project and its compilation.
type Project struct {
	name string
	path string
	refs []solution.Reference
	docs []solution.Document
}

func (p *Project) Name() string        { return p.name }
func (p *Project) FilePath() string    { return p.path }
func (p *Project) Kind() solution.Kind { return solution.KindProject }

// Children returns nil; projects have no children.
func (p *Project) Children(context.Context) ([]solution.Project, error) { return nil, nil }

// References implements [solution.Compilation].
func (p *Project) References() []solution.Reference { return p.refs }

// Documents implements [solution.Compilation].
func (p *Project) Documents() []solution.Document { return p.docs }

// Refs appends package references with the given display names.
func (p *Project) Refs(names ...string) *Project {
	for _, n := range names {
		p.refs = append(p.refs, solution.Reference{Display: n, Kind: solution.RefPackage})
	}
	return p
}

// Types appends one document declaring the given classes.
func (p *Project) Types(names ...string) *Project {
	decls := make([]solution.Declaration, len(names))
	for i, n := range names {
		decls[i] = solution.Declaration{Name: n, Kind: solution.DeclClass}
	}
	return p.Document(fmt.Sprintf("%s/doc%d.cs", p.path, len(p.docs)), decls...)
}

// Document appends a document with explicit declarations.
func (p *Project) Document(path string, decls ...solution.Declaration) *Project {
	p.docs = append(p.docs, &Document{path: path, decls: decls})
	return p
}

// BrokenDocument appends a document whose Declarations fails with err.
func (p *Project) BrokenDocument(path string, err error) *Project {
	p.docs = append(p.docs, &Document{path: path, err: err})
	return p
}

// Document is an in-memory source document.
type Document struct {
	path  string
	decls []solution.Declaration
	err   error
}

func (d *Document) Path() string { return d.path }

// Declarations returns the configured declarations or error.
func (d *Document) Declarations(ctx context.Context) ([]solution.Declaration, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.decls, ctx.Err()
}

var (
	_ solution.Solution  = (*Solution)(nil)
	_ solution.Workspace = (*Solution)(nil)
	_ solution.Project   = (*Folder)(nil)
	_ solution.Project   = (*Project)(nil)
)
