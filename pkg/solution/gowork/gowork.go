// Package gowork treats a Go workspace as a solution.
//
// A go.work file lists modules with use directives; each module is a
// project named by its module path. A lone go.mod is a one-project
// solution. Module requirements are the references and the packages'
// type declarations are the declared types.
package gowork

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
)

// Solution is a go.work or go.mod file.
type Solution struct {
	name    string
	path    string
	modules []solution.Project
}

func (s *Solution) Name() string     { return s.name }
func (s *Solution) FilePath() string { return s.path }

// TopLevel returns one project per module, in use-directive order.
func (s *Solution) TopLevel(ctx context.Context) ([]solution.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.modules, nil
}

// Module is a Go module of the workspace.
type Module struct {
	name string
	path string // go.mod
}

func (m *Module) Name() string                                         { return m.name }
func (m *Module) FilePath() string                                     { return m.path }
func (m *Module) Kind() solution.Kind                                  { return solution.KindProject }
func (m *Module) Children(context.Context) ([]solution.Project, error) { return nil, nil }

// Open reads a go.work or go.mod file.
func Open(path string) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeHostUnavailable, err, "read %s", path)
	}

	switch filepath.Base(abs) {
	case "go.work":
		return parseWork(abs, data)
	case "go.mod":
		name := modfile.ModulePath(data)
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s has no module directive", path)
		}
		return &Solution{
			name:    name,
			path:    abs,
			modules: []solution.Project{&Module{name: name, path: abs}},
		}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s is not a go.work or go.mod file", path)
	}
}

func parseWork(path string, data []byte) (*Solution, error) {
	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	dir := filepath.Dir(path)
	sol := &Solution{name: filepath.Base(dir), path: path}
	for _, u := range wf.Use {
		modDir := filepath.Join(dir, filepath.FromSlash(u.Path))
		if filepath.IsAbs(u.Path) {
			modDir = filepath.Clean(u.Path)
		}
		gomod := filepath.Join(modDir, "go.mod")
		name := u.Path
		// A module whose go.mod is unreadable is still listed so that
		// opening it reports a per-project failure.
		if b, err := os.ReadFile(gomod); err == nil {
			if mp := modfile.ModulePath(b); mp != "" {
				name = mp
			}
		}
		sol.modules = append(sol.modules, &Module{name: name, path: gomod})
	}
	return sol, nil
}

// Workspace opens Go modules.
type Workspace struct{}

// NewWorkspace returns a Go module workspace.
func NewWorkspace() *Workspace { return &Workspace{} }

// OpenProject parses the go.mod at path and lists the module's Go files.
func (w *Workspace) OpenProject(ctx context.Context, path string) (solution.Compilation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, err
	}

	var direct, indirect []solution.Reference
	for _, r := range mf.Require {
		ref := solution.Reference{Display: r.Mod.Path, Kind: solution.RefPackage, Version: r.Mod.Version}
		if r.Indirect {
			indirect = append(indirect, ref)
		} else {
			direct = append(direct, ref)
		}
	}

	docs, err := goFiles(ctx, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return &compilation{refs: append(direct, indirect...), docs: docs}, nil
}

type compilation struct {
	refs []solution.Reference
	docs []solution.Document
}

func (c *compilation) References() []solution.Reference { return c.refs }
func (c *compilation) Documents() []solution.Document   { return c.docs }

func goFiles(ctx context.Context, root string) ([]solution.Document, error) {
	var docs []solution.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
				return filepath.SkipDir // nested module
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			docs = append(docs, &goFile{path: path})
		}
		return nil
	})
	return docs, err
}

type goFile struct {
	path string
}

func (f *goFile) Path() string { return f.path }

// Declarations parses the file and returns every named type, including
// types declared inside functions.
func (f *goFile) Declarations(ctx context.Context) ([]solution.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := parser.ParseFile(token.NewFileSet(), f.path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	var out []solution.Declaration
	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		kind := solution.DeclType
		switch ts.Type.(type) {
		case *ast.StructType:
			kind = solution.DeclStruct
		case *ast.InterfaceType:
			kind = solution.DeclInterface
		}
		out = append(out, solution.Declaration{Name: ts.Name.Name, Kind: kind})
		return true
	})
	return out, nil
}

var (
	_ solution.Solution  = (*Solution)(nil)
	_ solution.Workspace = (*Workspace)(nil)
)
