package cargo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
)

const manifestName = "Cargo.toml"

// Solution is a Cargo workspace.
type Solution struct {
	name string
	path string
	top  []solution.Project
}

func (s *Solution) Name() string     { return s.name }
func (s *Solution) FilePath() string { return s.path }

func (s *Solution) TopLevel(ctx context.Context) ([]solution.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.top, nil
}

// Crate is a package of the workspace.
type Crate struct {
	name string
	path string
}

func (c *Crate) Name() string                                         { return c.name }
func (c *Crate) FilePath() string                                     { return c.path }
func (c *Crate) Kind() solution.Kind                                  { return solution.KindProject }
func (c *Crate) Children(context.Context) ([]solution.Project, error) { return nil, nil }

// Group holds the crates matched by a glob member.
type Group struct {
	pattern string
	crates  []solution.Project
}

func (g *Group) Name() string        { return g.pattern }
func (g *Group) FilePath() string    { return "" }
func (g *Group) Kind() solution.Kind { return solution.KindFolder }

func (g *Group) Children(ctx context.Context) ([]solution.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.crates, nil
}

// Open reads a root Cargo.toml.
func Open(path string) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	if filepath.Base(abs) != manifestName {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s is not a Cargo.toml", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeHostUnavailable, err, "read %s", path)
	}
	var cf cargoFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}

	root := filepath.Dir(abs)
	sol := &Solution{name: filepath.Base(root), path: abs}
	if cf.Package.Name != "" {
		sol.top = append(sol.top, &Crate{name: cf.Package.Name, path: abs})
		if cf.Workspace == nil {
			sol.name = cf.Package.Name
		}
	}
	if cf.Workspace == nil {
		if len(sol.top) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s has neither [package] nor [workspace]", path)
		}
		return sol, nil
	}

	excluded := map[string]bool{}
	for _, e := range cf.Workspace.Exclude {
		excluded[filepath.Join(root, filepath.FromSlash(e))] = true
	}
	for _, m := range cf.Workspace.Members {
		if !strings.ContainsAny(m, "*?[") {
			dir := filepath.Join(root, filepath.FromSlash(m))
			sol.top = append(sol.top, crateAt(dir))
			continue
		}
		dirs, err := doublestar.Glob(filepath.Join(root, filepath.FromSlash(m)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "member pattern %q", m)
		}
		slices.Sort(dirs)
		g := &Group{pattern: m}
		for _, d := range dirs {
			if excluded[d] {
				continue
			}
			if _, err := os.Stat(filepath.Join(d, manifestName)); err != nil {
				continue
			}
			g.crates = append(g.crates, crateAt(d))
		}
		sol.top = append(sol.top, g)
	}
	return sol, nil
}

// crateAt names a member crate by its package name, falling back to the
// directory name when the manifest cannot be read; opening it then
// reports the failure.
func crateAt(dir string) *Crate {
	path := filepath.Join(dir, manifestName)
	name := filepath.Base(dir)
	var cf cargoFile
	if _, err := toml.DecodeFile(path, &cf); err == nil && cf.Package.Name != "" {
		name = cf.Package.Name
	}
	return &Crate{name: name, path: path}
}

// Workspace opens crates.
type Workspace struct{}

// NewWorkspace returns a Cargo workspace.
func NewWorkspace() *Workspace { return &Workspace{} }

// OpenProject decodes the crate manifest and lists src/**/*.rs.
func (w *Workspace) OpenProject(ctx context.Context, path string) (solution.Compilation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cf cargoFile
	md, err := toml.DecodeFile(path, &cf)
	if err != nil {
		return nil, err
	}
	if cf.Package.Name == "" {
		return nil, fmt.Errorf("%s has no [package] name", path)
	}

	c := &compilation{}
	for _, d := range orderedDeps(&cf, md) {
		c.refs = append(c.refs, solution.Reference{Display: d.name, Kind: solution.RefPackage, Version: d.version})
	}

	src := filepath.Join(filepath.Dir(path), "src")
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == src && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".rs") {
			c.docs = append(c.docs, &rustFile{path: p})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return c, nil
}

type compilation struct {
	refs []solution.Reference
	docs []solution.Document
}

func (c *compilation) References() []solution.Reference { return c.refs }
func (c *compilation) Documents() []solution.Document   { return c.docs }

type rustFile struct {
	path string
}

func (f *rustFile) Path() string { return f.path }

func (f *rustFile) Declarations(ctx context.Context) ([]solution.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return ParseDeclarations(src), nil
}

var (
	_ solution.Solution  = (*Solution)(nil)
	_ solution.Workspace = (*Workspace)(nil)
)
