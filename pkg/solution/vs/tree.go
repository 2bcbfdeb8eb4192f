package vs

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/slngraph/pkg/solution"
)

// Solution is a parsed solution file.
type Solution struct {
	name string
	path string
	top  []solution.Project
}

func (s *Solution) Name() string     { return s.name }
func (s *Solution) FilePath() string { return s.path }

// TopLevel returns the nodes without a parent folder, in file order.
func (s *Solution) TopLevel(ctx context.Context) ([]solution.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.top, nil
}

// Folder is a solution folder.
type Folder struct {
	name     string
	children []solution.Project
}

func (f *Folder) Name() string           { return f.name }
func (f *Folder) FilePath() string       { return "" }
func (f *Folder) Kind() solution.Kind    { return solution.KindFolder }
func (f *Folder) add(p solution.Project) { f.children = append(f.children, p) }

// Children returns the nested nodes in file order.
func (f *Folder) Children(ctx context.Context) ([]solution.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.children, nil
}

// Project is a project entry of a solution.
type Project struct {
	name string
	path string
}

func (p *Project) Name() string                                         { return p.name }
func (p *Project) FilePath() string                                     { return p.path }
func (p *Project) Kind() solution.Kind                                  { return solution.KindProject }
func (p *Project) Children(context.Context) ([]solution.Project, error) { return nil, nil }

// resolve turns a project path as written in a solution file into an
// absolute, cleaned path.
func resolve(dir, rel string) string {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(dir, rel)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
