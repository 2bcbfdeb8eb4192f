package msbuild

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/slngraph/pkg/solution"
)

// DefaultCacheSize is the number of parsed projects kept in memory.
const DefaultCacheSize = 512

// Workspace opens MSBuild project files. It is safe for concurrent use.
//
// Parsed project files are cached by path, size and modification time, so
// a rescan of an unchanged solution does not re-read them. Source trees
// are listed on every open: files come and go without the project file
// changing.
type Workspace struct {
	logger *log.Logger
	cache  *lru.Cache[cacheKey, *Definition]
	parsed atomic.Int64
}

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// NewWorkspace creates a workspace caching up to cacheSize projects.
// A cacheSize below 1 means DefaultCacheSize.
func NewWorkspace(logger *log.Logger, cacheSize int) (*Workspace, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, *Definition](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create project cache: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Workspace{logger: logger, cache: c}, nil
}

// Parsed returns how many project files were parsed, cache hits excluded.
func (w *Workspace) Parsed() int64 { return w.parsed.Load() }

// OpenProject parses the project file at path and lists its sources.
func (w *Workspace) OpenProject(ctx context.Context, path string) (solution.Compilation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	key := cacheKey{path: path, size: fi.Size(), modTime: fi.ModTime().UnixNano()}
	def, ok := w.cache.Get(key)
	if ok {
		w.logger.Debug("project cache hit", "path", path)
	} else {
		if def, err = w.parse(path); err != nil {
			return nil, err
		}
		w.cache.Add(key, def)
	}

	docs, err := sources(ctx, def)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("opened project", "path", path, "sdk", def.SDKStyle,
		"references", len(def.References), "documents", len(docs))
	return &Compilation{def: def, docs: docs}, nil
}

func (w *Workspace) parse(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := ParseProject(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse project xml: %w", err)
	}
	w.parsed.Add(1)
	return def, nil
}

// Compilation is an opened project.
type Compilation struct {
	def  *Definition
	docs []solution.Document
}

func (c *Compilation) References() []solution.Reference { return c.def.References }
func (c *Compilation) Documents() []solution.Document   { return c.docs }

// Document is a C# source file.
type Document struct {
	path string
}

func (d *Document) Path() string { return d.path }

// Declarations reads the file and lexes its type declarations.
func (d *Document) Declarations(ctx context.Context) ([]solution.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	return ParseDeclarations(src), nil
}

// skippedDirs are never searched for default compile items.
var skippedDirs = map[string]bool{"bin": true, "obj": true, "node_modules": true}

// sources lists the C# documents of a project. Projects in other
// languages have no documents.
func sources(ctx context.Context, def *Definition) ([]solution.Document, error) {
	if !strings.EqualFold(filepath.Ext(def.Path), ".csproj") {
		return nil, nil
	}
	dir := filepath.Dir(def.Path)

	removes := compileAll(def.CompileRemove)
	var includes []itemPattern
	var explicit []string
	for _, inc := range def.CompileInclude {
		if hasWildcard(inc) {
			includes = append(includes, compilePattern(inc))
		} else {
			explicit = append(explicit, inc)
		}
	}

	var docs []solution.Document
	seen := map[string]bool{}
	add := func(rel string) {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if seen[abs] || matchAny(removes, rel) {
			return
		}
		seen[abs] = true
		docs = append(docs, &Document{path: abs})
	}

	if def.DefaultCompileItems || len(includes) > 0 {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != dir && (skippedDirs[strings.ToLower(name)] || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".cs") {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if def.DefaultCompileItems || matchAny(includes, rel) {
				add(rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
	}
	for _, rel := range explicit {
		add(rel)
	}
	return docs, nil
}

// itemPattern matches project-relative, slash-separated paths against an
// MSBuild item pattern: "**" spans directories, "*" and "?" stay within
// one path segment. Matching is case-insensitive.
type itemPattern struct {
	pattern string
}

// globMeta are doublestar metacharacters that MSBuild treats literally.
var globMeta = strings.NewReplacer("[", `\[`, "]", `\]`, "{", `\{`, "}", `\}`)

func compilePattern(pattern string) itemPattern {
	pattern = strings.TrimPrefix(strings.ReplaceAll(pattern, `\`, "/"), "./")
	return itemPattern{pattern: globMeta.Replace(strings.ToLower(pattern))}
}

func (p itemPattern) match(rel string) bool {
	ok, err := doublestar.Match(p.pattern, strings.ToLower(rel))
	return err == nil && ok
}

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

func compileAll(patterns []string) []itemPattern {
	out := make([]itemPattern, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, compilePattern(p))
	}
	return out
}

func matchAny(patterns []itemPattern, rel string) bool {
	for _, p := range patterns {
		if p.match(rel) {
			return true
		}
	}
	return false
}

var (
	_ solution.Workspace   = (*Workspace)(nil)
	_ solution.Compilation = (*Compilation)(nil)
	_ solution.Document    = (*Document)(nil)
)
