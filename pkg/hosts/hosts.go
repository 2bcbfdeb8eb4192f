// Package hosts opens a solution from a path by picking the matching
// adapter.
//
// Recognized inputs, in order of preference when a directory is given:
//
//	*.sln, *.slnx   Visual Studio solutions (msbuild workspace)
//	go.work, go.mod Go workspaces
//	Cargo.toml      Cargo workspaces
package hosts

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
	"github.com/matzehuels/slngraph/pkg/solution/cargo"
	"github.com/matzehuels/slngraph/pkg/solution/gowork"
	"github.com/matzehuels/slngraph/pkg/solution/msbuild"
	"github.com/matzehuels/slngraph/pkg/solution/vs"
)

// Kind names a detected host type.
type Kind string

const (
	KindVisualStudio Kind = "visualstudio"
	KindGo           Kind = "go"
	KindCargo        Kind = "cargo"
)

// Opener opens solutions. Workspaces are shared between calls, so
// reopening the same solution (a rescan) reuses parsed project files that
// have not changed.
type Opener struct {
	logger  *log.Logger
	msbuild *msbuild.Workspace
	gowork  *gowork.Workspace
	cargo   *cargo.Workspace
}

// NewOpener creates an opener. projectCacheSize bounds the msbuild parse
// cache; zero means the default.
func NewOpener(logger *log.Logger, projectCacheSize int) (*Opener, error) {
	if logger == nil {
		logger = log.Default()
	}
	ws, err := msbuild.NewWorkspace(logger, projectCacheSize)
	if err != nil {
		return nil, err
	}
	return &Opener{
		logger:  logger,
		msbuild: ws,
		gowork:  gowork.NewWorkspace(),
		cargo:   cargo.NewWorkspace(),
	}, nil
}

// Open detects and opens the solution at path. A directory is searched
// (non-recursively) for a supported solution file.
func (o *Opener) Open(path string) (solution.Host, Kind, error) {
	if err := errors.ValidateSolutionPath(path); err != nil {
		return solution.Host{}, "", err
	}
	file, err := Detect(path)
	if err != nil {
		return solution.Host{}, "", err
	}
	kind, _ := kindOf(file)
	o.logger.Debug("opening solution", "path", file, "host", kind)

	switch kind {
	case KindVisualStudio:
		sol, err := vs.Open(file)
		if err != nil {
			return solution.Host{}, "", err
		}
		return solution.Host{Solution: sol, Workspace: o.msbuild}, kind, nil
	case KindGo:
		sol, err := gowork.Open(file)
		if err != nil {
			return solution.Host{}, "", err
		}
		return solution.Host{Solution: sol, Workspace: o.gowork}, kind, nil
	default:
		sol, err := cargo.Open(file)
		if err != nil {
			return solution.Host{}, "", err
		}
		return solution.Host{Solution: sol, Workspace: o.cargo}, kind, nil
	}
}

// Detect resolves path to a solution file. Files must have a supported
// name; directories are searched for one.
func Detect(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
		}
		return "", errors.Wrap(errors.ErrCodeHostUnavailable, err, "stat %s", path)
	}
	if !fi.IsDir() {
		if _, ok := kindOf(path); !ok {
			return "", errors.New(errors.ErrCodeUnsupported,
				"%s is not a supported solution (.sln, .slnx, go.work, go.mod, Cargo.toml)", path)
		}
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeHostUnavailable, err, "read directory %s", path)
	}
	var best string
	bestRank := len(preference)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if r := rank(e.Name()); r < bestRank {
			best, bestRank = e.Name(), r
		}
	}
	if best == "" {
		return "", errors.New(errors.ErrCodeUnsupported, "no solution file found in %s", path)
	}
	return filepath.Join(path, best), nil
}

// preference orders solution file names when a directory holds several.
var preference = []string{".sln", ".slnx", "go.work", "go.mod", "Cargo.toml"}

func rank(name string) int {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".sln" || ext == ".slnx" {
		return slices.Index(preference, ext)
	}
	if i := slices.Index(preference, name); i >= 0 {
		return i
	}
	return len(preference)
}

func kindOf(path string) (Kind, bool) {
	switch r := rank(filepath.Base(path)); {
	case r <= 1:
		return KindVisualStudio, true
	case r <= 3:
		return KindGo, true
	case r == 4:
		return KindCargo, true
	}
	return "", false
}
