package scanner

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/observability"
	"github.com/matzehuels/slngraph/pkg/solution"
)

// Scanner produces project records from a solution.
//
// The zero value is not usable; use New.
type Scanner struct {
	Workspace solution.Workspace
	// Workers bounds how many projects are opened at once. Values below 2
	// scan sequentially.
	Workers int
	Logger  *log.Logger
}

// New creates a sequential scanner over ws.
// If logger is nil, log.Default() is used.
func New(ws solution.Workspace, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{Workspace: ws, Workers: 1, Logger: logger}
}

// Scan walks sol and scans every genuine project.
//
// The returned error is non-nil only when the top level cannot be
// enumerated (HOST_UNAVAILABLE) or ctx is done. Per-project failures are in
// Result.Failures.
func (s *Scanner) Scan(ctx context.Context, sol solution.Solution) (*Result, error) {
	if s.Workspace == nil {
		return nil, errors.New(errors.ErrCodeHostUnavailable, "no workspace to open projects of %s", sol.Name())
	}
	res := &Result{ID: uuid.New(), Solution: sol.Name(), Started: time.Now()}
	hooks := observability.Scan()
	hooks.OnScanStart(ctx, sol.Name())

	projects, failures, err := s.collect(ctx, sol)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("enumerated solution", "solution", sol.Name(), "projects", len(projects), "folder_failures", len(failures))

	records, scanFailures, err := s.scanAll(ctx, projects)
	if err != nil {
		return nil, err
	}

	res.Records = records
	res.Failures = append(failures, scanFailures...)
	res.Duration = time.Since(res.Started)
	hooks.OnScanComplete(ctx, sol.Name(), len(res.Records), len(res.Failures), res.Duration)
	return res, nil
}

// collect flattens the solution tree into genuine projects in depth-first
// pre-order.
func (s *Scanner) collect(ctx context.Context, sol solution.Solution) ([]solution.Project, []*ScanError, error) {
	top, err := sol.TopLevel(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, errors.Wrap(errors.ErrCodeHostUnavailable, err, "enumerate projects of %s", sol.Name())
	}

	var (
		projects []solution.Project
		failures []*ScanError
		seen     = make(map[string]bool)
	)

	// LIFO worklist; children are pushed reversed so they pop in order.
	stack := slices.Clone(top)
	slices.Reverse(stack)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}

		if node.Kind() == solution.KindFolder {
			children, err := node.Children(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				s.Logger.Warn("cannot enumerate folder", "folder", node.Name(), "err", err)
				failures = append(failures, newScanError(node.Name(), "", err, "enumerate folder"))
				continue
			}
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
			continue
		}

		if path := node.FilePath(); path != "" {
			if seen[path] {
				s.Logger.Debug("project reachable twice, scanning once", "project", node.Name(), "path", path)
				continue
			}
			seen[path] = true
		}
		projects = append(projects, node)
	}
	return projects, failures, nil
}

// outcome is the per-slot result of scanning one project.
type outcome struct {
	record *ProjectRecord
	err    *ScanError
}

func (s *Scanner) scanAll(ctx context.Context, projects []solution.Project) ([]ProjectRecord, []*ScanError, error) {
	slots := make([]outcome, len(projects))

	if s.Workers < 2 {
		for i, p := range projects {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			out, err := s.scanProject(ctx, p)
			if err != nil {
				return nil, nil, err
			}
			slots[i] = out
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.Workers)
		for i, p := range projects {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				out, err := s.scanProject(gctx, p)
				if err != nil {
					return err
				}
				slots[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	records := make([]ProjectRecord, 0, len(slots))
	var failures []*ScanError
	for _, o := range slots {
		switch {
		case o.err != nil:
			failures = append(failures, o.err)
		case o.record != nil:
			records = append(records, *o.record)
		}
	}
	return records, failures, nil
}

// scanProject opens one project. A non-nil error is returned only for
// cancellation; project failures are reported in the outcome.
func (s *Scanner) scanProject(ctx context.Context, p solution.Project) (outcome, error) {
	start := time.Now()
	rec, scanErr := s.load(ctx, p)
	if scanErr != nil && ctx.Err() != nil {
		return outcome{}, ctx.Err()
	}
	observability.Scan().OnProjectScanned(ctx, p.Name(), time.Since(start), errOrNil(scanErr))

	if scanErr != nil {
		s.Logger.Warn("project scan failed", "project", p.Name(), "path", p.FilePath(), "err", scanErr.Err)
		return outcome{err: scanErr}, nil
	}
	s.Logger.Debug("scanned project",
		"project", rec.Name,
		"dependencies", len(rec.Dependencies),
		"types", len(rec.DeclaredTypes),
		"duration", time.Since(start).Round(time.Millisecond))
	return outcome{record: rec}, nil
}

func (s *Scanner) load(ctx context.Context, p solution.Project) (*ProjectRecord, *ScanError) {
	name, path := p.Name(), p.FilePath()
	if path == "" {
		return nil, newScanError(name, path, stderrors.New("project has no file path"), "open project")
	}

	comp, err := s.Workspace.OpenProject(ctx, path)
	if err != nil {
		return nil, newScanError(name, path, err, "open project")
	}

	rec := &ProjectRecord{Name: name, FilePath: path, Dependencies: []string{}}
	for _, ref := range comp.References() {
		if ref.Display == "" {
			s.Logger.Warn("reference without display name", "project", name, "kind", ref.Kind)
			continue
		}
		rec.Dependencies = append(rec.Dependencies, ref.Display)
	}

	for _, doc := range comp.Documents() {
		if err := ctx.Err(); err != nil {
			return nil, newScanError(name, path, err, "read documents")
		}
		decls, err := doc.Declarations(ctx)
		if err != nil {
			return nil, newScanError(name, path, err, "parse %s", doc.Path())
		}
		for _, d := range decls {
			if d.Kind.IsClassLike() {
				rec.DeclaredTypes = append(rec.DeclaredTypes, d.Name)
			}
		}
	}
	return rec, nil
}

func errOrNil(e *ScanError) error {
	if e == nil {
		return nil
	}
	return e
}
