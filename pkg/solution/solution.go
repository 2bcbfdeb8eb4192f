package solution

import "context"

// Kind distinguishes buildable projects from grouping nodes.
type Kind int

const (
	// KindProject is a buildable project with references and sources.
	KindProject Kind = iota
	// KindFolder is a grouping node (e.g. a solution folder). It has no
	// references of its own; its children are enumerated with Children.
	KindFolder
)

// String returns "project" or "folder".
func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "project"
}

// Project is one node of a solution tree.
type Project interface {
	// Name is the human-readable project name. Names may repeat across
	// folders.
	Name() string
	// FilePath is the absolute path of the project definition file. Empty
	// for folders.
	FilePath() string
	// Kind reports whether the node is a project or a folder.
	Kind() Kind
	// Children returns the nodes nested under a folder, in host order.
	// Projects return nil.
	Children(ctx context.Context) ([]Project, error)
}

// Solution is a loaded solution: an ordered collection of top-level nodes.
type Solution interface {
	Name() string
	FilePath() string
	TopLevel(ctx context.Context) ([]Project, error)
}

// Workspace opens the compiled representation of a project file.
type Workspace interface {
	OpenProject(ctx context.Context, path string) (Compilation, error)
}

// Compilation exposes what a workspace learned about one project.
type Compilation interface {
	// References returns declared references in declaration order.
	// Duplicates are preserved.
	References() []Reference
	// Documents returns the project's source documents.
	Documents() []Document
}

// Document is a single source file of a compilation.
type Document interface {
	Path() string
	// Declarations returns every type declaration found in the document,
	// nested declarations included, in source order.
	Declarations(ctx context.Context) ([]Declaration, error)
}

// Host bundles both halves of an opened solution: the tree and the
// workspace able to open its projects.
type Host struct {
	Solution  Solution
	Workspace Workspace
}
