package solution

// RefKind classifies a reference.
type RefKind string

const (
	RefPackage   RefKind = "package"   // package manager dependency (NuGet, Go module, crate)
	RefAssembly  RefKind = "assembly"  // direct assembly/library reference
	RefProject   RefKind = "project"   // reference to another project of the solution
	RefFramework RefKind = "framework" // shared framework reference
)

// Reference is a single declared dependency of a project.
type Reference struct {
	// Display is the reference name used as the graph vertex.
	Display string
	Kind    RefKind
	Version string
}

// DeclKind classifies a type declaration.
type DeclKind string

const (
	DeclClass     DeclKind = "class"
	DeclStruct    DeclKind = "struct"
	DeclRecord    DeclKind = "record"
	DeclInterface DeclKind = "interface"
	DeclEnum      DeclKind = "enum"
	DeclTrait     DeclKind = "trait"
	DeclUnion     DeclKind = "union"
	DeclType      DeclKind = "type"
)

// IsClassLike reports whether declarations of this kind describe a
// concrete data type (class, struct or record).
func (k DeclKind) IsClassLike() bool {
	switch k {
	case DeclClass, DeclStruct, DeclRecord:
		return true
	}
	return false
}

// Declaration is a named type declared in a document.
type Declaration struct {
	Name string
	Kind DeclKind
}
