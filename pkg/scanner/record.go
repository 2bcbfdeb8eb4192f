package scanner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/slngraph/pkg/errors"
)

// ProjectRecord is what the scanner learned about one project.
type ProjectRecord struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	// Dependencies holds reference display names in discovery order.
	// Duplicates are kept; the graph builder collapses them.
	Dependencies []string `json:"dependencies"`
	// DeclaredTypes holds class-like type names across all documents.
	DeclaredTypes []string `json:"declared_types,omitempty"`
}

// ScanError reports a single project that could not be scanned.
type ScanError struct {
	Project string `json:"project"`
	Path    string `json:"path"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("scan %s: %v", e.Project, e.Err)
	}
	return fmt.Sprintf("scan %s (%s): %v", e.Project, e.Path, e.Err)
}

// Unwrap returns the PROJECT_LOAD error wrapping the cause.
func (e *ScanError) Unwrap() error { return e.Err }

func newScanError(name, path string, cause error, format string, args ...any) *ScanError {
	return &ScanError{
		Project: name,
		Path:    path,
		Err:     errors.Wrap(errors.ErrCodeProjectLoad, cause, format, args...),
	}
}

// Result is the outcome of one scan.
type Result struct {
	ID       uuid.UUID
	Solution string
	Records  []ProjectRecord
	Failures []*ScanError
	Started  time.Time
	Duration time.Duration
}
