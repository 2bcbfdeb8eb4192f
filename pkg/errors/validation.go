package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath validates the path a graph description is written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name an existing directory
//   - Parent directory must exist
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return New(ErrCodeInvalidPath, "output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "output directory %s", dir)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidPath, "output parent %s is not a directory", dir)
	}
	return nil
}

// ValidateSolutionPath validates a solution input path: it must exist.
// Directories are accepted; host detection looks inside them.
func ValidateSolutionPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "solution path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "solution path contains invalid characters")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return New(ErrCodeFileNotFound, "solution %s does not exist", path)
		}
		return Wrap(ErrCodeHostUnavailable, err, "stat %s", path)
	}
	return nil
}
