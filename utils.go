package statica

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// CleanPath converts a URL path into a path relative to the serve root.
// It:
//   - resolves "." and ".." segments lexically, never climbing above the root
//   - collapses repeated slashes
//   - strips the leading slash
//   - returns "." for the root itself
//
// Paths containing NUL bytes or invalid UTF-8 are rejected with ErrInvalidInput.
// The result is still opened through an os.Root, so symlinks cannot escape either.
func CleanPath(p string) (string, error) {
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("clean path: %w: invalid utf-8", ErrInvalidInput)
	}

	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("clean path: %w: contains NUL", ErrInvalidInput)
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return ".", nil
	}

	return cleaned, nil
}
