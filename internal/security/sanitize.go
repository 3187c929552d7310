// Package security holds the checks applied to user-supplied names, paths,
// content types and secrets before they reach storage.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rohits-web03/sharelink/internal/common"
)

const (
	// MaxFilenameLength is measured in bytes.
	MaxFilenameLength = 255
	// UnnamedFile replaces names that sanitize to nothing.
	UnnamedFile = "unnamed_file"

	maxPreservedExtension = 32
)

// SanitizeFilename makes a client-supplied name safe to store and echo back.
// In a single left-to-right pass every ".." pair is dropped and every "/" or
// "\" becomes "_". The result is cut to MaxFilenameLength bytes keeping the
// extension when it is short enough. The function is idempotent.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '.' && i+1 < len(name) && name[i+1] == '.':
			i++
		case c == '/' || c == '\\':
			b.WriteByte('_')
		default:
			b.WriteByte(c)
		}
	}
	out := truncateName(b.String())
	if out == "" {
		return UnnamedFile
	}
	return out
}

func truncateName(s string) string {
	if len(s) <= MaxFilenameLength {
		return s
	}
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || len(s)-dot-1 > maxPreservedExtension {
		return cutUTF8(s, MaxFilenameLength)
	}
	ext := s[dot+1:]
	base := cutUTF8(s[:dot], MaxFilenameLength-len(ext)-1)
	// a trailing dot would join the separator into a new ".."
	base = strings.TrimRight(base, ".")
	return base + "." + ext
}

// cutUTF8 shortens s to at most n bytes without splitting a rune.
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ValidateSharedPath resolves rel inside base and returns the absolute path.
// It fails with common.ErrPathTraversal when rel contains ".." or resolves
// outside base (symlinks included), and with common.ErrNotFound when the
// target does not exist.
func ValidateSharedPath(base, rel string) (string, error) {
	if strings.Contains(rel, "..") {
		return "", common.ErrPathTraversal
	}
	root, err := canonicalRoot(base)
	if err != nil {
		return "", err
	}

	rel = strings.TrimLeft(filepath.FromSlash(rel), string(filepath.Separator))
	joined := filepath.Clean(filepath.Join(root, rel))
	if !isWithin(root, joined) {
		return "", common.ErrPathTraversal
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("resolve shared path: %w", err)
	}
	if !isWithin(root, resolved) {
		return "", common.ErrPathTraversal
	}
	return joined, nil
}

// RelativeDepth counts the path segments of rel below the base.
func RelativeDepth(rel string) int {
	rel = strings.Trim(filepath.ToSlash(filepath.Clean("/"+rel)), "/")
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

func canonicalRoot(base string) (string, error) {
	if base == "" {
		return "", errors.New("shared base directory is not configured")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve shared base: %w", err)
	}
	return filepath.Clean(root), nil
}

// isWithin is a separator-aware prefix check so that /data/shared2 is not
// treated as inside /data/shared.
func isWithin(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if root == candidate {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}
