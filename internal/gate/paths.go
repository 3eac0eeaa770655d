package gate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"

	"github.com/hiroakis/scanledger/internal/config"
)

// Path predicate failures. These surface as the Detail of a
// *ValidationError with kind ErrCustomCheck.
var (
	// ErrPathTraversal marks a path containing a parent-directory
	// segment. Traversal is rejected on the raw path, before cleaning,
	// so "docs/../../x" cannot launder itself into an allowed prefix.
	ErrPathTraversal = errors.New("path contains parent-directory traversal")

	// ErrExtensionNotAllowed marks a path with a disallowed extension.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")

	// ErrOutsideAllowedDirs marks a path resolving outside every
	// allow-listed directory.
	ErrOutsideAllowedDirs = errors.New("path outside allowed directories")

	// ErrInvalidItemCode marks an identifier that is not a 10-character
	// uppercase alphanumeric code.
	ErrInvalidItemCode = errors.New("invalid item code")
)

// ExportExtension is the only extension accepted for export targets.
const ExportExtension = ".xlsx"

// SourceDirs returns the directories a source file (store mapping, item
// list) may live in: the application's private data directory plus the
// user-visible documents, downloads, and desktop directories.
func SourceDirs() []string {
	return []string{
		config.DataDir(),
		xdg.UserDirs.Documents,
		xdg.UserDirs.Download,
		xdg.UserDirs.Desktop,
	}
}

// ExportDirs returns the directories an export target may live in.
// The application-private data directory is deliberately excluded:
// exports must land somewhere the user can see.
func ExportDirs() []string {
	return []string{
		xdg.UserDirs.Documents,
		xdg.UserDirs.Download,
		xdg.UserDirs.Desktop,
	}
}

// CheckPath validates one caller-supplied path against an extension
// allow-list and a directory allow-list. It rejects parent-directory
// traversal segments in the raw input, requires the extension to match
// one of exts (case-insensitive), and requires the resolved absolute
// path to fall under one of dirs.
func CheckPath(path string, exts, dirs []string) error {
	if path == "" {
		return ErrOutsideAllowedDirs
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return ErrPathTraversal
		}
	}

	ext := filepath.Ext(path)
	allowed := false
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if underDir(abs, dir) {
			return nil
		}
	}
	return ErrOutsideAllowedDirs
}

// underDir reports whether abs falls under dir.
func underDir(abs, dir string) bool {
	dir = filepath.Clean(dir)
	if abs == dir {
		return true
	}
	return strings.HasPrefix(abs, dir+string(filepath.Separator))
}

// SourceFileCheck returns a predicate validating a source-file path
// against the given extensions and the source directory allow-list.
// The dirs argument exists for tests; pass nil to use SourceDirs.
func SourceFileCheck(exts []string, dirs []string) func(any) error {
	return pathCheck(exts, dirs, SourceDirs)
}

// ExportPathCheck returns a predicate validating an export target path.
// Extension is locked to the spreadsheet format; directories are the
// user-visible set only. Pass nil dirs to use ExportDirs.
func ExportPathCheck(dirs []string) func(any) error {
	return pathCheck([]string{ExportExtension}, dirs, ExportDirs)
}

// pathCheck builds a path predicate over a directory set, falling back
// to defaultDirs() when dirs is nil.
func pathCheck(exts, dirs []string, defaultDirs func() []string) func(any) error {
	return func(value any) error {
		path, ok := value.(string)
		if !ok {
			return errors.New("path must be a string")
		}
		allowed := dirs
		if allowed == nil {
			allowed = defaultDirs()
		}
		return CheckPath(path, exts, allowed)
	}
}

// itemCodePattern matches exactly 10 uppercase alphanumeric characters.
var itemCodePattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidItemCode reports whether code is a well-formed item identifier.
func ValidItemCode(code string) bool {
	return itemCodePattern.MatchString(code)
}

// ItemCodeCheck is a predicate for item identifier fields. It sanitizes
// codes before they are trusted elsewhere in the system.
func ItemCodeCheck(value any) error {
	code, ok := value.(string)
	if !ok {
		return errors.New("item code must be a string")
	}
	if !ValidItemCode(code) {
		return fmt.Errorf("%w: %q", ErrInvalidItemCode, code)
	}
	return nil
}
