// Package pathutil provides identifier normalization and manipulation
// utilities for flat object keys that emulate a folder hierarchy.
//
// Identifiers never carry a leading slash, except the root folder which is
// the single identifier "/". A trailing slash marks a folder identifier.
package pathutil

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/jmgilman/objfs/errors"
)

const (
	// Root is the identifier of the root folder.
	Root = "/"

	// Separator separates the segments of an identifier.
	Separator = "/"
)

// invalidNameChars matches everything except ".", "-", 0-9, A-Z, a-z and
// characters from U+00C0 upwards. "_" is matched too, which is harmless.
var invalidNameChars = regexp.MustCompile(`[\x00-\x2C/\x3A-\x3F\x5B-\x60\x7B-\x{BF}]`)

// Normalize collapses repeated separators and strips leading separators
// unless the identifier is the root. It is idempotent.
func Normalize(id string) string {
	for strings.Contains(id, "//") {
		id = strings.ReplaceAll(id, "//", Separator)
	}
	if id == Root {
		return id
	}
	return strings.TrimLeft(id, Separator)
}

// IsRoot reports whether id denotes the root folder.
func IsRoot(id string) bool {
	return id == Root || id == ""
}

// IsFolder reports whether id is a folder-class identifier.
func IsFolder(id string) bool {
	return strings.HasSuffix(id, Separator)
}

// ParentOf returns the folder identifier containing id. Children of the root
// have the root as parent, and the root is its own parent.
func ParentOf(id string) string {
	trimmed := strings.TrimRight(id, Separator)
	if trimmed == "" {
		return Root
	}
	dir := path.Dir(trimmed)
	if dir == "." {
		dir = ""
	}
	return strings.TrimRight(dir, Separator) + Separator
}

// FolderIdentifierForFile is ParentOf under the name used by callers that
// resolve the folder of a file.
func FolderIdentifierForFile(id string) string {
	return ParentOf(id)
}

// Basename returns the last segment of id without any trailing separator.
func Basename(id string) string {
	trimmed := strings.TrimRight(id, Separator)
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}

// JoinFolder builds the folder identifier for name inside parent.
func JoinFolder(parent, name string) string {
	return Normalize(FolderPrefix(parent) + strings.Trim(name, Separator) + Separator)
}

// JoinFile builds the file identifier for name inside parent.
func JoinFile(parent, name string) string {
	return Normalize(FolderPrefix(parent) + name)
}

// FolderPrefix returns the listing prefix of a folder identifier. The root
// maps to the empty prefix and every other folder ends with a separator.
func FolderPrefix(folder string) string {
	folder = Normalize(folder)
	if IsRoot(folder) {
		return ""
	}
	return strings.TrimRight(folder, Separator) + Separator
}

// Rebase maps id from below the source prefix to below the target prefix.
func Rebase(id, source, target string) string {
	return target + strings.TrimPrefix(id, source)
}

// IsWithin reports whether id lies strictly below folder.
func IsWithin(folder, id string) bool {
	prefix := FolderPrefix(folder)
	id = Normalize(id)
	if IsRoot(id) {
		return false
	}
	return strings.HasPrefix(id, prefix) && id != prefix
}

// SanitizeFileName replaces characters that are not allowed in file names
// with "_" and strips trailing dots.
func SanitizeFileName(name string) (string, error) {
	sanitized := invalidNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	sanitized = strings.TrimRight(sanitized, ".")
	if sanitized == "" {
		return "", errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "file name %q is invalid", name),
			"name", name,
		)
	}
	return sanitized, nil
}

// CheckFileName rejects names that cannot be stored as a single segment:
// empty names, dot segments and names with separators or control characters.
func CheckFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return errors.WithContext(errors.Newf(errors.CodeInvalidInput, "invalid file name %q", name), "name", name)
	}
	for _, r := range name {
		if r == '/' || r < 0x20 || r == 0x7F {
			return errors.WithContext(
				errors.Newf(errors.CodeInvalidInput, "invalid characters in file name %q", name),
				"name", name,
			)
		}
	}
	return nil
}

// EscapeKey escapes each segment of key for use in a URL path.
func EscapeKey(key string) string {
	parts := strings.Split(key, Separator)
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, Separator)
}
