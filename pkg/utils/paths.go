// =============================================================================
// Sample Sheet Loader - Path Utilities
// =============================================================================
//
// This module provides path handling for the loader, including:
//   - Environment variable and home directory expansion
//   - Resolution of relative paths against a base directory
//   - Readability checks for files and directories
//
// PERMISSIONS:
//   - Files must be readable by the current process
//   - Directories must be readable and executable (traversable)
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnreadable is wrapped by every PathError.
var ErrUnreadable = errors.New("path is not readable")

// PathError reports a path that failed a permission check.
type PathError struct {
	// Path is the absolute path that was checked.
	Path string

	// Reasons lists each failed check, e.g. "does not exist or is not readable".
	Reasons []string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Path, strings.Join(e.Reasons, "; "))
}

// Unwrap allows errors.Is(err, ErrUnreadable).
func (e *PathError) Unwrap() error {
	return ErrUnreadable
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizePath converts a path to an absolute path.
//
// PARAMETERS:
//   - path: The path to normalize. Environment variables ($VAR, ${VAR}) and a
//     leading ~ or ~user are expanded.
//   - baseDir: Directory a relative path is resolved from. When empty, the
//     process working directory is used. A relative baseDir is logged as a
//     warning and used as-is.
//   - checkExists: When true, the result must be readable (and, for
//     directories, executable).
//
// RETURNS:
//   - The absolute path.
//   - A *PathError if checkExists is set and a permission check fails.
func NormalizePath(path, baseDir string, checkExists bool) (string, error) {
	path = ExpandVars(ExpandUser(path))

	if baseDir != "" {
		if !filepath.IsAbs(baseDir) {
			slog.Warn("base directory should be an absolute path",
				"base_dir", baseDir,
			)
		}
		// filepath.Join would glue an absolute path onto the base; keep it as given.
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		path = abs
	}

	if checkExists {
		if err := Readable(path); err != nil {
			return "", err
		}
	}

	return path, nil
}

// Readable checks that path can be read and, if it is a directory, traversed.
// Both checks are performed so that a single error carries every reason.
func Readable(path string) error {
	var reasons []string

	if !canAccess(path, accessRead) {
		reasons = append(reasons, "does not exist or is not readable")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() && !canAccess(path, accessExecute) {
		reasons = append(reasons, "does not have execute permissions")
	}

	if len(reasons) > 0 {
		return &PathError{Path: path, Reasons: reasons}
	}

	return nil
}

// =============================================================================
// EXPANSION HELPERS
// =============================================================================

// ExpandUser replaces a leading "~" or "~user" with the matching home
// directory. Paths that cannot be expanded are returned unchanged.
func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	name, rest, _ := strings.Cut(path[1:], string(filepath.Separator))

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// envReference matches $name and ${...}. Names are ASCII letters, digits
// and underscores.
var envReference = regexp.MustCompile(`\$(\w+|\{[^}]*\})`)

// ExpandVars expands $name and ${name} references to set environment
// variables. Everything else is left exactly as written: unset variables,
// "$$", a lone "$", and an unterminated "${".
func ExpandVars(path string) string {
	if !strings.Contains(path, "$") {
		return path
	}

	return envReference.ReplaceAllStringFunc(path, func(ref string) string {
		name := ref[1:]
		if strings.HasPrefix(name, "{") {
			name = name[1 : len(name)-1]
		}
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ref
	})
}
