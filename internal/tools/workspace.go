// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// workspace.go confines every operation to a single directory subtree.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Workspace anchors all inspection operations to one directory root.
// Every caller-supplied path is resolved against the root and rejected
// if it escapes it, so a hostile or confused caller can never reach
// files outside the subtree the workspace was created for.
type Workspace struct {
	root string // absolute, symlink-resolved
}

// NewWorkspace creates a workspace rooted at the given directory.
// The root must exist and be a directory; it is canonicalized (absolute
// path, symlinks resolved) so later containment checks compare like
// with like.
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		return nil, NewInvalidArgumentError("root", "", "workspace root cannot be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, NewInvalidArgumentError("root", root, fmt.Sprintf("cannot resolve absolute path: %v", err))
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(root, "directory")
		}
		return nil, NewInvalidArgumentError("root", root, fmt.Sprintf("cannot resolve path: %v", err))
	}

	info, err := os.Stat(realRoot)
	if err != nil {
		return nil, NewNotFoundError(root, "directory")
	}
	if !info.IsDir() {
		return nil, NewInvalidArgumentError("root", root, "workspace root is not a directory")
	}

	return &Workspace{root: realRoot}, nil
}

// Root returns the canonical workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// =============================================================================
// PATH RESOLUTION
// =============================================================================

// Resolve validates a caller-supplied path and returns its canonical
// absolute form. Relative paths are interpreted against the workspace
// root. The function:
//
//  1. Rejects empty paths
//  2. Converts to an absolute path under the root
//  3. Resolves symlinks (falling back to the parent directory when the
//     target does not exist yet, so missing files can still be diagnosed
//     as NotFound by the caller)
//  4. Rejects any result outside the root, including ".." traversal and
//     symlinks pointing out of the tree
//
// Resolve does not require the target to exist. Existence and type checks
// belong to the individual operations so they can report NotFound with
// the caller's original spelling of the path.
func (w *Workspace) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", NewInvalidArgumentError("path", "", "path cannot be empty")
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.root, abs)
	}
	abs = filepath.Clean(abs)

	// Resolve symlinks to the real path. This prevents symlink escapes
	// where a link inside the root points outside it.
	realPath, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Target may not exist. Resolve the parent instead and re-attach
		// the final element so containment still checks the real location.
		parent := filepath.Dir(abs)
		realParent, err2 := filepath.EvalSymlinks(parent)
		if err2 != nil {
			realPath = abs
		} else {
			realPath = filepath.Join(realParent, filepath.Base(abs))
		}
	}

	if !isPathWithinDir(realPath, w.root) {
		return "", NewInvalidArgumentError("path", path, "path escapes the workspace root")
	}

	return realPath, nil
}

// Rel converts a canonical absolute path back to the slash-separated form
// relative to base that operations report to callers. Falls back to the
// input when the path cannot be made relative.
func (w *Workspace) Rel(base, abs string) string {
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// =============================================================================
// CONTAINMENT HELPERS
// =============================================================================

// normalizePath normalizes a path for secure comparison.
// Applies filepath.Clean and platform-specific normalization.
func normalizePath(path string) string {
	cleaned := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		// On Windows: lowercase and normalize separators
		return strings.ToLower(filepath.ToSlash(cleaned))
	}
	return cleaned
}

// isPathWithinDir checks if a path is within a directory, ensuring proper
// path boundaries. The separator check prevents /data/setEVIL from passing
// a containment check for /data/set. The path must either:
// 1. Be exactly the directory, OR
// 2. Start with the directory followed by a path separator
func isPathWithinDir(path, dir string) bool {
	normalizedPath := normalizePath(path)
	normalizedDir := normalizePath(dir)

	if normalizedPath == normalizedDir {
		return true
	}

	// normalizePath yields forward slashes on Windows, so "/" is the
	// separator on every platform after normalization.
	dirWithSep := normalizedDir
	if !strings.HasSuffix(dirWithSep, "/") {
		dirWithSep += "/"
	}

	return strings.HasPrefix(normalizedPath, dirWithSep)
}
