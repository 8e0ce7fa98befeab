// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// =============================================================================
// WORKSPACE CONSTRUCTION TESTS
// =============================================================================

func TestNewWorkspace(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		tempDir := t.TempDir()

		ws, err := NewWorkspace(tempDir)
		if err != nil {
			t.Fatalf("NewWorkspace(%q) unexpected error: %v", tempDir, err)
		}
		if !filepath.IsAbs(ws.Root()) {
			t.Errorf("Root() = %q, want absolute path", ws.Root())
		}
	})

	t.Run("empty root", func(t *testing.T) {
		_, err := NewWorkspace("")
		if !IsInvalidArgument(err) {
			t.Errorf("NewWorkspace(\"\") error = %v, want InvalidArgument", err)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "does-not-exist")
		_, err := NewWorkspace(missing)
		if !IsNotFound(err) {
			t.Errorf("NewWorkspace(%q) error = %v, want NotFound", missing, err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		tempDir := t.TempDir()
		file := filepath.Join(tempDir, "file.txt")
		if err := os.WriteFile(file, []byte("content"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		_, err := NewWorkspace(file)
		if !IsInvalidArgument(err) {
			t.Errorf("NewWorkspace(%q) error = %v, want InvalidArgument", file, err)
		}
	})

	t.Run("symlinked root resolves to target", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("Symlink creation requires admin on Windows")
		}

		tempDir := t.TempDir()
		real := filepath.Join(tempDir, "real")
		if err := os.Mkdir(real, 0755); err != nil {
			t.Fatalf("Mkdir failed: %v", err)
		}
		link := filepath.Join(tempDir, "link")
		if err := os.Symlink(real, link); err != nil {
			t.Skip("Cannot create symlinks, skipping test")
		}

		ws, err := NewWorkspace(link)
		if err != nil {
			t.Fatalf("NewWorkspace(%q) unexpected error: %v", link, err)
		}

		resolved, err := filepath.EvalSymlinks(real)
		if err != nil {
			t.Fatalf("EvalSymlinks failed: %v", err)
		}
		if ws.Root() != resolved {
			t.Errorf("Root() = %q, want %q", ws.Root(), resolved)
		}
	})
}

// =============================================================================
// PATH RESOLUTION TESTS
// =============================================================================

func TestResolve(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ws, err := NewWorkspace(tempDir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		wantErr     bool
		wantInvalid bool
	}{
		{
			name: "relative path inside",
			path: "a.txt",
		},
		{
			name: "nested relative path",
			path: "sub/file.txt",
		},
		{
			name: "dot resolves to root",
			path: ".",
		},
		{
			name: "missing file inside still resolves",
			path: "nope.txt",
		},
		{
			name:        "empty path",
			path:        "",
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "whitespace only path",
			path:        "   ",
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "dot-dot escape",
			path:        "../outside.txt",
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "embedded traversal",
			path:        "sub/../../../etc/passwd",
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "absolute path outside root",
			path:        "/etc/passwd",
			wantErr:     true,
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := ws.Resolve(tt.path)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Resolve(%q) expected error, got %q", tt.path, resolved)
					return
				}
				if tt.wantInvalid && !IsInvalidArgument(err) {
					t.Errorf("Resolve(%q) error = %v, want InvalidArgument", tt.path, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Resolve(%q) unexpected error: %v", tt.path, err)
				return
			}
			if !filepath.IsAbs(resolved) {
				t.Errorf("Resolve(%q) = %q, want absolute path", tt.path, resolved)
			}
			if !isPathWithinDir(resolved, ws.Root()) {
				t.Errorf("Resolve(%q) = %q, escapes root %q", tt.path, resolved, ws.Root())
			}
		})
	}
}

func TestResolveAbsoluteInsideRoot(t *testing.T) {
	tempDir := t.TempDir()
	ws, err := NewWorkspace(tempDir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	inside := filepath.Join(ws.Root(), "file.txt")
	resolved, err := ws.Resolve(inside)
	if err != nil {
		t.Fatalf("Resolve(%q) unexpected error: %v", inside, err)
	}
	if resolved != inside {
		t.Errorf("Resolve(%q) = %q, want %q", inside, resolved, inside)
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Symlink creation requires admin on Windows")
	}

	base := t.TempDir()
	wsDir := filepath.Join(base, "ws")
	if err := os.Mkdir(wsDir, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	// Secret lives next to the workspace, not inside it.
	secret := filepath.Join(base, "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	link := filepath.Join(wsDir, "link.txt")
	if err := os.Symlink(secret, link); err != nil {
		t.Skip("Cannot create symlinks, skipping test")
	}

	ws, err := NewWorkspace(wsDir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	if _, err := ws.Resolve("link.txt"); !IsInvalidArgument(err) {
		t.Errorf("Resolve through escaping symlink error = %v, want InvalidArgument", err)
	}
}

func TestResolveSymlinkInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Symlink creation requires admin on Windows")
	}

	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "target.txt")
	if err := os.WriteFile(target, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(tempDir, "alias.txt")); err != nil {
		t.Skip("Cannot create symlinks, skipping test")
	}

	ws, err := NewWorkspace(tempDir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	resolved, err := ws.Resolve("alias.txt")
	if err != nil {
		t.Fatalf("Resolve(alias.txt) unexpected error: %v", err)
	}
	if !strings.HasSuffix(resolved, "target.txt") {
		t.Errorf("Resolve(alias.txt) = %q, want path ending in target.txt", resolved)
	}
}

func TestRel(t *testing.T) {
	tempDir := t.TempDir()
	ws, err := NewWorkspace(tempDir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	abs := filepath.Join(ws.Root(), "sub", "deep", "file.txt")
	if got := ws.Rel(ws.Root(), abs); got != "sub/deep/file.txt" {
		t.Errorf("Rel() = %q, want %q", got, "sub/deep/file.txt")
	}
}

// =============================================================================
// CONTAINMENT HELPER TESTS
// =============================================================================

func TestIsPathWithinDir(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		dir    string
		within bool
	}{
		{
			name:   "path within directory",
			path:   "/data/ws/file.txt",
			dir:    "/data/ws",
			within: true,
		},
		{
			name:   "exact directory match",
			path:   "/data/ws",
			dir:    "/data/ws",
			within: true,
		},
		{
			name:   "sibling with shared prefix",
			path:   "/data/wsEVIL/file.txt",
			dir:    "/data/ws",
			within: false,
		},
		{
			name:   "sibling with numeric suffix",
			path:   "/data/ws2/secrets.txt",
			dir:    "/data/ws",
			within: false,
		},
		{
			name:   "completely different directory",
			path:   "/etc/passwd",
			dir:    "/data/ws",
			within: false,
		},
		{
			name:   "nested directory within",
			path:   "/data/ws/a/b/c.txt",
			dir:    "/data/ws",
			within: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isPathWithinDir(tt.path, tt.dir)
			if result != tt.within {
				t.Errorf("isPathWithinDir(%q, %q) = %v, want %v", tt.path, tt.dir, result, tt.within)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix path tests on Windows")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean path",
			input:    "/data/ws/project",
			expected: "/data/ws/project",
		},
		{
			name:     "double slashes",
			input:    "/data//ws//project",
			expected: "/data/ws/project",
		},
		{
			name:     "dot segments",
			input:    "/data/ws/./project",
			expected: "/data/ws/project",
		},
		{
			name:     "parent traversal cleaned",
			input:    "/data/ws/../ws/project",
			expected: "/data/ws/project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.input)
			if result != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
