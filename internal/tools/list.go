// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// list.go implements directory listing and file counting.
package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/fscout/internal/util"
)

// NormalizeExtension canonicalizes an extension filter: lowercased, with a
// leading dot. "txt" and ".txt" are the same filter; an empty string means
// no filtering.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// matchesExtension reports whether a file name carries the given normalized
// extension. Comparison is case-insensitive; an empty filter matches all.
func matchesExtension(name, normalizedExt string) bool {
	if normalizedExt == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), normalizedExt)
}

// ListFiles returns the regular files under dir, sorted lexicographically.
// Paths in the result are slash-separated and relative to dir, so the
// caller sees the same names it would pass back to ReadFile.
//
// With recursive false only direct children are listed. With recursive
// true the whole subtree is walked; directories that cannot be read are
// skipped rather than failing the listing. Symlinks and other non-regular
// entries are never listed.
//
// The extension filter accepts "txt" or ".txt" interchangeably and
// matches case-insensitively. An empty filter returns every file.
func (w *Workspace) ListFiles(dir, extension string, recursive bool) ([]string, error) {
	resolved, err := w.Resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(dir, "directory")
		}
		return nil, NewNotFoundError(dir, "directory")
	}
	if !info.IsDir() {
		return nil, NewNotFoundError(dir, "directory")
	}

	ext := NormalizeExtension(extension)

	var files []string
	if recursive {
		files, err = listRecursive(resolved, ext)
	} else {
		files, err = listFlat(resolved, ext)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// CountFiles returns the number of files ListFiles would report for the
// same arguments. The two operations share one implementation so a count
// can never disagree with the listing it summarizes.
func (w *Workspace) CountFiles(dir, extension string, recursive bool) (int, error) {
	files, err := w.ListFiles(dir, extension, recursive)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// listFlat lists regular files directly inside dir.
func listFlat(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewNotReadableError(dir, "cannot read directory")
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if matchesExtension(entry.Name(), ext) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// listRecursive walks the subtree under dir collecting regular files.
// Unreadable subdirectories are skipped so one bad permission bit does
// not hide the rest of the tree.
func listRecursive(dir, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable entries, keep walking
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !matchesExtension(d.Name(), ext) {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, NewNotReadableError(dir, "cannot walk directory")
	}

	return files, nil
}

// =============================================================================
// EXECUTORS
// =============================================================================

// listShowLimit is the most paths a listing prints in full. Larger
// listings keep the first listShowLimit entries and close with a
// per-extension summary instead.
const listShowLimit = 50

// ListExecutor handles list_files calls.
type ListExecutor struct {
	Workspace *Workspace
}

// Execute lists files and renders them one path per line.
func (e *ListExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	dir := getStringParam(params, "directory", ".")
	extension := getStringParam(params, "extension", "")
	recursive := getBoolParam(params, "recursive", false)

	files, err := e.Workspace.ListFiles(dir, extension, recursive)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}

	return Result{
		Success:      true,
		Output:       formatListing(dir, files),
		Truncated:    len(files) > listShowLimit,
		FilesMatched: len(files),
	}, nil
}

// CountExecutor handles count_files calls.
type CountExecutor struct {
	Workspace *Workspace
}

// Execute counts files and returns the bare number, so the model can use
// it directly in an answer.
func (e *CountExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	dir := getStringParam(params, "directory", ".")
	extension := getStringParam(params, "extension", "")
	recursive := getBoolParam(params, "recursive", false)

	count, err := e.Workspace.CountFiles(dir, extension, recursive)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}

	return Result{
		Success:      true,
		Output:       util.IntToStr(count),
		FilesMatched: count,
	}, nil
}

// formatListing renders a file list for the agent. Small listings are
// printed in full; large ones are capped at listShowLimit paths and
// followed by a per-extension breakdown so the model still sees the
// shape of the directory.
func formatListing(dir string, files []string) string {
	if len(files) == 0 {
		return fmt.Sprintf("No files found in '%s'.", dir)
	}

	var sb strings.Builder
	shown := files
	if len(files) > listShowLimit {
		shown = files[:listShowLimit]
	}
	for _, f := range shown {
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	if rest := len(files) - len(shown); rest > 0 {
		sb.WriteString(fmt.Sprintf("... and %d more files\n\n", rest))
		sb.WriteString(formatExtensionSummary(files))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatExtensionSummary breaks a listing down by extension, most common
// first.
func formatExtensionSummary(files []string) string {
	counts := make(map[string]int)
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext == "" {
			ext = "(no extension)"
		}
		counts[ext]++
	}

	exts := make([]string, 0, len(counts))
	width := 0
	for ext := range counts {
		exts = append(exts, ext)
		if w := util.StringWidth(ext); w > width {
			width = w
		}
	}
	sort.Slice(exts, func(i, j int) bool {
		if counts[exts[i]] != counts[exts[j]] {
			return counts[exts[i]] > counts[exts[j]]
		}
		return exts[i] < exts[j]
	})

	var sb strings.Builder
	sb.WriteString("By extension:\n")
	for _, ext := range exts {
		sb.WriteString("  ")
		sb.WriteString(util.PadRight(ext, width))
		sb.WriteString("  ")
		sb.WriteString(util.IntToStr(counts[ext]))
		sb.WriteString("\n")
	}
	return sb.String()
}
