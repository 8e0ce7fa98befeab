// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// search.go implements case-insensitive keyword search across text files.
package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/fscout/internal/util"
)

const (
	// previewMaxRunes bounds the preview attached to each match.
	previewMaxRunes = 160

	// previewContextRunes is how far before the first occurrence the
	// preview window starts, so the keyword lands mid-window rather
	// than at the right edge.
	previewContextRunes = 60

	// searchMaxLineBytes is the scanner's line limit. Lines longer than
	// this make the file unscannable and the file is skipped.
	searchMaxLineBytes = 1024 * 1024
)

// Match is a single search hit: the file it occurred in, the 1-based
// line number of the first occurrence, and a short preview of that line.
type Match struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

// SearchFiles scans every regular file under dir for keyword and returns
// one Match per file that contains it, sorted by path. Matching is
// case-insensitive and NFKC-normalized, so composed and decomposed
// spellings of the same text compare equal. Files that cannot be opened
// or decoded as text are skipped rather than failing the whole search.
func (w *Workspace) SearchFiles(dir, keyword string, recursive bool) ([]Match, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, NewInvalidArgumentError("keyword", "", "keyword cannot be empty")
	}

	resolved, err := w.Resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, NewNotFoundError(dir, "directory")
	}
	if !info.IsDir() {
		return nil, NewNotFoundError(dir, "directory")
	}

	// Walk with the same policy as ListFiles so the set of files
	// searched never drifts from the set of files listed.
	var candidates []string
	if recursive {
		candidates, err = listRecursive(resolved, "")
	} else {
		candidates, err = listFlat(resolved, "")
	}
	if err != nil {
		return nil, err
	}

	normalized := normalizeKeyword(keyword)
	lowered := strings.ToLower(keyword)

	var matches []Match
	for _, rel := range candidates {
		full := filepath.Join(resolved, filepath.FromSlash(rel))
		m, ok := searchFile(full, normalized, lowered)
		if !ok {
			continue
		}
		m.Path = rel
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})

	return matches, nil
}

// normalizeKeyword folds text for matching: NFKC normalization first,
// then lowercasing, so "ﬁle" matches "file" and "FILE" matches "file".
func normalizeKeyword(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// searchFile scans one file for the normalized keyword and returns the
// first matching line. Unreadable and binary files report no match.
func searchFile(path, normalizedKeyword, loweredKeyword string) (Match, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Match{}, false
	}
	defer f.Close()

	if isBinaryFromHandle(f) {
		return Match{}, false
	}
	if _, err := f.Seek(0, 0); err != nil {
		return Match{}, false
	}

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, searchMaxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.Contains(normalizeKeyword(line), normalizedKeyword) {
			return Match{
				Line:    lineNum,
				Preview: makePreview(line, loweredKeyword),
			}, true
		}
	}

	// Scanner errors (token too long, read failures) skip the file.
	return Match{}, false
}

// makePreview trims the matched line and, when it is longer than the
// preview budget, centers a window around the first occurrence of the
// keyword with ellipses marking elided text on either side.
func makePreview(line, loweredKeyword string) string {
	trimmed := strings.TrimSpace(line)
	if util.RuneLen(trimmed) <= previewMaxRunes {
		return trimmed
	}

	idx := strings.Index(strings.ToLower(trimmed), loweredKeyword)
	if idx < 0 {
		// The occurrence only exists under NFKC normalization, so
		// there is no byte offset to center on. Take the head.
		return util.TruncateRunes(trimmed, previewMaxRunes)
	}

	runeIdx := utf8.RuneCountInString(trimmed[:idx])
	start := runeIdx - previewContextRunes
	if start < 0 {
		start = 0
	}

	excerpt := util.SafeSubstring(trimmed, start, start+previewMaxRunes)
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if start+previewMaxRunes < util.RuneLen(trimmed) {
		excerpt = excerpt + "..."
	}
	return excerpt
}

// =============================================================================
// EXECUTOR
// =============================================================================

// SearchExecutor handles search_files calls.
type SearchExecutor struct {
	Workspace *Workspace
}

// Execute searches and renders matches as path:line: preview lines.
func (e *SearchExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	dir := getStringParam(params, "directory", ".")
	keyword := getStringParam(params, "keyword", "")
	recursive := getBoolParam(params, "recursive", false)

	matches, err := e.Workspace.SearchFiles(dir, keyword, recursive)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}

	if len(matches) == 0 {
		return Result{
			Success: true,
			Output:  fmt.Sprintf("No matches found for '%s'.", keyword),
		}, nil
	}

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("%s:%d: %s\n", m.Path, m.Line, m.Preview))
	}

	return Result{
		Success:      true,
		Output:       strings.TrimRight(sb.String(), "\n"),
		MatchCount:   len(matches),
		FilesMatched: len(matches),
	}, nil
}
