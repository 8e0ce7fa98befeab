// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// read.go implements bounded text reads with binary detection.
package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jeranaias/fscout/internal/util"
)

// Default character ceilings for the two excerpt operations.
const (
	// DefaultReadMaxChars bounds read_file output.
	DefaultReadMaxChars = 5000

	// DefaultSummarizeMaxChars bounds summarize_file output. The larger
	// ceiling gives a downstream summarizer more material to work with.
	DefaultSummarizeMaxChars = 10000
)

// Excerpt is the result of reading a file with a character ceiling.
// Content holds at most the requested number of characters; Truncated
// tells the caller whether anything was cut so rendering decisions
// (markers, follow-up reads) stay on their side of the boundary.
type Excerpt struct {
	Path       string    // Path as supplied by the caller
	Content    string    // UTF-8 text, at most the requested rune count
	Truncated  bool      // True when the file holds more than was returned
	TotalChars int       // Rune count of the whole file
	TotalBytes int64     // Byte size on disk
	ModTime    time.Time // Last modification time
}

// ReadFile returns up to maxChars characters of the file's text.
//
// A maxChars of zero returns metadata only (empty Content, Truncated set
// when the file is non-empty). Negative ceilings are rejected with
// InvalidArgument. Missing files report NotFound; directories and binary
// files report NotReadable. Reads always start at the beginning of the
// file; there is no offset state between calls.
func (w *Workspace) ReadFile(path string, maxChars int) (*Excerpt, error) {
	return w.readExcerpt(path, maxChars)
}

// SummarizeFile returns a larger-ceiling excerpt intended as input for a
// caller-supplied summarizer. The truncation contract is identical to
// ReadFile; no model is invoked here.
func (w *Workspace) SummarizeFile(path string, maxChars int) (*Excerpt, error) {
	return w.readExcerpt(path, maxChars)
}

// readExcerpt is the shared implementation behind ReadFile and
// SummarizeFile. It streams the file once, collecting runes until the
// ceiling is reached and counting the rest, so memory stays proportional
// to the ceiling rather than the file size.
func (w *Workspace) readExcerpt(path string, maxChars int) (*Excerpt, error) {
	if maxChars < 0 {
		return nil, NewInvalidArgumentError("max_chars", util.IntToStr(maxChars), "must be zero or positive")
	}

	resolved, err := w.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(path, "file")
		}
		if os.IsPermission(err) {
			return nil, NewNotReadableError(path, "permission denied")
		}
		return nil, NewNotReadableError(path, "cannot open file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, NewNotReadableError(path, "cannot stat file")
	}
	if info.IsDir() {
		return nil, NewNotReadableError(path, "is a directory")
	}

	if isBinaryFromHandle(f) {
		return nil, NewNotReadableError(path, "binary file")
	}
	// Reset file position after binary check
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, NewNotReadableError(path, "cannot rewind file")
	}

	var content strings.Builder
	reader := bufio.NewReaderSize(f, 64*1024)
	total := 0
	for {
		// Invalid bytes decode as U+FFFD, matching decode-with-replacement
		// semantics for mostly-text files.
		r, _, err := reader.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewNotReadableError(path, "read failed")
		}
		total++
		if total <= maxChars {
			content.WriteRune(r)
		}
	}

	// A zero ceiling returns metadata only; any content at all counts
	// as truncated in that case.
	truncated := total > maxChars

	return &Excerpt{
		Path:       path,
		Content:    content.String(),
		Truncated:  truncated,
		TotalChars: total,
		TotalBytes: info.Size(),
		ModTime:    info.ModTime(),
	}, nil
}

// =============================================================================
// BINARY DETECTION
// =============================================================================

// isBinaryFromHandle checks whether an already-opened file is likely binary.
// It reads the first 512 bytes and looks for null bytes or a high
// concentration of undecodable or control content. Decoding is rune-aware
// so multi-byte UTF-8 text (CJK, emoji) is not mistaken for binary.
func isBinaryFromHandle(f *os.File) bool {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false // Empty file or error, assume not binary
	}
	buf = buf[:n]

	// Null bytes are a strong indicator of binary content
	for _, b := range buf {
		if b == 0 {
			return true
		}
	}

	// Decode as UTF-8 and count suspect runes: invalid sequences and
	// control characters other than common whitespace. A valid multi-byte
	// rune clipped at the 512-byte boundary contributes at most a few
	// suspects, far below the threshold.
	suspect := 0
	total := 0
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		total++
		if r == utf8.RuneError && size == 1 {
			suspect++
		} else if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			suspect++
		}
		i += size
	}

	// If more than 30% suspect, likely binary
	return float64(suspect)/float64(total) > 0.30
}

// formatSize formats a byte size in human-readable form.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return util.IntToStr(int(bytes/GB)) + "GB"
	case bytes >= MB:
		return util.IntToStr(int(bytes/MB)) + "MB"
	case bytes >= KB:
		return util.IntToStr(int(bytes/KB)) + "KB"
	default:
		return util.IntToStr(int(bytes)) + "B"
	}
}

// =============================================================================
// EXECUTORS
// =============================================================================

// ReadExecutor handles read_file calls.
type ReadExecutor struct {
	Workspace *Workspace
}

// Execute reads an excerpt and appends a truncation marker when the
// ceiling cut the file short.
func (e *ReadExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	path := getStringParam(params, "file_path", "")
	maxChars := getIntParam(params, "max_chars", DefaultReadMaxChars)
	return executeExcerpt(e.Workspace, path, maxChars)
}

// SummarizeExecutor handles summarize_file calls. It shares the read
// contract but defaults to a larger ceiling.
type SummarizeExecutor struct {
	Workspace *Workspace
}

// Execute reads summary material for the agent to work from.
func (e *SummarizeExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	path := getStringParam(params, "file_path", "")
	maxChars := getIntParam(params, "max_chars", DefaultSummarizeMaxChars)
	return executeExcerpt(e.Workspace, path, maxChars)
}

// executeExcerpt renders an Excerpt as a tool result. A zero ceiling
// reports metadata only; otherwise the content is returned, with a
// marker naming what was cut when the file was longer than the ceiling.
func executeExcerpt(ws *Workspace, path string, maxChars int) (Result, error) {
	excerpt, err := ws.ReadFile(path, maxChars)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}

	output := excerpt.Content
	if maxChars == 0 {
		output = formatExcerptInfo(excerpt)
	} else if excerpt.Truncated {
		output += fmt.Sprintf("\n\n[truncated: showing first %d of %d characters]",
			util.RuneLen(excerpt.Content), excerpt.TotalChars)
	}

	return Result{
		Success:   true,
		Output:    output,
		Truncated: excerpt.Truncated,
		BytesRead: excerpt.TotalBytes,
	}, nil
}

// formatExcerptInfo describes a file without quoting its content.
func formatExcerptInfo(e *Excerpt) string {
	return fmt.Sprintf("%s: %d characters, %s, modified %s",
		e.Path, e.TotalChars, formatSize(e.TotalBytes),
		e.ModTime.Format("2006-01-02 15:04:05"))
}
