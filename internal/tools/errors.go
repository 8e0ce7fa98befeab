// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// errors.go defines the error taxonomy shared by all inspection operations.
package tools

import (
	"errors"
	"fmt"
)

// The toolset reports failures as one of three typed errors so callers can
// map them to stable outcomes without string matching:
//
//   - NotFoundError:        the named file or directory does not exist
//   - NotReadableError:     the target exists but cannot be returned as text
//   - InvalidArgumentError: the caller supplied a malformed argument
//
// Operations never panic on bad input and never return partial results
// alongside an error.

// =============================================================================
// NOT FOUND
// =============================================================================

// NotFoundError indicates that a requested file or directory does not exist
// inside the workspace.
type NotFoundError struct {
	Path string // Path as supplied by the caller
	Kind string // "file" or "directory"
}

func (e *NotFoundError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("not found: %s", e.Path)
}

// NewNotFoundError creates a NotFoundError for the given path.
func NewNotFoundError(path, kind string) *NotFoundError {
	return &NotFoundError{Path: path, Kind: kind}
}

// =============================================================================
// NOT READABLE
// =============================================================================

// NotReadableError indicates that a file exists but its contents cannot be
// returned as text. Binary files and directories passed to file operations
// fall in this category.
type NotReadableError struct {
	Path   string // Path as supplied by the caller
	Reason string // Human-readable reason ("binary file", "is a directory", ...)
}

func (e *NotReadableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot read %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("cannot read %s", e.Path)
}

// NewNotReadableError creates a NotReadableError for the given path.
func NewNotReadableError(path, reason string) *NotReadableError {
	return &NotReadableError{Path: path, Reason: reason}
}

// =============================================================================
// INVALID ARGUMENT
// =============================================================================

// InvalidArgumentError indicates that a caller-supplied argument is malformed:
// an empty path, a negative character budget, or a path that escapes the
// workspace root.
type InvalidArgumentError struct {
	Arg    string // Argument name ("directory", "file_path", "max_chars", ...)
	Value  string // Offending value, if printable
	Reason string // Why the value was rejected
}

func (e *InvalidArgumentError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Arg, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Arg, e.Reason)
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(arg, value, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Arg: arg, Value: value, Reason: reason}
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNotReadable reports whether err is (or wraps) a NotReadableError.
func IsNotReadable(err error) bool {
	var nr *NotReadableError
	return errors.As(err, &nr)
}

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ia *InvalidArgumentError
	return errors.As(err, &ia)
}
