// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the fscout application.
//
// This package contains common helper functions used throughout the application
// for string manipulation, type conversion, and file operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: Display-width aware truncation (CJK safe)
//   - PadRight: Display-width aware column padding
//
// Type Conversion:
//   - IntToString, Int64ToString: Numeric to string conversion
//   - FloatToString: Float to string conversion
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateRunes(longText, 50)
//
//	// Align table columns by display width
//	cell := util.PadRight(name, 20)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
