// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
//
// Every tool is read-only and confined to a workspace root: paths are
// resolved through the Workspace, which rejects anything that escapes
// the root after symlink resolution. Tool failures are reported as data
// in the Result, never as raised errors, so one bad call can never
// abort an agentic run.
//
// # Key Types
//
//   - Workspace: path resolution and confinement
//   - Tool: tool definition with name, description, and parameters
//   - Registry: the set of registered tools
//   - Executor: timeout-bounded execution with history and stats
//   - AgenticLoop: the model-driven call loop
//   - Result: tool execution outcome with output and status
//
// # Available Tools
//
//   - list_files: list a directory, optional extension filter, recursive
//   - read_file: read file content up to a character ceiling
//   - search_files: case-insensitive keyword search across text files
//   - count_files: count files, same filters as list_files
//   - summarize_file: large excerpt for summarization
//
// # Backends
//
// ollama.go and cloud.go convert tool schemas and messages between the
// internal types and the two supported chat APIs. Both directions mint
// and carry call IDs so tool results pair with their requests.
package tools
