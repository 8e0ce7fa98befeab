// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// definitions.go declares the operation table: tool metadata, parameter
// schemas, and the registry that maps operation names to executors.
package tools

import (
	"context"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Tool represents one named inspection operation. Every tool here is
// read-only: execution never mutates the filesystem.
type Tool struct {
	// Name is the operation identifier the model calls (e.g. "list_files")
	Name string

	// Description explains what the tool does (full text for documentation)
	Description string

	// ShortDescription is a concise description for LLM tool schemas
	// (<125 chars recommended). If empty, the first line of Description
	// is used.
	ShortDescription string

	// Schema defines the tool's parameters
	Schema Schema

	// Executor handles the actual execution
	Executor ToolExecutor
}

// GetShortDescription returns the concise description suitable for LLM
// tool schemas. Returns ShortDescription if set, otherwise the first line
// of Description.
func (t *Tool) GetShortDescription() string {
	if t.ShortDescription != "" {
		return t.ShortDescription
	}
	if idx := strings.Index(t.Description, "\n"); idx != -1 {
		return t.Description[:idx]
	}
	return t.Description
}

// Schema defines a tool's parameters.
type Schema struct {
	Parameters []Parameter
}

// Parameter defines a single tool parameter.
type Parameter struct {
	// Name of the parameter
	Name string

	// Type is the parameter type ("string", "integer", "boolean")
	Type string

	// Required indicates if the parameter must be provided
	Required bool

	// Description explains the parameter
	Description string

	// Default is the default value if not provided
	Default interface{}

	// Enum contains allowed values for string type (optional)
	Enum []string
}

// =============================================================================
// TOOL EXECUTOR INTERFACE
// =============================================================================

// ToolExecutor is the interface for individual tool execution.
// Each tool implements this to define its execution logic. Failures are
// reported inside Result, never as a raised error, so one bad call can
// never abort a batch.
type ToolExecutor interface {
	Execute(ctx context.Context, params map[string]interface{}) (Result, error)
}

// Result holds the outcome of a tool execution.
type Result struct {
	// Success indicates if the tool executed successfully
	Success bool

	// Output is the tool's output (for successful execution)
	Output string

	// Error is the error message (for failed execution)
	Error string

	// Duration is how long execution took
	Duration time.Duration

	// Truncated indicates output was cut at a ceiling
	Truncated bool

	// BytesRead for read/summarize operations
	BytesRead int64

	// MatchCount for search operations
	MatchCount int

	// FilesMatched for list/count/search operations
	FilesMatched int
}

// =============================================================================
// TOOL REGISTRY
// =============================================================================

// Registry holds all available tools keyed by operation name.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry creates a registry with the inspection tools bound to the
// given workspace.
func NewRegistry(ws *Workspace) *Registry {
	r := &Registry{
		tools: make(map[string]*Tool),
	}

	r.Register(newListFilesTool(ws))
	r.Register(newReadFileTool(ws))
	r.Register(newSearchFilesTool(ws))
	r.Register(newCountFilesTool(ws))
	r.Register(newSummarizeFileTool(ws))

	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool *Tool) {
	r.tools[tool.Name] = tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// All returns all registered tools sorted by name, so schema generation
// and listings stay deterministic.
func (r *Registry) All() []*Tool {
	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns the registered operation names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// BUILT-IN TOOL DEFINITIONS
// =============================================================================

func newListFilesTool(ws *Workspace) *Tool {
	return &Tool{
		Name:             "list_files",
		ShortDescription: "List files in a directory, optionally filtered by extension and recursive.",
		Description: `List the files in a directory inside the workspace.

Returns one path per line, sorted alphabetically. Paths are relative to
the listed directory. When more files match than fit in the output, the
listing is capped and followed by a per-extension summary.`,
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "directory",
					Type:        "string",
					Required:    true,
					Description: "Directory to list, relative to the workspace root. Use \".\" for the root itself.",
				},
				{
					Name:        "extension",
					Type:        "string",
					Required:    false,
					Description: "Only include files with this extension (case-insensitive). \".txt\" and \"txt\" are equivalent.",
				},
				{
					Name:        "recursive",
					Type:        "boolean",
					Required:    false,
					Description: "Include files in subdirectories. Default: false.",
					Default:     false,
				},
			},
		},
		Executor: &ListExecutor{Workspace: ws},
	}
}

func newReadFileTool(ws *Workspace) *Tool {
	return &Tool{
		Name:             "read_file",
		ShortDescription: "Read the text content of a file, truncated to a character ceiling.",
		Description: `Read the contents of a text file inside the workspace.

Returns up to max_chars characters of UTF-8 text. When the file is
longer, the output ends with a truncation marker naming how much was
omitted. Binary files cannot be read. A max_chars of 0 returns only
file metadata (size, character count, modification time).`,
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "file_path",
					Type:        "string",
					Required:    true,
					Description: "Path of the file to read, relative to the workspace root.",
				},
				{
					Name:        "max_chars",
					Type:        "integer",
					Required:    false,
					Description: "Maximum number of characters to return. Default: 5000.",
					Default:     DefaultReadMaxChars,
				},
			},
		},
		Executor: &ReadExecutor{Workspace: ws},
	}
}

func newSearchFilesTool(ws *Workspace) *Tool {
	return &Tool{
		Name:             "search_files",
		ShortDescription: "Search text files for a keyword (case-insensitive substring match).",
		Description: `Search every text file in a directory for a keyword.

Matching is a case-insensitive substring check. Returns one line per
matching file in the form path:line: preview, where preview is a short
excerpt around the first occurrence. Binary and unreadable files are
skipped silently.`,
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "directory",
					Type:        "string",
					Required:    true,
					Description: "Directory to search, relative to the workspace root. Use \".\" for the root itself.",
				},
				{
					Name:        "keyword",
					Type:        "string",
					Required:    true,
					Description: "Text to look for in file contents.",
				},
				{
					Name:        "recursive",
					Type:        "boolean",
					Required:    false,
					Description: "Search files in subdirectories too. Default: false.",
					Default:     false,
				},
			},
		},
		Executor: &SearchExecutor{Workspace: ws},
	}
}

func newCountFilesTool(ws *Workspace) *Tool {
	return &Tool{
		Name:             "count_files",
		ShortDescription: "Count files in a directory, optionally filtered by extension and recursive.",
		Description: `Count the files in a directory inside the workspace.

Takes the same arguments as list_files and always agrees with it: the
count is the number of entries list_files would return.`,
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "directory",
					Type:        "string",
					Required:    true,
					Description: "Directory to count files in, relative to the workspace root. Use \".\" for the root itself.",
				},
				{
					Name:        "extension",
					Type:        "string",
					Required:    false,
					Description: "Only count files with this extension (case-insensitive). \".txt\" and \"txt\" are equivalent.",
				},
				{
					Name:        "recursive",
					Type:        "boolean",
					Required:    false,
					Description: "Count files in subdirectories too. Default: false.",
					Default:     false,
				},
			},
		},
		Executor: &CountExecutor{Workspace: ws},
	}
}

func newSummarizeFileTool(ws *Workspace) *Tool {
	return &Tool{
		Name:             "summarize_file",
		ShortDescription: "Return a large excerpt of a file as raw material for a summary.",
		Description: `Read a large excerpt of a text file to summarize for the user.

Identical to read_file but with a higher default ceiling (10000
characters), so there is enough material to write a faithful summary.
The excerpt is raw file content; write the summary yourself from it.`,
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "file_path",
					Type:        "string",
					Required:    true,
					Description: "Path of the file to summarize, relative to the workspace root.",
				},
				{
					Name:        "max_chars",
					Type:        "integer",
					Required:    false,
					Description: "Maximum number of characters of file content to return. Default: 10000.",
					Default:     DefaultSummarizeMaxChars,
				},
			},
		},
		Executor: &SummarizeExecutor{Workspace: ws},
	}
}

// =============================================================================
// TOOL CALLS
// =============================================================================

// ToolCall represents a parsed tool invocation.
type ToolCall struct {
	ID     string
	Name   string
	Params map[string]interface{}
}

// GetString gets a string parameter with a default value.
func (tc *ToolCall) GetString(name string, defaultVal string) string {
	return getStringParam(tc.Params, name, defaultVal)
}

// GetInt gets an integer parameter with a default value.
func (tc *ToolCall) GetInt(name string, defaultVal int) int {
	return getIntParam(tc.Params, name, defaultVal)
}

// GetBool gets a boolean parameter with a default value.
func (tc *ToolCall) GetBool(name string, defaultVal bool) bool {
	return getBoolParam(tc.Params, name, defaultVal)
}

// =============================================================================
// PARAMETER EXTRACTION
// =============================================================================

func getStringParam(params map[string]interface{}, name, defaultVal string) string {
	if val, ok := params[name]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultVal
}

// getIntParam accepts int, int64 and float64 because JSON decoding hands
// numbers over as float64.
func getIntParam(params map[string]interface{}, name string, defaultVal int) int {
	if val, ok := params[name]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultVal
}

func getBoolParam(params map[string]interface{}, name string, defaultVal bool) bool {
	if val, ok := params[name]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultVal
}
