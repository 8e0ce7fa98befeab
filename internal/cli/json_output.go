// json_output.go - JSON output support for scripted use of fscout.
//
// Provides a standardized JSON output format for all CLI commands so
// responses can be piped into jq or other tooling.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponseStr creates a new error JSON response from a string.
func NewJSONErrorResponseStr(command string, errMsg string) *JSONResponse {
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// PrintCompact outputs the JSON response without indentation.
// Useful for piping to other tools or log aggregation.
func (r *JSONResponse) PrintCompact() error {
	return json.NewEncoder(os.Stdout).Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// OutputJSON is a helper function that outputs either JSON or runs a normal handler.
// If jsonMode is true, it outputs JSON and handles errors. Otherwise it runs the handler.
func OutputJSON(jsonMode bool, command string, handler func() (interface{}, error)) error {
	if !jsonMode {
		_, err := handler()
		return err
	}

	data, err := handler()
	if err != nil {
		resp := NewJSONErrorResponse(command, err)
		resp.Print()
		return err
	}

	resp := NewJSONResponse(command, data)
	return resp.Print()
}

// StderrPrint prints a message to stderr (for human-readable output in JSON mode).
func StderrPrint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// StderrPrintln prints a line to stderr (for human-readable output in JSON mode).
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Provider  string              `json:"provider"`
	Workspace StatusWorkspaceInfo `json:"workspace"`
	Backend   StatusBackendInfo   `json:"backend"`
	Tools     StatusToolsInfo     `json:"tools"`
}

// StatusWorkspaceInfo describes the confinement root.
type StatusWorkspaceInfo struct {
	Root     string `json:"root"`
	Exists   bool   `json:"exists"`
	Readable bool   `json:"readable"`
}

// StatusBackendInfo describes the selected chat backend.
type StatusBackendInfo struct {
	URL       string `json:"url"`
	Model     string `json:"model"`
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
	KeySet    bool   `json:"api_key_configured,omitempty"`
}

// StatusToolsInfo describes the registered toolset and its ceilings.
type StatusToolsInfo struct {
	Registered        []string `json:"registered"`
	ReadMaxChars      int      `json:"read_max_chars"`
	SummarizeMaxChars int      `json:"summarize_max_chars"`
	TimeoutSecs       int      `json:"timeout_secs"`
}

// DoctorData represents the data returned by the doctor command.
type DoctorData struct {
	Checks  []DoctorCheck `json:"checks"`
	Summary DoctorSummary `json:"summary"`
}

// DoctorCheck represents a single health check result.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail"
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// DoctorSummary contains the summary of health checks.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// ConfigShowData represents the data returned by the config show command.
// The cloud API key itself never appears here, only whether its
// environment variable is set.
type ConfigShowData struct {
	Provider      string          `json:"provider"`
	WorkspaceRoot string          `json:"workspace_root"`
	MaxIterations int             `json:"max_iterations"`
	Ollama        ConfigOllamaInfo `json:"ollama"`
	Cloud         ConfigCloudInfo  `json:"cloud"`
	Tools         ConfigToolsInfo  `json:"tools"`
	Path          string          `json:"config_path"`
}

// ConfigOllamaInfo contains local backend configuration.
type ConfigOllamaInfo struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// ConfigCloudInfo contains hosted backend configuration (key redacted).
type ConfigCloudInfo struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKeyEnv string `json:"api_key_env"`
	KeySet    bool   `json:"api_key_configured"`
}

// ConfigToolsInfo contains toolset ceilings.
type ConfigToolsInfo struct {
	ReadMaxChars      int `json:"read_max_chars"`
	SummarizeMaxChars int `json:"summarize_max_chars"`
	ListShowLimit     int `json:"list_show_limit"`
	TimeoutSecs       int `json:"timeout_secs"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AskData represents the data returned by the ask command.
type AskData struct {
	Response   string `json:"response"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Iterations int    `json:"iterations"`
	ToolCalls  int    `json:"tool_calls"`
	DurationMs int64  `json:"duration_ms"`
}

// ToolsListData represents the data returned by the tools command.
type ToolsListData struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolInfo describes one registered tool.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParamInfo `json:"parameters"`
}

// ToolParamInfo describes one tool parameter.
type ToolParamInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description"`
}

// ToolRunData represents the data returned by tools run.
type ToolRunData struct {
	Tool         string `json:"tool"`
	Success      bool   `json:"success"`
	Output       string `json:"output,omitempty"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	Truncated    bool   `json:"truncated,omitempty"`
	BytesRead    int64  `json:"bytes_read,omitempty"`
	MatchCount   int    `json:"match_count,omitempty"`
	FilesMatched int    `json:"files_matched,omitempty"`
}
