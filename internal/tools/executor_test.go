// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// fakeTool is a scriptable executor for exercising the execution layer
// without touching the filesystem. The delay is a plain sleep, not a
// ctx-aware wait, so timeout tests deterministically hit the executor's
// deadline branch instead of racing it.
type fakeTool struct {
	delay  time.Duration
	result Result
	err    error
}

func (f *fakeTool) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return f.result, nil
}

// registerFake adds a schema-less fake tool to the registry.
func registerFake(registry *Registry, name string, fake *fakeTool) {
	registry.Register(&Tool{
		Name:        name,
		Description: "test fixture",
		Executor:    fake,
	})
}

func newTestExecutor(t *testing.T, files map[string]string) *Executor {
	t.Helper()
	return NewExecutor(NewRegistry(newTestWorkspace(t, files)))
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

func TestExecuteListFiles(t *testing.T) {
	executor := newTestExecutor(t, map[string]string{
		"a.txt": "alpha",
		"b.md":  "bravo",
	})

	result, err := executor.Execute(context.Background(), ToolCall{
		Name:   "list_files",
		Params: map[string]interface{}{"directory": "."},
	})
	if err != nil {
		t.Fatalf("Execute() returned an error: %v", err)
	}
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, "a.txt") || !strings.Contains(result.Output, "b.md") {
		t.Errorf("Output missing files:\n%s", result.Output)
	}
	if result.FilesMatched != 2 {
		t.Errorf("FilesMatched = %d, expected 2", result.FilesMatched)
	}
	if result.Duration <= 0 {
		t.Error("Duration should be positive")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	executor := newTestExecutor(t, nil)

	result, err := executor.Execute(context.Background(), ToolCall{
		Name:   "delete_files",
		Params: map[string]interface{}{},
	})
	if err != nil {
		t.Fatalf("Execute() must not return an error, got %v", err)
	}
	if result.Success {
		t.Error("Unknown tool should not succeed")
	}
	if !strings.Contains(result.Error, "unknown tool: delete_files") {
		t.Errorf("Error = %q, expected unknown tool message", result.Error)
	}
}

// TestExecuteValidation verifies schema failures come back as results,
// never as raised errors.
func TestExecuteValidation(t *testing.T) {
	executor := newTestExecutor(t, map[string]string{"a.txt": "alpha"})

	tests := []struct {
		name    string
		call    ToolCall
		wantErr string
	}{
		{
			name:    "missing required directory",
			call:    ToolCall{Name: "list_files", Params: map[string]interface{}{}},
			wantErr: "directory: required parameter missing",
		},
		{
			name:    "missing required keyword",
			call:    ToolCall{Name: "search_files", Params: map[string]interface{}{"directory": "."}},
			wantErr: "keyword: required parameter missing",
		},
		{
			name: "directory wrong type",
			call: ToolCall{
				Name:   "list_files",
				Params: map[string]interface{}{"directory": 42},
			},
			wantErr: "directory: must be a string",
		},
		{
			name: "recursive wrong type",
			call: ToolCall{
				Name:   "list_files",
				Params: map[string]interface{}{"directory": ".", "recursive": "yes"},
			},
			wantErr: "recursive: must be a boolean",
		},
		{
			name: "max_chars wrong type",
			call: ToolCall{
				Name:   "read_file",
				Params: map[string]interface{}{"file_path": "a.txt", "max_chars": "many"},
			},
			wantErr: "max_chars: must be a number",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := executor.Execute(context.Background(), tc.call)
			if err != nil {
				t.Fatalf("Execute() must not return an error, got %v", err)
			}
			if result.Success {
				t.Fatal("Invalid parameters should not succeed")
			}
			if result.Error != tc.wantErr {
				t.Errorf("Error = %q, expected %q", result.Error, tc.wantErr)
			}
		})
	}
}

// TestExecuteJSONNumericParams verifies float64 params (how JSON decodes
// every number) drive integer ceilings correctly.
func TestExecuteJSONNumericParams(t *testing.T) {
	executor := newTestExecutor(t, map[string]string{"a.txt": "hello world"})

	result, err := executor.Execute(context.Background(), ToolCall{
		Name: "read_file",
		Params: map[string]interface{}{
			"file_path": "a.txt",
			"max_chars": float64(4),
		},
	})
	if err != nil {
		t.Fatalf("Execute() returned an error: %v", err)
	}
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}
	if !strings.HasPrefix(result.Output, "hell") {
		t.Errorf("Output should start with the 4-char excerpt, got %q", result.Output)
	}
	if !result.Truncated {
		t.Error("Result should be marked truncated")
	}
}

func TestExecuteTimeout(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "slow_tool", &fakeTool{delay: 5 * time.Second})
	executor.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	result, err := executor.Execute(context.Background(), ToolCall{
		Name:   "slow_tool",
		Params: map[string]interface{}{},
	})
	if err != nil {
		t.Fatalf("Execute() must not return an error, got %v", err)
	}
	if result.Success {
		t.Error("Timed-out execution should not succeed")
	}
	if result.Error != "tool execution timed out" {
		t.Errorf("Error = %q, expected timeout message", result.Error)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Timeout took %v, should fire near the 50ms limit", elapsed)
	}
}

func TestExecuteCallerDeadlineWins(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "slow_tool", &fakeTool{delay: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, _ := executor.Execute(ctx, ToolCall{Name: "slow_tool", Params: map[string]interface{}{}})
	if result.Success {
		t.Error("Execution past the caller deadline should not succeed")
	}
	if result.Error != "tool execution timed out" {
		t.Errorf("Error = %q, expected timeout message", result.Error)
	}
}

func TestExecuteExecutorError(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "broken_tool", &fakeTool{err: errors.New("disk fell over")})

	result, err := executor.Execute(context.Background(), ToolCall{
		Name:   "broken_tool",
		Params: map[string]interface{}{},
	})
	if err != nil {
		t.Fatalf("Execute() must not return an error, got %v", err)
	}
	if result.Success {
		t.Error("Failed execution should not succeed")
	}
	if result.Error != "disk fell over" {
		t.Errorf("Error = %q, expected executor error text", result.Error)
	}
}

func TestExecuteOutputTruncation(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "chatty_tool", &fakeTool{
		result: Result{Success: true, Output: strings.Repeat("x", 100)},
	})
	executor.SetMaxOutputChars(10)

	result, _ := executor.Execute(context.Background(), ToolCall{
		Name:   "chatty_tool",
		Params: map[string]interface{}{},
	})
	if !result.Truncated {
		t.Error("Oversized output should be marked truncated")
	}
	if !strings.HasPrefix(result.Output, strings.Repeat("x", 10)+"\n... (output truncated)") {
		t.Errorf("Output = %q, expected capped output with marker", result.Output)
	}
}

// TestExecuteOutputTruncationMultibyte verifies the cap counts runes, so
// cutting never produces invalid UTF-8.
func TestExecuteOutputTruncationMultibyte(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "unicode_tool", &fakeTool{
		result: Result{Success: true, Output: strings.Repeat("日本語", 20)},
	})
	executor.SetMaxOutputChars(7)

	result, _ := executor.Execute(context.Background(), ToolCall{
		Name:   "unicode_tool",
		Params: map[string]interface{}{},
	})
	if !result.Truncated {
		t.Error("Oversized output should be marked truncated")
	}
	if !utf8.ValidString(result.Output) {
		t.Error("Truncated output must remain valid UTF-8")
	}
	kept := strings.TrimSuffix(result.Output, "\n... (output truncated)")
	if got := utf8.RuneCountInString(kept); got != 7 {
		t.Errorf("Kept %d runes, expected 7", got)
	}
}

func TestExecuteBatch(t *testing.T) {
	executor := newTestExecutor(t, map[string]string{"a.txt": "alpha"})

	results := executor.ExecuteBatch(context.Background(), []ToolCall{
		{Name: "count_files", Params: map[string]interface{}{"directory": "."}},
		{Name: "no_such_tool", Params: map[string]interface{}{}},
		{Name: "read_file", Params: map[string]interface{}{"file_path": "a.txt"}},
	})

	if len(results) != 3 {
		t.Fatalf("ExecuteBatch() returned %d results, expected 3", len(results))
	}
	if !results[0].Success || results[0].Output != "1" {
		t.Errorf("count_files result = %+v", results[0])
	}
	if results[1].Success {
		t.Error("Unknown tool in a batch should fail without stopping the batch")
	}
	if !results[2].Success || results[2].Output != "alpha" {
		t.Errorf("read_file result = %+v", results[2])
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistoryAndStats(t *testing.T) {
	executor := newTestExecutor(t, map[string]string{"a.txt": "alpha"})

	calls := []ToolCall{
		{Name: "list_files", Params: map[string]interface{}{"directory": "."}},
		{Name: "count_files", Params: map[string]interface{}{"directory": "."}},
		{Name: "read_file", Params: map[string]interface{}{"file_path": "missing.txt"}},
	}
	for _, call := range calls {
		executor.Execute(context.Background(), call)
	}

	history := executor.History()
	if len(history) != 3 {
		t.Fatalf("History() has %d entries, expected 3", len(history))
	}
	if history[0].ToolName != "list_files" || history[2].ToolName != "read_file" {
		t.Errorf("History order wrong: %q ... %q", history[0].ToolName, history[2].ToolName)
	}
	if history[2].Result.Success {
		t.Error("Missing-file read should be recorded as a failure")
	}

	stats := executor.Stats()
	if stats.TotalExecutions != 3 || stats.Successful != 2 || stats.Failed != 1 {
		t.Errorf("Stats() = %+v, expected 3 total / 2 ok / 1 failed", stats)
	}
	if stats.AvgDuration < 0 {
		t.Errorf("AvgDuration = %v, should not be negative", stats.AvgDuration)
	}

	executor.ClearHistory()
	if len(executor.History()) != 0 {
		t.Error("ClearHistory() should empty the history")
	}
	if executor.Stats().TotalExecutions != 0 {
		t.Error("Stats() after clear should be zero")
	}
}

func TestHistoryBounded(t *testing.T) {
	executor := newTestExecutor(t, nil)
	registerFake(executor.Registry(), "echo_tool", &fakeTool{result: Result{Success: true, Output: "ok"}})

	for i := 0; i < maxHistoryEntries+25; i++ {
		executor.Execute(context.Background(), ToolCall{Name: "echo_tool", Params: map[string]interface{}{}})
	}

	if got := len(executor.History()); got != maxHistoryEntries {
		t.Errorf("History length = %d, expected cap %d", got, maxHistoryEntries)
	}
}

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestExecutorSettingsIgnoreNonPositive(t *testing.T) {
	executor := newTestExecutor(t, nil)

	executor.SetTimeout(0)
	if executor.timeout != DefaultToolTimeout {
		t.Errorf("SetTimeout(0) changed the timeout to %v", executor.timeout)
	}
	executor.SetTimeout(-time.Second)
	if executor.timeout != DefaultToolTimeout {
		t.Errorf("SetTimeout(-1s) changed the timeout to %v", executor.timeout)
	}
	executor.SetTimeout(time.Minute)
	if executor.timeout != time.Minute {
		t.Errorf("SetTimeout(1m) = %v", executor.timeout)
	}

	executor.SetMaxOutputChars(0)
	if executor.maxOutputChars != DefaultMaxOutputChars {
		t.Errorf("SetMaxOutputChars(0) changed the ceiling to %d", executor.maxOutputChars)
	}
	executor.SetMaxOutputChars(500)
	if executor.maxOutputChars != 500 {
		t.Errorf("SetMaxOutputChars(500) = %d", executor.maxOutputChars)
	}
}
