// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// executor.go runs registered tools with parameter validation, timeouts,
// and a bounded execution history.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/fscout/internal/util"
)

const (
	// DefaultToolTimeout bounds a single tool execution.
	DefaultToolTimeout = 30 * time.Second

	// DefaultMaxOutputChars caps the characters of tool output fed back
	// to the model.
	DefaultMaxOutputChars = 30000

	// maxHistoryEntries caps the in-memory execution log.
	maxHistoryEntries = 1000
)

// Executor runs tools from a registry. Every call is validated against
// the tool's schema, bounded by a timeout, and recorded. Failures of any
// kind come back inside the Result, so a caller driving a conversation
// can always hand the outcome to the model.
type Executor struct {
	registry       *Registry
	history        []ExecutionRecord
	mu             sync.Mutex
	timeout        time.Duration
	maxOutputChars int
}

// ExecutionRecord is one entry in the execution history.
type ExecutionRecord struct {
	ToolName  string
	Params    map[string]interface{}
	Result    Result
	Timestamp time.Time
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry:       registry,
		timeout:        DefaultToolTimeout,
		maxOutputChars: DefaultMaxOutputChars,
	}
}

// Registry returns the registry this executor runs tools from.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// SetTimeout overrides the per-call timeout.
func (e *Executor) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// SetMaxOutputChars overrides the output ceiling.
func (e *Executor) SetMaxOutputChars(n int) {
	if n > 0 {
		e.maxOutputChars = n
	}
}

// Execute runs a single tool call. The returned error is always nil;
// unknown tools, invalid parameters, timeouts, and executor failures are
// all reported through the Result so they can flow back to the model as
// content rather than aborting the conversation.
func (e *Executor) Execute(ctx context.Context, call ToolCall) (Result, error) {
	start := time.Now()

	tool := e.registry.Get(call.Name)
	if tool == nil {
		result := Result{
			Success:  false,
			Error:    fmt.Sprintf("unknown tool: %s", call.Name),
			Duration: time.Since(start),
		}
		e.addToHistory(call, result, start)
		return result, nil
	}

	if err := validateParams(tool, call.Params); err != nil {
		result := Result{
			Success:  false,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
		e.addToHistory(call, result, start)
		return result, nil
	}

	// Give the call a deadline unless the caller already set one.
	execCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resultCh := make(chan Result, 1)
	errCh := make(chan error, 1)

	go func() {
		result, err := tool.Executor.Execute(execCtx, call.Params)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- result
	}()

	var result Result
	select {
	case result = <-resultCh:
	case err := <-errCh:
		result = Result{Success: false, Error: err.Error()}
	case <-execCtx.Done():
		msg := "tool execution cancelled"
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			msg = "tool execution timed out"
		}
		result = Result{Success: false, Error: msg}
	}

	result.Duration = time.Since(start)

	// Cap output size. Counted in runes so a cut never splits a
	// multi-byte character.
	if util.RuneLen(result.Output) > e.maxOutputChars {
		result.Output = util.TruncateRunesNoEllipsis(result.Output, e.maxOutputChars) +
			"\n... (output truncated)"
		result.Truncated = true
	}

	e.addToHistory(call, result, start)
	return result, nil
}

// ExecuteBatch runs tool calls sequentially, preserving order. One
// failed call does not stop the rest.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []ToolCall) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		result, _ := e.Execute(ctx, call)
		results = append(results, result)
	}
	return results
}

// =============================================================================
// HISTORY
// =============================================================================

func (e *Executor) addToHistory(call ToolCall, result Result, timestamp time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, ExecutionRecord{
		ToolName:  call.Name,
		Params:    call.Params,
		Result:    result,
		Timestamp: timestamp,
	})

	// Drop oldest entries beyond the cap
	if len(e.history) > maxHistoryEntries {
		e.history = e.history[len(e.history)-maxHistoryEntries:]
	}
}

// History returns a copy of the execution history, oldest first.
func (e *Executor) History() []ExecutionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make([]ExecutionRecord, len(e.history))
	copy(records, e.history)
	return records
}

// ClearHistory discards the execution history.
func (e *Executor) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}

// ExecutionStats summarizes the execution history.
type ExecutionStats struct {
	TotalExecutions int
	Successful      int
	Failed          int
	TotalDuration   time.Duration
	AvgDuration     time.Duration
}

// Stats computes summary statistics over the execution history.
func (e *Executor) Stats() ExecutionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := ExecutionStats{
		TotalExecutions: len(e.history),
	}
	for _, record := range e.history {
		if record.Result.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.TotalDuration += record.Result.Duration
	}
	if stats.TotalExecutions > 0 {
		stats.AvgDuration = stats.TotalDuration / time.Duration(stats.TotalExecutions)
	}
	return stats
}

// =============================================================================
// PARAMETER VALIDATION
// =============================================================================

// ValidationError describes a parameter that failed schema validation.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Param + ": " + e.Message
}

// validateParams checks provided parameters against the tool's schema.
func validateParams(tool *Tool, params map[string]interface{}) error {
	for _, param := range tool.Schema.Parameters {
		val, provided := params[param.Name]

		if param.Required && !provided {
			return &ValidationError{Param: param.Name, Message: "required parameter missing"}
		}
		if !provided {
			continue
		}
		if err := validateType(param, val); err != nil {
			return err
		}
	}
	return nil
}

// validateType checks one value against its declared parameter type.
// Numbers accept int, int64 and float64 because JSON decoding produces
// float64 for every numeric literal.
func validateType(param Parameter, val interface{}) error {
	switch param.Type {
	case "string":
		str, ok := val.(string)
		if !ok {
			return &ValidationError{Param: param.Name, Message: "must be a string"}
		}
		if len(param.Enum) > 0 {
			for _, allowed := range param.Enum {
				if str == allowed {
					return nil
				}
			}
			return &ValidationError{
				Param:   param.Name,
				Message: "must be one of: " + strings.Join(param.Enum, ", "),
			}
		}
	case "integer", "number":
		switch val.(type) {
		case int, int64, float64:
		default:
			return &ValidationError{Param: param.Name, Message: "must be a number"}
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return &ValidationError{Param: param.Name, Message: "must be a boolean"}
		}
	}
	return nil
}
