// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// chatTurn scripts one model response for loop tests.
type chatTurn struct {
	response string
	calls    []ToolCallMessage
	err      error
}

// scriptedChat returns a ChatFunc that replays the given turns in order
// and fails the test if the loop asks for more.
func scriptedChat(t *testing.T, turns []chatTurn) ChatFunc {
	t.Helper()
	i := 0
	return func(messages []Message) (string, []ToolCallMessage, error) {
		if i >= len(turns) {
			t.Fatalf("chat called %d times, script has only %d turns", i+1, len(turns))
		}
		turn := turns[i]
		i++
		return turn.response, turn.calls, turn.err
	}
}

func newTestLoop(t *testing.T, files map[string]string) *AgenticLoop {
	t.Helper()
	return NewAgenticLoop(newTestExecutor(t, files))
}

// =============================================================================
// LOOP TESTS
// =============================================================================

func TestRunImmediateAnswer(t *testing.T) {
	loop := newTestLoop(t, nil)

	chat := scriptedChat(t, []chatTurn{
		{response: "There are no files here."},
	})

	answer, err := loop.RunWithInitialMessage(context.Background(), chat, "what files exist?")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if answer != "There are no files here." {
		t.Errorf("Answer = %q", answer)
	}
	if loop.CurrentIteration() != 1 {
		t.Errorf("CurrentIteration() = %d, expected 1", loop.CurrentIteration())
	}

	conv := loop.Conversation()
	if len(conv) != 2 {
		t.Fatalf("Conversation has %d messages, expected user + assistant", len(conv))
	}
	if conv[0].Role != "user" || conv[1].Role != "assistant" {
		t.Errorf("Conversation roles = %q, %q", conv[0].Role, conv[1].Role)
	}
}

func TestRunToolRoundTrip(t *testing.T) {
	loop := newTestLoop(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
	})

	var secondTurnMessages []Message
	turn := 0
	chat := func(messages []Message) (string, []ToolCallMessage, error) {
		turn++
		switch turn {
		case 1:
			return "", []ToolCallMessage{
				{ID: "call_1", Name: "list_files", Arguments: map[string]interface{}{"directory": "."}},
			}, nil
		case 2:
			secondTurnMessages = make([]Message, len(messages))
			copy(secondTurnMessages, messages)
			return "Two text files: a.txt and b.txt.", nil, nil
		default:
			t.Fatalf("chat called %d times", turn)
			return "", nil, nil
		}
	}

	answer, err := loop.RunWithInitialMessage(context.Background(), chat, "which files exist?")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if answer != "Two text files: a.txt and b.txt." {
		t.Errorf("Answer = %q", answer)
	}

	// The second model turn must see the tool result correlated to call_1.
	if len(secondTurnMessages) != 3 {
		t.Fatalf("Second turn saw %d messages, expected user + assistant + tool", len(secondTurnMessages))
	}
	toolMsg := secondTurnMessages[2]
	if toolMsg.Role != "tool" {
		t.Errorf("Third message role = %q, expected tool", toolMsg.Role)
	}
	if toolMsg.ToolCallID != "call_1" {
		t.Errorf("Tool message ToolCallID = %q, expected call_1", toolMsg.ToolCallID)
	}
	if !strings.Contains(toolMsg.Content, "a.txt") || !strings.Contains(toolMsg.Content, "completed successfully") {
		t.Errorf("Tool message content missing result details:\n%s", toolMsg.Content)
	}

	conv := loop.Conversation()
	if len(conv) != 4 {
		t.Fatalf("Conversation has %d messages, expected 4", len(conv))
	}
	wantRoles := []string{"user", "assistant", "tool", "assistant"}
	for i, want := range wantRoles {
		if conv[i].Role != want {
			t.Errorf("Conversation[%d].Role = %q, expected %q", i, conv[i].Role, want)
		}
	}
	if len(conv[1].ToolCalls) != 1 || conv[1].ToolCalls[0].ID != "call_1" {
		t.Errorf("Assistant message should carry the tool call, got %+v", conv[1].ToolCalls)
	}
}

func TestRunMaxIterations(t *testing.T) {
	loop := newTestLoop(t, nil)
	loop.SetMaxIterations(3)

	// The model never stops asking for tools.
	chat := func(messages []Message) (string, []ToolCallMessage, error) {
		return "", []ToolCallMessage{
			{ID: "call_x", Name: "count_files", Arguments: map[string]interface{}{"directory": "."}},
		}, nil
	}

	_, err := loop.RunWithInitialMessage(context.Background(), chat, "count forever")
	if !errors.Is(err, ErrMaxIterationsReached) {
		t.Fatalf("Expected ErrMaxIterationsReached, got %v", err)
	}
	if loop.CurrentIteration() != 4 {
		t.Errorf("CurrentIteration() = %d, expected 4 (cap 3 plus the stopped round)", loop.CurrentIteration())
	}
}

func TestRunConsecutiveToolFailures(t *testing.T) {
	loop := newTestLoop(t, nil)

	// Every round calls a tool that does not exist.
	chat := func(messages []Message) (string, []ToolCallMessage, error) {
		return "", []ToolCallMessage{
			{ID: "call_x", Name: "no_such_tool", Arguments: map[string]interface{}{}},
		}, nil
	}

	_, err := loop.RunWithInitialMessage(context.Background(), chat, "try anyway")
	if !errors.Is(err, ErrConsecutiveToolFailures) {
		t.Fatalf("Expected ErrConsecutiveToolFailures, got %v", err)
	}
	if loop.CurrentIteration() != DefaultMaxConsecutiveErrors {
		t.Errorf("CurrentIteration() = %d, expected %d", loop.CurrentIteration(), DefaultMaxConsecutiveErrors)
	}
}

func TestRunRecoveryResetsFailureCount(t *testing.T) {
	loop := newTestLoop(t, map[string]string{"a.txt": "alpha"})

	// Alternate failing and succeeding rounds; the failure counter must
	// reset on success, so the loop ends by answer, not by failure cap.
	chat := scriptedChat(t, []chatTurn{
		{calls: []ToolCallMessage{{ID: "c1", Name: "no_such_tool", Arguments: map[string]interface{}{}}}},
		{calls: []ToolCallMessage{{ID: "c2", Name: "count_files", Arguments: map[string]interface{}{"directory": "."}}}},
		{calls: []ToolCallMessage{{ID: "c3", Name: "no_such_tool", Arguments: map[string]interface{}{}}}},
		{calls: []ToolCallMessage{{ID: "c4", Name: "count_files", Arguments: map[string]interface{}{"directory": "."}}}},
		{response: "Done."},
	})

	answer, err := loop.RunWithInitialMessage(context.Background(), chat, "poke around")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if answer != "Done." {
		t.Errorf("Answer = %q", answer)
	}
}

func TestRunChatError(t *testing.T) {
	loop := newTestLoop(t, nil)
	errModel := errors.New("model exploded")

	chat := scriptedChat(t, []chatTurn{{err: errModel}})

	_, err := loop.RunWithInitialMessage(context.Background(), chat, "hello")
	if !errors.Is(err, errModel) {
		t.Fatalf("Expected wrapped model error, got %v", err)
	}
	if !strings.Contains(err.Error(), "chat call failed") {
		t.Errorf("Error should name the chat stage, got %v", err)
	}
}

func TestRunContextCancelled(t *testing.T) {
	loop := newTestLoop(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chat := func(messages []Message) (string, []ToolCallMessage, error) {
		t.Fatal("chat must not be called with a cancelled context")
		return "", nil, nil
	}

	_, err := loop.RunWithInitialMessage(ctx, chat, "hello")
	if !errors.Is(err, ErrContextCancelled) {
		t.Fatalf("Expected ErrContextCancelled, got %v", err)
	}
}

func TestRunLoopTimeout(t *testing.T) {
	loop := newTestLoop(t, nil)
	loop.SetLoopTimeout(50 * time.Millisecond)

	// Each turn overruns the whole budget, so the second iteration's
	// check trips.
	chat := func(messages []Message) (string, []ToolCallMessage, error) {
		time.Sleep(80 * time.Millisecond)
		return "", []ToolCallMessage{
			{ID: "call_x", Name: "count_files", Arguments: map[string]interface{}{"directory": "."}},
		}, nil
	}

	_, err := loop.RunWithInitialMessage(context.Background(), chat, "slow walk")
	if !errors.Is(err, ErrLoopTimeout) {
		t.Fatalf("Expected ErrLoopTimeout, got %v", err)
	}
}

func TestRunCallbacks(t *testing.T) {
	loop := newTestLoop(t, map[string]string{"a.txt": "alpha"})

	var calledNames, resultNames []string
	var lastResult Result
	loop.SetCallbacks(
		func(name string, args map[string]interface{}) {
			calledNames = append(calledNames, name)
		},
		func(name string, result Result) {
			resultNames = append(resultNames, name)
			lastResult = result
		},
	)

	chat := scriptedChat(t, []chatTurn{
		{calls: []ToolCallMessage{{ID: "c1", Name: "list_files", Arguments: map[string]interface{}{"directory": "."}}}},
		{response: "One file."},
	})

	if _, err := loop.RunWithInitialMessage(context.Background(), chat, "look around"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(calledNames) != 1 || calledNames[0] != "list_files" {
		t.Errorf("onToolCall saw %v", calledNames)
	}
	if len(resultNames) != 1 || resultNames[0] != "list_files" {
		t.Errorf("onToolResult saw %v", resultNames)
	}
	if !lastResult.Success {
		t.Errorf("onToolResult should have seen a success, got %+v", lastResult)
	}
}

func TestConversationManagement(t *testing.T) {
	loop := newTestLoop(t, nil)

	loop.AddMessage(NewSystemMessage("you inspect files"))
	loop.AddMessage(NewUserMessage("hello"))

	conv := loop.Conversation()
	if len(conv) != 2 {
		t.Fatalf("Conversation has %d messages, expected 2", len(conv))
	}

	// The returned slice is a copy; mutating it must not leak back.
	conv[0].Content = "overwritten"
	if loop.Conversation()[0].Content != "you inspect files" {
		t.Error("Conversation() must return a copy")
	}

	loop.ClearConversation()
	if len(loop.Conversation()) != 0 {
		t.Error("ClearConversation() should empty the conversation")
	}
}

// =============================================================================
// RESULT FORMATTING TESTS
// =============================================================================

func TestFormatToolResult(t *testing.T) {
	tests := []struct {
		name         string
		result       Result
		wantParts    []string
		notWantParts []string
	}{
		{
			name:      "success with output",
			result:    Result{Success: true, Output: "a.txt\nb.txt", Duration: 12 * time.Millisecond},
			wantParts: []string{"Tool 'list_files' (id: call_1) completed successfully.", "Output:\na.txt\nb.txt", "Duration: 12ms"},
		},
		{
			name:      "success without output",
			result:    Result{Success: true},
			wantParts: []string{"(no output)"},
		},
		{
			name:         "failure",
			result:       Result{Success: false, Error: "file does not exist"},
			wantParts:    []string{"Tool 'list_files' (id: call_1) failed.", "Error: file does not exist"},
			notWantParts: []string{"Output:"},
		},
		{
			name:      "truncated output",
			result:    Result{Success: true, Output: "partial", Truncated: true},
			wantParts: []string{"(output was truncated)"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatToolResult("list_files", "call_1", tc.result)
			for _, part := range tc.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Formatted result missing %q:\n%s", part, got)
				}
			}
			for _, part := range tc.notWantParts {
				if strings.Contains(got, part) {
					t.Errorf("Formatted result should not contain %q:\n%s", part, got)
				}
			}
		})
	}
}

// =============================================================================
// RESPONSE PARSING TESTS
// =============================================================================

func TestParseToolCallsFromResponse(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantCount int
		wantName  string
		wantArg   string // key expected in the first call's arguments
		wantValue interface{}
	}{
		{
			name:      "json array",
			response:  `[{"name": "list_files", "arguments": {"directory": "."}}]`,
			wantCount: 1,
			wantName:  "list_files",
			wantArg:   "directory",
			wantValue: ".",
		},
		{
			name:      "single object",
			response:  `{"name": "read_file", "arguments": {"file_path": "a.txt"}}`,
			wantCount: 1,
			wantName:  "read_file",
			wantArg:   "file_path",
			wantValue: "a.txt",
		},
		{
			name:      "object without arguments key",
			response:  `{"name": "list_files"}`,
			wantCount: 1,
			wantName:  "list_files",
		},
		{
			name:      "tool_calls wrapper",
			response:  `{"tool_calls": [{"name": "search_files", "arguments": {"directory": ".", "keyword": "init"}}]}`,
			wantCount: 1,
			wantName:  "search_files",
			wantArg:   "keyword",
			wantValue: "init",
		},
		{
			name:      "wrapper with string-encoded arguments",
			response:  `{"tool_calls": [{"name": "read_file", "arguments": "{\"file_path\": \"a.txt\"}"}]}`,
			wantCount: 1,
			wantName:  "read_file",
			wantArg:   "file_path",
			wantValue: "a.txt",
		},
		{
			name:      "call embedded in prose",
			response:  `Let me check. {"name": "count_files", "arguments": {"directory": "docs"}} One moment.`,
			wantCount: 1,
			wantName:  "count_files",
			wantArg:   "directory",
			wantValue: "docs",
		},
		{
			name:      "embedded call with brace inside string argument",
			response:  `Searching: {"name": "search_files", "arguments": {"directory": ".", "keyword": "func {"}}`,
			wantCount: 1,
			wantName:  "search_files",
			wantArg:   "keyword",
			wantValue: "func {",
		},
		{
			name:      "two embedded calls",
			response:  `{"name": "count_files", "arguments": {"directory": "a"}} and {"name": "count_files", "arguments": {"directory": "b"}}`,
			wantCount: 2,
			wantName:  "count_files",
			wantArg:   "directory",
			wantValue: "a",
		},
		{
			name:      "plain prose",
			response:  "There are three files in that directory.",
			wantCount: 0,
		},
		{
			name:      "ordinary json object",
			response:  `{"files": 3, "status": "ok"}`,
			wantCount: 0,
		},
		{
			name:      "json array of numbers",
			response:  `[1, 2, 3]`,
			wantCount: 0,
		},
		{
			name:      "empty response",
			response:  "",
			wantCount: 0,
		},
		{
			name:      "unterminated object",
			response:  `{"name": "list_files", "arguments": {"directory": `,
			wantCount: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := ParseToolCallsFromResponse(tc.response)
			if len(calls) != tc.wantCount {
				t.Fatalf("Parsed %d calls, expected %d: %+v", len(calls), tc.wantCount, calls)
			}
			if tc.wantCount == 0 {
				return
			}
			if calls[0].Name != tc.wantName {
				t.Errorf("First call name = %q, expected %q", calls[0].Name, tc.wantName)
			}
			if calls[0].ID == "" {
				t.Error("Parsed calls must have an ID assigned")
			}
			if tc.wantArg != "" && calls[0].Arguments[tc.wantArg] != tc.wantValue {
				t.Errorf("Argument %q = %v, expected %v", tc.wantArg, calls[0].Arguments[tc.wantArg], tc.wantValue)
			}
		})
	}
}

func TestParseToolCallsPreservesIDs(t *testing.T) {
	calls := ParseToolCallsFromResponse(`{"tool_calls": [{"id": "call_kept", "name": "list_files", "arguments": {"directory": "."}}]}`)
	if len(calls) != 1 {
		t.Fatalf("Parsed %d calls, expected 1", len(calls))
	}
	if calls[0].ID != "call_kept" {
		t.Errorf("ID = %q, expected the server-provided call_kept", calls[0].ID)
	}
}

func TestEnsureCallIDs(t *testing.T) {
	calls := ensureCallIDs([]ToolCallMessage{
		{ID: "call_set", Name: "a"},
		{Name: "b"},
		{Name: "c"},
	})

	if calls[0].ID != "call_set" {
		t.Errorf("Existing ID overwritten: %q", calls[0].ID)
	}
	if calls[1].ID == "" || calls[2].ID == "" {
		t.Error("Missing IDs should be filled in")
	}
	if calls[1].ID == calls[2].ID {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateCallID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateCallID()
		if !strings.HasPrefix(id, "call_") {
			t.Fatalf("ID %q missing call_ prefix", id)
		}
		if len(id) != len("call_")+8 {
			t.Fatalf("ID %q has unexpected length", id)
		}
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
