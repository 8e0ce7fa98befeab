// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/jeranaias/fscout/internal/cloud"
)

// =============================================================================
// SCHEMA CONVERSION TESTS
// =============================================================================

func TestToCloudTools(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	converted := registry.ToCloudTools()
	if len(converted) != 5 {
		t.Fatalf("Converted %d tools, expected 5", len(converted))
	}

	for _, tool := range converted {
		if tool.Type != "function" {
			t.Errorf("Tool %q type = %q, expected function", tool.Function.Name, tool.Type)
		}
		if tool.Function.Parameters.Type != "object" {
			t.Errorf("Tool %q parameters type = %q", tool.Function.Name, tool.Function.Parameters.Type)
		}
	}
}

func TestToolToCloudSchema(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	tool := NewRegistry(ws).Get("search_files")

	converted := ToolToCloud(tool)

	props := converted.Function.Parameters.Properties
	for _, name := range []string{"directory", "keyword", "recursive"} {
		if _, ok := props[name]; !ok {
			t.Errorf("Missing property %q", name)
		}
	}

	want := []string{"directory", "keyword"}
	if !reflect.DeepEqual(converted.Function.Parameters.Required, want) {
		t.Errorf("Required = %v, expected %v", converted.Function.Parameters.Required, want)
	}

	if converted.Function.Description != tool.GetShortDescription() {
		t.Errorf("Description should be the short form, got %q", converted.Function.Description)
	}
}

// =============================================================================
// MESSAGE CONVERSION TESTS
// =============================================================================

// TestMessageToCloudEncodesArguments verifies that tool call arguments
// become JSON-encoded strings, which is how the OpenAI wire format
// carries them.
func TestMessageToCloudEncodesArguments(t *testing.T) {
	msg := NewAssistantMessageWithToolCalls("", []ToolCallMessage{
		{ID: "call_9", Name: "read_file", Arguments: map[string]interface{}{"file_path": "a.txt", "max_chars": 100}},
	})

	converted := MessageToCloud(msg)
	if len(converted.ToolCalls) != 1 {
		t.Fatalf("Converted message lost its tool call")
	}

	call := converted.ToolCalls[0]
	if call.ID != "call_9" {
		t.Errorf("Call ID = %q, expected call_9", call.ID)
	}
	if call.Type != "function" {
		t.Errorf("Call type = %q, expected function", call.Type)
	}
	if call.Function.Name != "read_file" {
		t.Errorf("Call name = %q", call.Function.Name)
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		t.Fatalf("Arguments %q is not valid JSON: %v", call.Function.Arguments, err)
	}
	if args["file_path"] != "a.txt" {
		t.Errorf("file_path = %v", args["file_path"])
	}
	if args["max_chars"] != float64(100) {
		t.Errorf("max_chars = %v", args["max_chars"])
	}
}

func TestMessagesToCloudRoles(t *testing.T) {
	conversation := []Message{
		NewSystemMessage("you inspect files"),
		NewUserMessage("read the readme"),
		NewToolResultMessage("call_1", "# Readme"),
	}

	converted := MessagesToCloud(conversation)
	if len(converted) != 3 {
		t.Fatalf("Converted %d messages, expected 3", len(converted))
	}
	if converted[0].Role != "system" || converted[1].Role != "user" || converted[2].Role != "tool" {
		t.Errorf("Roles = %q, %q, %q", converted[0].Role, converted[1].Role, converted[2].Role)
	}
	if converted[2].ToolCallID != "call_1" {
		t.Errorf("Tool result ToolCallID = %q, expected call_1", converted[2].ToolCallID)
	}
}

func TestCloudToolCallsToMessages(t *testing.T) {
	calls := []cloud.ToolCall{
		{
			ID:   "call_server_1",
			Type: "function",
			Function: cloud.FunctionCall{
				Name:      "list_files",
				Arguments: `{"directory": "src", "recursive": true}`,
			},
		},
		{
			// No ID and broken arguments: both must degrade gracefully.
			Type: "function",
			Function: cloud.FunctionCall{
				Name:      "count_files",
				Arguments: `{"directory": `,
			},
		},
	}

	converted := CloudToolCallsToMessages(calls)
	if len(converted) != 2 {
		t.Fatalf("Converted %d calls, expected 2", len(converted))
	}

	first := converted[0]
	if first.ID != "call_server_1" {
		t.Errorf("Server-provided ID should be echoed, got %q", first.ID)
	}
	if first.Name != "list_files" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.Arguments["directory"] != "src" || first.Arguments["recursive"] != true {
		t.Errorf("Arguments = %v", first.Arguments)
	}

	second := converted[1]
	if second.ID == "" {
		t.Error("Missing ID should be generated")
	}
	if second.Arguments == nil || len(second.Arguments) != 0 {
		t.Errorf("Broken arguments should decode to an empty map, got %v", second.Arguments)
	}

	if CloudToolCallsToMessages(nil) != nil {
		t.Error("Empty input should convert to nil")
	}
}
