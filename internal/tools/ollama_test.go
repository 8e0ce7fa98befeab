// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"reflect"
	"testing"

	"github.com/jeranaias/fscout/internal/ollama"
)

// =============================================================================
// SCHEMA CONVERSION TESTS
// =============================================================================

func TestToOllamaTools(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	converted := registry.ToOllamaTools()
	if len(converted) != 5 {
		t.Fatalf("Converted %d tools, expected 5", len(converted))
	}

	for i, tool := range converted {
		if tool.Type != "function" {
			t.Errorf("Tool %d type = %q, expected function", i, tool.Type)
		}
		if tool.Function.Name == "" {
			t.Errorf("Tool %d has no name", i)
		}
		if tool.Function.Description == "" {
			t.Errorf("Tool %q has no description", tool.Function.Name)
		}
		if tool.Function.Parameters.Type != "object" {
			t.Errorf("Tool %q parameters type = %q", tool.Function.Name, tool.Function.Parameters.Type)
		}
	}

	// All() sorts by name, so the conversion order is deterministic.
	if converted[0].Function.Name != "count_files" || converted[4].Function.Name != "summarize_file" {
		t.Errorf("Unexpected order: first %q, last %q",
			converted[0].Function.Name, converted[4].Function.Name)
	}
}

func TestToolToOllamaSchema(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	tool := NewRegistry(ws).Get("list_files")

	converted := ToolToOllama(tool)

	props := converted.Function.Parameters.Properties
	for _, name := range []string{"directory", "extension", "recursive"} {
		if _, ok := props[name]; !ok {
			t.Errorf("Missing property %q", name)
		}
	}

	if props["directory"].Type != "string" {
		t.Errorf("directory type = %q", props["directory"].Type)
	}
	if props["recursive"].Type != "boolean" {
		t.Errorf("recursive type = %q", props["recursive"].Type)
	}
	if props["recursive"].Default != false {
		t.Errorf("recursive default = %v, expected false", props["recursive"].Default)
	}

	if want := []string{"directory"}; !reflect.DeepEqual(converted.Function.Parameters.Required, want) {
		t.Errorf("Required = %v, expected %v", converted.Function.Parameters.Required, want)
	}

	if converted.Function.Description != tool.GetShortDescription() {
		t.Errorf("Description should be the short form, got %q", converted.Function.Description)
	}
}

// =============================================================================
// MESSAGE CONVERSION TESTS
// =============================================================================

func TestMessagesToOllama(t *testing.T) {
	conversation := []Message{
		NewSystemMessage("you inspect files"),
		NewUserMessage("list the docs"),
		NewAssistantMessageWithToolCalls("", []ToolCallMessage{
			{ID: "call_1", Name: "list_files", Arguments: map[string]interface{}{"directory": "docs"}},
		}),
		NewToolResultMessage("call_1", "guide.md\nnotes.md"),
	}

	converted := MessagesToOllama(conversation)
	if len(converted) != 4 {
		t.Fatalf("Converted %d messages, expected 4", len(converted))
	}

	wantRoles := []string{"system", "user", "assistant", "tool"}
	for i, want := range wantRoles {
		if converted[i].Role != want {
			t.Errorf("Message %d role = %q, expected %q", i, converted[i].Role, want)
		}
	}

	if len(converted[2].ToolCalls) != 1 {
		t.Fatalf("Assistant message lost its tool call")
	}
	fn := converted[2].ToolCalls[0].Function
	if fn.Name != "list_files" {
		t.Errorf("Tool call name = %q", fn.Name)
	}
	if fn.Arguments["directory"] != "docs" {
		t.Errorf("Tool call arguments = %v", fn.Arguments)
	}

	if converted[3].Content != "guide.md\nnotes.md" {
		t.Errorf("Tool result content = %q", converted[3].Content)
	}
}

func TestOllamaToolCallsToMessages(t *testing.T) {
	calls := []ollama.ToolCall{
		{Function: ollama.ToolFunction{Name: "read_file", Arguments: map[string]interface{}{"file_path": "a.txt"}}},
		{Function: ollama.ToolFunction{Name: "count_files", Arguments: map[string]interface{}{"directory": "."}}},
	}

	converted := OllamaToolCallsToMessages(calls)
	if len(converted) != 2 {
		t.Fatalf("Converted %d calls, expected 2", len(converted))
	}

	for i, call := range converted {
		if call.ID == "" {
			t.Errorf("Call %d has no generated ID", i)
		}
	}
	if converted[0].ID == converted[1].ID {
		t.Error("Generated call IDs should be unique")
	}
	if converted[0].Name != "read_file" || converted[0].Arguments["file_path"] != "a.txt" {
		t.Errorf("First call = %+v", converted[0])
	}

	if OllamaToolCallsToMessages(nil) != nil {
		t.Error("Empty input should convert to nil")
	}
}
