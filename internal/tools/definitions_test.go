// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"reflect"
	"testing"
)

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryContents(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	want := []string{"count_files", "list_files", "read_file", "search_files", "summarize_file"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, expected %v", got, want)
	}

	for _, name := range want {
		tool := registry.Get(name)
		if tool == nil {
			t.Fatalf("Get(%q) returned nil", name)
		}
		if tool.Name != name {
			t.Errorf("Get(%q).Name = %q", name, tool.Name)
		}
		if tool.Executor == nil {
			t.Errorf("Tool %q has no executor", name)
		}
	}

	if registry.Get("delete_files") != nil {
		t.Error("Get() for an unregistered name should return nil")
	}
}

func TestRegistryAllSorted(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	all := registry.All()
	if len(all) != 5 {
		t.Fatalf("All() returned %d tools, expected 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("All() not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestRegistryRegisterOverrides(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	replacement := &Tool{Name: "list_files", Description: "replaced"}
	registry.Register(replacement)

	if got := registry.Get("list_files"); got != replacement {
		t.Error("Register() should replace an existing tool by name")
	}
	if len(registry.Names()) != 5 {
		t.Errorf("Replacing a tool should not change the count, got %d", len(registry.Names()))
	}
}

// =============================================================================
// SCHEMA TESTS
// =============================================================================

// TestToolSchemas pins down the parameter surface each operation
// advertises to the model.
func TestToolSchemas(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	registry := NewRegistry(ws)

	tests := []struct {
		tool     string
		required []string
		optional map[string]interface{} // name -> expected default
	}{
		{
			tool:     "list_files",
			required: []string{"directory"},
			optional: map[string]interface{}{"extension": nil, "recursive": false},
		},
		{
			tool:     "count_files",
			required: []string{"directory"},
			optional: map[string]interface{}{"extension": nil, "recursive": false},
		},
		{
			tool:     "read_file",
			required: []string{"file_path"},
			optional: map[string]interface{}{"max_chars": DefaultReadMaxChars},
		},
		{
			tool:     "summarize_file",
			required: []string{"file_path"},
			optional: map[string]interface{}{"max_chars": DefaultSummarizeMaxChars},
		},
		{
			tool:     "search_files",
			required: []string{"directory", "keyword"},
			optional: map[string]interface{}{"recursive": false},
		},
	}

	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			tool := registry.Get(tc.tool)
			if tool == nil {
				t.Fatalf("tool %q not registered", tc.tool)
			}

			params := make(map[string]Parameter)
			for _, p := range tool.Schema.Parameters {
				params[p.Name] = p
			}

			if len(params) != len(tc.required)+len(tc.optional) {
				t.Errorf("Expected %d parameters, schema has %d",
					len(tc.required)+len(tc.optional), len(params))
			}

			for _, name := range tc.required {
				p, ok := params[name]
				if !ok {
					t.Errorf("Missing required parameter %q", name)
					continue
				}
				if !p.Required {
					t.Errorf("Parameter %q should be required", name)
				}
			}

			for name, wantDefault := range tc.optional {
				p, ok := params[name]
				if !ok {
					t.Errorf("Missing optional parameter %q", name)
					continue
				}
				if p.Required {
					t.Errorf("Parameter %q should be optional", name)
				}
				if wantDefault != nil && !reflect.DeepEqual(p.Default, wantDefault) {
					t.Errorf("Parameter %q default = %v, expected %v", name, p.Default, wantDefault)
				}
			}
		})
	}
}

// TestToolDescriptions verifies every tool carries usable schema text.
func TestToolDescriptions(t *testing.T) {
	ws := newTestWorkspace(t, nil)

	for _, tool := range NewRegistry(ws).All() {
		short := tool.GetShortDescription()
		if short == "" {
			t.Errorf("Tool %q has no short description", tool.Name)
		}
		if len(short) > 125 {
			t.Errorf("Tool %q short description is %d chars, should stay under 125", tool.Name, len(short))
		}
		if tool.Description == "" {
			t.Errorf("Tool %q has no long description", tool.Name)
		}
		for _, param := range tool.Schema.Parameters {
			if param.Description == "" {
				t.Errorf("Tool %q parameter %q has no description", tool.Name, param.Name)
			}
		}
	}
}

func TestGetShortDescription(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
		want string
	}{
		{
			name: "explicit short description wins",
			tool: Tool{ShortDescription: "short form", Description: "long form\nmore detail"},
			want: "short form",
		},
		{
			name: "first line of multi-line description",
			tool: Tool{Description: "first line\nsecond line"},
			want: "first line",
		},
		{
			name: "single-line description",
			tool: Tool{Description: "only line"},
			want: "only line",
		},
		{
			name: "empty",
			tool: Tool{},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tool.GetShortDescription(); got != tc.want {
				t.Errorf("GetShortDescription() = %q, expected %q", got, tc.want)
			}
		})
	}
}

// =============================================================================
// PARAMETER EXTRACTION TESTS
// =============================================================================

func TestToolCallGetters(t *testing.T) {
	call := ToolCall{
		ID:   "call_1",
		Name: "read_file",
		Params: map[string]interface{}{
			"file_path": "docs/readme.md",
			"max_chars": float64(120), // JSON numbers decode as float64
			"recursive": true,
		},
	}

	if got := call.GetString("file_path", ""); got != "docs/readme.md" {
		t.Errorf("GetString(file_path) = %q", got)
	}
	if got := call.GetString("missing", "fallback"); got != "fallback" {
		t.Errorf("GetString(missing) = %q, expected fallback", got)
	}
	if got := call.GetInt("max_chars", 0); got != 120 {
		t.Errorf("GetInt(max_chars) = %d, expected 120", got)
	}
	if got := call.GetInt("missing", 42); got != 42 {
		t.Errorf("GetInt(missing) = %d, expected 42", got)
	}
	if got := call.GetBool("recursive", false); !got {
		t.Error("GetBool(recursive) should be true")
	}
	if got := call.GetBool("missing", true); !got {
		t.Error("GetBool(missing) should fall back to true")
	}
}

func TestParamHelperTypeCoercion(t *testing.T) {
	params := map[string]interface{}{
		"as_int":     7,
		"as_int64":   int64(8),
		"as_float":   float64(9),
		"wrong_type": "not a number",
	}

	if got := getIntParam(params, "as_int", 0); got != 7 {
		t.Errorf("getIntParam(int) = %d, expected 7", got)
	}
	if got := getIntParam(params, "as_int64", 0); got != 8 {
		t.Errorf("getIntParam(int64) = %d, expected 8", got)
	}
	if got := getIntParam(params, "as_float", 0); got != 9 {
		t.Errorf("getIntParam(float64) = %d, expected 9", got)
	}
	if got := getIntParam(params, "wrong_type", 5); got != 5 {
		t.Errorf("getIntParam(wrong type) = %d, expected default 5", got)
	}

	if got := getStringParam(params, "as_int", "dflt"); got != "dflt" {
		t.Errorf("getStringParam(wrong type) = %q, expected default", got)
	}
	if got := getBoolParam(params, "wrong_type", true); !got {
		t.Error("getBoolParam(wrong type) should fall back to default")
	}
}
