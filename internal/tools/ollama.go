// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// ollama.go converts between the internal tool and message types and
// the Ollama API wire format.
package tools

import (
	"github.com/jeranaias/fscout/internal/ollama"
)

// ToOllamaTools converts the registry's tools to Ollama API format.
func (r *Registry) ToOllamaTools() []ollama.Tool {
	tools := r.All()
	result := make([]ollama.Tool, 0, len(tools))

	for _, tool := range tools {
		result = append(result, ToolToOllama(tool))
	}

	return result
}

// ToolToOllama converts a single Tool to Ollama API format.
// The conversion follows the JSON Schema shape expected by Ollama's
// tool calling API:
//
//	{
//	  "type": "function",
//	  "function": {
//	    "name": "tool_name",
//	    "description": "What the tool does",
//	    "parameters": {
//	      "type": "object",
//	      "properties": {
//	        "param_name": {"type": "string", "description": "..."}
//	      },
//	      "required": ["param_name"]
//	    }
//	  }
//	}
func ToolToOllama(tool *Tool) ollama.Tool {
	properties := make(map[string]ollama.ToolProperty)
	var required []string

	for _, param := range tool.Schema.Parameters {
		prop := ollama.ToolProperty{
			Type:        param.Type,
			Description: param.Description,
		}

		// Defaults help models understand optional parameters
		if param.Default != nil {
			prop.Default = param.Default
		}
		if len(param.Enum) > 0 {
			prop.Enum = param.Enum
		}

		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	return ollama.Tool{
		Type: "function",
		Function: ollama.ToolSchema{
			Name:        tool.Name,
			Description: tool.GetShortDescription(), // Short form for LLM schemas
			Parameters: ollama.ToolParameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

// MessageToOllama converts a conversation message to the Ollama wire
// format.
func MessageToOllama(msg Message) ollama.Message {
	ollamaMsg := ollama.Message{
		Role:    msg.Role,
		Content: msg.Content,
	}

	if len(msg.ToolCalls) > 0 {
		ollamaMsg.ToolCalls = make([]ollama.ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			ollamaMsg.ToolCalls[i] = ollama.ToolCall{
				Function: ollama.ToolFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			}
		}
	}

	return ollamaMsg
}

// MessagesToOllama converts a conversation to the Ollama wire format.
func MessagesToOllama(msgs []Message) []ollama.Message {
	result := make([]ollama.Message, len(msgs))
	for i, msg := range msgs {
		result[i] = MessageToOllama(msg)
	}
	return result
}

// OllamaToolCallsToMessages converts tool calls from an Ollama response
// to the internal format.
func OllamaToolCallsToMessages(calls []ollama.ToolCall) []ToolCallMessage {
	if len(calls) == 0 {
		return nil
	}

	result := make([]ToolCallMessage, len(calls))
	for i, call := range calls {
		result[i] = ToolCallMessage{
			ID:        generateCallID(), // Ollama does not provide call IDs
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}
