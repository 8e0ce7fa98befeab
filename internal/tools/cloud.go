// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"

	"github.com/jeranaias/fscout/internal/cloud"
)

// ToCloudTools converts all registered tools to the cloud API format.
func (r *Registry) ToCloudTools() []cloud.Tool {
	all := r.All()
	result := make([]cloud.Tool, 0, len(all))
	for _, tool := range all {
		result = append(result, ToolToCloud(tool))
	}
	return result
}

// ToolToCloud converts a tool definition to the cloud function schema.
// The shape matches what OpenAI-compatible endpoints expect:
//
//	{
//	  "type": "function",
//	  "function": {
//	    "name": "...",
//	    "description": "...",
//	    "parameters": {"type": "object", "properties": {...}, "required": [...]}
//	  }
//	}
func ToolToCloud(tool *Tool) cloud.Tool {
	properties := make(map[string]cloud.ToolProperty)
	var required []string

	for _, param := range tool.Schema.Parameters {
		prop := cloud.ToolProperty{
			Type:        param.Type,
			Description: param.Description,
		}
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

	return cloud.Tool{
		Type: "function",
		Function: cloud.ToolSchema{
			Name:        tool.Name,
			Description: tool.GetShortDescription(), // Short form for LLM schemas
			Parameters: cloud.ToolParameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

// MessageToCloud converts a conversation message to the cloud wire format.
// Tool call arguments travel as JSON-encoded strings on this wire.
func MessageToCloud(msg Message) cloud.Message {
	out := cloud.Message{
		Role:       msg.Role,
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}

	for _, call := range msg.ToolCalls {
		args, err := json.Marshal(call.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		out.ToolCalls = append(out.ToolCalls, cloud.ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: cloud.FunctionCall{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}

	return out
}

// MessagesToCloud converts a conversation to the cloud wire format.
func MessagesToCloud(messages []Message) []cloud.Message {
	result := make([]cloud.Message, 0, len(messages))
	for _, msg := range messages {
		result = append(result, MessageToCloud(msg))
	}
	return result
}

// CloudToolCallsToMessages converts tool calls from a cloud response into
// loop messages. Cloud call IDs are echoed back so tool results correlate
// with the calls that produced them.
func CloudToolCallsToMessages(calls []cloud.ToolCall) []ToolCallMessage {
	if len(calls) == 0 {
		return nil
	}

	result := make([]ToolCallMessage, 0, len(calls))
	for _, call := range calls {
		args, err := call.Function.ArgumentsMap()
		if err != nil {
			args = map[string]interface{}{}
		}
		id := call.ID
		if id == "" {
			id = generateCallID()
		}
		result = append(result, ToolCallMessage{
			ID:        id,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return result
}
