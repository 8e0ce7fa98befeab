// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides an OpenAI-compatible chat client for hosted
// LLM inference.
//
// The client targets the /chat/completions endpoint and works with any
// service that speaks the OpenAI wire format, including the official API
// and self-hosted gateways. Tool schemas ride along with each request so
// the model can call the fscout file inspection tools.
//
// # Key Types
//
//   - Client: HTTP client with retries, backoff, and rate limiting
//   - Message: chat message in the OpenAI wire format
//   - Tool: function schema advertised to the model
//   - ChatResponse: completion with choices, usage, and tool calls
//
// # Usage
//
// Create a client and send a chat request with tools:
//
//	client := cloud.NewClient(apiKey)
//	resp, err := client.ChatWithTools(ctx, messages, tools)
//	if err != nil {
//	    return err
//	}
//	if resp.HasToolCalls() {
//	    for _, call := range resp.GetToolCalls() {
//	        args, _ := call.Function.ArgumentsMap()
//	        // execute and answer with NewToolResultMessage(call.ID, output)
//	    }
//	}
//
// # Security
//
// API keys are resolved from the environment by the config layer and are
// never logged; display paths use APIKeyMasked. All requests use TLS 1.2+.
package cloud
