// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
//
// The client covers what fscout needs from a local model server: a fast
// health check, model discovery, and chat completions with tool
// definitions attached.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role, content, and optional tool calls
//   - Tool: JSON Schema tool definition sent with chat requests
//   - ChatResponse: Response structure with message and timing metrics
//
// # Usage
//
// Create a client and send a tool-calling chat request:
//
//	client := ollama.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    // Ollama not reachable
//	}
//	resp, err := client.ChatWithTools(ctx, "llama3.2", messages, tools, nil)
//	if err == nil && resp.Message.HasToolCalls() {
//	    // run the tools, append results, call again
//	}
//
// Chat requests are non-streaming: a tool call only makes sense once
// the assistant's whole message is known.
//
// Transient connection failures are retried per ClientConfig; HTTP
// error statuses are not. EnsureRunning can launch a local server when
// none is reachable (see start.go).
package ollama
