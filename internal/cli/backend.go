// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// backend.go - Shared session construction for fscout commands.
//
// Every command that talks to a model or runs tools goes through a
// Session: config is loaded once, the workspace is resolved, the tool
// registry and executor are bound to it, and the configured provider is
// wrapped into a tools.ChatFunc the agent loop can drive.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/fscout/internal/cloud"
	"github.com/jeranaias/fscout/internal/config"
	"github.com/jeranaias/fscout/internal/ollama"
	"github.com/jeranaias/fscout/internal/tools"
)

// systemPrompt is the instruction set given to the model. It names the
// five operations and tells the model to ground every answer in tool
// output rather than guessing about file contents.
const systemPrompt = `You are a file assistant. You answer questions about the files inside a single workspace directory.

You can only learn about files through your tools:
- list_files: list files in a directory
- read_file: read a file's text (truncated at a character limit)
- search_files: find files whose content contains a keyword
- count_files: count files, optionally by extension
- summarize_file: read a file and summarize its content

Rules:
- Use tools to look at files. Never invent file names or contents.
- Paths are relative to the workspace root. You cannot access anything outside it.
- If a tool reports an error (file not found, unreadable, bad argument), tell the user plainly and move on.
- When output is truncated, say so instead of pretending you saw the whole file.
- Answer concisely once you have what you need. Do not keep calling tools after the question is answered.`

// Session bundles everything a command needs to run tools and talk to
// the configured model backend.
type Session struct {
	Cfg      *config.Config
	Workspace *tools.Workspace
	Registry *tools.Registry
	Executor *tools.Executor

	// Provider is "ollama" or "cloud" after overrides are applied.
	Provider string
	// Model is the resolved model name for the active provider.
	Model string

	// Ollama is set when Provider == "ollama".
	Ollama *ollama.Client
	// Cloud is set when Provider == "cloud".
	Cloud *cloud.Client
}

// NewSession loads configuration, applies CLI overrides, and builds the
// workspace-bound toolchain. The model client for the configured
// provider is created but not contacted; reachability is the caller's
// concern (doctor checks it, chat/ask fail on first use).
func NewSession(args Args) (*Session, error) {
	cfg := config.Global().Clone()
	applyArgOverrides(cfg, args)

	root := cfg.WorkspaceRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, WrapError(err, "cannot determine working directory")
		}
		root = cwd
	}

	ws, err := tools.NewWorkspace(root)
	if err != nil {
		return nil, WrapError(err, "workspace root")
	}

	registry := tools.NewRegistry(ws)
	executor := tools.NewExecutor(registry)
	if cfg.Tools.TimeoutSecs > 0 {
		executor.SetTimeout(time.Duration(cfg.Tools.TimeoutSecs) * time.Second)
	}

	s := &Session{
		Cfg:       cfg,
		Workspace: ws,
		Registry:  registry,
		Executor:  executor,
		Provider:  cfg.Provider,
		Model:     cfg.Model(),
	}

	switch cfg.Provider {
	case "cloud":
		// A missing key is not fatal here: status and doctor still need a
		// session to report on. Commands that talk to the model call
		// RequireBackend first.
		client := cloud.NewClient(cfg.CloudAPIKey()).
			WithBaseURL(cfg.Cloud.BaseURL).
			WithTimeout(time.Duration(cfg.Cloud.RequestTimeoutSecs) * time.Second)
		if cfg.Cloud.RequestsPerMinute > 0 {
			client = client.WithRateLimit(cfg.Cloud.RequestsPerMinute)
		}
		client.SetModel(cfg.Cloud.Model)
		s.Cloud = client

	default:
		s.Ollama = ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL:      cfg.Ollama.URL,
			DefaultModel: cfg.Ollama.Model,
			Timeout:      time.Duration(cfg.Ollama.RequestTimeoutSecs) * time.Second,
		})
	}

	return s, nil
}

// applyArgOverrides writes CLI flag values over the loaded config.
// Flags always win over file and environment values.
func applyArgOverrides(cfg *config.Config, args Args) {
	if args.Model != "" {
		cfg.SetModel(args.Model)
	}
	if args.Root != "" {
		cfg.WorkspaceRoot = args.Root
	}
	if args.MaxIter > 0 {
		cfg.MaxIterations = args.MaxIter
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	if args.RawOut {
		cfg.UI.Raw = true
	}
	if args.Verbose {
		cfg.UI.Verbose = true
	}
}

// NewLoop builds an agent loop over the session's executor with the
// configured iteration cap and the system prompt installed.
func (s *Session) NewLoop() *tools.AgenticLoop {
	loop := tools.NewAgenticLoop(s.Executor)
	loop.SetMaxIterations(s.Cfg.MaxIterations)
	loop.AddMessage(tools.NewSystemMessage(systemPrompt))
	return loop
}

// ChatFunc returns the adapter for the session's provider. Both
// adapters translate the loop's messages and tool schemas to the wire
// format of their client and translate tool calls back.
func (s *Session) ChatFunc(ctx context.Context) tools.ChatFunc {
	if s.Provider == "cloud" {
		return s.cloudChatFunc(ctx)
	}
	return s.ollamaChatFunc(ctx)
}

// ollamaChatFunc adapts the local Ollama client. Ollama does not assign
// tool call IDs, so the conversion layer mints them; responses from
// small models that embed tool calls in prose are recovered by the
// fallback parser.
func (s *Session) ollamaChatFunc(ctx context.Context) tools.ChatFunc {
	ollamaTools := s.Registry.ToOllamaTools()

	return func(messages []tools.Message) (string, []tools.ToolCallMessage, error) {
		resp, err := s.Ollama.ChatWithTools(ctx, s.Model, tools.MessagesToOllama(messages), ollamaTools, nil)
		if err != nil {
			return "", nil, err
		}

		content := resp.Message.Content
		calls := tools.OllamaToolCallsToMessages(resp.Message.ToolCalls)

		// Models without native tool support sometimes answer with the
		// call as JSON text instead of a structured tool_calls field.
		if len(calls) == 0 {
			if parsed := tools.ParseToolCallsFromResponse(content); len(parsed) > 0 {
				calls = parsed
				content = ""
			}
		}

		return content, calls, nil
	}
}

// cloudChatFunc adapts the hosted OpenAI-compatible client.
func (s *Session) cloudChatFunc(ctx context.Context) tools.ChatFunc {
	cloudTools := s.Registry.ToCloudTools()

	return func(messages []tools.Message) (string, []tools.ToolCallMessage, error) {
		resp, err := s.Cloud.ChatWithTools(ctx, tools.MessagesToCloud(messages), cloudTools)
		if err != nil {
			return "", nil, err
		}

		return resp.GetContent(), tools.CloudToolCallsToMessages(resp.GetToolCalls()), nil
	}
}

// RequireBackend returns an error when the active provider cannot be
// used at all (currently: cloud selected without an API key).
func (s *Session) RequireBackend() error {
	if s.Provider == "cloud" && !s.Cloud.IsConfigured() {
		return fmt.Errorf("cloud provider selected but no API key found in $%s", s.Cfg.Cloud.APIKeyEnv)
	}
	return nil
}

// CheckBackend verifies the configured backend answers at all, with a
// short timeout so status/doctor stay snappy.
func (s *Session) CheckBackend(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if s.Provider == "cloud" {
		if !s.Cloud.IsConfigured() {
			return fmt.Errorf("cloud API key not configured")
		}
		_, err := s.Cloud.ListModels(ctx)
		return err
	}
	return s.Ollama.CheckRunning(ctx)
}

// BackendURL reports the endpoint of the active provider for display.
func (s *Session) BackendURL() string {
	if s.Provider == "cloud" {
		return s.Cfg.Cloud.BaseURL
	}
	return s.Cfg.Ollama.URL
}
