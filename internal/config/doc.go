// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for fscout.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - OllamaConfig: Local Ollama server settings
//   - CloudConfig: Hosted OpenAI-compatible API settings (the API key itself
//     stays in the environment; only the variable name is configured)
//   - ToolsConfig: File-inspection ceilings and timeouts
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FSCOUT_*)
//   - ~/.fscout/config.toml
//   - ~/.fscout/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Model()
//	root := cfg.WorkspaceRoot
package config
