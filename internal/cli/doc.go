// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the fscout command-line interface.
//
// This package contains the argument parser, command handlers, output
// formatting (styled terminal output and JSON envelopes), and the session
// wiring that connects configuration, the tool registry, and the model
// backends.
//
// # Commands
//
//   - chat: interactive REPL driving the agentic tool loop (default)
//   - ask: one-shot question, answer printed to stdout
//   - tools: list registered tools or run one directly
//   - status: configuration and backend overview
//   - doctor: health checks with non-zero exit on failure
//   - config: show, get, set, path, keys
//   - version, help
//
// # Key Types
//
//   - Args: parsed command-line arguments
//   - Session: per-invocation wiring of config, workspace, registry,
//     executor, and the selected model backend
//   - JSONResponse: envelope for --json output
//   - ArgParser: flag and positional argument parsing
//
// # Usage
//
// main.go dispatches on the parsed command:
//
//	args, err := cli.Parse()
//	if err != nil {
//	    cli.HandleErrorAndExit(err, false)
//	}
//	switch args.Command {
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	...
//
// # Exit Codes
//
// Handlers return errors; GetExitCode maps them to stable exit codes:
// 0 success, 1 general, 2 usage, 3 config, 4 authentication, 5 network,
// 6 workspace confinement, 7 not found, 8 timeout.
package cli
