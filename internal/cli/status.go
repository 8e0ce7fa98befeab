// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for the fscout CLI.
//
// Handles the "fscout status" command: a quick summary of the active
// configuration, workspace root, and whether the chat backend answers.
//
// Command: status (alias: s)
//
// Examples:
//   fscout status
//   fscout status --json
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	session, err := NewSession(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	data := collectStatus(session)

	if args.JSON {
		return NewJSONResponse("status", data).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("fscout Status"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	// Workspace
	fmt.Println(SectionStyle.Render("Workspace"))
	fmt.Printf("  %s %s\n", RenderLabel("Root:"), ValueStyle.Render(data.Workspace.Root))
	if data.Workspace.Readable {
		fmt.Printf("  %s %s\n", RenderLabel("Access:"), RenderStatus("ok"))
	} else {
		fmt.Printf("  %s %s not readable\n", RenderLabel("Access:"), RenderStatus("fail"))
	}

	// Backend
	fmt.Println()
	fmt.Println(SectionStyle.Render("Backend"))
	fmt.Printf("  %s %s\n", RenderLabel("Provider:"), ValueStyle.Render(data.Provider))
	fmt.Printf("  %s %s\n", RenderLabel("URL:"), ValueStyle.Render(data.Backend.URL))
	fmt.Printf("  %s %s\n", RenderLabel("Model:"), ValueStyle.Render(data.Backend.Model))
	if data.Backend.Reachable {
		fmt.Printf("  %s %s\n", RenderLabel("Reachable:"), RenderStatus("ok"))
	} else {
		fmt.Printf("  %s %s %s\n", RenderLabel("Reachable:"), RenderStatus("fail"),
			DimStyle.Render(data.Backend.Detail))
	}
	if data.Provider == "cloud" {
		if data.Backend.KeySet {
			fmt.Printf("  %s %s\n", RenderLabel("API key:"), RenderStatus("ok"))
		} else {
			fmt.Printf("  %s %s $%s not set\n", RenderLabel("API key:"),
				RenderStatus("fail"), session.Cfg.Cloud.APIKeyEnv)
		}
	}

	// Tools
	fmt.Println()
	fmt.Println(SectionStyle.Render("Tools"))
	fmt.Printf("  %s %s\n", RenderLabel("Registered:"),
		ValueStyle.Render(strings.Join(data.Tools.Registered, ", ")))
	fmt.Printf("  %s %d chars read, %d chars summarize\n", RenderLabel("Ceilings:"),
		data.Tools.ReadMaxChars, data.Tools.SummarizeMaxChars)
	fmt.Printf("  %s %ds per call\n", RenderLabel("Timeout:"), data.Tools.TimeoutSecs)

	fmt.Println()
	return nil
}

// collectStatus gathers status data shared by text and JSON output.
func collectStatus(session *Session) StatusData {
	data := StatusData{
		Provider: session.Provider,
		Workspace: StatusWorkspaceInfo{
			Root: session.Workspace.Root(),
		},
		Backend: StatusBackendInfo{
			URL:   session.BackendURL(),
			Model: session.Model,
		},
		Tools: StatusToolsInfo{
			Registered:        session.Registry.Names(),
			ReadMaxChars:      session.Cfg.Tools.ReadMaxChars,
			SummarizeMaxChars: session.Cfg.Tools.SummarizeMaxChars,
			TimeoutSecs:       session.Cfg.Tools.TimeoutSecs,
		},
	}

	if info, err := os.Stat(session.Workspace.Root()); err == nil && info.IsDir() {
		data.Workspace.Exists = true
		if _, err := os.ReadDir(session.Workspace.Root()); err == nil {
			data.Workspace.Readable = true
		}
	}

	if err := session.CheckBackend(context.Background()); err == nil {
		data.Backend.Reachable = true
	} else {
		data.Backend.Detail = err.Error()
	}

	if session.Provider == "cloud" {
		data.Backend.KeySet = session.Cfg.CloudAPIKey() != ""
	}

	return data
}
