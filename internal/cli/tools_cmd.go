// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tools_cmd.go - Tool listing and direct invocation for the fscout CLI.
//
// Handles the "fscout tools" command:
//   fscout tools                 List registered tools and parameters
//   fscout tools run <name> ...  Run one tool directly, no model involved
//
// Direct runs go through the same registry and executor as the agent
// loop, so the output is exactly what the model would see.
//
// Examples:
//   fscout tools
//   fscout tools run list_files --dir src --recursive
//   fscout tools run read_file --path README.md --max-chars 500
//   fscout tools run search_files --keyword TODO --recursive
//   fscout tools run count_files --ext .go --recursive
//   fscout tools run summarize_file --path docs/guide.md
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/fscout/internal/tools"
)

// HandleTools handles the "tools" command and its "run" subcommand.
func HandleTools(args Args) error {
	switch args.Subcommand {
	case "", "list", "ls":
		return handleToolsList(args)
	case "run":
		return handleToolsRun(args)
	default:
		return NewValidationErrorWithExample(
			"subcommand", args.Subcommand,
			"unknown tools subcommand",
			"fscout tools | fscout tools run <name> [flags]")
	}
}

// handleToolsList prints the registered tools with their parameters.
func handleToolsList(args Args) error {
	session, err := NewSession(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	if args.JSON {
		data := ToolsListData{}
		for _, tool := range session.Registry.All() {
			info := ToolInfo{
				Name:        tool.Name,
				Description: tool.GetShortDescription(),
			}
			for _, p := range tool.Schema.Parameters {
				info.Parameters = append(info.Parameters, ToolParamInfo{
					Name:        p.Name,
					Type:        p.Type,
					Required:    p.Required,
					Default:     p.Default,
					Description: p.Description,
				})
			}
			data.Tools = append(data.Tools, info)
		}
		return NewJSONResponse("tools", data).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Registered Tools"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))

	for _, tool := range session.Registry.All() {
		fmt.Println()
		fmt.Printf("%s\n", HighlightStyle.Render(tool.Name))
		fmt.Printf("  %s\n", ValueStyle.Render(tool.GetShortDescription()))
		for _, p := range tool.Schema.Parameters {
			req := ""
			if p.Required {
				req = " (required)"
			}
			fmt.Printf("  %s %s %s%s\n",
				DimStyle.Render("--"+strings.ReplaceAll(p.Name, "_", "-")),
				DimStyle.Render(p.Type),
				ValueStyle.Render(p.Description),
				DimStyle.Render(req))
		}
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Run one directly: fscout tools run <name> [flags]"))
	fmt.Println()
	return nil
}

// handleToolsRun invokes one tool through the executor.
func handleToolsRun(args Args) error {
	if args.ToolName == "" {
		return HandleError(ErrMissingArgument("tool name",
			"fscout tools run list_files --recursive"), args.JSON)
	}

	session, err := NewSession(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	tool := session.Registry.Get(args.ToolName)
	if tool == nil {
		err := ErrNotFound("tool", args.ToolName)
		DisplayError(err, args.JSON)
		if suggestion := SuggestClosest(args.ToolName, session.Registry.Names()); suggestion != "" {
			fmt.Printf("Did you mean: %s\n", suggestion)
		}
		fmt.Printf("Available tools: %s\n", strings.Join(session.Registry.Names(), ", "))
		return err
	}

	params, err := toolParamsFromFlags(tool, args.Raw)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	// Directory-taking tools default to the workspace root so a bare
	// "tools run list_files" works
	for _, p := range tool.Schema.Parameters {
		if p.Name == "directory" && p.Required {
			if _, ok := params["directory"]; !ok {
				params["directory"] = "."
			}
		}
	}

	// Configured ceilings apply to direct runs when no flag was given
	if _, ok := params["max_chars"]; !ok {
		switch args.ToolName {
		case "read_file":
			params["max_chars"] = session.Cfg.Tools.ReadMaxChars
		case "summarize_file":
			params["max_chars"] = session.Cfg.Tools.SummarizeMaxChars
		}
	}

	result, _ := session.Executor.Execute(context.Background(), tools.ToolCall{
		Name:   args.ToolName,
		Params: params,
	})

	if args.JSON {
		data := ToolRunData{
			Tool:         args.ToolName,
			Success:      result.Success,
			Output:       result.Output,
			Error:        result.Error,
			DurationMs:   result.Duration.Milliseconds(),
			Truncated:    result.Truncated,
			BytesRead:    result.BytesRead,
			MatchCount:   result.MatchCount,
			FilesMatched: result.FilesMatched,
		}
		if result.Success {
			return NewJSONResponse("tools run", data).Print()
		}
		resp := NewJSONErrorResponseStr("tools run", result.Error)
		resp.Data = data
		resp.Print()
		return fmt.Errorf("%s", result.Error)
	}

	if !result.Success {
		fmt.Printf("%s %s\n", RenderStatus("fail"), result.Error)
		return fmt.Errorf("%s", result.Error)
	}

	fmt.Println(result.Output)
	if !args.Quiet {
		line := fmt.Sprintf("%s in %s", args.ToolName, result.Duration.Round(time.Millisecond))
		if result.BytesRead > 0 {
			line += fmt.Sprintf(", %s read", formatBytes(result.BytesRead))
		}
		if result.Truncated {
			line += " (output truncated)"
		}
		StderrPrintln(DimStyle.Render(line))
	}
	return nil
}

// toolParamsFromFlags converts command-line flags to tool parameters
// using the tool's own schema. Flag names are the parameter names with
// underscores swapped for dashes (--max-chars -> max_chars); integers
// and booleans are converted to the schema's declared type.
func toolParamsFromFlags(tool *tools.Tool, raw []string) (map[string]interface{}, error) {
	// Skip the "run <name>" prefix that parseToolsArgs already consumed
	flagArgs := raw
	if len(flagArgs) > 0 && flagArgs[0] == "run" {
		flagArgs = flagArgs[1:]
	}
	if len(flagArgs) > 0 && !strings.HasPrefix(flagArgs[0], "-") {
		flagArgs = flagArgs[1:]
	}

	parser := NewArgParser(flagArgs)
	params := make(map[string]interface{})

	for _, p := range tool.Schema.Parameters {
		names := []string{strings.ReplaceAll(p.Name, "_", "-"), p.Name}
		if alias, ok := paramAliases[p.Name]; ok {
			names = append(names, alias)
		}

		switch p.Type {
		case "boolean":
			for _, name := range names {
				if parser.BoolFlag(name) {
					params[p.Name] = true
					break
				}
			}
		case "integer":
			if val := firstFlag(parser, names); val != "" {
				n, err := strconv.Atoi(val)
				if err != nil {
					return nil, NewValidationError(p.Name, val, "must be an integer")
				}
				params[p.Name] = n
			}
		default:
			if val := firstFlag(parser, names); val != "" {
				params[p.Name] = val
			}
		}
	}

	return params, nil
}

// paramAliases maps schema parameter names to short flag aliases.
var paramAliases = map[string]string{
	"directory": "dir",
	"file_path": "path",
	"extension": "ext",
}

// firstFlag returns the first non-empty value among the given flag names.
func firstFlag(parser *ArgParser, names []string) string {
	for _, name := range names {
		if val := parser.Flag(name); val != "" {
			return val
		}
	}
	return ""
}
