// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the fscout CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering for better CLI experience
//
// Handles the "fscout ask" command: one question, one agent run, one
// answer. The model gets the file tools and iterates until it answers
// or hits a limit.
//
// Command: ask [question]
// Short:   Ask a single question about the workspace
//
// Examples:
//   fscout ask "What's in this project?"
//   fscout ask --raw "List every .md file"
//   fscout ask --json "How many Go files are there?"
//   fscout ask --max-iter 20 "Summarize each file in docs/"
//   echo "Which file mentions invoices?" | fscout ask
//
// Flags:
//   -m, --model NAME    Use specific model (overrides config)
//   --max-iter N        Max agent iterations (default from config)
//   --raw               Plain text output (no markdown rendering)
//   --json              Output response as JSON
//   -q, --quiet         Minimal output
//   -v, --verbose       Show tool calls
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/fscout/internal/tools"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown answers with syntax highlighting.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	question := args.Query

	// Piped input: read the question from stdin when none was given
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			reader := bufio.NewReader(os.Stdin)
			stdinData, err := io.ReadAll(reader)
			if err == nil && len(stdinData) > 0 {
				question = strings.TrimSpace(string(stdinData))
			}
		}
	}

	if question == "" {
		err := ErrMissingArgument("question", `fscout ask "your question"`)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	session, err := NewSession(args)
	if err == nil {
		err = session.RequireBackend()
	}
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	loop := session.NewLoop()
	toolCalls := 0
	loop.SetCallbacks(
		func(name string, callArgs map[string]interface{}) {
			toolCalls++
			if args.Verbose {
				fmt.Fprintf(os.Stderr, "%s %s %v\n", infoStyle.Render("[tool]"), name, callArgs)
			} else if !args.Quiet && !args.JSON {
				fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[tool]"), name)
			}
		},
		func(name string, result tools.Result) {
			if args.Verbose {
				status := "ok"
				if !result.Success {
					status = "failed: " + result.Error
				}
				fmt.Fprintf(os.Stderr, "%s %s %s (%s)\n",
					infoStyle.Render("[tool]"), name, status,
					result.Duration.Round(time.Millisecond))
			}
		},
	)

	ctx := context.Background()
	startTime := time.Now()

	answer, err := loop.RunWithInitialMessage(ctx, session.ChatFunc(ctx), question)
	duration := time.Since(startTime)

	if err != nil {
		err = describeLoopStop(err)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	if args.JSON {
		data := AskData{
			Response:   answer,
			Provider:   session.Provider,
			Model:      session.Model,
			Iterations: loop.CurrentIteration(),
			ToolCalls:  toolCalls,
			DurationMs: duration.Milliseconds(),
		}
		return NewJSONResponse("ask", data).Print()
	}

	// USABILITY: Render markdown on TTY, plain everywhere else.
	// --raw forces plain output even on a TTY.
	if session.Cfg.UI.Raw || !IsStdoutTTY() {
		fmt.Println(answer)
	} else {
		fmt.Print(renderMarkdown(answer))
		fmt.Println()
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s | %d iteration(s) | %d tool call(s) | %s\n",
			infoStyle.Render("[done]"),
			session.Model,
			loop.CurrentIteration(),
			toolCalls,
			formatDurationShort(duration))
	}

	return nil
}
