// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the fscout CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and line editing for better CLI experience
//
// Handles the "fscout chat" command (also the default when fscout runs
// with no arguments): a REPL where each user turn runs through the agent
// loop, so the model can call file tools before answering.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   fscout                            Chat about the current directory
//   fscout chat --model qwen2.5:7b    Use a specific model
//   fscout --root ~/notes chat        Chat about another directory
//
// Interactive Commands (during chat):
//   /help        Show available commands
//   /tools       List the model's tools
//   /clear       Clear conversation history
//   /quit        Exit chat (also: exit, quit)
//   Ctrl+C       Cancel the current turn
//   Ctrl+D       Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/fscout/internal/tools"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	// Info style
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Command style
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// Error style (stderr tool/turn failures)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// Session summary header
	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)
)

// =============================================================================
// INPUT HANDLING
// =============================================================================

// ChatCLI wraps liner for interactive input. History lives in memory for
// the life of the session; nothing typed is persisted to disk.
type ChatCLI struct {
	line *liner.State
}

// NewChatCLI creates a new ChatCLI with line editing support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &ChatCLI{line: line}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// Close restores the terminal.
func (c *ChatCLI) Close() {
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	*Session

	// Loop carries the conversation across turns.
	Loop *tools.AgenticLoop

	Quiet   bool
	Verbose bool

	// Tracking
	StartTime  time.Time
	Turns      int
	ToolCalls  int
	CancelFunc context.CancelFunc

	// Input handler
	InputCLI *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	base, err := NewSession(args)
	if err != nil {
		return err
	}
	if err := base.RequireBackend(); err != nil {
		return err
	}

	session := &ChatSession{
		Session:   base,
		Loop:      base.NewLoop(),
		Quiet:     args.Quiet,
		Verbose:   args.Verbose || base.Cfg.UI.Verbose,
		StartTime: time.Now(),
		InputCLI:  NewChatCLI(),
	}

	// Surface tool activity as it happens
	session.Loop.SetCallbacks(
		func(name string, callArgs map[string]interface{}) {
			session.ToolCalls++
			if session.Verbose {
				fmt.Fprintf(os.Stderr, "%s %s %v\n",
					infoStyle.Render("[tool]"), name, callArgs)
			} else if !session.Quiet {
				fmt.Fprintf(os.Stderr, "%s %s\n",
					infoStyle.Render("[tool]"), name)
			}
		},
		func(name string, result tools.Result) {
			if session.Verbose {
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

	// Fail fast when the backend is down, rather than on the first turn
	if err := base.CheckBackend(context.Background()); err != nil {
		if base.Provider == "cloud" {
			return WrapError(err, "cloud API not reachable")
		}
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	if !session.Quiet {
		printWelcome(session)
	}

	defer session.InputCLI.Close()

	// First Ctrl+C cancels the in-flight turn instead of killing the REPL
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	// Main REPL loop
	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("fscout> "))
		if err != nil {
			// liner.ErrPromptAborted (Ctrl+C at prompt) and EOF (Ctrl+D)
			// both end the session
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Slash commands
		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		// Bare exit/quit also end the session
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processTurn(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// processTurn runs one user message through the agent loop and displays
// the answer.
func processTurn(session *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	startTime := time.Now()
	toolCallsBefore := session.ToolCalls

	fmt.Println()

	answer, err := session.Loop.RunWithInitialMessage(ctx, session.ChatFunc(ctx), input)
	if err != nil {
		// A cancelled or capped turn leaves the conversation intact so
		// the user can follow up
		return describeLoopStop(err)
	}

	session.Turns++

	if session.Cfg.UI.Raw || !IsStdoutTTY() {
		fmt.Println(answer)
	} else {
		fmt.Print(renderMarkdown(answer))
	}
	fmt.Println()

	if !session.Quiet {
		calls := session.ToolCalls - toolCallsBefore
		fmt.Fprintf(os.Stderr, "%s %d tool call(s) | %s\n",
			infoStyle.Render("[turn]"),
			calls,
			formatDurationShort(time.Since(startTime)))
	}

	return nil
}

// describeLoopStop maps loop sentinel errors to user-facing messages.
func describeLoopStop(err error) error {
	switch {
	case tools.IsMaxIterations(err):
		return fmt.Errorf("stopped: the model hit its iteration limit before finishing; try a narrower question")
	case tools.IsConsecutiveFailures(err):
		return fmt.Errorf("stopped: repeated tool failures; check the workspace path and try again")
	case tools.IsLoopCancelled(err):
		return fmt.Errorf("turn cancelled")
	default:
		return err
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/tools", "/t":
		printToolList(session)
		return true, nil

	case "/clear", "/c":
		session.Loop.ClearConversation()
		session.Loop.AddMessage(tools.NewSystemMessage(systemPrompt))
		fmt.Println(commandStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/status", "/s":
		printChatStatus(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("fscout file assistant"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Workspace:"),
		commandStyle.Render(session.Workspace.Root()))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(session.Model))
	if session.Provider == "cloud" {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Backend:"),
			commandStyle.Render("cloud ("+session.Cfg.Cloud.BaseURL+")"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Backend:"),
			commandStyle.Render("ollama ("+session.Cfg.Ollama.URL+")"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Ask about the files in your workspace. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/tools, /t", "List the model's tools"},
		{"/clear, /c", "Clear conversation history"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit chat (also: exit, quit)"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current turn, Ctrl+D exits"))
	fmt.Println()
}

// printToolList prints the registered tools with their short descriptions.
func printToolList(session *ChatSession) {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Tools"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	for _, tool := range session.Registry.All() {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-16s", tool.Name)),
			infoStyle.Render(tool.GetShortDescription()))
	}

	fmt.Println()
}

// printChatStatus prints session statistics.
func printChatStatus(session *ChatSession) {
	elapsed := time.Since(session.StartTime).Round(time.Second)
	stats := session.Executor.Stats()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Workspace:"),
		session.Workspace.Root())
	fmt.Printf("  %s %s (%s)\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(session.Model),
		session.Provider)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		session.Turns)
	fmt.Printf("  %s %d (%d ok, %d failed)\n",
		infoStyle.Render("Tool calls:"),
		stats.TotalExecutions,
		stats.Successful,
		stats.Failed)

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(session *ChatSession) {
	if session.Turns == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(session.StartTime).Round(time.Second)
	stats := session.Executor.Stats()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		session.Turns)
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Tool calls:"),
		stats.TotalExecutions)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
