// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for fscout.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdTools
	CmdStatus
	CmdDoctor
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format
	NoColor bool   // Disable styled output
	RawOut  bool   // Plain text answers (no markdown rendering)
	Model   string // Model override
	Root    string // Workspace root override

	// Command-specific
	Query      string
	ConfigKey  string
	ConfigVal  string
	Subcommand string
	ToolName   string
	MaxIter    int // Maximum agent iterations

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `fscout - LLM file assistant with a bounded inspection toolset

Fscout answers questions about the files under a workspace root. The
model can only look at files through five read-only tools (list_files,
read_file, search_files, count_files, summarize_file), and every path is
confined to the workspace.

Usage:
  fscout                     Start interactive chat (default)
  fscout chat                Interactive chat
  fscout ask "question"      Ask a single question
  fscout tools               List registered tools
  fscout tools run <name>    Run one tool directly (no model)
  fscout status, s           Show configuration and backend status
  fscout doctor              Run health checks
  fscout config [show|get|set|path]  Configuration
  fscout version             Show version
  fscout help                Show this help

Ask Command:
  fscout ask "What's in this project?"
  fscout ask --raw "List the .go files"     Plain text output
  fscout ask --max-iter 20 "Summarize every README"
  echo "How many .md files?" | fscout ask   Read question from stdin

Tools Commands:
  fscout tools                              List tools and parameters
  fscout tools run list_files --dir src --recursive
  fscout tools run read_file --path README.md --max-chars 500
  fscout tools run search_files --keyword TODO --recursive
  fscout tools run count_files --ext .go --recursive
  fscout tools run summarize_file --path docs/guide.md

Config Commands:
  fscout config show                        Show configuration (key redacted)
  fscout config get ollama.model            Get one value
  fscout config set provider cloud          Set one value
  fscout config set tools.read_max_chars 8000
  fscout config path                        Show config file location

Chat Commands (during chat):
  /help        Show available commands
  /tools       List the model's tools
  /clear       Clear conversation history
  /quit        Exit chat (also: exit, quit, Ctrl+D)

Global Flags:
  --json          Output in JSON format
  -q, --quiet     Minimal output
  -v, --verbose   Show tool calls and diagnostics
  --model NAME    Override configured model
  --root DIR      Override workspace root
  --no-color      Disable styled output
  --raw           Disable markdown rendering of answers

Environment:
  FSCOUT_PROVIDER, FSCOUT_MODEL, FSCOUT_OLLAMA_URL, FSCOUT_CLOUD_URL,
  FSCOUT_ROOT, FSCOUT_MAX_ITERATIONS override config file values.
  The cloud API key is read from the variable named by cloud.api_key_env
  (default OPENAI_API_KEY); it is never written to the config file.

Examples:
  fscout                                    Chat about the current directory
  fscout --root ~/notes ask "Which note mentions invoices?"
  fscout ask --json "Count the .txt files" | jq .data.response
  fscout tools run list_files --recursive
  fscout doctor && fscout ask "hello"

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("fscout version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for tests.
func ParseArgs(args []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to chat
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "tools", "tool":
		parseToolsArgs(&parsedArgs, remaining)
		return CmdTools, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "doctor":
		return CmdDoctor, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: treat it as a question for ask, the way the
		// original interactive assistant accepted bare prompts.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--raw":
			parsedArgs.RawOut = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--root":
			if i+1 < len(args) {
				i++
				parsedArgs.Root = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else if strings.HasPrefix(arg, "--root=") {
				parsedArgs.Root = strings.TrimPrefix(arg, "--root=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--max-iter":
			if i+1 < len(remaining) {
				i++
				if n, err := strconv.Atoi(remaining[i]); err == nil && n > 0 {
					args.MaxIter = n
				}
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if strings.HasPrefix(arg, "--max-iter=") {
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--max-iter=")); err == nil && n > 0 {
					args.MaxIter = n
				}
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseToolsArgs parses tools command specific arguments.
// Detailed flag parsing for "tools run" happens in tools_cmd.go with
// ArgParser; here we only pick out the subcommand and tool name.
func parseToolsArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
	}
	if args.Subcommand == "run" && len(remaining) > 1 {
		args.ToolName = remaining[1]
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
// This delegates to the full implementation in chat.go.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleVersionWithJSON handles the "version" command with JSON output support.
func HandleVersionWithJSON(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
