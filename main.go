// fscout - A workspace-confined file assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/fscout/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if args.NoColor {
		os.Setenv("NO_COLOR", "1")
	}

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdTools:
		if err := cli.HandleTools(args); err != nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}
	case cli.CmdStatus:
		if err := cli.HandleStatus(args); err != nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}
	case cli.CmdDoctor:
		if err := cli.HandleDoctor(args); err != nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}
	case cli.CmdVersion:
		cli.HandleVersionWithJSON(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.PrintUsage()
		os.Exit(2)
	}
}
