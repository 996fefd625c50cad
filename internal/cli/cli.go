// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for orchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
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
	CmdTUI Command = iota
	CmdAsk
	CmdKey
	CmdList
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Model      string
	Query      string
	Subcommand string
	Raw        []string
}

const usageText = `orchat - OpenRouter chat in your terminal

Usage:
  orchat                     Start the TUI (default)
  orchat ask "question"      Ask a single question, print the answer
  orchat key [set|show|clear] Manage the OpenRouter API key
  orchat list [query]        List conversations, optionally filtered
  orchat export <id>         Export a conversation as Markdown
  orchat version             Show version information
  orchat help                Show this help

Flags:
  -m, --model NAME    Use a specific model for this invocation

Examples:
  orchat ask "What is a goroutine?"
  orchat ask -m llama "Summarize this RFC"
  orchat list postgres
  orchat export 4f8a... > conversation.md

Configuration lives at ~/.orchat/config.toml. The ORCHAT_API_KEY,
ORCHAT_MODEL, ORCHAT_BASE_URL, and ORCHAT_LOG_LEVEL environment
variables override file values.`

// Parse inspects os.Args and returns the command plus its arguments.
func Parse() (Command, *Args) {
	raw := os.Args[1:]
	args := &Args{Raw: raw}

	if len(raw) == 0 {
		return CmdTUI, args
	}

	parser := NewArgParser(raw)
	args.Model = parser.FlagOr("model", parser.Flag("m"))

	switch parser.Subcommand() {
	case "ask":
		args.Query = JoinPositional(parser, 1)
		return CmdAsk, args
	case "key":
		args.Subcommand = parser.Positional(1)
		return CmdKey, args
	case "list", "ls":
		args.Query = JoinPositional(parser, 1)
		return CmdList, args
	case "export":
		args.Subcommand = parser.Positional(1)
		return CmdExport, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	case "":
		// Flags only, no subcommand: still the TUI.
		return CmdTUI, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", parser.Subcommand())
		return CmdHelp, args
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Println(usageText)
}

// HandleVersion prints build information.
func HandleVersion() {
	fmt.Printf("orchat %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
