// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// key.go - API key management for orchat.
//
// Command: key [set|show|clear]
//
// Examples:
//   orchat key set            Prompt for a key (input is masked)
//   orchat key show           Show the key fingerprint (never the key)
//   orchat key clear          Remove the stored key
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/orchat-tui/internal/config"
	"github.com/jeranaias/orchat-tui/internal/openrouter"
)

// HandleKey dispatches the key subcommands.
func HandleKey(args *Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch args.Subcommand {
	case "set", "":
		return keySet(cfg)
	case "show":
		return keyShow(cfg)
	case "clear":
		return keyClear(cfg)
	default:
		return fmt.Errorf("unknown key subcommand: %s (want set, show, or clear)", args.Subcommand)
	}
}

// keySet prompts for a key and stores it. The key never echoes to the
// terminal; piped input is read as a single line.
func keySet(cfg *config.Config) error {
	var key string

	if IsTTY() {
		fmt.Print("OpenRouter API key (input hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key = strings.TrimSpace(string(raw))
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			key = strings.TrimSpace(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read key: %w", err)
		}
	}

	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cfg.APIKey = key
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	path, _ := config.Path()
	fmt.Printf("Key saved to %s (mode 0600).\n", path)
	return nil
}

// keyShow prints the key fingerprint. The raw key never leaves the
// config file.
func keyShow(cfg *config.Config) error {
	if !cfg.HasCredential() {
		fmt.Println("No API key configured. Run: orchat key set")
		return nil
	}
	client := openrouter.NewClient(cfg.APIKey)
	fmt.Printf("API key: %s\n", client.APIKeyMasked())
	return nil
}

// keyClear removes the stored key.
func keyClear(cfg *config.Config) error {
	if !cfg.HasCredential() {
		fmt.Println("No API key configured.")
		return nil
	}
	cfg.APIKey = ""
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Println("API key removed.")
	return nil
}
