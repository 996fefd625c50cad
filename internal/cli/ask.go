// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command for orchat.
//
// Command: ask [question]
//
// Examples:
//   orchat ask "What is the capital of France?"
//   orchat ask -m llama "Explain this error"
//   echo "question" | orchat ask
//
// With no question and a TTY, an interactive prompt is shown.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/orchat-tui/internal/config"
	"github.com/jeranaias/orchat-tui/internal/openrouter"
)

// askTimeout bounds a single unary request.
const askTimeout = 2 * time.Minute

// HandleAsk sends one question and prints the rendered answer.
func HandleAsk(args *Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.HasCredential() {
		return fmt.Errorf("no API key configured; run: orchat key set")
	}

	query := strings.TrimSpace(args.Query)
	if query == "" {
		query, err = readQuery()
		if err != nil {
			return err
		}
	}
	if query == "" {
		return fmt.Errorf("nothing to ask")
	}

	model := cfg.Model
	if args.Model != "" {
		model = args.Model
	}
	client := openrouter.NewClient(cfg.APIKey).
		WithModel(model).
		WithBaseURL(cfg.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	resp, err := client.Chat(ctx, []openrouter.ChatMessage{
		openrouter.NewUserMessage(query),
	})
	if err != nil {
		if errors.Is(err, openrouter.ErrAuthFailed) {
			return fmt.Errorf("authentication failed; check your key with: orchat key show")
		}
		return err
	}

	fmt.Print(renderAnswer(resp.GetContent()))
	return nil
}

// readQuery gets the question interactively, or from piped stdin.
func readQuery() (string, error) {
	if !IsTTY() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	query, err := line.Prompt("ask> ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", fmt.Errorf("aborted")
		}
		return "", err
	}
	return strings.TrimSpace(query), nil
}

// renderAnswer runs the markdown renderer when stdout is a terminal;
// piped output stays plain.
func renderAnswer(content string) string {
	if !IsStdoutTTY() {
		return content + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()-2),
	)
	if err != nil {
		return content + "\n"
	}
	out, err := r.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}
