// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - Conversation export for orchat.
//
// Command: export <id>
//
// Writes the conversation as Markdown to stdout. The ID may be a unique
// prefix as printed by "orchat list".
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/store"
)

// HandleExport prints one conversation as Markdown.
func HandleExport(args *Args) error {
	if args.Subcommand == "" {
		return fmt.Errorf("usage: orchat export <id>")
	}

	path, err := store.DefaultPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	conv, err := resolveConversation(ctx, st, args.Subcommand)
	if err != nil {
		return err
	}

	msgs, err := st.ListMessages(ctx, conv.ID)
	if err != nil {
		return err
	}

	fmt.Print(renderMarkdown(conv, msgs))
	return nil
}

// resolveConversation finds a conversation by full ID or unique prefix.
func resolveConversation(ctx context.Context, st *store.Store, id string) (*model.Conversation, error) {
	if conv, err := st.GetConversation(ctx, id); err == nil {
		return conv, nil
	}

	convs, err := st.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*model.Conversation
	for _, c := range convs {
		if strings.HasPrefix(c.ID, id) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no conversation with ID %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ID prefix %s is ambiguous (%d matches)", id, len(matches))
	}
}

// renderMarkdown formats the transcript.
func renderMarkdown(conv *model.Conversation, msgs []*model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.Title)
	fmt.Fprintf(&b, "Created: %s\n\n", conv.CreatedAt.Format("2006-01-02 15:04"))

	for _, msg := range msgs {
		fmt.Fprintf(&b, "## %s\n\n", msg.Role.DisplayName())
		b.WriteString(strings.TrimRight(msg.Content, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}
