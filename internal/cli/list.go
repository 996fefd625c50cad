// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list.go - Conversation listing for orchat.
//
// Command: list [query]
//
// Conversations print newest first, grouped under recency headers
// (Today, Yesterday, Previous 7 Days, Previous 30 Days, Older). A query
// filters by title and message content.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/store"
)

// HandleList prints the grouped conversation list.
func HandleList(args *Args) error {
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
	convs, err := st.SearchConversations(ctx, args.Query)
	if err != nil {
		return err
	}

	if len(convs) == 0 {
		if args.Query != "" {
			fmt.Printf("No conversations matching %q.\n", args.Query)
		} else {
			fmt.Println("No conversations yet. Start one with: orchat")
		}
		return nil
	}

	for i, group := range model.GroupByRecency(convs, time.Now()) {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(group.Bucket.Label())
		for _, conv := range group.Conversations {
			fmt.Printf("  %s  %s  %s\n",
				shortID(conv.ID),
				conv.CreatedAt.Format("2006-01-02 15:04"),
				conv.Title)
		}
	}
	return nil
}

// shortID abbreviates a conversation ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
