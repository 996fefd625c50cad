// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/orchat-tui/internal/model"
)

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// CreateConversation inserts a new conversation with the given title and
// returns it.
func (s *Store) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	conv := model.NewConversation(title)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at) VALUES (?, ?, ?)`,
		conv.ID, conv.Title, conv.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation returns the conversation with the given ID, or
// ErrConversationNotFound.
func (s *Store) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM conversations WHERE id = ?`, id)

	var conv model.Conversation
	var createdAt int64
	if err := row.Scan(&conv.ID, &conv.Title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.CreatedAt = time.UnixMilli(createdAt)
	return &conv, nil
}

// ListConversations returns all conversations, newest created first.
func (s *Store) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM conversations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// SearchConversations returns conversations whose title or message content
// contains the query, newest created first. An empty query matches all.
func (s *Store) SearchConversations(ctx context.Context, query string) ([]*model.Conversation, error) {
	if query == "" {
		return s.ListConversations(ctx)
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT c.id, c.title, c.created_at
FROM conversations c
LEFT JOIN messages m ON m.conversation_id = c.id
WHERE c.title LIKE ? OR m.content LIKE ?
ORDER BY c.created_at DESC, c.id DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search conversations: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

// SetTitle updates a conversation's title.
func (s *Store) SetTitle(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return nil
}

// DeleteConversation removes a conversation and all of its messages in a
// single transaction. Either everything is deleted or nothing is.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func scanConversations(rows *sql.Rows) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	for rows.Next() {
		var conv model.Conversation
		var createdAt int64
		if err := rows.Scan(&conv.ID, &conv.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt = time.UnixMilli(createdAt)
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation iteration failed: %w", err)
	}
	return convs, nil
}
