// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/orchat-tui/internal/model"
)

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AddMessage inserts a message. The message must reference an existing
// conversation.
func (s *Store) AddMessage(ctx context.Context, msg *model.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Content,
		msg.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages ordered oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, timestamp
		 FROM messages WHERE conversation_id = ?
		 ORDER BY timestamp ASC, id ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var msg model.Message
		var role string
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.UnixMilli(ts)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message iteration failed: %w", err)
	}
	return msgs, nil
}

// UpdateMessageContent replaces a message's content. Used to flush each
// streamed delta into the assistant placeholder as it arrives.
func (s *Store) UpdateMessageContent(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("failed to update message content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update message content: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return nil
}

// CountUserMessages returns how many user messages a conversation holds.
// The title is derived only when this count goes from zero to one.
func (s *Store) CountUserMessages(ctx context.Context, conversationID string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND role = ?`,
		conversationID, string(model.RoleUser))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	return n, nil
}
