// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages within a conversation are totally ordered by Timestamp.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID and the current time.
func NewMessage(conversationID string, role Role, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(conversationID, content string) *Message {
	return NewMessage(conversationID, RoleUser, content)
}

// NewAssistantPlaceholder creates an empty assistant message whose timestamp
// is strictly after the given one. The placeholder is persisted before any
// response bytes arrive so the transcript slot exists even if the request
// fails immediately.
//
// Stored timestamps have millisecond resolution, so strictness must hold at
// millisecond granularity: both messages are usually created within the same
// millisecond, and a tie would leave their order to the ID sort.
func NewAssistantPlaceholder(conversationID string, after time.Time) *Message {
	ts := time.Now()
	if ts.UnixMilli() <= after.UnixMilli() {
		ts = time.UnixMilli(after.UnixMilli() + 1)
	}
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        "",
		Timestamp:      ts,
	}
}

// IsEmpty reports whether the message has no content.
func (m *Message) IsEmpty() bool {
	return m.Content == ""
}
