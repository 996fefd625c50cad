// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/orchat-tui/internal/util"
)

// TitleMaxRunes is the maximum conversation title length before truncation.
const TitleMaxRunes = 30

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the metadata for a chat conversation. Messages are
// stored separately and keyed by conversation ID.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConversation creates a new conversation with a generated ID and the
// current time.
func NewConversation(title string) *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}
}

// DeriveTitle computes a conversation title from the first user message:
// whitespace trimmed, newlines collapsed to spaces, truncated to
// TitleMaxRunes characters with "..." appended when cut. The title is
// derived exactly once, when the first user message is sent, and never
// recomputed afterwards.
func DeriveTitle(content string) string {
	s := strings.TrimSpace(content)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "New Chat"
	}
	runes := []rune(s)
	if len(runes) <= TitleMaxRunes {
		return s
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// Preview returns a truncated form of the title for narrow displays.
func (c *Conversation) Preview(maxRunes int) string {
	return util.TruncateString(c.Title, maxRunes)
}
