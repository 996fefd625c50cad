// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"github.com/jeranaias/orchat-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a request started: the assistant placeholder
// exists and the spinner should show until the first token.
type StreamStartMsg struct {
	ConversationID string
	MessageID      string
}

// StreamTokenMsg delivers the full accumulated content after a delta.
type StreamTokenMsg struct {
	ConversationID string
	MessageID      string
	Content        string
}

// StreamCompleteMsg signals that streaming finished normally, including
// user cancellation.
type StreamCompleteMsg struct {
	ConversationID string
	MessageID      string
}

// StreamErrorMsg signals a failed request. The error text is already
// written into the message content; the banner shows it too.
type StreamErrorMsg struct {
	ConversationID string
	MessageID      string
	Err            error
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationLoadedMsg delivers a conversation and its transcript.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
	Messages     []*model.Message
}

// ConversationNotFoundMsg signals that a requested conversation does not
// exist; the app routes home.
type ConversationNotFoundMsg struct {
	ID string
}

// SubmitMsg carries composer text the user submitted.
type SubmitMsg struct {
	Content string
}
