// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

func newTestModel() *Model {
	m := New(styles.NewTheme("dark"))
	m.SetSize(80, 24)
	return m
}

func loadConversation(m *Model) (*model.Conversation, *model.Message) {
	conv := &model.Conversation{ID: "conv-1", Title: "Test", CreatedAt: time.Now()}
	user := model.NewUserMessage(conv.ID, "hello")
	assistant := model.NewAssistantPlaceholder(conv.ID, user.Timestamp)
	m.SetConversation(conv, []*model.Message{user, assistant})
	return conv, assistant
}

func TestStreamLifecycle(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)

	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	if !m.Streaming() {
		t.Fatal("Streaming should be true after StreamStartMsg")
	}

	m, _ = m.Update(StreamTokenMsg{ConversationID: "conv-1", MessageID: assistant.ID, Content: "partial"})
	if got := m.byID(assistant.ID).Content; got != "partial" {
		t.Errorf("assistant content = %q, want %q", got, "partial")
	}

	m, _ = m.Update(StreamCompleteMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	if m.Streaming() {
		t.Error("Streaming should clear after StreamCompleteMsg")
	}
}

func TestStreamStartAppendsMissingPlaceholder(t *testing.T) {
	m := newTestModel()
	conv := &model.Conversation{ID: "conv-1", Title: "Test", CreatedAt: time.Now()}
	user := model.NewUserMessage(conv.ID, "hello")
	// Transcript loaded before the handler persisted its placeholder.
	m.SetConversation(conv, []*model.Message{user})

	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: "late-placeholder"})
	target := m.byID("late-placeholder")
	if target == nil {
		t.Fatal("StreamStartMsg should append a placeholder when missing")
	}
	if target.Role != model.RoleAssistant {
		t.Errorf("placeholder role = %v, want assistant", target.Role)
	}

	m, _ = m.Update(StreamTokenMsg{ConversationID: "conv-1", MessageID: "late-placeholder", Content: "tok"})
	if got := m.byID("late-placeholder").Content; got != "tok" {
		t.Errorf("content = %q, want %q", got, "tok")
	}
}

func TestStreamMessagesForOtherConversationIgnored(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)

	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-other", MessageID: "x"})
	if m.Streaming() {
		t.Error("stream start for another conversation must not affect this view")
	}

	m, _ = m.Update(StreamTokenMsg{ConversationID: "conv-other", MessageID: assistant.ID, Content: "nope"})
	if got := m.byID(assistant.ID).Content; got != "" {
		t.Errorf("assistant content = %q, want empty", got)
	}
}

func TestStreamErrorShowsBanner(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)

	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	m, _ = m.Update(StreamErrorMsg{ConversationID: "conv-1", MessageID: assistant.ID, Err: context.DeadlineExceeded})

	if m.Streaming() {
		t.Error("Streaming should clear on error")
	}
	if !m.banner.Visible() {
		t.Error("error banner should be visible")
	}

	// Esc dismisses the banner before anything else.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.banner.Visible() {
		t.Error("Esc should dismiss the banner")
	}
}

func TestEscCancelsActiveStream(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)
	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})

	cancelled := false
	m.SetCancel(func() { cancelled = true })

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !cancelled {
		t.Error("Esc during a stream should invoke the cancel function")
	}
}

func TestEnterSubmitsTrimmedContent(t *testing.T) {
	m := newTestModel()
	for _, r := range "  hi there  " {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter with content should produce a command")
	}
	msg := cmd()
	submit, ok := msg.(SubmitMsg)
	if !ok {
		t.Fatalf("command produced %T, want SubmitMsg", msg)
	}
	if submit.Content != "hi there" {
		t.Errorf("submitted %q, want %q", submit.Content, "hi there")
	}
	if m.InputValue() != "" {
		t.Error("composer should reset after submit")
	}
}

func TestEnterIgnoredWhenEmptyOrStreaming(t *testing.T) {
	m := newTestModel()

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Enter with an empty composer should do nothing")
	}

	_, assistant := loadConversation(m)
	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	for _, r := range "queued" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Enter during a stream should be silently refused")
	}
	if m.InputValue() != "queued" {
		t.Error("refused submit should keep the composer content")
	}
}

func TestEnterRefusedBetweenSubmitAndStreamStart(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)

	for _, r := range "first" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatal("first submit should produce a command")
	}

	// The stream has not started yet; a rapid second Enter must not queue
	// another user turn.
	for _, r := range "second" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Enter before stream start should be refused")
	}

	// Once the stream runs to completion, submitting works again.
	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	m, _ = m.Update(StreamCompleteMsg{ConversationID: "conv-1", MessageID: assistant.ID})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Error("submit after completion should produce a command")
	}
}

func TestAltEnterInsertsNewline(t *testing.T) {
	m := newTestModel()
	for _, r := range "line1" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	for _, r := range "line2" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	if got := m.InputValue(); got != "line1\nline2" {
		t.Errorf("composer = %q, want two lines", got)
	}
}

func TestClearResetsState(t *testing.T) {
	m := newTestModel()
	_, assistant := loadConversation(m)
	m, _ = m.Update(StreamStartMsg{ConversationID: "conv-1", MessageID: assistant.ID})

	m.Clear()
	if m.ConversationID != "" || m.Streaming() {
		t.Error("Clear should drop the conversation and streaming state")
	}
}
