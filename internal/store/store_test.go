// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/orchat-tui/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "First chat")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if got.Title != "First chat" {
		t.Errorf("title = %q, want %q", got.Title, "First chat")
	}
	if !got.CreatedAt.Equal(conv.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, conv.CreatedAt)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetConversation(context.Background(), "missing-id")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestListConversationsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		conv, err := s.CreateConversation(ctx, title)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		ids = append(ids, conv.ID)
		time.Sleep(2 * time.Millisecond) // distinct created_at values
	}

	convs, err := s.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(convs))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if convs[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, convs[i].ID, want)
		}
	}
}

func TestSetTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "New Chat")
	if err := s.SetTitle(ctx, conv.ID, "Renamed"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}
	got, _ := s.GetConversation(ctx, conv.ID)
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want %q", got.Title, "Renamed")
	}

	if err := s.SetTitle(ctx, "missing", "x"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestMessagesOrderedByTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "chat")
	base := time.Now()

	// Insert out of order; listing must sort by timestamp.
	msgs := []*model.Message{
		{ID: "m3", ConversationID: conv.ID, Role: model.RoleUser, Content: "third", Timestamp: base.Add(2 * time.Second)},
		{ID: "m1", ConversationID: conv.ID, Role: model.RoleUser, Content: "first", Timestamp: base},
		{ID: "m2", ConversationID: conv.ID, Role: model.RoleAssistant, Content: "second", Timestamp: base.Add(time.Second)},
	}
	for _, m := range msgs {
		if err := s.AddMessage(ctx, m); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
	}

	got, err := s.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if got[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestUpdateMessageContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "chat")
	msg := model.NewAssistantPlaceholder(conv.ID, time.Now())
	if err := s.AddMessage(ctx, msg); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	// Simulate successive streamed deltas, each replacing the full content.
	for _, content := range []string{"Hel", "Hello", "Hello, world"} {
		if err := s.UpdateMessageContent(ctx, msg.ID, content); err != nil {
			t.Fatalf("UpdateMessageContent failed: %v", err)
		}
	}

	got, _ := s.ListMessages(ctx, conv.ID)
	if len(got) != 1 || got[0].Content != "Hello, world" {
		t.Errorf("final content = %q, want %q", got[0].Content, "Hello, world")
	}

	if err := s.UpdateMessageContent(ctx, "missing", "x"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestCountUserMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "chat")
	if n, _ := s.CountUserMessages(ctx, conv.ID); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	s.AddMessage(ctx, model.NewUserMessage(conv.ID, "hi"))
	s.AddMessage(ctx, model.NewMessage(conv.ID, model.RoleAssistant, "hello"))
	s.AddMessage(ctx, model.NewUserMessage(conv.ID, "again"))

	if n, _ := s.CountUserMessages(ctx, conv.ID); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keep, _ := s.CreateConversation(ctx, "keep")
	gone, _ := s.CreateConversation(ctx, "gone")
	s.AddMessage(ctx, model.NewUserMessage(keep.ID, "stays"))
	s.AddMessage(ctx, model.NewUserMessage(gone.ID, "vanishes"))
	s.AddMessage(ctx, model.NewMessage(gone.ID, model.RoleAssistant, "also vanishes"))

	if err := s.DeleteConversation(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	if _, err := s.GetConversation(ctx, gone.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("deleted conversation still readable: %v", err)
	}
	msgs, _ := s.ListMessages(ctx, gone.ID)
	if len(msgs) != 0 {
		t.Errorf("expected 0 orphaned messages, got %d", len(msgs))
	}

	// Unrelated conversation untouched.
	msgs, _ = s.ListMessages(ctx, keep.ID)
	if len(msgs) != 1 {
		t.Errorf("expected 1 message in kept conversation, got %d", len(msgs))
	}

	if err := s.DeleteConversation(ctx, "missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestSearchConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateConversation(ctx, "Grocery planning"); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	b, _ := s.CreateConversation(ctx, "Trip ideas")
	s.AddMessage(ctx, model.NewUserMessage(b.ID, "what about groceries on the road"))

	got, err := s.SearchConversations(ctx, "grocer")
	if err != nil {
		t.Fatalf("SearchConversations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches (title + message), got %d", len(got))
	}

	got, _ = s.SearchConversations(ctx, "Trip")
	if len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("title search returned wrong results")
	}

	got, _ = s.SearchConversations(ctx, "")
	if len(got) != 2 {
		t.Errorf("empty query should list all, got %d", len(got))
	}
}
