// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short message", "Hello there", "Hello there"},
		{"exactly thirty runes", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty one runes truncated", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"whitespace trimmed", "  hi  ", "hi"},
		{"newlines collapsed", "line one\nline two", "line one line two"},
		{"blank falls back", "   \n  ", "New Chat"},
		{"unicode counted by rune", strings.Repeat("é", 40), strings.Repeat("é", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.content); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestNewAssistantPlaceholder(t *testing.T) {
	after := time.Now()
	msg := NewAssistantPlaceholder("conv-1", after)

	if msg.Role != RoleAssistant {
		t.Errorf("role = %v, want %v", msg.Role, RoleAssistant)
	}
	if msg.Content != "" {
		t.Errorf("content = %q, want empty", msg.Content)
	}
	if !msg.Timestamp.After(after) {
		t.Errorf("placeholder timestamp %v not after user timestamp %v",
			msg.Timestamp, after)
	}
	if msg.ConversationID != "conv-1" {
		t.Errorf("conversation id = %q, want conv-1", msg.ConversationID)
	}
}

func TestNewAssistantPlaceholderStrictAtMillisecond(t *testing.T) {
	// The store keeps millisecond timestamps, so nanosecond-level "after"
	// is not enough: a same-millisecond pair would tie once persisted and
	// sort by random ID.
	for i := 0; i < 100; i++ {
		user := NewUserMessage("conv-1", "hi")
		msg := NewAssistantPlaceholder("conv-1", user.Timestamp)
		if msg.Timestamp.UnixMilli() <= user.Timestamp.UnixMilli() {
			t.Fatalf("run %d: placeholder %d ms not strictly after user %d ms",
				i, msg.Timestamp.UnixMilli(), user.Timestamp.UnixMilli())
		}
	}
}

func TestNewAssistantPlaceholderFutureAnchor(t *testing.T) {
	// Even if the anchor timestamp is ahead of the clock, ordering holds.
	after := time.Now().Add(time.Second)
	msg := NewAssistantPlaceholder("conv-1", after)
	if !msg.Timestamp.After(after) {
		t.Errorf("placeholder timestamp %v not after anchor %v", msg.Timestamp, after)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !r.Valid() {
			t.Errorf("%v should be valid", r)
		}
	}
	if Role("bot").Valid() {
		t.Error("unknown role should not be valid")
	}
}

func TestBucket(t *testing.T) {
	// Fixed reference point: 2025-06-15 10:00 local time.
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		createdAt time.Time
		want      RecencyBucket
	}{
		{"same moment", now, BucketToday},
		{"earlier today", time.Date(2025, 6, 15, 0, 1, 0, 0, time.Local), BucketToday},
		{"late yesterday", time.Date(2025, 6, 14, 23, 59, 0, 0, time.Local), BucketYesterday},
		{"two days ago", now.AddDate(0, 0, -2), BucketPrevious7Days},
		{"six days ago", now.AddDate(0, 0, -6), BucketPrevious7Days},
		{"seven days ago", now.AddDate(0, 0, -7), BucketPrevious30Days},
		{"twenty nine days ago", now.AddDate(0, 0, -29), BucketPrevious30Days},
		{"thirty days ago", now.AddDate(0, 0, -30), BucketOlder},
		{"a year ago", now.AddDate(-1, 0, 0), BucketOlder},
		{"future timestamp", now.Add(2 * time.Hour), BucketToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bucket(tt.createdAt, now); got != tt.want {
				t.Errorf("Bucket(%v) = %v, want %v", tt.createdAt, got.Label(), tt.want.Label())
			}
		})
	}
}

func TestBucketCalendarBoundaryNotElapsedHours(t *testing.T) {
	// 23:30 yesterday vs 00:30 today is one hour elapsed but a different
	// calendar day.
	now := time.Date(2025, 6, 15, 0, 30, 0, 0, time.Local)
	created := time.Date(2025, 6, 14, 23, 30, 0, 0, time.Local)
	if got := Bucket(created, now); got != BucketYesterday {
		t.Errorf("Bucket across midnight = %v, want Yesterday", got.Label())
	}
}

func TestGroupByRecency(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

	mk := func(id string, created time.Time) *Conversation {
		return &Conversation{ID: id, Title: id, CreatedAt: created}
	}

	// Newest-first input, as the store returns it.
	convs := []*Conversation{
		mk("today-2", now.Add(-time.Hour)),
		mk("today-1", now.Add(-2 * time.Hour)),
		mk("yesterday", now.AddDate(0, 0, -1)),
		mk("old", now.AddDate(0, 0, -90)),
	}

	groups := GroupByRecency(convs, now)

	if len(groups) != 3 {
		t.Fatalf("expected 3 non-empty groups, got %d", len(groups))
	}
	if groups[0].Bucket != BucketToday {
		t.Errorf("first group = %v, want Today", groups[0].Bucket.Label())
	}
	if groups[1].Bucket != BucketYesterday {
		t.Errorf("second group = %v, want Yesterday", groups[1].Bucket.Label())
	}
	if groups[2].Bucket != BucketOlder {
		t.Errorf("third group = %v, want Older", groups[2].Bucket.Label())
	}

	// Order inside a bucket follows input order.
	today := groups[0].Conversations
	if len(today) != 2 || today[0].ID != "today-2" || today[1].ID != "today-1" {
		t.Errorf("Today bucket order wrong: %v", ids(today))
	}
}

func TestGroupByRecencyEmpty(t *testing.T) {
	groups := GroupByRecency(nil, time.Now())
	if len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}

func ids(convs []*Conversation) []string {
	out := make([]string, len(convs))
	for i, c := range convs {
		out[i] = c.ID
	}
	return out
}
