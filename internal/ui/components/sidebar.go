// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/ui/styles"
	"github.com/jeranaias/orchat-tui/internal/util"
)

// SidebarWidth is the fixed column width of the conversation list.
const SidebarWidth = 28

// Sidebar is the conversation list, grouped by recency bucket with
// newest-first ordering inside each bucket.
type Sidebar struct {
	conversations []*model.Conversation
	selected      int    // index into the flattened conversation list
	activeID      string // conversation shown in the main pane
	confirmingID  string // non-empty while a delete awaits y/n
	height        int

	now func() time.Time // injectable clock for tests
}

// NewSidebar creates an empty sidebar.
func NewSidebar() *Sidebar {
	return &Sidebar{now: time.Now}
}

// SetConversations replaces the list. Input must be newest-created-first,
// as the store returns it. Selection is clamped; a pending delete for a
// conversation that vanished is dropped.
func (s *Sidebar) SetConversations(convs []*model.Conversation) {
	s.conversations = convs
	if s.selected >= len(convs) {
		s.selected = len(convs) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	if s.confirmingID != "" && s.byID(s.confirmingID) == nil {
		s.confirmingID = ""
	}
}

// SetActive marks the conversation shown in the main pane.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetHeight sets the rows available for rendering.
func (s *Sidebar) SetHeight(h int) {
	s.height = h
}

// Len returns the number of conversations.
func (s *Sidebar) Len() int {
	return len(s.conversations)
}

// Selected returns the highlighted conversation, or nil when empty.
func (s *Sidebar) Selected() *model.Conversation {
	if len(s.conversations) == 0 {
		return nil
	}
	return s.conversations[s.selected]
}

// MoveUp moves the selection toward newer conversations.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
	s.confirmingID = ""
}

// MoveDown moves the selection toward older conversations.
func (s *Sidebar) MoveDown() {
	if s.selected < len(s.conversations)-1 {
		s.selected++
	}
	s.confirmingID = ""
}

// StartDelete begins the inline y/n confirmation for the selected
// conversation. Returns false when there is nothing to delete.
func (s *Sidebar) StartDelete() bool {
	sel := s.Selected()
	if sel == nil {
		return false
	}
	s.confirmingID = sel.ID
	return true
}

// Confirming reports whether a delete confirmation is pending.
func (s *Sidebar) Confirming() bool {
	return s.confirmingID != ""
}

// ConfirmDelete resolves the pending confirmation and returns the doomed
// conversation ID, or "" when none was pending.
func (s *Sidebar) ConfirmDelete() string {
	id := s.confirmingID
	s.confirmingID = ""
	return id
}

// CancelDelete abandons the pending confirmation.
func (s *Sidebar) CancelDelete() {
	s.confirmingID = ""
}

func (s *Sidebar) byID(id string) *model.Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// View renders the sidebar column.
func (s *Sidebar) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("orchat"))
	b.WriteString("\n")

	if len(s.conversations) == 0 {
		b.WriteString(theme.ShortcutDesc.Render("No conversations yet"))
		return theme.Sidebar.Height(s.height).Width(SidebarWidth).Render(b.String())
	}

	groups := model.GroupByRecency(s.conversations, s.now())
	itemWidth := SidebarWidth - 4

	idx := 0
	for _, g := range groups {
		b.WriteString(theme.BucketHeader.Render(g.Bucket.Label()))
		b.WriteString("\n")
		for _, conv := range g.Conversations {
			label := util.PadRight(util.TruncateString(conv.Title, itemWidth), itemWidth)

			var line string
			switch {
			case conv.ID == s.confirmingID:
				line = theme.DeleteConfirm.Render("Delete? y/n")
			case idx == s.selected:
				line = theme.ConvItemSelected.Render("> " + label)
			case conv.ID == s.activeID:
				line = theme.ConvItemActive.Render("* " + label)
			default:
				line = theme.ConvItem.Render("  " + label)
			}
			b.WriteString(line)
			b.WriteString("\n")
			idx++
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.ShortcutKey.Render("n") + theme.ShortcutDesc.Render(" new  "))
	b.WriteString(theme.ShortcutKey.Render("d") + theme.ShortcutDesc.Render(" delete"))

	return theme.Sidebar.Height(s.height).Width(SidebarWidth).Render(b.String())
}
