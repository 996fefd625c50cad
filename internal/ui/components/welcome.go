// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

// Welcome renders the home-view greeting shown before a conversation is
// open. Submitting the composer from here creates the conversation.
type Welcome struct {
	Model string
}

// NewWelcome creates the welcome panel.
func NewWelcome(modelName string) *Welcome {
	return &Welcome{Model: modelName}
}

// View renders the greeting box centered in the given width.
func (w *Welcome) View(theme *styles.Theme, width int) string {
	var b strings.Builder
	b.WriteString(theme.WelcomeLogo.Render("orchat"))
	b.WriteString("\n\n")
	b.WriteString(theme.WelcomeInfo.Render("What can I help with?"))
	b.WriteString("\n\n")
	b.WriteString(theme.ShortcutDesc.Render("model: " + w.Model))
	b.WriteString("\n")
	b.WriteString(theme.ShortcutKey.Render("enter") + theme.ShortcutDesc.Render(" send  "))
	b.WriteString(theme.ShortcutKey.Render("alt+enter") + theme.ShortcutDesc.Render(" newline  "))
	b.WriteString(theme.ShortcutKey.Render("ctrl+c") + theme.ShortcutDesc.Render(" quit"))

	box := theme.WelcomeBox.Render(b.String())
	if width <= 0 {
		return box
	}
	return box
}
