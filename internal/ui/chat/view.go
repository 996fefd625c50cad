// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
)

// View renders the conversation pane: transcript, optional error banner,
// streaming status, and the composer.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.banner.Visible() {
		b.WriteString(m.banner.View(m.theme, m.width))
		b.WriteString("\n")
	}

	if m.awaitingFirst {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" waiting for response... (esc to stop)"))
		b.WriteString("\n")
	} else if m.Streaming() {
		b.WriteString(m.theme.ThinkingText.Render("streaming... (esc to stop)"))
		b.WriteString("\n")
	}

	m.writeComposer(&b)
	return b.String()
}

// ViewHome renders the home route: the welcome panel above the composer,
// no transcript. Submitting from here creates a conversation.
func (m *Model) ViewHome(welcome string) string {
	var b strings.Builder

	pad := m.viewport.Height - strings.Count(welcome, "\n") - 1
	if pad < 0 {
		pad = 0
	}
	b.WriteString(welcome)
	b.WriteString(strings.Repeat("\n", pad+1))

	if m.banner.Visible() {
		b.WriteString(m.banner.View(m.theme, m.width))
		b.WriteString("\n")
	}

	m.writeComposer(&b)
	return b.String()
}

// writeComposer renders the input box and shortcut line.
func (m *Model) writeComposer(b *strings.Builder) {
	b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send  ") +
		m.theme.ShortcutKey.Render("alt+enter") + m.theme.ShortcutDesc.Render(" newline  ") +
		m.theme.ShortcutKey.Render("tab") + m.theme.ShortcutDesc.Render(" sidebar"))
}
