// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orchat-tui/internal/model"
)

// Update handles events routed to the conversation view.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.awaitingFirst {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StreamStartMsg:
		if msg.ConversationID != m.ConversationID {
			return m, nil
		}
		m.streamingID = msg.MessageID
		m.awaitingFirst = true
		m.pendingSubmit = false
		// The placeholder is persisted by the stream handler after the
		// transcript was loaded, so it may not be here yet.
		if m.byID(msg.MessageID) == nil {
			m.messages = append(m.messages, &model.Message{
				ID:             msg.MessageID,
				ConversationID: msg.ConversationID,
				Role:           model.RoleAssistant,
			})
		}
		m.refreshViewport(true)
		return m, m.spinner.Tick

	case StreamTokenMsg:
		if msg.ConversationID != m.ConversationID {
			return m, nil
		}
		m.awaitingFirst = false
		if target := m.byID(msg.MessageID); target != nil {
			target.Content = msg.Content
			m.refreshViewport(true)
		}
		return m, nil

	case StreamCompleteMsg, StreamErrorMsg:
		return m.finishStream(msg)
	}

	// Everything else feeds the composer and viewport.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey handles composer and stream-control keys.
func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Esc dismisses the banner first, then stops an active stream.
		if m.banner.Visible() {
			m.banner.Dismiss()
			m.SetSize(m.width, m.height)
			return m, nil
		}
		if m.Streaming() {
			m.cancelMgr.cancel()
		}
		return m, nil

	case tea.KeyEnter:
		// Alt+Enter inserts a newline, the terminal stand-in for
		// Shift+Enter in the browser.
		if msg.Alt {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'\n'}})
			return m, cmd
		}
		content := m.InputValue()
		if content == "" {
			return m, nil
		}
		// A second Enter during an in-flight request is silently refused;
		// pendingSubmit closes the window between submit and stream start.
		if m.Streaming() || m.pendingSubmit {
			return m, nil
		}
		m.pendingSubmit = true
		m.ResetInput()
		return m, func() tea.Msg { return SubmitMsg{Content: content} }
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// finishStream resolves terminal stream messages.
func (m *Model) finishStream(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StreamCompleteMsg:
		if msg.ConversationID != m.ConversationID {
			return m, nil
		}
	case StreamErrorMsg:
		if msg.ConversationID != m.ConversationID {
			return m, nil
		}
		m.banner.Show(msg.Err.Error())
	}

	m.streamingID = ""
	m.awaitingFirst = false
	m.pendingSubmit = false
	m.cancelMgr.set(nil)
	m.SetSize(m.width, m.height)
	m.refreshViewport(true)
	return m, nil
}

// SetCancel stores the cancel function backing the Esc stop control for
// the stream currently running in this conversation.
func (m *Model) SetCancel(fn context.CancelFunc) {
	m.cancelMgr.set(fn)
}
