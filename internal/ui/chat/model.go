// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/ui/components"
	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

// composerHeight is the row count of the input area.
const composerHeight = 3

// Model is the conversation view: transcript viewport, composer, spinner,
// and error banner.
type Model struct {
	ConversationID string
	Title          string

	messages []*model.Message
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	banner   *components.ErrorBanner
	markdown *components.MarkdownRenderer
	theme    *styles.Theme

	// Streaming state for this conversation.
	streamingID   string // assistant message being streamed, "" when idle
	awaitingFirst bool   // spinner until the first token arrives
	pendingSubmit bool   // submit issued, stream not started yet

	cancelMgr *cancelManager

	width  int
	height int
}

// New creates an empty conversation view.
func New(theme *styles.Theme) *Model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(composerHeight - 1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		viewport:  viewport.New(80, 20),
		textarea:  ta,
		spinner:   sp,
		banner:    components.NewErrorBanner(),
		markdown:  components.NewMarkdownRenderer(76),
		theme:     theme,
		cancelMgr: newCancelManager(),
	}
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - composerHeight - 2
	if m.banner.Visible() {
		vpHeight -= 2
	}
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(width - 2)
	m.markdown.SetWidth(width - 8)
	m.refreshViewport(false)
}

// SetConversation loads a transcript into the view.
func (m *Model) SetConversation(conv *model.Conversation, msgs []*model.Message) {
	m.ConversationID = conv.ID
	m.Title = conv.Title
	m.messages = msgs
	m.banner.Dismiss()
	m.refreshViewport(true)
}

// Clear resets the view to no conversation.
func (m *Model) Clear() {
	m.ConversationID = ""
	m.Title = ""
	m.messages = nil
	m.streamingID = ""
	m.awaitingFirst = false
	m.pendingSubmit = false
	m.banner.Dismiss()
	m.viewport.SetContent("")
}

// SetMessages replaces the transcript without touching banner or composer
// state. Used when re-reading persisted content after a stream ends.
func (m *Model) SetMessages(msgs []*model.Message) {
	m.messages = msgs
	m.refreshViewport(true)
}

// Streaming reports whether a response is currently streaming here.
func (m *Model) Streaming() bool {
	return m.streamingID != ""
}

// AppendMessage adds a message to the transcript.
func (m *Model) AppendMessage(msg *model.Message) {
	m.messages = append(m.messages, msg)
	m.refreshViewport(true)
}

// InputValue returns the trimmed composer text.
func (m *Model) InputValue() string {
	return strings.TrimSpace(m.textarea.Value())
}

// ResetInput clears the composer.
func (m *Model) ResetInput() {
	m.textarea.Reset()
}

// byID finds a message in the transcript.
func (m *Model) byID(id string) *model.Message {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// refreshViewport re-renders the transcript.
func (m *Model) refreshViewport(toBottom bool) {
	m.viewport.SetContent(m.renderTranscript())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

// renderTranscript renders all message bubbles.
func (m *Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return m.theme.ThinkingText.Render("No messages yet.")
	}

	bubbleWidth := m.width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.MessageLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")

		switch msg.Role {
		case model.RoleUser:
			b.WriteString(m.theme.UserBubble.MaxWidth(bubbleWidth).Render(msg.Content))
		default:
			b.WriteString(m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(m.renderAssistant(msg)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderAssistant renders assistant content. A message still streaming is
// shown as plain text with highlighted code fences (glamour chokes on
// half-finished markdown); finished messages get the full glamour pass.
func (m *Model) renderAssistant(msg *model.Message) string {
	if msg.Content == "" {
		return m.theme.ThinkingText.Render("...")
	}
	if msg.ID == m.streamingID {
		return components.ParseCodeBlocks(msg.Content, m.width-12)
	}
	return strings.TrimRight(m.markdown.Render(msg.Content), "\n")
}
