// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

// KeyPrompt is the blocking credential-entry overlay shown when no API key
// is configured. The conversation UI stays out of reach until a non-blank
// key is submitted.
type KeyPrompt struct {
	input   textinput.Model
	errText string
}

// NewKeyPrompt creates the masked key input.
func NewKeyPrompt() *KeyPrompt {
	ti := textinput.New()
	ti.Placeholder = "sk-or-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 256
	ti.Width = 48
	ti.Focus()
	return &KeyPrompt{input: ti}
}

// Update handles input events. It returns the entered key when the user
// submits a non-blank value; blank submissions show an error and keep the
// prompt open.
func (k *KeyPrompt) Update(msg tea.Msg) (submitted string, cmd tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		value := strings.TrimSpace(k.input.Value())
		if value == "" {
			k.errText = "API key cannot be empty"
			return "", nil
		}
		return value, nil
	}
	k.input, cmd = k.input.Update(msg)
	return "", cmd
}

// View renders the overlay box.
func (k *KeyPrompt) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.KeyPromptTitle.Render("OpenRouter API key required"))
	b.WriteString("\n\n")
	b.WriteString(theme.WelcomeInfo.Render("Paste your key to start chatting."))
	b.WriteString("\n")
	b.WriteString(theme.WelcomeInfo.Render("Get one at openrouter.ai/keys"))
	b.WriteString("\n\n")
	b.WriteString(k.input.View())
	if k.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorTitle.Render(k.errText))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.ShortcutDesc.Render("enter submit"))
	return theme.KeyPromptBox.Render(b.String())
}
