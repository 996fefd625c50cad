// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

// ErrorBanner is a dismissible one-line error shown above the composer.
// The failed response also carries the error inside the message content;
// the banner is just the immediate visual cue.
type ErrorBanner struct {
	message string
}

// NewErrorBanner creates an empty (hidden) banner.
func NewErrorBanner() *ErrorBanner {
	return &ErrorBanner{}
}

// Show displays the banner with a message.
func (e *ErrorBanner) Show(message string) {
	e.message = message
}

// Dismiss hides the banner.
func (e *ErrorBanner) Dismiss() {
	e.message = ""
}

// Visible reports whether the banner has something to show.
func (e *ErrorBanner) Visible() bool {
	return e.message != ""
}

// View renders the banner, or an empty string when hidden.
func (e *ErrorBanner) View(theme *styles.Theme, width int) string {
	if e.message == "" {
		return ""
	}
	return theme.ErrorBox.MaxWidth(width).Render(
		theme.ErrorTitle.Render("Error: ") + e.message + "  (esc to dismiss)")
}
