// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant markdown for the transcript. Glamour
// renderers are not cheap to build, so one is kept per wrap width and
// rebuilt only when the viewport resizes.
type MarkdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer wrapping at the given width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	m := &MarkdownRenderer{}
	m.SetWidth(width)
	return m
}

// SetWidth rebuilds the underlying renderer for a new wrap width.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderer != nil && m.width == width {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Keep whatever renderer we had; Render falls back to plain text.
		return
	}
	m.renderer = r
	m.width = width
}

// Render renders markdown for terminal display. Returns the input
// unchanged when rendering is unavailable or fails, so a transcript never
// goes blank over a formatting problem.
func (m *MarkdownRenderer) Render(content string) string {
	m.mu.Lock()
	r := m.renderer
	m.mu.Unlock()
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}
