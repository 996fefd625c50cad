// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the orchat terminal user interface.
//
// The App model owns the two routes (home and conversation), the sidebar,
// the credential gate, and the streaming wiring. Streaming runs in a
// goroutine and reports back through program.Send; the Bubble Tea loop
// never blocks on the network.
package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/orchat-tui/internal/config"
	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/openrouter"
	"github.com/jeranaias/orchat-tui/internal/store"
	"github.com/jeranaias/orchat-tui/internal/stream"
	"github.com/jeranaias/orchat-tui/internal/ui/chat"
	"github.com/jeranaias/orchat-tui/internal/ui/components"
	"github.com/jeranaias/orchat-tui/internal/ui/styles"
)

// =============================================================================
// ROUTES AND FOCUS
// =============================================================================

type route int

const (
	routeHome route = iota
	routeConversation
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

// =============================================================================
// APP MESSAGES
// =============================================================================

// conversationsLoadedMsg refreshes the sidebar list.
type conversationsLoadedMsg struct {
	conversations []*model.Conversation
}

// conversationDeletedMsg confirms a delete.
type conversationDeletedMsg struct {
	id string
}

// userMessageSavedMsg signals the user message (and conversation, when
// new) is persisted and the stream can start. It carries the transcript
// so the view can show it before any stream event arrives.
type userMessageSavedMsg struct {
	conversation *model.Conversation
	userMessage  *model.Message
	messages     []*model.Message
}

// transcriptReloadedMsg carries re-read messages after a stream ends, so
// the view shows exactly what was persisted (markers included).
type transcriptReloadedMsg struct {
	conversationID string
	messages       []*model.Message
}

// appErrMsg surfaces an internal failure in the banner.
type appErrMsg struct {
	err error
}

// configReloadedMsg delivers a live config reload from the file watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// =============================================================================
// CLIENT HOLDER
// =============================================================================

// clientHolder is the mutable client slot behind the stream handler, so a
// credential saved or reloaded mid-session takes effect without
// rebuilding the handler (which owns single-flight state).
type clientHolder struct {
	mu     sync.RWMutex
	client *openrouter.Client
}

func (h *clientHolder) set(c *openrouter.Client) {
	h.mu.Lock()
	h.client = c
	h.mu.Unlock()
}

func (h *clientHolder) get() *openrouter.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// IsConfigured implements stream.Streamer.
func (h *clientHolder) IsConfigured() bool {
	return h.get().IsConfigured()
}

// ChatStream implements stream.Streamer.
func (h *clientHolder) ChatStream(ctx context.Context, messages []openrouter.ChatMessage, cb openrouter.StreamCallback) error {
	return h.get().ChatStream(ctx, messages, cb)
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the top-level Bubble Tea model.
type App struct {
	store   *store.Store
	cfg     *config.Config
	logger  *zap.Logger
	theme   *styles.Theme
	clients *clientHolder
	handler *stream.Handler

	route     route
	focus     focusArea
	sidebar   *components.Sidebar
	welcome   *components.Welcome
	keyPrompt *components.KeyPrompt
	chatView  *chat.Model

	needsKey bool

	width  int
	height int

	// prog delivers stream events from goroutines into the update loop.
	progMu sync.Mutex
	prog   *tea.Program
}

// NewApp wires the TUI together.
func NewApp(st *store.Store, cfg *config.Config, logger *zap.Logger) *App {
	theme := styles.NewTheme(cfg.UI.Theme)
	holder := &clientHolder{}
	holder.set(buildClient(cfg, logger))

	handler := stream.NewHandler(st, holder).
		WithLogger(logger).
		WithIdleTimeout(cfg.IdleTimeout())

	app := &App{
		store:     st,
		cfg:       cfg,
		logger:    logger,
		theme:     theme,
		clients:   holder,
		handler:   handler,
		route:     routeHome,
		focus:     focusComposer,
		sidebar:   components.NewSidebar(),
		welcome:   components.NewWelcome(cfg.Model),
		keyPrompt: components.NewKeyPrompt(),
		chatView:  chat.New(theme),
		needsKey:  !cfg.HasCredential(),
	}
	return app
}

// buildClient constructs the OpenRouter client from config.
func buildClient(cfg *config.Config, logger *zap.Logger) *openrouter.Client {
	return openrouter.NewClient(cfg.APIKey).
		WithModel(cfg.Model).
		WithBaseURL(cfg.BaseURL).
		WithLogger(logger)
}

// SetProgram stores the running program for goroutine-to-loop delivery.
func (a *App) SetProgram(p *tea.Program) {
	a.progMu.Lock()
	a.prog = p
	a.progMu.Unlock()
}

// DeliverConfig feeds a reloaded config into the update loop. Called
// from the config watcher goroutine.
func (a *App) DeliverConfig(cfg *config.Config) {
	a.send(configReloadedMsg{cfg})
}

// send delivers a message into the update loop from any goroutine.
func (a *App) send(msg tea.Msg) {
	a.progMu.Lock()
	p := a.prog
	a.progMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Init loads the conversation list.
func (a *App) Init() tea.Cmd {
	return a.loadConversationsCmd()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (a *App) loadConversationsCmd() tea.Cmd {
	return func() tea.Msg {
		convs, err := a.store.ListConversations(context.Background())
		if err != nil {
			return appErrMsg{err}
		}
		return conversationsLoadedMsg{convs}
	}
}

func (a *App) openConversationCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		conv, err := a.store.GetConversation(ctx, id)
		if err != nil {
			// Unknown IDs route home rather than erroring.
			return chat.ConversationNotFoundMsg{ID: id}
		}
		msgs, err := a.store.ListMessages(ctx, id)
		if err != nil {
			return appErrMsg{err}
		}
		return chat.ConversationLoadedMsg{Conversation: conv, Messages: msgs}
	}
}

func (a *App) refreshTranscriptCmd(id string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := a.store.ListMessages(context.Background(), id)
		if err != nil {
			return appErrMsg{err}
		}
		return transcriptReloadedMsg{conversationID: id, messages: msgs}
	}
}

func (a *App) deleteConversationCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.DeleteConversation(context.Background(), id); err != nil {
			return appErrMsg{err}
		}
		return conversationDeletedMsg{id}
	}
}

// saveUserMessageCmd persists the user's message, creating the
// conversation (with its derived title) when none is open.
func (a *App) saveUserMessageCmd(conversationID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		var conv *model.Conversation
		var err error
		isNew := conversationID == ""

		if isNew {
			conv, err = a.store.CreateConversation(ctx, model.DeriveTitle(content))
			if err != nil {
				return appErrMsg{err}
			}
		} else {
			conv, err = a.store.GetConversation(ctx, conversationID)
			if err != nil {
				return appErrMsg{err}
			}
		}

		userMsg := model.NewUserMessage(conv.ID, content)
		if err := a.store.AddMessage(ctx, userMsg); err != nil {
			return appErrMsg{err}
		}

		// First user message into a still-untitled conversation titles it.
		if !isNew && conv.Title == "New Chat" {
			if n, err := a.store.CountUserMessages(ctx, conv.ID); err == nil && n == 1 {
				title := model.DeriveTitle(content)
				if err := a.store.SetTitle(ctx, conv.ID, title); err == nil {
					conv.Title = title
				}
			}
		}

		msgs, err := a.store.ListMessages(ctx, conv.ID)
		if err != nil {
			return appErrMsg{err}
		}

		return userMessageSavedMsg{conversation: conv, userMessage: userMsg, messages: msgs}
	}
}

// startStream launches the request goroutine for a saved user message.
func (a *App) startStream(conv *model.Conversation, userMsg *model.Message) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msgs, err := a.store.ListMessages(ctx, conv.ID)
		if err != nil {
			return appErrMsg{err}
		}

		// Empty assistant placeholders never go back to the model.
		history := make([]openrouter.ChatMessage, 0, len(msgs))
		for _, m := range msgs {
			if m.Content == "" {
				continue
			}
			history = append(history, openrouter.ChatMessage{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		a.chatView.SetCancel(cancel)

		go func() {
			defer cancel()
			err := a.handler.Send(streamCtx, conv.ID, history, userMsg.Timestamp, &streamObserver{app: a})
			if err != nil {
				a.logger.Warn("send finished with error", zap.Error(err))
			}
		}()
		return nil
	}
}

// =============================================================================
// STREAM OBSERVER
// =============================================================================

// streamObserver forwards handler callbacks into the update loop.
type streamObserver struct {
	app *App
}

func (o *streamObserver) OnStart(conversationID, messageID string) {
	o.app.send(chat.StreamStartMsg{ConversationID: conversationID, MessageID: messageID})
}

func (o *streamObserver) OnDelta(conversationID, messageID, content string) {
	o.app.send(chat.StreamTokenMsg{ConversationID: conversationID, MessageID: messageID, Content: content})
}

func (o *streamObserver) OnDone(conversationID, messageID string, err error) {
	if err != nil {
		o.app.send(chat.StreamErrorMsg{ConversationID: conversationID, MessageID: messageID, Err: err})
		return
	}
	o.app.send(chat.StreamCompleteMsg{ConversationID: conversationID, MessageID: messageID})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is the top-level event loop.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sidebar.SetHeight(msg.Height - 1)
		a.chatView.SetSize(msg.Width-components.SidebarWidth-2, msg.Height-1)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case conversationsLoadedMsg:
		a.sidebar.SetConversations(msg.conversations)
		return a, nil

	case chat.ConversationLoadedMsg:
		a.route = routeConversation
		a.chatView.SetConversation(msg.Conversation, msg.Messages)
		a.sidebar.SetActive(msg.Conversation.ID)
		return a, nil

	case chat.ConversationNotFoundMsg:
		a.goHome()
		return a, nil

	case conversationDeletedMsg:
		// Deleting the open conversation lands home.
		if a.chatView.ConversationID == msg.id {
			a.goHome()
		}
		return a, a.loadConversationsCmd()

	case chat.SubmitMsg:
		return a.handleSubmit(msg.Content)

	case userMessageSavedMsg:
		// Show the transcript before the stream produces anything; the
		// sidebar refresh picks up a new conversation or title.
		a.route = routeConversation
		a.chatView.SetConversation(msg.conversation, msg.messages)
		a.sidebar.SetActive(msg.conversation.ID)
		return a, tea.Batch(
			a.startStream(msg.conversation, msg.userMessage),
			a.loadConversationsCmd())

	case chat.StreamCompleteMsg:
		// Reload so the transcript picks up the final persisted content
		// (cancellation markers included).
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, tea.Batch(cmd, a.refreshTranscriptCmd(msg.ConversationID))

	case chat.StreamErrorMsg:
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, tea.Batch(cmd, a.refreshTranscriptCmd(msg.ConversationID))

	case transcriptReloadedMsg:
		if a.chatView.ConversationID == msg.conversationID {
			a.chatView.SetMessages(msg.messages)
		}
		return a, nil

	case appErrMsg:
		a.logger.Error("ui operation failed", zap.Error(msg.err))
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(chat.StreamErrorMsg{
			ConversationID: a.chatView.ConversationID,
			Err:            msg.err,
		})
		return a, cmd

	case configReloadedMsg:
		return a.applyConfig(msg.cfg)
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// handleKey routes keys by overlay, focus, and route.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	// Credential gate swallows everything until a key is saved.
	if a.needsKey {
		key, cmd := a.keyPrompt.Update(msg)
		if key != "" {
			return a, a.saveCredential(key)
		}
		return a, cmd
	}

	if msg.Type == tea.KeyTab {
		if a.focus == focusComposer {
			a.focus = focusSidebar
		} else {
			a.focus = focusComposer
		}
		return a, nil
	}

	if a.focus == focusSidebar {
		return a.handleSidebarKey(msg)
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// handleSidebarKey handles list navigation and deletion.
func (a *App) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending delete only accepts y/n.
	if a.sidebar.Confirming() {
		switch msg.String() {
		case "y":
			if id := a.sidebar.ConfirmDelete(); id != "" {
				return a, a.deleteConversationCmd(id)
			}
		default:
			a.sidebar.CancelDelete()
		}
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.sidebar.MoveUp()
	case "down", "j":
		a.sidebar.MoveDown()
	case "enter":
		if sel := a.sidebar.Selected(); sel != nil {
			a.focus = focusComposer
			return a, a.openConversationCmd(sel.ID)
		}
	case "n":
		a.goHome()
		a.focus = focusComposer
	case "d":
		a.sidebar.StartDelete()
	}
	return a, nil
}

// handleSubmit starts the send pipeline from the composer.
func (a *App) handleSubmit(content string) (tea.Model, tea.Cmd) {
	if !a.cfg.HasCredential() {
		a.needsKey = true
		return a, nil
	}
	conversationID := ""
	if a.route == routeConversation {
		conversationID = a.chatView.ConversationID
	}
	return a, a.saveUserMessageCmd(conversationID, content)
}

// saveCredential persists a newly entered API key and unlocks the UI.
func (a *App) saveCredential(key string) tea.Cmd {
	return func() tea.Msg {
		a.cfg.APIKey = key
		if err := a.cfg.Save(); err != nil {
			return appErrMsg{err}
		}
		cfg, err := config.Load()
		if err != nil {
			return appErrMsg{err}
		}
		return configReloadedMsg{cfg}
	}
}

// applyConfig swaps in a reloaded config: client, idle timeout, gate,
// model label. Theme changes take effect on the next start.
func (a *App) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	a.cfg = cfg
	a.clients.set(buildClient(cfg, a.logger))
	a.handler.WithIdleTimeout(cfg.IdleTimeout())
	a.welcome.Model = cfg.Model
	a.needsKey = !cfg.HasCredential()
	return a, nil
}

// goHome resets the main pane to the welcome view.
func (a *App) goHome() {
	a.route = routeHome
	a.chatView.Clear()
	a.sidebar.SetActive("")
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full frame.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	if a.needsKey {
		return lipgloss.Place(a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.keyPrompt.View(a.theme))
	}

	var main string
	if a.route == routeHome {
		main = a.chatView.ViewHome(a.welcome.View(a.theme, a.width-components.SidebarWidth-2))
	} else {
		main = a.chatView.View()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		a.sidebar.View(a.theme),
		main)
}
