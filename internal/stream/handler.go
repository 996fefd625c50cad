// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream drives a single chat completion request from submission
// to its terminal state, persisting the assistant response as it arrives.
//
// Each request moves through idle -> awaiting headers -> streaming and
// ends in exactly one of completed, cancelled, or errored. Every terminal
// path releases the per-conversation guard and leaves the transcript in a
// well-defined state; user cancellation is a normal outcome, not an error.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/orchat-tui/internal/model"
	"github.com/jeranaias/orchat-tui/internal/openrouter"
)

// =============================================================================
// ERRORS AND MARKERS
// =============================================================================

var (
	// ErrNoCredential is returned when no API key is configured. Nothing
	// is persisted and no network request is made.
	ErrNoCredential = errors.New("no API credential configured")

	// ErrRequestInFlight is returned when the conversation already has an
	// active request. Distinct conversations may stream concurrently.
	ErrRequestInFlight = errors.New("a request is already in flight for this conversation")

	// ErrIdleTimeout indicates the stream went silent for longer than the
	// configured idle window.
	ErrIdleTimeout = errors.New("stream idle timeout")
)

// CancelMarker is appended to the accumulated content when the user stops
// a stream. If nothing was received, the marker stands alone without the
// leading blank line.
const CancelMarker = "\n\n(Streaming stopped)"

// DefaultIdleTimeout is the default silence window between frames before
// the watchdog cancels the request.
const DefaultIdleTimeout = 120 * time.Second

// =============================================================================
// STATES
// =============================================================================

// Status is the lifecycle state of a conversation's latest request.
type Status int

const (
	StatusIdle Status = iota
	StatusAwaitingHeaders
	StatusStreaming
	StatusCompleted
	StatusCancelled
	StatusErrored
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingHeaders:
		return "awaiting_headers"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Active reports whether the status holds the single-flight guard.
func (s Status) Active() bool {
	return s == StatusAwaitingHeaders || s == StatusStreaming
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// MessageStore is the slice of the store the handler needs.
type MessageStore interface {
	AddMessage(ctx context.Context, msg *model.Message) error
	UpdateMessageContent(ctx context.Context, id, content string) error
}

// Streamer is the slice of the OpenRouter client the handler needs.
type Streamer interface {
	IsConfigured() bool
	ChatStream(ctx context.Context, messages []openrouter.ChatMessage, callback openrouter.StreamCallback) error
}

// Observer receives progress callbacks for UI updates. All methods are
// called from the goroutine running Send.
type Observer interface {
	// OnStart fires after the placeholder is persisted, before any
	// network bytes.
	OnStart(conversationID, messageID string)

	// OnDelta fires after each delta is persisted, with the full
	// accumulated content so far.
	OnDelta(conversationID, messageID, content string)

	// OnDone fires once on the terminal state. err is nil for both
	// completion and user cancellation.
	OnDone(conversationID, messageID string, err error)
}

// =============================================================================
// HANDLER
// =============================================================================

// Handler runs chat completion requests and persists their output.
type Handler struct {
	store       MessageStore
	client      Streamer
	logger      *zap.Logger
	idleTimeout time.Duration

	mu       sync.Mutex
	statuses map[string]Status
}

// NewHandler creates a handler with the default idle timeout.
func NewHandler(store MessageStore, client Streamer) *Handler {
	return &Handler{
		store:       store,
		client:      client,
		logger:      zap.NewNop(),
		idleTimeout: DefaultIdleTimeout,
		statuses:    make(map[string]Status),
	}
}

// WithLogger sets the handler's logger.
func (h *Handler) WithLogger(logger *zap.Logger) *Handler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithIdleTimeout sets the between-frame silence window. Zero disables
// the watchdog.
func (h *Handler) WithIdleTimeout(d time.Duration) *Handler {
	if d >= 0 {
		h.idleTimeout = d
	}
	return h
}

// State returns the lifecycle state of the conversation's latest request.
func (h *Handler) State(conversationID string) Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statuses[conversationID]
}

// setStatus records the conversation's request state.
func (h *Handler) setStatus(conversationID string, s Status) {
	h.mu.Lock()
	h.statuses[conversationID] = s
	h.mu.Unlock()
}

// acquire takes the per-conversation single-flight guard.
func (h *Handler) acquire(conversationID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.statuses[conversationID].Active() {
		return ErrRequestInFlight
	}
	h.statuses[conversationID] = StatusAwaitingHeaders
	return nil
}

// Send drives one request for the conversation: it persists an empty
// assistant placeholder (timestamped strictly after userMessageTime),
// streams the completion into it delta by delta, and finishes in exactly
// one terminal state. history must already include the triggering user
// message. Cancelling ctx stops the stream and is not reported as an
// error; every other failure is returned after the error marker is
// written into the message.
func (h *Handler) Send(ctx context.Context, conversationID string, history []openrouter.ChatMessage, userMessageTime time.Time, obs Observer) error {
	if !h.client.IsConfigured() {
		return ErrNoCredential
	}

	if err := h.acquire(conversationID); err != nil {
		return err
	}

	// Persistence must not be aborted by user cancellation: a cancelled
	// stream still writes its marker, and an in-flight delta write must not
	// fail just because Esc landed at the same moment.
	persistCtx := context.WithoutCancel(ctx)

	// The placeholder exists before the first network byte, so a transcript
	// slot is visible even if the request dies immediately.
	placeholder := model.NewAssistantPlaceholder(conversationID, userMessageTime)
	if err := h.store.AddMessage(persistCtx, placeholder); err != nil {
		h.setStatus(conversationID, StatusErrored)
		return fmt.Errorf("failed to persist placeholder: %w", err)
	}

	if obs != nil {
		obs.OnStart(conversationID, placeholder.ID)
	}

	// The watchdog cancels streamCtx when no frame arrives within the idle
	// window. timedOut distinguishes that from user cancellation.
	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()

	var timedOut atomic.Bool
	var watchdog *time.Timer
	if h.idleTimeout > 0 {
		watchdog = time.AfterFunc(h.idleTimeout, func() {
			timedOut.Store(true)
			cancelStream()
		})
		defer watchdog.Stop()
	}

	var accumulated strings.Builder
	var persistErr error

	streamErr := h.client.ChatStream(streamCtx, history, func(chunk openrouter.StreamChunk) {
		if watchdog != nil {
			watchdog.Reset(h.idleTimeout)
		}
		if persistErr != nil {
			return
		}

		content := chunk.GetContent()
		if content == "" {
			return
		}

		h.setStatus(conversationID, StatusStreaming)
		accumulated.WriteString(content)

		// Flush before the next frame is read; updates are never coalesced.
		if err := h.store.UpdateMessageContent(persistCtx, placeholder.ID, accumulated.String()); err != nil {
			persistErr = err
			cancelStream()
			return
		}

		if obs != nil {
			obs.OnDelta(conversationID, placeholder.ID, accumulated.String())
		}
	})

	return h.finish(ctx, persistCtx, conversationID, placeholder.ID, accumulated.String(), streamErr, persistErr, timedOut.Load(), obs)
}

// finish resolves the terminal state and writes the final content. ctx
// carries the caller's cancellation signal; persistCtx never does.
func (h *Handler) finish(ctx, persistCtx context.Context, conversationID, messageID, accumulated string, streamErr, persistErr error, timedOut bool, obs Observer) error {
	done := func(err error) error {
		if obs != nil {
			obs.OnDone(conversationID, messageID, err)
		}
		return err
	}

	// Storage failures during streaming take precedence; the stream was
	// aborted because of them.
	if persistErr != nil {
		h.setStatus(conversationID, StatusErrored)
		err := fmt.Errorf("failed to persist streamed content: %w", persistErr)
		h.writeFinal(persistCtx, messageID, errorContent(accumulated, err))
		h.logger.Error("stream persist failed",
			zap.String("conversation_id", conversationID),
			zap.Error(persistErr))
		return done(err)
	}

	if streamErr == nil {
		h.setStatus(conversationID, StatusCompleted)
		h.writeFinal(persistCtx, messageID, accumulated)
		return done(nil)
	}

	// User cancellation: parent context was cancelled and the watchdog did
	// not fire. A normal outcome, reported as success.
	if ctx.Err() != nil && !timedOut {
		h.setStatus(conversationID, StatusCancelled)
		h.writeFinal(persistCtx, messageID, cancelledContent(accumulated))
		h.logger.Info("stream cancelled by user",
			zap.String("conversation_id", conversationID),
			zap.Int("received_chars", len(accumulated)))
		return done(nil)
	}

	if timedOut {
		streamErr = fmt.Errorf("%w: no data for %s", ErrIdleTimeout, h.idleTimeout)
	}

	h.setStatus(conversationID, StatusErrored)
	h.writeFinal(persistCtx, messageID, errorContent(accumulated, streamErr))
	h.logger.Warn("stream failed",
		zap.String("conversation_id", conversationID),
		zap.Error(streamErr))
	return done(streamErr)
}

// writeFinal persists the terminal content, logging on failure.
func (h *Handler) writeFinal(ctx context.Context, messageID, content string) {
	if err := h.store.UpdateMessageContent(ctx, messageID, content); err != nil {
		h.logger.Error("failed to write final message content",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

// cancelledContent appends the cancellation marker, or returns the marker
// alone when nothing was received.
func cancelledContent(accumulated string) string {
	if accumulated == "" {
		return strings.TrimPrefix(CancelMarker, "\n\n")
	}
	return accumulated + CancelMarker
}

// errorContent appends the error marker, or returns it alone when nothing
// was received.
func errorContent(accumulated string, err error) string {
	if accumulated == "" {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("%s\n\nError: %v", accumulated, err)
}
