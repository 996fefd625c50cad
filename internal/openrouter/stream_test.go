// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseHandler writes the given SSE lines and closes the stream.
func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}
}

func deltaFrame(content string) string {
	return fmt.Sprintf(`{"id":"gen-1","choices":[{"delta":{"content":%q},"finish_reason":""}]}`, content)
}

func TestChatStreamDeliversDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		deltaFrame("Hel"),
		deltaFrame("lo, "),
		deltaFrame("world"),
		"[DONE]",
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)

	var got []string
	err := c.ChatStream(context.Background(), []ChatMessage{NewUserMessage("hi")}, func(chunk StreamChunk) {
		got = append(got, chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if strings.Join(got, "") != "Hello, world" {
		t.Errorf("assembled = %q, want %q", strings.Join(got, ""), "Hello, world")
	}
}

func TestChatStreamStopsOnFinishReason(t *testing.T) {
	frames := []string{
		deltaFrame("done"),
		`{"id":"gen-1","choices":[{"delta":{"content":""},"finish_reason":"stop"}]}`,
		deltaFrame("never delivered"),
	}
	srv := httptest.NewServer(sseHandler(t, frames))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)

	var got []string
	err := c.ChatStream(context.Background(), nil, func(chunk StreamChunk) {
		if s := chunk.GetContent(); s != "" {
			got = append(got, s)
		}
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if len(got) != 1 || got[0] != "done" {
		t.Errorf("deltas after finish_reason must not be delivered: %v", got)
	}
}

func TestChatStreamSkipsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		deltaFrame("good "),
		`{this is not json`,
		deltaFrame("still good"),
		"[DONE]",
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)

	var sb strings.Builder
	err := c.ChatStream(context.Background(), nil, func(chunk StreamChunk) {
		sb.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if sb.String() != "good still good" {
		t.Errorf("assembled = %q, want %q", sb.String(), "good still good")
	}
}

func TestChatStreamEOFWithoutDone(t *testing.T) {
	// Server closes the connection without [DONE]; treated as normal end.
	srv := httptest.NewServer(sseHandler(t, []string{deltaFrame("partial")}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)

	var sb strings.Builder
	err := c.ChatStream(context.Background(), nil, func(chunk StreamChunk) {
		sb.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if sb.String() != "partial" {
		t.Errorf("assembled = %q, want %q", sb.String(), "partial")
	}
}

func TestChatStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", deltaFrame("first"))
		flusher.Flush()
		<-release // hold the stream open until the test ends
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient("test-key").WithBaseURL(srv.URL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ChatStream(ctx, nil, func(chunk StreamChunk) {
			if chunk.GetContent() == "first" {
				cancel()
			}
		})
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

func TestChatStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	err := c.ChatStream(context.Background(), nil, func(StreamChunk) {
		t.Error("callback must not fire on error response")
	})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("error = %v, want ErrAuthFailed", err)
	}
}

func TestSSEReaderMultiLineData(t *testing.T) {
	input := "data: line one\ndata: line two\n\ndata: [DONE]\n\n"
	r := NewSSEReader(strings.NewReader(input))

	data, err := r.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if string(data) != "line one\nline two" {
		t.Errorf("data = %q", data)
	}

	data, err = r.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if string(data) != "[DONE]" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReaderIgnoresCommentsAndFields(t *testing.T) {
	input := ": keepalive\nid: 7\nevent: message\ndata: payload\n\n"
	r := NewSSEReader(strings.NewReader(input))

	data, err := r.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q, want payload", data)
	}
}

func TestSSEReaderFrameSizeCap(t *testing.T) {
	huge := strings.Repeat("x", MaxChunkSize+1)
	r := NewSSEReader(strings.NewReader("data: " + huge + "\n\n"))

	if _, err := r.ReadEvent(); err == nil {
		t.Error("expected error for oversized frame")
	}
}
