// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("  sk-or-test  ")

	if !c.IsConfigured() {
		t.Error("client with key should be configured")
	}
	if c.Model() != DefaultModel {
		t.Errorf("model = %q, want %q", c.Model(), DefaultModel)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.apiKey != "sk-or-test" {
		t.Errorf("apiKey not trimmed: %q", c.apiKey)
	}
}

func TestClientNotConfigured(t *testing.T) {
	c := NewClient("")

	if c.IsConfigured() {
		t.Error("empty key should not be configured")
	}
	if _, err := c.Chat(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Chat error = %v, want ErrNotConfigured", err)
	}
	err := c.ChatStream(context.Background(), nil, func(StreamChunk) {})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ChatStream error = %v, want ErrNotConfigured", err)
	}
}

func TestWithModelResolvesFriendlyNames(t *testing.T) {
	c := NewClient("key").WithModel("gpt4o")
	if c.Model() != "openai/gpt-4o" {
		t.Errorf("model = %q, want openai/gpt-4o", c.Model())
	}

	c = NewClient("key").WithModel("some/custom-model")
	if c.Model() != "some/custom-model" {
		t.Errorf("unknown names pass through, got %q", c.Model())
	}

	c = NewClient("key").WithModel("")
	if c.Model() != DefaultModel {
		t.Errorf("empty model should keep default, got %q", c.Model())
	}
}

func TestAPIKeyMasked(t *testing.T) {
	c := NewClient("sk-or-verysecretkey")
	masked := c.APIKeyMasked()
	if strings.Contains(masked, "secret") || strings.Contains(masked, "sk-or") {
		t.Errorf("masked key leaks material: %q", masked)
	}

	if got := NewClient("").APIKeyMasked(); got != "[not set]" {
		t.Errorf("empty key mask = %q, want [not set]", got)
	}
}

func TestChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "gen-1",
			"model": "test/model",
			"choices": [{"message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	resp, err := c.Chat(context.Background(), []ChatMessage{NewUserMessage("hello")})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.GetContent() != "Hi there" {
		t.Errorf("content = %q, want %q", resp.GetContent(), "Hi there")
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"auth failed", http.StatusUnauthorized,
			`{"error":{"code":"invalid_api_key","message":"bad key"}}`, ErrAuthFailed},
		{"insufficient credits", http.StatusPaymentRequired,
			`{"error":{"message":"out of credits"}}`, ErrInsufficientCredits},
		{"model not found", http.StatusNotFound,
			`{"error":{"message":"no such model"}}`, ErrModelNotFound},
		{"rate limited", http.StatusTooManyRequests,
			`{"error":{"message":"slow down"}}`, ErrRateLimited},
		{"auth failed malformed body", http.StatusUnauthorized,
			`<html>gateway error</html>`, ErrAuthFailed},
		{"rate limited empty body", http.StatusTooManyRequests, ``, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("test-key").WithBaseURL(srv.URL)
			_, err := c.Chat(context.Background(), []ChatMessage{NewUserMessage("x")})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChatGenericAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"server_error","message":"upstream exploded"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	_, err := c.Chat(context.Background(), []ChatMessage{NewUserMessage("x")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Code != "server_error" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestModelsListComplete(t *testing.T) {
	for _, name := range ModelNames() {
		if _, ok := Models[name]; !ok {
			t.Errorf("ModelNames entry %q missing from Models", name)
		}
	}
	if Models["deepseek-r1"] != DefaultModel {
		t.Errorf("default model should be in the list")
	}
}
