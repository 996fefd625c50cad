// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

// DefaultModel is the model used when the config does not name one.
const DefaultModel = "deepseek/deepseek-r1-0528-qwen3-8b:free"

// Models maps friendly names to full OpenRouter model identifiers. The
// selectable list is static; there is no provider discovery.
var Models = map[string]string{
	"deepseek-r1": "deepseek/deepseek-r1-0528-qwen3-8b:free",
	"gemini":      "google/gemini-2.0-flash-exp:free",
	"llama":       "meta-llama/llama-3.3-70b-instruct:free",
	"mistral":     "mistralai/mistral-small-3.1-24b-instruct:free",
	"qwen":        "qwen/qwen3-14b:free",
	"sonnet":      "anthropic/claude-3.5-sonnet",
	"gpt4o":       "openai/gpt-4o",
}

// ModelNames returns the friendly names in a stable order for display.
func ModelNames() []string {
	return []string{"deepseek-r1", "gemini", "llama", "mistral", "qwen", "sonnet", "gpt4o"}
}
