// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openrouter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelNamesResolve(t *testing.T) {
	for _, name := range ModelNames() {
		id, ok := Models[name]
		require.True(t, ok, "friendly name %q has no mapping", name)
		require.NotEmpty(t, id)
	}
	require.Len(t, ModelNames(), len(Models))
}

func TestWithModelResolvesFriendlyName(t *testing.T) {
	c := NewClient("sk-test").WithModel("llama")
	require.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", c.Model())

	// Full identifiers pass through untouched.
	c = c.WithModel("vendor/custom-model")
	require.Equal(t, "vendor/custom-model", c.Model())

	// Blank keeps the current model.
	c = c.WithModel("")
	require.Equal(t, "vendor/custom-model", c.Model())
}

func TestDefaultModelIsMapped(t *testing.T) {
	require.Equal(t, Models["deepseek-r1"], DefaultModel)
	require.Equal(t, DefaultModel, NewClient("sk-test").Model())
}
