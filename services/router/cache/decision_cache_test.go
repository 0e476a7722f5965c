// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CapiAI/capi-router/services/router/intent"
)

func newTestCache(t *testing.T) *DecisionCache {
	t.Helper()
	c, err := Open(t.TempDir(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	stored := intent.NewResult(intent.DBOperation, 0.82, intent.AgentDatab)
	stored.SetEntity("branch_hint", "12")
	stored.Provider = "mock"
	c.Set("sucursal 12 saldo", "s1", stored)

	got, ok := c.Get("sucursal 12 saldo", "s1")
	require.True(t, ok)
	require.Equal(t, intent.DBOperation, got.Intent)
	require.Equal(t, 0.82, got.Confidence)
	require.Equal(t, intent.ConfidenceHigh, got.ConfidenceLevel)
	require.Equal(t, "12", got.Entities["branch_hint"])
	require.Equal(t, "mock", got.Provider)
}

func TestCacheMissOnDifferentContext(t *testing.T) {
	c := newTestCache(t)

	c.Set("que contiene?", "session-a", intent.NewResult(intent.FileOperation, 0.7, ""))

	_, ok := c.Get("que contiene?", "session-b")
	require.False(t, ok, "same query under a different context must miss")

	_, ok = c.Get("otra consulta", "session-a")
	require.False(t, ok)
}

func TestCacheNilSafe(t *testing.T) {
	var c *DecisionCache

	_, ok := c.Get("q", "ctx")
	require.False(t, ok)
	c.Set("q", "ctx", intent.NewResult(intent.Greeting, 0.4, ""))
	require.NoError(t, c.Close())
}
