// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache persists recent routing decisions in a local BadgerDB so
// repeated identical queries skip the reasoner entirely. Entries expire
// via Badger's native TTL. The cache is best-effort: every failure is a
// miss, never an error surfaced to classification.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/CapiAI/capi-router/services/router/intent"
)

// DefaultTTL is how long a cached decision stays valid.
const DefaultTTL = 15 * time.Minute

// DecisionCache is a TTL-bounded store of classification results keyed
// by query and context. A nil *DecisionCache is valid and always misses.
//
// # Thread Safety
//
// Safe for concurrent use; Badger serializes internally.
type DecisionCache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates or opens the cache at dir. A ttl <= 0 uses the default.
func Open(dir string, ttl time.Duration) (*DecisionCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache.Open: %w", err)
	}
	return &DecisionCache{db: db, ttl: ttl}, nil
}

// Close releases the underlying database. Nil-safe.
func (c *DecisionCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached decision for the query/context pair, or a miss.
func (c *DecisionCache) Get(query, contextKey string) (*intent.Result, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}

	key := decisionKey(query, contextKey)
	var payload []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Warn("decision cache read failed", slog.String("error", err.Error()))
		}
		cacheMisses.Inc()
		return nil, false
	}

	var res intent.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		slog.Warn("decision cache entry corrupt", slog.String("error", err.Error()))
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return &res, true
}

// Set stores a decision under the query/context pair with the cache TTL.
// Best-effort; failures are logged and swallowed.
func (c *DecisionCache) Set(query, contextKey string, res *intent.Result) {
	if c == nil || c.db == nil || res == nil {
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		slog.Warn("decision cache encode failed", slog.String("error", err.Error()))
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(decisionKey(query, contextKey), payload).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		slog.Warn("decision cache write failed", slog.String("error", err.Error()))
	}
}

// decisionKey hashes the query and context so keys stay fixed-size and
// free of user text.
func decisionKey(query, contextKey string) []byte {
	sum := sha256.Sum256([]byte(query + "\x00" + contextKey))
	return []byte("decision:" + hex.EncodeToString(sum[:]))
}
