// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package lexical provides the stateless text primitives used by the
// similarity engine and the entity extractor: tokenization with a Spanish
// stopword table, Levenshtein edit distance, typo-variant detection, and
// domain synonym groups.
package lexical

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultTokenCacheSize bounds the tokenization memo. Queries repeat heavily
// (the similarity engine tokenizes the same query once per candidate), so a
// few thousand entries covers the working set of a busy router instance.
const defaultTokenCacheSize = 4096

// tokenCacheKey identifies one memoized tokenization result.
type tokenCacheKey struct {
	text            string
	removeStopwords bool
}

// Tokenizer splits free text into lowercase tokens, optionally dropping
// stopwords, and memoizes results in a fixed-capacity LRU.
//
// # Description
//
// Tokenization lowercases the input, replaces every rune that is not a
// letter or digit with a space, and splits on whitespace. The stopword
// table is fixed at construction time. Results are cached per
// (text, removeStopwords) pair; the cache is bounded so long-lived
// processes do not grow without limit.
//
// # Thread Safety
//
// Safe for concurrent use. The LRU is internally synchronized and the
// stopword set is immutable after construction.
type Tokenizer struct {
	stopwords map[string]struct{}
	cache     *lru.Cache[tokenCacheKey, []string]
}

// NewTokenizer creates a Tokenizer with the given stopword list.
//
// # Inputs
//
//   - stopwords: Words to drop when removeStopwords is requested. May be empty.
//   - cacheSize: LRU capacity. Zero or negative uses the default (4096).
//
// # Outputs
//
//   - *Tokenizer: Ready-to-use tokenizer. Never nil.
func NewTokenizer(stopwords []string, cacheSize int) *Tokenizer {
	if cacheSize <= 0 {
		cacheSize = defaultTokenCacheSize
	}

	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}

	// lru.New only fails on non-positive size, which is guarded above.
	cache, _ := lru.New[tokenCacheKey, []string](cacheSize)

	return &Tokenizer{
		stopwords: set,
		cache:     cache,
	}
}

// Tokenize lowercases text, strips non-alphanumeric runes, splits on
// whitespace, and optionally removes stopwords.
//
// # Inputs
//
//   - text: Raw input text. Empty input yields an empty slice.
//   - removeStopwords: When true, tokens present in the stopword table are dropped.
//
// # Outputs
//
//   - []string: Tokens in input order. Never nil. The caller owns the slice.
//
// # Thread Safety
//
// Safe for concurrent use.
func (t *Tokenizer) Tokenize(text string, removeStopwords bool) []string {
	key := tokenCacheKey{text: text, removeStopwords: removeStopwords}
	if cached, ok := t.cache.Get(key); ok {
		// Hand out a copy so callers cannot mutate the cached slice.
		out := make([]string, len(cached))
		copy(out, cached)
		return out
	}

	lowered := strings.ToLower(text)
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowered)

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if removeStopwords {
			if _, stop := t.stopwords[f]; stop {
				continue
			}
		}
		tokens = append(tokens, f)
	}

	t.cache.Add(key, tokens)

	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

// IsStopword reports whether a lowercase word is in the stopword table.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// CacheLen returns the number of memoized tokenizations. Diagnostic only.
func (t *Tokenizer) CacheLen() int {
	return t.cache.Len()
}
