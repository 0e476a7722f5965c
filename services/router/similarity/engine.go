// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package similarity scores how close a user query sits to reference
// strings. Four interchangeable methods are offered: token-set Jaccard,
// term-frequency cosine, a domain-aware semantic score built on synonym
// groups and concept detection, and a fixed-weight hybrid of the three.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/CapiAI/capi-router/services/router/config"
	"github.com/CapiAI/capi-router/services/router/lexical"
)

// Method selects the scoring algorithm.
type Method string

const (
	MethodJaccard  Method = "jaccard"
	MethodCosine   Method = "cosine"
	MethodSemantic Method = "semantic"
	MethodHybrid   Method = "hybrid"
)

// Hybrid weights. They sum to 1.0 so identical inputs score exactly 1.0.
const (
	hybridJaccardWeight  = 0.2
	hybridCosineWeight   = 0.3
	hybridSemanticWeight = 0.5
)

// Semantic combination weights for the synonym and concept sub-scores.
const (
	semanticSynonymWeight = 0.7
	semanticConceptWeight = 0.3
)

// defaultConceptCacheSize bounds the concept-extraction memoization cache.
const defaultConceptCacheSize = 4096

// Match is one scored candidate from FindBestMatches.
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

// Engine computes similarity scores over a fixed lexicon.
//
// # Thread Safety
//
// Safe for concurrent use. The lexicon tables are immutable and the
// internal memoization caches are lock-protected LRUs.
type Engine struct {
	tokenizer    *lexical.Tokenizer
	synonyms     *lexical.SynonymTable
	concepts     map[string][]string
	equivalences *conceptEquivalences
	conceptCache *lru.Cache[string, []string]
}

// NewEngine builds an Engine from a loaded lexicon.
//
// # Inputs
//
//	lex - The lexicon (stopwords, synonym groups, concept tables).
//	conceptCacheSize - Capacity of the concept memoization cache;
//	    values < 1 use the default.
//
// # Outputs
//
//	*Engine - The ready engine.
//	error - Non-nil only if the cache cannot be constructed.
func NewEngine(lex *config.Lexicon, conceptCacheSize int) (*Engine, error) {
	if lex == nil {
		return nil, fmt.Errorf("NewEngine: nil lexicon")
	}
	if conceptCacheSize < 1 {
		conceptCacheSize = defaultConceptCacheSize
	}
	cache, err := lru.New[string, []string](conceptCacheSize)
	if err != nil {
		return nil, fmt.Errorf("NewEngine: creating concept cache: %w", err)
	}
	return &Engine{
		tokenizer:    lexical.NewTokenizer(lex.Stopwords, 0),
		synonyms:     lexical.NewSynonymTable(lex.SynonymGroups),
		concepts:     lex.Concepts,
		equivalences: newConceptEquivalences(lex.ConceptEquivalences),
		conceptCache: cache,
	}, nil
}

// Similarity scores query against reference with the chosen method.
//
// # Outputs
//
//	float64 - Score in [0, 1].
//	error - Non-nil for an unknown method.
func (e *Engine) Similarity(query, reference string, method Method) (float64, error) {
	switch method {
	case MethodJaccard:
		return e.Jaccard(query, reference), nil
	case MethodCosine:
		return e.Cosine(query, reference), nil
	case MethodSemantic:
		return e.Semantic(query, reference), nil
	case MethodHybrid, "":
		return e.Hybrid(query, reference), nil
	default:
		return 0, fmt.Errorf("Similarity: unknown method %q", method)
	}
}

// Jaccard returns the token-set Jaccard index of the two texts.
// Both token sets empty scores 1.0; exactly one empty scores 0.0.
func (e *Engine) Jaccard(query, reference string) float64 {
	qs := toSet(e.tokenizer.Tokenize(query, false))
	rs := toSet(e.tokenizer.Tokenize(reference, false))
	if len(qs) == 0 && len(rs) == 0 {
		return 1.0
	}
	if len(qs) == 0 || len(rs) == 0 {
		return 0.0
	}
	inter := 0
	for t := range qs {
		if _, ok := rs[t]; ok {
			inter++
		}
	}
	union := len(qs) + len(rs) - inter
	return float64(inter) / float64(union)
}

// Cosine returns the term-frequency cosine of the two texts with
// stopwords removed. Zero magnitude on either side scores 0.0.
func (e *Engine) Cosine(query, reference string) float64 {
	qf := termFreq(e.tokenizer.Tokenize(query, true))
	rf := termFreq(e.tokenizer.Tokenize(reference, true))
	if len(qf) == 0 || len(rf) == 0 {
		return 0.0
	}
	var dot, qmag, rmag float64
	for t, c := range qf {
		qmag += float64(c * c)
		if rc, ok := rf[t]; ok {
			dot += float64(c * rc)
		}
	}
	for _, c := range rf {
		rmag += float64(c * c)
	}
	if qmag == 0 || rmag == 0 {
		return 0.0
	}
	// Single square root keeps identical inputs at exactly 1.0.
	return dot / math.Sqrt(qmag*rmag)
}

// Hybrid combines the three methods with fixed weights
// (0.2 jaccard, 0.3 cosine, 0.5 semantic).
func (e *Engine) Hybrid(query, reference string) float64 {
	return hybridJaccardWeight*e.Jaccard(query, reference) +
		hybridCosineWeight*e.Cosine(query, reference) +
		hybridSemanticWeight*e.Semantic(query, reference)
}

// FindBestMatches scores every candidate with hybrid similarity, keeps
// those at or above minThreshold, and returns the top-k sorted by score
// descending. Ties keep candidate input order.
//
// # Inputs
//
//	ctx - Cancels in-flight scoring.
//	query - The query text.
//	candidates - Reference strings to score.
//	topK - Maximum matches returned; values < 1 return all.
//	minThreshold - Minimum inclusive score.
func (e *Engine) FindBestMatches(ctx context.Context, query string, candidates []string, topK int, minThreshold float64) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scores := make([]float64, len(candidates))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = e.Hybrid(query, cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("FindBestMatches: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for i, s := range scores {
		if s >= minThreshold {
			matches = append(matches, Match{Candidate: candidates[i], Index: i, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func termFreq(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
