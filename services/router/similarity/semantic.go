// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package similarity

import (
	"sort"
	"strings"

	"github.com/CapiAI/capi-router/services/router/lexical"
)

// conceptEquivalences answers whether two concept names should be treated
// as matching. Identity always matches; beyond that, membership in the
// same equivalence group counts.
type conceptEquivalences struct {
	group map[string]int
}

func newConceptEquivalences(groups [][]string) *conceptEquivalences {
	eq := &conceptEquivalences{group: make(map[string]int)}
	for id, g := range groups {
		for _, name := range g {
			if _, exists := eq.group[name]; !exists {
				eq.group[name] = id
			}
		}
	}
	return eq
}

func (eq *conceptEquivalences) match(a, b string) bool {
	if a == b {
		return true
	}
	ga, okA := eq.group[a]
	gb, okB := eq.group[b]
	return okA && okB && ga == gb
}

// Semantic scores the query against the reference using synonym-aware
// token matching combined with concept overlap.
//
// # Description
//
// The synonym sub-score walks every non-stopword query token and awards
// 1.0 for an exact match in the reference, 0.9 for a typo variant, or
// 1.0 when both sides carry tokens of the same synonym group; the score
// is matches over query token count. The concept sub-score is the share
// of the query's detected concepts that find an equal or equivalent
// concept in the reference. The final score is
// max(0.7*synonym + 0.3*concept, synonym, concept).
//
// The direction matters: both sub-scores normalize by the query side, so
// Semantic(a, b) and Semantic(b, a) can differ when one text carries
// concepts or tokens the other lacks. Hybrid inherits the same asymmetry.
func (e *Engine) Semantic(query, reference string) float64 {
	syn := e.synonymScore(query, reference)
	con := e.conceptScore(query, reference)
	combined := semanticSynonymWeight*syn + semanticConceptWeight*con
	return math3Max(combined, syn, con)
}

// synonymScore is the token-level sub-score of Semantic. Both sides
// empty scores 1.0; only the reference empty scores 0.0.
func (e *Engine) synonymScore(query, reference string) float64 {
	qTokens := e.tokenizer.Tokenize(query, true)
	rTokens := e.tokenizer.Tokenize(reference, true)
	if len(qTokens) == 0 && len(rTokens) == 0 {
		return 1.0
	}
	if len(qTokens) == 0 || len(rTokens) == 0 {
		return 0.0
	}

	rSet := toSet(rTokens)
	var matched float64
	for _, qt := range qTokens {
		matched += e.tokenMatch(qt, rTokens, rSet)
	}
	return matched / float64(len(qTokens))
}

// tokenMatch returns the best award for one query token: exact 1.0,
// typo variant 0.9, shared synonym group 1.0, otherwise 0.
func (e *Engine) tokenMatch(qt string, rTokens []string, rSet map[string]struct{}) float64 {
	if _, ok := rSet[qt]; ok {
		return 1.0
	}
	for _, rt := range rTokens {
		if lexical.IsTypoVariant(qt, rt) {
			return 0.9
		}
	}
	if groupID, ok := e.synonyms.GroupOf(qt); ok && e.synonyms.GroupPresent(groupID, rTokens) {
		return 1.0
	}
	return 0.0
}

// conceptScore is the concept-level sub-score of Semantic: the fraction
// of query concepts matched in the reference. No query concepts scores 0.
func (e *Engine) conceptScore(query, reference string) float64 {
	qConcepts := e.conceptsOf(query)
	if len(qConcepts) == 0 {
		return 0.0
	}
	rConcepts := e.conceptsOf(reference)

	matched := 0
	for _, qc := range qConcepts {
		for _, rc := range rConcepts {
			if e.equivalences.match(qc, rc) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(qConcepts))
}

// conceptsOf detects which domain concepts a text signals, by substring
// membership of concept keywords in the lowercased text. Results are
// sorted for determinism and memoized.
func (e *Engine) conceptsOf(text string) []string {
	if cached, ok := e.conceptCache.Get(text); ok {
		return cached
	}

	lowered := strings.ToLower(text)
	var found []string
	for name, keywords := range e.concepts {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				found = append(found, name)
				break
			}
		}
	}
	sort.Strings(found)

	e.conceptCache.Add(text, found)
	return found
}

func math3Max(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
