// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package similarity

import "slices"

// Explanation is the full diagnostic breakdown of one query/reference
// comparison: every method's score plus the token and concept views that
// produced them.
type Explanation struct {
	Query     string `json:"query"`
	Reference string `json:"reference"`

	Jaccard  float64 `json:"jaccard"`
	Cosine   float64 `json:"cosine"`
	Semantic float64 `json:"semantic"`
	Hybrid   float64 `json:"hybrid"`

	SynonymScore float64 `json:"synonym_score"`
	ConceptScore float64 `json:"concept_score"`

	QueryTokens       []string `json:"query_tokens"`
	ReferenceTokens   []string `json:"reference_tokens"`
	QueryConcepts     []string `json:"query_concepts"`
	ReferenceConcepts []string `json:"reference_concepts"`
}

// Explain computes every score and breakdown for one pair. Pure with
// respect to observable state; safe to call from tests and diagnostics.
func (e *Engine) Explain(query, reference string) Explanation {
	return Explanation{
		Query:             query,
		Reference:         reference,
		Jaccard:           e.Jaccard(query, reference),
		Cosine:            e.Cosine(query, reference),
		Semantic:          e.Semantic(query, reference),
		Hybrid:            e.Hybrid(query, reference),
		SynonymScore:      e.synonymScore(query, reference),
		ConceptScore:      e.conceptScore(query, reference),
		QueryTokens:       e.tokenizer.Tokenize(query, true),
		ReferenceTokens:   e.tokenizer.Tokenize(reference, true),
		QueryConcepts:     slices.Clone(e.conceptsOf(query)),
		ReferenceConcepts: slices.Clone(e.conceptsOf(reference)),
	}
}
