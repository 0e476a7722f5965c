// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/CapiAI/capi-router/services/router/config"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	lex, err := config.DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon() error: %v", err)
	}
	engine, err := NewEngine(lex, 0)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return engine
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestIdentitySimilarity(t *testing.T) {
	engine := newTestEngine(t)

	queries := []string{
		"hola",
		"leer archivo excel",
		"sucursal 12 saldo total",
		"detectar anomalias en los datos",
	}
	methods := []Method{MethodJaccard, MethodCosine, MethodHybrid}

	for _, q := range queries {
		for _, m := range methods {
			got, err := engine.Similarity(q, q, m)
			if err != nil {
				t.Fatalf("Similarity(%q, %q, %s) error: %v", q, q, m, err)
			}
			if !almostEqual(got, 1.0) {
				t.Errorf("Similarity(%q, %q, %s) = %v, want 1.0", q, q, m, got)
			}
		}
	}
}

func TestJaccardCosineSymmetry(t *testing.T) {
	engine := newTestEngine(t)

	pairs := [][2]string{
		{"leer archivo excel", "abrir documento excel"},
		{"sucursal 12 saldo", "total de la sucursal"},
		{"hola como estas", "detectar anomalias"},
		{"", "algo"},
	}

	for _, p := range pairs {
		if a, b := engine.Jaccard(p[0], p[1]), engine.Jaccard(p[1], p[0]); !almostEqual(a, b) {
			t.Errorf("Jaccard asymmetric for %q / %q: %v vs %v", p[0], p[1], a, b)
		}
		if a, b := engine.Cosine(p[0], p[1]), engine.Cosine(p[1], p[0]); !almostEqual(a, b) {
			t.Errorf("Cosine asymmetric for %q / %q: %v vs %v", p[0], p[1], a, b)
		}
	}
}

func TestJaccardEdgeCases(t *testing.T) {
	engine := newTestEngine(t)

	if got := engine.Jaccard("", ""); got != 1.0 {
		t.Errorf("Jaccard of two empty texts = %v, want 1.0", got)
	}
	if got := engine.Jaccard("", "archivo"); got != 0.0 {
		t.Errorf("Jaccard with one empty text = %v, want 0.0", got)
	}
	if got := engine.Jaccard("leer archivo", "sucursal saldo"); got != 0.0 {
		t.Errorf("Jaccard of disjoint texts = %v, want 0.0", got)
	}
}

func TestCosineZeroMagnitude(t *testing.T) {
	engine := newTestEngine(t)

	// Stopword-only text vectorizes to nothing.
	if got := engine.Cosine("de la el", "leer archivo"); got != 0.0 {
		t.Errorf("Cosine with empty vector = %v, want 0.0", got)
	}
}

func TestSemanticBeatsJaccardOnSynonyms(t *testing.T) {
	engine := newTestEngine(t)

	exp := engine.Explain("leer archivo excel", "abrir documento excel")
	if exp.Semantic <= exp.Jaccard {
		t.Errorf("semantic %v should exceed jaccard %v for synonym-heavy pair", exp.Semantic, exp.Jaccard)
	}
	if exp.SynonymScore < 0.99 {
		t.Errorf("synonym score = %v, want ~1.0 (leer~abrir, archivo~documento, excel exact)", exp.SynonymScore)
	}
}

func TestSemanticTypoTolerance(t *testing.T) {
	engine := newTestEngine(t)

	// Concept-free words so the concept sub-score cannot mask the typo.
	clean := engine.Semantic("factura mensual", "factura mensual")
	typo := engine.Semantic("factura mensuak", "factura mensual")
	if typo >= clean {
		t.Errorf("typo variant %v should score below exact %v", typo, clean)
	}
	if typo < 0.9 {
		t.Errorf("typo variant score = %v, want >= 0.9 (0.9 award per typo token)", typo)
	}
}

func TestSemanticConceptEquivalence(t *testing.T) {
	engine := newTestEngine(t)

	// "guardar" signals file_operation, "contenido" signals content_access;
	// the two concepts are equivalent, so concept score should be positive.
	exp := engine.Explain("guardar planilla", "ver contenido")
	if exp.ConceptScore <= 0 {
		t.Errorf("concept score = %v, want > 0 via file_operation~content_access equivalence", exp.ConceptScore)
	}
}

func TestSimilarityUnknownMethod(t *testing.T) {
	engine := newTestEngine(t)

	if _, err := engine.Similarity("a", "b", Method("bogus")); err == nil {
		t.Error("expected error for unknown method")
	}
	got, err := engine.Similarity("leer archivo", "leer archivo", "")
	if err != nil {
		t.Fatalf("empty method should default to hybrid: %v", err)
	}
	if !almostEqual(got, 1.0) {
		t.Errorf("default hybrid identity = %v, want 1.0", got)
	}
}

func TestFindBestMatches(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	candidates := []string{
		"detectar anomalias en sucursales",
		"leer el archivo excel",
		"leer el archivo excel",
		"hola buenos dias",
	}
	matches, err := engine.FindBestMatches(ctx, "leer archivo excel", candidates, 3, 0.1)
	if err != nil {
		t.Fatalf("FindBestMatches() error: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Candidate != "leer el archivo excel" {
		t.Errorf("best match = %q, want the excel candidate", matches[0].Candidate)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted descending at %d: %v > %v", i, matches[i].Score, matches[i-1].Score)
		}
	}
	// The duplicate candidates tie; input order must be preserved.
	if len(matches) >= 2 && matches[0].Score == matches[1].Score && matches[0].Index > matches[1].Index {
		t.Errorf("tie broken against input order: indices %d, %d", matches[0].Index, matches[1].Index)
	}

	limited, err := engine.FindBestMatches(ctx, "leer archivo excel", candidates, 1, 0)
	if err != nil {
		t.Fatalf("FindBestMatches() error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("topK=1 returned %d matches", len(limited))
	}

	none, err := engine.FindBestMatches(ctx, "leer archivo excel", candidates, 5, 1.01)
	if err != nil {
		t.Fatalf("FindBestMatches() error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("impossible threshold returned %d matches", len(none))
	}
}

func TestFindBestMatchesEmptyCandidates(t *testing.T) {
	engine := newTestEngine(t)

	matches, err := engine.FindBestMatches(context.Background(), "algo", nil, 5, 0)
	if err != nil {
		t.Fatalf("FindBestMatches() error: %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches, got %v", matches)
	}
}
