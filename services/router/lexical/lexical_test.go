// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lexical

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer([]string{"el", "la", "de", "que"}, 0)

	tests := []struct {
		name            string
		text            string
		removeStopwords bool
		want            []string
	}{
		{
			name: "lowercases and splits",
			text: "Leer Archivo Excel",
			want: []string{"leer", "archivo", "excel"},
		},
		{
			name: "strips punctuation",
			text: "sucursal 12, saldo: $500",
			want: []string{"sucursal", "12", "saldo", "500"},
		},
		{
			name:            "removes stopwords",
			text:            "el contenido de la planilla",
			removeStopwords: true,
			want:            []string{"contenido", "planilla"},
		},
		{
			name: "keeps stopwords when not asked",
			text: "el contenido",
			want: []string{"el", "contenido"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name:            "all stopwords",
			text:            "el de la que",
			removeStopwords: true,
			want:            nil,
		},
		{
			name: "accented characters survive",
			text: "qué anomalías detectó",
			want: []string{"qué", "anomalías", "detectó"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text, tt.removeStopwords)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q, %v) = %v, want %v", tt.text, tt.removeStopwords, got, tt.want)
			}
		})
	}
}

func TestTokenizeCacheReturnsCopies(t *testing.T) {
	tok := NewTokenizer(nil, 8)

	first := tok.Tokenize("leer archivo", false)
	first[0] = "mutated"

	second := tok.Tokenize("leer archivo", false)
	if second[0] != "leer" {
		t.Fatalf("cached tokens leaked a caller mutation: %v", second)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"archivo", "archivo", 0},
		{"archivo", "archibo", 1},
		{"leer", "ler", 1},
		{"casa", "caza", 1},
		{"kitten", "sitting", 3},
		{"sucursal", "sucursales", 2},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		// Symmetry.
		if got := Levenshtein(tt.b, tt.a); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestLevenshteinTriangleInequality(t *testing.T) {
	samples := []string{"archivo", "archibo", "documento", "leer", "ler", "sucursal", ""}
	for _, a := range samples {
		for _, b := range samples {
			for _, c := range samples {
				ab := Levenshtein(a, b)
				bc := Levenshtein(b, c)
				ac := Levenshtein(a, c)
				if ac > ab+bc {
					t.Errorf("triangle inequality violated: d(%q,%q)=%d > d(%q,%q)+d(%q,%q)=%d",
						a, c, ac, a, b, b, c, ab+bc)
				}
			}
		}
	}
}

func TestIsTypoVariant(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"archivo", "archibo", true},
		{"leer", "ler", true},
		{"excel", "excell", true},
		{"sucursal", "sucursak", true},
		{"ab", "ab", false},      // below minimum length
		{"leer", "abrir", false}, // distance too large
		{"casa", "perro", false},
		{"documento", "documentos", true}, // long words tolerate 2
		{"documento", "sucursales", false},
	}

	for _, tt := range tests {
		if got := IsTypoVariant(tt.a, tt.b); got != tt.want {
			t.Errorf("IsTypoVariant(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSynonymTable(t *testing.T) {
	table := NewSynonymTable([][]string{
		{"archivo", "documento", "fichero"},
		{"leer", "ver", "abrir"},
	})

	if !table.SameGroup("archivo", "documento") {
		t.Error("archivo and documento should share a group")
	}
	if table.SameGroup("archivo", "leer") {
		t.Error("archivo and leer should not share a group")
	}
	if table.SameGroup("archivo", "desconocido") {
		t.Error("unknown token should never match a group")
	}

	groupID, ok := table.GroupOf("ver")
	if !ok {
		t.Fatal("ver should belong to a group")
	}
	if !table.GroupPresent(groupID, []string{"quiero", "abrir", "algo"}) {
		t.Error("group of ver should be present via abrir")
	}
	if table.GroupPresent(groupID, []string{"sin", "coincidencia"}) {
		t.Error("group of ver should be absent")
	}
}
