// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"strings"
	"testing"
)

func TestDefaultLexicon(t *testing.T) {
	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon() error: %v", err)
	}
	if len(lex.Stopwords) == 0 {
		t.Error("embedded lexicon has no stopwords")
	}
	if len(lex.SynonymGroups) == 0 {
		t.Error("embedded lexicon has no synonym groups")
	}
	for _, name := range []string{"file_operation", "content_access", "data_analysis", "branch_operation"} {
		if _, ok := lex.Concepts[name]; !ok {
			t.Errorf("embedded lexicon missing concept %q", name)
		}
	}
}

func TestLoadLexiconRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty data",
			yaml: "",
			want: "empty YAML",
		},
		{
			name: "invalid yaml",
			yaml: "stopwords: [unterminated",
			want: "parsing YAML",
		},
		{
			name: "single-term synonym group",
			yaml: "synonym_groups:\n  - [solo]\n",
			want: "at least 2 terms",
		},
		{
			name: "equivalence references unknown concept",
			yaml: "concepts:\n  file_operation: [archivo]\nconcept_equivalences:\n  - [file_operation, no_such]\n",
			want: "unknown concept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLexicon([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultEntityRules(t *testing.T) {
	rules, err := DefaultEntityRules()
	if err != nil {
		t.Fatalf("DefaultEntityRules() error: %v", err)
	}
	if len(rules.FilenamePatterns) == 0 || len(rules.ActionPatterns) == 0 {
		t.Fatal("embedded entity rules incomplete")
	}
	if len(rules.FilenameCleaning.CommandVerbs) == 0 {
		t.Error("embedded entity rules missing command verbs")
	}
}

func TestLoadEntityRulesValidation(t *testing.T) {
	base := `
filename_patterns:
  - {pattern: '(\w+)', confidence: 0.5}
branch_patterns:
  - {pattern: 'sucursal (\d+)', confidence: 0.9}
time_patterns:
  - {pattern: '(hoy)', confidence: 0.8}
action_patterns:
  - {pattern: '(leer)', value: READ_FILE, confidence: 0.7}
format_patterns:
  - {pattern: '(excel)', value: excel, confidence: 0.8}
`
	if _, err := LoadEntityRules([]byte(base)); err != nil {
		t.Fatalf("valid rules rejected: %v", err)
	}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad regex",
			yaml: strings.Replace(base, `'(\w+)'`, `'(unclosed'`, 1),
			want: "invalid pattern",
		},
		{
			name: "confidence out of range",
			yaml: strings.Replace(base, "confidence: 0.9", "confidence: 1.5", 1),
			want: "outside [0,1]",
		},
		{
			name: "keyword rule without value",
			yaml: strings.Replace(base, "value: READ_FILE, ", "", 1),
			want: "missing value",
		},
		{
			name: "missing family",
			yaml: strings.Replace(base, "time_patterns:\n  - {pattern: '(hoy)', confidence: 0.8}\n", "", 1),
			want: "time_patterns is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEntityRules([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultRouterRules(t *testing.T) {
	rules, err := DefaultRouterRules()
	if err != nil {
		t.Fatalf("DefaultRouterRules() error: %v", err)
	}

	conf := rules.Fallback.Confidences
	if conf.Greeting != 0.4 {
		t.Errorf("greeting confidence = %v, want 0.4", conf.Greeting)
	}
	if conf.DB != 0.5 {
		t.Errorf("db confidence = %v, want 0.5", conf.DB)
	}
	if conf.Unknown > 0.3 {
		t.Errorf("unknown confidence = %v, want <= 0.3", conf.Unknown)
	}
	if len(rules.Context.VagueReferencePhrases) == 0 {
		t.Error("missing vague reference phrases")
	}
}

func TestLoadRouterRulesRejectsEmptyLists(t *testing.T) {
	_, err := LoadRouterRules([]byte("fallback:\n  email_pattern: 'x@y'\n"))
	if err == nil {
		t.Fatal("expected error for empty token lists")
	}
	if !strings.Contains(err.Error(), "is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}
