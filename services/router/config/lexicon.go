// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config holds the data-driven rule tables for the classification
// subsystem: the lexicon (stopwords, synonym groups, concept keywords),
// the entity extraction pattern tables, and the router rules (fallback
// cascade tokens, vague-reference phrases). Defaults are embedded; every
// table can be replaced by loading alternative YAML bytes. Nothing in this
// package is a process-wide singleton — load once, inject everywhere.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize bounds rule-table YAML inputs. Rule tables are small;
// anything above this indicates a misdirected file.
const MaxYAMLFileSize = 1 << 20 // 1 MiB

// =============================================================================
// Embedded Default Lexicon
// =============================================================================

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// =============================================================================
// Lexicon Types and Loading
// =============================================================================

// Lexicon carries the language-specific word tables consumed by the
// tokenizer and the similarity engine.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Lexicon struct {
	// Stopwords are dropped by stopword-aware tokenization.
	Stopwords []string `yaml:"stopwords"`

	// SynonymGroups are sets of interchangeable domain terms.
	SynonymGroups [][]string `yaml:"synonym_groups"`

	// Concepts maps a concept name to the keywords that signal it.
	Concepts map[string][]string `yaml:"concepts"`

	// ConceptEquivalences lists concept names that match each other.
	ConceptEquivalences [][]string `yaml:"concept_equivalences"`
}

// LoadLexicon parses and validates a Lexicon from YAML bytes.
//
// Description:
//
//	Parses the YAML and rejects empty or oversized inputs, empty synonym
//	groups, and equivalence groups naming unknown concepts.
//
// Inputs:
//
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*Lexicon - The validated lexicon.
//	error - Non-nil if parsing or validation fails.
func LoadLexicon(data []byte) (*Lexicon, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadLexicon: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadLexicon: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("LoadLexicon: parsing YAML: %w", err)
	}

	for i, g := range lex.SynonymGroups {
		if len(g) < 2 {
			return nil, fmt.Errorf("LoadLexicon: synonym_groups[%d] needs at least 2 terms", i)
		}
	}
	for i, eq := range lex.ConceptEquivalences {
		for _, name := range eq {
			if _, ok := lex.Concepts[name]; !ok {
				return nil, fmt.Errorf("LoadLexicon: concept_equivalences[%d] references unknown concept %q", i, name)
			}
		}
	}

	slog.Debug("lexicon loaded",
		slog.Int("stopwords", len(lex.Stopwords)),
		slog.Int("synonym_groups", len(lex.SynonymGroups)),
		slog.Int("concepts", len(lex.Concepts)),
	)

	return &lex, nil
}

// DefaultLexicon loads the embedded lexicon.yaml.
//
// Outputs:
//
//	*Lexicon - The embedded defaults. Never nil on success.
//	error - Non-nil only if the embedded file is broken (a build defect).
func DefaultLexicon() (*Lexicon, error) {
	return LoadLexicon(defaultLexiconYAML)
}
