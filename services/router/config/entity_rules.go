// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed entity_rules.yaml
var defaultEntityRulesYAML []byte

// =============================================================================
// Entity Rule Types
// =============================================================================

// PatternRule is one row of an entity extraction table.
//
// When Value is empty the extracted value comes from the rule's first
// capture group; otherwise Value is emitted as-is (keyword families).
type PatternRule struct {
	Pattern    string  `yaml:"pattern"`
	Value      string  `yaml:"value,omitempty"`
	Confidence float64 `yaml:"confidence"`
}

// FilenameCleaning holds the word lists used to normalize filename
// candidates and to filter primary-filename selection.
type FilenameCleaning struct {
	FillerWords  []string `yaml:"filler_words"`
	CommandVerbs []string `yaml:"command_verbs"`
	Placeholders []string `yaml:"placeholders"`
	SummaryWords []string `yaml:"summary_words"`
}

// EntityRules is the full declarative rule set for the entity extractor.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type EntityRules struct {
	FilenamePatterns []PatternRule    `yaml:"filename_patterns"`
	BranchPatterns   []PatternRule    `yaml:"branch_patterns"`
	TimePatterns     []PatternRule    `yaml:"time_patterns"`
	ActionPatterns   []PatternRule    `yaml:"action_patterns"`
	FormatPatterns   []PatternRule    `yaml:"format_patterns"`
	FilenameCleaning FilenameCleaning `yaml:"filename_cleaning"`
}

// =============================================================================
// Loading
// =============================================================================

// LoadEntityRules parses and validates entity rules from YAML bytes.
//
// Description:
//
//	Parses the YAML, checks every pattern compiles as a case-insensitive
//	regex, and checks confidences sit in [0, 1]. Keyword families
//	(actions, formats) must carry a fixed value.
//
// Inputs:
//
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*EntityRules - The validated rule set.
//	error - Non-nil if parsing or validation fails.
func LoadEntityRules(data []byte) (*EntityRules, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadEntityRules: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadEntityRules: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var rules EntityRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("LoadEntityRules: parsing YAML: %w", err)
	}

	families := []struct {
		name       string
		rules      []PatternRule
		needsValue bool
	}{
		{"filename_patterns", rules.FilenamePatterns, false},
		{"branch_patterns", rules.BranchPatterns, false},
		{"time_patterns", rules.TimePatterns, false},
		{"action_patterns", rules.ActionPatterns, true},
		{"format_patterns", rules.FormatPatterns, true},
	}
	total := 0
	for _, fam := range families {
		if len(fam.rules) == 0 {
			return nil, fmt.Errorf("LoadEntityRules: %s is empty", fam.name)
		}
		for i, r := range fam.rules {
			if _, err := regexp.Compile("(?i)" + r.Pattern); err != nil {
				return nil, fmt.Errorf("LoadEntityRules: %s[%d]: invalid pattern: %w", fam.name, i, err)
			}
			if r.Confidence < 0 || r.Confidence > 1 {
				return nil, fmt.Errorf("LoadEntityRules: %s[%d]: confidence %.2f outside [0,1]", fam.name, i, r.Confidence)
			}
			if fam.needsValue && r.Value == "" {
				return nil, fmt.Errorf("LoadEntityRules: %s[%d]: missing value", fam.name, i)
			}
		}
		total += len(fam.rules)
	}

	slog.Debug("entity rules loaded", slog.Int("patterns", total))
	return &rules, nil
}

// DefaultEntityRules loads the embedded entity_rules.yaml.
func DefaultEntityRules() (*EntityRules, error) {
	return LoadEntityRules(defaultEntityRulesYAML)
}
