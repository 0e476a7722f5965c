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

//go:embed router_rules.yaml
var defaultRouterRulesYAML []byte

// =============================================================================
// Router Rule Types
// =============================================================================

// FallbackConfidences are the fixed per-branch confidence constants used by
// the deterministic cascade. They do not derive from the similarity engine;
// the cascade exists for availability, not precision.
type FallbackConfidences struct {
	Google   float64 `yaml:"google"`
	Greeting float64 `yaml:"greeting"`
	DB       float64 `yaml:"db"`
	Summary  float64 `yaml:"summary"`
	Anomaly  float64 `yaml:"anomaly"`
	Unknown  float64 `yaml:"unknown"`
}

// FallbackRules carries the token lists evaluated by the cascade, in
// precedence order google > greeting > branch+money > summary > anomaly.
type FallbackRules struct {
	GoogleTokens   []string            `yaml:"google_tokens"`
	GmailTokens    []string            `yaml:"gmail_tokens"`
	DriveTokens    []string            `yaml:"drive_tokens"`
	CalendarTokens []string            `yaml:"calendar_tokens"`
	SendTokens     []string            `yaml:"send_tokens"`
	ListTokens     []string            `yaml:"list_tokens"`
	PushTokens     []string            `yaml:"push_tokens"`
	GreetingTokens []string            `yaml:"greeting_tokens"`
	BranchTokens   []string            `yaml:"branch_tokens"`
	MoneyTokens    []string            `yaml:"money_tokens"`
	SummaryTokens  []string            `yaml:"summary_tokens"`
	AnomalyTokens  []string            `yaml:"anomaly_tokens"`
	EmailPattern   string              `yaml:"email_pattern"`
	Confidences    FallbackConfidences `yaml:"confidences"`
}

// ContextRules carries the vague-reference heuristic word lists used by
// the conversation store.
type ContextRules struct {
	VagueReferencePhrases []string `yaml:"vague_reference_phrases"`
	ExplicitFileWords     []string `yaml:"explicit_file_words"`
}

// RouterRules is the full rule set for the fallback cascade and the
// conversation-context heuristics.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type RouterRules struct {
	Fallback FallbackRules `yaml:"fallback"`
	Context  ContextRules  `yaml:"context"`
}

// =============================================================================
// Loading
// =============================================================================

// LoadRouterRules parses and validates router rules from YAML bytes.
//
// Description:
//
//	Parses the YAML and checks every token list is non-empty, the email
//	pattern compiles, and every fixed confidence sits in [0, 1].
//
// Inputs:
//
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*RouterRules - The validated rule set.
//	error - Non-nil if parsing or validation fails.
func LoadRouterRules(data []byte) (*RouterRules, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadRouterRules: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadRouterRules: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var rules RouterRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("LoadRouterRules: parsing YAML: %w", err)
	}

	lists := map[string][]string{
		"google_tokens":           rules.Fallback.GoogleTokens,
		"gmail_tokens":            rules.Fallback.GmailTokens,
		"drive_tokens":            rules.Fallback.DriveTokens,
		"calendar_tokens":         rules.Fallback.CalendarTokens,
		"send_tokens":             rules.Fallback.SendTokens,
		"list_tokens":             rules.Fallback.ListTokens,
		"push_tokens":             rules.Fallback.PushTokens,
		"greeting_tokens":         rules.Fallback.GreetingTokens,
		"branch_tokens":           rules.Fallback.BranchTokens,
		"money_tokens":            rules.Fallback.MoneyTokens,
		"summary_tokens":          rules.Fallback.SummaryTokens,
		"anomaly_tokens":          rules.Fallback.AnomalyTokens,
		"vague_reference_phrases": rules.Context.VagueReferencePhrases,
		"explicit_file_words":     rules.Context.ExplicitFileWords,
	}
	for name, list := range lists {
		if len(list) == 0 {
			return nil, fmt.Errorf("LoadRouterRules: %s is empty", name)
		}
	}

	if _, err := regexp.Compile(rules.Fallback.EmailPattern); err != nil {
		return nil, fmt.Errorf("LoadRouterRules: invalid email_pattern: %w", err)
	}

	confs := map[string]float64{
		"google":   rules.Fallback.Confidences.Google,
		"greeting": rules.Fallback.Confidences.Greeting,
		"db":       rules.Fallback.Confidences.DB,
		"summary":  rules.Fallback.Confidences.Summary,
		"anomaly":  rules.Fallback.Confidences.Anomaly,
		"unknown":  rules.Fallback.Confidences.Unknown,
	}
	for name, c := range confs {
		if c < 0 || c > 1 {
			return nil, fmt.Errorf("LoadRouterRules: confidence %s=%.2f outside [0,1]", name, c)
		}
	}

	slog.Debug("router rules loaded",
		slog.Int("token_lists", len(lists)),
		slog.Int("vague_phrases", len(rules.Context.VagueReferencePhrases)),
	)
	return &rules, nil
}

// DefaultRouterRules loads the embedded router_rules.yaml.
func DefaultRouterRules() (*RouterRules, error) {
	return LoadRouterRules(defaultRouterRulesYAML)
}
