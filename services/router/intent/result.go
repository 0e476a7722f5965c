// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

// Result is the classifier's output for one query. It is transient;
// nothing here is persisted.
type Result struct {
	Intent          Intent          `json:"intent"`
	Confidence      float64         `json:"confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	TargetAgent     string          `json:"target_agent"`

	// Entities holds extracted entity keys such as gmail_operation,
	// email_recipients, branch_hint. Values are strings or string lists.
	Entities map[string]any `json:"entities,omitempty"`

	// ContextResolved is true when Entities is non-empty.
	ContextResolved bool `json:"context_resolved"`

	// RequiresClarification signals the caller should ask a follow-up
	// question instead of dispatching.
	RequiresClarification bool `json:"requires_clarification"`

	Reasoning string `json:"reasoning,omitempty"`
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
}

// NewResult builds a Result with confidence clamped, the tier derived,
// and the agent resolved against the allow-list.
func NewResult(in Intent, confidence float64, suggestedAgent string) *Result {
	conf := Clamp(confidence)
	return &Result{
		Intent:          in,
		Confidence:      conf,
		ConfidenceLevel: LevelFor(conf),
		TargetAgent:     ResolveAgent(suggestedAgent, in),
		Entities:        map[string]any{},
	}
}

// SetEntity records one entity key and keeps ContextResolved in sync.
func (r *Result) SetEntity(key string, value any) {
	if r.Entities == nil {
		r.Entities = map[string]any{}
	}
	r.Entities[key] = value
	r.ContextResolved = true
}
