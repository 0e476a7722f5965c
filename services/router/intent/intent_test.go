// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"GREETING", Greeting},
		{"greeting", Greeting},
		{" Google_Gmail ", GoogleGmail},
		{"DB_OPERATION", DBOperation},
		{"UNKNOWN", Unknown},
		{"", Unknown},
		{"NOT_A_REAL_INTENT", Unknown},
		{"greeting!", Unknown},
	}

	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAllIntentsRoundTrip(t *testing.T) {
	for _, in := range All() {
		if got := Parse(string(in)); got != in {
			t.Errorf("Parse(%q) = %v, want itself", in, got)
		}
		if !Valid(string(in)) {
			t.Errorf("Valid(%q) = false", in)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{0.0, ConfidenceLow},
		{0.54, ConfidenceLow},
		{0.55, ConfidenceMedium},
		{0.79, ConfidenceMedium},
		{0.8, ConfidenceHigh},
		{0.91, ConfidenceHigh},
		{0.92, ConfidenceVeryHigh},
		{1.0, ConfidenceVeryHigh},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.confidence); got != tt.want {
			t.Errorf("LevelFor(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0}, {0, 0}, {0.7, 0.7}, {1, 1}, {3.2, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveAgent(t *testing.T) {
	tests := []struct {
		name      string
		suggested string
		in        Intent
		want      string
	}{
		{"valid agent accepted", AgentDatab, Greeting, AgentDatab},
		{"invalid substituted with default", "rogue_agent", DBOperation, AgentDatab},
		{"empty substituted with default", "", GoogleGmail, AgentGoogle},
		{"unknown intent falls back", "rogue_agent", Unknown, AgentGus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAgent(tt.suggested, tt.in); got != tt.want {
				t.Errorf("ResolveAgent(%q, %v) = %q, want %q", tt.suggested, tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultAgentCoversEveryIntent(t *testing.T) {
	for _, in := range All() {
		agent := DefaultAgentFor(in)
		if !ValidAgent(agent) {
			t.Errorf("DefaultAgentFor(%v) = %q, not in the allow-list", in, agent)
		}
	}
}

func TestNewResult(t *testing.T) {
	res := NewResult(DBOperation, 1.7, "bogus")
	if res.Confidence != 1.0 {
		t.Errorf("confidence not clamped: %v", res.Confidence)
	}
	if res.ConfidenceLevel != ConfidenceVeryHigh {
		t.Errorf("confidence level = %v, want VERY_HIGH", res.ConfidenceLevel)
	}
	if res.TargetAgent != AgentDatab {
		t.Errorf("target agent = %q, want %q", res.TargetAgent, AgentDatab)
	}
	if res.ContextResolved {
		t.Error("fresh result should not be context resolved")
	}

	res.SetEntity("branch_hint", "12")
	if !res.ContextResolved {
		t.Error("SetEntity should flip ContextResolved")
	}
	if res.Entities["branch_hint"] != "12" {
		t.Errorf("entity lost: %v", res.Entities)
	}
}
