// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/CapiAI/capi-router/services/router/intent"
)

// classifierSystemPrompt instructs the reasoner to answer with strict
// JSON. Any deviation is treated as a malformed response and handled by
// the cascade.
const classifierSystemPrompt = `You are the intent classifier for a multi-agent assistant that serves Spanish-speaking users.

You receive a JSON object with these fields:
- "query": the user's message.
- "context": session context (recently accessed files, last branch mentioned, resolved references).
- "intents": the complete list of valid intents.
- "agents": the complete list of valid target agents.

Classify the query and answer with EXACTLY one JSON object, no prose, no markdown fences:
{
  "intent": "<one of the provided intents>",
  "target_agent": "<one of the provided agents>",
  "confidence": <number between 0 and 1>,
  "entities": {<extracted entity keys and values, may be empty>},
  "requires_clarification": <true when the query is too ambiguous to route>,
  "reasoning": "<one short sentence>"
}

Entity keys you may emit: filename, branch_hint, time_reference, gmail_operation, email_recipients, drive_operation, calendar_operation.
Never invent intents or agents outside the provided lists.`

// classifierPayload is the user-message body sent to the reasoner.
type classifierPayload struct {
	Query   string          `json:"query"`
	Context map[string]any  `json:"context"`
	Intents []intent.Intent `json:"intents"`
	Agents  []string        `json:"agents"`
}

// buildReasonerPayload serializes the classification request.
func buildReasonerPayload(query string, context map[string]any) (string, error) {
	if context == nil {
		context = map[string]any{}
	}
	payload := classifierPayload{
		Query:   query,
		Context: context,
		Intents: intent.All(),
		Agents:  intent.Agents(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("buildReasonerPayload: %w", err)
	}
	return string(raw), nil
}

// reasonerDecision is the strict JSON shape the reasoner must return.
// Confidence is decoded loosely so a non-numeric value degrades to 0
// instead of failing the whole response.
type reasonerDecision struct {
	Intent                string         `json:"intent"`
	TargetAgent           string         `json:"target_agent"`
	Confidence            any            `json:"confidence"`
	Entities              map[string]any `json:"entities"`
	RequiresClarification bool           `json:"requires_clarification"`
	Reasoning             string         `json:"reasoning"`
}

func (d reasonerDecision) confidenceValue() float64 {
	switch v := d.Confidence.(type) {
	case float64:
		return intent.Clamp(v)
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(v, "%f", &parsed); err == nil {
			return intent.Clamp(parsed)
		}
	}
	return 0
}
