// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reasoner defines the LLM collaborator contract the classifier
// depends on, plus an OpenAI-compatible HTTP implementation. Transport,
// retries, and model selection live here; the classifier only sees the
// Reason contract.
package reasoner

import "context"

// Request is one reasoning call.
type Request struct {
	// Query is the user text to reason about.
	Query string

	// SystemPrompt instructs the model on the expected output.
	SystemPrompt string

	// JSONResponse asks the provider to force a JSON object response.
	JSONResponse bool

	// TraceID correlates the call with the caller's trace if set.
	TraceID string
}

// Result is the collaborator's answer. Success false means the response
// is unusable and Error says why; the caller decides how to degrade.
type Result struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Reasoner is the contract the classifier consumes.
type Reasoner interface {
	Reason(ctx context.Context, req Request) Result
}
