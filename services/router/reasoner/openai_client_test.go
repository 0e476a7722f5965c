// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reasoner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		Model:             "test-model",
		Provider:          "test",
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{Model: "m"}); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "http://x"}); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestReasonSuccess(t *testing.T) {
	var gotPayload chatRequest
	var gotAuth, gotRequestID string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"intent":"GREETING"}`}},
			},
		})
	})

	res := c.Reason(context.Background(), Request{
		Query:        "hola",
		SystemPrompt: "classify",
		JSONResponse: true,
		TraceID:      "trace-1",
	})

	if !res.Success {
		t.Fatalf("Reason failed: %s", res.Error)
	}
	if res.Response != `{"intent":"GREETING"}` {
		t.Errorf("response = %q", res.Response)
	}
	if res.Provider != "test" || res.Model != "test-model" {
		t.Errorf("provider/model = %q/%q", res.Provider, res.Model)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotRequestID != "trace-1" {
		t.Errorf("request id = %q, want propagated trace id", gotRequestID)
	}
	if gotPayload.Model != "test-model" || len(gotPayload.Messages) != 2 {
		t.Errorf("payload = %+v", gotPayload)
	}
	if gotPayload.ResponseFormat == nil || gotPayload.ResponseFormat.Type != "json_object" {
		t.Errorf("response format not requested: %+v", gotPayload.ResponseFormat)
	}
	if gotPayload.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotPayload.Temperature)
	}
}

func TestReasonGeneratesRequestID(t *testing.T) {
	var gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	})

	if res := c.Reason(context.Background(), Request{Query: "q"}); !res.Success {
		t.Fatalf("Reason failed: %s", res.Error)
	}
	if gotRequestID == "" {
		t.Error("expected a generated request id when no trace id is given")
	}
}

func TestReasonFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "provider error body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "quota exceeded"},
				})
			},
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			res := c.Reason(context.Background(), Request{Query: "q"})
			if res.Success {
				t.Error("expected failure result")
			}
			if res.Error == "" {
				t.Error("failure result must carry an error message")
			}
			if res.Provider != "test" {
				t.Errorf("provider = %q, failures must still identify the provider", res.Provider)
			}
		})
	}
}

func TestReasonContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := c.Reason(ctx, Request{Query: "q"}); res.Success {
		t.Error("cancelled context must fail")
	}
}
