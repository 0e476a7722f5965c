// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultMaxTokens      = 1024
	defaultRequestsPerSec = 5
	maxResponseBodySize   = 1 << 20 // 1 MiB
)

// ClientConfig configures the OpenAI-compatible HTTP client. Any
// endpoint speaking the /chat/completions dialect works.
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Provider string

	// Timeout bounds one request end to end. Zero uses the default.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero uses the default.
	RequestsPerSecond float64

	// MaxTokens caps the completion length. Zero uses the default.
	MaxTokens int
}

// Client is an OpenAI-compatible Reasoner over HTTP.
//
// # Thread Safety
//
// Safe for concurrent use.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient validates the config and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reasoner.NewClient: missing base URL")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("reasoner.NewClient: missing model")
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai_compatible"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSec
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Reason sends one chat completion call. It never returns a Go error;
// all failures land in Result.Error so the caller's fallback path stays
// uniform.
func (c *Client) Reason(ctx context.Context, req Request) Result {
	tracer := otel.Tracer("capi-router/reasoner")
	ctx, span := tracer.Start(ctx, "reasoner.Reason")
	defer span.End()
	span.SetAttributes(
		attribute.String("reasoner.provider", c.cfg.Provider),
		attribute.String("reasoner.model", c.cfg.Model),
	)

	fail := func(format string, args ...any) Result {
		msg := fmt.Sprintf(format, args...)
		span.RecordError(fmt.Errorf("%s", msg))
		span.SetStatus(codes.Error, msg)
		slog.Warn("reasoner call failed",
			slog.String("provider", c.cfg.Provider),
			slog.String("error", msg),
		)
		return Result{Success: false, Error: msg, Provider: c.cfg.Provider, Model: c.cfg.Model}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail("rate limit wait: %v", err)
	}

	body, err := json.Marshal(c.buildPayload(req))
	if err != nil {
		return fail("encoding request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fail("building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	requestID := req.TraceID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fail("transport: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fail("reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fail("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fail("decoding response: %v", err)
	}
	if parsed.Error != nil {
		return fail("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return fail("empty choices")
	}

	slog.Debug("reasoner call ok",
		slog.String("provider", c.cfg.Provider),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)),
	)
	return Result{
		Success:  true,
		Response: parsed.Choices[0].Message.Content,
		Provider: c.cfg.Provider,
		Model:    c.cfg.Model,
	}
}

func (c *Client) buildPayload(req Request) chatRequest {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Query},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: 0,
	}
	if req.JSONResponse {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return payload
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
