// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package classifier orchestrates intent classification: it enriches the
// query with extracted entities and conversation context, asks the LLM
// reasoner for a structured decision, validates that decision against
// the closed intent and agent sets, and degrades to a deterministic
// token cascade whenever the reasoner path is unavailable or invalid.
//
// The whole path is synchronous: one call, one context.Context, one
// result. Callers that need asynchrony wrap the call in their own
// goroutine; this package never spawns work the caller has to await.
package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/CapiAI/capi-router/services/router/cache"
	"github.com/CapiAI/capi-router/services/router/config"
	"github.com/CapiAI/capi-router/services/router/conversation"
	"github.com/CapiAI/capi-router/services/router/entities"
	"github.com/CapiAI/capi-router/services/router/intent"
	"github.com/CapiAI/capi-router/services/router/reasoner"
)

const defaultReasonerTimeout = 15 * time.Second

// Options tunes a Classifier.
type Options struct {
	// StrictMode disables the fallback cascade: a failed reasoner path
	// returns an error instead of a degraded result.
	StrictMode bool

	// ReasonerTimeout bounds one reasoner call. Zero uses the default.
	ReasonerTimeout time.Duration
}

// Deps are the classifier's collaborators. Reasoner, Store, and Cache
// are optional; a nil Reasoner routes everything through the cascade,
// a nil Store disables context tracking, a nil Cache always misses.
type Deps struct {
	Reasoner  reasoner.Reasoner
	Store     *conversation.Store
	Extractor *entities.Extractor
	Cache     *cache.DecisionCache
	Rules     *config.RouterRules
}

// Classifier is the routing decision point.
//
// # Thread Safety
//
// Safe for concurrent use; the only shared mutable state lives behind
// the conversation store's lock and the cache's transactions.
type Classifier struct {
	reasoner  reasoner.Reasoner
	store     *conversation.Store
	extractor *entities.Extractor
	cache     *cache.DecisionCache
	fallback  *fallbackCascade
	opts      Options
}

// New wires a Classifier. Rules and Extractor are required.
func New(deps Deps, opts Options) (*Classifier, error) {
	if deps.Rules == nil {
		return nil, newRouterError(ErrCodeStrictMode, "missing router rules", nil)
	}
	if deps.Extractor == nil {
		return nil, newRouterError(ErrCodeStrictMode, "missing entity extractor", nil)
	}
	cascade, err := newFallbackCascade(deps.Rules.Fallback)
	if err != nil {
		return nil, err
	}
	if opts.ReasonerTimeout <= 0 {
		opts.ReasonerTimeout = defaultReasonerTimeout
	}
	return &Classifier{
		reasoner:  deps.Reasoner,
		store:     deps.Store,
		extractor: deps.Extractor,
		cache:     deps.Cache,
		fallback:  cascade,
		opts:      opts,
	}, nil
}

// ClassifyIntent produces a routing decision for one query.
//
// # Description
//
// The flow is: empty-query short circuit, entity and context
// enrichment, decision cache lookup, reasoner attempt with validation,
// then the deterministic cascade. Reasoner and malformed-response
// failures never reach the caller unless StrictMode is set.
//
// # Inputs
//
//	ctx - Cancels the reasoner call; the cascade ignores it.
//	query - The user text.
//	reqCtx - Optional request context. Recognized keys: session_id or
//	    thread_id (context tracking), user_id, trace_id (reasoner
//	    correlation).
//
// # Outputs
//
//	*intent.Result - The decision. Never nil when error is nil.
//	error - Only a strict-mode *RouterError.
func (c *Classifier) ClassifyIntent(ctx context.Context, query string, reqCtx map[string]any) (*intent.Result, error) {
	start := time.Now()
	defer func() { classificationDuration.Observe(time.Since(start).Seconds()) }()

	tracer := otel.Tracer("capi-router/classifier")
	ctx, span := tracer.Start(ctx, "classifier.ClassifyIntent")
	defer span.End()
	span.SetAttributes(attribute.Int("query.length", len(query)))

	if strings.TrimSpace(query) == "" {
		res := c.fallback.unknown("empty_query")
		c.recordOutcome(span, res, "fallback")
		return res, nil
	}

	sessionID := stringFromContext(reqCtx, "session_id", "thread_id")
	userID := stringFromContext(reqCtx, "user_id")
	traceID := stringFromContext(reqCtx, "trace_id")

	primary, resolvedFile := c.enrich(sessionID, userID, query)

	cacheKey := sessionID + "\x00" + resolvedFile
	if cached, ok := c.cache.Get(query, cacheKey); ok {
		c.recordOutcome(span, cached, "cache")
		return cached, nil
	}

	if c.reasoner != nil {
		res, err := c.classifyWithReasoner(ctx, query, traceID, sessionID, primary, resolvedFile)
		if err == nil {
			c.cache.Set(query, cacheKey, res)
			c.recordOutcome(span, res, "reasoner")
			return res, nil
		}
		reasonerFailures.Inc()
		slog.Warn("reasoner path failed, degrading",
			slog.String("query_preview", truncateForLog(query, 80)),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		if c.opts.StrictMode {
			span.SetStatus(codes.Error, "strict mode: no fallback")
			return nil, newRouterError(ErrCodeStrictMode, "classification failed with fallback disabled", err)
		}
	} else if c.opts.StrictMode {
		return nil, newRouterError(ErrCodeStrictMode, "no reasoner configured with fallback disabled", nil)
	}

	res := c.fallback.classify(query)
	c.applyEnrichment(res, primary, resolvedFile)
	c.recordOutcome(span, res, "fallback")
	return res, nil
}

// enrich extracts primary entities and resolves vague file references
// against the session, tracking what it finds.
func (c *Classifier) enrich(sessionID, userID, query string) (entities.Primary, string) {
	primary := c.extractor.ExtractPrimary(query)

	var resolvedFile string
	if c.store != nil && sessionID != "" {
		c.store.GetOrCreate(sessionID, userID)
		if file, ok := c.store.ResolveFileReference(sessionID, query); ok {
			resolvedFile = file
		}
		if primary.Filename != "" {
			op := primary.Action
			if op == "" {
				op = "mention"
			}
			c.store.TrackFileAccess(sessionID, primary.Filename, op, query)
		}
		if primary.Branch != "" {
			c.store.TrackBranchReference(sessionID, primary.Branch)
		}
		if primary.FileFormat != "" {
			c.store.SetPreferences(sessionID, "", primary.FileFormat)
		}
	}
	return primary, resolvedFile
}

// classifyWithReasoner runs the LLM path end to end: payload, call,
// strict-JSON parse, allow-list validation, context forwarding.
func (c *Classifier) classifyWithReasoner(ctx context.Context, query, traceID, sessionID string, primary entities.Primary, resolvedFile string) (*intent.Result, error) {
	reqContext := map[string]any{}
	if primary.Filename != "" {
		reqContext["filename"] = primary.Filename
	}
	if primary.Branch != "" {
		reqContext["branch_hint"] = primary.Branch
	}
	if primary.TimeReference != "" {
		reqContext["time_reference"] = primary.TimeReference
	}
	if resolvedFile != "" {
		reqContext["resolved_file"] = resolvedFile
	}
	if c.store != nil && sessionID != "" {
		state := c.store.GetOrCreate(sessionID, "")
		if len(state.RecentFiles) > 0 {
			reqContext["recent_files"] = state.RecentFiles
		}
		if state.LastBranchMentioned != "" {
			reqContext["last_branch"] = state.LastBranchMentioned
		}
	}

	payload, err := buildReasonerPayload(query, reqContext)
	if err != nil {
		return nil, newRouterError(ErrCodeMalformed, "building payload", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.ReasonerTimeout)
	defer cancel()
	answer := c.reasoner.Reason(callCtx, reasoner.Request{
		Query:        payload,
		SystemPrompt: classifierSystemPrompt,
		JSONResponse: true,
		TraceID:      traceID,
	})
	if !answer.Success {
		return nil, newRouterError(ErrCodeReasoner, answer.Error, nil)
	}

	var decision reasonerDecision
	if err := json.Unmarshal([]byte(answer.Response), &decision); err != nil {
		return nil, newRouterError(ErrCodeMalformed, "parsing reasoner JSON", err)
	}

	res := intent.NewResult(intent.Parse(decision.Intent), decision.confidenceValue(), decision.TargetAgent)
	res.RequiresClarification = decision.RequiresClarification || res.Intent == intent.Unknown
	res.Reasoning = decision.Reasoning
	res.Provider = answer.Provider
	res.Model = answer.Model

	for key, value := range decision.Entities {
		res.SetEntity(key, value)
	}
	if branch := stringEntity(decision.Entities, "branch_hint", "branch"); branch != "" && c.store != nil && sessionID != "" {
		c.store.TrackBranchReference(sessionID, branch)
	}
	c.applyEnrichment(res, primary, resolvedFile)
	return res, nil
}

// applyEnrichment folds locally extracted entities into a result without
// overwriting what the producing path already set.
func (c *Classifier) applyEnrichment(res *intent.Result, primary entities.Primary, resolvedFile string) {
	setIfAbsent := func(key, value string) {
		if value == "" {
			return
		}
		if _, exists := res.Entities[key]; !exists {
			res.SetEntity(key, value)
		}
	}
	setIfAbsent("filename", primary.Filename)
	setIfAbsent("branch_hint", primary.Branch)
	setIfAbsent("time_reference", primary.TimeReference)
	setIfAbsent("action", primary.Action)
	setIfAbsent("file_format", primary.FileFormat)
	setIfAbsent("resolved_file", resolvedFile)
}

func (c *Classifier) recordOutcome(span trace.Span, res *intent.Result, path string) {
	classificationsTotal.WithLabelValues(path, string(res.Intent)).Inc()
	span.SetAttributes(
		attribute.String("intent", string(res.Intent)),
		attribute.String("target_agent", res.TargetAgent),
		attribute.Float64("confidence", res.Confidence),
		attribute.String("path", path),
	)
	slog.Info("query classified",
		slog.String("intent", string(res.Intent)),
		slog.String("agent", res.TargetAgent),
		slog.Float64("confidence", res.Confidence),
		slog.String("path", path),
	)
}

func stringFromContext(reqCtx map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := reqCtx[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func stringEntity(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func truncateForLog(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
