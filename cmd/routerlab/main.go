// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// routerlab exercises the query router from the command line.
//
// It classifies a query through the full pipeline (entity extraction,
// conversation context, optional LLM reasoner, fallback cascade) and
// prints the decision as JSON. With --explain it instead prints the
// similarity breakdown between the query and a reference string.
//
// Usage:
//
//	routerlab [flags] "consulta del usuario"
//	routerlab --explain "abrir documento excel" "leer archivo excel"
//
// Flags:
//
//	--session     session id for conversation context (default: ad hoc)
//	--explain     treat args as (reference, query) and print similarity scores
//	--reasoner    base URL of an OpenAI-compatible endpoint; empty disables
//	              the LLM path and everything routes through the cascade
//	--model       reasoner model name (default env CAPI_REASONER_MODEL)
//	--cache       BadgerDB decision cache directory; empty disables caching
//	--strict      fail instead of degrading when the reasoner path fails
//	--verbose     debug-level logging
//
// The reasoner API key is read from CAPI_REASONER_API_KEY.
//
// Exit codes:
//
//	0 — decision produced
//	1 — setup or strict-mode classification error
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/CapiAI/capi-router/services/router/cache"
	"github.com/CapiAI/capi-router/services/router/classifier"
	"github.com/CapiAI/capi-router/services/router/config"
	"github.com/CapiAI/capi-router/services/router/conversation"
	"github.com/CapiAI/capi-router/services/router/entities"
	"github.com/CapiAI/capi-router/services/router/reasoner"
	"github.com/CapiAI/capi-router/services/router/similarity"
)

func main() {
	sessionFlag := flag.String("session", "", "Session id for conversation context")
	explainFlag := flag.Bool("explain", false, "Print similarity breakdown for (reference, query)")
	reasonerFlag := flag.String("reasoner", os.Getenv("CAPI_REASONER_URL"), "OpenAI-compatible base URL; empty disables the LLM path")
	modelFlag := flag.String("model", os.Getenv("CAPI_REASONER_MODEL"), "Reasoner model name")
	cacheFlag := flag.String("cache", "", "Decision cache directory; empty disables caching")
	strictFlag := flag.Bool("strict", false, "Fail instead of degrading when the reasoner path fails")
	verboseFlag := flag.Bool("verbose", false, "Debug-level logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *explainFlag {
		runExplain(flag.Args())
		return
	}

	if flag.NArg() != 1 {
		fatalf("expected exactly one query argument, got %d", flag.NArg())
	}
	query := flag.Arg(0)

	rules, err := config.DefaultRouterRules()
	if err != nil {
		fatalf("loading router rules: %v", err)
	}
	entityRules, err := config.DefaultEntityRules()
	if err != nil {
		fatalf("loading entity rules: %v", err)
	}
	extractor, err := entities.New(entityRules)
	if err != nil {
		fatalf("building extractor: %v", err)
	}

	store := conversation.NewStore(rules.Context, conversation.Options{})
	defer store.Close()

	var decisionCache *cache.DecisionCache
	if *cacheFlag != "" {
		decisionCache, err = cache.Open(*cacheFlag, 0)
		if err != nil {
			fatalf("opening decision cache: %v", err)
		}
		defer func() { _ = decisionCache.Close() }()
	}

	var llm reasoner.Reasoner
	if *reasonerFlag != "" {
		client, err := reasoner.NewClient(reasoner.ClientConfig{
			BaseURL: *reasonerFlag,
			APIKey:  os.Getenv("CAPI_REASONER_API_KEY"),
			Model:   *modelFlag,
		})
		if err != nil {
			fatalf("building reasoner client: %v", err)
		}
		llm = client
	}

	router, err := classifier.New(classifier.Deps{
		Reasoner:  llm,
		Store:     store,
		Extractor: extractor,
		Cache:     decisionCache,
		Rules:     rules,
	}, classifier.Options{StrictMode: *strictFlag})
	if err != nil {
		fatalf("building classifier: %v", err)
	}

	reqCtx := map[string]any{}
	if *sessionFlag != "" {
		reqCtx["session_id"] = *sessionFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := router.ClassifyIntent(ctx, query, reqCtx)
	if err != nil {
		fatalf("classification: %v", err)
	}
	printJSON(result)
}

// runExplain prints the full similarity breakdown for a pair of texts.
func runExplain(args []string) {
	if len(args) != 2 {
		fatalf("--explain expects exactly two arguments: reference and query")
	}
	lex, err := config.DefaultLexicon()
	if err != nil {
		fatalf("loading lexicon: %v", err)
	}
	engine, err := similarity.NewEngine(lex, 0)
	if err != nil {
		fatalf("building similarity engine: %v", err)
	}
	printJSON(engine.Explain(args[1], args[0]))
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encoding output: %v", err)
	}
	fmt.Println(string(out))
}

// fatalf prints to stderr and exits 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "routerlab: "+format+"\n", args...)
	os.Exit(1)
}
