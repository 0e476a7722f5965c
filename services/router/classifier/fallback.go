// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CapiAI/capi-router/services/router/config"
	"github.com/CapiAI/capi-router/services/router/intent"
)

// fallbackProvider marks results produced without the reasoner.
const fallbackProvider = "fallback"

// branchHintPattern pulls a numeric branch out of a query on the DB
// fallback branch so downstream agents get the hint without a second
// extraction pass.
var branchHintPattern = regexp.MustCompile(`(?i)sucursa(?:l|les)\s+(?:n(?:ro|úmero|umero)?\.?\s*)?(\d{1,5})`)

// fallbackCascade is the deterministic classification path. It runs
// plain substring token tests against the lowercased query, in a fixed
// precedence, and emits fixed per-branch confidences. It does no I/O
// and never fails.
type fallbackCascade struct {
	rules   config.FallbackRules
	emailRe *regexp.Regexp
}

func newFallbackCascade(rules config.FallbackRules) (*fallbackCascade, error) {
	emailRe, err := regexp.Compile(rules.EmailPattern)
	if err != nil {
		return nil, fmt.Errorf("newFallbackCascade: email pattern: %w", err)
	}
	return &fallbackCascade{rules: rules, emailRe: emailRe}, nil
}

// classify runs the cascade. Precedence: Google workspace, greeting,
// branch+money co-occurrence, summary, anomaly, then UNKNOWN.
func (f *fallbackCascade) classify(query string) *intent.Result {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return f.unknown("empty_query")
	}

	if containsAnyToken(lowered, f.rules.GoogleTokens) {
		return f.classifyGoogle(lowered)
	}
	if containsAnyToken(lowered, f.rules.GreetingTokens) {
		res := intent.NewResult(intent.Greeting, f.rules.Confidences.Greeting, intent.AgentGus)
		res.Provider = fallbackProvider
		res.Reasoning = "matched greeting tokens"
		return res
	}
	if containsAnyToken(lowered, f.rules.BranchTokens) && containsAnyToken(lowered, f.rules.MoneyTokens) {
		res := intent.NewResult(intent.DBOperation, f.rules.Confidences.DB, intent.AgentDatab)
		res.Provider = fallbackProvider
		res.Reasoning = "matched branch and money tokens"
		if m := branchHintPattern.FindStringSubmatch(lowered); m != nil {
			res.SetEntity("branch_hint", m[1])
		}
		return res
	}
	if containsAnyToken(lowered, f.rules.SummaryTokens) {
		res := intent.NewResult(intent.Summary, f.rules.Confidences.Summary, intent.AgentDesktop)
		res.Provider = fallbackProvider
		res.Reasoning = "matched summary tokens"
		return res
	}
	if containsAnyToken(lowered, f.rules.AnomalyTokens) {
		res := intent.NewResult(intent.Anomaly, f.rules.Confidences.Anomaly, intent.AgentDatab)
		res.Provider = fallbackProvider
		res.Reasoning = "matched anomaly tokens"
		return res
	}

	return f.unknown("no token match")
}

// classifyGoogle sub-routes a workspace query to Gmail, Drive, or
// Calendar and attaches operation hints and any email recipients.
func (f *fallbackCascade) classifyGoogle(lowered string) *intent.Result {
	conf := f.rules.Confidences.Google

	var res *intent.Result
	switch {
	case containsAnyToken(lowered, f.rules.GmailTokens):
		res = intent.NewResult(intent.GoogleGmail, conf, intent.AgentGoogle)
		res.SetEntity("gmail_operation", f.operationHint(lowered))
		if recipients := f.emailRe.FindAllString(lowered, -1); len(recipients) > 0 {
			res.SetEntity("email_recipients", recipients)
		}
	case containsAnyToken(lowered, f.rules.DriveTokens):
		res = intent.NewResult(intent.GoogleDrive, conf, intent.AgentGoogle)
		res.SetEntity("drive_operation", f.operationHint(lowered))
	case containsAnyToken(lowered, f.rules.CalendarTokens):
		res = intent.NewResult(intent.GoogleCalendar, conf, intent.AgentGoogle)
		res.SetEntity("calendar_operation", f.operationHint(lowered))
	default:
		res = intent.NewResult(intent.GoogleWork, conf, intent.AgentGoogle)
	}
	res.Provider = fallbackProvider
	res.Reasoning = "matched google workspace tokens"
	return res
}

// operationHint maps action tokens to a coarse operation: send beats
// push notification setup beats listing.
func (f *fallbackCascade) operationHint(lowered string) string {
	switch {
	case containsAnyToken(lowered, f.rules.SendTokens):
		return "send"
	case containsAnyToken(lowered, f.rules.PushTokens):
		return "enable_push"
	default:
		return "list"
	}
}

func (f *fallbackCascade) unknown(reason string) *intent.Result {
	res := intent.NewResult(intent.Unknown, f.rules.Confidences.Unknown, intent.FallbackAgent)
	res.Provider = fallbackProvider
	res.Reasoning = reason
	res.RequiresClarification = true
	return res
}

func containsAnyToken(lowered string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}
