// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package intent defines the closed routing domain: the set of intents a
// query can classify to, the set of agent identifiers a decision may
// target, the intent-to-default-agent mapping, and the classifier's
// result type. Everything here is a process-wide immutable constant;
// unknown strings resolve through explicit lookup tables, never
// reflection.
package intent

import "strings"

// Intent is the closed-set classification of what a query asks for.
type Intent string

const (
	Unknown        Intent = "UNKNOWN"
	Greeting       Intent = "GREETING"
	SmallTalk      Intent = "SMALL_TALK"
	Summary        Intent = "SUMMARY"
	SummaryRequest Intent = "SUMMARY_REQUEST"
	Branch         Intent = "BRANCH"
	BranchQuery    Intent = "BRANCH_QUERY"
	Anomaly        Intent = "ANOMALY"
	AnomalyQuery   Intent = "ANOMALY_QUERY"
	DBOperation    Intent = "DB_OPERATION"
	FileOperation  Intent = "FILE_OPERATION"
	NewsMonitoring Intent = "NEWS_MONITORING"
	GoogleWork     Intent = "GOOGLE_WORKSPACE"
	GoogleGmail    Intent = "GOOGLE_GMAIL"
	GoogleDrive    Intent = "GOOGLE_DRIVE"
	GoogleCalendar Intent = "GOOGLE_CALENDAR"
)

// intentLookup maps the canonical uppercase spelling of every valid
// intent to its value. Parse consults only this table.
var intentLookup = map[string]Intent{
	string(Unknown):        Unknown,
	string(Greeting):       Greeting,
	string(SmallTalk):      SmallTalk,
	string(Summary):        Summary,
	string(SummaryRequest): SummaryRequest,
	string(Branch):         Branch,
	string(BranchQuery):    BranchQuery,
	string(Anomaly):        Anomaly,
	string(AnomalyQuery):   AnomalyQuery,
	string(DBOperation):    DBOperation,
	string(FileOperation):  FileOperation,
	string(NewsMonitoring): NewsMonitoring,
	string(GoogleWork):     GoogleWork,
	string(GoogleGmail):    GoogleGmail,
	string(GoogleDrive):    GoogleDrive,
	string(GoogleCalendar): GoogleCalendar,
}

// All returns every valid intent in a stable order, for prompt payloads.
func All() []Intent {
	return []Intent{
		Unknown, Greeting, SmallTalk,
		Summary, SummaryRequest,
		Branch, BranchQuery, Anomaly, AnomalyQuery, DBOperation,
		FileOperation, NewsMonitoring,
		GoogleWork, GoogleGmail, GoogleDrive, GoogleCalendar,
	}
}

// Parse resolves a string to an Intent, case-insensitively. Anything
// outside the closed set resolves to Unknown.
func Parse(s string) Intent {
	if in, ok := intentLookup[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return in
	}
	return Unknown
}

// Valid reports whether s spells a known intent.
func Valid(s string) bool {
	_, ok := intentLookup[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// =============================================================================
// Confidence Tiers
// =============================================================================

// ConfidenceLevel buckets a raw confidence score.
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceMedium   ConfidenceLevel = "MEDIUM"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// LevelFor maps a clamped confidence score to its tier.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence < 0.55:
		return ConfidenceLow
	case confidence < 0.8:
		return ConfidenceMedium
	case confidence < 0.92:
		return ConfidenceHigh
	default:
		return ConfidenceVeryHigh
	}
}

// Clamp forces a confidence score into [0, 1].
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
