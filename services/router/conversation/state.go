// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package conversation holds per-session short-term memory for the
// router: recently accessed files, the last branch mentioned, and a
// bounded operation log. State is TTL-bounded and lives only in memory;
// a process restart loses it.
package conversation

import (
	"slices"
	"time"
)

const (
	maxRecentFiles      = 5
	maxRecentOperations = 10
)

// OperationRecord is one entry of a session's bounded operation log.
type OperationRecord struct {
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// State is a read-only snapshot of one session's conversation state.
// Slices are copies; mutating them does not affect the store.
type State struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`

	LastFileAccessed    string            `json:"last_file_accessed,omitempty"`
	RecentFiles         []string          `json:"recent_files,omitempty"`
	LastBranchMentioned string            `json:"last_branch_mentioned,omitempty"`
	RecentOperations    []OperationRecord `json:"recent_operations,omitempty"`

	CurrentAnalysisType string `json:"current_analysis_type,omitempty"`
	PreferredFileFormat string `json:"preferred_file_format,omitempty"`
}

// sessionState is the mutable backing record. All access goes through
// the store's lock.
type sessionState struct {
	sessionID    string
	userID       string
	createdAt    time.Time
	lastActivity time.Time

	lastFileAccessed    string
	recentFiles         []string
	lastBranchMentioned string
	recentOperations    []OperationRecord

	currentAnalysisType string
	preferredFileFormat string
}

func newSessionState(sessionID, userID string, now time.Time) *sessionState {
	return &sessionState{
		sessionID:    sessionID,
		userID:       userID,
		createdAt:    now,
		lastActivity: now,
	}
}

func (s *sessionState) touch(now time.Time) {
	s.lastActivity = now
}

func (s *sessionState) isExpired(ttl time.Duration, now time.Time) bool {
	return now.After(s.lastActivity.Add(ttl))
}

// trackFile records a file access: sets the last-accessed file, keeps
// the recent-files list distinct with FIFO eviction at the cap, and
// appends to the operation log.
func (s *sessionState) trackFile(filename, operation, details string, now time.Time) {
	s.lastFileAccessed = filename
	s.recentFiles = slices.DeleteFunc(s.recentFiles, func(f string) bool { return f == filename })
	s.recentFiles = append(s.recentFiles, filename)
	if len(s.recentFiles) > maxRecentFiles {
		s.recentFiles = s.recentFiles[len(s.recentFiles)-maxRecentFiles:]
	}
	s.addOperation(operation, details, now)
	s.touch(now)
}

func (s *sessionState) trackBranch(branch string, now time.Time) {
	s.lastBranchMentioned = branch
	s.addOperation("branch_reference", branch, now)
	s.touch(now)
}

func (s *sessionState) addOperation(operation, details string, now time.Time) {
	s.recentOperations = append(s.recentOperations, OperationRecord{
		Operation: operation,
		Timestamp: now,
		Details:   details,
	})
	if len(s.recentOperations) > maxRecentOperations {
		s.recentOperations = s.recentOperations[len(s.recentOperations)-maxRecentOperations:]
	}
}

// snapshot copies the record into a caller-owned State.
func (s *sessionState) snapshot() State {
	return State{
		SessionID:           s.sessionID,
		UserID:              s.userID,
		CreatedAt:           s.createdAt,
		LastActivity:        s.lastActivity,
		LastFileAccessed:    s.lastFileAccessed,
		RecentFiles:         slices.Clone(s.recentFiles),
		LastBranchMentioned: s.lastBranchMentioned,
		RecentOperations:    slices.Clone(s.recentOperations),
		CurrentAnalysisType: s.currentAnalysisType,
		PreferredFileFormat: s.preferredFileFormat,
	}
}
