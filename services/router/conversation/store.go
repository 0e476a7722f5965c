// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/CapiAI/capi-router/services/router/config"
)

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// DefaultSweepInterval is how often the expiry sweep runs.
	DefaultSweepInterval = 5 * time.Minute
)

// Options tunes a Store. Zero values take the defaults.
type Options struct {
	TTL           time.Duration
	SweepInterval time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Stats is the store's aggregate view for diagnostics.
type Stats struct {
	ActiveContexts    int           `json:"active_contexts"`
	TotalFilesTracked int           `json:"total_files_tracked"`
	TotalOperations   int           `json:"total_operations"`
	TTL               time.Duration `json:"ttl"`
}

// Store is the TTL-bounded session map. It is the only shared mutable
// state in the router; one mutex serializes all access.
//
// # Thread Safety
//
// Safe for concurrent use. The expiry sweep runs on its own goroutine
// and takes the same lock only for the duration of one pass.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	vaguePhrases      []string
	explicitFileWords []string

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore builds a Store and starts its background expiry sweep.
// Callers own the Store's lifecycle and must Close it on shutdown.
func NewStore(rules config.ContextRules, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		sessions:          make(map[string]*sessionState),
		ttl:               opts.TTL,
		sweepInterval:     opts.SweepInterval,
		now:               opts.Clock,
		vaguePhrases:      lowerAll(rules.VagueReferencePhrases),
		explicitFileWords: lowerAll(rules.ExplicitFileWords),
		done:              make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the expiry sweep. Idempotent.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// GetOrCreate returns the session's state snapshot, creating a fresh
// state when none exists or the existing one expired. Always refreshes
// last_activity.
func (s *Store) GetOrCreate(sessionID, userID string) State {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok || st.isExpired(s.ttl, now) {
		st = newSessionState(sessionID, userID, now)
		s.sessions[sessionID] = st
		contextsCreated.Inc()
	}
	st.touch(now)
	return st.snapshot()
}

// TrackFileAccess records a file operation against the session, creating
// the session if needed.
func (s *Store) TrackFileAccess(sessionID, filename, operation, details string) {
	if filename == "" {
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID, now).trackFile(filename, operation, details, now)
}

// TrackBranchReference records the last branch the session mentioned.
func (s *Store) TrackBranchReference(sessionID, branch string) {
	if branch == "" {
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID, now).trackBranch(branch, now)
}

// SetPreferences updates the optional analysis-type and file-format
// preference fields. Empty arguments leave the current value.
func (s *Store) SetPreferences(sessionID, analysisType, fileFormat string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getOrCreateLocked(sessionID, now)
	if analysisType != "" {
		st.currentAnalysisType = analysisType
	}
	if fileFormat != "" {
		st.preferredFileFormat = fileFormat
	}
	st.touch(now)
}

// ResolveFileReference returns the session's last accessed file when the
// query is a vague content reference ("que contiene", "dentro", ...)
// that names no file explicitly. This is a narrow heuristic, not
// coreference resolution.
func (s *Store) ResolveFileReference(sessionID, query string) (string, bool) {
	lowered := strings.ToLower(query)

	vague := false
	for _, phrase := range s.vaguePhrases {
		if strings.Contains(lowered, phrase) {
			vague = true
			break
		}
	}
	if !vague {
		return "", false
	}
	for _, word := range s.explicitFileWords {
		if strings.Contains(lowered, word) {
			return "", false
		}
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok || st.isExpired(s.ttl, now) || st.lastFileAccessed == "" {
		return "", false
	}
	st.touch(now)
	return st.lastFileAccessed, true
}

// ClearContext removes a session outright. Returns whether it existed.
func (s *Store) ClearContext(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	return ok
}

// GetStats aggregates the store's current contents.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{ActiveContexts: len(s.sessions), TTL: s.ttl}
	for _, st := range s.sessions {
		stats.TotalFilesTracked += len(st.recentFiles)
		stats.TotalOperations += len(st.recentOperations)
	}
	return stats
}

// getOrCreateLocked is GetOrCreate's body for callers already holding
// the lock.
func (s *Store) getOrCreateLocked(sessionID string, now time.Time) *sessionState {
	st, ok := s.sessions[sessionID]
	if !ok || st.isExpired(s.ttl, now) {
		st = newSessionState(sessionID, "", now)
		s.sessions[sessionID] = st
		contextsCreated.Inc()
	}
	return st
}

// =============================================================================
// Expiry Sweep
// =============================================================================

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes every expired session. Called periodically by the
// background loop; exported so tests and diagnostics can force a pass.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, st := range s.sessions {
		if st.isExpired(s.ttl, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	sweepsRun.Inc()
	contextsExpired.Add(float64(removed))
	activeContexts.Set(float64(active))

	if removed > 0 {
		slog.Debug("conversation sweep",
			slog.Int("removed", removed),
			slog.Int("active", active),
		)
	}
	return removed
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
