// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lexical

import "strings"

// =============================================================================
// Synonym Groups
// =============================================================================

// SynonymTable indexes fixed groups of interchangeable domain terms
// (file/document words, read/view verbs, branch words, ...). Membership in
// the same group makes two tokens equivalent for semantic similarity.
//
// # Thread Safety
//
// Immutable after construction. Safe for concurrent use.
type SynonymTable struct {
	groups [][]string
	index  map[string]int // token → group id
}

// NewSynonymTable builds a SynonymTable from raw groups.
//
// # Description
//
// Tokens are lowercased. When a token appears in more than one group, the
// first group wins — group order in the rule table is significant.
//
// # Inputs
//
//   - groups: Slices of interchangeable terms. Empty groups are skipped.
//
// # Outputs
//
//   - *SynonymTable: The built table. Never nil.
func NewSynonymTable(groups [][]string) *SynonymTable {
	t := &SynonymTable{
		groups: make([][]string, 0, len(groups)),
		index:  make(map[string]int),
	}

	for _, raw := range groups {
		if len(raw) == 0 {
			continue
		}
		id := len(t.groups)
		group := make([]string, 0, len(raw))
		for _, tok := range raw {
			tok = strings.ToLower(tok)
			group = append(group, tok)
			if _, seen := t.index[tok]; !seen {
				t.index[tok] = id
			}
		}
		t.groups = append(t.groups, group)
	}

	return t
}

// GroupOf returns the group id of a token, if any.
func (t *SynonymTable) GroupOf(token string) (int, bool) {
	id, ok := t.index[strings.ToLower(token)]
	return id, ok
}

// SameGroup reports whether two tokens belong to the same synonym group.
func (t *SynonymTable) SameGroup(a, b string) bool {
	ga, okA := t.GroupOf(a)
	gb, okB := t.GroupOf(b)
	return okA && okB && ga == gb
}

// GroupPresent reports whether any member of the given group appears in the
// token slice.
func (t *SynonymTable) GroupPresent(groupID int, tokens []string) bool {
	if groupID < 0 || groupID >= len(t.groups) {
		return false
	}
	for _, tok := range tokens {
		if id, ok := t.GroupOf(tok); ok && id == groupID {
			return true
		}
	}
	return false
}

// Len returns the number of synonym groups.
func (t *SynonymTable) Len() int {
	return len(t.groups)
}
