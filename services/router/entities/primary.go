// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package entities

import "strings"

// Combined action emitted when both a write and a read action appear.
const ActionReadWrite = "READ_WRITE"

// actionPriority orders actions from most to least specific. Lower index
// wins primary selection.
var actionPriority = []string{
	"WRITE_FILE",
	"MODIFY_FILE",
	"READ_CONTENT",
	"READ_FILE",
	"LIST_FILES",
	"ANALYZE",
	"SUMMARIZE",
}

// formatPriority orders file formats for primary selection.
var formatPriority = []string{"excel", "csv", "word", "pdf", "text"}

// ExtractPrimary reduces a full extraction to one best value per family.
func (x *Extractor) ExtractPrimary(query string) Primary {
	all := x.ExtractAll(query)

	p := Primary{
		Branch:        highestConfidenceValue(all.Branches),
		TimeReference: highestConfidenceValue(all.TimeReferences),
		Action:        selectPrimaryAction(all.Actions),
		FileFormat:    selectByPriority(all.FileFormats, formatPriority),
	}
	p.Filename = x.selectPrimaryFilename(all.Filenames, p.Action, p.FileFormat)
	return p
}

func highestConfidenceValue(found []Entity) string {
	best := ""
	bestConf := -1.0
	for _, e := range found {
		if e.Confidence > bestConf {
			best, bestConf = e.Value, e.Confidence
		}
	}
	return best
}

func selectByPriority(found []Entity, priority []string) string {
	present := make(map[string]struct{}, len(found))
	for _, e := range found {
		present[e.Value] = struct{}{}
	}
	for _, v := range priority {
		if _, ok := present[v]; ok {
			return v
		}
	}
	return highestConfidenceValue(found)
}

// selectPrimaryAction picks the highest-priority detected action. When a
// write action co-occurs with a read or read-content action the combined
// READ_WRITE is returned instead.
func selectPrimaryAction(found []Entity) string {
	if len(found) == 0 {
		return ""
	}
	present := make(map[string]struct{}, len(found))
	for _, e := range found {
		present[e.Value] = struct{}{}
	}

	_, hasWrite := present["WRITE_FILE"]
	_, hasRead := present["READ_FILE"]
	_, hasReadContent := present["READ_CONTENT"]
	if hasWrite && (hasRead || hasReadContent) {
		return ActionReadWrite
	}

	return selectByPriority(found, actionPriority)
}

// selectPrimaryFilename picks the best filename candidate, skipping
// generic placeholders and very short tokens. For write targets and
// text-format queries, generic summary-note names lose to any more
// specific candidate.
func (x *Extractor) selectPrimaryFilename(found []Entity, primaryAction, primaryFormat string) string {
	var candidates []Entity
	for _, e := range found {
		if len([]rune(e.Value)) <= 2 {
			continue
		}
		if _, generic := x.placeholders[e.Value]; generic {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return ""
	}

	skipSummaryNames := (primaryAction == "WRITE_FILE" || primaryAction == ActionReadWrite || primaryFormat == "text") &&
		len(candidates) > 1
	if skipSummaryNames {
		if specific := highestConfidenceValue(withoutSummaryNames(candidates, x.summaryWords)); specific != "" {
			return specific
		}
	}
	return highestConfidenceValue(candidates)
}

func withoutSummaryNames(candidates []Entity, summaryWords []string) []Entity {
	var out []Entity
	for _, e := range candidates {
		if !containsAny(e.Value, summaryWords) {
			out = append(out, e)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
