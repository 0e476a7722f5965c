// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package entities

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/CapiAI/capi-router/services/router/config"
)

// maxFilenameAdjustedConfidence caps filename confidence after bonuses.
const maxFilenameAdjustedConfidence = 0.99

type compiledRule struct {
	re         *regexp.Regexp
	value      string
	confidence float64
}

// Extractor scans queries against compiled rule tables.
//
// # Thread Safety
//
// Safe for concurrent use. All tables are compiled once at construction.
type Extractor struct {
	filenameRules []compiledRule
	branchRules   []compiledRule
	timeRules     []compiledRule
	actionRules   []compiledRule
	formatRules   []compiledRule

	fillerWords  map[string]struct{}
	commandVerbs map[string]struct{}
	placeholders map[string]struct{}
	summaryWords []string
}

// New compiles an Extractor from a loaded rule set.
func New(rules *config.EntityRules) (*Extractor, error) {
	if rules == nil {
		return nil, fmt.Errorf("entities.New: nil rules")
	}
	x := &Extractor{
		fillerWords:  toWordSet(rules.FilenameCleaning.FillerWords),
		commandVerbs: toWordSet(rules.FilenameCleaning.CommandVerbs),
		placeholders: toWordSet(rules.FilenameCleaning.Placeholders),
		summaryWords: lowerAll(rules.FilenameCleaning.SummaryWords),
	}
	var err error
	if x.filenameRules, err = compileRules(rules.FilenamePatterns); err != nil {
		return nil, fmt.Errorf("entities.New: filename rules: %w", err)
	}
	if x.branchRules, err = compileRules(rules.BranchPatterns); err != nil {
		return nil, fmt.Errorf("entities.New: branch rules: %w", err)
	}
	if x.timeRules, err = compileRules(rules.TimePatterns); err != nil {
		return nil, fmt.Errorf("entities.New: time rules: %w", err)
	}
	if x.actionRules, err = compileRules(rules.ActionPatterns); err != nil {
		return nil, fmt.Errorf("entities.New: action rules: %w", err)
	}
	if x.formatRules, err = compileRules(rules.FormatPatterns); err != nil {
		return nil, fmt.Errorf("entities.New: format rules: %w", err)
	}
	return x, nil
}

func compileRules(rules []config.PatternRule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling %q: %w", r.Pattern, err)
		}
		out = append(out, compiledRule{re: re, value: r.Value, confidence: r.Confidence})
	}
	return out, nil
}

// ExtractAll runs every family against the query and returns the
// deduplicated results. It never fails: any internal panic is logged and
// the whole result degrades to empty.
func (x *Extractor) ExtractAll(query string) Extraction {
	if strings.TrimSpace(query) == "" {
		return Extraction{}
	}

	var (
		out    Extraction
		failed atomic.Bool
		wg     sync.WaitGroup
	)
	run := func(dst *[]Entity, fn func(string) []Entity) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					failed.Store(true)
					slog.Error("entity extraction panic",
						slog.Any("panic", r),
						slog.String("query_preview", truncateForLog(query, 80)),
					)
				}
			}()
			*dst = fn(query)
		}()
	}

	run(&out.Filenames, x.extractFilenames)
	run(&out.Branches, func(q string) []Entity { return x.scanFamily(q, TypeBranch, x.branchRules) })
	run(&out.TimeReferences, func(q string) []Entity { return x.scanFamily(q, TypeTimeReference, x.timeRules) })
	run(&out.Actions, func(q string) []Entity { return x.scanFamily(q, TypeAction, x.actionRules) })
	run(&out.FileFormats, func(q string) []Entity { return x.scanFamily(q, TypeFileFormat, x.formatRules) })
	wg.Wait()

	if failed.Load() {
		return Extraction{}
	}
	return out
}

// scanFamily applies one rule table and deduplicates the hits. Rules with
// a fixed value emit it directly; otherwise the first capture group (or
// the whole match) is normalized to lowercase.
func (x *Extractor) scanFamily(query string, typ Type, rules []compiledRule) []Entity {
	var found []Entity
	for _, rule := range rules {
		for _, loc := range rule.re.FindAllStringSubmatchIndex(query, -1) {
			start, end := loc[0], loc[1]
			raw := query[start:end]

			value := rule.value
			if value == "" {
				vs, ve := start, end
				if len(loc) >= 4 && loc[2] >= 0 {
					vs, ve = loc[2], loc[3]
				}
				value = normalizeValue(query[vs:ve])
			}
			if value == "" {
				continue
			}
			found = append(found, Entity{
				Type:       typ,
				Value:      value,
				Confidence: rule.confidence,
				Start:      start,
				End:        end,
				RawMatch:   raw,
			})
		}
	}
	return dedup(found)
}

// extractFilenames scans the filename table, cleans every candidate, and
// applies the confidence bonuses before deduplication.
func (x *Extractor) extractFilenames(query string) []Entity {
	var found []Entity
	for _, rule := range x.filenameRules {
		for _, loc := range rule.re.FindAllStringSubmatchIndex(query, -1) {
			start, end := loc[0], loc[1]
			raw := query[start:end]

			vs, ve := start, end
			if len(loc) >= 4 && loc[2] >= 0 {
				vs, ve = loc[2], loc[3]
			}
			captured := normalizeValue(query[vs:ve])
			if captured == "" {
				continue
			}

			value := x.cleanFilename(captured)
			found = append(found, Entity{
				Type:       TypeFilename,
				Value:      value,
				Confidence: adjustFilenameConfidence(rule.confidence, value),
				Start:      start,
				End:        end,
				RawMatch:   raw,
			})
		}
	}
	return dedup(found)
}

// cleanFilename truncates the candidate at the first command verb and
// strips filler words. A candidate that collapses below 2 characters
// falls back to the untrimmed capture.
func (x *Extractor) cleanFilename(captured string) string {
	words := strings.Fields(captured)

	cut := len(words)
	for i, w := range words {
		if _, ok := x.commandVerbs[w]; ok {
			cut = i
			break
		}
	}
	words = words[:cut]

	kept := words[:0]
	for _, w := range words {
		if _, ok := x.fillerWords[w]; !ok {
			kept = append(kept, w)
		}
	}

	cleaned := strings.Join(kept, " ")
	if len([]rune(cleaned)) < 2 {
		return captured
	}
	return cleaned
}

func adjustFilenameConfidence(base float64, value string) float64 {
	conf := base
	if strings.Contains(value, " ") {
		conf += 0.05
	}
	if strings.ContainsFunc(value, unicode.IsDigit) {
		conf += 0.02
	}
	if conf > maxFilenameAdjustedConfidence {
		conf = maxFilenameAdjustedConfidence
	}
	return conf
}

// dedup keeps only the highest-confidence entity per normalized value,
// preserving first-seen order of the surviving values.
func dedup(found []Entity) []Entity {
	if len(found) < 2 {
		return found
	}
	best := make(map[string]int, len(found))
	var order []string
	for i, e := range found {
		key := normalizeValue(e.Value)
		if j, seen := best[key]; !seen {
			best[key] = i
			order = append(order, key)
		} else if e.Confidence > found[j].Confidence {
			best[key] = i
		}
	}
	out := make([]Entity, 0, len(order))
	for _, key := range order {
		out = append(out, found[best[key]])
	}
	return out
}

func normalizeValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

func truncateForLog(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
