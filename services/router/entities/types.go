// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package entities scans queries with declarative pattern tables and
// produces typed, confidence-scored entity spans: filenames, branch
// references, time references, actions, and file formats.
package entities

// Type identifies an entity family.
type Type string

const (
	TypeFilename      Type = "filename"
	TypeBranch        Type = "branch"
	TypeTimeReference Type = "time_reference"
	TypeAction        Type = "action"
	TypeFileFormat    Type = "file_format"
)

// Entity is one extracted span.
type Entity struct {
	Type       Type    `json:"entity_type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	RawMatch   string  `json:"raw_match"`
}

// Extraction groups every family's deduplicated entities for one query.
type Extraction struct {
	Filenames      []Entity `json:"filenames"`
	Branches       []Entity `json:"branches"`
	TimeReferences []Entity `json:"time_references"`
	Actions        []Entity `json:"actions"`
	FileFormats    []Entity `json:"file_formats"`
}

// Empty reports whether no family produced anything.
func (x Extraction) Empty() bool {
	return len(x.Filenames) == 0 && len(x.Branches) == 0 &&
		len(x.TimeReferences) == 0 && len(x.Actions) == 0 &&
		len(x.FileFormats) == 0
}

// Primary holds the single best value per family, empty when absent.
// Action may be the combined READ_WRITE when both a write and a read
// action were detected.
type Primary struct {
	Filename      string `json:"filename,omitempty"`
	Branch        string `json:"branch,omitempty"`
	TimeReference string `json:"time_reference,omitempty"`
	Action        string `json:"action,omitempty"`
	FileFormat    string `json:"file_format,omitempty"`
}
