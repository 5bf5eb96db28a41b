// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import (
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
)

// Columns metadata is a per-experiment roll-up of which metric/parameter
// keys its iterations log, with usage counts. It is maintained incrementally
// on iteration create/delete and rebuilt lazily for documents written before
// the field existed.

// ensureColumnsMetadata backfills the roll-up from the experiment's current
// iterations when the stored document has none. Mutates exp in place;
// callers save the owning project afterwards.
func ensureColumnsMetadata(exp *datatypes.Experiment) {
	if exp.ColumnsMetadata != nil {
		return
	}
	exp.ColumnsMetadata = make(map[string]datatypes.ColumnMeta)
	for i := range exp.Iterations {
		addIterationColumns(exp, &exp.Iterations[i])
	}
}

// addIterationColumns counts the iteration's metric and parameter keys into
// the experiment roll-up. A key keeps the type it was first seen with.
func addIterationColumns(exp *datatypes.Experiment, it *datatypes.Iteration) {
	if exp.ColumnsMetadata == nil {
		exp.ColumnsMetadata = make(map[string]datatypes.ColumnMeta)
	}
	for key := range it.Metrics {
		bumpColumn(exp.ColumnsMetadata, key, datatypes.ColumnMetric)
	}
	for key := range it.Parameters {
		bumpColumn(exp.ColumnsMetadata, key, datatypes.ColumnParameter)
	}
}

// removeIterationColumns reverses addIterationColumns. Entries that reach
// zero are removed entirely; unknown keys are ignored.
func removeIterationColumns(exp *datatypes.Experiment, it *datatypes.Iteration) {
	if exp.ColumnsMetadata == nil {
		return
	}
	for key := range it.Metrics {
		dropColumn(exp.ColumnsMetadata, key)
	}
	for key := range it.Parameters {
		dropColumn(exp.ColumnsMetadata, key)
	}
}

func bumpColumn(meta map[string]datatypes.ColumnMeta, key, columnType string) {
	entry, ok := meta[key]
	if !ok {
		entry = datatypes.ColumnMeta{Type: columnType}
	}
	entry.Count++
	meta[key] = entry
}

func dropColumn(meta map[string]datatypes.ColumnMeta, key string) {
	entry, ok := meta[key]
	if !ok {
		return
	}
	entry.Count--
	if entry.Count <= 0 {
		delete(meta, key)
		return
	}
	meta[key] = entry
}
