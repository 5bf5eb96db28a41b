// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Column metadata types.
const (
	ColumnMetric    = "metric"
	ColumnParameter = "parameter"
)

// ColumnMeta tracks how many iterations of an experiment carry a given
// metric/parameter key. Entries with count 0 are removed.
type ColumnMeta struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Experiment is embedded in exactly one Project and owns its iterations.
// Name is unique within the owning project's experiment list.
type Experiment struct {
	ID          primitive.ObjectID `json:"id"`
	ProjectID   primitive.ObjectID `json:"project_id"`
	Name        string             `json:"name" binding:"required,min=1,max=40"`
	Description string             `json:"description,omitempty" binding:"max=600"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Iterations  []Iteration        `json:"iterations"`

	// ColumnsMetadata rolls up which metric/parameter keys appear across
	// the experiment's iterations. Older documents may lack it entirely;
	// the services layer backfills lazily.
	ColumnsMetadata map[string]ColumnMeta `json:"columns_metadata,omitempty"`
}

// UpdateExperiment is a partial experiment patch.
type UpdateExperiment struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=40"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=600"`
}
