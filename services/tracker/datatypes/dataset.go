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

// LinkTarget locates an iteration inside the project aggregate. Stored on
// the dataset side of the Dataset<->Iteration back-reference.
type LinkTarget struct {
	ProjectID    primitive.ObjectID `json:"project_id"`
	ExperimentID primitive.ObjectID `json:"experiment_id"`
}

// Dataset is its own document. The (dataset_name, version) pair is unique
// across datasets.
//
// LinkedIterations is the dataset half of the bidirectional reference
// invariant: its key set must equal exactly the set of iteration ids, across
// all projects, whose cached dataset reference points at this dataset.
type Dataset struct {
	ID                 primitive.ObjectID    `json:"_id"`
	DatasetName        string                `json:"dataset_name" binding:"required,min=1,max=40"`
	PathToDataset      string                `json:"path_to_dataset"`
	DatasetDescription string                `json:"dataset_description,omitempty" binding:"max=150"`
	Tags               string                `json:"tags,omitempty" binding:"omitempty,taglist"`
	Archived           bool                  `json:"archived"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            string                `json:"version,omitempty"`
	LinkedIterations   map[string]LinkTarget `json:"linked_iterations"`
}

// UpdateDataset is a partial dataset patch.
type UpdateDataset struct {
	DatasetName        *string `json:"dataset_name,omitempty" binding:"omitempty,min=1,max=40"`
	PathToDataset      *string `json:"path_to_dataset,omitempty"`
	DatasetDescription *string `json:"dataset_description,omitempty" binding:"omitempty,max=150"`
	Tags               *string `json:"tags,omitempty" binding:"omitempty,taglist"`
	Archived           *bool   `json:"archived,omitempty"`
	Version            *string `json:"version,omitempty"`
}
