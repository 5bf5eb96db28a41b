// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the tracker's entities. Projects, Datasets and
// MonitoredModels are documents with their own identity; Experiments and
// Iterations are embedded in their owning Project and have no independent
// persistence. Every cross-entity reference here is a denormalized copy kept
// in sync by the services layer, not a live foreign key.
package datatypes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project lifecycle status.
const (
	ProjectNotStarted = "not_started"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
)

// Project is the root document of the experiment aggregate. All experiments
// and iterations live inside it and are persisted by one save.
type Project struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title" binding:"required,min=1,max=40"`
	Description string             `json:"description,omitempty" binding:"max=600"`
	Status      string             `json:"status" binding:"omitempty,oneof=not_started in_progress completed"`
	Archived    bool               `json:"archived"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Experiments []Experiment       `json:"experiments"`
}

// UpdateProject is a partial project patch. Nil fields keep the stored value.
type UpdateProject struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=40"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=600"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=not_started in_progress completed"`
	Archived    *bool   `json:"archived,omitempty"`
}

// DisplayProject is the base view of a project: experiment names instead of
// full embedded experiments.
type DisplayProject struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status"`
	Archived    bool               `json:"archived"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Experiments []string           `json:"experiments"`
}

// Display builds the base view of p.
func (p *Project) Display() DisplayProject {
	names := make([]string, 0, len(p.Experiments))
	for _, exp := range p.Experiments {
		names = append(names, exp.Name)
	}
	return DisplayProject{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Experiments: names,
	}
}
