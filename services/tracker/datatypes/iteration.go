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

// DatasetInIteration is a cached copy of a Dataset's identifying fields, not
// a live foreign key. Name and version are overwritten when the dataset is
// renamed; the whole reference is cleared when the dataset is deleted.
type DatasetInIteration struct {
	ID      primitive.ObjectID `json:"id" binding:"required"`
	Name    string             `json:"name,omitempty"`
	Version string             `json:"version,omitempty"`
}

// Iteration is a single run embedded in an Experiment. The experiment/project
// identity fields are denormalized copies stamped at creation and rewritten
// on rename.
type Iteration struct {
	ID             primitive.ObjectID `json:"id"`
	ExperimentID   primitive.ObjectID `json:"experiment_id"`
	ProjectID      primitive.ObjectID `json:"project_id"`
	ExperimentName string             `json:"experiment_name,omitempty"`
	ProjectTitle   string             `json:"project_title,omitempty"`
	UserName       string             `json:"user_name,omitempty"`
	IterationName  string             `json:"iteration_name" binding:"required,min=1,max=100"`
	CreatedAt      time.Time          `json:"created_at"`

	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Parameters  map[string]any     `json:"parameters,omitempty"`
	PathToModel string             `json:"path_to_model,omitempty"`
	ModelName   string             `json:"model_name,omitempty"`

	Dataset           *DatasetInIteration `json:"dataset,omitempty"`
	InteractiveCharts []InteractiveChart  `json:"interactive_charts,omitempty"`
	ImageCharts       []ImageChart        `json:"image_charts,omitempty"`

	// Set exactly when some MonitoredModel currently uses this iteration.
	// At most one monitored model may reference an iteration at a time.
	AssignedMonitoredModelID   *primitive.ObjectID `json:"assigned_monitored_model_id,omitempty"`
	AssignedMonitoredModelName *string             `json:"assigned_monitored_model_name,omitempty"`
}

// UpdateIteration is a name-only patch; relinking datasets or charts after
// creation is not supported.
type UpdateIteration struct {
	IterationName *string `json:"iteration_name,omitempty" binding:"omitempty,min=1,max=100"`
}

// MetricKeys returns the metric column names logged on the iteration.
func (it *Iteration) MetricKeys() []string {
	keys := make([]string, 0, len(it.Metrics))
	for k := range it.Metrics {
		keys = append(keys, k)
	}
	return keys
}

// ParameterKeys returns the parameter column names logged on the iteration.
func (it *Iteration) ParameterKeys() []string {
	keys := make([]string, 0, len(it.Parameters))
	for k := range it.Parameters {
		keys = append(keys, k)
	}
	return keys
}

// Assigned reports whether the iteration is referenced by a monitored model.
func (it *Iteration) Assigned() bool {
	return it.AssignedMonitoredModelID != nil
}
