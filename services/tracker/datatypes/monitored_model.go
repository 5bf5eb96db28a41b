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

// Monitored model statuses. 'active' requires an iteration snapshot; 'idle'
// forbids one; 'archived' tolerates either.
const (
	ModelIdle     = "idle"
	ModelActive   = "active"
	ModelArchived = "archived"
)

// MonitoredModelStatuses is the closed status set.
var MonitoredModelStatuses = []string{ModelActive, ModelIdle, ModelArchived}

// MonitoredModel is its own document serving predictions for one iteration.
//
// Iteration is a snapshot copy, not a live reference: changes made to the
// live iteration are pushed back explicitly by the services layer. MLModel is
// the base64-encoded model blob loaded from the iteration's path_to_model.
type MonitoredModel struct {
	ID                primitive.ObjectID    `json:"_id"`
	ModelName         string                `json:"model_name" binding:"required,min=1,max=100"`
	ModelDescription  string                `json:"model_description,omitempty" binding:"max=150"`
	ModelStatus       string                `json:"model_status" binding:"omitempty,oneof=active idle archived"`
	Iteration         *Iteration            `json:"iteration,omitempty"`
	PredictionsData   []PredictionData      `json:"predictions_data,omitempty"`
	MLModel           string                `json:"ml_model,omitempty"`
	InteractiveCharts []MonitoredModelChart `json:"interactive_charts,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// UpdateMonitoredModel is a partial patch. Omitted fields keep the stored
// value, and the stored value stays authoritative for consistency checks.
type UpdateMonitoredModel struct {
	ModelName        *string    `json:"model_name,omitempty" binding:"omitempty,min=1,max=100"`
	ModelDescription *string    `json:"model_description,omitempty" binding:"omitempty,max=150"`
	ModelStatus      *string    `json:"model_status,omitempty" binding:"omitempty,oneof=active idle archived"`
	Iteration        *Iteration `json:"iteration,omitempty"`
}

// MLModelMetadata describes a monitored model's stored blob without shipping
// the blob itself.
type MLModelMetadata struct {
	ModelName string   `json:"model_name"`
	SizeBytes int      `json:"size_bytes"`
	Bias      float64  `json:"bias"`
	Features  []string `json:"features"`
}

// PredictionData is one entry of the append-only prediction log.
type PredictionData struct {
	ID             primitive.ObjectID `json:"id"`
	PredictionDate time.Time          `json:"prediction_date"`
	InputData      map[string]any     `json:"input_data"`
	Prediction     float64            `json:"prediction"`
	Actual         *float64           `json:"actual,omitempty"`
}

// UpdatePredictionData sets the ground-truth value on a logged prediction.
type UpdatePredictionData struct {
	Actual *float64 `json:"actual" binding:"required"`
}

// HasChartTuple reports whether a chart with the same (type, first column,
// second column) tuple already exists on the model.
func (m *MonitoredModel) HasChartTuple(chartType, first string, second *string) bool {
	for _, c := range m.InteractiveCharts {
		if c.ChartType == chartType && c.FirstColumn == first && equalPtr(c.SecondColumn, second) {
			return true
		}
	}
	return false
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
