// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/services"
)

// ListMonitoredModels returns all monitored models, optionally filtered by
// ?status=.
func ListMonitoredModels(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *string
		if raw, present := c.GetQuery("status"); present {
			status = &raw
		}
		models, err := svc.List(status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"monitored_models": models})
	}
}

// ListNonArchivedMonitoredModels returns every model that is not archived.
func ListNonArchivedMonitoredModels(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		models, err := svc.ListNonArchived()
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"monitored_models": models})
	}
}

// CreateMonitoredModel inserts a new monitored model.
func CreateMonitoredModel(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var model datatypes.MonitoredModel
		if err := c.ShouldBindJSON(&model); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.Create(&model)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetMonitoredModel returns one monitored model by id.
func GetMonitoredModel(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		model, err := svc.Get(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	}
}

// GetMonitoredModelByName returns one monitored model by its unique name.
func GetMonitoredModelByName(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, err := svc.GetByName(c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	}
}

// UpdateMonitoredModel applies a partial patch. An explicit `"iteration":
// null` clears the assignment, which an omitted field does not; the raw body
// is inspected to tell the two apart.
func UpdateMonitoredModel(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		raw, err := c.GetRawData()
		if err != nil {
			writeBindError(c, err)
			return
		}

		var patch datatypes.UpdateMonitoredModel
		if err := json.Unmarshal(raw, &patch); err != nil {
			writeBindError(c, err)
			return
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			writeBindError(c, err)
			return
		}
		iterationField, present := fields["iteration"]
		clearIteration := present && bytes.Equal(bytes.TrimSpace(iterationField), []byte("null"))

		model, err := svc.Update(id, &patch, clearIteration)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	}
}

// DeleteMonitoredModel removes a model; the deleted document is returned so
// clients can inspect what went away.
func DeleteMonitoredModel(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		model, err := svc.Delete(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	}
}

// GetMLModelMetadata reports the shape of a model's stored blob.
func GetMLModelMetadata(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		meta, err := svc.GetMLModelMetadata(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, meta)
	}
}

// Predict scores the posted input rows and appends them to the prediction
// log.
func Predict(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		var rows []map[string]any
		if err := c.ShouldBindJSON(&rows); err != nil {
			writeBindError(c, err)
			return
		}
		predictions, err := svc.Predict(id, rows)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"predictions": predictions})
	}
}

// SetPredictionActual records the ground truth for one logged prediction.
func SetPredictionActual(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		predictionID, ok := pathID(c, "prediction_id")
		if !ok {
			return
		}
		var patch datatypes.UpdatePredictionData
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		prediction, err := svc.SetActual(id, predictionID, *patch.Actual)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, prediction)
	}
}

// ClearPredictionActual removes the ground truth from one logged prediction.
func ClearPredictionActual(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		predictionID, ok := pathID(c, "prediction_id")
		if !ok {
			return
		}
		prediction, err := svc.ClearActual(id, predictionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, prediction)
	}
}

// AddMonitoredModelChart appends a diagnostic chart to a model.
func AddMonitoredModelChart(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		var chart datatypes.MonitoredModelChart
		if err := c.ShouldBindJSON(&chart); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.AddChart(id, &chart)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetMonitoredModelChart returns one chart by id.
func GetMonitoredModelChart(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		chartID, ok := pathID(c, "chart_id")
		if !ok {
			return
		}
		chart, err := svc.GetChart(id, chartID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, chart)
	}
}

// UpdateMonitoredModelChart patches a chart's binning and metrics fields.
func UpdateMonitoredModelChart(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		chartID, ok := pathID(c, "chart_id")
		if !ok {
			return
		}
		var patch datatypes.MonitoredModelChart
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		chart, err := svc.UpdateChart(id, chartID, &patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, chart)
	}
}

// DeleteMonitoredModelChart removes one chart.
func DeleteMonitoredModelChart(svc *services.MonitoredModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "model_id")
		if !ok {
			return
		}
		chartID, ok := pathID(c, "chart_id")
		if !ok {
			return
		}
		if err := svc.DeleteChart(id, chartID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
