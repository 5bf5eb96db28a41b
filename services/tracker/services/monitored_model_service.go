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
	"encoding/base64"
	"errors"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/mlmodel"
	"github.com/AleutianAI/AleutianTrack/services/tracker/observability"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// MonitoredModelService manages monitored models: status/iteration
// consistency, the assignment back-reference on the live iteration, the
// prediction log, and diagnostic charts.
type MonitoredModelService struct {
	store *store.Store
	log   *slog.Logger

	// encodeModel loads a model file into its storable blob. Tests swap it
	// out to avoid reading real files.
	encodeModel func(path string) (string, error)
}

// NewMonitoredModelService builds a monitored-model service over the
// document store.
func NewMonitoredModelService(s *store.Store, log *slog.Logger) *MonitoredModelService {
	return &MonitoredModelService{store: s, log: log, encodeModel: mlmodel.EncodeFile}
}

// List returns all monitored models, optionally filtered by status.
func (ms *MonitoredModelService) List(status *string) ([]datatypes.MonitoredModel, error) {
	return store.Find[datatypes.MonitoredModel](ms.store, store.MonitoredModels, func(m *datatypes.MonitoredModel) bool {
		return status == nil || m.ModelStatus == *status
	})
}

// ListNonArchived returns every model that is not archived.
func (ms *MonitoredModelService) ListNonArchived() ([]datatypes.MonitoredModel, error) {
	return store.Find[datatypes.MonitoredModel](ms.store, store.MonitoredModels, func(m *datatypes.MonitoredModel) bool {
		return m.ModelStatus != datatypes.ModelArchived
	})
}

// Get loads one monitored model by id.
func (ms *MonitoredModelService) Get(id primitive.ObjectID) (*datatypes.MonitoredModel, error) {
	model, err := store.Get[datatypes.MonitoredModel](ms.store, store.MonitoredModels, id)
	if err != nil {
		return nil, apperrors.ErrMonitoredModelNotFound
	}
	return model, nil
}

// GetByName loads one monitored model by its globally unique name.
func (ms *MonitoredModelService) GetByName(name string) (*datatypes.MonitoredModel, error) {
	model, err := store.FindOne[datatypes.MonitoredModel](ms.store, store.MonitoredModels, func(m *datatypes.MonitoredModel) bool {
		return m.ModelName == name
	})
	if err != nil {
		return nil, apperrors.ErrMonitoredModelNotFound
	}
	return model, nil
}

// Create inserts a new monitored model. The status/iteration matrix is
// enforced; when an iteration snapshot is supplied, the live iteration is
// guarded (unassigned, has a model path), its model file is loaded into the
// blob, and the assignment back-reference is written.
func (ms *MonitoredModelService) Create(model *datatypes.MonitoredModel) (*datatypes.MonitoredModel, error) {
	if err := ms.checkNameUnique(model.ModelName, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if model.ModelStatus == "" {
		model.ModelStatus = datatypes.ModelIdle
	}
	if err := checkStatusIteration(model.ModelStatus, model.Iteration); err != nil {
		return nil, err
	}

	var blob string
	if model.Iteration != nil {
		_, live, err := liveIteration(ms.store, model.Iteration)
		if err != nil {
			return nil, err
		}
		if live.Assigned() {
			return nil, apperrors.ErrIterationAlreadyAssigned
		}
		if live.PathToModel == "" {
			return nil, apperrors.ErrIterationHasNoPathToModel
		}
		blob, err = ms.encodeModel(live.PathToModel)
		if err != nil {
			return nil, apperrors.Newf(apperrors.KindExternal, "Cannot load ml model: %v", err)
		}
	}

	now := time.Now().UTC()
	model.ID = primitive.NewObjectID()
	model.CreatedAt = now
	model.UpdatedAt = now
	if model.PredictionsData == nil {
		model.PredictionsData = []datatypes.PredictionData{}
	}

	if model.Iteration != nil {
		updated, err := assignIteration(ms.store, model.Iteration, model.ID, model.ModelName)
		if err != nil {
			return nil, err
		}
		model.Iteration = updated
		model.MLModel = blob
	}

	if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
		return nil, err
	}
	ms.log.Info("monitored model created",
		"monitored_model_id", model.ID.Hex(), "name", model.ModelName, "status", model.ModelStatus)
	return model, nil
}

// Update applies a partial patch. Consistency is checked against the merged
// view: a field omitted from the patch keeps the stored value for the
// status/iteration matrix. clearIteration distinguishes an explicit
// `"iteration": null` from an omitted field.
func (ms *MonitoredModelService) Update(id primitive.ObjectID, patch *datatypes.UpdateMonitoredModel, clearIteration bool) (*datatypes.MonitoredModel, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}

	newName := model.ModelName
	if patch.ModelName != nil && *patch.ModelName != model.ModelName {
		if err := ms.checkNameUnique(*patch.ModelName, id); err != nil {
			return nil, err
		}
		newName = *patch.ModelName
	}

	status := model.ModelStatus
	if patch.ModelStatus != nil {
		status = *patch.ModelStatus
	}
	iteration := model.Iteration
	switch {
	case clearIteration:
		iteration = nil
	case patch.Iteration != nil:
		iteration = patch.Iteration
	}
	if err := checkStatusIteration(status, iteration); err != nil {
		return nil, err
	}

	replacing := patch.Iteration != nil &&
		(model.Iteration == nil || model.Iteration.ID != patch.Iteration.ID)

	var blob string
	if replacing {
		_, live, err := liveIteration(ms.store, patch.Iteration)
		if err != nil {
			return nil, err
		}
		if live.Assigned() {
			return nil, apperrors.ErrIterationAlreadyAssigned
		}
		if live.PathToModel == "" {
			return nil, apperrors.ErrIterationHasNoPathToModel
		}
		blob, err = ms.encodeModel(live.PathToModel)
		if err != nil {
			return nil, apperrors.Newf(apperrors.KindExternal, "Cannot load ml model: %v", err)
		}
	}

	// Guards done; back-reference writes follow, then the model's own save.
	if (clearIteration || replacing) && model.Iteration != nil {
		if err := unassignIteration(ms.store, model.Iteration); err != nil {
			return nil, err
		}
		model.Iteration = nil
		model.MLModel = ""
	}
	if replacing {
		updated, err := assignIteration(ms.store, patch.Iteration, model.ID, newName)
		if err != nil {
			return nil, err
		}
		model.Iteration = updated
		model.MLModel = blob
	} else if newName != model.ModelName && model.Iteration != nil {
		if err := renameAssignment(ms.store, model.Iteration, newName); err != nil {
			return nil, err
		}
		model.Iteration.AssignedMonitoredModelName = &newName
	}

	model.ModelName = newName
	model.ModelStatus = status
	if patch.ModelDescription != nil {
		model.ModelDescription = *patch.ModelDescription
	}
	model.UpdatedAt = time.Now().UTC()

	if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
		return nil, err
	}
	return model, nil
}

// Delete unassigns the model's iteration and removes the model document.
// The deleted model is returned to the caller.
func (ms *MonitoredModelService) Delete(id primitive.ObjectID) (*datatypes.MonitoredModel, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	if model.Iteration != nil {
		if err := unassignIteration(ms.store, model.Iteration); err != nil {
			return nil, err
		}
	}
	if err := store.Delete(ms.store, store.MonitoredModels, id); err != nil {
		return nil, err
	}
	ms.log.Info("monitored model deleted", "monitored_model_id", id.Hex(), "name", model.ModelName)
	return model, nil
}

// GetMLModelMetadata decodes the stored blob and reports its shape without
// returning the blob itself.
func (ms *MonitoredModelService) GetMLModelMetadata(id primitive.ObjectID) (*datatypes.MLModelMetadata, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	if model.MLModel == "" {
		return nil, apperrors.ErrNoMLModelToDecode
	}
	raw, err := base64.StdEncoding.DecodeString(model.MLModel)
	if err != nil {
		return nil, apperrors.Newf(apperrors.KindExternal, "Cannot decode ml model: %v", err)
	}
	decoded, err := mlmodel.Decode(model.MLModel)
	if err != nil {
		return nil, apperrors.Newf(apperrors.KindExternal, "Cannot decode ml model: %v", err)
	}
	features := make([]string, 0, len(decoded.Weights))
	for feature := range decoded.Weights {
		features = append(features, feature)
	}
	sort.Strings(features)
	return &datatypes.MLModelMetadata{
		ModelName: model.ModelName,
		SizeBytes: len(raw),
		Bias:      decoded.Bias,
		Features:  features,
	}, nil
}

// Predict scores the given input rows with the model's stored blob and
// appends the results to the prediction log.
func (ms *MonitoredModelService) Predict(id primitive.ObjectID, rows []map[string]any) ([]datatypes.PredictionData, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	if model.MLModel == "" {
		return nil, apperrors.ErrNoMLModelToDecode
	}
	decoded, err := mlmodel.Decode(model.MLModel)
	if err != nil {
		return nil, apperrors.Newf(apperrors.KindExternal, "Cannot decode ml model: %v", err)
	}

	now := time.Now().UTC()
	appended := make([]datatypes.PredictionData, 0, len(rows))
	for _, row := range rows {
		prediction, err := decoded.Predict(row)
		if err != nil {
			return nil, apperrors.Newf(apperrors.KindExternal, "Cannot make prediction: %v", err)
		}
		appended = append(appended, datatypes.PredictionData{
			ID:             primitive.NewObjectID(),
			PredictionDate: now,
			InputData:      row,
			Prediction:     prediction,
		})
	}

	model.PredictionsData = append(model.PredictionsData, appended...)
	model.UpdatedAt = now
	if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
		return nil, err
	}
	for range appended {
		observability.DefaultMetrics.ObservePrediction(model.ModelName)
	}
	return appended, nil
}

// SetActual records the ground-truth value on a logged prediction.
func (ms *MonitoredModelService) SetActual(id, predictionID primitive.ObjectID, actual float64) (*datatypes.PredictionData, error) {
	return ms.patchActual(id, predictionID, &actual)
}

// ClearActual removes the ground-truth value from a logged prediction.
func (ms *MonitoredModelService) ClearActual(id, predictionID primitive.ObjectID) (*datatypes.PredictionData, error) {
	return ms.patchActual(id, predictionID, nil)
}

func (ms *MonitoredModelService) patchActual(id, predictionID primitive.ObjectID, actual *float64) (*datatypes.PredictionData, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	for i := range model.PredictionsData {
		if model.PredictionsData[i].ID == predictionID {
			model.PredictionsData[i].Actual = actual
			model.UpdatedAt = time.Now().UTC()
			if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
				return nil, err
			}
			return &model.PredictionsData[i], nil
		}
	}
	return nil, apperrors.ErrPredictionNotFound
}

// AddChart validates and appends a diagnostic chart. The (type, first
// column, second column) tuple must be unique per model, and the chart must
// validate against the current prediction frame.
func (ms *MonitoredModelService) AddChart(id primitive.ObjectID, chart *datatypes.MonitoredModelChart) (*datatypes.MonitoredModelChart, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	if len(model.PredictionsData) == 0 {
		return nil, apperrors.ErrNoPredictionsData
	}
	if model.HasChartTuple(chart.ChartType, chart.FirstColumn, chart.SecondColumn) {
		return nil, apperrors.ErrChartColumnsNotUnique
	}
	if err := chart.Validate(datatypes.PredictionFrameKinds(model.PredictionsData)); err != nil {
		return nil, err
	}

	chart.ID = primitive.NewObjectID()
	chart.MonitoredModelID = model.ID
	model.InteractiveCharts = append(model.InteractiveCharts, *chart)
	model.UpdatedAt = time.Now().UTC()
	if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
		return nil, err
	}
	return chart, nil
}

// GetChart returns one chart by id.
func (ms *MonitoredModelService) GetChart(id, chartID primitive.ObjectID) (*datatypes.MonitoredModelChart, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}
	for i := range model.InteractiveCharts {
		if model.InteractiveCharts[i].ID == chartID {
			return &model.InteractiveCharts[i], nil
		}
	}
	return nil, apperrors.ErrChartNotFound
}

// UpdateChart patches a chart's binning and metrics fields. The chart's type
// and column tuple are fixed at creation.
func (ms *MonitoredModelService) UpdateChart(id, chartID primitive.ObjectID, patch *datatypes.MonitoredModelChart) (*datatypes.MonitoredModelChart, error) {
	model, err := ms.Get(id)
	if err != nil {
		return nil, err
	}

	var chart *datatypes.MonitoredModelChart
	for i := range model.InteractiveCharts {
		if model.InteractiveCharts[i].ID == chartID {
			chart = &model.InteractiveCharts[i]
			break
		}
	}
	if chart == nil {
		return nil, apperrors.ErrChartNotFound
	}
	if patch.ChartType != chart.ChartType ||
		patch.FirstColumn != chart.FirstColumn ||
		!sameColumn(patch.SecondColumn, chart.SecondColumn) {
		return nil, apperrors.ErrMonitoredModelCannotChangeChart
	}

	candidate := *chart
	candidate.BinMethod = patch.BinMethod
	candidate.BinNumber = patch.BinNumber
	candidate.Metrics = patch.Metrics
	if err := candidate.Validate(datatypes.PredictionFrameKinds(model.PredictionsData)); err != nil {
		return nil, err
	}

	*chart = candidate
	model.UpdatedAt = time.Now().UTC()
	if err := store.Save(ms.store, store.MonitoredModels, model.ID, model); err != nil {
		return nil, err
	}
	return chart, nil
}

// DeleteChart removes one chart from the model.
func (ms *MonitoredModelService) DeleteChart(id, chartID primitive.ObjectID) error {
	model, err := ms.Get(id)
	if err != nil {
		return err
	}
	for i := range model.InteractiveCharts {
		if model.InteractiveCharts[i].ID == chartID {
			model.InteractiveCharts = append(model.InteractiveCharts[:i], model.InteractiveCharts[i+1:]...)
			model.UpdatedAt = time.Now().UTC()
			return store.Save(ms.store, store.MonitoredModels, model.ID, model)
		}
	}
	return apperrors.ErrChartNotFound
}

// checkStatusIteration enforces the status x iteration-presence matrix:
// active requires an iteration, idle forbids one, archived tolerates either.
func checkStatusIteration(status string, iteration *datatypes.Iteration) error {
	if status == datatypes.ModelActive && iteration == nil {
		return apperrors.ErrMonitoredModelHasNoIteration
	}
	if status == datatypes.ModelIdle && iteration != nil {
		return apperrors.ErrMonitoredModelHasIteration
	}
	return nil
}

func sameColumn(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (ms *MonitoredModelService) checkNameUnique(name string, self primitive.ObjectID) error {
	_, err := store.FindOne[datatypes.MonitoredModel](ms.store, store.MonitoredModels, func(m *datatypes.MonitoredModel) bool {
		return m.ModelName == name && m.ID != self
	})
	if err == nil {
		return apperrors.ErrMonitoredModelNameNotUnique
	}
	if !errors.Is(err, store.ErrNoSuchDocument) {
		return err
	}
	return nil
}
