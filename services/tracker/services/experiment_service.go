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
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// ExperimentService manages experiments embedded in their owning project.
// Every mutation loads the project, edits in memory, and saves the whole
// aggregate back.
type ExperimentService struct {
	store *store.Store
	log   *slog.Logger
}

// NewExperimentService builds an experiment service over the document store.
func NewExperimentService(s *store.Store, log *slog.Logger) *ExperimentService {
	return &ExperimentService{store: s, log: log}
}

func (es *ExperimentService) project(projectID primitive.ObjectID) (*datatypes.Project, error) {
	project, err := store.Get[datatypes.Project](es.store, store.Projects, projectID)
	if err != nil {
		return nil, apperrors.ErrProjectNotFound
	}
	return project, nil
}

// List returns all experiments of a project.
func (es *ExperimentService) List(projectID primitive.ObjectID) ([]datatypes.Experiment, error) {
	project, err := es.project(projectID)
	if err != nil {
		return nil, err
	}
	return project.Experiments, nil
}

// Get returns one experiment by id.
func (es *ExperimentService) Get(projectID, experimentID primitive.ObjectID) (*datatypes.Experiment, error) {
	project, err := es.project(projectID)
	if err != nil {
		return nil, err
	}
	return experimentByID(project, experimentID)
}

// GetByName returns one experiment by its project-unique name.
func (es *ExperimentService) GetByName(projectID primitive.ObjectID, name string) (*datatypes.Experiment, error) {
	project, err := es.project(projectID)
	if err != nil {
		return nil, err
	}
	return experimentByName(project, name)
}

// Create appends a new experiment to the project. Name must be unique within
// the project's experiment list.
func (es *ExperimentService) Create(projectID primitive.ObjectID, exp *datatypes.Experiment) (*datatypes.Experiment, error) {
	project, err := es.project(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := experimentByName(project, exp.Name); err == nil {
		return nil, apperrors.ErrExperimentNameNotUnique
	}

	now := time.Now().UTC()
	exp.ID = primitive.NewObjectID()
	exp.ProjectID = project.ID
	exp.CreatedAt = now
	exp.UpdatedAt = now
	if exp.Iterations == nil {
		exp.Iterations = []datatypes.Iteration{}
	}
	if exp.ColumnsMetadata == nil {
		exp.ColumnsMetadata = map[string]datatypes.ColumnMeta{}
	}

	project.Experiments = append(project.Experiments, *exp)
	project.UpdatedAt = now
	if err := store.Save(es.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	es.log.Info("experiment created",
		"project_id", project.ID.Hex(), "experiment_id", exp.ID.Hex(), "name", exp.Name)
	return exp, nil
}

// Update applies a partial patch. A rename is propagated to the cached
// experiment_name on the experiment's iterations; columns metadata is not
// touched by renames.
func (es *ExperimentService) Update(projectID, experimentID primitive.ObjectID, patch *datatypes.UpdateExperiment) (*datatypes.Experiment, error) {
	project, err := es.project(projectID)
	if err != nil {
		return nil, err
	}
	exp, err := experimentByID(project, experimentID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != exp.Name {
		if other, err := experimentByName(project, *patch.Name); err == nil && other.ID != exp.ID {
			return nil, apperrors.ErrExperimentNameNotUnique
		}
		exp.Name = *patch.Name
		for i := range exp.Iterations {
			exp.Iterations[i].ExperimentName = exp.Name
		}
	}
	if patch.Description != nil {
		exp.Description = *patch.Description
	}
	exp.UpdatedAt = time.Now().UTC()

	if err := store.Save(es.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	return exp, nil
}

// Delete removes an experiment and all its iterations. Guards first: no
// contained iteration may be assigned to a monitored model. Dataset
// back-links are removed before the project save.
func (es *ExperimentService) Delete(projectID, experimentID primitive.ObjectID) error {
	project, err := es.project(projectID)
	if err != nil {
		return err
	}
	exp, err := experimentByID(project, experimentID)
	if err != nil {
		return err
	}

	for i := range exp.Iterations {
		if exp.Iterations[i].Assigned() {
			return apperrors.ErrIterationInExperimentAssigned
		}
	}

	if err := unlinkAggregate(es.store, []datatypes.Experiment{*exp}); err != nil {
		return err
	}

	removeExperiment(project, experimentID)
	project.UpdatedAt = time.Now().UTC()
	if err := store.Save(es.store, store.Projects, project.ID, project); err != nil {
		return err
	}
	es.log.Info("experiment deleted",
		"project_id", project.ID.Hex(), "experiment_id", experimentID.Hex())
	return nil
}

// DeleteIterations removes the listed iterations, grouped by experiment id,
// in one project save. Guards run for every iteration before any write;
// dataset back-links and columns metadata are maintained per removed
// iteration.
func (es *ExperimentService) DeleteIterations(projectID primitive.ObjectID, byExperiment map[primitive.ObjectID][]primitive.ObjectID) error {
	project, err := es.project(projectID)
	if err != nil {
		return err
	}

	// Removal targets are copied during the guard phase; the in-place slice
	// edits below would invalidate pointers into the iteration lists.
	type removal struct {
		exp *datatypes.Experiment
		it  datatypes.Iteration
	}
	var removals []removal
	for experimentID, iterationIDs := range byExperiment {
		exp, err := experimentByID(project, experimentID)
		if err != nil {
			return err
		}
		for _, iterationID := range iterationIDs {
			it, err := iterationByID(exp, iterationID)
			if err != nil {
				return err
			}
			if it.Assigned() {
				return apperrors.ErrIterationAssignedToModel
			}
			removals = append(removals, removal{exp: exp, it: *it})
		}
	}

	byDataset := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, r := range removals {
		if r.it.Dataset != nil {
			byDataset[r.it.Dataset.ID] = append(byDataset[r.it.Dataset.ID], r.it.ID)
		}
	}
	for datasetID, iterationIDs := range byDataset {
		if err := unlinkIterationsFromDataset(es.store, datasetID, iterationIDs); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for _, r := range removals {
		ensureColumnsMetadata(r.exp)
		removeIterationColumns(r.exp, &r.it)
		removeIteration(r.exp, r.it.ID)
		r.exp.UpdatedAt = now
	}
	project.UpdatedAt = now
	return store.Save(es.store, store.Projects, project.ID, project)
}
