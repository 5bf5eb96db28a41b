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

// IterationService manages iterations embedded in an experiment inside a
// project aggregate.
type IterationService struct {
	store *store.Store
	log   *slog.Logger
}

// NewIterationService builds an iteration service over the document store.
func NewIterationService(s *store.Store, log *slog.Logger) *IterationService {
	return &IterationService{store: s, log: log}
}

func (is *IterationService) resolve(projectID, experimentID primitive.ObjectID) (*datatypes.Project, *datatypes.Experiment, error) {
	project, err := store.Get[datatypes.Project](is.store, store.Projects, projectID)
	if err != nil {
		return nil, nil, apperrors.ErrProjectNotFound
	}
	exp, err := experimentByID(project, experimentID)
	if err != nil {
		return nil, nil, err
	}
	return project, exp, nil
}

// List returns all iterations of an experiment.
func (is *IterationService) List(projectID, experimentID primitive.ObjectID) ([]datatypes.Iteration, error) {
	_, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return nil, err
	}
	return exp.Iterations, nil
}

// Get returns one iteration by id.
func (is *IterationService) Get(projectID, experimentID, iterationID primitive.ObjectID) (*datatypes.Iteration, error) {
	_, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return nil, err
	}
	return iterationByID(exp, iterationID)
}

// GetByName returns the iterations sharing a name; iteration names are not
// unique, so this is a list.
func (is *IterationService) GetByName(projectID, experimentID primitive.ObjectID, name string) ([]datatypes.Iteration, error) {
	_, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return nil, err
	}
	return iterationsByName(exp, name)
}

// Create appends a new iteration. The parent identity fields are stamped
// onto the iteration; chart names are validated for uniqueness and shape
// before anything is written; a referenced dataset gets its back-link
// recorded and its name/version cached on the iteration.
func (is *IterationService) Create(projectID, experimentID primitive.ObjectID, it *datatypes.Iteration) (*datatypes.Iteration, error) {
	project, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return nil, err
	}

	if err := validateIterationCharts(it); err != nil {
		return nil, err
	}

	it.ID = primitive.NewObjectID()
	it.ExperimentID = exp.ID
	it.ProjectID = project.ID
	it.ExperimentName = exp.Name
	it.ProjectTitle = project.Title
	it.CreatedAt = time.Now().UTC()
	for i := range it.InteractiveCharts {
		it.InteractiveCharts[i].ID = primitive.NewObjectID()
	}
	for i := range it.ImageCharts {
		it.ImageCharts[i].ID = primitive.NewObjectID()
	}

	// Dataset write first, then the aggregate save. A project save failure
	// after the dataset save leaves a dangling back-link; see the
	// cross-document ordering rules in the package doc.
	if err := linkIterationToDataset(is.store, it); err != nil {
		return nil, err
	}

	ensureColumnsMetadata(exp)
	addIterationColumns(exp, it)
	exp.Iterations = append(exp.Iterations, *it)
	exp.UpdatedAt = it.CreatedAt
	project.UpdatedAt = it.CreatedAt
	if err := store.Save(is.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	is.log.Info("iteration created",
		"project_id", project.ID.Hex(), "experiment_id", exp.ID.Hex(),
		"iteration_id", it.ID.Hex(), "name", it.IterationName)
	return it, nil
}

// Update renames an iteration. Nothing else is patchable after creation.
func (is *IterationService) Update(projectID, experimentID, iterationID primitive.ObjectID, patch *datatypes.UpdateIteration) (*datatypes.Iteration, error) {
	project, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return nil, err
	}
	it, err := iterationByID(exp, iterationID)
	if err != nil {
		return nil, err
	}
	if patch.IterationName != nil {
		it.IterationName = *patch.IterationName
	}
	if err := store.Save(is.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	return it, nil
}

// Delete removes one iteration. An iteration assigned to a monitored model
// cannot be deleted; its dataset back-link is cleared and the experiment's
// columns metadata decremented.
func (is *IterationService) Delete(projectID, experimentID, iterationID primitive.ObjectID) error {
	project, exp, err := is.resolve(projectID, experimentID)
	if err != nil {
		return err
	}
	it, err := iterationByID(exp, iterationID)
	if err != nil {
		return err
	}
	if it.Assigned() {
		return apperrors.ErrIterationAssignedToModel
	}

	if it.Dataset != nil {
		if err := unlinkIterationsFromDataset(is.store, it.Dataset.ID, []primitive.ObjectID{it.ID}); err != nil {
			return err
		}
	}

	removed := *it
	ensureColumnsMetadata(exp)
	removeIterationColumns(exp, &removed)
	removeIteration(exp, iterationID)
	exp.UpdatedAt = time.Now().UTC()
	project.UpdatedAt = exp.UpdatedAt
	if err := store.Save(is.store, store.Projects, project.ID, project); err != nil {
		return err
	}
	is.log.Info("iteration deleted",
		"project_id", project.ID.Hex(), "experiment_id", exp.ID.Hex(),
		"iteration_id", iterationID.Hex())
	return nil
}

// validateIterationCharts checks chart-name uniqueness within the iteration
// and each interactive chart's shape rules. Runs before any write.
func validateIterationCharts(it *datatypes.Iteration) error {
	seen := make(map[string]bool)
	for i := range it.InteractiveCharts {
		c := &it.InteractiveCharts[i]
		if seen[c.Name] {
			return apperrors.ErrChartNamesInIterationNotUnique
		}
		seen[c.Name] = true
		if err := c.Validate(); err != nil {
			return err
		}
	}
	imageSeen := make(map[string]bool)
	for i := range it.ImageCharts {
		name := it.ImageCharts[i].Name
		if imageSeen[name] {
			return apperrors.ErrChartNamesInIterationNotUnique
		}
		imageSeen[name] = true
	}
	return nil
}
