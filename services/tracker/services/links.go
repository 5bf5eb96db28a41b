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
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/observability"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// Metric labels for back-reference writes.
const (
	relationDatasetIteration = "dataset_iteration"
	relationModelIteration   = "model_iteration"
)

// The dataset<->iteration and model<->iteration back-references span
// documents, so every helper here resolves all affected documents before the
// first save. A failure mid-sequence still leaves earlier saves in place;
// there is no rollback.

// linkIterationToDataset resolves the dataset an iteration was created with,
// refreshes the iteration's cached name/version, and records the back-link
// on the dataset. The caller saves the owning project; the dataset is saved
// here.
func linkIterationToDataset(s *store.Store, it *datatypes.Iteration) error {
	if it.Dataset == nil {
		return nil
	}
	ds, err := store.Get[datatypes.Dataset](s, store.Datasets, it.Dataset.ID)
	if err != nil {
		return apperrors.ErrDatasetNotFound
	}
	it.Dataset.Name = ds.DatasetName
	it.Dataset.Version = ds.Version

	if ds.LinkedIterations == nil {
		ds.LinkedIterations = make(map[string]datatypes.LinkTarget)
	}
	ds.LinkedIterations[it.ID.Hex()] = datatypes.LinkTarget{
		ProjectID:    it.ProjectID,
		ExperimentID: it.ExperimentID,
	}
	if err := store.Save(s, store.Datasets, ds.ID, ds); err != nil {
		return err
	}
	observability.DefaultMetrics.ObserveLinkWrite(relationDatasetIteration, "link")
	return nil
}

// unlinkIterationsFromDataset removes the dataset back-links for the given
// iterations. Removing an id that is already absent is a no-op, so repeated
// unlinks converge. The dataset itself must still exist.
func unlinkIterationsFromDataset(s *store.Store, datasetID primitive.ObjectID, iterationIDs []primitive.ObjectID) error {
	ds, err := store.Get[datatypes.Dataset](s, store.Datasets, datasetID)
	if err != nil {
		return apperrors.ErrDatasetNotFound
	}
	for _, id := range iterationIDs {
		delete(ds.LinkedIterations, id.Hex())
	}
	if err := store.Save(s, store.Datasets, ds.ID, ds); err != nil {
		return err
	}
	observability.DefaultMetrics.ObserveLinkWrite(relationDatasetIteration, "unlink")
	return nil
}

// iterationSite is a resolved live iteration together with its owning
// project, collected during a guard phase so the write phase cannot fail on
// resolution.
type iterationSite struct {
	project   *datatypes.Project
	iteration *datatypes.Iteration
}

// resolveLinkedIterations loads and resolves every iteration the dataset
// back-links to. Projects are loaded once and shared between sites so that
// one save per project covers all of its touched iterations.
func resolveLinkedIterations(s *store.Store, ds *datatypes.Dataset) ([]iterationSite, []*datatypes.Project, error) {
	projects := make(map[primitive.ObjectID]*datatypes.Project)
	var order []*datatypes.Project
	var sites []iterationSite

	for rawID, target := range ds.LinkedIterations {
		iterID, err := store.ParseID(rawID)
		if err != nil {
			return nil, nil, apperrors.ErrInvalidID
		}
		project, ok := projects[target.ProjectID]
		if !ok {
			project, err = store.Get[datatypes.Project](s, store.Projects, target.ProjectID)
			if err != nil {
				return nil, nil, apperrors.ErrProjectNotFound
			}
			projects[target.ProjectID] = project
			order = append(order, project)
		}
		exp, err := experimentByID(project, target.ExperimentID)
		if err != nil {
			return nil, nil, err
		}
		it, err := iterationByID(exp, iterID)
		if err != nil {
			return nil, nil, err
		}
		sites = append(sites, iterationSite{project: project, iteration: it})
	}
	return sites, order, nil
}

// propagateDatasetRename rewrites the cached dataset name/version on every
// linked iteration. All links are resolved before the first project save.
func propagateDatasetRename(s *store.Store, ds *datatypes.Dataset) error {
	sites, projects, err := resolveLinkedIterations(s, ds)
	if err != nil {
		return err
	}
	for _, site := range sites {
		if site.iteration.Dataset != nil {
			site.iteration.Dataset.Name = ds.DatasetName
			site.iteration.Dataset.Version = ds.Version
		}
	}
	for _, project := range projects {
		if err := store.Save(s, store.Projects, project.ID, project); err != nil {
			return err
		}
	}
	return nil
}

// clearDatasetLinks erases the cached dataset reference from every linked
// iteration. Used when the dataset is deleted.
func clearDatasetLinks(s *store.Store, ds *datatypes.Dataset) error {
	sites, projects, err := resolveLinkedIterations(s, ds)
	if err != nil {
		return err
	}
	for _, site := range sites {
		site.iteration.Dataset = nil
	}
	for _, project := range projects {
		if err := store.Save(s, store.Projects, project.ID, project); err != nil {
			return err
		}
	}
	return nil
}

// liveIteration resolves the current stored iteration behind a snapshot,
// returning the owning project so the caller can save mutations through it.
func liveIteration(s *store.Store, snapshot *datatypes.Iteration) (*datatypes.Project, *datatypes.Iteration, error) {
	project, err := store.Get[datatypes.Project](s, store.Projects, snapshot.ProjectID)
	if err != nil {
		return nil, nil, apperrors.ErrProjectNotFound
	}
	exp, err := experimentByID(project, snapshot.ExperimentID)
	if err != nil {
		return nil, nil, err
	}
	it, err := iterationByID(exp, snapshot.ID)
	if err != nil {
		return nil, nil, err
	}
	return project, it, nil
}

// assignIteration marks the live iteration as used by the given monitored
// model and returns a copy of the updated iteration for the model snapshot.
// Fails when another model already holds the iteration.
func assignIteration(s *store.Store, snapshot *datatypes.Iteration, modelID primitive.ObjectID, modelName string) (*datatypes.Iteration, error) {
	project, it, err := liveIteration(s, snapshot)
	if err != nil {
		return nil, err
	}
	if it.Assigned() {
		return nil, apperrors.ErrIterationAlreadyAssigned
	}
	id := modelID
	name := modelName
	it.AssignedMonitoredModelID = &id
	it.AssignedMonitoredModelName = &name
	if err := store.Save(s, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	observability.DefaultMetrics.ObserveLinkWrite(relationModelIteration, "link")
	updated := *it
	return &updated, nil
}

// renameAssignment updates the cached model name on the live iteration after
// a monitored model rename.
func renameAssignment(s *store.Store, snapshot *datatypes.Iteration, modelName string) error {
	project, it, err := liveIteration(s, snapshot)
	if err != nil {
		return err
	}
	name := modelName
	it.AssignedMonitoredModelName = &name
	return store.Save(s, store.Projects, project.ID, project)
}

// unassignIteration clears the model reference from the live iteration.
func unassignIteration(s *store.Store, snapshot *datatypes.Iteration) error {
	project, it, err := liveIteration(s, snapshot)
	if err != nil {
		return err
	}
	it.AssignedMonitoredModelID = nil
	it.AssignedMonitoredModelName = nil
	if err := store.Save(s, store.Projects, project.ID, project); err != nil {
		return err
	}
	observability.DefaultMetrics.ObserveLinkWrite(relationModelIteration, "unlink")
	return nil
}
