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
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// ProjectService manages the project aggregate roots.
type ProjectService struct {
	store *store.Store
	log   *slog.Logger
}

// NewProjectService builds a project service over the document store.
func NewProjectService(s *store.Store, log *slog.Logger) *ProjectService {
	return &ProjectService{store: s, log: log}
}

// List returns projects, optionally filtered by the archived flag.
func (ps *ProjectService) List(archived *bool) ([]datatypes.Project, error) {
	return store.Find[datatypes.Project](ps.store, store.Projects, func(p *datatypes.Project) bool {
		return archived == nil || p.Archived == *archived
	})
}

// Get loads one project by id.
func (ps *ProjectService) Get(id primitive.ObjectID) (*datatypes.Project, error) {
	project, err := store.Get[datatypes.Project](ps.store, store.Projects, id)
	if err != nil {
		return nil, apperrors.ErrProjectNotFound
	}
	return project, nil
}

// GetByTitle loads one project by its unique title.
func (ps *ProjectService) GetByTitle(title string) (*datatypes.Project, error) {
	project, err := store.FindOne[datatypes.Project](ps.store, store.Projects, func(p *datatypes.Project) bool {
		return p.Title == title
	})
	if err != nil {
		return nil, apperrors.ErrProjectNotFound
	}
	return project, nil
}

// Create inserts a new project. Title must be unique across all projects.
func (ps *ProjectService) Create(project *datatypes.Project) (*datatypes.Project, error) {
	if err := ps.checkTitleUnique(project.Title, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project.ID = primitive.NewObjectID()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = datatypes.ProjectNotStarted
	}
	if project.Experiments == nil {
		project.Experiments = []datatypes.Experiment{}
	}
	for i := range project.Experiments {
		project.Experiments[i].ID = primitive.NewObjectID()
		project.Experiments[i].ProjectID = project.ID
		project.Experiments[i].CreatedAt = now
		project.Experiments[i].UpdatedAt = now
	}

	if err := store.Save(ps.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	ps.log.Info("project created", "project_id", project.ID.Hex(), "title", project.Title)
	return project, nil
}

// Update applies a partial patch. A title change is propagated to the cached
// project_title on every embedded iteration; the aggregate is one document,
// so the propagation rides the same save.
func (ps *ProjectService) Update(id primitive.ObjectID, patch *datatypes.UpdateProject) (*datatypes.Project, error) {
	project, err := ps.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && *patch.Title != project.Title {
		if err := ps.checkTitleUnique(*patch.Title, id); err != nil {
			return nil, err
		}
		project.Title = *patch.Title
		for e := range project.Experiments {
			exp := &project.Experiments[e]
			for i := range exp.Iterations {
				exp.Iterations[i].ProjectTitle = project.Title
			}
		}
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.Archived != nil {
		project.Archived = *patch.Archived
	}
	project.UpdatedAt = time.Now().UTC()

	if err := store.Save(ps.store, store.Projects, project.ID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and its whole aggregate. Guards run first: no
// contained iteration may be assigned to a monitored model. Dataset
// back-links for every contained iteration are removed before the project
// document itself is deleted.
func (ps *ProjectService) Delete(id primitive.ObjectID) error {
	project, err := ps.Get(id)
	if err != nil {
		return err
	}

	for e := range project.Experiments {
		exp := &project.Experiments[e]
		for i := range exp.Iterations {
			if exp.Iterations[i].Assigned() {
				return apperrors.ErrIterationInProjectAssigned
			}
		}
	}

	if err := unlinkAggregate(ps.store, project.Experiments); err != nil {
		return err
	}

	if err := store.Delete(ps.store, store.Projects, id); err != nil {
		return err
	}
	ps.log.Info("project deleted", "project_id", id.Hex(), "title", project.Title)
	return nil
}

// unlinkAggregate removes dataset back-links for every iteration in the
// given experiments, one dataset save per referenced dataset.
func unlinkAggregate(s *store.Store, experiments []datatypes.Experiment) error {
	byDataset := make(map[primitive.ObjectID][]primitive.ObjectID)
	for e := range experiments {
		exp := &experiments[e]
		for i := range exp.Iterations {
			it := &exp.Iterations[i]
			if it.Dataset != nil {
				byDataset[it.Dataset.ID] = append(byDataset[it.Dataset.ID], it.ID)
			}
		}
	}
	for datasetID, iterationIDs := range byDataset {
		if err := unlinkIterationsFromDataset(s, datasetID, iterationIDs); err != nil {
			return err
		}
	}
	return nil
}

func (ps *ProjectService) checkTitleUnique(title string, self primitive.ObjectID) error {
	_, err := store.FindOne[datatypes.Project](ps.store, store.Projects, func(p *datatypes.Project) bool {
		return p.Title == title && p.ID != self
	})
	if err == nil {
		return apperrors.ErrProjectTitleNotUnique
	}
	if !errors.Is(err, store.ErrNoSuchDocument) {
		return err
	}
	return nil
}
