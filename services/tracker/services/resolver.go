// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services implements the tracker's domain operations: entity
// resolution inside the project aggregate, bidirectional link maintenance
// between datasets/monitored models and iterations, columns-metadata
// upkeep, and the per-entity CRUD façades.
//
// Every operation follows read-full-document, mutate in memory, validate,
// single save. Guard checks run before any write; multi-document sequences
// are not transactional and are not rolled back on a later failure.
package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
)

// Experiments and iterations have no collection identity; they are found by
// scanning the loaded project. Lists are small, so linear scans are fine.

// experimentByID returns a pointer into the project's experiment slice.
func experimentByID(project *datatypes.Project, id primitive.ObjectID) (*datatypes.Experiment, error) {
	for i := range project.Experiments {
		if project.Experiments[i].ID == id {
			return &project.Experiments[i], nil
		}
	}
	return nil, apperrors.ErrExperimentNotFound
}

func experimentByName(project *datatypes.Project, name string) (*datatypes.Experiment, error) {
	for i := range project.Experiments {
		if project.Experiments[i].Name == name {
			return &project.Experiments[i], nil
		}
	}
	return nil, apperrors.ErrExperimentNotFound
}

// iterationByID returns a pointer into the experiment's iteration slice.
func iterationByID(exp *datatypes.Experiment, id primitive.ObjectID) (*datatypes.Iteration, error) {
	for i := range exp.Iterations {
		if exp.Iterations[i].ID == id {
			return &exp.Iterations[i], nil
		}
	}
	return nil, apperrors.ErrIterationNotFound
}

// iterationsByName returns all iterations with the given name, or not-found
// when there are none.
func iterationsByName(exp *datatypes.Experiment, name string) ([]datatypes.Iteration, error) {
	var out []datatypes.Iteration
	for i := range exp.Iterations {
		if exp.Iterations[i].IterationName == name {
			out = append(out, exp.Iterations[i])
		}
	}
	if len(out) == 0 {
		return nil, apperrors.ErrIterationNotFound
	}
	return out, nil
}

// removeExperiment drops the experiment with the given id from the slice.
func removeExperiment(project *datatypes.Project, id primitive.ObjectID) {
	for i := range project.Experiments {
		if project.Experiments[i].ID == id {
			project.Experiments = append(project.Experiments[:i], project.Experiments[i+1:]...)
			return
		}
	}
}

// removeIteration drops the iteration with the given id from the slice.
func removeIteration(exp *datatypes.Experiment, id primitive.ObjectID) {
	for i := range exp.Iterations {
		if exp.Iterations[i].ID == id {
			exp.Iterations = append(exp.Iterations[:i], exp.Iterations[i+1:]...)
			return
		}
	}
}
