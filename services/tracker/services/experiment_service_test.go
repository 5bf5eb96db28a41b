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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
)

// TestExperimentNameUniqueWithinProject verifies the per-project name rule.
func TestExperimentNameUniqueWithinProject(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	f.createExperiment(t, project, "baseline")

	_, err := f.experiments.Create(project.ID, &datatypes.Experiment{Name: "baseline"})
	require.ErrorIs(t, err, apperrors.ErrExperimentNameNotUnique)

	// Same name in another project is fine.
	other := f.createProject(t, "q")
	_, err = f.experiments.Create(other.ID, &datatypes.Experiment{Name: "baseline"})
	require.NoError(t, err)
}

// TestExperimentRenamePropagatesName verifies the cached experiment_name on
// iterations follows a rename and that columns metadata is untouched.
func TestExperimentRenamePropagatesName(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "old")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run",
		Metrics:       map[string]float64{"accuracy": 0.9},
	})

	name := "new"
	_, err := f.experiments.Update(project.ID, exp.ID, &datatypes.UpdateExperiment{Name: &name})
	require.NoError(t, err)

	got, err := f.iterations.Get(project.ID, exp.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ExperimentName)

	updated, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ColumnsMetadata["accuracy"].Count)
}

// TestExperimentDeleteGuardedByAssignment covers deleting an experiment that
// contains an iteration assigned to a monitored model.
func TestExperimentDeleteGuardedByAssignment(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e2")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "i4", PathToModel: "/models/i4.gob",
	})
	_, err := f.models.Create(&datatypes.MonitoredModel{
		ModelName: "m", ModelStatus: datatypes.ModelActive, Iteration: it,
	})
	require.NoError(t, err)

	err = f.experiments.Delete(project.ID, exp.ID)
	require.ErrorIs(t, err, apperrors.ErrIterationInExperimentAssigned)
	assert.Contains(t, err.Error(), "Iteration in experiment is assigned to monitored model.")
}

// TestExperimentDeleteUnlinksDatasets verifies dataset back-link cleanup on
// experiment deletion.
func TestExperimentDeleteUnlinksDatasets(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "d", "1.0")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})

	require.NoError(t, f.experiments.Delete(project.ID, exp.ID))

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.LinkedIterations, it.ID.Hex())

	_, err = f.experiments.Get(project.ID, exp.ID)
	require.ErrorIs(t, err, apperrors.ErrExperimentNotFound)
}

// TestDeleteIterationsBulk verifies the bulk delete path: guards per
// iteration, columns metadata decremented per removal.
func TestDeleteIterationsBulk(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	it1 := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "a", Metrics: map[string]float64{"loss": 0.5},
	})
	it2 := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "b", Metrics: map[string]float64{"loss": 0.4},
	})
	f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "c", Metrics: map[string]float64{"loss": 0.3},
	})

	err := f.experiments.DeleteIterations(project.ID, map[primitive.ObjectID][]primitive.ObjectID{
		exp.ID: {it1.ID, it2.ID},
	})
	require.NoError(t, err)

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	require.Len(t, got.Iterations, 1)
	assert.Equal(t, "c", got.Iterations[0].IterationName)
	assert.Equal(t, 1, got.ColumnsMetadata["loss"].Count)
}

// TestDeleteIterationsBulkGuard verifies an assigned iteration blocks the
// whole bulk delete before any removal happens.
func TestDeleteIterationsBulkGuard(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	free := f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "free"})
	held := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "held", PathToModel: "/models/held.gob",
	})
	_, err := f.models.Create(&datatypes.MonitoredModel{
		ModelName: "m", ModelStatus: datatypes.ModelActive, Iteration: held,
	})
	require.NoError(t, err)

	err = f.experiments.DeleteIterations(project.ID, map[primitive.ObjectID][]primitive.ObjectID{
		exp.ID: {free.ID, held.ID},
	})
	require.ErrorIs(t, err, apperrors.ErrIterationAssignedToModel)

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Len(t, got.Iterations, 2)
}
