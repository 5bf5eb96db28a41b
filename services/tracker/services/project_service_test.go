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

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
)

// TestProjectCreateUniqueTitle verifies the title uniqueness rule.
func TestProjectCreateUniqueTitle(t *testing.T) {
	f := newFixture(t)

	first := f.createProject(t, "churn-model")
	assert.False(t, first.ID.IsZero())
	assert.Equal(t, datatypes.ProjectNotStarted, first.Status)

	_, err := f.projects.Create(&datatypes.Project{Title: "churn-model"})
	require.ErrorIs(t, err, apperrors.ErrProjectTitleNotUnique)
}

// TestProjectGetByTitle verifies lookup by title and the not-found error.
func TestProjectGetByTitle(t *testing.T) {
	f := newFixture(t)
	f.createProject(t, "fraud-detection")

	got, err := f.projects.GetByTitle("fraud-detection")
	require.NoError(t, err)
	assert.Equal(t, "fraud-detection", got.Title)

	_, err = f.projects.GetByTitle("missing")
	require.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

// TestProjectListArchivedFilter verifies the archived list filter.
func TestProjectListArchivedFilter(t *testing.T) {
	f := newFixture(t)
	f.createProject(t, "live")
	archived := f.createProject(t, "old")
	yes := true
	_, err := f.projects.Update(archived.ID, &datatypes.UpdateProject{Archived: &yes})
	require.NoError(t, err)

	all, err := f.projects.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	archivedOnly, err := f.projects.List(&yes)
	require.NoError(t, err)
	require.Len(t, archivedOnly, 1)
	assert.Equal(t, "old", archivedOnly[0].Title)
}

// TestProjectRenamePropagatesTitle verifies that a title change rewrites the
// cached project_title on every embedded iteration.
func TestProjectRenamePropagatesTitle(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "before")
	exp := f.createExperiment(t, project, "exp")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "run-1"})
	assert.Equal(t, "before", it.ProjectTitle)

	title := "after"
	_, err := f.projects.Update(project.ID, &datatypes.UpdateProject{Title: &title})
	require.NoError(t, err)

	got, err := f.iterations.Get(project.ID, exp.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.ProjectTitle)
}

// TestProjectDeleteWithIterations covers create project -> experiment ->
// iteration without dataset -> delete iteration; the experiment survives
// with zero iterations.
func TestProjectDeleteWithIterations(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "i1"})

	require.NoError(t, f.iterations.Delete(project.ID, exp.ID, it.ID))

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Iterations)
}

// TestProjectDeleteGuardedByAssignment verifies that a project containing an
// iteration assigned to a monitored model cannot be deleted.
func TestProjectDeleteGuardedByAssignment(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run", PathToModel: "/models/run.gob",
	})

	_, err := f.models.Create(&datatypes.MonitoredModel{
		ModelName: "m", ModelStatus: datatypes.ModelActive, Iteration: it,
	})
	require.NoError(t, err)

	err = f.projects.Delete(project.ID)
	require.ErrorIs(t, err, apperrors.ErrIterationInProjectAssigned)

	// Still present.
	_, err = f.projects.Get(project.ID)
	require.NoError(t, err)
}

// TestProjectDeleteUnlinksDatasets verifies dataset back-links are removed
// when the owning project goes away.
func TestProjectDeleteUnlinksDatasets(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "housing", "1.0")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})

	require.NoError(t, f.projects.Delete(project.ID))

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.LinkedIterations, it.ID.Hex())
}
