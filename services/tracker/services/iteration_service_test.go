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

// TestIterationCreateStampsParents verifies parent identity is denormalized
// onto the created iteration.
func TestIterationCreateStampsParents(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")

	it := f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "run"})
	assert.Equal(t, project.ID, it.ProjectID)
	assert.Equal(t, exp.ID, it.ExperimentID)
	assert.Equal(t, "p", it.ProjectTitle)
	assert.Equal(t, "e", it.ExperimentName)
	assert.False(t, it.ID.IsZero())
}

// TestIterationCreateMaintainsColumnsMetadata covers the counter roll-up on
// create and delete, including removal at zero.
func TestIterationCreateMaintainsColumnsMetadata(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")

	it1 := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "a",
		Metrics:       map[string]float64{"accuracy": 0.9, "loss": 0.1},
		Parameters:    map[string]any{"lr": 0.01},
	})
	f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "b",
		Metrics:       map[string]float64{"accuracy": 0.92},
	})

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, datatypes.ColumnMeta{Type: datatypes.ColumnMetric, Count: 2}, got.ColumnsMetadata["accuracy"])
	assert.Equal(t, datatypes.ColumnMeta{Type: datatypes.ColumnMetric, Count: 1}, got.ColumnsMetadata["loss"])
	assert.Equal(t, datatypes.ColumnMeta{Type: datatypes.ColumnParameter, Count: 1}, got.ColumnsMetadata["lr"])

	require.NoError(t, f.iterations.Delete(project.ID, exp.ID, it1.ID))

	got, err = f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ColumnsMetadata["accuracy"].Count)
	assert.NotContains(t, got.ColumnsMetadata, "loss")
	assert.NotContains(t, got.ColumnsMetadata, "lr")
}

// TestIterationCreateLinksDataset covers the dataset back-link on creation
// and the cached name copy.
func TestIterationCreateLinksDataset(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "housing", "2.1")

	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "i2",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})
	assert.Equal(t, "housing", it.Dataset.Name)
	assert.Equal(t, "2.1", it.Dataset.Version)

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)
	require.Len(t, got.LinkedIterations, 1)
	target, ok := got.LinkedIterations[it.ID.Hex()]
	require.True(t, ok)
	assert.Equal(t, project.ID, target.ProjectID)
	assert.Equal(t, exp.ID, target.ExperimentID)
}

// TestIterationCreateMissingDataset verifies the guard: referencing an
// absent dataset fails before the iteration is written.
func TestIterationCreateMissingDataset(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	phantom := f.createDataset(t, "gone", "1.0")
	require.NoError(t, f.datasets.Delete(phantom.ID))

	_, err := f.iterations.Create(project.ID, exp.ID, &datatypes.Iteration{
		IterationName: "run",
		Dataset:       &datatypes.DatasetInIteration{ID: phantom.ID},
	})
	require.ErrorIs(t, err, apperrors.ErrDatasetNotFound)

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Iterations)
}

// TestIterationChartNameUniqueness verifies duplicate chart names fail the
// whole create atomically.
func TestIterationChartNameUniqueness(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")

	_, err := f.iterations.Create(project.ID, exp.ID, &datatypes.Iteration{
		IterationName: "run",
		InteractiveCharts: []datatypes.InteractiveChart{
			{ChartType: "line", Name: "curve", XData: [][]float64{{1, 2}}, YData: [][]float64{{3, 4}}},
			{ChartType: "bar", Name: "curve", XData: [][]float64{{1}}, YData: [][]float64{{2}}},
		},
	})
	require.ErrorIs(t, err, apperrors.ErrChartNamesInIterationNotUnique)

	got, err := f.experiments.Get(project.ID, exp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Iterations)
}

// TestIterationBoxplotShapeRejected covers the boxplot shape rule: every
// x element needs its own y series.
func TestIterationBoxplotShapeRejected(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")

	_, err := f.iterations.Create(project.ID, exp.ID, &datatypes.Iteration{
		IterationName: "i5",
		InteractiveCharts: []datatypes.InteractiveChart{{
			ChartType: "boxplot",
			Name:      "spread",
			XData:     [][]float64{{1, 2, 3}},
			YData: [][]float64{
				{1, 2, 3, 4, 5},
				{2, 3, 4, 5, 6},
			},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "For each element in x_data, there must be a list of y_data")
}

// TestIterationUpdateRenames verifies the name-only patch.
func TestIterationUpdateRenames(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "old"})

	name := "new"
	updated, err := f.iterations.Update(project.ID, exp.ID, it.ID, &datatypes.UpdateIteration{IterationName: &name})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.IterationName)
}

// TestIterationDeleteGuardedByAssignment verifies a directly assigned
// iteration cannot be deleted.
func TestIterationDeleteGuardedByAssignment(t *testing.T) {
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

	err = f.iterations.Delete(project.ID, exp.ID, it.ID)
	require.ErrorIs(t, err, apperrors.ErrIterationAssignedToModel)
}
