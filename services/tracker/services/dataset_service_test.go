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
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// TestDatasetNameVersionUnique verifies the (name, version) pair rule.
func TestDatasetNameVersionUnique(t *testing.T) {
	f := newFixture(t)
	f.createDataset(t, "housing", "1.0")

	_, err := f.datasets.Create(&datatypes.Dataset{
		DatasetName: "housing", PathToDataset: "https://example.com/h", Version: "1.0",
	})
	require.ErrorIs(t, err, apperrors.ErrDatasetNameAndVersionNotUnique)

	// Same name, new version is fine.
	_, err = f.datasets.Create(&datatypes.Dataset{
		DatasetName: "housing", PathToDataset: "https://example.com/h", Version: "2.0",
	})
	require.NoError(t, err)
}

// TestDatasetGetByNameVersion verifies the exact-pair lookup against a name
// with several versions.
func TestDatasetGetByNameVersion(t *testing.T) {
	f := newFixture(t)
	f.createDataset(t, "housing", "1.0")
	want := f.createDataset(t, "housing", "2.0")

	got, err := f.datasets.GetByNameVersion("housing", "2.0")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	_, err = f.datasets.GetByNameVersion("housing", "3.0")
	require.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

// TestDatasetCreateValidatesLocation verifies path validation failures map
// onto the external-resource errors.
func TestDatasetCreateValidatesLocation(t *testing.T) {
	f := newFixture(t)
	f.datasets.checkPath = func(string) error { return assert.AnError }

	_, err := f.datasets.Create(&datatypes.Dataset{
		DatasetName: "d", PathToDataset: "https://nowhere.invalid/x",
	})
	require.ErrorIs(t, err, apperrors.ErrURLUnreachable)
}

// TestDatasetRenameRoundTrip covers the round trip: create, link an
// iteration, rename the dataset, read the iteration's cached name back.
func TestDatasetRenameRoundTrip(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "census", "1.0")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})

	name := "census-clean"
	_, err := f.datasets.Update(dataset.ID, &datatypes.UpdateDataset{DatasetName: &name})
	require.NoError(t, err)

	got, err := f.iterations.Get(project.ID, exp.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "census-clean", got.Dataset.Name)
}

// TestDatasetRenameGuardFailureLeavesDatasetUntouched verifies that a rename
// whose link resolution fails writes nothing: a dangling linked_iterations
// entry aborts the update and the stored dataset keeps its old name.
func TestDatasetRenameGuardFailureLeavesDatasetUntouched(t *testing.T) {
	f := newFixture(t)
	dataset := f.createDataset(t, "housing", "1.0")

	dataset.LinkedIterations = map[string]datatypes.LinkTarget{
		primitive.NewObjectID().Hex(): {
			ProjectID:    primitive.NewObjectID(),
			ExperimentID: primitive.NewObjectID(),
		},
	}
	require.NoError(t, store.Save(f.store, store.Datasets, dataset.ID, dataset))

	name := "housing-v2"
	_, err := f.datasets.Update(dataset.ID, &datatypes.UpdateDataset{DatasetName: &name})
	require.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, "housing", got.DatasetName)
}

// TestDatasetDeleteClearsIterationReferences covers scenario: delete the
// dataset, the iteration's cached reference becomes nil.
func TestDatasetDeleteClearsIterationReferences(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "d", "1.0")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "i2",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})

	require.NoError(t, f.datasets.Delete(dataset.ID))

	got, err := f.iterations.Get(project.ID, exp.ID, it.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Dataset)

	_, err = f.datasets.Get(dataset.ID)
	require.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

// TestDatasetUnlinkIdempotent verifies removing an already-removed link is a
// no-op rather than an error.
func TestDatasetUnlinkIdempotent(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "d", "1.0")
	it := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "run",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})

	require.NoError(t, f.iterations.Delete(project.ID, exp.ID, it.ID))
	// Second unlink of the same iteration id hits an absent entry.
	require.NoError(t, unlinkIterationsFromDataset(f.store, dataset.ID, []primitive.ObjectID{it.ID}))

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LinkedIterations)
}

// TestDatasetLinkageInvariant verifies the bidirectional invariant across a
// mixed set of linked and unlinked iterations.
func TestDatasetLinkageInvariant(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "p")
	exp := f.createExperiment(t, project, "e")
	dataset := f.createDataset(t, "d", "1.0")

	linked := f.createIteration(t, project, exp, &datatypes.Iteration{
		IterationName: "with-data",
		Dataset:       &datatypes.DatasetInIteration{ID: dataset.ID},
	})
	f.createIteration(t, project, exp, &datatypes.Iteration{IterationName: "without-data"})

	got, err := f.datasets.Get(dataset.ID)
	require.NoError(t, err)

	// Dataset side: exactly the linked iteration.
	require.Len(t, got.LinkedIterations, 1)
	assert.Contains(t, got.LinkedIterations, linked.ID.Hex())

	// Iteration side: every iteration pointing at the dataset appears in
	// the link map, and no other iteration does.
	all, err := f.iterations.List(project.ID, exp.ID)
	require.NoError(t, err)
	for _, it := range all {
		_, present := got.LinkedIterations[it.ID.Hex()]
		assert.Equal(t, it.Dataset != nil && it.Dataset.ID == dataset.ID, present)
	}
}
