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
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{InMemory: true, Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// fixture bundles every service over one shared test store.
type fixture struct {
	store       *store.Store
	projects    *ProjectService
	experiments *ExperimentService
	iterations  *IterationService
	datasets    *DatasetService
	models      *MonitoredModelService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newTestStore(t)
	log := testLogger()

	datasets := NewDatasetService(st, log)
	datasets.checkPath = func(string) error { return nil }

	models := NewMonitoredModelService(st, log)
	models.encodeModel = func(string) (string, error) { return "blob", nil }

	return &fixture{
		store:       st,
		projects:    NewProjectService(st, log),
		experiments: NewExperimentService(st, log),
		iterations:  NewIterationService(st, log),
		datasets:    datasets,
		models:      models,
	}
}

func (f *fixture) createProject(t *testing.T, title string) *datatypes.Project {
	t.Helper()
	project, err := f.projects.Create(&datatypes.Project{Title: title})
	require.NoError(t, err)
	return project
}

func (f *fixture) createExperiment(t *testing.T, project *datatypes.Project, name string) *datatypes.Experiment {
	t.Helper()
	exp, err := f.experiments.Create(project.ID, &datatypes.Experiment{Name: name})
	require.NoError(t, err)
	return exp
}

func (f *fixture) createIteration(t *testing.T, project *datatypes.Project,
	exp *datatypes.Experiment, it *datatypes.Iteration) *datatypes.Iteration {
	t.Helper()
	created, err := f.iterations.Create(project.ID, exp.ID, it)
	require.NoError(t, err)
	return created
}

func (f *fixture) createDataset(t *testing.T, name, version string) *datatypes.Dataset {
	t.Helper()
	dataset, err := f.datasets.Create(&datatypes.Dataset{
		DatasetName:   name,
		PathToDataset: "https://example.com/" + name,
		Version:       version,
	})
	require.NoError(t, err)
	return dataset
}
