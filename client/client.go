// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package client is a thin HTTP wrapper around the tracker API for use from
// scripts and the trackctl CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
)

// APIError is a non-2xx answer from the tracker. Detail carries the server's
// human-readable message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker returned %d: %s", e.StatusCode, e.Detail)
}

// Client talks to one tracker instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:12310".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var payload struct {
			Detail string `json:"detail"`
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &payload)
		if payload.Detail == "" {
			payload.Detail = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: payload.Detail}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListProjects returns projects, optionally filtered by the archived flag.
func (c *Client) ListProjects(ctx context.Context, archived *bool) ([]datatypes.Project, error) {
	path := "/v1/projects"
	if archived != nil {
		path += "?archived=" + strconv.FormatBool(*archived)
	}
	var out struct {
		Projects []datatypes.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, project *datatypes.Project) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.do(ctx, http.MethodPost, "/v1/projects", project, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project with its full aggregate.
func (c *Client) GetProject(ctx context.Context, projectID string) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.do(ctx, http.MethodGet, "/v1/projects/"+projectID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProjectByTitle fetches one project by its unique title.
func (c *Client) GetProjectByTitle(ctx context.Context, title string) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.do(ctx, http.MethodGet, "/v1/projects/title/"+url.PathEscape(title), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies a partial patch.
func (c *Client) UpdateProject(ctx context.Context, projectID string, patch *datatypes.UpdateProject) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.do(ctx, http.MethodPut, "/v1/projects/"+projectID, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project and everything inside it.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/projects/"+projectID, nil, nil)
}

// CreateExperiment creates an experiment inside a project.
func (c *Client) CreateExperiment(ctx context.Context, projectID string, exp *datatypes.Experiment) (*datatypes.Experiment, error) {
	var out datatypes.Experiment
	if err := c.do(ctx, http.MethodPost, "/v1/projects/"+projectID+"/experiments", exp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExperiment removes an experiment and its iterations.
func (c *Client) DeleteExperiment(ctx context.Context, projectID, experimentID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/projects/"+projectID+"/experiments/"+experimentID, nil, nil)
}

// CreateIteration logs a run under an experiment.
func (c *Client) CreateIteration(ctx context.Context, projectID, experimentID string, it *datatypes.Iteration) (*datatypes.Iteration, error) {
	var out datatypes.Iteration
	path := "/v1/projects/" + projectID + "/experiments/" + experimentID + "/iterations"
	if err := c.do(ctx, http.MethodPost, path, it, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIteration fetches one iteration.
func (c *Client) GetIteration(ctx context.Context, projectID, experimentID, iterationID string) (*datatypes.Iteration, error) {
	var out datatypes.Iteration
	path := "/v1/projects/" + projectID + "/experiments/" + experimentID + "/iterations/" + iterationID
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteIteration removes one iteration.
func (c *Client) DeleteIteration(ctx context.Context, projectID, experimentID, iterationID string) error {
	path := "/v1/projects/" + projectID + "/experiments/" + experimentID + "/iterations/" + iterationID
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListDatasets returns datasets, optionally filtered by the archived flag.
func (c *Client) ListDatasets(ctx context.Context, archived *bool) ([]datatypes.Dataset, error) {
	path := "/v1/datasets"
	if archived != nil {
		path += "?archived=" + strconv.FormatBool(*archived)
	}
	var out struct {
		Datasets []datatypes.Dataset `json:"datasets"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Datasets, nil
}

// CreateDataset registers a dataset.
func (c *Client) CreateDataset(ctx context.Context, dataset *datatypes.Dataset) (*datatypes.Dataset, error) {
	var out datatypes.Dataset
	if err := c.do(ctx, http.MethodPost, "/v1/datasets", dataset, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDataset applies a partial patch.
func (c *Client) UpdateDataset(ctx context.Context, datasetID string, patch *datatypes.UpdateDataset) (*datatypes.Dataset, error) {
	var out datatypes.Dataset
	if err := c.do(ctx, http.MethodPut, "/v1/datasets/"+datasetID, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDataset removes a dataset and unlinks its iterations.
func (c *Client) DeleteDataset(ctx context.Context, datasetID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/datasets/"+datasetID, nil, nil)
}

// ListMonitoredModels returns all monitored models, optionally filtered by
// status.
func (c *Client) ListMonitoredModels(ctx context.Context, status string) ([]datatypes.MonitoredModel, error) {
	path := "/v1/monitored-models"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out struct {
		MonitoredModels []datatypes.MonitoredModel `json:"monitored_models"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.MonitoredModels, nil
}

// CreateMonitoredModel registers a monitored model.
func (c *Client) CreateMonitoredModel(ctx context.Context, model *datatypes.MonitoredModel) (*datatypes.MonitoredModel, error) {
	var out datatypes.MonitoredModel
	if err := c.do(ctx, http.MethodPost, "/v1/monitored-models", model, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMonitoredModel removes a model; the deleted document is returned.
func (c *Client) DeleteMonitoredModel(ctx context.Context, modelID string) (*datatypes.MonitoredModel, error) {
	var out datatypes.MonitoredModel
	if err := c.do(ctx, http.MethodDelete, "/v1/monitored-models/"+modelID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMLModelMetadata reports the shape of a model's stored blob.
func (c *Client) GetMLModelMetadata(ctx context.Context, modelID string) (*datatypes.MLModelMetadata, error) {
	var out datatypes.MLModelMetadata
	if err := c.do(ctx, http.MethodGet, "/v1/monitored-models/"+modelID+"/ml-model", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Predict scores input rows against a monitored model.
func (c *Client) Predict(ctx context.Context, modelID string, rows []map[string]any) ([]datatypes.PredictionData, error) {
	var out struct {
		Predictions []datatypes.PredictionData `json:"predictions"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/monitored-models/"+modelID+"/predict", rows, &out); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}
