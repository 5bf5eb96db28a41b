// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/services"
)

// ListExperiments returns all experiments of a project.
func ListExperiments(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experiments, err := svc.List(projectID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"experiments": experiments})
	}
}

// CreateExperiment appends an experiment to a project.
func CreateExperiment(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		var exp datatypes.Experiment
		if err := c.ShouldBindJSON(&exp); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.Create(projectID, &exp)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetExperiment returns one experiment by id.
func GetExperiment(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		exp, err := svc.Get(projectID, experimentID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, exp)
	}
}

// GetExperimentByName returns one experiment by its project-unique name.
func GetExperimentByName(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		exp, err := svc.GetByName(projectID, c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, exp)
	}
}

// UpdateExperiment applies a partial patch to an experiment.
func UpdateExperiment(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		var patch datatypes.UpdateExperiment
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		exp, err := svc.Update(projectID, experimentID, &patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, exp)
	}
}

// DeleteExperiment removes an experiment and its iterations.
func DeleteExperiment(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		if err := svc.Delete(projectID, experimentID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DeleteIterationsRequest maps experiment ids to the iteration ids to remove
// from each.
type DeleteIterationsRequest map[string][]string

// DeleteIterations bulk-deletes iterations across a project's experiments.
func DeleteIterations(svc *services.ExperimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		var req DeleteIterationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}

		byExperiment := make(map[primitive.ObjectID][]primitive.ObjectID, len(req))
		for rawExpID, rawIterIDs := range req {
			expID, err := primitive.ObjectIDFromHex(rawExpID)
			if err != nil {
				writeError(c, apperrors.ErrInvalidID)
				return
			}
			for _, rawIterID := range rawIterIDs {
				iterID, err := primitive.ObjectIDFromHex(rawIterID)
				if err != nil {
					writeError(c, apperrors.ErrInvalidID)
					return
				}
				byExperiment[expID] = append(byExperiment[expID], iterID)
			}
		}

		if err := svc.DeleteIterations(projectID, byExperiment); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
