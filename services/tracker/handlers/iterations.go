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

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/services"
)

// ListIterations returns all iterations of an experiment.
func ListIterations(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		iterations, err := svc.List(projectID, experimentID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"iterations": iterations})
	}
}

// CreateIteration appends an iteration to an experiment.
func CreateIteration(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		var it datatypes.Iteration
		if err := c.ShouldBindJSON(&it); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.Create(projectID, experimentID, &it)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetIteration returns one iteration by id.
func GetIteration(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		iterationID, ok := pathID(c, "iteration_id")
		if !ok {
			return
		}
		it, err := svc.Get(projectID, experimentID, iterationID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// GetIterationsByName returns the iterations sharing a name.
func GetIterationsByName(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		iterations, err := svc.GetByName(projectID, experimentID, c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"iterations": iterations})
	}
}

// UpdateIteration renames an iteration.
func UpdateIteration(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		iterationID, ok := pathID(c, "iteration_id")
		if !ok {
			return
		}
		var patch datatypes.UpdateIteration
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		it, err := svc.Update(projectID, experimentID, iterationID, &patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// DeleteIteration removes one iteration.
func DeleteIteration(svc *services.IterationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		experimentID, ok := pathID(c, "experiment_id")
		if !ok {
			return
		}
		iterationID, ok := pathID(c, "iteration_id")
		if !ok {
			return
		}
		if err := svc.Delete(projectID, experimentID, iterationID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
