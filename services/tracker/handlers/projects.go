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

// ListProjects returns all projects, optionally filtered by ?archived=.
func ListProjects(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		archived, ok := archivedQuery(c)
		if !ok {
			return
		}
		projects, err := svc.List(archived)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

// CreateProject inserts a new project.
func CreateProject(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var project datatypes.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.Create(&project)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetProject returns one project with its full aggregate.
func GetProject(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		project, err := svc.Get(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// GetProjectBase returns the base view: experiment names instead of the
// embedded aggregates.
func GetProjectBase(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		project, err := svc.Get(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, project.Display())
	}
}

// GetProjectByTitle returns one project by its unique title.
func GetProjectByTitle(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := svc.GetByTitle(c.Param("title"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// UpdateProject applies a partial patch to a project.
func UpdateProject(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		var patch datatypes.UpdateProject
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		project, err := svc.Update(id, &patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// DeleteProject removes a project and its aggregate.
func DeleteProject(svc *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "project_id")
		if !ok {
			return
		}
		if err := svc.Delete(id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
