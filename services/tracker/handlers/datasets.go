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

// ListDatasets returns all datasets, optionally filtered by ?archived=.
func ListDatasets(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		archived, ok := archivedQuery(c)
		if !ok {
			return
		}
		datasets, err := svc.List(archived)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"datasets": datasets})
	}
}

// CreateDataset inserts a new dataset.
func CreateDataset(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dataset datatypes.Dataset
		if err := c.ShouldBindJSON(&dataset); err != nil {
			writeBindError(c, err)
			return
		}
		created, err := svc.Create(&dataset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetDataset returns one dataset by id.
func GetDataset(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "dataset_id")
		if !ok {
			return
		}
		dataset, err := svc.Get(id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dataset)
	}
}

// GetDatasetsByName returns every version of the named dataset.
func GetDatasetsByName(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasets, err := svc.GetByName(c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"datasets": datasets})
	}
}

// GetDatasetByNameVersion returns the dataset matching an exact
// (name, version) pair.
func GetDatasetByNameVersion(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := svc.GetByNameVersion(c.Param("name"), c.Param("version"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dataset)
	}
}

// UpdateDataset applies a partial patch to a dataset.
func UpdateDataset(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "dataset_id")
		if !ok {
			return
		}
		var patch datatypes.UpdateDataset
		if err := c.ShouldBindJSON(&patch); err != nil {
			writeBindError(c, err)
			return
		}
		dataset, err := svc.Update(id, &patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dataset)
	}
}

// DeleteDataset removes a dataset after unlinking its iterations.
func DeleteDataset(svc *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "dataset_id")
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
