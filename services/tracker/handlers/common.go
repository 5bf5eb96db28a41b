// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers maps the tracker's HTTP surface onto the services layer.
//
// Handlers stay thin: bind, parse ids, call one service operation, translate
// the error taxonomy to a status code. Error bodies carry a single "detail"
// string whose text clients match on.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/observability"
)

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError translates a service error to its HTTP response.
func writeError(c *gin.Context, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		observability.DefaultMetrics.ObserveDomainError(kindLabel(domainErr.Kind))
		c.JSON(domainErr.HTTPStatus(), gin.H{"detail": domainErr.Detail})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
}

// writeBindError reports a malformed request body.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func kindLabel(kind apperrors.Kind) string {
	switch kind {
	case apperrors.KindNotFound:
		return "not_found"
	case apperrors.KindInvalidID:
		return "invalid_id"
	case apperrors.KindUniqueness:
		return "uniqueness"
	case apperrors.KindConsistency:
		return "consistency"
	case apperrors.KindAssignment:
		return "assignment"
	case apperrors.KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// pathID parses a 24-hex id path parameter, writing the invalid-id response
// on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		writeError(c, apperrors.ErrInvalidID)
		return primitive.NilObjectID, false
	}
	return id, true
}

// archivedQuery parses the optional ?archived= filter.
func archivedQuery(c *gin.Context) (*bool, bool) {
	raw, present := c.GetQuery("archived")
	if !present {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid value for 'archived'. Must be a boolean."})
		return nil, false
	}
	return &v, true
}
