// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package apperrors defines the error taxonomy shared by the tracker's
// services and handlers.
//
// Every domain failure is an *Error carrying a machine-checkable Kind and a
// human-readable Detail. Handlers translate Kind to an HTTP status; clients
// match on Detail substrings, so the texts here are part of the API contract
// and must stay stable.
package apperrors

import (
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindNotFound indicates an id or name lookup failed.
	KindNotFound Kind = iota + 1

	// KindInvalidID indicates a malformed document id.
	KindInvalidID

	// KindUniqueness indicates a create/update would produce a duplicate.
	KindUniqueness

	// KindConsistency indicates a status/reference/chart rule violation.
	KindConsistency

	// KindAssignment indicates a monitored-model assignment conflict.
	KindAssignment

	// KindExternal indicates an unreachable path/URL or a blob codec failure.
	KindExternal
)

// Error is a domain error with a stable kind and detail message.
type Error struct {
	Kind   Kind
	Detail string

	// status overrides the kind's default HTTP mapping when non-zero.
	// Dataset path/URL failures are KindExternal but map to 404.
	status int
}

func (e *Error) Error() string { return e.Detail }

// HTTPStatus maps the error to the status code the transport layer returns.
func (e *Error) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidID:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// New builds an error with the kind's default HTTP mapping.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// NewWithStatus builds an error with an explicit HTTP status.
func NewWithStatus(kind Kind, status int, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, status: status}
}

// Newf builds an error with a formatted detail message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Not-found errors.
var (
	ErrProjectNotFound        = New(KindNotFound, "Project not found.")
	ErrExperimentNotFound     = New(KindNotFound, "Experiment not found.")
	ErrIterationNotFound      = New(KindNotFound, "Iteration not found.")
	ErrDatasetNotFound        = New(KindNotFound, "Dataset not found.")
	ErrMonitoredModelNotFound = New(KindNotFound, "Monitored model not found.")
	ErrChartNotFound          = New(KindNotFound, "Monitored model interactive chart not found.")
	ErrPredictionNotFound     = New(KindNotFound, "Prediction not found.")
)

// ErrInvalidID rejects ids that are not 24 hex characters.
var ErrInvalidID = New(KindInvalidID, "Invalid id.")

// Uniqueness violations.
var (
	ErrProjectTitleNotUnique           = New(KindUniqueness, "Project with that title already exists.")
	ErrExperimentNameNotUnique         = New(KindUniqueness, "Experiment name already exists.")
	ErrDatasetNameAndVersionNotUnique  = New(KindUniqueness, "Dataset with that name and version already exists.")
	ErrMonitoredModelNameNotUnique     = New(KindUniqueness, "Monitored model name already exists.")
	ErrChartNamesInIterationNotUnique  = New(KindConsistency, "Chart names in iteration must be unique")
	ErrChartColumnsNotUnique           = New(KindUniqueness, "Chart with that type and columns already exists.")
	ErrMonitoredModelCannotChangeChart = New(KindConsistency, "Cannot change columns for existing chart.")
)

// Monitored-model consistency and assignment errors.
var (
	ErrMonitoredModelHasNoIteration = New(KindConsistency,
		"Monitored model has no iteration. Model status must be 'idle' or 'archived'.")
	ErrMonitoredModelHasIteration = New(KindConsistency,
		"Monitored model has iteration. Model status must be 'active' or 'archived'.")
	ErrIterationHasNoPathToModel = New(KindConsistency, "Iteration has no path to model.")
	ErrIterationAlreadyAssigned  = New(KindAssignment, "Iteration is assigned to monitored model.")
	ErrNoMLModelToDecode         = New(KindExternal, "No ml model to decode.")
	ErrNoPredictionsData         = New(KindConsistency, "Monitored model has no predictions data.")
)

// Deletion guards. The text names the scope the assigned iteration was found
// at, because the delete endpoints differ in scope.
var (
	ErrIterationAssignedToModel = New(KindAssignment,
		"Iteration is assigned to monitored model. Cannot delete it. Please delete monitored model first.")
	ErrIterationInExperimentAssigned = New(KindAssignment,
		"Iteration in experiment is assigned to monitored model. Cannot delete it. Please delete monitored model first.")
	ErrIterationInProjectAssigned = New(KindAssignment,
		"Iteration in project is assigned to monitored model. Cannot delete it. Please delete monitored model first.")
)

// Dataset path/URL validation errors. The original API surfaces these as 404.
var (
	ErrPathEmpty = NewWithStatus(KindExternal, http.StatusNotFound,
		"Path or URL is empty. Please, enter path or URL.")
	ErrURLNotAccessible = NewWithStatus(KindExternal, http.StatusNotFound,
		"URL is not accessible or returns an error.")
	ErrURLUnreachable = NewWithStatus(KindExternal, http.StatusNotFound,
		"Invalid URL or unable to connect to the URL.")
)
