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
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/pkg/validation"
	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

// DatasetService manages datasets and the iteration back-links hanging off
// them.
type DatasetService struct {
	store *store.Store
	log   *slog.Logger

	// checkPath validates a dataset location (local path or URL). Tests
	// swap it out to avoid touching the filesystem or network.
	checkPath func(string) error
}

// NewDatasetService builds a dataset service over the document store.
func NewDatasetService(s *store.Store, log *slog.Logger) *DatasetService {
	return &DatasetService{store: s, log: log, checkPath: validation.CheckResource}
}

// List returns datasets, optionally filtered by the archived flag.
func (ds *DatasetService) List(archived *bool) ([]datatypes.Dataset, error) {
	return store.Find[datatypes.Dataset](ds.store, store.Datasets, func(d *datatypes.Dataset) bool {
		return archived == nil || d.Archived == *archived
	})
}

// Get loads one dataset by id.
func (ds *DatasetService) Get(id primitive.ObjectID) (*datatypes.Dataset, error) {
	dataset, err := store.Get[datatypes.Dataset](ds.store, store.Datasets, id)
	if err != nil {
		return nil, apperrors.ErrDatasetNotFound
	}
	return dataset, nil
}

// GetByName returns every version of the named dataset.
func (ds *DatasetService) GetByName(name string) ([]datatypes.Dataset, error) {
	datasets, err := store.Find[datatypes.Dataset](ds.store, store.Datasets, func(d *datatypes.Dataset) bool {
		return d.DatasetName == name
	})
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return nil, apperrors.ErrDatasetNotFound
	}
	return datasets, nil
}

// GetByNameVersion returns the single dataset matching an exact
// (name, version) pair.
func (ds *DatasetService) GetByNameVersion(name, version string) (*datatypes.Dataset, error) {
	dataset, err := store.FindOne[datatypes.Dataset](ds.store, store.Datasets, func(d *datatypes.Dataset) bool {
		return d.DatasetName == name && d.Version == version
	})
	if err != nil {
		return nil, apperrors.ErrDatasetNotFound
	}
	return dataset, nil
}

// Create inserts a new dataset. The (name, version) pair must be unique and
// the location must be readable.
func (ds *DatasetService) Create(dataset *datatypes.Dataset) (*datatypes.Dataset, error) {
	if err := ds.validateLocation(dataset.PathToDataset); err != nil {
		return nil, err
	}
	if err := ds.checkNameVersionUnique(dataset.DatasetName, dataset.Version, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dataset.ID = primitive.NewObjectID()
	dataset.CreatedAt = now
	dataset.UpdatedAt = now
	if dataset.LinkedIterations == nil {
		dataset.LinkedIterations = map[string]datatypes.LinkTarget{}
	}

	if err := store.Save(ds.store, store.Datasets, dataset.ID, dataset); err != nil {
		return nil, err
	}
	ds.log.Info("dataset created",
		"dataset_id", dataset.ID.Hex(), "name", dataset.DatasetName, "version", dataset.Version)
	return dataset, nil
}

// Update applies a partial patch. A path change is re-validated; a name or
// version change is re-checked for uniqueness and then propagated to the
// cached dataset reference on every linked iteration.
func (ds *DatasetService) Update(id primitive.ObjectID, patch *datatypes.UpdateDataset) (*datatypes.Dataset, error) {
	dataset, err := ds.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.PathToDataset != nil && *patch.PathToDataset != dataset.PathToDataset {
		if err := ds.validateLocation(*patch.PathToDataset); err != nil {
			return nil, err
		}
	}

	newName := dataset.DatasetName
	if patch.DatasetName != nil {
		newName = *patch.DatasetName
	}
	newVersion := dataset.Version
	if patch.Version != nil {
		newVersion = *patch.Version
	}
	renamed := newName != dataset.DatasetName || newVersion != dataset.Version
	if renamed {
		if err := ds.checkNameVersionUnique(newName, newVersion, id); err != nil {
			return nil, err
		}
	}

	dataset.DatasetName = newName
	dataset.Version = newVersion
	if patch.PathToDataset != nil {
		dataset.PathToDataset = *patch.PathToDataset
	}
	if patch.DatasetDescription != nil {
		dataset.DatasetDescription = *patch.DatasetDescription
	}
	if patch.Tags != nil {
		dataset.Tags = *patch.Tags
	}
	if patch.Archived != nil {
		dataset.Archived = *patch.Archived
	}
	dataset.UpdatedAt = time.Now().UTC()

	// Linked iterations first, the dataset last: if resolving a link fails,
	// nothing has been written yet.
	if renamed {
		if err := propagateDatasetRename(ds.store, dataset); err != nil {
			return nil, err
		}
	}
	if err := store.Save(ds.store, store.Datasets, dataset.ID, dataset); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Delete removes a dataset after clearing the cached dataset reference from
// every linked iteration.
func (ds *DatasetService) Delete(id primitive.ObjectID) error {
	dataset, err := ds.Get(id)
	if err != nil {
		return err
	}
	if err := clearDatasetLinks(ds.store, dataset); err != nil {
		return err
	}
	if err := store.Delete(ds.store, store.Datasets, id); err != nil {
		return err
	}
	ds.log.Info("dataset deleted", "dataset_id", id.Hex(), "name", dataset.DatasetName)
	return nil
}

func (ds *DatasetService) validateLocation(location string) error {
	switch err := ds.checkPath(location); {
	case err == nil:
		return nil
	case errors.Is(err, validation.ErrEmptyLocation):
		return apperrors.ErrPathEmpty
	case errors.Is(err, validation.ErrBadStatus):
		return apperrors.ErrURLNotAccessible
	default:
		return apperrors.ErrURLUnreachable
	}
}

func (ds *DatasetService) checkNameVersionUnique(name, version string, self primitive.ObjectID) error {
	_, err := store.FindOne[datatypes.Dataset](ds.store, store.Datasets, func(d *datatypes.Dataset) bool {
		return d.DatasetName == name && d.Version == version && d.ID != self
	})
	if err == nil {
		return apperrors.ErrDatasetNameAndVersionNotUnique
	}
	if !errors.Is(err, store.ErrNoSuchDocument) {
		return err
	}
	return nil
}
