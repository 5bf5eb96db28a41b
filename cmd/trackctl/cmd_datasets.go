// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/spf13/cobra"
)

var (
	datasetArchived    bool
	datasetAllArchived bool
	datasetName        string
	datasetPath        string
	datasetVersion     string
	datasetDescription string
	datasetTags        string

	datasetsCmd = &cobra.Command{
		Use:   "datasets",
		Short: "Manage registered datasets",
	}

	datasetsListCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists datasets",
		Run:   runDatasetsList,
	}

	datasetsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Registers a dataset by name and location",
		Long: `Registers a dataset. The location is validated before the dataset is
stored: http(s) URLs must answer a GET request, any other value must exist as
a local path.`,
		Run: runDatasetsCreate,
	}

	datasetsDeleteCmd = &cobra.Command{
		Use:   "delete [dataset-id]",
		Short: "Deletes a dataset and unlinks every iteration that used it",
		Args:  cobra.ExactArgs(1),
		Run:   runDatasetsDelete,
	}
)

func init() {
	datasetsListCmd.Flags().BoolVar(&datasetArchived, "archived", false,
		"Show only archived datasets")
	datasetsListCmd.Flags().BoolVar(&datasetAllArchived, "all", false,
		"Show both active and archived datasets")
	datasetsCreateCmd.Flags().StringVar(&datasetName, "name", "", "Dataset name (required)")
	datasetsCreateCmd.Flags().StringVar(&datasetPath, "path", "", "Local path or URL (required)")
	datasetsCreateCmd.Flags().StringVar(&datasetVersion, "version", "", "Dataset version")
	datasetsCreateCmd.Flags().StringVar(&datasetDescription, "description", "", "Dataset description")
	datasetsCreateCmd.Flags().StringVar(&datasetTags, "tags", "", "Free-form tags")
	_ = datasetsCreateCmd.MarkFlagRequired("name")
	_ = datasetsCreateCmd.MarkFlagRequired("path")

	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsCreateCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
}

func runDatasetsList(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	var archived *bool
	if !datasetAllArchived {
		archived = &datasetArchived
	}
	datasets, err := apiClient().ListDatasets(ctx, archived)
	if err != nil {
		fatalAPI("listing datasets", err)
	}
	printJSON(datasets)
}

func runDatasetsCreate(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	created, err := apiClient().CreateDataset(ctx, &datatypes.Dataset{
		DatasetName:        datasetName,
		PathToDataset:      datasetPath,
		Version:            datasetVersion,
		DatasetDescription: datasetDescription,
		Tags:               datasetTags,
	})
	if err != nil {
		fatalAPI("creating dataset", err)
	}
	printJSON(created)
}

func runDatasetsDelete(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	if err := apiClient().DeleteDataset(ctx, args[0]); err != nil {
		fatalAPI("deleting dataset", err)
	}
	fmt.Println("Dataset deleted.")
}
