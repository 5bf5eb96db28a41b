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
	"encoding/json"
	"os"

	"github.com/AleutianAI/AleutianTrack/services/tracker/datatypes"
	"github.com/spf13/cobra"
)

var (
	modelStatus      string
	modelName        string
	modelDescription string
	predictInput     string
	predictFile      string

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "Manage monitored models",
	}

	modelsListCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists monitored models",
		Run:   runModelsList,
	}

	modelsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Registers a monitored model in idle status",
		Long: `Registers a monitored model. Models start idle; assign an iteration
through the API to activate one for serving predictions.`,
		Run: runModelsCreate,
	}

	modelsDeleteCmd = &cobra.Command{
		Use:   "delete [model-id]",
		Short: "Deletes a monitored model and releases its iteration",
		Args:  cobra.ExactArgs(1),
		Run:   runModelsDelete,
	}

	modelsMetadataCmd = &cobra.Command{
		Use:   "metadata [model-id]",
		Short: "Shows the shape of a model's stored blob",
		Args:  cobra.ExactArgs(1),
		Run:   runModelsMetadata,
	}

	modelsPredictCmd = &cobra.Command{
		Use:   "predict [model-id]",
		Short: "Scores input rows against a monitored model",
		Long: `Sends input rows to the model's predict endpoint and prints the logged
predictions. Rows are a JSON array of objects, supplied inline with --input or
from a file with --file.`,
		Args: cobra.ExactArgs(1),
		Run:  runModelsPredict,
	}
)

func init() {
	modelsListCmd.Flags().StringVar(&modelStatus, "status", "",
		"Filter by status (active, idle, archived)")
	modelsCreateCmd.Flags().StringVar(&modelName, "name", "", "Model name (required)")
	modelsCreateCmd.Flags().StringVar(&modelDescription, "description", "", "Model description")
	_ = modelsCreateCmd.MarkFlagRequired("name")
	modelsPredictCmd.Flags().StringVar(&predictInput, "input", "",
		`Inline JSON rows, e.g. '[{"x": 2.0}]'`)
	modelsPredictCmd.Flags().StringVar(&predictFile, "file", "",
		"Path to a JSON file holding the rows")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsCreateCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	modelsCmd.AddCommand(modelsMetadataCmd)
	modelsCmd.AddCommand(modelsPredictCmd)
}

func runModelsList(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	models, err := apiClient().ListMonitoredModels(ctx, modelStatus)
	if err != nil {
		fatalAPI("listing monitored models", err)
	}
	printJSON(models)
}

func runModelsCreate(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	created, err := apiClient().CreateMonitoredModel(ctx, &datatypes.MonitoredModel{
		ModelName:        modelName,
		ModelDescription: modelDescription,
	})
	if err != nil {
		fatalAPI("creating monitored model", err)
	}
	printJSON(created)
}

func runModelsDelete(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	deleted, err := apiClient().DeleteMonitoredModel(ctx, args[0])
	if err != nil {
		fatalAPI("deleting monitored model", err)
	}
	printJSON(deleted)
}

func runModelsMetadata(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	meta, err := apiClient().GetMLModelMetadata(ctx, args[0])
	if err != nil {
		fatalAPI("fetching model metadata", err)
	}
	printJSON(meta)
}

func runModelsPredict(cmd *cobra.Command, args []string) {
	rows, err := loadPredictRows()
	if err != nil {
		fatalAPI("reading input rows", err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	predictions, err := apiClient().Predict(ctx, args[0], rows)
	if err != nil {
		fatalAPI("making predictions", err)
	}
	printJSON(predictions)
}

// loadPredictRows reads the prediction rows from --input or --file. Exactly
// one of the two must be set.
func loadPredictRows() ([]map[string]any, error) {
	raw := []byte(predictInput)
	if predictFile != "" {
		var err error
		raw, err = os.ReadFile(predictFile)
		if err != nil {
			return nil, err
		}
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
