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
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string

	rootCmd = &cobra.Command{
		Use:   "trackctl",
		Short: "A CLI to manage AleutianTrack experiment tracking",
		Long: `Trackctl talks to a running tracker instance to manage projects,
experiments, iterations, datasets, and monitored models from the command line.`,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	defaultURL := os.Getenv("TRACKER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:12310"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL,
		"Base URL of the tracker API (or set TRACKER_URL)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(modelsCmd)
}
