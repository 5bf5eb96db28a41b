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

	"github.com/spf13/cobra"
)

// healthCmd pings the tracker and reports whether it is reachable.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Checks that the tracker API is reachable",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		if err := apiClient().Health(ctx); err != nil {
			fatalAPI("tracker is not healthy", err)
		}
		fmt.Printf("Tracker at %s is healthy.\n", serverURL)
	},
}
