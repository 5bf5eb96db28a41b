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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/AleutianTrack/client"
)

const commandTimeout = 30 * time.Second

// apiClient builds a client for the configured server URL.
func apiClient() *client.Client {
	return client.New(serverURL)
}

// commandContext returns a context bounded by the per-command timeout.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// printJSON writes indented JSON to stdout.
func printJSON(data any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

// fatalAPI reports an API failure and exits. Server-side detail messages are
// shown verbatim so the user sees the same text the HTTP API returns.
func fatalAPI(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", action, err)
	os.Exit(1)
}
