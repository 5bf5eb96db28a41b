// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for user-provided
// resource locations.
//
// Dataset and model locations arrive as free-form strings that may be either
// local filesystem paths or HTTP(S) URLs. Validation here establishes that
// the resource is plausibly reachable at write time; it is not a liveness
// guarantee at read time.
package validation

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
)

// Validation failures for resource locations. Callers map these onto their
// own error taxonomy.
var (
	// ErrEmptyLocation means no path or URL was supplied at all.
	ErrEmptyLocation = errors.New("location is empty")

	// ErrBadStatus means the URL answered with a non-2xx status.
	ErrBadStatus = errors.New("url returned an error status")

	// ErrUnreachable means the URL could not be resolved or connected to,
	// or a local path does not exist.
	ErrUnreachable = errors.New("location is unreachable")
)

// DefaultTimeout bounds the live URL probe.
const DefaultTimeout = 10 * time.Second

// CheckResource verifies that location is a readable local path or a
// reachable HTTP(S) URL. URLs are probed with a live GET; any 2xx answer
// counts as reachable.
func CheckResource(location string) error {
	return CheckResourceWithClient(location, &http.Client{Timeout: DefaultTimeout})
}

// CheckResourceWithClient is CheckResource with a caller-supplied HTTP
// client. Tests inject a client bound to a local test server.
func CheckResourceWithClient(location string, client *http.Client) error {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return ErrEmptyLocation
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		resp, err := client.Get(trimmed)
		if err != nil {
			return ErrUnreachable
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return ErrBadStatus
		}
		return nil
	}

	if _, err := os.Stat(trimmed); err != nil {
		return ErrUnreachable
	}
	return nil
}
