// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mlmodel handles monitored-model binary blobs.
//
// A model file on disk is a gob-serialized LinearModel. Monitored models
// store the raw file bytes base64-encoded in their document, so the blob
// survives JSON round-trips; predictions decode it back on demand.
package mlmodel

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"os"
)

// LinearModel is the servable model format: a weighted sum over named input
// features plus a bias term.
type LinearModel struct {
	Bias    float64
	Weights map[string]float64
}

// Predict scores one input row. Features absent from the row contribute
// nothing; non-numeric feature values are an error.
func (m *LinearModel) Predict(input map[string]any) (float64, error) {
	out := m.Bias
	for feature, weight := range m.Weights {
		raw, ok := input[feature]
		if !ok {
			continue
		}
		v, err := asFloat(raw)
		if err != nil {
			return 0, fmt.Errorf("feature %q: %w", feature, err)
		}
		out += weight * v
	}
	return out, nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("value %v is not numeric", v)
}

// EncodeFile reads a model file and returns its base64 blob for document
// storage. The file contents are not interpreted here.
func EncodeFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read model file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode turns a stored base64 blob back into a servable model.
func Decode(encoded string) (*LinearModel, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode model blob: %w", err)
	}
	var model LinearModel
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode model blob: %w", err)
	}
	return &model, nil
}

// WriteFile gob-serializes a model to path. Used by tooling and tests to
// produce loadable model files.
func WriteFile(path string, model *LinearModel) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(model); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}
