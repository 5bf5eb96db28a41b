// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// TestTagListValidation verifies the comma-separated tag rule used by
// dataset binding.
func TestTagListValidation(t *testing.T) {
	v := validator.New()
	_ = v.RegisterValidation("taglist", validateTagList)

	type form struct {
		Tags string `validate:"omitempty,taglist"`
	}

	assert.NoError(t, v.Struct(form{Tags: ""}))
	assert.NoError(t, v.Struct(form{Tags: "vision"}))
	assert.NoError(t, v.Struct(form{Tags: "vision, batch-7 ,prod"}))

	assert.Error(t, v.Struct(form{Tags: "vision,,prod"}), "blank tag rejected")
	assert.Error(t, v.Struct(form{Tags: "a," + strings.Repeat("x", MaxTagLength+1)}),
		"overlong tag rejected")
}
