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

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxTagLength bounds a single tag inside a comma-separated tag list.
const MaxTagLength = 40

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("taglist", validateTagList)
	}
}

// validateTagList accepts comma-separated tags where every tag is non-blank
// and at most MaxTagLength characters.
func validateTagList(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	for _, tag := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || len(trimmed) > MaxTagLength {
			return false
		}
	}
	return true
}
