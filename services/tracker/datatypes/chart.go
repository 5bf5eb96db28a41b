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
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
)

// InteractiveChartTypes is the closed set of chart types an iteration chart
// may declare.
var InteractiveChartTypes = []string{"scatter", "line", "bar", "pie", "boxplot"}

// InteractiveChart is a chart embedded in an iteration. x_data and y_data are
// parallel lists of series; the shape rules depend on the chart type.
type InteractiveChart struct {
	ID            primitive.ObjectID `json:"id"`
	ChartType     string             `json:"chart_type" binding:"required,min=1,max=100"`
	Name          string             `json:"name" binding:"required,min=1,max=100"`
	ChartTitle    string             `json:"chart_title" binding:"required,min=1,max=100"`
	ChartSubtitle string             `json:"chart_subtitle,omitempty" binding:"omitempty,min=1,max=100"`
	XData         [][]float64        `json:"x_data" binding:"required"`
	YData         [][]float64        `json:"y_data" binding:"required"`
	YDataNames    []string           `json:"y_data_names,omitempty"`
	XLabel        string             `json:"x_label,omitempty" binding:"omitempty,min=1,max=100"`
	YLabel        string             `json:"y_label,omitempty" binding:"omitempty,min=1,max=100"`
	XMin          *float64           `json:"x_min,omitempty"`
	XMax          *float64           `json:"x_max,omitempty"`
	YMin          *float64           `json:"y_min,omitempty"`
	YMax          *float64           `json:"y_max,omitempty"`
	Comparable    bool               `json:"comparable"`
}

// Validate checks the type-specific shape rules. It is called before the
// owning iteration is written; a failure must prevent the whole write.
func (c *InteractiveChart) Validate() error {
	if !containsString(InteractiveChartTypes, c.ChartType) {
		return apperrors.Newf(apperrors.KindConsistency,
			"Chart type must be one of %v", InteractiveChartTypes)
	}

	switch c.ChartType {
	case "scatter", "line":
		if err := validateSeriesLengths(c.XData, c.YData); err != nil {
			return err
		}
	case "bar":
		if len(c.XData) != 1 {
			return apperrors.New(apperrors.KindConsistency,
				"x_data can only have one list of data")
		}
		for _, y := range c.YData {
			if len(c.XData[0]) != len(y) {
				return apperrors.New(apperrors.KindConsistency,
					"Length of x_data and y_data must be equal")
			}
		}
	case "pie":
		if len(c.XData) != 1 || len(c.YData) != 1 {
			return apperrors.New(apperrors.KindConsistency,
				"x_data and y_data can only have one list of data")
		}
		if len(c.XData[0]) != len(c.YData[0]) {
			return apperrors.New(apperrors.KindConsistency,
				"Length of x_data and y_data must be equal")
		}
	case "boxplot":
		if len(c.XData) != 1 {
			return apperrors.New(apperrors.KindConsistency,
				"x_data can only have one list of data")
		}
		if len(c.XData[0]) != len(c.YData) {
			return apperrors.New(apperrors.KindConsistency,
				"Error: For each element in x_data, there must be a list of y_data")
		}
		for _, y := range c.YData {
			if len(y) != 5 {
				return apperrors.New(apperrors.KindConsistency,
					"Length of y_data must contain 5 values: min, q1, median, q3, max")
			}
		}
	}

	if len(c.YDataNames) > 0 && len(c.YDataNames) != len(c.YData) {
		return apperrors.New(apperrors.KindConsistency,
			"Length of y_data_names and y_data must be equal")
	}

	return nil
}

// validateSeriesLengths enforces the scatter/line pairing rule: a single
// x-series may back multiple y-series, otherwise series pair up positionally.
func validateSeriesLengths(xData, yData [][]float64) error {
	if len(xData) == 1 && len(yData) > 1 {
		for _, y := range yData {
			if len(xData[0]) != len(y) {
				return apperrors.New(apperrors.KindConsistency,
					"Length of x_data and y_data must be equal")
			}
		}
		return nil
	}
	n := len(xData)
	if len(yData) < n {
		n = len(yData)
	}
	for i := 0; i < n; i++ {
		if len(xData[i]) != len(yData[i]) {
			return apperrors.New(apperrors.KindConsistency,
				"Length of x_data and y_data must be equal")
		}
	}
	return nil
}

// ImageChart is a pre-rendered chart image embedded in an iteration.
type ImageChart struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name" binding:"required,min=1,max=100"`
	EncodedImage string             `json:"encoded_image" binding:"required"`
	Comparable   bool               `json:"comparable"`
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log output.
func (c *InteractiveChart) String() string {
	return fmt.Sprintf("<Interactive Chart %s>", c.ChartTitle)
}
