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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChart(chartType string) InteractiveChart {
	return InteractiveChart{
		ChartType:  chartType,
		Name:       "loss",
		ChartTitle: "Loss over epochs",
		XData:      [][]float64{{1, 2, 3}},
		YData:      [][]float64{{0.9, 0.5, 0.2}},
	}
}

// TestInteractiveChartUnknownType verifies that a chart type outside the
// closed set is rejected.
func TestInteractiveChartUnknownType(t *testing.T) {
	c := validChart("heatmap")
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Chart type must be one of")
}

// TestInteractiveChartScatterShapes verifies the scatter/line pairing rules:
// series pair positionally, except a single x-series may back many y-series.
func TestInteractiveChartScatterShapes(t *testing.T) {
	c := validChart("scatter")
	assert.NoError(t, c.Validate())

	// One x-series shared by two y-series of matching length.
	c.YData = [][]float64{{0.9, 0.5, 0.2}, {1.0, 0.8, 0.6}}
	assert.NoError(t, c.Validate())

	// Shared x-series with a mismatched y-series.
	c.YData = [][]float64{{0.9, 0.5, 0.2}, {1.0}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Length of x_data and y_data must be equal")

	// Positional pairing with a length mismatch.
	c = validChart("line")
	c.XData = [][]float64{{1, 2, 3}, {1, 2}}
	c.YData = [][]float64{{0.9, 0.5, 0.2}, {1.0, 0.8, 0.6}}
	assert.Error(t, c.Validate())
}

// TestInteractiveChartBarShape verifies that bar charts take exactly one
// x-series and per-series length matching.
func TestInteractiveChartBarShape(t *testing.T) {
	c := validChart("bar")
	c.YData = [][]float64{{0.9, 0.5, 0.2}, {1.0, 0.8, 0.6}}
	assert.NoError(t, c.Validate())

	c.XData = [][]float64{{1, 2, 3}, {4, 5, 6}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x_data can only have one list of data")
}

// TestInteractiveChartPieShape verifies the single-series rule for pie
// charts.
func TestInteractiveChartPieShape(t *testing.T) {
	c := validChart("pie")
	assert.NoError(t, c.Validate())

	c.YData = [][]float64{{0.9}, {0.5}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x_data and y_data can only have one list of data")

	c = validChart("pie")
	c.YData = [][]float64{{0.9, 0.5}}
	assert.Error(t, c.Validate())
}

// TestInteractiveChartBoxplotShape verifies that each x value needs one
// y-series of exactly five summary values.
func TestInteractiveChartBoxplotShape(t *testing.T) {
	c := validChart("boxplot")
	c.XData = [][]float64{{1, 2}}
	c.YData = [][]float64{{0, 1, 2, 3, 4}, {1, 2, 3, 4, 5}}
	assert.NoError(t, c.Validate())

	c.YData = [][]float64{{0, 1, 2, 3, 4}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "there must be a list of y_data")

	c.YData = [][]float64{{0, 1, 2}, {1, 2, 3}}
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min, q1, median, q3, max")
}

// TestInteractiveChartYDataNames verifies that y_data_names, when present,
// must match the number of y-series.
func TestInteractiveChartYDataNames(t *testing.T) {
	c := validChart("line")
	c.YDataNames = []string{"train"}
	assert.NoError(t, c.Validate())

	c.YDataNames = []string{"train", "validation"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "y_data_names and y_data must be equal")
}
