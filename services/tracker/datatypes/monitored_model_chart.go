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
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AleutianAI/AleutianTrack/services/tracker/apperrors"
)

// MonitoredModelChartTypes is the closed set of diagnostic chart types built
// from a model's prediction log.
var MonitoredModelChartTypes = []string{
	"histogram", "countplot", "scatter", "scatter_with_histograms",
	"timeseries", "regression_metrics", "classification_metrics",
}

// BinMethods valid for histogram-style charts. bin_number is allowed only
// with fixedNumber.
var BinMethods = []string{"squareRoot", "scott", "freedmanDiaconis", "sturges", "fixedNumber"}

// Metric sets allowed per metrics-chart kind.
var (
	RegressionMetrics     = []string{"r2", "mse", "rmse", "mae", "medae", "msle", "rmsle", "smape"}
	ClassificationMetrics = []string{"accuracy", "precision", "recall", "f1score", "mcc"}
)

// MonitoredModelChart is a chart configuration over a monitored model's
// prediction log. The (chart_type, first_column, second_column) tuple is
// unique per model.
type MonitoredModelChart struct {
	ID               primitive.ObjectID `json:"id"`
	MonitoredModelID primitive.ObjectID `json:"monitored_model_id"`
	ChartType        string             `json:"chart_type" binding:"required,min=1,max=100"`
	FirstColumn      string             `json:"first_column,omitempty" binding:"omitempty,min=1,max=100"`
	SecondColumn     *string            `json:"second_column,omitempty" binding:"omitempty,min=1,max=100"`
	BinMethod        *string            `json:"bin_method,omitempty" binding:"omitempty,min=1,max=100"`
	BinNumber        *int               `json:"bin_number,omitempty"`
	Metrics          []string           `json:"metrics,omitempty"`
}

// ColumnKind is the inferred type of a prediction-frame column.
type ColumnKind int

const (
	ColumnMissing ColumnKind = iota
	ColumnNumeric
	ColumnString
	ColumnMixed
)

// PredictionFrameKinds infers a column-name -> kind mapping from the
// prediction log: every input column plus the synthetic 'prediction' and
// 'actual' columns.
func PredictionFrameKinds(predictions []PredictionData) map[string]ColumnKind {
	kinds := make(map[string]ColumnKind)
	merge := func(col string, k ColumnKind) {
		prev, ok := kinds[col]
		if !ok || prev == ColumnMissing {
			kinds[col] = k
			return
		}
		if prev != k {
			kinds[col] = ColumnMixed
		}
	}
	for _, p := range predictions {
		for col, v := range p.InputData {
			merge(col, valueKind(v))
		}
		merge("prediction", ColumnNumeric)
		if p.Actual != nil {
			merge("actual", ColumnNumeric)
		}
	}
	return kinds
}

func valueKind(v any) ColumnKind {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return ColumnNumeric
	case string:
		return ColumnString
	default:
		return ColumnMixed
	}
}

// Validate checks the chart against the prediction frame. Performed before
// the chart list is mutated so failures leave the model untouched.
func (c *MonitoredModelChart) Validate(frame map[string]ColumnKind) error {
	if !containsString(MonitoredModelChartTypes, c.ChartType) {
		return apperrors.Newf(apperrors.KindConsistency,
			"Chart type must be one of %v", MonitoredModelChartTypes)
	}

	switch c.ChartType {
	case "histogram":
		if err := c.requireColumn(frame, c.FirstColumn, ColumnNumeric, "numeric", "first_column"); err != nil {
			return err
		}
		if err := c.requireNoSecondColumn(); err != nil {
			return err
		}
		if err := c.validateBinFields(); err != nil {
			return err
		}
	case "countplot":
		if err := c.requireStringOrNumericColumn(frame, c.FirstColumn, "first_column"); err != nil {
			return err
		}
		if err := c.requireNoSecondColumn(); err != nil {
			return err
		}
		if err := c.requireNoBinFields(); err != nil {
			return err
		}
	case "scatter":
		if err := c.requireScatterColumns(frame); err != nil {
			return err
		}
		if err := c.requireNoBinFields(); err != nil {
			return err
		}
	case "scatter_with_histograms":
		if err := c.requireScatterColumns(frame); err != nil {
			return err
		}
		if err := c.validateBinFields(); err != nil {
			return err
		}
	case "timeseries":
		if err := c.requireColumn(frame, c.FirstColumn, ColumnNumeric, "numeric", "first_column"); err != nil {
			return err
		}
		if err := c.requireNoSecondColumn(); err != nil {
			return err
		}
		if err := c.requireNoBinFields(); err != nil {
			return err
		}
	case "regression_metrics":
		return c.validateMetricsChart(RegressionMetrics)
	case "classification_metrics":
		return c.validateMetricsChart(ClassificationMetrics)
	}

	if len(c.Metrics) > 0 {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid value for 'metrics'. Must be None for chart type '%s'.", c.ChartType)
	}

	return nil
}

func (c *MonitoredModelChart) requireColumn(frame map[string]ColumnKind, col string,
	want ColumnKind, wantName, field string) error {
	kind, ok := frame[col]
	if !ok || kind == ColumnMissing {
		return apperrors.Newf(apperrors.KindConsistency,
			"Column '%s' does not exist in predictions data.", col)
	}
	if kind != want {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid type for '%s'. Must be %s for chart type '%s'", field, wantName, c.ChartType)
	}
	return nil
}

func (c *MonitoredModelChart) requireStringOrNumericColumn(frame map[string]ColumnKind,
	col, field string) error {
	kind, ok := frame[col]
	if !ok || kind == ColumnMissing {
		return apperrors.Newf(apperrors.KindConsistency,
			"Column '%s' does not exist in predictions data.", col)
	}
	if kind != ColumnNumeric && kind != ColumnString {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid type for '%s'. Must be string or numeric for chart type '%s'", field, c.ChartType)
	}
	return nil
}

func (c *MonitoredModelChart) requireScatterColumns(frame map[string]ColumnKind) error {
	if c.SecondColumn == nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid type for 'second_column'. Must be numeric for chart type '%s'", c.ChartType)
	}
	if err := c.requireColumn(frame, c.FirstColumn, ColumnNumeric, "numeric", "first_column or second_column"); err != nil {
		return err
	}
	if err := c.requireColumn(frame, *c.SecondColumn, ColumnNumeric, "numeric", "first_column or second_column"); err != nil {
		return err
	}
	if c.FirstColumn == *c.SecondColumn {
		return apperrors.Newf(apperrors.KindConsistency,
			"First column and second column must be different for chart type '%s'.", c.ChartType)
	}
	return nil
}

func (c *MonitoredModelChart) requireNoSecondColumn() error {
	if c.SecondColumn != nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid type for 'second_column'. Must be None for chart type '%s'", c.ChartType)
	}
	return nil
}

// validateBinFields applies the histogram binning rules: bin_method from the
// closed set, bin_number an integer > 1 exactly when the method is
// fixedNumber.
func (c *MonitoredModelChart) validateBinFields() error {
	if c.BinMethod == nil || !containsString(BinMethods, *c.BinMethod) {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid bin method for chart type '%s'. Must be one of %v", c.ChartType, BinMethods)
	}
	if *c.BinMethod == "fixedNumber" {
		if c.BinNumber == nil || *c.BinNumber <= 1 {
			return apperrors.New(apperrors.KindConsistency,
				"Invalid type or value for 'bin_number'. Must be integer for bin method 'fixedNumber'. "+
					"Must be greater than 1.")
		}
		return nil
	}
	if c.BinNumber != nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid value for 'bin_number'. Must be None for chart type '%s'.", c.ChartType)
	}
	return nil
}

func (c *MonitoredModelChart) requireNoBinFields() error {
	if c.BinMethod != nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid value for 'bin_method'. Must be None for chart type '%s'.", c.ChartType)
	}
	if c.BinNumber != nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid value for 'bin_number'. Must be None for chart type '%s'.", c.ChartType)
	}
	return nil
}

func (c *MonitoredModelChart) validateMetricsChart(allowed []string) error {
	if c.FirstColumn != "" || c.SecondColumn != nil || c.BinMethod != nil || c.BinNumber != nil {
		return apperrors.Newf(apperrors.KindConsistency,
			"Invalid value for 'first_column', 'second_column', 'bin_method' or 'bin_number'. "+
				"Must be None for chart type '%s'.", c.ChartType)
	}
	if len(c.Metrics) == 0 {
		return apperrors.Newf(apperrors.KindConsistency,
			"Metrics must not be empty for chart type '%s'.", c.ChartType)
	}
	for _, m := range c.Metrics {
		if !containsString(allowed, m) {
			return apperrors.Newf(apperrors.KindConsistency,
				"Invalid metric '%s' for chart type '%s'. Must be one of %v", m, c.ChartType, allowed)
		}
	}
	return nil
}
