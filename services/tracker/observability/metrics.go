// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the tracker.
//
// Metrics are exposed via the /metrics endpoint. All metric operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for tracker metrics
const trackerSubsystem = "tracker"

// TrackerMetrics holds the Prometheus metrics for tracker request handling
// and consistency maintenance. Initialize once at startup via InitMetrics().
type TrackerMetrics struct {
	// RequestsTotal counts API requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency.
	// Labels: method, route
	RequestDurationSeconds *prometheus.HistogramVec

	// DomainErrorsTotal counts domain failures surfaced to clients.
	// Labels: kind (not_found, invalid_id, uniqueness, consistency,
	// assignment, external)
	DomainErrorsTotal *prometheus.CounterVec

	// LinkWritesTotal counts back-reference maintenance writes.
	// Labels: relation (dataset_iteration, model_iteration), op (link, unlink)
	LinkWritesTotal *prometheus.CounterVec

	// PredictionsTotal counts logged predictions per monitored model.
	// Labels: model_name
	PredictionsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of TrackerMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *TrackerMetrics

// InitMetrics creates and registers all tracker metrics. Call once at
// application startup.
func InitMetrics() *TrackerMetrics {
	m := &TrackerMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "requests_total",
			Help:      "Total API requests by method, route, and status.",
		}, []string{"method", "route", "status"}),

		RequestDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DomainErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "domain_errors_total",
			Help:      "Domain errors surfaced to clients, by error kind.",
		}, []string{"kind"}),

		LinkWritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "link_writes_total",
			Help:      "Back-reference maintenance writes by relation and operation.",
		}, []string{"relation", "op"}),

		PredictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "predictions_total",
			Help:      "Predictions logged per monitored model.",
		}, []string{"model_name"}),
	}
	DefaultMetrics = m
	return m
}

// ObserveRequest records one finished API request.
func (m *TrackerMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}

// ObserveDomainError records one domain failure by kind label.
func (m *TrackerMetrics) ObserveDomainError(kind string) {
	if m == nil {
		return
	}
	m.DomainErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveLinkWrite records one back-reference maintenance write.
func (m *TrackerMetrics) ObserveLinkWrite(relation, op string) {
	if m == nil {
		return
	}
	m.LinkWritesTotal.WithLabelValues(relation, op).Inc()
}

// ObservePrediction records one logged prediction.
func (m *TrackerMetrics) ObservePrediction(modelName string) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(modelName).Inc()
}
