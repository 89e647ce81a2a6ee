/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics defines the metrics recorded by the client packages.
package metrics

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "fabdev"

var (
	submissions = prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "transaction",
		Name:      "submissions",
		Help:      "The number of transaction submissions by kind and outcome.",
	}
	submissionDuration = prom.HistogramOpts{
		Namespace: namespace,
		Subsystem: "transaction",
		Name:      "submission_duration",
		Help:      "The time to complete a transaction submission, in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}
	queries = prom.CounterOpts{
		Namespace: namespace,
		Subsystem: "transaction",
		Name:      "queries",
		Help:      "The number of chaincode queries by outcome.",
	}
)

// Submission outcomes
const (
	Committed        = "committed"
	ProposalRejected = "proposal_rejected"
	ValidationFailed = "validation_failed"
	HandlerFailed    = "event_handler_failed"
	OrderingRejected = "ordering_rejected"
	Timeout          = "timeout"
	CommitFailed     = "commit_failed"
	Succeeded        = "succeeded"
	Failed           = "failed"
)

// ClientMetrics contains the metrics used by the transaction clients
type ClientMetrics struct {
	// Submissions is labelled with kind and outcome
	Submissions kitmetrics.Counter
	// SubmissionDuration is labelled with kind
	SubmissionDuration kitmetrics.Histogram
	// Queries is labelled with outcome
	Queries kitmetrics.Counter
}

// NewClientMetrics registers the client metrics with the Prometheus registerer
func NewClientMetrics(registerer prom.Registerer) *ClientMetrics {
	submissionsVec := prom.NewCounterVec(submissions, []string{"kind", "outcome"})
	durationVec := prom.NewHistogramVec(submissionDuration, []string{"kind"})
	queriesVec := prom.NewCounterVec(queries, []string{"outcome"})
	registerer.MustRegister(submissionsVec, durationVec, queriesVec)

	return &ClientMetrics{
		Submissions:        kitprometheus.NewCounter(submissionsVec),
		SubmissionDuration: kitprometheus.NewHistogram(durationVec),
		Queries:            kitprometheus.NewCounter(queriesVec),
	}
}

// NewDiscardMetrics returns metrics that record nothing
func NewDiscardMetrics() *ClientMetrics {
	return &ClientMetrics{
		Submissions:        discard.NewCounter(),
		SubmissionDuration: discard.NewHistogram(),
		Queries:            discard.NewCounter(),
	}
}
