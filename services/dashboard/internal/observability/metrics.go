package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fraud_dashboard",
			Name:      "predictions_submitted_total",
			Help:      "Prediction requests issued to the scoring service",
		},
	)

	PredictionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud_dashboard",
			Name:      "prediction_outcomes_total",
			Help:      "Settled predictions by outcome (fraud, legitimate, validation, transport, timeout)",
		},
		[]string{"outcome"},
	)

	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fraud_dashboard",
			Name:      "stale_responses_discarded_total",
			Help:      "Prediction responses dropped because a reset or newer submission superseded them",
		},
	)

	PredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fraud_dashboard",
			Name:      "prediction_duration_seconds",
			Help:      "Latency of prediction round trips, discarded ones included",
			Buckets:   prometheus.DefBuckets,
		},
	)

	InsightsLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud_dashboard",
			Name:      "insights_loads_total",
			Help:      "Insights fetches by result (loaded, unavailable)",
		},
		[]string{"result"},
	)

	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud_dashboard",
			Name:      "scoring_requests_total",
			Help:      "Outbound scoring service calls by operation and result",
		},
		[]string{"op", "result"},
	)
)
