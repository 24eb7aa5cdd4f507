package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_ingested_total",
			Help: "Notification events handled, by result (created, aggregated, failed)",
		},
		[]string{"result"},
	)

	jobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_jobs_enqueued_total",
			Help: "Delivery jobs published, by channel",
		},
		[]string{"channel"},
	)

	deliveryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_delivery_outcomes_total",
			Help: "Delivery job outcomes, by channel and outcome (sent, retry, dead_letter)",
		},
		[]string{"channel", "outcome"},
	)

	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_delivery_duration_seconds",
			Help:    "Processor latency per delivery job",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)

const (
	outcomeSent       = "sent"
	outcomeRetry      = "retry"
	outcomeDeadLetter = "dead_letter"
)
