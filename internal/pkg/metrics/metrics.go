// Package metrics defines the Prometheus counters of the survey bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "survey_bot"

var (
	SurveysStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surveys_started_total",
			Help:      "Surveys started, including restarts that overwrite a session.",
		},
		[]string{"kind"},
	)

	SurveysCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surveys_completed_total",
			Help:      "Surveys whose last question was answered.",
		},
		[]string{"kind"},
	)

	SurveysCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surveys_cancelled_total",
			Help:      "Surveys cancelled by the user.",
		},
		[]string{"kind"},
	)

	AnswersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_rejected_total",
			Help:      "Answers outside the allowed values of the pending question.",
		},
		[]string{"kind"},
	)

	Alerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Safety alerts raised at survey completion.",
		},
		[]string{"signal"},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_persist_failures_total",
			Help:      "Completed entries that could not be written to the store.",
		},
	)

	MirrorFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_mirror_failures_total",
			Help:      "Entries that could not be appended to the spreadsheet mirror.",
		},
	)

	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_deliveries_total",
			Help:      "Per-recipient broadcast attempts by result.",
		},
		[]string{"kind", "result"},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Outbound messages the transport failed to deliver.",
		},
		[]string{"kind"},
	)
)
