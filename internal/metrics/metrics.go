package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blockwarden"

var (
	// SessionsLive is the number of currently open stream sessions.
	SessionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "sessions_live",
		Help:      "Number of open stream sessions.",
	})

	// SessionsCooling is the number of registry slots held in cooldown
	// after a rate-limited termination.
	SessionsCooling = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "sessions_cooling",
		Help:      "Number of accounts held in post-throttle cooldown.",
	})

	// FramesTotal counts stream frames by classified kind.
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "frames_total",
		Help:      "Stream frames received, by classified kind.",
	}, []string{"kind"})

	// TerminationsTotal counts session terminations by reason.
	TerminationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "terminations_total",
		Help:      "Session terminations, by reason.",
	}, []string{"reason"})

	// MentionsEvaluated counts mentions run through the decision engine.
	MentionsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "mentions_evaluated_total",
		Help:      "Mentions evaluated by the block decision engine.",
	})

	// CandidatesEnqueued counts block candidates enqueued by cause.
	CandidatesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "candidates_enqueued_total",
		Help:      "Block candidates placed on the action queue, by cause.",
	}, []string{"cause"})

	// ReconciliationsTotal counts block-list reconciliation runs.
	ReconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "runs_total",
		Help:      "Block-list reconciliation runs.",
	})

	// BackfillMentions counts unique authors handed to the decision engine
	// by catch-up sweeps.
	BackfillMentions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backfill",
		Name:      "mentions_total",
		Help:      "Unique mention authors evaluated during catch-up sweeps.",
	})

	// SamplerConnects counts connection attempts issued by the sampler.
	SamplerConnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sampler",
		Name:      "connects_total",
		Help:      "Connection attempts issued by the candidate sampler.",
	})
)
