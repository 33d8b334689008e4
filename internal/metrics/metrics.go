// Package metrics provides the centralized Prometheus metrics registry for
// the win probability estimator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "polls_total",
		Help:      "Total number of live score polls",
	})
	UpdatesEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "updates_emitted_total",
		Help:      "Total number of emitted live updates",
	})
	SuppressedPollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "suppressed_polls_total",
		Help:      "Total number of polls suppressed because the score was unchanged",
	})
	ResolverTierHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "resolver_tier_hits_total",
		Help:      "Match resolutions by the tier that produced the id",
	}, []string{"tier"})
	ScoreSourceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "score_source_total",
		Help:      "Score fetches by the upstream source that answered",
	}, []string{"source"})
	MatchesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "winprob",
		Name:      "matches_completed_total",
		Help:      "Total number of sessions that reached a terminal score",
	})
)

// Gauge metrics
var (
	BaseProbability = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "winprob",
		Name:      "base_probability",
		Help:      "Pre-match win probability of the tracked team",
	})
	DynamicProbability = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "winprob",
		Name:      "dynamic_probability",
		Help:      "Blended live win probability of the tracked team",
	})
	RoundScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "winprob",
		Name:      "round_score",
		Help:      "Current round score per team",
	}, []string{"team"})
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "winprob",
		Name:      "cache_hit_ratio",
		Help:      "Hit ratio of the upstream response cache",
	})
	WidgetClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "winprob",
		Name:      "widget_clients",
		Help:      "Number of connected widget websocket clients",
	})
)

// Histogram metrics
var (
	PollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "winprob",
		Name:      "poll_duration_seconds",
		Help:      "Duration of one fetch-and-evaluate poll cycle in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PollsTotal)
		registry.MustRegister(UpdatesEmittedTotal)
		registry.MustRegister(SuppressedPollsTotal)
		registry.MustRegister(ResolverTierHitsTotal)
		registry.MustRegister(ScoreSourceTotal)
		registry.MustRegister(MatchesCompletedTotal)

		// Register gauge metrics
		registry.MustRegister(BaseProbability)
		registry.MustRegister(DynamicProbability)
		registry.MustRegister(RoundScore)
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(WidgetClients)

		// Register histogram metrics
		registry.MustRegister(PollDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPoll records one completed poll cycle.
func RecordPoll(durationSeconds float64) {
	PollsTotal.Inc()
	PollDuration.Observe(durationSeconds)
}

// RecordUpdateEmitted records an emitted live update.
func RecordUpdateEmitted() {
	UpdatesEmittedTotal.Inc()
}

// RecordSuppressedPoll records a poll whose update was suppressed.
func RecordSuppressedPoll() {
	SuppressedPollsTotal.Inc()
}

// RecordResolverTier records which tier resolved the match.
func RecordResolverTier(tier string) {
	ResolverTierHitsTotal.WithLabelValues(tier).Inc()
}

// RecordScoreSource records which upstream source produced a score.
func RecordScoreSource(source string) {
	ScoreSourceTotal.WithLabelValues(source).Inc()
}

// RecordMatchCompleted records a session reaching its terminal score.
func RecordMatchCompleted() {
	MatchesCompletedTotal.Inc()
}

// UpdateProbabilities updates the probability gauges.
func UpdateProbabilities(base, dynamic float64) {
	BaseProbability.Set(base)
	DynamicProbability.Set(dynamic)
}

// UpdateScore updates the round score gauges.
func UpdateScore(ourRounds, enemyRounds int) {
	RoundScore.WithLabelValues("our").Set(float64(ourRounds))
	RoundScore.WithLabelValues("enemy").Set(float64(enemyRounds))
}

// UpdateCacheHitRatio updates the response cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// UpdateWidgetClients updates the connected widget client gauge.
func UpdateWidgetClients(count int) {
	WidgetClients.Set(float64(count))
}
