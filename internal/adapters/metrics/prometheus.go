package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VoteMetrics exports vote, transition and anonymization counters.
type VoteMetrics struct {
	votesTotal       *prometheus.CounterVec
	voteDuration     *prometheus.HistogramVec
	anonymizedTotal  prometheus.Counter
	transitionsTotal *prometheus.CounterVec
}

func NewVoteMetrics(registry prometheus.Registerer) *VoteMetrics {
	factory := promauto.With(registry)
	return &VoteMetrics{
		votesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "elections_votes_total",
			Help: "vote submissions by outcome",
		}, []string{"outcome"}),
		voteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elections_vote_duration_seconds",
			Help:    "time spent handling a vote submission, lock wait included",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"outcome"}),
		anonymizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "elections_anonymized_identities_total",
			Help: "identity values replaced by keyed hashes",
		}),
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "elections_transitions_total",
			Help: "successful election lifecycle transitions by action",
		}, []string{"action"}),
	}
}

func (m *VoteMetrics) ObserveVote(outcome string, elapsed time.Duration) {
	m.votesTotal.WithLabelValues(outcome).Inc()
	m.voteDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *VoteMetrics) AddAnonymized(count int64) {
	if count > 0 {
		m.anonymizedTotal.Add(float64(count))
	}
}

func (m *VoteMetrics) ObserveTransition(action string) {
	m.transitionsTotal.WithLabelValues(action).Inc()
}
