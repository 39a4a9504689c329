package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "retrieval_candidates_total",
			Help:      "Candidate queries tried against the vector index",
		},
		[]string{"outcome"}, // "hit" / "miss" / "error"
	)

	QueryRewriteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "query_rewrite_total",
			Help:      "Query rewrite attempts",
		},
		[]string{"status"}, // "rewritten" / "unchanged" / "failed" / "disabled"
	)

	NoResultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "no_result_total",
			Help:      "Requests answered with the fixed no-result message",
		},
		[]string{"stage"}, // "input" / "retrieval" / "answer" / "stream_probe"
	)

	StreamShortCircuitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "stream_short_circuit_total",
			Help:      "Streams cut off early after the probe buffer matched a no-result phrase",
		},
	)
)

var ragMetricsRegistered bool

// RegisterRAGMetrics registers retrieval pipeline metrics. Must be called once from main.
func RegisterRAGMetrics() {
	if ragMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalCandidatesTotal)
	prometheus.MustRegister(QueryRewriteTotal)
	prometheus.MustRegister(NoResultTotal)
	prometheus.MustRegister(StreamShortCircuitTotal)
	ragMetricsRegistered = true
}
