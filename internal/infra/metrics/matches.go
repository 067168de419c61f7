package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(matchFetchTotal, matchesClassifiedTotal) }

var (
	matchFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_source_fetch_total",
			Help:      "Calls to the fixtures API by result.",
		},
		[]string{"result"}, // 'ok', 'error'
	)

	matchesClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_classified_total",
			Help:      "Matches labeled by the classifier.",
		},
		[]string{"classification"},
	)
)

func IncMatchFetch(result string) {
	matchFetchTotal.WithLabelValues(norm(result)).Inc()
}

func AddMatchesClassified(classification string, n int) {
	matchesClassifiedTotal.WithLabelValues(norm(classification)).Add(float64(n))
}
