package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo, cacheRequestsTotal, warmupJobsTotal) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Constant 1, labeled with the running version, commit and Go version.",
		},
		[]string{"version", "commit", "goversion"},
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache and result (hit, miss, error).",
		},
		[]string{"cache", "result"},
	)

	warmupJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmup_jobs_total",
			Help:      "Prediction warmup jobs by status.",
		},
		[]string{"status"}, // 'completed', 'failed', 'dropped'
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func IncWarmupJob(status string) {
	warmupJobsTotal.WithLabelValues(norm(status)).Inc()
}
