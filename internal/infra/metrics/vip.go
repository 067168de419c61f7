package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		vipGrantsTotal,
		vipExpiriesTotal,
		vipStoreErrorsTotal,
		gateDecisionsTotal,
		redeemAttemptsTotal,
	)
}

var (
	vipGrantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vip_grants_total",
			Help:      "VIP grants applied, by kind (permanent, time_boxed).",
		},
		[]string{"kind"},
	)

	vipExpiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vip_expiries_total",
			Help:      "Time-boxed entitlements deactivated on evaluation.",
		},
	)

	vipStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vip_store_errors_total",
			Help:      "Entitlement store failures by operation.",
		},
		[]string{"op"}, // 'get', 'set'
	)

	gateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_gate_open_total",
			Help:      "Open attempts on content items by resulting decision.",
		},
		[]string{"classification", "decision"},
	)

	redeemAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vip_redeem_attempts_total",
			Help:      "Access code submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func IncVIPGrant(kind string) {
	vipGrantsTotal.WithLabelValues(norm(kind)).Inc()
}

func IncVIPExpiry() {
	vipExpiriesTotal.Inc()
}

func IncStoreError(op string) {
	vipStoreErrorsTotal.WithLabelValues(norm(op)).Inc()
}

func IncGateOpen(classification, decision string) {
	gateDecisionsTotal.WithLabelValues(norm(classification), norm(decision)).Inc()
}

func IncRedeemAttempt(outcome string) {
	redeemAttemptsTotal.WithLabelValues(norm(outcome)).Inc()
}
