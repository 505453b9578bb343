// Package observability declares the Prometheus metrics exported by the
// watchearn daemon on /metrics.
package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/watchearn-network/watchearn/internal/domain"
)

const namespace = "watchearn"

// Outcome turns an operation result into a low-cardinality label value:
// "ok" on success, otherwise the lowercased error code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(domain.Code(err))
}

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// ClaimsTotal counts ad reward claims by outcome.
var ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "claims_total",
	Help:      "Total ad reward claims by outcome.",
}, []string{"outcome"})

// RewardsCredited sums reward units credited to balances.
var RewardsCredited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "rewards_credited_total",
	Help:      "Total reward units credited by successful claims.",
})

// ─── Withdrawal Metrics ─────────────────────────────────────────────────────

// WithdrawalRequests counts withdrawal submissions by outcome.
var WithdrawalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "withdrawal",
	Name:      "requests_total",
	Help:      "Total withdrawal requests by outcome.",
}, []string{"outcome"})

// WithdrawalDecisions counts admin decisions by decision and outcome.
var WithdrawalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "withdrawal",
	Name:      "decisions_total",
	Help:      "Total approve/reject decisions by outcome.",
}, []string{"decision", "outcome"})

// WithdrawnAmount sums reward units debited by approved withdrawals.
var WithdrawnAmount = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "withdrawal",
	Name:      "debited_total",
	Help:      "Total reward units debited by approved withdrawals.",
})

// ─── Lock Metrics ───────────────────────────────────────────────────────────

// LockWait tracks how long callers waited for an identity lock.
var LockWait = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "keylock",
	Name:      "wait_seconds",
	Help:      "Time spent waiting for a per-identity lock.",
	Buckets:   []float64{.0001, .001, .01, .05, .1, .25, .5, 1, 2, 5},
})

// LockBusy counts lock acquisitions that gave up with Busy.
var LockBusy = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "keylock",
	Name:      "busy_total",
	Help:      "Total lock acquisitions that timed out.",
})

// ObserveLock is a keylock wait observer feeding LockWait and LockBusy.
func ObserveLock(wait time.Duration, acquired bool) {
	LockWait.Observe(wait.Seconds())
	if !acquired {
		LockBusy.Inc()
	}
}

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// RateLimited counts requests refused by the per-identity limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total requests refused by the rate limiter.",
})
