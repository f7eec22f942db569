package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "personnel", Name: "requests_total", Help: "Number of entity API requests by collection, method and status."},
		[]string{"collection", "method", "status"},
	)
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "personnel", Name: "store_ops_total", Help: "Number of document store operations by collection and operation."},
		[]string{"collection", "op"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "personnel", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "personnel", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

// ObserveRequest records one finished entity request.
func ObserveRequest(collection, method string, status int) {
	RequestsTotal.WithLabelValues(collection, method, strconv.Itoa(status)).Inc()
}

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RequestsTotal)
	reg.MustRegister(StoreOps)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
