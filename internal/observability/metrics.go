package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	rpcCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrpc",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total dispatched calls.",
		},
		[]string{"method", "transport", "outcome"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xrpc",
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Handler execution time in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "transport", "outcome"},
	)
	requestsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xrpc",
			Subsystem: "http",
			Name:      "requests_rejected_total",
			Help:      "Framed requests rejected before dispatch.",
		},
		[]string{"transport"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(rpcCalls, rpcDuration, requestsRejected)
	})
}

func RecordCall(method, transport string, faulted bool, duration time.Duration) {
	RegisterMetrics()
	outcome := "success"
	if faulted {
		outcome = "fault"
	}
	rpcCalls.WithLabelValues(method, transport, outcome).Inc()
	rpcDuration.WithLabelValues(method, transport, outcome).Observe(duration.Seconds())
}

func RecordRejected(transport string) {
	RegisterMetrics()
	requestsRejected.WithLabelValues(transport).Inc()
}

// ServeMetrics exposes the Prometheus registry on addr. It blocks until
// the listener fails; the RPC endpoint itself never serves metrics.
func ServeMetrics(addr string) error {
	RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
