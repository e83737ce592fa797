package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rscwire"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	framesIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Frames decoded from the wire, by message type.",
		},
		[]string{"transport", "type"},
	)
	framesOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_sent_total",
			Help:      "Frames written to the wire, by message type.",
		},
		[]string{"transport", "type"},
	)
	dispatchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "dispatch_errors_total",
			Help:      "Per-message dispatch failures, by kind.",
		},
		[]string{"transport", "kind"},
	)
	fatalErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "fatal_errors_total",
			Help:      "Connection-fatal stream errors.",
		},
		[]string{"transport", "kind"},
	)
	activeSessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Open game connections.",
		},
		[]string{"transport"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			framesIn,
			framesOut,
			dispatchErrors,
			fatalErrors,
			activeSessions,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordFrameIn(transport, msgType string) {
	RegisterMetrics()
	framesIn.WithLabelValues(transport, msgType).Inc()
}

func RecordFrameOut(transport, msgType string) {
	RegisterMetrics()
	framesOut.WithLabelValues(transport, msgType).Inc()
}

func RecordDispatchError(transport, kind string) {
	RegisterMetrics()
	dispatchErrors.WithLabelValues(transport, kind).Inc()
}

func RecordFatalError(transport, kind string) {
	RegisterMetrics()
	fatalErrors.WithLabelValues(transport, kind).Inc()
}

// SessionOpened increments the active gauge; the returned func decrements it
// and is safe to call more than once.
func SessionOpened(transport string) func() {
	RegisterMetrics()
	g := activeSessions.WithLabelValues(transport)
	g.Inc()
	var once sync.Once
	return func() { once.Do(g.Dec) }
}
