// Package metrics holds the Prometheus collectors for the service.
//
// Collectors register on the default registry through promauto and are
// exposed by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsCreatedTotal counts events accepted by the registry.
	EventsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearby_events_created_total",
		Help: "Total number of events created",
	})

	// JoinsTotal counts join calls; outcome is "new" or "rejoin".
	JoinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nearby_joins_total",
		Help: "Total number of join requests by outcome",
	}, []string{"outcome"})

	// MessagesTotal counts chat sends; outcome is "sent" or "rejected".
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nearby_messages_total",
		Help: "Total number of chat sends by outcome",
	}, []string{"outcome"})

	// HTTPRequestDuration tracks handler latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nearby_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordJoin counts one join call.
func RecordJoin(created bool) {
	if created {
		JoinsTotal.WithLabelValues("new").Inc()
		return
	}
	JoinsTotal.WithLabelValues("rejoin").Inc()
}

// RecordMessage counts one chat send.
func RecordMessage(sent bool) {
	if sent {
		MessagesTotal.WithLabelValues("sent").Inc()
		return
	}
	MessagesTotal.WithLabelValues("rejected").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request duration. The route label is chi's matched
// pattern so ids do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
