package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordJoin(t *testing.T) {
	newBefore := testutil.ToFloat64(JoinsTotal.WithLabelValues("new"))
	rejoinBefore := testutil.ToFloat64(JoinsTotal.WithLabelValues("rejoin"))

	RecordJoin(true)
	RecordJoin(false)
	RecordJoin(false)

	if got := testutil.ToFloat64(JoinsTotal.WithLabelValues("new")) - newBefore; got != 1 {
		t.Errorf("new joins: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(JoinsTotal.WithLabelValues("rejoin")) - rejoinBefore; got != 2 {
		t.Errorf("rejoins: got %v, want 2", got)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/events/{eventId}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/abc/messages", nil))

	count := testutil.CollectAndCount(HTTPRequestDuration, "nearby_http_request_duration_seconds")
	if count == 0 {
		t.Fatal("expected at least one observed series")
	}

	metricsRec := httptest.NewRecorder()
	Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metricsRec.Body.String()
	if !strings.Contains(body, `route="/events/{eventId}/messages"`) {
		t.Error("expected route pattern label in exposition")
	}
	if !strings.Contains(body, `status="418"`) {
		t.Error("expected status label in exposition")
	}
}
