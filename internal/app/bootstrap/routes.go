// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	diagfeature "github.com/dalemusser/nearby/internal/app/features/diag"
	eventsfeature "github.com/dalemusser/nearby/internal/app/features/events"
	healthfeature "github.com/dalemusser/nearby/internal/app/features/health"
	homefeature "github.com/dalemusser/nearby/internal/app/features/home"
	messagesfeature "github.com/dalemusser/nearby/internal/app/features/messages"
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	membershipstore "github.com/dalemusser/nearby/internal/app/store/memberships"
	messagestore "github.com/dalemusser/nearby/internal/app/store/messages"
	"github.com/dalemusser/nearby/internal/app/system/metrics"
	"github.com/dalemusser/nearby/internal/app/system/ratelimit"
	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// The three stores share the one document store in deps. Chat routes are
// mounted beside /events so the events router does not need to know about
// them; chi resolves /events/{eventId}/messages before the /events catch-all.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	events := eventstore.New(deps.Store)
	members := membershipstore.New(deps.Store, events, logger)
	chat := messagestore.New(deps.Store, members)

	writeLimit := ratelimit.Middleware(ratelimit.Config{
		Requests: appCfg.RateLimitRequests,
		Window:   appCfg.RateLimitWindow,
	})

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP) // per-IP write limits behind a proxy
	r.Use(reqlog.Middleware(logger))
	r.Use(metrics.Middleware)
	r.Use(corsHandler(coreCfg.CORS.CORSAllowedOrigins))

	// Set before mounting so sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Detail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Detail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.Store, logger)))
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/test", diagfeature.Routes(diagfeature.NewHandler(deps.Store, logger)))

	r.Mount("/events", eventsfeature.Routes(eventsfeature.NewHandler(events, members, logger), writeLimit))
	r.Mount("/events/{eventId}/messages", messagesfeature.Routes(messagesfeature.NewHandler(chat, logger), writeLimit))

	r.Mount("/", homefeature.Routes(homefeature.NewHandler(logger)))

	return r, nil
}

// corsHandler allows any origin with credentials unless WAFFLE's
// cors_allowed_origins narrows it.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{reqlog.Header},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
