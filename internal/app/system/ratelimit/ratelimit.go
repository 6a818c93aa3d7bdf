// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net/http"
	"time"

	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/go-chi/httprate"
)

// Config bounds requests per client IP within a fixed window.
// Requests <= 0 disables limiting.
type Config struct {
	Requests int
	Window   time.Duration
}

// Defaults used when configuration leaves the window unset.
const (
	DefaultRequests = 120
	DefaultWindow   = time.Minute
)

// Middleware limits requests per client IP. Rejected requests get a 429 with
// the usual {"detail": ...} body.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respond.Detail(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}
