// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time.  It must exceed the relay
//                     timeout, because /contact/submit waits for the relay.
//   • IdleTimeout   – close keep-alives on idle clients
//
// Values come from the `http` config section; zero fields fall back to the
// defaults below.  This helper centralises them so cmd/web doesn’t repeat
// boilerplate.
//

package server

import (
	"net/http"
	"time"

	"github.com/yanizio/folio/internal/config"
)

// Fallbacks for zero config values.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 45 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// New constructs an *http.Server for cfg and handler.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       orDefault(cfg.ReadTimeout, DefaultReadTimeout),
		ReadHeaderTimeout: orDefault(cfg.ReadTimeout, DefaultReadTimeout),
		WriteTimeout:      orDefault(cfg.WriteTimeout, DefaultWriteTimeout),
		IdleTimeout:       orDefault(cfg.IdleTimeout, DefaultIdleTimeout),
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
