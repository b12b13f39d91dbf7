// cmd/web/main.go
//
// Folio – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load configuration (conf/.env → conf/global.yaml → FOLIO_ env vars),
//     resolving `vault:` references when VAULT_ADDR is set.
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Build the shared relay gateway, the optional Resend mailer, and the
//     request-info resolver (optional GeoLite2 DB).
//
//  4. Initialise registered components and mount them under “/<name>”.
//
//  5. Expose Prometheus /metrics and a /healthz probe.
//
//  6. Wrap the router with request-ID, panic recovery, request logging,
//     security headers, optional HTTPS redirect, and CORS for the
//     portfolio origins.
//
//  7. Serve until SIGINT or SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/folio/internal/component"
	"github.com/yanizio/folio/internal/config"
	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/gateway"
	"github.com/yanizio/folio/internal/logger"
	"github.com/yanizio/folio/internal/message"
	"github.com/yanizio/folio/internal/middleware"
	"github.com/yanizio/folio/internal/requestinfo"
	"github.com/yanizio/folio/internal/server"
	"github.com/yanizio/folio/internal/vault"

	_ "github.com/yanizio/folio/components/contact" // contact form
)

const shutdownGrace = 20 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("folio: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Configuration (Vault only when the environment names one) ──
	//
	var secrets config.SecretSource
	if vault.Enabled() {
		vc, err := vault.New(ctx, nil)
		if err != nil {
			return err
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	lg, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	//
	// ── 3.  Shared collaborators ────────────────────────────────────────
	//
	relay, err := gateway.NewHTTP(cfg.Relay.Endpoint,
		gateway.WithContentType(cfg.Relay.ContentType),
		gateway.WithStrictStatus(cfg.Relay.StrictStatus),
	)
	if err != nil {
		return err
	}

	var mailer form.Mailer
	if cfg.Email.Enabled {
		mailer = message.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.From, lg)
	}

	resolver, err := requestinfo.NewResolver(cfg.Geo.DBPath)
	if err != nil {
		return err
	}
	defer resolver.Close()

	//
	// ── 4.  Components ──────────────────────────────────────────────────
	//
	if err := component.InitAll(component.Deps{
		Config:  cfg,
		Log:     lg,
		Gateway: gateway.Instrument("http", relay, lg),
		Mailer:  mailer,
	}); err != nil {
		return err
	}
	defer func() {
		if err := component.CloseAll(); err != nil {
			lg.Warnw("component close failed", "err", err)
		}
	}()

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		requestLogger(lg),
		middleware.Security,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"X-Form-Session"},
			MaxAge:         300,
		}),
		resolver.Middleware,
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	component.Mount(r)

	//
	// ── 6.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Infow("shutting down", "grace", shutdownGrace)
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// requestLogger attaches a request-scoped logger carrying the request ID and
// logs one line per request.
func requestLogger(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base.With("req_id", chimw.GetReqID(r.Context()))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			l.Debugw("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		})
	}
}
