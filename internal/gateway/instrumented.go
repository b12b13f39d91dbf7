// internal/gateway/instrumented.go
//
// Folio – Submission gateway: metrics and logging decorator.
//
// Context
//   cmd/web wraps the configured relay before handing it to components, so
//   every delivery is timed in folio_gateway_request_duration_seconds and
//   logged once with its outcome.
//
// Workflow
//   •  Instrument(name, inner, log) returns the wrapper.
//   •  Submit calls inner, observes the elapsed time under {gateway,
//      outcome}, and logs "relay delivered" or "relay failed".
//
//------------------------------------------------------------------------------

package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/metrics"
)

// Instrumented wraps a gateway with latency metrics and one log line per
// call.  Name is used as the "gateway" metric label.
type Instrumented struct {
	Name  string
	Inner form.Gateway
	Log   *zap.SugaredLogger
}

// Instrument returns inner wrapped under name.
func Instrument(name string, inner form.Gateway, log *zap.SugaredLogger) *Instrumented {
	if log == nil {
		log = zap.S()
	}
	return &Instrumented{Name: name, Inner: inner, Log: log}
}

// Submit implements form.Gateway.
func (g *Instrumented) Submit(ctx context.Context, p form.Payload) error {
	start := time.Now()
	err := g.Inner.Submit(ctx, p)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayDuration.WithLabelValues(g.Name, outcome).Observe(elapsed.Seconds())

	if err != nil {
		g.Log.Warnw("relay failed", "gateway", g.Name, "elapsed", elapsed, "error", err)
	} else {
		g.Log.Infow("relay delivered", "gateway", g.Name, "elapsed", elapsed)
	}
	return err
}
