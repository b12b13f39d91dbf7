// internal/gateway/func.go
//
// Folio – Submission gateway: function adapter and the discard stub.
//
// Context
//   Tests and `contactctl send --dry-run` need a gateway without a network
//   behind it.  Func turns any function into a form.Gateway, the same way
//   http.HandlerFunc turns one into a handler.
//
//------------------------------------------------------------------------------

package gateway

import (
	"context"

	"github.com/yanizio/folio/internal/form"
)

// Func adapts an ordinary function to form.Gateway.
type Func func(ctx context.Context, p form.Payload) error

// Submit calls f(ctx, p).
func (f Func) Submit(ctx context.Context, p form.Payload) error { return f(ctx, p) }

// Discard is a gateway that accepts every payload without sending it.
var Discard form.Gateway = Func(func(context.Context, form.Payload) error { return nil })
