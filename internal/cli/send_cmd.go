// internal/cli/send_cmd.go
//
// Folio – `contactctl send`: validate and relay one message.
//
// Context
//   Drives a full form.Controller against a gateway chosen by flags:
//   the discard stub (--dry-run), an explicit --endpoint, or the relay
//   section of conf/global.yaml.  Vault-backed secrets resolve the same way
//   they do for cmd/web.
//
//------------------------------------------------------------------------------

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/config"
	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/gateway"
	"github.com/yanizio/folio/internal/vault"
)

type sendOptions struct {
	fields      fieldFlags
	dryRun      bool
	endpoint    string
	contentType string
	strict      bool
	timeout     time.Duration
}

func newSendCmd() *cobra.Command {
	var o sendOptions
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Validate and relay one message",
		Long: "Runs the full form controller: validates every field, relays the payload to the " +
			"endpoint (from --endpoint or conf/global.yaml), and prints the outcome.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, &o)
		},
	}
	o.fields.bind(cmd)
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "validate and report success without contacting the endpoint")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "", "relay endpoint URL (overrides config)")
	cmd.Flags().StringVar(&o.contentType, "content-type", "", "request Content-Type (overrides config)")
	cmd.Flags().BoolVar(&o.strict, "strict-status", false, "treat non-2xx replies as failures")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "relay timeout (overrides config; 0 keeps config)")
	return cmd
}

func runSend(cmd *cobra.Command, o *sendOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	def, err := loadDef(cmd)
	if err != nil {
		return err
	}

	gw, timeout, err := buildGateway(ctx, cmd, o)
	if err != nil {
		return err
	}

	term := &terminal{w: stdout(cmd)}
	ctl := form.NewController(def, gw,
		form.WithPresenter(term),
		form.WithNotifier(term),
		form.WithTimeout(timeout),
		form.WithLogger(zap.NewNop().Sugar()),
	)

	att, err := ctl.OnSubmit(ctx, o.fields.values())
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			if jsonOutput(cmd) {
				_ = printJSON(stdout(cmd), map[string]any{"status": "invalid", "errors": ve.Fields})
			}
			return errInvalid
		}
		return err
	}

	res, err := att.Wait(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		out := map[string]any{"status": "succeeded", "attempt": res.AttemptID}
		if !res.OK() {
			out["status"] = "failed"
			out["error"] = res.Err.Error()
		}
		_ = printJSON(stdout(cmd), out)
	}
	return res.Err
}

// buildGateway picks the stub, a flag-configured relay, or the configured
// relay, and returns the timeout to enforce.
func buildGateway(ctx context.Context, cmd *cobra.Command, o *sendOptions) (form.Gateway, time.Duration, error) {
	if o.dryRun {
		return gateway.Discard, o.timeout, nil
	}

	relay := config.Relay{
		Endpoint:     o.endpoint,
		ContentType:  o.contentType,
		Timeout:      o.timeout,
		StrictStatus: o.strict,
	}
	if relay.Endpoint == "" {
		var secrets config.SecretSource
		if vault.Enabled() {
			vc, err := vault.New(ctx, nil)
			if err != nil {
				return nil, 0, err
			}
			secrets = vc
		}
		cfg, err := config.Load(ctx, secrets)
		if err != nil {
			return nil, 0, fmt.Errorf("no --endpoint given and config unavailable: %w", err)
		}
		relay.Endpoint = cfg.Relay.Endpoint
		if relay.ContentType == "" {
			relay.ContentType = cfg.Relay.ContentType
		}
		if relay.Timeout == 0 {
			relay.Timeout = cfg.Relay.Timeout
		}
		if !cmd.Flags().Changed("strict-status") {
			relay.StrictStatus = cfg.Relay.StrictStatus
		}
	}

	gw, err := gateway.NewHTTP(relay.Endpoint,
		gateway.WithContentType(relay.ContentType),
		gateway.WithStrictStatus(relay.StrictStatus),
	)
	if err != nil {
		return nil, 0, err
	}
	return gw, relay.Timeout, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
