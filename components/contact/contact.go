// components/contact/contact.go
//
// Folio contact component – the portfolio page's contact form.
//
// Context
//   The page loads the form fragment from GET /contact/form, then reports
//   blur, input, and submit events as small JSON calls.  Each call carries
//   the signed session token handed out with the form.  The token names the
//   visitor's form Controller in an evicting session Store, so validation
//   state and the one-submission-at-a-time rule live on the server.
//
// Workflow
//   •  Init loads the form definition, builds the token Signer and Store.
//   •  Every Controller relays through the shared Gateway and, on success,
//      runs the form's post-submit actions (owner email, log line).
//   •  Close stops the Store's evictor.
//
//------------------------------------------------------------------------------

package contact

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/component"
	"github.com/yanizio/folio/internal/config"
	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/session"
)

// Compile-time assertions.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component serves the contact form.
type Component struct {
	def     *form.FormDef
	cfg     *config.Config
	gw      form.Gateway
	actions form.ActionDeps
	log     *zap.SugaredLogger

	signer *session.Signer
	store  *session.Store[*visitor]
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key; routes mount at /contact.
func (c *Component) Name() string { return "contact" }

// Init wires the component to the process-wide dependencies.
func (c *Component) Init(d component.Deps) error {
	if d.Config == nil || d.Gateway == nil {
		return fmt.Errorf("contact: config and gateway are required")
	}
	c.cfg = d.Config
	c.gw = d.Gateway
	c.log = d.Log
	if c.log == nil {
		c.log = zap.S()
	}
	c.log = c.log.Named("contact")

	c.def = form.ContactForm()
	if p := d.Config.Form.Definition; p != "" {
		def, err := form.LoadFormDef(p)
		if err != nil {
			return err
		}
		c.def = def
	}

	c.actions = form.ActionDeps{
		Mailer:    d.Mailer,
		DefaultTo: d.Config.Email.To,
		Log:       c.log,
	}
	c.signer = session.NewSigner([]byte(d.Config.Session.Secret), d.Config.Session.MaxAge)
	c.store = session.NewStore(c.newVisitor, session.Options{
		IdleTTL:    d.Config.Session.IdleTTL,
		MaxEntries: d.Config.Session.MaxEntries,
		Log:        c.log,
	})

	c.log.Infow("contact form ready", "form", c.def.ID, "fields", len(c.def.Fields), "actions", len(c.def.Actions))
	return nil
}

// Close stops the session evictor.
func (c *Component) Close() error {
	if c.store != nil {
		c.store.Close()
	}
	return nil
}

// Routes builds and returns the router mounted at “/contact”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/form", c.handleForm)
	r.Post("/session", c.handleSession)
	r.Post("/blur", c.handleBlur)
	r.Post("/input", c.handleInput)
	r.Post("/submit", c.handleSubmit)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── visitors ────────────────────────────────────*/

// visitor is one session's form state.
type visitor struct {
	ctl *form.Controller
	fb  *feedback
}

// Busy keeps visitors with an attempt in flight out of eviction.
func (v *visitor) Busy() bool { return v.ctl.Busy() }

func (c *Component) newVisitor(id string) (*visitor, error) {
	fb := newFeedback()
	log := c.log.With("session", id)
	ctl := form.NewController(c.def, c.gw,
		form.WithPresenter(fb),
		form.WithLogger(log),
		form.WithTimeout(c.cfg.Relay.Timeout),
		form.WithMessages(c.cfg.Form.SuccessMessage, c.cfg.Form.FailureMessage),
		form.WithSuccessHook(func(ctx context.Context, p form.Payload) {
			form.ExecuteActions(ctx, c.def, p, c.actions)
		}),
	)
	return &visitor{ctl: ctl, fb: fb}, nil
}
