// components/contact/handlers.go
//
// Folio – HTTP handlers for the contact component.
//
// Context
//   Every request after GET /form carries the signed session token that
//   names the visitor's Controller.  Handlers translate Controller results
//   into JSON: verdicts for blur, 204 for input, and one envelope per
//   submit outcome (200 succeeded, 422 invalid, 409 rejected, 502 failed).
//
// Notes
//   •  A bad or expired token is a 400; the page fetches a new one.
//   •  Submit waits for the attempt's own Result and answers with the
//      notice for that Result.
//
//------------------------------------------------------------------------------

package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/logger"
	"github.com/yanizio/folio/internal/requestinfo"
)

// SessionHeader carries the session token on GET /form responses.
const SessionHeader = "X-Form-Session"

// maxBody caps JSON request bodies.
const maxBody = 64 << 10

/*──────────────────────────── request bodies ──────────────────────────────*/

type fieldEvent struct {
	Session string `json:"session"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

type submitRequest struct {
	Session string `json:"session"`
	form.Payload
}

func (s submitRequest) values() map[string]string {
	return map[string]string{
		form.FieldName:    s.Name,
		form.FieldEmail:   s.Email,
		form.FieldSubject: s.Subject,
		form.FieldMessage: s.Message,
	}
}

type submitResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Errors  []form.Verdict `json:"errors,omitempty"`
}

/*──────────────────────────── handlers ────────────────────────────────────*/

// handleForm renders the form fragment.  A valid ?session= token for a live
// visitor re-renders its values, errors, and busy state; otherwise a fresh
// token is issued.
func (c *Component) handleForm(w http.ResponseWriter, r *http.Request) {
	opts := form.RenderOptions{Action: "/" + c.Name() + "/submit"}

	if tok := r.URL.Query().Get("session"); tok != "" {
		if id, err := c.signer.Verify(tok); err == nil {
			if v, ok := c.store.Peek(id); ok {
				opts.Session = tok
				opts.Prefill = v.ctl.Values()
				opts.Errors, opts.Busy = v.fb.state()
			}
		}
	}
	if opts.Session == "" {
		opts.Session, _ = c.signer.Issue()
	}

	out, err := form.RenderForm(c.def, opts)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("form render failed", "form", c.def.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "form render failed")
		return
	}

	w.Header().Set(SessionHeader, opts.Session)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(out))
}

// handleSession issues a new token without rendering.
func (c *Component) handleSession(w http.ResponseWriter, _ *http.Request) {
	tok, _ := c.signer.Issue()
	writeJSON(w, http.StatusOK, map[string]string{"session": tok})
}

func (c *Component) handleBlur(w http.ResponseWriter, r *http.Request) {
	var ev fieldEvent
	v, ok := c.decodeVisitor(w, r, &ev, func() string { return ev.Session })
	if !ok {
		return
	}

	verdict, err := v.ctl.OnFieldBlur(ev.Field, ev.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (c *Component) handleInput(w http.ResponseWriter, r *http.Request) {
	var ev fieldEvent
	v, ok := c.decodeVisitor(w, r, &ev, func() string { return ev.Session })
	if !ok {
		return
	}

	if err := v.ctl.OnFieldInput(ev.Field, ev.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit starts an attempt and waits for its outcome.  A client that
// disconnects early does not cancel the relay.
func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	v, ok := c.decodeVisitor(w, r, &req, func() string { return req.Session })
	if !ok {
		return
	}

	log := logger.FromContext(r.Context()).With(requestinfo.FromContext(r.Context()).LogFields()...)

	att, err := v.ctl.OnSubmit(r.Context(), req.values())
	if err != nil {
		var ve *form.ValidationError
		switch {
		case errors.As(err, &ve):
			log.Infow("contact submit invalid", "fields", len(ve.Fields))
			writeJSON(w, http.StatusUnprocessableEntity, submitResponse{Status: "invalid", Errors: ve.Fields})
		case errors.Is(err, form.ErrSubmissionInFlight):
			writeJSON(w, http.StatusConflict, submitResponse{Status: "rejected"})
		default:
			log.Errorw("contact submit error", "err", err)
			writeError(w, http.StatusInternalServerError, "submit failed")
		}
		return
	}
	log.Infow("contact submit accepted", "attempt", att.ID)

	res, err := att.Wait(r.Context())
	if err != nil {
		log.Warnw("client left before relay finished", "attempt", att.ID, "err", err)
		return
	}

	msg, _ := v.ctl.Notice(res)
	if res.OK() {
		writeJSON(w, http.StatusOK, submitResponse{Status: "succeeded", Message: msg})
		return
	}
	writeJSON(w, http.StatusBadGateway, submitResponse{Status: "failed", Message: msg})
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// decodeVisitor decodes the JSON body into dst, verifies the token returned
// by tok, and loads the visitor.  On failure it writes the response.
func (c *Component) decodeVisitor(w http.ResponseWriter, r *http.Request, dst any, tok func() string) (*visitor, bool) {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return nil, false
	}

	id, err := c.signer.Verify(tok())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired session")
		return nil, false
	}

	v, err := c.store.Get(id)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("session load failed", "session", id, "err", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
