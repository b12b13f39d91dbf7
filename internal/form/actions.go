// internal/form/actions.go
//
// Folio – Forms subsystem: post-submit actions.
//
// Context
//   A FormDef may list actions to run after a payload has been relayed
//   successfully.  ExecuteActions dispatches to runEmail or runLog.  It is
//   wired as the Controller's success hook, so it runs on the attempt's
//   goroutine after the visitor already has their answer.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/message"
)

// Mailer is the slice of message.Mailer the email action needs.
type Mailer interface {
	Send(ctx context.Context, msg message.Email) error
}

// ActionDeps carries the collaborators actions may use.  Mailer may be nil,
// in which case email actions are skipped with a warning.
type ActionDeps struct {
	Mailer    Mailer
	DefaultTo []string // recipients when an email action names none
	Log       *zap.SugaredLogger
}

// ExecuteActions performs all actions declared on fd.  Errors are logged but
// not returned; the visitor's submission has already succeeded.
func ExecuteActions(ctx context.Context, fd *FormDef, p Payload, deps ActionDeps) {
	if deps.Log == nil {
		deps.Log = zap.S()
	}

	for _, ac := range fd.Actions {
		var err error
		switch ac.Type {
		case "email":
			err = runEmail(ctx, fd, ac.Params, p, deps)
		case "log":
			runLog(fd, p, deps)
		default:
			deps.Log.Warnw("form action warning", "form", fd.ID, "action", ac.Type, "warning", "unsupported action")
		}
		if err != nil {
			deps.Log.Errorw("form action failed", "form", fd.ID, "action", ac.Type, "error", err.Error())
		}
	}
}

// -----------------------------------------------------------------------------
// Email action
// -----------------------------------------------------------------------------

func runEmail(ctx context.Context, fd *FormDef, params map[string]any, p Payload, deps ActionDeps) error {
	if deps.Mailer == nil {
		return fmt.Errorf("email action configured but no mailer available")
	}

	to := recipients(params["to"])
	if len(to) == 0 {
		to = deps.DefaultTo
	}
	if len(to) == 0 {
		return fmt.Errorf("'to' parameter missing and no default recipients")
	}

	prefix, _ := params["subject_prefix"].(string)
	if prefix == "" {
		prefix = "Portfolio contact: "
	}

	msg := message.Email{
		To:      to,
		ReplyTo: p.Email,
		Subject: prefix + p.Subject,
		Fields:  fieldLines(fd, p),
	}
	return deps.Mailer.Send(ctx, msg)
}

// recipients accepts a single address or a list.
func recipients(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// fieldLines labels payload values with the form's labels, in field order.
func fieldLines(fd *FormDef, p Payload) []message.Field {
	values := map[string]string{
		FieldName:    p.Name,
		FieldEmail:   p.Email,
		FieldSubject: p.Subject,
		FieldMessage: p.Message,
	}
	out := make([]message.Field, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		out = append(out, message.Field{Label: f.Label, Value: values[f.Name]})
	}
	return out
}

// -----------------------------------------------------------------------------
// Log action
// -----------------------------------------------------------------------------

func runLog(fd *FormDef, p Payload, deps ActionDeps) {
	deps.Log.Infow("contact message relayed",
		"form", fd.ID, "from", p.Name, "email", p.Email, "subject", p.Subject, "length", len(p.Message))
}
