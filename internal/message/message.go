// internal/message/message.go
//
// Folio – Owner notification email.
//
// Context
//   After a contact message has been relayed, the site owner may also want
//   a copy in their inbox.  The forms subsystem builds an Email from the
//   payload and hands it to Mailer, which renders text and HTML bodies and
//   sends them through Resend.
//
//   Visitor text is untrusted.  Every field value passes through a
//   bluemonday strict policy before it is placed in the HTML body, and the
//   plain-text body carries the raw values.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/metrics"
)

// Field is one labelled line of the message body.
type Field struct {
	Label string
	Value string
}

// Email represents one outbound notification.
type Email struct {
	To      []string
	ReplyTo string // visitor address, so “Reply” reaches them
	Subject string
	Fields  []Field
}

// sender is the slice of the Resend emails service Mailer needs.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer sends Email values through Resend.  Safe for concurrent use.
type Mailer struct {
	from   string
	emails sender
	policy *bluemonday.Policy
	log    *zap.SugaredLogger
}

// NewMailer returns a Mailer authenticated with apiKey that sends as from.
func NewMailer(apiKey, from string, log *zap.SugaredLogger) *Mailer {
	client := resend.NewClient(apiKey)
	return newMailer(client.Emails, from, log)
}

func newMailer(s sender, from string, log *zap.SugaredLogger) *Mailer {
	if log == nil {
		log = zap.S()
	}
	return &Mailer{
		from:   from,
		emails: s,
		policy: bluemonday.StrictPolicy(),
		log:    log,
	}
}

// Send renders msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return errors.New("message: no recipients")
	}

	htmlBody, err := m.renderHTML(msg)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("render email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    renderText(msg),
		Html:    htmlBody,
	}

	resp, err := m.emails.SendWithContext(ctx, params)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues("error").Inc()
		m.log.Errorw("notification email failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return fmt.Errorf("email send failed: %w", err)
	}

	metrics.EmailsTotal.WithLabelValues("sent").Inc()
	id := ""
	if resp != nil {
		id = resp.Id
	}
	m.log.Infow("notification email sent", "to", msg.To, "subject", msg.Subject, "id", id)
	return nil
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

var htmlTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{ .Subject }}</title></head>
<body style="font-family: sans-serif; color: #333333;">
<h2>{{ .Subject }}</h2>
<table cellpadding="6">
{{- range .Fields }}
<tr><th align="left" valign="top">{{ .Label }}</th><td style="white-space: pre-wrap;">{{ .Value }}</td></tr>
{{- end }}
</table>
</body>
</html>`))

type htmlField struct {
	Label string
	Value template.HTML
}

type htmlView struct {
	Subject template.HTML
	Fields  []htmlField
}

// renderHTML runs visitor values through the strict policy, which drops all
// markup and escapes the remaining text, so the output is marked safe.
func (m *Mailer) renderHTML(msg Email) (string, error) {
	clean := htmlView{Subject: template.HTML(m.policy.Sanitize(msg.Subject))}
	for _, f := range msg.Fields {
		clean.Fields = append(clean.Fields, htmlField{
			Label: f.Label,
			Value: template.HTML(m.policy.Sanitize(f.Value)),
		})
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, clean); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(msg Email) string {
	var b strings.Builder
	for _, f := range msg.Fields {
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}
