// internal/form/renderer.go
//
// Folio – Forms subsystem: HTML renderer.
//
// Context
//   The portfolio page fetches its contact form markup from the relay so the
//   labels, placeholders, and length hints always match the rules the
//   Controller enforces.  RenderForm converts a FormDef into plain,
//   accessible HTML and embeds the visitor's session token.
//
// Workflow
//   •  Each field is written by writeField with id="fld-{name}" and wrapped
//      in <div class="form-field">.
//   •  Required and minlength attributes mirror the field rule so browsers
//      can hint early.  The Controller stays the authority.
//   •  Every field is followed by an error <span>.  Server-side errors passed
//      in RenderOptions.Errors are written into it.
//   •  The submit button carries separate idle and loading labels; the page
//      toggles them while the Controller is Submitting.
//
// Style
//   Output HTML is deliberately plain, no framework classes, so the page's
//   stylesheet can target element selectors or the class hooks.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Action is the form's action URL.  Empty omits the attribute.
	Action string
	// Session is written to a hidden “session” input.
	Session string
	// Prefill provides initial field values keyed by field name.
	Prefill map[string]string
	// Errors provides field error text keyed by field name.
	Errors map[string]string
	// Busy renders the submit button disabled with its loading text shown.
	Busy bool
}

// RenderForm returns the HTML markup for fd.
func RenderForm(fd *FormDef, opts RenderOptions) (template.HTML, error) {
	var buf bytes.Buffer

	buf.WriteString(`<form class="folio-form" id="` + html.EscapeString(fd.ID) + `-form" method="post"`)
	if opts.Action != "" {
		buf.WriteString(` action="` + html.EscapeString(opts.Action) + `"`)
	}
	buf.WriteString(` novalidate>` + "\n")

	if fd.Title != "" {
		buf.WriteString(`<h3>` + html.EscapeString(fd.Title) + `</h3>` + "\n")
	}

	for _, f := range fd.Fields {
		if err := writeField(&buf, &f, opts); err != nil {
			return "", err
		}
	}

	if opts.Session != "" {
		buf.WriteString(fmt.Sprintf(`<input type="hidden" name="session" value="%s">`+"\n", html.EscapeString(opts.Session)))
	}

	if opts.Busy {
		buf.WriteString(`<button type="submit" class="form-submit" disabled>`)
		buf.WriteString(`<span class="btn-text" hidden>Send Message</span>`)
		buf.WriteString(`<span class="btn-loading">Sending…</span>`)
	} else {
		buf.WriteString(`<button type="submit" class="form-submit">`)
		buf.WriteString(`<span class="btn-text">Send Message</span>`)
		buf.WriteString(`<span class="btn-loading" hidden>Sending…</span>`)
	}
	buf.WriteString(`</button>` + "\n")

	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, f *FieldSpec, opts RenderOptions) error {
	name := html.EscapeString(f.Name)
	val := opts.Prefill[f.Name]
	errText := opts.Errors[f.Name]

	buf.WriteString(`<div class="form-field">` + "\n")
	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	// Shared attributes
	attrs := `id="fld-` + name + `" name="` + name + `" required`
	if f.Rule == RuleMinLength {
		attrs += ` minlength="` + strconv.Itoa(f.MinLength) + `"`
	}
	if f.Placeholder != "" {
		attrs += ` placeholder="` + html.EscapeString(f.Placeholder) + `"`
	}
	if errText != "" {
		attrs += ` aria-invalid="true"`
	}

	switch f.Type {
	case "text", "email":
		buf.WriteString(`<input class="form-input" type="` + f.Type + `" ` + attrs)
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea class="form-textarea" ` + attrs + `>`)
		buf.WriteString(html.EscapeString(val))
		buf.WriteString(`</textarea>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	// Error slot, populated client-side on blur or here on server re-render.
	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(errText) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}
