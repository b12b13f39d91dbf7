// internal/cli/terminal.go
//
// Folio – terminal Presenter and Notifier for contactctl.
//
//------------------------------------------------------------------------------

package cli

import (
	"fmt"
	"io"

	"github.com/yanizio/folio/internal/form"
)

// terminal renders controller feedback as lines of text.  It implements
// form.Presenter and form.Notifier.
type terminal struct {
	w io.Writer
}

func (t *terminal) ShowFieldError(field, msg string) {
	_, _ = fmt.Fprintf(t.w, "✗ %-8s %s\n", field, msg)
}

func (t *terminal) ClearFieldError(string) {}

func (t *terminal) SetBusy(busy bool) {
	if busy {
		_, _ = fmt.Fprintln(t.w, "Sending…")
	}
}

func (t *terminal) ResetFields() {}

func (t *terminal) Notify(msg string, kind form.Kind) {
	prefix := "✓"
	if kind == form.KindError {
		prefix = "✗"
	}
	_, _ = fmt.Fprintf(t.w, "%s %s\n", prefix, msg)
}
