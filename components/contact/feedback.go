// components/contact/feedback.go
//
// Folio – server-side Presenter for one visitor.
//
//------------------------------------------------------------------------------

package contact

import "sync"

// feedback is the server-side stand-in for the page's visual state.  The
// Controller drives it as its Presenter; handlers read it to re-render the
// form.  Notifications are not kept here: the submit response takes its
// text from Controller.Notice for the attempt it answers.
type feedback struct {
	mu     sync.Mutex
	errors map[string]string
	busy   bool
}

func newFeedback() *feedback {
	return &feedback{errors: map[string]string{}}
}

func (f *feedback) ShowFieldError(field, msg string) {
	f.mu.Lock()
	f.errors[field] = msg
	f.mu.Unlock()
}

func (f *feedback) ClearFieldError(field string) {
	f.mu.Lock()
	delete(f.errors, field)
	f.mu.Unlock()
}

func (f *feedback) SetBusy(busy bool) {
	f.mu.Lock()
	f.busy = busy
	f.mu.Unlock()
}

func (f *feedback) ResetFields() {
	f.mu.Lock()
	clear(f.errors)
	f.mu.Unlock()
}

// state returns a copy of the visible field errors and the busy flag.
func (f *feedback) state() (map[string]string, bool) {
	return f.fieldErrors(), f.isBusy()
}

func (f *feedback) isBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// fieldErrors returns a copy of the visible field errors.
func (f *feedback) fieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}
