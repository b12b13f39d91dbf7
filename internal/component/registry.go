// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web imports the
// component for side effects, calls InitAll with the shared Deps, and
// mounts every component’s Routes() at “/<name>”.

package component

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/folio/internal/config"
	"github.com/yanizio/folio/internal/form"
)

// Deps exposes process-wide resources to Components during Init.
type Deps struct {
	Config  *config.Config
	Log     *zap.SugaredLogger
	Gateway form.Gateway
	Mailer  form.Mailer // nil when owner email is disabled
}

// Initializer is optional.  If a Component implements it, InitAll calls
// Init(deps) once before routes are mounted.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes() should mount BOTH page and API endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/form", getForm)
//	r.Post("/submit", postSubmit)
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// InitAll runs Init on every registered Initializer.  The first failure
// aborts.
func InitAll(d Deps) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(d); err != nil {
				return fmt.Errorf("component %s: init: %w", c.Name(), err)
			}
		}
	}
	return nil
}

// Mount attaches every component at “/<name>”.
func Mount(r chi.Router) {
	for _, c := range All() {
		r.Mount("/"+c.Name(), c.Routes())
	}
}

// CloseAll closes every component that implements io.Closer and joins the
// errors.
func CloseAll() error {
	var errs []error
	for _, c := range All() {
		if cl, ok := c.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("component %s: close: %w", c.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
