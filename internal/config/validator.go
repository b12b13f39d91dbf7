// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` after it unmarshals the
// merged Koanf tree and applies defaults.  Any tag mismatch or validation
// error aborts startup, ensuring the binary never runs with partial,
// malformed, or missing configuration.
//
// Field rules live on the struct tags in model.go.  Cross-field rules that
// tags cannot express are registered here as struct-level validations.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(emailRules, Email{})
	return val
}

// emailRules rejects an enabled notifier with nobody to notify.
func emailRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Email)
	if e.Enabled && len(e.To) == 0 {
		sl.ReportError(e.To, "To", "to", "required_with_enabled", "")
	}
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
