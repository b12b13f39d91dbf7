// internal/form/validate.go
//
// Folio – Forms subsystem: field validation.
//
// Context
//   Every verdict the visitor sees is produced here, whether it was
//   triggered by a blur event, a submit attempt, or the CLI.  Validation is
//   pure: it never renders, logs, or counts anything.  The Controller decides
//   what to do with a failing Verdict.
//
// Workflow
//   •  Validate runs the rules of one FieldSpec against one raw value.  The
//      first failing rule wins; messages are never accumulated.
//   •  ValidateAll runs Validate for every field of a FormDef in order.
//   •  ValidationError wraps the failing verdicts of a submit attempt so
//      callers can tell user input errors from system failures.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// emailPattern accepts a simple local@domain.tld shape.  Full RFC 5322
// compliance is not attempted.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// -----------------------------------------------------------------------------
// Verdicts
// -----------------------------------------------------------------------------

// Verdict is the pass/fail outcome of validating one field's current value.
// Rule names the rule that failed and is empty when Valid is true.
type Verdict struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Rule    Rule   `json:"-"`
}

// ValidationError wraps the failing verdicts of a submit attempt and
// satisfies the error interface.
type ValidationError struct{ Fields []Verdict }

func (ve *ValidationError) Error() string {
	names := make([]string, len(ve.Fields))
	for i, v := range ve.Fields {
		names[i] = v.Field
	}
	return fmt.Sprintf("form validation failed: %s", strings.Join(names, ", "))
}

// IsValidationError reports whether err came from a failed submit attempt.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Validate classifies value against spec.  Values are trimmed before any
// rule is applied.  Minimum length counts runes, so an emoji is one
// character.
func Validate(spec FieldSpec, value string) Verdict {
	val := strings.TrimSpace(value)

	if val == "" {
		return failed(spec, RuleRequired, requiredMsg(spec))
	}

	switch spec.Rule {
	case RuleEmail:
		if !emailPattern.MatchString(val) {
			return failed(spec, RuleEmail, "Please enter a valid email address")
		}
	case RuleMinLength:
		if utf8.RuneCountInString(val) < spec.MinLength {
			return failed(spec, RuleMinLength, minLengthMsg(spec))
		}
	}

	return Verdict{Field: spec.Name, Valid: true}
}

// ValidateAll validates values for every field of fd, in declaration order.
// Missing values count as empty.
func ValidateAll(fd *FormDef, values map[string]string) []Verdict {
	out := make([]Verdict, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		out = append(out, Validate(f, values[f.Name]))
	}
	return out
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func failed(spec FieldSpec, rule Rule, msg string) Verdict {
	return Verdict{Field: spec.Name, Valid: false, Message: msg, Rule: rule}
}

// requiredMsg uses the field name, not the label, so the message stays stable
// when operators relabel fields.
func requiredMsg(spec FieldSpec) string {
	return capitalizeFirst(spec.Name) + " is required"
}

func minLengthMsg(spec FieldSpec) string {
	return fmt.Sprintf("%s must be at least %d characters long", capitalizeFirst(spec.Name), spec.MinLength)
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
