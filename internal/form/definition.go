// internal/form/definition.go
//
// Folio – Forms subsystem: field specs and YAML definition loader.
//
// Context
//   The portfolio page carries exactly one contact form.  Its fields are
//   fixed by the payload the collection endpoint expects (name, email,
//   subject, message) and so are their rules: email must look like an
//   address and message has a minimum length.  Labels, placeholders, the
//   minimum message length, and post-submit actions vary per deployment.  Operators may
//   therefore declare the form in a YAML file; when no file is configured
//   the built-in ContactForm definition is used.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldSpec / ActionDef.
//   •  LoadFormDef parses one YAML file and validates structural rules.
//   •  ContactForm returns the built-in definition.
//   •  FormDef.Field offers lookup by field name.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Rule names the validation rule attached to a field.  Every rule implies
// Required; the others add one check after it.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleEmail     Rule = "email"
	RuleMinLength Rule = "minlength"
)

// Payload field names.  A FormDef must declare each of them exactly once.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var payloadFields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

// fieldRules fixes the rule of each payload field.  A definition may omit the
// rule but never change it.
var fieldRules = map[string]Rule{
	FieldName:    RuleRequired,
	FieldEmail:   RuleEmail,
	FieldSubject: RuleRequired,
	FieldMessage: RuleMinLength,
}

// DefaultMessageMinLength is the minimum trimmed length of the message field
// in the built-in definition.
const DefaultMessageMinLength = 10

// FormDef represents one form definition.  Fields are kept in declaration
// order, which is also the order of validation and rendering.
type FormDef struct {
	ID      string      `yaml:"id"`      // Identifier, e.g. “contact”.
	Title   string      `yaml:"title"`   // Display title, optional.
	Fields  []FieldSpec `yaml:"fields"`  // One entry per payload field.
	Actions []ActionDef `yaml:"actions"` // Post-submit actions.  May be empty.
}

// FieldSpec describes a single input and the rule its value must satisfy.
type FieldSpec struct {
	Name        string `yaml:"name"`        // Payload key.  Required.
	Label       string `yaml:"label"`       // Human-readable label.  Defaults to the capitalized name.
	Type        string `yaml:"type"`        // text, email, or textarea.
	Placeholder string `yaml:"placeholder"` // Optional placeholder text.
	Rule        Rule   `yaml:"rule"`        // required, email, or minlength.
	MinLength   int    `yaml:"minlength"`   // Only meaningful for RuleMinLength.
}

// ActionDef configures an automated action executed after a successful relay.
//
// Action types are loosely typed so new kinds can be introduced without schema
// churn.  Provider-specific keys are collected inline into Params.
type ActionDef struct {
	Type   string         `yaml:"type"`    // email or log.
	Params map[string]any `yaml:",inline"` // Provider-specific fields inline.
}

// Field returns the FieldSpec named name.
func (fd *FormDef) Field(name string) (FieldSpec, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ContactForm returns the built-in contact form: name, email, subject, and a
// message of at least DefaultMessageMinLength characters.
func ContactForm() *FormDef {
	return &FormDef{
		ID:    "contact",
		Title: "Get in touch",
		Fields: []FieldSpec{
			{Name: FieldName, Label: "Name", Type: "text", Placeholder: "Your name", Rule: RuleRequired},
			{Name: FieldEmail, Label: "Email", Type: "email", Placeholder: "you@example.com", Rule: RuleEmail},
			{Name: FieldSubject, Label: "Subject", Type: "text", Placeholder: "What is this about?", Rule: RuleRequired},
			{
				Name:        FieldMessage,
				Label:       "Message",
				Type:        "textarea",
				Placeholder: "Your message",
				Rule:        RuleMinLength,
				MinLength:   DefaultMessageMinLength,
			},
		},
	}
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file, validates its structure, fills defaults,
// and returns a populated FormDef.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// ParseFormDef is LoadFormDef for an in-memory document.  src names the
// document in error messages.
func ParseFormDef(raw []byte, src string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", src, err)
	}
	if err := validateFormDef(&fd, src); err != nil {
		return nil, err
	}
	return &fd, nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.  It returns a descriptive error referencing the offending file.
func validateFormDef(fd *FormDef, src string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", src)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", src)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, src); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", src, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	for _, name := range payloadFields {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("form %s: missing field '%s'", src, name)
		}
	}

	for _, ac := range fd.Actions {
		switch ac.Type {
		case "email", "log":
		default:
			return fmt.Errorf("form %s: unrecognized action type '%s'", src, ac.Type)
		}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane, and
// fills the label and type defaults.
func validateField(f *FieldSpec, src string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", src)
	}
	if !isPayloadField(f.Name) {
		return fmt.Errorf("form %s: unknown field '%s'", src, f.Name)
	}

	want := fieldRules[f.Name]
	switch f.Rule {
	case "":
		f.Rule = want
		if want == RuleMinLength && f.MinLength == 0 {
			f.MinLength = DefaultMessageMinLength
		}
	case RuleRequired, RuleEmail, RuleMinLength:
	default:
		return fmt.Errorf("form %s: field '%s' unknown rule '%s'", src, f.Name, f.Rule)
	}
	if f.Rule != want {
		return fmt.Errorf("form %s: field '%s' must use rule '%s', not '%s'", src, f.Name, want, f.Rule)
	}
	if f.Rule == RuleMinLength && f.MinLength <= 0 {
		return fmt.Errorf("form %s: field '%s' minlength must be positive", src, f.Name)
	}

	if f.Label == "" {
		f.Label = capitalizeFirst(f.Name)
	}
	if f.Type == "" {
		switch f.Rule {
		case RuleEmail:
			f.Type = "email"
		case RuleMinLength:
			f.Type = "textarea"
		default:
			f.Type = "text"
		}
	}
	switch f.Type {
	case "text", "email", "textarea":
	default:
		return fmt.Errorf("form %s: field '%s' unsupported type '%s'", src, f.Name, f.Type)
	}
	return nil
}

func isPayloadField(name string) bool {
	for _, n := range payloadFields {
		if n == name {
			return true
		}
	}
	return false
}
