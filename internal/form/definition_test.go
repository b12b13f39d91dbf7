// internal/form/definition_test.go
//
// Unit-tests for the YAML definition loader.

package form

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDef = `
id: contact
title: Say hello
fields:
  - name: name
  - name: email
    rule: email
    placeholder: you@example.com
  - name: subject
    label: Topic
  - name: message
    rule: minlength
    minlength: 20
actions:
  - type: email
    to: owner@example.com
  - type: log
`

func TestLoadFormDef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contact.yaml")
	if err := os.WriteFile(path, []byte(sampleDef), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fd, err := LoadFormDef(path)
	if err != nil {
		t.Fatalf("LoadFormDef: %v", err)
	}

	name, _ := fd.Field(FieldName)
	if name.Label != "Name" || name.Type != "text" || name.Rule != RuleRequired {
		t.Fatalf("name defaults = %+v", name)
	}
	email, _ := fd.Field(FieldEmail)
	if email.Type != "email" || email.Placeholder != "you@example.com" {
		t.Fatalf("email = %+v", email)
	}
	subject, _ := fd.Field(FieldSubject)
	if subject.Label != "Topic" {
		t.Fatalf("subject label = %q", subject.Label)
	}
	msg, _ := fd.Field(FieldMessage)
	if msg.Type != "textarea" || msg.MinLength != 20 {
		t.Fatalf("message = %+v", msg)
	}
	if v := Validate(msg, "fifteen chars!!"); v.Message != "Message must be at least 20 characters long" {
		t.Fatalf("custom min length message = %q", v.Message)
	}

	if len(fd.Actions) != 2 || fd.Actions[0].Params["to"] != "owner@example.com" {
		t.Fatalf("actions = %+v", fd.Actions)
	}
}

func TestParseFormDef_Errors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"missing id": {
			doc:  "fields: [{name: name}]",
			want: "missing required 'id'",
		},
		"unknown field": {
			doc:  "id: c\nfields: [{name: name}, {name: email}, {name: subject}, {name: message}, {name: phone}]",
			want: "unknown field 'phone'",
		},
		"missing payload field": {
			doc:  "id: c\nfields: [{name: name}, {name: email}, {name: subject}]",
			want: "missing field 'message'",
		},
		"duplicate": {
			doc:  "id: c\nfields: [{name: name}, {name: name}]",
			want: "duplicate field name 'name'",
		},
		"bad minlength": {
			doc:  "id: c\nfields: [{name: message, rule: minlength}]",
			want: "minlength must be positive",
		},
		"bad rule": {
			doc:  "id: c\nfields: [{name: name, rule: phone}]",
			want: "unknown rule 'phone'",
		},
		"email without email rule": {
			doc:  "id: c\nfields: [{name: email, rule: required}]",
			want: "field 'email' must use rule 'email', not 'required'",
		},
		"email rule on name": {
			doc:  "id: c\nfields: [{name: name, rule: email}]",
			want: "field 'name' must use rule 'required', not 'email'",
		},
		"email rule on message": {
			doc:  "id: c\nfields: [{name: message, rule: email}]",
			want: "field 'message' must use rule 'minlength', not 'email'",
		},
		"minlength on subject": {
			doc:  "id: c\nfields: [{name: subject, rule: minlength, minlength: 5}]",
			want: "field 'subject' must use rule 'required', not 'minlength'",
		},
		"message without minlength rule": {
			doc:  "id: c\nfields: [{name: message, rule: required}]",
			want: "field 'message' must use rule 'minlength', not 'required'",
		},
		"negative minlength": {
			doc:  "id: c\nfields: [{name: message, minlength: -3}]",
			want: "minlength must be positive",
		},
		"bad action": {
			doc:  "id: c\nfields: [{name: name}, {name: email}, {name: subject}, {name: message}]\nactions: [{type: pdf}]",
			want: "unrecognized action type 'pdf'",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFormDef([]byte(tc.doc), "test.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestContactFormIsValid(t *testing.T) {
	fd := ContactForm()
	if err := validateFormDef(fd, "builtin"); err != nil {
		t.Fatalf("built-in definition invalid: %v", err)
	}
}

func TestParseFormDef_OmittedRulesUseFieldRules(t *testing.T) {
	doc := "id: c\nfields: [{name: name}, {name: email}, {name: subject}, {name: message}]"
	fd, err := ParseFormDef([]byte(doc), "test.yaml")
	if err != nil {
		t.Fatalf("ParseFormDef: %v", err)
	}

	email, _ := fd.Field(FieldEmail)
	if v := Validate(email, "not-an-email"); v.Valid || v.Rule != RuleEmail {
		t.Fatalf("email verdict = %+v, want email rule failure", v)
	}
	name, _ := fd.Field(FieldName)
	if v := Validate(name, "Jane"); !v.Valid {
		t.Fatalf("name verdict = %+v, want valid", v)
	}
	msg, _ := fd.Field(FieldMessage)
	if msg.Rule != RuleMinLength || msg.MinLength != DefaultMessageMinLength {
		t.Fatalf("message = %+v", msg)
	}
	if v := Validate(msg, "hi"); v.Valid || v.Rule != RuleMinLength {
		t.Fatalf("message verdict = %+v, want minlength failure", v)
	}
}
