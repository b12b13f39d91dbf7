package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func writeConf(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

const baseYAML = `
http:
  listen_addr: ":9090"
  allowed_origins:
    - https://portfolio.example.com
relay:
  endpoint: https://script.example.com/macros/s/abc/exec
  timeout: 12s
session:
  secret: vault:secret/folio#session_key
email:
  enabled: true
  resend_api_key: vault:secret/folio#resend
  from: Folio <relay@example.com>
  to: [owner@example.com]
form:
  definition: conf/forms/contact.yaml
`

func TestLoadFrom(t *testing.T) {
	root := writeConf(t, baseYAML)
	t.Setenv("FOLIO_RELAY__STRICT_STATUS", "true")
	t.Setenv("FOLIO_HTTP__FORCE_HTTPS", "true")

	cfg, err := LoadFrom(context.Background(), root, fakeSecrets{
		"secret/folio#session_key": "s3cr3t",
		"secret/folio#resend":      "re_123",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.HTTP.ListenAddr != ":9090" || !cfg.HTTP.ForceHTTPS {
		t.Fatalf("http = %+v", cfg.HTTP)
	}
	want := Relay{
		Endpoint:     "https://script.example.com/macros/s/abc/exec",
		ContentType:  "application/json",
		Timeout:      12 * time.Second,
		StrictStatus: true,
	}
	if diff := cmp.Diff(want, cfg.Relay); diff != "" {
		t.Fatalf("relay (-want +got):\n%s", diff)
	}
	if cfg.Session.Secret != "s3cr3t" || cfg.Email.ResendAPIKey != "re_123" {
		t.Fatalf("secrets not resolved: %q %q", cfg.Session.Secret, cfg.Email.ResendAPIKey)
	}
	if cfg.Session.IdleTTL != 30*time.Minute || cfg.Session.MaxEntries != 1000 {
		t.Fatalf("session defaults = %+v", cfg.Session)
	}
	if cfg.Form.Definition != filepath.Join(root, "conf/forms/contact.yaml") {
		t.Fatalf("definition path = %q", cfg.Form.Definition)
	}
	if cfg.Log.Dir != filepath.Join(root, "logs") || cfg.Log.Level != "info" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if Get() != cfg {
		t.Fatalf("Get did not return the loaded config")
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := map[string]struct {
		yaml    string
		secrets SecretSource
		want    string
	}{
		"no secret source": {
			yaml: baseYAML,
			want: "no secret source",
		},
		"missing secret": {
			yaml:    baseYAML,
			secrets: fakeSecrets{},
			want:    "secret not found",
		},
		"missing endpoint": {
			yaml: "http:\n  listen_addr: \":8080\"\n",
			want: "Relay.Endpoint",
		},
		"email without recipients": {
			yaml: "relay:\n  endpoint: https://x.example.com\nemail:\n  enabled: true\n  resend_api_key: k\n  from: a@b.co\n",
			want: "Email.To",
		},
		"bad level": {
			yaml: "relay:\n  endpoint: https://x.example.com\nlog:\n  level: loud\n",
			want: "Log.Level",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			root := writeConf(t, tc.yaml)
			_, err := LoadFrom(context.Background(), root, tc.secrets)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadFrom_CommaSeparatedEnvList(t *testing.T) {
	root := writeConf(t, "relay:\n  endpoint: https://x.example.com\n")
	t.Setenv("FOLIO_HTTP__ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if diff := cmp.Diff(want, cfg.HTTP.AllowedOrigins); diff != "" {
		t.Fatalf("origins (-want +got):\n%s", diff)
	}
}

func TestParseVaultRef(t *testing.T) {
	path, key, err := ParseVaultRef("vault:secret/folio#resend")
	if err != nil || path != "secret/folio" || key != "resend" {
		t.Fatalf("got %q %q %v", path, key, err)
	}
	for _, bad := range []string{"secret/folio#k", "vault:secret/folio", "vault:#k"} {
		if _, _, err := ParseVaultRef(bad); err == nil {
			t.Errorf("ParseVaultRef(%q) accepted", bad)
		}
	}
}
