// internal/config/model.go
//
// Typed configuration model for Folio.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `FOLIO_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through a SecretSource *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after defaults are applied; the app
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations accept Go syntax ("30s", "5m").  String lists accept a
//     YAML sequence or one comma-separated string (handy for env vars).
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr     string        `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool          `koanf:"force_https"`
	AllowedOrigins []string      `koanf:"allowed_origins" validate:"dive,required"`
	ReadTimeout    time.Duration `koanf:"read_timeout"    validate:"gte=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout"   validate:"gte=0"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"    validate:"gte=0"`
}

//
// Relay section
//

// Relay describes the remote collection endpoint that receives each
// accepted submission.
type Relay struct {
	Endpoint     string        `koanf:"endpoint"      validate:"required,url"`
	ContentType  string        `koanf:"content_type"`
	Timeout      time.Duration `koanf:"timeout"       validate:"gte=0"`
	StrictStatus bool          `koanf:"strict_status"`
}

//
// Form section
//

// Form locates the form definition and overrides notification texts.
// An empty Definition selects the built-in contact form.
type Form struct {
	Definition     string `koanf:"definition"`
	SuccessMessage string `koanf:"success_message"`
	FailureMessage string `koanf:"failure_message"`
}

//
// Session section
//

// Session tunes form-session tokens and the in-memory controller store.
//
// The *secret* should come from Vault (`vault:secret/folio#session_key`);
// when empty an ephemeral key is generated at boot.
type Session struct {
	Secret     string        `koanf:"secret"`
	MaxAge     time.Duration `koanf:"max_age"     validate:"gte=0"`
	IdleTTL    time.Duration `koanf:"idle_ttl"    validate:"gte=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

//
// Email section
//

// Email configures owner notifications sent through Resend after each
// successful relay.
type Email struct {
	Enabled      bool     `koanf:"enabled"`
	ResendAPIKey string   `koanf:"resend_api_key" validate:"required_if=Enabled true"`
	From         string   `koanf:"from"           validate:"required_if=Enabled true"`
	To           []string `koanf:"to"             validate:"dive,email"`
}

//
// Geo section
//

// Geo points at an optional MaxMind GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Log section
//

// Log selects the log directory and minimum level.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or FOLIO_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // FOLIO_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Relay   Relay   `koanf:"relay"`
	Form    Form    `koanf:"form"`
	Session Session `koanf:"session"`
	Email   Email   `koanf:"email"`
	Geo     Geo     `koanf:"geo"`
	Log     Log     `koanf:"log"`
	Paths   Paths   `koanf:"-"` // not loaded from config files
}
