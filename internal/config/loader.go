// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `FOLIO_`, where `__` maps to “.”
     (e.g., `FOLIO_RELAY__ENDPOINT → relay.endpoint`).

After merging, every string value that starts with `vault:` is replaced
by the secret it names (`vault:<mount/path>#<key>`).  The tree is then
unmarshalled into strongly-typed structs, given defaults, validated,
enriched with the runtime root path, and cached in an `atomic.Pointer`
for lock-free reads.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, secret resolution.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "FOLIO_"

// vaultPrefix marks a config value that names a Vault secret.
const vaultPrefix = "vault:"

// secretTTL caches each resolved secret for the life of one Load.
const secretTTL = 5 * time.Minute

// ErrNoSecretSource is returned when the config references Vault but no
// SecretSource was supplied.
var ErrNoSecretSource = errors.New("config: vault reference found but no secret source configured")

// SecretSource resolves one key of a KV secret.  *vault.Client satisfies it.
type SecretSource interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves FOLIO_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func RootDir() string {
	if r := os.Getenv("FOLIO_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root directory and calls LoadFrom.
func Load(ctx context.Context, secrets SecretSource) (*Config, error) {
	return LoadFrom(ctx, RootDir(), secrets)
}

// LoadFrom reads .env, YAML, and env overrides below root, resolves Vault
// references through secrets (may be nil), validates, and caches Config.
func LoadFrom(ctx context.Context, root string, secrets SecretSource) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("config: load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: FOLIO_RELAY__ENDPOINT → relay.endpoint
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("config: %w", err)
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"relay", cfg.Relay.Endpoint,
		"email", cfg.Email.Enabled,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// resolveSecrets replaces every `vault:` string in k with its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretSource) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("%w (%s)", ErrNoSecretSource, key)
		}
		path, field, err := ParseVaultRef(s)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		sec, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", key, err)
		}
		if err := k.Set(key, sec); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}

// ParseVaultRef splits `vault:<mount/path>#<key>` into path and key.
func ParseVaultRef(ref string) (path, key string, err error) {
	rest, ok := strings.CutPrefix(ref, vaultPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a vault reference: %q", ref)
	}
	path, key, ok = strings.Cut(rest, "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("vault reference must look like vault:<path>#<key>, got %q", ref)
	}
	return path, key, nil
}

/*──────────────────────────── defaults ────────────────────────────────────*/

// applyDefaults fills zero values and normalises paths and lists.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 45 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	c.HTTP.AllowedOrigins = splitList(c.HTTP.AllowedOrigins)

	if c.Relay.ContentType == "" {
		c.Relay.ContentType = "application/json"
	}
	if c.Relay.Timeout == 0 {
		c.Relay.Timeout = 30 * time.Second
	}

	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 2 * time.Hour
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = 30 * time.Minute
	}
	if c.Session.MaxEntries == 0 {
		c.Session.MaxEntries = 1000
	}

	c.Email.To = splitList(c.Email.To)

	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Log.Dir = c.Abs(c.Log.Dir)
	if c.Form.Definition != "" {
		c.Form.Definition = c.Abs(c.Form.Definition)
	}
	if c.Geo.DBPath != "" {
		c.Geo.DBPath = c.Abs(c.Geo.DBPath)
	}
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Abs resolves p against the root directory unless it is already absolute.
func (c *Config) Abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// Get returns the most recently loaded Config, or nil.
func Get() *Config { return current.Load() }
