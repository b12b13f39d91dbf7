// internal/vault/vault.go
//
// Folio – Vault secret source for the config loader.
//
// Context
//   conf/global.yaml and FOLIO_ env vars may hold `vault:<mount/path>#<key>`
//   references instead of plain secrets (the session HMAC key, the Resend
//   API key).  config.Load resolves each one through a SecretSource; this
//   package is the production SecretSource.
//
// Workflow
//   •  Enabled reports whether VAULT_ADDR is set; callers skip Vault
//      entirely otherwise.
//   •  New reads VAULT_ADDR / VAULT_TOKEN, builds the API client, and starts
//      token renewal bound to ctx.
//   •  GetKV reads one key of a KV-v2 secret.  Concurrent misses for the
//      same secret share one request; values may be cached for a TTL.
//
// Notes
//   •  A whole secret is fetched once and every key in it is cached, since
//      config usually pulls several keys from the same path.
//   •  Renewal failures are logged and retried with a fixed delay; they never
//      stop the process.
//
//------------------------------------------------------------------------------

package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Errors returned by GetKV.  Both are wrapped with the offending reference.
var (
	ErrKeyNotFound = errors.New("vault: key not found in secret")
	ErrNotString   = errors.New("vault: secret value is not a string")
)

const (
	retryDelay    = 30 * time.Second
	idleTokenWait = time.Hour
)

// Enabled reports whether the environment points at a Vault server.
func Enabled() bool { return os.Getenv("VAULT_ADDR") != "" }

// kvReader returns the data map of one KV-v2 secret.
type kvReader interface {
	read(ctx context.Context, mount, rel string) (map[string]any, error)
}

type apiReader struct{ api *vault.Client }

func (r apiReader) read(ctx context.Context, mount, rel string) (map[string]any, error) {
	sec, err := r.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, err
	}
	if sec == nil || sec.Data == nil {
		return nil, errors.New("empty secret")
	}
	return sec.Data, nil
}

// Client resolves `vault:` config references.  Safe for concurrent use.
type Client struct {
	kv  kvReader
	log *zap.SugaredLogger
	now func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]entry // "path#key"
}

type entry struct {
	val string
	exp time.Time
}

// New builds a client from the standard Vault environment and keeps its
// token renewed until ctx ends.  A nil log uses the zap global.
func New(ctx context.Context, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.S()
	}
	log = log.Named("vault")

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault: read environment: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := newClient(apiReader{api: api}, log)
	go keepTokenAlive(ctx, api, log)
	log.Infow("vault client ready", "addr", cfg.Address)
	return c, nil
}

func newClient(kv kvReader, log *zap.SugaredLogger) *Client {
	return &Client{
		kv:    kv,
		log:   log,
		now:   time.Now,
		cache: make(map[string]entry),
	}
}

// GetKV returns key from the KV-v2 secret at secretPath ("mount/rel/path").
// With ttl > 0 every key of the fetched secret is cached for ttl.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	ref := secretPath + "#" + key

	if ttl > 0 {
		if v, ok := c.cached(ref); ok {
			return v, nil
		}
	}

	res, err, shared := c.group.Do(secretPath, func() (any, error) {
		mount, rel := splitMount(secretPath)
		return c.kv.read(ctx, mount, rel)
	})
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", secretPath, err)
	}
	data := res.(map[string]any)
	if shared {
		c.log.Debugw("vault read shared", "path", secretPath)
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotString, ref)
	}

	if ttl > 0 {
		c.store(secretPath, data, ttl)
	}
	return val, nil
}

func (c *Client) cached(ref string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[ref]
	if !ok || !c.now().Before(e.exp) {
		return "", false
	}
	return e.val, true
}

// store caches every string value of one secret.
func (c *Client) store(secretPath string, data map[string]any, ttl time.Duration) {
	exp := c.now().Add(ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range data {
		if s, ok := v.(string); ok {
			c.cache[secretPath+"#"+k] = entry{val: s, exp: exp}
		}
	}
}

// keepTokenAlive renews the client token for as long as ctx lives.
func keepTokenAlive(ctx context.Context, api *vault.Client, log *zap.SugaredLogger) {
	for ctx.Err() == nil {
		sleep(ctx, watchToken(ctx, api, log))
	}
}

// watchToken runs one lifetime watcher over the current token and returns
// how long to wait before starting the next one.
func watchToken(ctx context.Context, api *vault.Client, log *zap.SugaredLogger) time.Duration {
	sec, err := api.Auth().Token().RenewSelfWithContext(ctx, 0)
	if err != nil {
		log.Warnw("token renew-self failed", "err", err)
		return retryDelay
	}
	if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
		log.Infow("token not renewable", "recheck_in", idleTokenWait)
		return idleTokenWait
	}

	w, err := api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		log.Warnw("token watcher init failed", "err", err)
		return retryDelay
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-w.DoneCh():
			if err != nil {
				log.Warnw("token renewal stopped", "err", err)
			}
			return 15 * time.Second
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				log.Debugw("token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

// splitMount splits "kv/apps/folio" into mount "kv" and path "apps/folio".
func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
