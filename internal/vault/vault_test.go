// internal/vault/vault_test.go
//
// Unit-tests for GetKV against an in-memory KV reader.

package vault

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeKV struct {
	reads   atomic.Int32
	data    map[string]map[string]any // "mount/rel" → secret
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeKV) read(_ context.Context, mount, rel string) (map[string]any, error) {
	f.reads.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	sec, ok := f.data[mount+"/"+rel]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return sec, nil
}

func newFake() *fakeKV {
	return &fakeKV{data: map[string]map[string]any{
		"secret/folio": {"resend": "re_123", "session": "s3cr3t", "port": 8080},
	}}
}

func TestSplitMount(t *testing.T) {
	cases := []struct{ in, mount, rel string }{
		{"secret/folio", "secret", "folio"},
		{"kv/apps/folio/prod", "kv", "apps/folio/prod"},
		{"secret", "secret", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		m, r := splitMount(tc.in)
		if m != tc.mount || r != tc.rel {
			t.Errorf("splitMount(%q) = %q, %q", tc.in, m, r)
		}
	}
}

func TestGetKV_CachesWholeSecret(t *testing.T) {
	kv := newFake()
	c := newClient(kv, zap.NewNop().Sugar())
	ctx := context.Background()

	if v, err := c.GetKV(ctx, "secret/folio", "resend", time.Minute); err != nil || v != "re_123" {
		t.Fatalf("GetKV(resend) = %q, %v", v, err)
	}
	if v, err := c.GetKV(ctx, "secret/folio", "session", time.Minute); err != nil || v != "s3cr3t" {
		t.Fatalf("GetKV(session) = %q, %v", v, err)
	}
	if n := kv.reads.Load(); n != 1 {
		t.Fatalf("reads = %d, want 1", n)
	}
}

func TestGetKV_CacheExpires(t *testing.T) {
	kv := newFake()
	c := newClient(kv, zap.NewNop().Sugar())
	now := time.Now()
	c.now = func() time.Time { return now }

	_, _ = c.GetKV(context.Background(), "secret/folio", "resend", time.Minute)
	now = now.Add(2 * time.Minute)
	_, _ = c.GetKV(context.Background(), "secret/folio", "resend", time.Minute)

	if n := kv.reads.Load(); n != 2 {
		t.Fatalf("reads = %d, want 2", n)
	}
}

func TestGetKV_NoTTLSkipsCache(t *testing.T) {
	kv := newFake()
	c := newClient(kv, zap.NewNop().Sugar())
	for i := 0; i < 3; i++ {
		_, _ = c.GetKV(context.Background(), "secret/folio", "resend", 0)
	}
	if n := kv.reads.Load(); n != 3 {
		t.Fatalf("reads = %d, want 3", n)
	}
}

func TestGetKV_ConcurrentMissesShareRead(t *testing.T) {
	kv := newFake()
	kv.gate = make(chan struct{})
	kv.entered = make(chan struct{}, 1)
	c := newClient(kv, zap.NewNop().Sugar())

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, key := range []string{"resend", "session"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := c.GetKV(context.Background(), "secret/folio", key, 0)
			errs <- err
		}(key)
	}

	<-kv.entered
	// Let the second caller join the in-flight read before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(kv.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("GetKV: %v", err)
		}
	}
	if n := kv.reads.Load(); n != 1 {
		t.Fatalf("reads = %d, want 1", n)
	}
}

func TestGetKV_Errors(t *testing.T) {
	c := newClient(newFake(), zap.NewNop().Sugar())
	ctx := context.Background()

	if _, err := c.GetKV(ctx, "", "k", 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := c.GetKV(ctx, "secret/folio", "missing", 0); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("missing key err = %v", err)
	}
	if _, err := c.GetKV(ctx, "secret/folio", "port", 0); !errors.Is(err, ErrNotString) {
		t.Fatalf("non-string err = %v", err)
	}
	if _, err := c.GetKV(ctx, "secret/other", "k", 0); err == nil {
		t.Fatalf("expected error for unknown secret")
	}
}
