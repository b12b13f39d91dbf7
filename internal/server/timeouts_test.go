package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/yanizio/folio/internal/config"
)

func TestNew(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: ":9999", WriteTimeout: 90 * time.Second}, http.NotFoundHandler())

	if srv.Addr != ":9999" {
		t.Fatalf("addr = %q", srv.Addr)
	}
	if srv.WriteTimeout != 90*time.Second {
		t.Fatalf("write timeout = %v", srv.WriteTimeout)
	}
	if srv.ReadTimeout != DefaultReadTimeout || srv.IdleTimeout != DefaultIdleTimeout {
		t.Fatalf("defaults not applied: read=%v idle=%v", srv.ReadTimeout, srv.IdleTimeout)
	}
}
