package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yanizio/folio/internal/form"
	"github.com/yanizio/folio/internal/metrics"
)

var sample = form.Payload{
	Name:    "  Jane ",
	Email:   "jane@example.com",
	Subject: "Hello",
	Message: "I'd like to talk about a project.",
}

func TestHTTPSubmit_PostsPayload(t *testing.T) {
	var (
		gotCT   string
		gotBody map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		gotCT = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("body not JSON: %v", err)
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	g, err := NewHTTP(srv.URL)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	if err := g.Submit(context.Background(), sample); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotCT != DefaultContentType {
		t.Fatalf("content type = %q", gotCT)
	}
	want := map[string]string{
		"name":    "  Jane ",
		"email":   "jane@example.com",
		"subject": "Hello",
		"message": "I'd like to talk about a project.",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmit_StatusHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	lenient, _ := NewHTTP(srv.URL, WithContentType("text/plain"))
	if err := lenient.Submit(context.Background(), sample); err != nil {
		t.Fatalf("lenient Submit: %v", err)
	}

	strict, _ := NewHTTP(srv.URL, WithStrictStatus(true))
	err := strict.Submit(context.Background(), sample)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("strict err = %v", err)
	}
}

func TestHTTPSubmit_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, _ := NewHTTP(url)
	if err := g.Submit(context.Background(), sample); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestHTTPSubmit_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g, _ := NewHTTP(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := g.Submit(ctx, sample); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestNewHTTP_RequiresEndpoint(t *testing.T) {
	if _, err := NewHTTP(""); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("err = %v", err)
	}
}

func TestInstrumented(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	inner := Func(func(_ context.Context, p form.Payload) error {
		calls++
		if p.Subject == "fail" {
			return boom
		}
		return nil
	})
	g := Instrument("test-instrumented", inner, nil)

	if err := g.Submit(context.Background(), sample); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := g.Submit(context.Background(), form.Payload{Subject: "fail"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}

	n := testutil.CollectAndCount(metrics.GatewayDuration, "folio_gateway_request_duration_seconds")
	if n < 2 {
		t.Fatalf("histogram series = %d, want >= 2", n)
	}
}

func TestDiscard(t *testing.T) {
	if err := Discard.Submit(context.Background(), sample); err != nil {
		t.Fatalf("Discard: %v", err)
	}
}
