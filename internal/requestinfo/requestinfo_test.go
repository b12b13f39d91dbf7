package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.6367.91 Safari/537.36"

func TestParseUA(t *testing.T) {
	ua := parseUA(chromeMac, "en-GB,en;q=0.9")
	if ua.Browser != "Chrome" {
		t.Fatalf("browser = %q", ua.Browser)
	}
	if ua.OS != "macOS" {
		t.Fatalf("os = %q", ua.OS)
	}
	if ua.Device != "Desktop" {
		t.Fatalf("device = %q", ua.Device)
	}
	if ua.IsBot {
		t.Fatalf("chrome flagged as bot")
	}
	if ua.PrimaryLang != "en-gb" {
		t.Fatalf("lang = %q", ua.PrimaryLang)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5555", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.4"}, "10.0.0.2:5555", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
		{"bad forwarded", map[string]string{"X-Forwarded-For": "unknown"}, "192.0.2.9:1234", "192.0.2.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.header {
				r.Header.Set(k, v)
			}
			if got := clientIP(r).String(); got != tc.want {
				t.Fatalf("clientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMiddlewareAttachesInfo(t *testing.T) {
	res, err := NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	defer res.Close()

	var got *RequestInfo
	h := res.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/contact/submit", nil)
	r.Header.Set("User-Agent", chromeMac)
	r.RemoteAddr = "192.0.2.1:4000"
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatalf("RequestInfo not attached")
	}
	if got.Path != "/contact/submit" || got.Geo.IP.String() != "192.0.2.1" {
		t.Fatalf("info = %+v", got)
	}
	if got.Geo.CountryISO != "" {
		t.Fatalf("geo lookup ran without a database")
	}
	if len(got.LogFields()) != 10 {
		t.Fatalf("log fields = %v", got.LogFields())
	}
}

func TestNewResolver_MissingDB(t *testing.T) {
	if _, err := NewResolver("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Fatalf("expected error for missing database")
	}
}
