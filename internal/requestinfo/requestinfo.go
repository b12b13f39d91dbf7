//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, client IP + geolocation, and timestamp).
//  These structs are inert.  They contain no pointers to readers or
//  large buffers, so they are safe to log or JSON-encode.
//
//  The contact component logs them next to every submission so the site
//  owner can tell a browser from a bot without storing the raw request.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string `json:"-"`
	Browser     string `json:"browser"`
	Version     string `json:"version,omitempty"`
	OS          string `json:"os"`
	OSVersion   string `json:"os_version,omitempty"`
	Device      string `json:"device"` // "Desktop", "Mobile", "Tablet", or "Other"
	Platform    string `json:"platform"`
	IsBot       bool   `json:"bot"`
	PrimaryLang string `json:"lang,omitempty"` // first Accept-Language tag
}

// Geo holds IP-based geolocation hints.
// These are best-effort and may be empty if no DB is configured.
type Geo struct {
	IP         net.IP `json:"ip,omitempty"`
	CountryISO string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// RequestInfo is attached to the request context by Resolver.Middleware.
type RequestInfo struct {
	UA        UA        `json:"ua"`
	Geo       Geo       `json:"geo"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"ts"`
}

// LogFields flattens the info into zap key-value pairs.
func (ri *RequestInfo) LogFields() []any {
	if ri == nil {
		return nil
	}
	return []any{
		"ip", ri.Geo.IP.String(),
		"country", ri.Geo.CountryISO,
		"browser", ri.UA.Browser,
		"device", ri.UA.Device,
		"bot", ri.UA.IsBot,
	}
}

//
//  -----------------------------
//  Resolver
//  -----------------------------
//

// cityReader is the subset of *geoip2.Reader used here.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Resolver builds RequestInfo values.  The zero value parses user agents
// and skips geolocation.
type Resolver struct {
	geo cityReader
}

// NewResolver opens the GeoLite2-City database at dbPath.  An empty path
// disables geolocation.
func NewResolver(dbPath string) (*Resolver, error) {
	if dbPath == "" {
		return &Resolver{}, nil
	}
	rd, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	return &Resolver{geo: rd}, nil
}

// Close releases the GeoLite2 reader, if any.
func (r *Resolver) Close() error {
	if r == nil || r.geo == nil {
		return nil
	}
	return r.geo.Close()
}

// lookupGeo returns best-effort Geo data.
func (r *Resolver) lookupGeo(ip net.IP) Geo {
	if r == nil || r.geo == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.geo.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithInfo returns a copy of ctx carrying ri.
func WithInfo(ctx context.Context, ri *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, ri)
}

// FromContext returns the pointer previously stored by the middleware.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := surfer.Parse(uaHeader)

	info := UA{
		Raw:         uaHeader,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionToString(u.Browser.Version),
		OS:          strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion:   versionToString(u.OS.Version),
		Platform:    strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
	if info.OS == "MacOSX" {
		info.OS = "macOS"
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionToString renders a semantic version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(v.Major)
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}
