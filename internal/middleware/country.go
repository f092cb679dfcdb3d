package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type countryContextKey struct{}

// CountryLookup resolves an ISO country code for an IP address.
type CountryLookup func(ip string) (string, error)

// countryHeaders are edge-proxy hints, checked in order before any lookup.
var countryHeaders = []string{"CF-IPCountry", "X-Country-Code", "X-IP-Country", "X-Appengine-Country"}

// Country stores the donor's best-effort country in the request context.
func Country(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if country := ResolveCountry(r, lookup); country != "" {
				r = r.WithContext(context.WithValue(r.Context(), countryContextKey{}, country))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CountryFromContext returns the ISO code set by Country, or "".
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry prefers proxy headers and falls back to lookup on the client IP.
// Codes that are not ISO 3166 countries are discarded.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range countryHeaders {
		if code := normalizeCountry(r.Header.Get(key)); code != "" {
			return code
		}
	}
	if lookup == nil {
		return ""
	}
	ip := ClientIP(r)
	if ip == "" {
		return ""
	}
	code, err := lookup(ip)
	if err != nil {
		return ""
	}
	return normalizeCountry(code)
}

func normalizeCountry(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return ""
	}
	return region.String()
}

// ClientIP returns the first well-formed X-Forwarded-For entry, else the
// remote host. It is a location hint only and must not key access control.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	return remoteHost(r)
}

// remoteHost strips the port from r.RemoteAddr.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
