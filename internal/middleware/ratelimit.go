package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateLimit caps requests per remote address in fixed windows of length per.
// The address is r.RemoteAddr as left by chi's RealIP, never a raw
// forwarding header. A non-positive limit disables the check.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	windows := gocache.New(per, 2*per)
	retryAfter := strconv.Itoa(int(per.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteHost(r)
			_ = windows.Add(ip, 0, gocache.DefaultExpiration)
			count, err := windows.IncrementInt(ip, 1)
			if err == nil && count > limit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter)
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
