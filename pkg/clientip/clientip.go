package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr only (no proxy headers).
// Use for rate limiting and logging when traffic reaches the app directly.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// Resolver picks the address used to key per-client limits. With TrustProxy set, the
// left-most X-Forwarded-For entry wins; otherwise only RemoteAddr is used.
type Resolver struct {
	TrustProxy bool
}

func (res Resolver) ClientIP(r *http.Request) string {
	if res.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
	}
	return RealClientIP(r)
}
