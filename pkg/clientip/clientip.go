package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request.
// Uses r.RemoteAddr only: forwarding headers are trivially spoofable
// and the app terminates its own TLS with no CDN or proxy in front,
// so RemoteAddr is the real peer. Used by the rate limiters and the
// sign-in device tracking.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
