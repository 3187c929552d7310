package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientID identifies the caller: the first X-Forwarded-For entry, then
// X-Real-IP, then the connection's peer address. Forwarded headers are
// trusted as-is, so deployments without a proxy in front can be spoofed.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
