// Package clientip extracts the caller address used for rate limiting.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the host part of r.RemoteAddr. Proxy headers are not
// read here; when the server runs behind a trusted proxy, chi's RealIP
// middleware rewrites RemoteAddr before this is called.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
