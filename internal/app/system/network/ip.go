// Package network resolves the client address of a request.
package network

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ipv6LimitBits is the prefix IPv6 clients are grouped by when limiting;
// a single subscriber usually holds a whole /64.
const ipv6LimitBits = 64

// ClientIP returns the address of the client that sent r, taken from
// RemoteAddr. Forwarding headers are only honoured when ProxyHeaders(true)
// has already copied them into RemoteAddr. The result has no port, zone or
// brackets, and IPv4-mapped IPv6 addresses come back as IPv4.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, ok := parse(host); ok {
		return addr.String()
	}
	return strings.Trim(host, "[]")
}

// ProxyHeaders returns the middleware that decides whether forwarding
// headers are believed. Only enable trust behind a reverse proxy that
// overwrites True-Client-IP, X-Real-IP and X-Forwarded-For; otherwise any client can pick
// its own address and step around the per-IP limits.
func ProxyHeaders(trust bool) func(http.Handler) http.Handler {
	if trust {
		return chimw.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// LimitKey is the key rate limits count a client under. IPv4 addresses are
// used as they are, IPv6 addresses are reduced to their /64.
func LimitKey(ip string) string {
	addr, ok := parse(ip)
	if !ok {
		return ip
	}
	if addr.Is4() {
		return addr.String()
	}
	return netip.PrefixFrom(addr, ipv6LimitBits).Masked().String()
}

func parse(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.Trim(strings.TrimSpace(s), "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}
