package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/google/uuid"
)

// Headers read or written by RequestID and ClientIP.
const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
)

const maxRequestIDLen = 128

// RequestID tags every request with an id, echoed in the X-Request-ID
// response header. A caller-supplied id is kept when it is safe to log.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderXRequestID)
			if !acceptableRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderXRequestID, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

// acceptableRequestID allows 1 to 128 characters from [A-Za-z0-9_-].
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// ClientIP stores the caller's address in the request context.
// Forwarding headers are honoured only when trustProxy is set and the
// connecting peer falls inside trustedProxies (addresses or CIDRs).
// An empty trustedProxies trusts every peer.
func ClientIP(trustProxy bool, trustedProxies []string) Middleware {
	proxies := parseProxies(trustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteHost(r.RemoteAddr)
			if trustProxy && proxies.trusts(ip) {
				if fwd := forwardedClient(r.Header); fwd != "" {
					ip = fwd
				}
			}
			next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
		})
	}
}

type proxySet []netip.Prefix

// parseProxies accepts bare addresses and CIDR prefixes. Unparsable
// entries are skipped.
func parseProxies(entries []string) proxySet {
	var set proxySet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			set = append(set, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			set = append(set, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return set
}

func (s proxySet) trusts(host string) bool {
	if len(s) == 0 {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// forwardedClient returns the originating client named by the proxy headers.
func forwardedClient(h http.Header) string {
	if xff := h.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return strings.TrimSpace(h.Get(HeaderXRealIP))
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
