package admission

import (
	"net"
	"net/http"
	"strings"
)

// ClientID resolves the rate-limiting identity of a request: the first
// X-Forwarded-For entry, then X-Real-IP, then the transport peer address.
// Requests with no usable address share the "unknown" bucket.
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}

	return unknownClientIdentifier
}
