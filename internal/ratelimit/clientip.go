package ratelimit

import (
	"net/http"
	"strings"
)

// AnonymousIdentifier is used when no proxy header reveals a client address.
const AnonymousIdentifier = "anonymous"

// ClientIP derives the rate-limit partition key from proxy headers, in
// strict priority order: X-Forwarded-For (first comma-separated entry,
// trimmed), then X-Real-IP, then CF-Connecting-IP. The result is not a
// verified identity, only a coarse throttling key.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if cfIP := r.Header.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}
	return AnonymousIdentifier
}
