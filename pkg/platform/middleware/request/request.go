// Package request populates requestcontext for every inbound HTTP request:
// a request ID, the pinned request time, the client IP and User-Agent and
// the derived device fingerprint.
package request

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"warden/pkg/platform/middleware/device"
	"warden/pkg/requestcontext"
)

const HeaderRequestID = "X-Request-ID"

// Context is the middleware. It should run before anything that logs.
func Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		userAgent := r.Header.Get("User-Agent")
		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = requestcontext.WithClientMetadata(ctx, ClientIPFromRequest(r), userAgent)
		ctx = requestcontext.WithDeviceFingerprint(ctx, device.Fingerprint(userAgent))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the originating client IP, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
