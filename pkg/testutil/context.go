package testutil

import (
	"net/http"

	"warden/pkg/requestcontext"
)

// WithClient attaches client metadata the way the request middleware does.
func WithClient(req *http.Request, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent)
	return req.WithContext(ctx)
}
