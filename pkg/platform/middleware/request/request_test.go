package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"warden/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:4444", "203.0.113.9"},
		{"real ip header", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:4444", "198.51.100.4"},
		{"ipv4 peer", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"ipv6 peer", nil, "[2001:db8::1]:5555", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestContext_PopulatesRequestContext(t *testing.T) {
	var seenIP, seenID, seenFP string
	h := Context(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenIP = requestcontext.ClientIP(r.Context())
		seenID = requestcontext.RequestID(r.Context())
		seenFP = requestcontext.DeviceFingerprint(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	r.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "192.0.2.10", seenIP)
	assert.Equal(t, "req-123", seenID)
	assert.NotEmpty(t, seenFP)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}
